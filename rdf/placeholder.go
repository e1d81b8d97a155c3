package rdf

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderRe matches a placeholder reference inside a fragment. The
// token shape is load-bearing: upstream fragment generators emit
// PLACEHOLDER_ENTITY_<n> wrapped in angle brackets wherever an entity
// identifier is not yet known.
var placeholderRe = regexp.MustCompile(`<(PLACEHOLDER_ENTITY_\d+)>`)

// Mapping assigns a final identifier to each placeholder token.
// Keys are bare tokens (PLACEHOLDER_ENTITY_1), values are absolute IRIs.
type Mapping map[string]string

// UnresolvedPlaceholderError reports a placeholder present in a fragment
// but absent from the supplied mapping. This is an upstream contract
// violation, not a retryable condition.
type UnresolvedPlaceholderError struct {
	Token string
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("graphmint: no mapping for placeholder %s", e.Token)
}

// Placeholders returns the distinct placeholder tokens referenced in the
// fragment, in order of first appearance.
func Placeholders(fragment string) []string {
	seen := make(map[string]bool)
	var tokens []string
	for _, m := range placeholderRe.FindAllStringSubmatch(fragment, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			tokens = append(tokens, m[1])
		}
	}
	return tokens
}

// Substitute replaces every placeholder reference in the fragment with its
// mapped identifier wrapped in angle brackets. Every token in the fragment
// must have a mapping entry; an unmapped token aborts the substitution with
// UnresolvedPlaceholderError. A fragment with no placeholders is returned
// unchanged. Text that merely resembles a placeholder (wrong shape, no
// brackets) passes through untouched.
func Substitute(fragment string, mapping Mapping) (string, error) {
	// Validate before touching the fragment so a partial result never
	// escapes on error.
	for _, token := range Placeholders(fragment) {
		if _, ok := mapping[token]; !ok {
			return "", &UnresolvedPlaceholderError{Token: token}
		}
	}

	// Single linear scan over the fragment rather than one whole-fragment
	// replace per token.
	matches := placeholderRe.FindAllStringSubmatchIndex(fragment, -1)
	if len(matches) == 0 {
		return fragment, nil
	}

	var b strings.Builder
	b.Grow(len(fragment))
	prev := 0
	for _, m := range matches {
		b.WriteString(fragment[prev:m[0]])
		token := fragment[m[2]:m[3]]
		b.WriteString("<")
		b.WriteString(mapping[token])
		b.WriteString(">")
		prev = m[1]
	}
	b.WriteString(fragment[prev:])
	return b.String(), nil
}

// Resolver builds placeholder mappings from entity-linking results,
// minting fresh identifiers for placeholders whose entity has no existing
// graph representation.
type Resolver struct {
	minter *Minter
}

// NewResolver creates a Resolver that mints unmatched identifiers with the
// given Minter.
func NewResolver(minter *Minter) *Resolver {
	return &Resolver{minter: minter}
}

// BuildMapping produces a Mapping for the given token -> resolved-subject
// bindings. A binding with an empty subject (entity not found in the graph)
// receives a freshly minted identifier. Within one call the same token
// always maps to the same identifier.
func (r *Resolver) BuildMapping(bindings map[string]string) Mapping {
	mapping := make(Mapping, len(bindings))
	for token, subject := range bindings {
		if subject == "" {
			subject = r.minter.Mint()
		}
		mapping[token] = subject
	}
	return mapping
}

// Resolve substitutes all placeholders in the fragment, minting identifiers
// for tokens missing from bindings entirely. Unlike Substitute it never
// fails on an unmapped token: an unknown placeholder simply gets a fresh
// identifier, since a generator emitting a placeholder it never bound is
// indistinguishable from a brand-new entity.
func (r *Resolver) Resolve(fragment string, bindings map[string]string) (string, Mapping) {
	mapping := r.BuildMapping(bindings)
	for _, token := range Placeholders(fragment) {
		if _, ok := mapping[token]; !ok {
			mapping[token] = r.minter.Mint()
		}
	}
	out, err := Substitute(fragment, mapping)
	if err != nil {
		// Unreachable: every token was just given a mapping entry.
		return fragment, mapping
	}
	return out, mapping
}
