// Package rdf provides IRI minting and validation plus the placeholder
// substitution protocol used to stitch resolved entity identifiers back
// into generated Turtle fragments.
package rdf

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// DefaultNamespace is the base IRI under which fresh entity identifiers
// are minted when no namespace is configured. The .well-known/genid/ path
// follows the RDF convention for skolemized blank nodes.
const DefaultNamespace = "https://graphmint.dev/"

// InvalidIdentifierError reports an identifier that is not a valid
// absolute IRI.
type InvalidIdentifierError struct {
	IRI string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("graphmint: invalid identifier %q: not an absolute IRI", e.IRI)
}

// Minter produces fresh, globally-unique entity identifiers.
type Minter struct {
	namespace string
}

// NewMinter creates a Minter rooted at the given namespace IRI.
// An empty namespace falls back to DefaultNamespace.
func NewMinter(namespace string) *Minter {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if !strings.HasSuffix(namespace, "/") {
		namespace += "/"
	}
	return &Minter{namespace: namespace}
}

// Mint returns a brand-new identifier of the form
// <namespace>.well-known/genid/<uuid>. Uniqueness is delegated to the
// crypto/rand-backed UUID generator.
func (m *Minter) Mint() string {
	return m.namespace + ".well-known/genid/" + uuid.NewString()
}

// ValidateIRI checks that s is a syntactically valid absolute IRI.
// Used to vet manually supplied identifiers before they enter the graph.
func ValidateIRI(s string) error {
	if s == "" {
		return &InvalidIdentifierError{IRI: s}
	}
	if strings.ContainsAny(s, " \t\n<>\"{}|\\^`") {
		return &InvalidIdentifierError{IRI: s}
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		return &InvalidIdentifierError{IRI: s}
	}
	return nil
}
