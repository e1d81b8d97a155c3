// Package ner recognizes candidate entity mentions in raw text. The
// recognizer is deliberately heuristic: it exists to feed surface forms
// into entity linking, not to be a full NER system, and any external
// recognizer producing the same Mention shape can replace it.
package ner

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Offset locates a mention within its source text. Index disambiguates
// among multiple scanning passes over the same text; Start and Length are
// character offsets into the source.
type Offset struct {
	Index  int `json:"index"`
	Start  int `json:"start"`
	Length int `json:"length"`
}

// Mention is a recognized candidate surface form, case preserved.
type Mention struct {
	Text   string `json:"text"`
	Offset Offset `json:"offset"`
}

// Recognizer produces mentions from raw text.
type Recognizer interface {
	Recognize(text string) []Mention
}

// stopwords are capitalized words that start sentences without naming
// anything.
var stopwords = map[string]bool{
	"A": true, "An": true, "The": true, "This": true, "That": true,
	"These": true, "Those": true, "It": true, "He": true, "She": true,
	"They": true, "We": true, "I": true, "You": true, "In": true,
	"On": true, "At": true, "As": true, "And": true, "But": true,
	"Or": true, "If": true, "When": true, "While": true, "After": true,
	"Before": true, "Then": true, "There": true, "Here": true,
	"His": true, "Her": true, "Its": true, "Their": true, "Our": true,
}

// Identifier patterns catch structured names (standards, part numbers,
// model codes) that capitalization scanning misses.
var identifierRes = []*regexp.Regexp{
	// Standards: ISO 9001, EN 1366-2, MIL-STD-810, IEEE 802.11
	regexp.MustCompile(`(?i)\b(?:ISO|EN|IEC|MIL-STD|ASTM|IEEE|NIST|BS)\s*-?\s*\d[\w.-]*`),
	// Model numbers: AV-FM, RX-78
	regexp.MustCompile(`\b[A-Z]{2,4}-[A-Z0-9]{1,4}\b`),
	// Part numbers: E1375, PN-20443
	regexp.MustCompile(`\b[A-Z]{1,3}-?\d{3,6}\b`),
}

// HeuristicRecognizer scans for capitalized word runs and structured
// identifiers. Pass 0 is the capitalization scan, pass 1 the identifier
// scan; the pass number is recorded in Offset.Index.
type HeuristicRecognizer struct{}

// NewHeuristicRecognizer returns the default recognizer.
func NewHeuristicRecognizer() *HeuristicRecognizer {
	return &HeuristicRecognizer{}
}

// Recognize returns one Mention per occurrence, in order of appearance
// within each pass. Overlapping hits across passes are deduplicated on
// exact (start, length).
func (r *HeuristicRecognizer) Recognize(text string) []Mention {
	var mentions []Mention
	seen := make(map[Offset]bool)

	add := func(m Mention) {
		key := Offset{Start: m.Offset.Start, Length: m.Offset.Length}
		if seen[key] {
			return
		}
		seen[key] = true
		mentions = append(mentions, m)
	}

	for _, m := range capitalizedSpans(text) {
		add(m)
	}
	for _, re := range identifierRes {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			add(Mention{
				Text:   text[loc[0]:loc[1]],
				Offset: Offset{Index: 1, Start: loc[0], Length: loc[1] - loc[0]},
			})
		}
	}
	return mentions
}

// capSpanRe matches maximal runs of capitalized words ("New York", "Kyle").
var capSpanRe = regexp.MustCompile(`\p{Lu}[\p{L}\p{N}'.-]*(?: \p{Lu}[\p{L}\p{N}'.-]*)*`)

// capitalizedSpans finds capitalized word runs, skipping mid-word matches
// and single stopwords. Offsets are byte positions into text.
func capitalizedSpans(text string) []Mention {
	var mentions []Mention
	for _, loc := range capSpanRe.FindAllStringIndex(text, -1) {
		if loc[0] > 0 {
			prev, _ := utf8.DecodeLastRuneInString(text[:loc[0]])
			if unicode.IsLetter(prev) || unicode.IsDigit(prev) {
				continue
			}
		}
		span := strings.TrimRight(text[loc[0]:loc[1]], ".")
		if span == "" || stopwords[span] {
			continue
		}
		mentions = append(mentions, Mention{
			Text:   span,
			Offset: Offset{Index: 0, Start: loc[0], Length: len(span)},
		})
	}
	return mentions
}
