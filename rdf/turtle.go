package rdf

import (
	"fmt"
	"strings"
)

// Triple is a single subject-predicate-object statement.
type Triple struct {
	Subject     string `json:"subject"`
	Predicate   string `json:"predicate"`
	Object      string `json:"object"`
	ObjectIsIRI bool   `json:"object_is_iri"`
}

// String renders the triple as a Turtle statement.
func (t Triple) String() string {
	obj := fmt.Sprintf("%q", t.Object)
	if t.ObjectIsIRI {
		obj = "<" + t.Object + ">"
	}
	return fmt.Sprintf("<%s> <%s> %s .", t.Subject, t.Predicate, obj)
}

// ParseTriples parses a fragment of line-oriented Turtle (one statement per
// line, full IRIs, no prefix directives) into triples. Blank lines and
// comments are skipped. Lines that do not parse are returned in skipped so
// the caller can decide whether to warn; extraction output is LLM-generated
// and a stray malformed line must not abort the whole fragment.
func ParseTriples(fragment string) (triples []Triple, skipped []string) {
	for _, line := range strings.Split(fragment, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "@prefix") {
			continue
		}
		t, err := ParseTriple(line)
		if err != nil {
			skipped = append(skipped, line)
			continue
		}
		triples = append(triples, t)
	}
	return triples, skipped
}

// ParseTriple parses one Turtle statement of the form
// <subject> <predicate> <object> .  or  <subject> <predicate> "literal" .
func ParseTriple(line string) (Triple, error) {
	rest := strings.TrimSpace(line)
	rest = strings.TrimSuffix(rest, ".")
	rest = strings.TrimSpace(rest)

	subject, rest, err := readIRI(rest)
	if err != nil {
		return Triple{}, fmt.Errorf("subject: %w", err)
	}
	predicate, rest, err := readIRI(rest)
	if err != nil {
		return Triple{}, fmt.Errorf("predicate: %w", err)
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return Triple{}, fmt.Errorf("missing object in %q", line)
	}

	t := Triple{Subject: subject, Predicate: predicate}
	switch rest[0] {
	case '<':
		obj, tail, err := readIRI(rest)
		if err != nil {
			return Triple{}, fmt.Errorf("object: %w", err)
		}
		if strings.TrimSpace(tail) != "" {
			return Triple{}, fmt.Errorf("trailing content after object in %q", line)
		}
		t.Object = obj
		t.ObjectIsIRI = true
	case '"':
		obj, tail, err := readLiteral(rest)
		if err != nil {
			return Triple{}, fmt.Errorf("object: %w", err)
		}
		// Datatype and language tags are tolerated but dropped.
		tail = strings.TrimSpace(tail)
		if tail != "" && !strings.HasPrefix(tail, "^^") && !strings.HasPrefix(tail, "@") {
			return Triple{}, fmt.Errorf("trailing content after literal in %q", line)
		}
		t.Object = obj
	default:
		return Triple{}, fmt.Errorf("object must be an IRI or literal in %q", line)
	}
	return t, nil
}

// readIRI consumes a leading <...> term and returns its content and the
// remainder of the line.
func readIRI(s string) (iri, rest string, err error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "<") {
		return "", "", fmt.Errorf("expected '<' at %q", s)
	}
	end := strings.IndexByte(s, '>')
	if end < 0 {
		return "", "", fmt.Errorf("unterminated IRI at %q", s)
	}
	return s[1:end], s[end+1:], nil
}

// readLiteral consumes a leading quoted literal, honoring backslash escapes.
func readLiteral(s string) (lit, rest string, err error) {
	if !strings.HasPrefix(s, `"`) {
		return "", "", fmt.Errorf("expected '\"' at %q", s)
	}
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 >= len(s) {
				return "", "", fmt.Errorf("dangling escape in %q", s)
			}
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i])
			}
		case '"':
			return b.String(), s[i+1:], nil
		default:
			b.WriteByte(s[i])
		}
	}
	return "", "", fmt.Errorf("unterminated literal in %q", s)
}
