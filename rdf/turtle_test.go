package rdf

import "testing"

func TestParseTriple(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Triple
	}{
		{
			name: "iri object",
			line: `<https://example.org/kyle> <https://example.org/livesIn> <https://example.org/nyc> .`,
			want: Triple{
				Subject:     "https://example.org/kyle",
				Predicate:   "https://example.org/livesIn",
				Object:      "https://example.org/nyc",
				ObjectIsIRI: true,
			},
		},
		{
			name: "literal object",
			line: `<https://example.org/kyle> <http://www.w3.org/2000/01/rdf-schema#label> "Kyle" .`,
			want: Triple{
				Subject:   "https://example.org/kyle",
				Predicate: "http://www.w3.org/2000/01/rdf-schema#label",
				Object:    "Kyle",
			},
		},
		{
			name: "escaped quote in literal",
			line: `<https://example.org/a> <https://example.org/p> "say \"hi\"" .`,
			want: Triple{
				Subject:   "https://example.org/a",
				Predicate: "https://example.org/p",
				Object:    `say "hi"`,
			},
		},
		{
			name: "datatype tag dropped",
			line: `<https://example.org/a> <https://example.org/year> "2019"^^<http://www.w3.org/2001/XMLSchema#integer> .`,
			want: Triple{
				Subject:   "https://example.org/a",
				Predicate: "https://example.org/year",
				Object:    "2019",
			},
		},
		{
			name: "language tag dropped",
			line: `<https://example.org/a> <http://www.w3.org/2000/01/rdf-schema#label> "Paris"@fr .`,
			want: Triple{
				Subject:   "https://example.org/a",
				Predicate: "http://www.w3.org/2000/01/rdf-schema#label",
				Object:    "Paris",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTriple(tt.line)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseTripleErrors(t *testing.T) {
	lines := []string{
		``,
		`<https://example.org/a> .`,
		`<https://example.org/a> <https://example.org/p> .`,
		`<https://example.org/a> <https://example.org/p> bare .`,
		`<https://example.org/a <https://example.org/p> "x" .`,
		`<https://example.org/a> <https://example.org/p> "unterminated .`,
		`<https://example.org/a> <https://example.org/p> <https://example.org/b> extra .`,
	}
	for _, line := range lines {
		if _, err := ParseTriple(line); err == nil {
			t.Errorf("expected error for %q", line)
		}
	}
}

func TestParseTriples(t *testing.T) {
	fragment := `
# a comment
@prefix ex: <https://example.org/> .

<https://example.org/kyle> <https://example.org/livesIn> <https://example.org/nyc> .
this line is garbage
<https://example.org/kyle> <http://www.w3.org/2000/01/rdf-schema#label> "Kyle" .
`

	triples, skipped := ParseTriples(fragment)
	if len(triples) != 2 {
		t.Fatalf("expected 2 triples, got %d", len(triples))
	}
	if len(skipped) != 1 {
		t.Fatalf("expected 1 skipped line, got %d: %v", len(skipped), skipped)
	}
	if skipped[0] != "this line is garbage" {
		t.Errorf("skipped: got %q", skipped[0])
	}
}

func TestTripleString(t *testing.T) {
	iri := Triple{Subject: "https://e.org/a", Predicate: "https://e.org/p", Object: "https://e.org/b", ObjectIsIRI: true}
	if got, want := iri.String(), `<https://e.org/a> <https://e.org/p> <https://e.org/b> .`; got != want {
		t.Errorf("iri object: got %q, want %q", got, want)
	}

	lit := Triple{Subject: "https://e.org/a", Predicate: "https://e.org/p", Object: `say "hi"`}
	if got, want := lit.String(), `<https://e.org/a> <https://e.org/p> "say \"hi\"" .`; got != want {
		t.Errorf("literal object: got %q, want %q", got, want)
	}
}

func TestTripleStringRoundTrip(t *testing.T) {
	orig := Triple{Subject: "https://e.org/a", Predicate: "https://e.org/p", Object: "line one\nline two"}
	parsed, err := ParseTriple(orig.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != orig {
		t.Errorf("round trip changed triple:\ngot  %+v\nwant %+v", parsed, orig)
	}
}
