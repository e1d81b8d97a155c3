package rdf

import (
	"errors"
	"strings"
	"testing"
)

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     []string
	}{
		{
			name:     "empty fragment",
			fragment: "",
			want:     nil,
		},
		{
			name:     "no placeholders",
			fragment: `<https://example.org/a> <https://example.org/p> "x" .`,
			want:     nil,
		},
		{
			name:     "single token",
			fragment: `<PLACEHOLDER_ENTITY_1> <https://example.org/p> "x" .`,
			want:     []string{"PLACEHOLDER_ENTITY_1"},
		},
		{
			name: "repeated token counted once",
			fragment: `<PLACEHOLDER_ENTITY_1> <https://example.org/p> "x" .
<PLACEHOLDER_ENTITY_1> <https://example.org/q> "y" .`,
			want: []string{"PLACEHOLDER_ENTITY_1"},
		},
		{
			name: "first appearance order",
			fragment: `<PLACEHOLDER_ENTITY_7> <https://example.org/knows> <PLACEHOLDER_ENTITY_2> .
<PLACEHOLDER_ENTITY_2> <https://example.org/p> "x" .`,
			want: []string{"PLACEHOLDER_ENTITY_7", "PLACEHOLDER_ENTITY_2"},
		},
		{
			name:     "wrong shape ignored",
			fragment: `<PLACEHOLDER_ENTITY_> <PLACEHOLDER_THING_1> "PLACEHOLDER_ENTITY_3" .`,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Placeholders(tt.fragment)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSubstitute(t *testing.T) {
	fragment := `<PLACEHOLDER_ENTITY_1> <https://example.org/knows> <PLACEHOLDER_ENTITY_2> .
<PLACEHOLDER_ENTITY_1> <http://www.w3.org/2000/01/rdf-schema#label> "Kyle" .`

	mapping := Mapping{
		"PLACEHOLDER_ENTITY_1": "https://graphmint.dev/entity/kyle",
		"PLACEHOLDER_ENTITY_2": "https://graphmint.dev/entity/nyc",
	}

	got, err := Substitute(fragment, mapping)
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}
	if strings.Contains(got, "PLACEHOLDER") {
		t.Errorf("placeholder survived substitution:\n%s", got)
	}
	if !strings.Contains(got, "<https://graphmint.dev/entity/kyle> <https://example.org/knows> <https://graphmint.dev/entity/nyc> .") {
		t.Errorf("unexpected substitution result:\n%s", got)
	}
}

func TestSubstituteSameTokenSameIRI(t *testing.T) {
	fragment := `<PLACEHOLDER_ENTITY_1> <https://example.org/a> "x" .
<PLACEHOLDER_ENTITY_1> <https://example.org/b> "y" .`

	got, err := Substitute(fragment, Mapping{"PLACEHOLDER_ENTITY_1": "https://graphmint.dev/e/1"})
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}
	if n := strings.Count(got, "<https://graphmint.dev/e/1>"); n != 2 {
		t.Errorf("expected identifier twice, found %d times:\n%s", n, got)
	}
}

func TestSubstituteUnmappedToken(t *testing.T) {
	fragment := `<PLACEHOLDER_ENTITY_1> <https://example.org/p> "x" .`

	_, err := Substitute(fragment, Mapping{})
	if err == nil {
		t.Fatal("expected error for unmapped token")
	}
	var unresolved *UnresolvedPlaceholderError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected UnresolvedPlaceholderError, got %T", err)
	}
	if unresolved.Token != "PLACEHOLDER_ENTITY_1" {
		t.Errorf("token: got %q", unresolved.Token)
	}
}

func TestSubstituteNoPlaceholdersPassthrough(t *testing.T) {
	fragment := `<https://example.org/a> <https://example.org/p> "x" .`

	got, err := Substitute(fragment, nil)
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}
	if got != fragment {
		t.Errorf("fragment changed:\ngot  %q\nwant %q", got, fragment)
	}
}

func TestSubstituteIgnoresLookalikes(t *testing.T) {
	// Literal text resembling a token but not wrapped in angle brackets
	// must pass through untouched.
	fragment := `<https://example.org/a> <https://example.org/p> "see PLACEHOLDER_ENTITY_1 above" .`

	got, err := Substitute(fragment, nil)
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}
	if got != fragment {
		t.Errorf("lookalike was rewritten:\n%s", got)
	}
}

func TestBuildMappingMintsForEmptySubject(t *testing.T) {
	r := NewResolver(NewMinter(""))

	mapping := r.BuildMapping(map[string]string{
		"PLACEHOLDER_ENTITY_1": "https://graphmint.dev/entity/kyle",
		"PLACEHOLDER_ENTITY_2": "",
	})

	if mapping["PLACEHOLDER_ENTITY_1"] != "https://graphmint.dev/entity/kyle" {
		t.Errorf("bound token rewritten: %q", mapping["PLACEHOLDER_ENTITY_1"])
	}
	minted := mapping["PLACEHOLDER_ENTITY_2"]
	if minted == "" {
		t.Fatal("expected minted identifier for empty subject")
	}
	if err := ValidateIRI(minted); err != nil {
		t.Errorf("minted identifier invalid: %v", err)
	}
}

func TestResolveMintsForUnboundTokens(t *testing.T) {
	r := NewResolver(NewMinter(""))
	fragment := `<PLACEHOLDER_ENTITY_1> <https://example.org/p> <PLACEHOLDER_ENTITY_2> .`

	out, mapping := r.Resolve(fragment, map[string]string{
		"PLACEHOLDER_ENTITY_1": "https://graphmint.dev/entity/kyle",
	})

	if strings.Contains(out, "PLACEHOLDER") {
		t.Errorf("placeholder survived resolve:\n%s", out)
	}
	if mapping["PLACEHOLDER_ENTITY_2"] == "" {
		t.Error("expected fresh identifier for unbound token")
	}
	if !strings.Contains(out, "<"+mapping["PLACEHOLDER_ENTITY_2"]+">") {
		t.Errorf("minted identifier missing from output:\n%s", out)
	}
}
