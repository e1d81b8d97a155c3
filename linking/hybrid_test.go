//go:build cgo

package linking

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/brunobiangulo/graphmint/rdf"
	"github.com/brunobiangulo/graphmint/store"
)

type fixedEmbedder struct {
	vec []float32
}

func (f fixedEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

func newHybridStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"), 4)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHybridIndexFTSOnly(t *testing.T) {
	s := newHybridStore(t)
	ctx := context.Background()

	triples := []rdf.Triple{
		{Subject: "https://e.org/paris", Predicate: rdf.PredLabel, Object: "Paris"},
	}
	if _, err := s.InsertTriples(ctx, triples, ""); err != nil {
		t.Fatalf("inserting: %v", err)
	}

	index := NewHybridIndex(s, nil, 1.0, 1.0)
	hits, err := index.Search(ctx, "Paris", 10)
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected FTS hits")
	}
	if hits[0].Subject != "https://e.org/paris" {
		t.Errorf("subject: got %q", hits[0].Subject)
	}
}

func TestHybridIndexFusesChannels(t *testing.T) {
	s := newHybridStore(t)
	ctx := context.Background()

	// One subject findable only by keyword, another only by vector.
	triples := []rdf.Triple{
		{Subject: "https://e.org/paris", Predicate: rdf.PredLabel, Object: "Paris"},
	}
	if _, err := s.InsertTriples(ctx, triples, ""); err != nil {
		t.Fatalf("inserting: %v", err)
	}
	err := s.InsertLabelEmbedding(ctx, "https://e.org/lutetia", "Lutetia", []float32{1, 0, 0, 0})
	if err != nil {
		t.Fatalf("inserting embedding: %v", err)
	}

	index := NewHybridIndex(s, fixedEmbedder{vec: []float32{1, 0, 0, 0}}, 1.0, 1.0)
	hits, err := index.Search(ctx, "Paris", 10)
	if err != nil {
		t.Fatalf("searching: %v", err)
	}

	subjects := make(map[string]bool)
	for _, h := range hits {
		subjects[h.Subject] = true
	}
	if !subjects["https://e.org/paris"] {
		t.Error("keyword hit missing")
	}
	if !subjects["https://e.org/lutetia"] {
		t.Error("vector hit missing")
	}
}

func TestHybridIndexAppliesWeights(t *testing.T) {
	s := newHybridStore(t)
	ctx := context.Background()

	err := s.InsertLabelEmbedding(ctx, "https://e.org/a", "Alpha", []float32{1, 0, 0, 0})
	if err != nil {
		t.Fatalf("inserting embedding: %v", err)
	}

	weighted := NewHybridIndex(s, fixedEmbedder{vec: []float32{1, 0, 0, 0}}, 1.0, 2.0)
	base := NewHybridIndex(s, fixedEmbedder{vec: []float32{1, 0, 0, 0}}, 1.0, 1.0)

	wHits, err := weighted.Search(ctx, "Alpha", 10)
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	bHits, err := base.Search(ctx, "Alpha", 10)
	if err != nil {
		t.Fatalf("searching: %v", err)
	}

	var wVec, bVec float64
	for _, h := range wHits {
		if h.Subject == "https://e.org/a" && h.Score > wVec {
			wVec = h.Score
		}
	}
	for _, h := range bHits {
		if h.Subject == "https://e.org/a" && h.Score > bVec {
			bVec = h.Score
		}
	}
	if wVec <= bVec {
		t.Errorf("expected weighted vector score above baseline: %f vs %f", wVec, bVec)
	}
}
