//go:build cgo

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/brunobiangulo/graphmint/rdf"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath, 4) // dim=4 for test vectors
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTriples() []rdf.Triple {
	return []rdf.Triple{
		{Subject: "https://graphmint.dev/entity/paris", Predicate: rdf.PredType, Object: "https://schema.org/City", ObjectIsIRI: true},
		{Subject: "https://graphmint.dev/entity/paris", Predicate: rdf.PredLabel, Object: "Paris"},
		{Subject: "https://graphmint.dev/entity/lyon", Predicate: rdf.PredLabel, Object: "Lyon"},
	}
}

// ---------------------------------------------------------------------------
// Schema / construction
// ---------------------------------------------------------------------------

func TestNew(t *testing.T) {
	s := newTestStore(t)
	if s.EmbeddingDim() != 4 {
		t.Fatalf("expected embedding dim 4, got %d", s.EmbeddingDim())
	}
	if s.DB() == nil {
		t.Fatal("expected non-nil *sql.DB")
	}
}

func TestNewCreatesParentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub", "dir")
	dbPath := filepath.Join(dir, "test.db")
	s, err := New(dbPath, 4)
	if err != nil {
		t.Fatalf("creating store in nested dir: %v", err)
	}
	s.Close()
}

// ---------------------------------------------------------------------------
// Triple CRUD
// ---------------------------------------------------------------------------

func TestInsertTriples(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.InsertTriples(ctx, sampleTriples(), "doc1")
	if err != nil {
		t.Fatalf("inserting triples: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 inserted, got %d", n)
	}
}

func TestInsertTriplesIgnoresDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertTriples(ctx, sampleTriples(), "doc1"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	n, err := s.InsertTriples(ctx, sampleTriples(), "doc2")
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 newly inserted, got %d", n)
	}
}

func TestTriplesForSubject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertTriples(ctx, sampleTriples(), ""); err != nil {
		t.Fatalf("inserting: %v", err)
	}

	got, err := s.TriplesForSubject(ctx, "https://graphmint.dev/entity/paris")
	if err != nil {
		t.Fatalf("querying subject: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 triples for subject, got %d", len(got))
	}
	for _, tr := range got {
		if tr.Subject != "https://graphmint.dev/entity/paris" {
			t.Errorf("unexpected subject %q", tr.Subject)
		}
	}
}

func TestDeleteBySource(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertTriples(ctx, sampleTriples()[:2], "keep"); err != nil {
		t.Fatalf("inserting: %v", err)
	}
	if _, err := s.InsertTriples(ctx, sampleTriples()[2:], "drop"); err != nil {
		t.Fatalf("inserting: %v", err)
	}

	if err := s.DeleteBySource(ctx, "drop"); err != nil {
		t.Fatalf("deleting by source: %v", err)
	}

	all, err := s.AllTriples(ctx)
	if err != nil {
		t.Fatalf("listing triples: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 remaining triples, got %d", len(all))
	}
}

// ---------------------------------------------------------------------------
// Full-text search
// ---------------------------------------------------------------------------

func TestFTSSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertTriples(ctx, sampleTriples(), ""); err != nil {
		t.Fatalf("inserting: %v", err)
	}

	hits, err := s.FTSSearch(ctx, "Paris", 10)
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected at least one hit for Paris")
	}
	if hits[0].Subject != "https://graphmint.dev/entity/paris" {
		t.Errorf("top hit subject: got %q", hits[0].Subject)
	}
	if hits[0].Score <= 0 {
		t.Errorf("expected positive score, got %f", hits[0].Score)
	}
}

func TestFTSSearchNoMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertTriples(ctx, sampleTriples(), ""); err != nil {
		t.Fatalf("inserting: %v", err)
	}

	hits, err := s.FTSSearch(ctx, "zanzibar", 10)
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
}

func TestFTSSearchReflectsDeletes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertTriples(ctx, sampleTriples(), "tmp"); err != nil {
		t.Fatalf("inserting: %v", err)
	}
	if err := s.DeleteBySource(ctx, "tmp"); err != nil {
		t.Fatalf("deleting: %v", err)
	}

	hits, err := s.FTSSearch(ctx, "Paris", 10)
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected FTS index to drop deleted rows, got %d hits", len(hits))
	}
}

// ---------------------------------------------------------------------------
// Vector search
// ---------------------------------------------------------------------------

func TestVectorSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.InsertLabelEmbedding(ctx, "https://graphmint.dev/entity/paris", "Paris", []float32{1, 0, 0, 0})
	if err != nil {
		t.Fatalf("inserting embedding: %v", err)
	}
	err = s.InsertLabelEmbedding(ctx, "https://graphmint.dev/entity/lyon", "Lyon", []float32{0, 1, 0, 0})
	if err != nil {
		t.Fatalf("inserting embedding: %v", err)
	}

	hits, err := s.VectorSearch(ctx, []float32{0.9, 0.1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("vector search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Object != "Paris" {
		t.Errorf("nearest label: got %q, want %q", hits[0].Object, "Paris")
	}
	if hits[0].Score <= hits[1].Score {
		t.Errorf("expected descending scores, got %f then %f", hits[0].Score, hits[1].Score)
	}
}

func TestInsertLabelEmbeddingIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := s.InsertLabelEmbedding(ctx, "https://graphmint.dev/entity/paris", "Paris", []float32{1, 0, 0, 0})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	stats, err := s.DBStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Labels != 1 {
		t.Fatalf("expected 1 label, got %d", stats.Labels)
	}
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

func TestDBStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertTriples(ctx, sampleTriples(), ""); err != nil {
		t.Fatalf("inserting: %v", err)
	}

	stats, err := s.DBStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Triples != 3 {
		t.Errorf("triples: got %d, want 3", stats.Triples)
	}
	if stats.Subjects != 2 {
		t.Errorf("subjects: got %d, want 2", stats.Subjects)
	}
}
