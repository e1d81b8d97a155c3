package linking

import (
	"context"
	"fmt"

	"github.com/brunobiangulo/graphmint/store"
)

// Embedder is the narrow embedding capability HybridIndex needs for its
// semantic channel.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// HybridIndex runs candidate retrieval over the triple store, fusing FTS5
// keyword hits with vector-similarity hits over entity labels. The two
// channels score on different scales (BM25 vs cosine), so the weights are
// relative tuning knobs, not calibrated probabilities. The semantic channel
// is skipped when no embedder is configured.
type HybridIndex struct {
	store     *store.Store
	embedder  Embedder
	weightFTS float64
	weightVec float64
}

// NewHybridIndex creates an index over s. embedder may be nil for
// FTS-only retrieval. Non-positive weights default to 1.0.
func NewHybridIndex(s *store.Store, embedder Embedder, weightFTS, weightVec float64) *HybridIndex {
	if weightFTS <= 0 {
		weightFTS = 1.0
	}
	if weightVec <= 0 {
		weightVec = 1.0
	}
	return &HybridIndex{store: s, embedder: embedder, weightFTS: weightFTS, weightVec: weightVec}
}

// Search returns weighted hits from both channels. Cross-channel
// duplicates are left in place: the adapter's subject-level dedup keeps
// whichever channel scored higher.
func (h *HybridIndex) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	ftsHits, err := h.store.FTSSearch(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fts search: %w", err)
	}

	hits := make([]Hit, 0, len(ftsHits))
	for _, sh := range ftsHits {
		hits = append(hits, Hit{
			Subject:   sh.Subject,
			Predicate: sh.Predicate,
			Object:    sh.Object,
			Score:     sh.Score * h.weightFTS,
		})
	}

	if h.embedder != nil {
		embs, err := h.embedder.Embed(ctx, []string{query})
		if err != nil {
			return nil, fmt.Errorf("embedding query: %w", err)
		}
		if len(embs) == 1 {
			vecHits, err := h.store.VectorSearch(ctx, embs[0], limit)
			if err != nil {
				return nil, fmt.Errorf("vector search: %w", err)
			}
			for _, sh := range vecHits {
				hits = append(hits, Hit{
					Subject:   sh.Subject,
					Predicate: sh.Predicate,
					Object:    sh.Object,
					Score:     sh.Score * h.weightVec,
				})
			}
		}
	}

	return hits, nil
}
