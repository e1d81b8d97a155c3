// Package linking resolves entity mentions against the knowledge graph:
// candidate retrieval over a search index, disambiguation policies that
// pick a winner (or decline to), and the batch linker that ties them
// together with memoization and bounded concurrency.
package linking

import (
	"context"
	"fmt"
	"sort"
)

// Hit is one scored candidate subject returned by an Index. Predicate and
// Object snapshot the matching row.
type Hit struct {
	Subject   string  `json:"subject"`
	Predicate string  `json:"predicate"`
	Object    string  `json:"object"`
	Score     float64 `json:"score"`
}

// Index is the narrow search contract consumed by linking. Implementations
// must be safe for concurrent use. A query matching nothing returns an
// empty slice, not an error; an error means the lookup itself failed, and
// the two must stay distinguishable.
type Index interface {
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
}

// SearchResponse is what the index knows about one mention text: ranked,
// subject-deduplicated hits.
type SearchResponse struct {
	Text string `json:"text"`
	Hits []Hit  `json:"hits"`
}

// Adapter turns a raw mention string into a SearchResponse. Multiple hits
// on the same subject collapse to the best-scoring one; the surviving hit
// keeps the attributes of the row that achieved the max score.
type Adapter struct {
	index Index
	limit int
}

// defaultSearchLimit bounds how many raw hits are requested per mention.
const defaultSearchLimit = 20

// NewAdapter creates an Adapter over the given index. limit <= 0 uses the
// default.
func NewAdapter(index Index, limit int) *Adapter {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return &Adapter{index: index, limit: limit}
}

// Search queries the index for the mention text and returns the
// deduplicated, score-sorted response. Index errors propagate wrapped so
// callers can still errors.Is against the underlying failure.
func (a *Adapter) Search(ctx context.Context, text string) (*SearchResponse, error) {
	raw, err := a.index.Search(ctx, text, a.limit)
	if err != nil {
		return nil, fmt.Errorf("searching candidates for %q: %w", text, err)
	}

	// Dedupe by subject, keeping the max-scoring hit per subject.
	bySubject := make(map[string]int, len(raw))
	hits := make([]Hit, 0, len(raw))
	for _, h := range raw {
		i, ok := bySubject[h.Subject]
		if !ok {
			bySubject[h.Subject] = len(hits)
			hits = append(hits, h)
			continue
		}
		if h.Score > hits[i].Score {
			hits[i] = h
		}
	}

	// Stable sort: equal scores keep first-seen index order, which the
	// greedy tie-break depends on for reproducibility.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	return &SearchResponse{Text: text, Hits: hits}, nil
}
