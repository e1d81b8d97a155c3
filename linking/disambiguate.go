package linking

import (
	"context"
	"errors"
)

// ErrNoSearchHits is returned by the Strict disambiguator when a mention
// has no candidates. The message is a wire contract with callers that
// match on it to decide to mint a fresh identifier; do not reword.
var ErrNoSearchHits = errors.New("No search hits available for disambiguation")

// Disambiguator reduces a SearchResponse to at most one winning candidate.
// A nil hit with a nil error means "no existing entity matches; mint".
// The three empty-candidate policies (nil, mint, fail) are deliberately
// separate named strategies so callers can tell them apart.
type Disambiguator interface {
	Disambiguate(ctx context.Context, resp *SearchResponse) (*Hit, error)
}

// Greedy picks the highest-scoring candidate and returns nil on an empty
// response. Ties go to the first hit in the response's sort order.
type Greedy struct{}

func (Greedy) Disambiguate(_ context.Context, resp *SearchResponse) (*Hit, error) {
	if len(resp.Hits) == 0 {
		return nil, nil
	}
	h := resp.Hits[0]
	return &h, nil
}

// GreedyMinter picks the highest-scoring candidate and mints a brand-new
// identifier when the response is empty, so every mention resolves to some
// subject.
type GreedyMinter struct {
	Mint func() string
}

func (g GreedyMinter) Disambiguate(_ context.Context, resp *SearchResponse) (*Hit, error) {
	if len(resp.Hits) == 0 {
		return &Hit{Subject: g.Mint()}, nil
	}
	h := resp.Hits[0]
	return &h, nil
}

// Strict picks the highest-scoring candidate and fails with ErrNoSearchHits
// on an empty response. The failure is an expected, recoverable condition:
// the caller is supposed to mint and proceed.
type Strict struct{}

func (Strict) Disambiguate(_ context.Context, resp *SearchResponse) (*Hit, error) {
	if len(resp.Hits) == 0 {
		return nil, ErrNoSearchHits
	}
	h := resp.Hits[0]
	return &h, nil
}
