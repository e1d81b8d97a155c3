package linking

import (
	"context"
	"sync"

	"github.com/brunobiangulo/graphmint/ner"
)

// LinkedEntity pairs a mention with its resolved candidate. A nil Hit
// means no existing graph entity matched and the caller must mint a new
// identifier.
type LinkedEntity struct {
	Mention ner.Mention `json:"mention"`
	Hit     *Hit        `json:"hit,omitempty"`
}

// defaultConcurrency bounds concurrent index lookups in a batch.
const defaultConcurrency = 16

// Linker batch-resolves mentions against the knowledge graph. Lookups for
// distinct mention texts run concurrently; identical texts share a single
// search. A Linker is safe for concurrent use: all per-batch state is
// local to the LinkEntities call.
type Linker struct {
	adapter       *Adapter
	disambiguator Disambiguator
	concurrency   int
}

// NewLinker creates a Linker over the given index with the given
// disambiguation policy. concurrency <= 0 uses the default.
func NewLinker(index Index, d Disambiguator, concurrency int) *Linker {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Linker{
		adapter:       NewAdapter(index, 0),
		disambiguator: d,
		concurrency:   concurrency,
	}
}

// LinkEntity resolves a single mention: search, then disambiguate. Safe to
// invoke concurrently; each call owns its result.
func (l *Linker) LinkEntity(ctx context.Context, m ner.Mention) (LinkedEntity, error) {
	resp, err := l.adapter.Search(ctx, m.Text)
	if err != nil {
		return LinkedEntity{}, err
	}
	hit, err := l.disambiguator.Disambiguate(ctx, resp)
	if err != nil {
		return LinkedEntity{}, err
	}
	return LinkedEntity{Mention: m, Hit: hit}, nil
}

// LinkEntities resolves a batch of mentions. The result has the same
// length and order as the input. The index is queried exactly once per
// unique mention text; disambiguation runs per mention, since interactive
// policies may answer differently for repeated mentions.
func (l *Linker) LinkEntities(ctx context.Context, mentions []ner.Mention) ([]LinkedEntity, error) {
	if len(mentions) == 0 {
		return nil, nil
	}

	// Collect unique mention texts, preserving first-appearance order.
	var unique []string
	seen := make(map[string]bool, len(mentions))
	for _, m := range mentions {
		if !seen[m.Text] {
			seen[m.Text] = true
			unique = append(unique, m.Text)
		}
	}

	// Fan out one search per unique text. The response cache is scoped to
	// this call; nothing is shared across batches.
	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		sem       = make(chan struct{}, l.concurrency)
		responses = make(map[string]*SearchResponse, len(unique))
		firstErr  error
	)

	for _, text := range unique {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				if firstErr == nil {
					firstErr = ctx.Err()
				}
				mu.Unlock()
				return
			}

			resp, err := l.adapter.Search(ctx, text)
			mu.Lock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
			} else {
				responses[text] = resp
			}
			mu.Unlock()
		}(text)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	// Disambiguate in input order so results line up with mentions and
	// interactive prompting stays deterministic.
	linked := make([]LinkedEntity, len(mentions))
	for i, m := range mentions {
		hit, err := l.disambiguator.Disambiguate(ctx, responses[m.Text])
		if err != nil {
			return nil, err
		}
		linked[i] = LinkedEntity{Mention: m, Hit: hit}
	}
	return linked, nil
}
