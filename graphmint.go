// Package graphmint extracts structured knowledge from unstructured text:
// an LLM generates Turtle fragments with placeholder entity tokens, entity
// linking resolves mentions against the growing triple store, and
// placeholder resolution stitches resolved or freshly minted identifiers
// back into the fragments before they are merged into the store.
package graphmint

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/brunobiangulo/graphmint/chunker"
	"github.com/brunobiangulo/graphmint/extract"
	"github.com/brunobiangulo/graphmint/linking"
	"github.com/brunobiangulo/graphmint/llm"
	"github.com/brunobiangulo/graphmint/ner"
	"github.com/brunobiangulo/graphmint/parser"
	"github.com/brunobiangulo/graphmint/rdf"
	"github.com/brunobiangulo/graphmint/store"
)

// Engine is the main entry point for knowledge extraction.
type Engine interface {
	// Extract runs the full pipeline on raw text: chunk, generate
	// placeholder fragments, link entities, resolve placeholders, and
	// (unless WithDryRun) merge the resulting triples into the store.
	Extract(ctx context.Context, text string, opts ...ExtractOption) (*Extraction, error)

	// ExtractFile parses a document file and extracts from its text.
	ExtractFile(ctx context.Context, path string, opts ...ExtractOption) (*Extraction, error)

	// LinkEntities batch-resolves mentions against the knowledge graph.
	LinkEntities(ctx context.Context, mentions []ner.Mention) ([]linking.LinkedEntity, error)

	// SearchEntities runs candidate retrieval for a free-text query.
	SearchEntities(ctx context.Context, query string) (*linking.SearchResponse, error)

	// Resolve substitutes an explicit placeholder mapping into a fragment.
	Resolve(fragment string, mapping rdf.Mapping) (string, error)

	// Stats returns store row counts.
	Stats(ctx context.Context) (*store.Stats, error)

	// Store returns the underlying store for diagnostic access.
	Store() *store.Store

	// Close cleanly shuts down the engine.
	Close() error
}

// Extraction is the result of one Extract call.
type Extraction struct {
	// Turtle is the final fragment with every placeholder substituted.
	Turtle string `json:"turtle"`

	// Triples are the parsed statements of the final fragment.
	Triples []rdf.Triple `json:"triples"`

	// Entities pairs each unique mention with its linking outcome.
	Entities []linking.LinkedEntity `json:"entities"`

	// Minted maps mention texts that matched nothing in the graph to the
	// identifiers introduced for them (freshly minted, or supplied by an
	// interactive operator).
	Minted map[string]string `json:"minted,omitempty"`

	// Chunks is how many chunks the input was split into.
	Chunks int `json:"chunks"`

	// Inserted is how many triples were newly added to the store
	// (zero on a dry run).
	Inserted int `json:"inserted"`
}

// ExtractOption configures one extraction.
type ExtractOption func(*extractOptions)

type extractOptions struct {
	dryRun bool
	source string
}

// WithDryRun skips merging extracted triples into the store.
func WithDryRun() ExtractOption {
	return func(o *extractOptions) { o.dryRun = true }
}

// WithSource tags committed triples with a provenance label.
func WithSource(source string) ExtractOption {
	return func(o *extractOptions) { o.source = source }
}

type engine struct {
	cfg        Config
	store      *store.Store
	chat       llm.Provider
	embedder   llm.Provider // nil when semantic retrieval is disabled
	recognizer ner.Recognizer
	generator  *extract.Generator
	linker     *linking.Linker
	adapter    *linking.Adapter
	minter     *rdf.Minter
	resolver   *rdf.Resolver
	registry   *parser.Registry
}

// New creates an Engine from configuration.
func New(cfg Config) (Engine, error) {
	chat, err := llm.NewProvider(llm.Config(cfg.Chat))
	if err != nil {
		return nil, fmt.Errorf("%w: chat: %v", ErrInvalidConfig, err)
	}

	var embedder llm.Provider
	if cfg.Embedding.Provider != "" {
		embedder, err = llm.NewProvider(llm.Config(cfg.Embedding))
		if err != nil {
			return nil, fmt.Errorf("%w: embedding: %v", ErrInvalidConfig, err)
		}
	}

	dim := cfg.EmbeddingDim
	if dim <= 0 {
		dim = DefaultConfig().EmbeddingDim
	}

	st, err := store.New(cfg.resolveDBPath(), dim)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	minter := rdf.NewMinter(cfg.Namespace)

	disambiguator, err := newDisambiguator(cfg.Disambiguation, minter)
	if err != nil {
		st.Close()
		return nil, err
	}

	index := linking.NewHybridIndex(st, embedder, cfg.WeightFTS, cfg.WeightVector)

	e := &engine{
		cfg:        cfg,
		store:      st,
		chat:       chat,
		embedder:   embedder,
		recognizer: ner.NewHeuristicRecognizer(),
		generator:  extract.NewGenerator(chat, cfg.ExtractConcurrency),
		linker:     linking.NewLinker(index, disambiguator, cfg.LinkConcurrency),
		adapter:    linking.NewAdapter(index, cfg.SearchLimit),
		minter:     minter,
		resolver:   rdf.NewResolver(minter),
		registry:   parser.NewRegistry(),
	}
	return e, nil
}

// newDisambiguator maps the config policy name to a strategy.
func newDisambiguator(policy string, minter *rdf.Minter) (linking.Disambiguator, error) {
	switch policy {
	case "", "mint":
		return linking.GreedyMinter{Mint: minter.Mint}, nil
	case "greedy":
		return linking.Greedy{}, nil
	case "strict":
		return linking.Strict{}, nil
	case "interactive":
		return linking.NewInteractive(os.Stdin, os.Stderr, minter.Mint), nil
	default:
		return nil, fmt.Errorf("%w: unknown disambiguation policy %q", ErrInvalidConfig, policy)
	}
}

func (e *engine) Extract(ctx context.Context, text string, opts ...ExtractOption) (*Extraction, error) {
	var options extractOptions
	for _, opt := range opts {
		opt(&options)
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	start := time.Now()

	// Chunk, and recognize mentions per chunk to hint the generator.
	chunks := chunker.Split(text, chunker.Config{
		MaxTokens: e.cfg.MaxChunkTokens,
		Overlap:   e.cfg.ChunkOverlap,
	})
	hints := make([][]string, len(chunks))
	for i, c := range chunks {
		hints[i] = mentionTexts(e.recognizer.Recognize(c))
	}

	slog.Info("extract: starting", "chunks", len(chunks))

	fragments, err := e.generator.GenerateAll(ctx, chunks, hints)
	if err != nil {
		return nil, err
	}

	// One linking batch for all unique mention texts across fragments.
	// The generator's bindings are authoritative for which surface forms
	// the fragments actually reference.
	mentions := collectMentions(chunks, fragments)
	linked, err := e.linker.LinkEntities(ctx, mentions)
	if err != nil {
		return nil, err
	}

	byText := make(map[string]*linking.Hit, len(linked))
	for _, le := range linked {
		byText[le.Mention.Text] = le.Hit
	}

	// Resolve placeholders fragment by fragment, minting at most one
	// identifier per mention text so repeated mentions across chunks
	// collapse to one entity.
	minted := make(map[string]string)
	var resolved []string
	for _, frag := range fragments {
		if frag == nil {
			continue
		}
		bindings := make(map[string]string, len(frag.Bindings))
		for _, b := range frag.Bindings {
			hit := byText[b.Mention]
			// Hits from candidate retrieval carry the matched row's
			// attributes; a bare subject is an identifier the
			// disambiguator introduced for an unmatched mention.
			if hit != nil && (hit.Predicate != "" || hit.Object != "") {
				bindings[b.Token] = hit.Subject
				continue
			}
			iri, ok := minted[b.Mention]
			if !ok {
				if hit != nil {
					iri = hit.Subject
				} else {
					iri = e.minter.Mint()
				}
				minted[b.Mention] = iri
			}
			bindings[b.Token] = iri
		}
		out, _ := e.resolver.Resolve(frag.Turtle, bindings)
		if strings.TrimSpace(out) != "" {
			resolved = append(resolved, strings.TrimSpace(out))
		}
	}

	turtle := strings.Join(resolved, "\n")
	triples, skipped := rdf.ParseTriples(turtle)
	for _, line := range skipped {
		slog.Warn("extract: skipping malformed statement", "line", line)
	}
	if len(triples) == 0 {
		return nil, ErrNoTriples
	}

	result := &Extraction{
		Turtle:   turtle,
		Triples:  triples,
		Entities: linked,
		Minted:   minted,
		Chunks:   len(chunks),
	}

	if !options.dryRun {
		inserted, err := e.commit(ctx, triples, options.source)
		if err != nil {
			return nil, err
		}
		result.Inserted = inserted
	}

	slog.Info("extract: done",
		"chunks", len(chunks),
		"triples", len(triples),
		"entities", len(linked),
		"minted", len(minted),
		"inserted", result.Inserted,
		"elapsed", time.Since(start).Round(time.Millisecond))

	return result, nil
}

func (e *engine) ExtractFile(ctx context.Context, path string, opts ...ExtractOption) (*Extraction, error) {
	res, err := e.registry.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return e.Extract(ctx, res.Text, append([]ExtractOption{WithSource(path)}, opts...)...)
}

// commit merges triples into the store and indexes new entity labels for
// semantic retrieval.
func (e *engine) commit(ctx context.Context, triples []rdf.Triple, source string) (int, error) {
	inserted, err := e.store.InsertTriples(ctx, triples, source)
	if err != nil {
		return 0, fmt.Errorf("inserting triples: %w", err)
	}

	if e.embedder == nil {
		return inserted, nil
	}

	// Label triples feed the vector channel of candidate retrieval.
	var subjects []string
	var labels []string
	for _, t := range triples {
		if rdf.LabelPredicates[t.Predicate] && !t.ObjectIsIRI && t.Object != "" {
			subjects = append(subjects, t.Subject)
			labels = append(labels, t.Object)
		}
	}
	if len(labels) == 0 {
		return inserted, nil
	}

	embs, err := e.embedder.Embed(ctx, labels)
	if err != nil {
		// Non-fatal: the triples are stored; only semantic retrieval of
		// the new labels is lost until a re-index.
		slog.Warn("extract: label embedding failed", "labels", len(labels), "error", err)
		return inserted, nil
	}
	for i := range labels {
		if i >= len(embs) || embs[i] == nil {
			continue
		}
		if err := e.store.InsertLabelEmbedding(ctx, subjects[i], labels[i], embs[i]); err != nil {
			slog.Warn("extract: storing label embedding failed",
				"subject", subjects[i], "label", labels[i], "error", err)
		}
	}
	return inserted, nil
}

func (e *engine) LinkEntities(ctx context.Context, mentions []ner.Mention) ([]linking.LinkedEntity, error) {
	return e.linker.LinkEntities(ctx, mentions)
}

func (e *engine) SearchEntities(ctx context.Context, query string) (*linking.SearchResponse, error) {
	return e.adapter.Search(ctx, query)
}

func (e *engine) Resolve(fragment string, mapping rdf.Mapping) (string, error) {
	return rdf.Substitute(fragment, mapping)
}

func (e *engine) Stats(ctx context.Context) (*store.Stats, error) {
	return e.store.DBStats(ctx)
}

func (e *engine) Store() *store.Store {
	return e.store
}

func (e *engine) Close() error {
	return e.store.Close()
}

// mentionTexts returns the unique mention texts in recognition order.
func mentionTexts(mentions []ner.Mention) []string {
	seen := make(map[string]bool, len(mentions))
	var texts []string
	for _, m := range mentions {
		if !seen[m.Text] {
			seen[m.Text] = true
			texts = append(texts, m.Text)
		}
	}
	return texts
}

// collectMentions builds one mention per unique binding text across all
// fragments, locating each text in its chunk for the offset record.
func collectMentions(chunks []string, fragments []*extract.Fragment) []ner.Mention {
	seen := make(map[string]bool)
	var mentions []ner.Mention
	for i, frag := range fragments {
		if frag == nil {
			continue
		}
		for _, b := range frag.Bindings {
			if seen[b.Mention] {
				continue
			}
			seen[b.Mention] = true

			start := 0
			if i < len(chunks) {
				if idx := strings.Index(chunks[i], b.Mention); idx >= 0 {
					start = idx
				}
			}
			mentions = append(mentions, ner.Mention{
				Text: b.Mention,
				Offset: ner.Offset{
					Index:  i,
					Start:  start,
					Length: len(b.Mention),
				},
			})
		}
	}
	return mentions
}
