// Package extract turns natural-language text into Turtle graph fragments.
// The LLM never sees or invents entity identifiers: every entity slot in
// the generated fragment is a placeholder token, bound to the mention text
// it stands for, and identifiers are stitched in later by entity linking
// and placeholder resolution.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/brunobiangulo/graphmint/llm"
)

// tripleExtractionPrompt asks the model to extract triples with
// placeholder entity identifiers. The placeholder token shape and the
// bindings block are contracts with the resolution pipeline.
const tripleExtractionPrompt = `You are a knowledge extraction engine. Extract factual statements from the text as RDF triples in Turtle.

STRICT RULES:
- Never invent entity identifiers. Every entity (person, place, organization, thing) is written as <PLACEHOLDER_ENTITY_N> where N is a number, starting at 1.
- The same entity always uses the same placeholder; different entities use different placeholders.
- Predicates are full IRIs from well-known vocabularies (https://schema.org/..., http://www.w3.org/2000/01/rdf-schema#label, http://www.w3.org/1999/02/22-rdf-syntax-ns#type).
- Every entity gets one rdfs:label triple with its name as it appears in the text.
- Literal values are double-quoted. One statement per line, terminated by " .".
- Only extract statements clearly supported by the text.

Return a JSON object with exactly two keys:
  "turtle"   : string, the Turtle fragment (lines separated by \n)
  "bindings" : array of {"placeholder": "PLACEHOLDER_ENTITY_N", "mention": "exact text naming the entity"}

Every placeholder used in the turtle must appear in bindings exactly once.
Do NOT include any text outside the JSON object.

EXAMPLE:

Input: "Kyle moved to New York in 2019."
Output:
{"turtle": "<PLACEHOLDER_ENTITY_1> <http://www.w3.org/2000/01/rdf-schema#label> \"Kyle\" .\n<PLACEHOLDER_ENTITY_1> <https://schema.org/homeLocation> <PLACEHOLDER_ENTITY_2> .\n<PLACEHOLDER_ENTITY_2> <http://www.w3.org/2000/01/rdf-schema#label> \"New York\" .", "bindings": [{"placeholder": "PLACEHOLDER_ENTITY_1", "mention": "Kyle"}, {"placeholder": "PLACEHOLDER_ENTITY_2", "mention": "New York"}]}

%s
TEXT:
%s`

// defaultConcurrency is the default semaphore size for parallel chunk
// extraction.
const defaultConcurrency = 8

// perChunkTimeout caps how long a single chunk extraction can take.
const perChunkTimeout = 90 * time.Second

// minChunkTokens skips trivial chunks (headers, stray lines).
const minChunkTokens = 8

// Binding associates a placeholder token with the mention text it stands
// for.
type Binding struct {
	Token   string `json:"placeholder"`
	Mention string `json:"mention"`
}

// Fragment is one chunk's generated output: placeholder-laden Turtle plus
// the placeholder-to-mention bookkeeping.
type Fragment struct {
	Turtle   string    `json:"turtle"`
	Bindings []Binding `json:"bindings"`
}

// Generator produces fragments from text chunks via the chat model.
type Generator struct {
	chat        llm.Provider
	concurrency int
}

// NewGenerator creates a Generator. concurrency <= 0 uses the default.
func NewGenerator(chat llm.Provider, concurrency int) *Generator {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Generator{chat: chat, concurrency: concurrency}
}

// estimateTokens approximates token count using a word-based heuristic.
func estimateTokens(text string) int {
	words := len(strings.Fields(text))
	return int(math.Ceil(float64(words) * 1.3))
}

// Generate extracts one fragment from a single chunk of text. hints are
// recognized mention texts fed to the prompt so the model does not miss
// surface forms the recognizer already found.
func (g *Generator) Generate(ctx context.Context, text string, hints []string) (*Fragment, error) {
	var hintsSection string
	if len(hints) > 0 {
		hintsSection = fmt.Sprintf(
			"HINTS: The following entity mentions were detected in the text. Make sure each gets a placeholder:\n%s\n",
			strings.Join(hints, ", "),
		)
	}

	prompt := fmt.Sprintf(tripleExtractionPrompt, hintsSection, text)

	resp, err := g.chat.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "user", Content: prompt},
		},
		Temperature:    0.0,
		ResponseFormat: "json_object",
	})
	if err != nil {
		return nil, fmt.Errorf("triple extraction llm chat: %w", err)
	}

	jsonStr, err := extractJSON(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parsing triple extraction result: %w", err)
	}

	var frag Fragment
	if err := json.Unmarshal([]byte(jsonStr), &frag); err != nil {
		return nil, fmt.Errorf("unmarshalling triple extraction result: %w", err)
	}

	frag.Bindings = validBindings(frag.Bindings)
	return &frag, nil
}

// GenerateAll extracts fragments from chunks concurrently. The result
// slice lines up with chunks by index; a chunk whose extraction failed (or
// was skipped as trivial) has a nil entry. All chunks failing is an error.
func (g *Generator) GenerateAll(ctx context.Context, chunks []string, hints [][]string) ([]*Fragment, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	fragments := make([]*Fragment, len(chunks))

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		sem      = make(chan struct{}, g.concurrency)
		errs     []string
		eligible int
		start    = time.Now()
	)

	for i, chunk := range chunks {
		if estimateTokens(chunk) < minChunkTokens {
			slog.Debug("extract: skipping trivial chunk", "chunk", i, "tokens", estimateTokens(chunk))
			continue
		}
		eligible++

		var chunkHints []string
		if i < len(hints) {
			chunkHints = hints[i]
		}

		wg.Add(1)
		go func(i int, chunk string, chunkHints []string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				errs = append(errs, fmt.Sprintf("chunk %d: %v", i, ctx.Err()))
				mu.Unlock()
				return
			}

			chunkCtx, cancel := context.WithTimeout(ctx, perChunkTimeout)
			defer cancel()

			chunkStart := time.Now()
			frag, err := g.Generate(chunkCtx, chunk, chunkHints)
			if err != nil {
				slog.Warn("extract: chunk failed", "chunk", i, "error", err,
					"elapsed", time.Since(chunkStart).Round(time.Millisecond))
				mu.Lock()
				errs = append(errs, fmt.Sprintf("chunk %d: %v", i, err))
				mu.Unlock()
				return
			}

			mu.Lock()
			fragments[i] = frag
			mu.Unlock()
			slog.Info("extract: chunk processed", "chunk", i,
				"placeholders", len(frag.Bindings),
				"elapsed", time.Since(chunkStart).Round(time.Millisecond),
				"total_elapsed", time.Since(start).Round(time.Millisecond))
		}(i, chunk, chunkHints)
	}
	wg.Wait()

	if eligible > 0 && len(errs) == eligible {
		return nil, fmt.Errorf("extract: all %d eligible chunks failed; first error: %s", eligible, errs[0])
	}
	if len(errs) > 0 {
		slog.Warn("extract: completed with failures",
			"succeeded", eligible-len(errs), "failed", len(errs), "total", eligible)
	}
	return fragments, nil
}

// codeBlockRe strips markdown code fences from LLM output.
var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// tokenRe validates the placeholder token shape in bindings.
var tokenRe = regexp.MustCompile(`^PLACEHOLDER_ENTITY_\d+$`)

// extractJSON attempts to find a valid JSON object in the LLM response text.
// It handles common LLM quirks: markdown code blocks, text before/after JSON.
func extractJSON(raw string) (string, error) {
	if m := codeBlockRe.FindStringSubmatch(raw); len(m) > 1 {
		raw = m[1]
	}

	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "{") {
		return raw, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1], nil
	}

	return "", fmt.Errorf("no JSON object found in response")
}

// validBindings drops bindings with malformed tokens or empty mentions and
// collapses duplicate tokens, keeping the first mention. The model
// occasionally repeats or mangles entries; downstream counts on one mention
// per token.
func validBindings(bindings []Binding) []Binding {
	seen := make(map[string]bool, len(bindings))
	out := bindings[:0]
	for _, b := range bindings {
		b.Mention = strings.TrimSpace(b.Mention)
		if !tokenRe.MatchString(b.Token) || b.Mention == "" || seen[b.Token] {
			continue
		}
		seen[b.Token] = true
		out = append(out, b)
	}
	return out
}
