// Package chunker splits raw text into extraction-sized chunks. Paragraphs
// are packed up to a token budget with sentence-level overlap so entity
// mentions near chunk boundaries appear in both neighbors.
package chunker

import (
	"math"
	"regexp"
	"strings"
)

// Config controls chunk sizing.
type Config struct {
	MaxTokens int // token budget per chunk
	Overlap   int // tokens of trailing context carried into the next chunk
}

// DefaultConfig returns sizes that fit comfortably in small-model context
// windows.
func DefaultConfig() Config {
	return Config{MaxTokens: 512, Overlap: 64}
}

var paragraphRe = regexp.MustCompile(`\n\s*\n`)

// estimateTokens approximates token count using a word-based heuristic.
func estimateTokens(text string) int {
	words := len(strings.Fields(text))
	return int(math.Ceil(float64(words) * 1.3))
}

// Split breaks text into chunks under cfg.MaxTokens. Paragraph boundaries
// are preserved where possible; a single oversized paragraph is split on
// sentence boundaries. Zero-value config fields fall back to defaults.
func Split(text string, cfg Config) []string {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if estimateTokens(text) <= cfg.MaxTokens {
		return []string{text}
	}

	var units []string
	for _, p := range paragraphRe.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if estimateTokens(p) > cfg.MaxTokens {
			units = append(units, splitSentences(p, cfg.MaxTokens)...)
		} else {
			units = append(units, p)
		}
	}

	var chunks []string
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, "\n\n"))
		// Carry overlap: keep trailing units within the overlap budget.
		var carry []string
		carryTokens := 0
		for i := len(current) - 1; i >= 0 && carryTokens < cfg.Overlap; i-- {
			carry = append([]string{current[i]}, carry...)
			carryTokens += estimateTokens(current[i])
		}
		current = carry
		currentTokens = carryTokens
	}

	for _, u := range units {
		t := estimateTokens(u)
		if currentTokens+t > cfg.MaxTokens && currentTokens > 0 {
			flush()
		}
		current = append(current, u)
		currentTokens += t
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n\n"))
	}
	return chunks
}

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+["')\]]*\s*|[^.!?]+$`)

// splitSentences packs sentences of one oversized paragraph into units
// under the token budget.
func splitSentences(paragraph string, maxTokens int) []string {
	sentences := sentenceRe.FindAllString(paragraph, -1)

	var units []string
	var current strings.Builder
	currentTokens := 0

	for _, s := range sentences {
		t := estimateTokens(s)
		if currentTokens+t > maxTokens && currentTokens > 0 {
			units = append(units, strings.TrimSpace(current.String()))
			current.Reset()
			currentTokens = 0
		}
		current.WriteString(s)
		currentTokens += t
	}
	if current.Len() > 0 {
		units = append(units, strings.TrimSpace(current.String()))
	}
	return units
}
