package graphmint

import "errors"

var (
	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("graphmint: invalid configuration")

	// ErrEmptyInput is returned when extraction is given blank text.
	ErrEmptyInput = errors.New("graphmint: empty input text")

	// ErrNoTriples is returned when extraction completes but yields no
	// parseable statements.
	ErrNoTriples = errors.New("graphmint: no triples extracted")

	// ErrLLMUnavailable is returned when the LLM provider is unreachable.
	ErrLLMUnavailable = errors.New("graphmint: LLM provider unavailable")
)
