package graphmint

import (
	"os"
	"path/filepath"
)

// Config holds all configuration for the graphmint engine.
type Config struct {
	// DBPath is the full path to the SQLite database file.
	// If empty, defaults to ~/.graphmint/<DBName>.db
	DBPath string `json:"db_path" yaml:"db_path"`

	// DBName is the name for the database (used when DBPath is empty).
	// Defaults to "graphmint".
	DBName string `json:"db_name" yaml:"db_name"`

	// StorageDir controls where the database is created when DBPath
	// is not explicitly set. Options: "home" (default) uses ~/.graphmint/,
	// "local" uses the current working directory.
	StorageDir string `json:"storage_dir" yaml:"storage_dir"`

	// LLM providers. Embedding is optional; leaving its provider empty
	// disables the semantic candidate-retrieval channel.
	Chat      LLMConfig `json:"chat" yaml:"chat"`
	Embedding LLMConfig `json:"embedding" yaml:"embedding"`

	// Namespace is the base IRI under which fresh entity identifiers
	// are minted.
	Namespace string `json:"namespace" yaml:"namespace"`

	// Disambiguation selects the empty-candidate policy: "greedy" (no
	// match resolves to nothing), "mint" (no match mints a fresh
	// identifier), "strict" (no match is an error the caller handles),
	// or "interactive" (a human operator decides on stdin/stderr).
	Disambiguation string `json:"disambiguation" yaml:"disambiguation"`

	// Candidate retrieval weights and limits.
	WeightFTS    float64 `json:"weight_fts" yaml:"weight_fts"`
	WeightVector float64 `json:"weight_vector" yaml:"weight_vector"`
	SearchLimit  int     `json:"search_limit" yaml:"search_limit"`

	// Concurrency bounds.
	LinkConcurrency    int `json:"link_concurrency" yaml:"link_concurrency"`
	ExtractConcurrency int `json:"extract_concurrency" yaml:"extract_concurrency"`

	// Chunking.
	MaxChunkTokens int `json:"max_chunk_tokens" yaml:"max_chunk_tokens"`
	ChunkOverlap   int `json:"chunk_overlap" yaml:"chunk_overlap"`

	// Embedding dimensions (must match model).
	EmbeddingDim int `json:"embedding_dim" yaml:"embedding_dim"`
}

// LLMConfig configures a single LLM provider endpoint.
type LLMConfig struct {
	Provider string `json:"provider" yaml:"provider"` // ollama, openai, openrouter, groq, custom
	Model    string `json:"model" yaml:"model"`
	BaseURL  string `json:"base_url" yaml:"base_url"`
	APIKey   string `json:"api_key" yaml:"api_key"`
}

// DefaultConfig returns a Config with sensible defaults for local
// inference. Database is stored in ~/.graphmint/graphmint.db by default.
func DefaultConfig() Config {
	return Config{
		DBName:     "graphmint",
		StorageDir: "home",
		Chat: LLMConfig{
			Provider: "ollama",
			Model:    "llama3.1:8b",
			BaseURL:  "http://localhost:11434",
		},
		Embedding: LLMConfig{
			Provider: "ollama",
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
		Disambiguation:     "mint",
		WeightFTS:          1.0,
		WeightVector:       1.0,
		SearchLimit:        20,
		LinkConcurrency:    16,
		ExtractConcurrency: 8,
		MaxChunkTokens:     512,
		ChunkOverlap:       64,
		EmbeddingDim:       768,
	}
}

// resolveDBPath computes the final database path from config fields.
func (c *Config) resolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}

	name := c.DBName
	if name == "" {
		name = "graphmint"
	}

	switch c.StorageDir {
	case "local", "cwd":
		return name + ".db"
	default: // "home" or empty
		home, err := os.UserHomeDir()
		if err != nil {
			return name + ".db" // fallback to cwd
		}
		dir := filepath.Join(home, ".graphmint")
		return filepath.Join(dir, name+".db")
	}
}
