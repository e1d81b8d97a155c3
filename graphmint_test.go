package graphmint

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chat.Provider != "ollama" {
		t.Errorf("chat provider: got %q", cfg.Chat.Provider)
	}
	if cfg.Disambiguation != "mint" {
		t.Errorf("disambiguation: got %q", cfg.Disambiguation)
	}
	if cfg.MaxChunkTokens <= 0 || cfg.ChunkOverlap < 0 {
		t.Errorf("chunk sizing: %d/%d", cfg.MaxChunkTokens, cfg.ChunkOverlap)
	}
	if cfg.EmbeddingDim <= 0 {
		t.Errorf("embedding dim: %d", cfg.EmbeddingDim)
	}
}

func TestResolveDBPathExplicit(t *testing.T) {
	cfg := Config{DBPath: "/data/kg.db", DBName: "ignored"}
	if got := cfg.resolveDBPath(); got != "/data/kg.db" {
		t.Errorf("got %q", got)
	}
}

func TestResolveDBPathLocal(t *testing.T) {
	cfg := Config{DBName: "mygraph", StorageDir: "local"}
	if got := cfg.resolveDBPath(); got != "mygraph.db" {
		t.Errorf("got %q", got)
	}
}

func TestResolveDBPathHome(t *testing.T) {
	cfg := Config{DBName: "mygraph", StorageDir: "home"}
	got := cfg.resolveDBPath()
	if !strings.HasSuffix(got, filepath.Join(".graphmint", "mygraph.db")) {
		t.Errorf("got %q", got)
	}
}

func TestNewRejectsUnknownPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "test.db")
	cfg.Disambiguation = "roulette"

	_, err := New(cfg)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewRejectsMissingChatProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Chat.Provider = ""

	_, err := New(cfg)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
