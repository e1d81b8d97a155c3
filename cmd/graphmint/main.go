package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/brunobiangulo/graphmint"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to JSON config file")
		dbPath      = flag.String("db", "", "path to the SQLite database (overrides config)")
		filePath    = flag.String("file", "", "extract from a document file instead of stdin")
		text        = flag.String("text", "", "extract from this text instead of stdin")
		source      = flag.String("source", "", "provenance tag for committed triples")
		policy      = flag.String("policy", "", "disambiguation policy: mint, greedy, strict, interactive")
		interactive = flag.Bool("interactive", false, "shorthand for -policy interactive")
		dryRun      = flag.Bool("dry-run", false, "print resolved Turtle without committing to the store")
		search      = flag.String("search", "", "search stored entities and exit")
		stats       = flag.Bool("stats", false, "print store statistics and exit")
		verbose     = flag.Bool("v", false, "verbose logging")
		timeout     = flag.Duration("timeout", 30*time.Minute, "overall deadline")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := graphmint.DefaultConfig()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			fatal("reading config: %v", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			fatal("parsing config: %v", err)
		}
	}
	applyEnv(&cfg)
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *policy != "" {
		cfg.Disambiguation = *policy
	}
	if *interactive {
		cfg.Disambiguation = "interactive"
	}

	engine, err := graphmint.New(cfg)
	if err != nil {
		fatal("creating engine: %v", err)
	}
	defer engine.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch {
	case *stats:
		s, err := engine.Stats(ctx)
		if err != nil {
			fatal("stats: %v", err)
		}
		printJSON(s)
		return

	case *search != "":
		resp, err := engine.SearchEntities(ctx, *search)
		if err != nil {
			fatal("search: %v", err)
		}
		if len(resp.Hits) == 0 {
			fmt.Fprintln(os.Stderr, "no matches")
			return
		}
		for _, hit := range resp.Hits {
			fmt.Printf("%.3f\t%s\t%s\n", hit.Score, hit.Subject, hit.Object)
		}
		return
	}

	var opts []graphmint.ExtractOption
	if *dryRun {
		opts = append(opts, graphmint.WithDryRun())
	}
	if *source != "" {
		opts = append(opts, graphmint.WithSource(*source))
	}

	var result *graphmint.Extraction
	switch {
	case *filePath != "":
		result, err = engine.ExtractFile(ctx, *filePath, opts...)
	case *text != "":
		result, err = engine.Extract(ctx, *text, opts...)
	default:
		input, readErr := io.ReadAll(os.Stdin)
		if readErr != nil {
			fatal("reading stdin: %v", readErr)
		}
		result, err = engine.Extract(ctx, string(input), opts...)
	}
	if err != nil {
		fatal("extract: %v", err)
	}

	fmt.Println(result.Turtle)
	fmt.Fprintf(os.Stderr, "%d triples from %d chunks, %d entities linked, %d minted, %d inserted\n",
		len(result.Triples), result.Chunks, len(result.Entities), len(result.Minted), result.Inserted)
}

// applyEnv layers GRAPHMINT_* environment variables over the config.
func applyEnv(cfg *graphmint.Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.DBPath, "GRAPHMINT_DB_PATH")
	set(&cfg.Namespace, "GRAPHMINT_NAMESPACE")
	set(&cfg.Disambiguation, "GRAPHMINT_DISAMBIGUATION")
	set(&cfg.Chat.Provider, "GRAPHMINT_CHAT_PROVIDER")
	set(&cfg.Chat.Model, "GRAPHMINT_CHAT_MODEL")
	set(&cfg.Chat.BaseURL, "GRAPHMINT_CHAT_BASE_URL")
	set(&cfg.Chat.APIKey, "GRAPHMINT_CHAT_API_KEY")
	set(&cfg.Embedding.Provider, "GRAPHMINT_EMBED_PROVIDER")
	set(&cfg.Embedding.Model, "GRAPHMINT_EMBED_MODEL")
	set(&cfg.Embedding.BaseURL, "GRAPHMINT_EMBED_BASE_URL")
	set(&cfg.Embedding.APIKey, "GRAPHMINT_EMBED_API_KEY")

	if cfg.Chat.APIKey == "" {
		cfg.Chat.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

func printJSON(v interface{}) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
