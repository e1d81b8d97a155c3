package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/brunobiangulo/graphmint"
	"github.com/brunobiangulo/graphmint/linking"
	"github.com/brunobiangulo/graphmint/ner"
	"github.com/brunobiangulo/graphmint/rdf"
)

type handler struct {
	engine graphmint.Engine
}

func newHandler(e graphmint.Engine) *handler {
	return &handler{engine: e}
}

// POST /extract
// Body: {"text": "...", "source": "...", "dry_run": false}
func (h *handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Minute)
	defer cancel()

	var req struct {
		Text   string `json:"text"`
		Source string `json:"source,omitempty"`
		DryRun bool   `json:"dry_run,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	var opts []graphmint.ExtractOption
	if req.Source != "" {
		opts = append(opts, graphmint.WithSource(req.Source))
	}
	if req.DryRun {
		opts = append(opts, graphmint.WithDryRun())
	}

	result, err := h.engine.Extract(ctx, req.Text, opts...)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, graphmint.ErrEmptyInput) || errors.Is(err, graphmint.ErrNoTriples) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, "extraction failed")
		slog.Error("extract error", "error", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// POST /documents
// Body: {"path": "..."} — extract from a document file on disk.
func (h *handler) handleExtractFile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Minute)
	defer cancel()

	var req struct {
		Path   string `json:"path"`
		DryRun bool   `json:"dry_run,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	// Validate that path is a real file (prevents directory traversal probing).
	absPath, err := filepath.Abs(req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(absPath)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusBadRequest, "path must be an existing file")
		return
	}

	var opts []graphmint.ExtractOption
	if req.DryRun {
		opts = append(opts, graphmint.WithDryRun())
	}

	result, err := h.engine.ExtractFile(ctx, absPath, opts...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "extraction failed")
		slog.Error("extract file error", "path", absPath, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// POST /link
// Body: {"mentions": [{"text": "...", "offset": {...}}, ...]}
func (h *handler) handleLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	var req struct {
		Mentions []ner.Mention `json:"mentions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	linked, err := h.engine.LinkEntities(ctx, req.Mentions)
	if err != nil {
		if errors.Is(err, linking.ErrNoSearchHits) {
			// Strict policy: expected, recoverable — the caller mints.
			writeJSON(w, http.StatusConflict, map[string]string{
				"error": err.Error(),
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "linking failed")
		slog.Error("link error", "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entities": linked,
	})
}

// POST /resolve
// Body: {"fragment": "...", "mapping": {"PLACEHOLDER_ENTITY_1": "https://..."}}
func (h *handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fragment string      `json:"fragment"`
		Mapping  rdf.Mapping `json:"mapping"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resolved, err := h.engine.Resolve(req.Fragment, req.Mapping)
	if err != nil {
		var unresolved *rdf.UnresolvedPlaceholderError
		if errors.As(err, &unresolved) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": "unresolved placeholder",
				"token": unresolved.Token,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "resolution failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"fragment": resolved,
	})
}

// GET /entities/search?q=...
func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	resp, err := h.engine.SearchEntities(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "search failed")
		slog.Error("search error", "query", query, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /stats
func (h *handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stats failed")
		slog.Error("stats error", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
		"code":  strconv.Itoa(status),
	})
}
