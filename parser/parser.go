// Package parser extracts raw text from document files so whole documents
// can be fed through knowledge extraction.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Result is the extracted text of one document.
type Result struct {
	Text     string
	Format   string
	Metadata map[string]string
}

// Parser can extract text from a specific document format.
type Parser interface {
	Parse(ctx context.Context, path string) (*Result, error)
	SupportedFormats() []string
}

// Registry maps file formats to parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates a registry with the built-in parsers registered.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]Parser)}
	for _, p := range []Parser{&TextParser{}, &PDFParser{}, &XLSXParser{}} {
		for _, f := range p.SupportedFormats() {
			r.parsers[f] = p
		}
	}
	return r
}

// Register adds or replaces the parser for a format.
func (r *Registry) Register(format string, p Parser) {
	r.parsers[format] = p
}

// Get returns the parser for a format.
func (r *Registry) Get(format string) (Parser, error) {
	p, ok := r.parsers[format]
	if !ok {
		return nil, fmt.Errorf("no parser for format: %s", format)
	}
	return p, nil
}

// ParseFile detects the format from the file extension and parses.
func (r *Registry) ParseFile(ctx context.Context, path string) (*Result, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	p, err := r.Get(format)
	if err != nil {
		return nil, err
	}
	res, err := p.Parse(ctx, path)
	if err != nil {
		return nil, err
	}
	res.Format = format
	return res, nil
}
