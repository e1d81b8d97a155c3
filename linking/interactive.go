package linking

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/brunobiangulo/graphmint/rdf"
)

// Interactive presents ranked candidates to a human operator and lets them
// pick one, supply an identifier manually, or reject all candidates. On
// rejection (or an empty candidate list) it falls back to the configured
// minting function.
type Interactive struct {
	in   *bufio.Reader
	out  io.Writer
	mint func() string
}

// NewInteractive creates an Interactive disambiguator reading operator
// input from in and writing prompts to out. mint is invoked when the
// operator rejects all candidates.
func NewInteractive(in io.Reader, out io.Writer, mint func() string) *Interactive {
	return &Interactive{in: bufio.NewReader(in), out: out, mint: mint}
}

func (d *Interactive) Disambiguate(ctx context.Context, resp *SearchResponse) (*Hit, error) {
	if len(resp.Hits) > 0 {
		fmt.Fprintf(d.out, "Candidates for %q:\n", resp.Text)
		for i, h := range resp.Hits {
			fmt.Fprintf(d.out, "  [%d] %s (score %.3f)\n", i+1, h.Subject, h.Score)
		}
	} else {
		fmt.Fprintf(d.out, "No candidates for %q.\n", resp.Text)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fmt.Fprintf(d.out, "Select [1-%d], m = manual IRI, enter = none: ", len(resp.Hits))
		line, err := d.in.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return d.none()
			}
			return nil, fmt.Errorf("reading selection: %w", err)
		}
		line = strings.TrimSpace(line)

		switch {
		case line == "" || line == "n":
			return d.none()
		case line == "m":
			hit, err := d.manual(ctx)
			if err != nil {
				return nil, err
			}
			if hit != nil {
				return hit, nil
			}
			// Operator backed out of manual entry; re-show the menu.
		default:
			n, err := strconv.Atoi(line)
			if err != nil || n < 1 || n > len(resp.Hits) {
				fmt.Fprintf(d.out, "Invalid selection %q.\n", line)
				continue
			}
			h := resp.Hits[n-1]
			return &h, nil
		}
	}
}

// none handles "none of these": mint if configured, otherwise report no
// match.
func (d *Interactive) none() (*Hit, error) {
	if d.mint != nil {
		return &Hit{Subject: d.mint()}, nil
	}
	return nil, nil
}

// manual prompts for an identifier, re-prompting until it is a valid
// absolute IRI. An empty line returns to the candidate menu.
func (d *Interactive) manual(ctx context.Context) (*Hit, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fmt.Fprint(d.out, "Identifier (absolute IRI, enter to cancel): ")
		line, err := d.in.ReadString('\n')
		if err != nil && line == "" {
			return nil, nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return nil, nil
		}
		if err := rdf.ValidateIRI(line); err != nil {
			fmt.Fprintf(d.out, "%v\n", err)
			continue
		}
		return &Hit{Subject: line}, nil
	}
}
