// Package catalog holds the read-only set of programs and their results.
package catalog

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/playperu/resultboard/internal/resultboard"
)

var ErrNotFound = errors.New("not found")

// Catalog is immutable after construction and safe for concurrent reads.
type Catalog struct {
	programs []resultboard.Program
	results  map[string][]resultboard.Result
}

// Document is the on-disk form accepted by Load.
type Document struct {
	Programs []resultboard.Program           `json:"programs"`
	Results  map[string][]resultboard.Result `json:"results"`
}

// New builds a catalog from programs and per-program results. Results are
// ordered by position; any results embedded in programs are ignored.
func New(programs []resultboard.Program, results map[string][]resultboard.Result) (*Catalog, error) {
	c := &Catalog{
		programs: make([]resultboard.Program, 0, len(programs)),
		results:  make(map[string][]resultboard.Result, len(results)),
	}

	seen := make(map[string]struct{}, len(programs))
	for _, p := range programs {
		if p.Key == "" {
			return nil, errors.New("program key is required")
		}
		if _, dup := seen[p.Key]; dup {
			return nil, fmt.Errorf("duplicate program key %q", p.Key)
		}
		seen[p.Key] = struct{}{}
		p.Results = nil
		c.programs = append(c.programs, p)
	}

	for key, rs := range results {
		if _, ok := seen[key]; !ok {
			return nil, fmt.Errorf("results for unknown program %q", key)
		}
		for _, r := range rs {
			if r.Position < 1 {
				return nil, fmt.Errorf("program %q: position %d must be at least 1", key, r.Position)
			}
		}
		sorted := slices.Clone(rs)
		slices.SortStableFunc(sorted, func(a, b resultboard.Result) int {
			return cmp.Compare(a.Position, b.Position)
		})
		c.results[key] = sorted
	}

	return c, nil
}

// Load decodes a Document from r.
func Load(r io.Reader) (*Catalog, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return New(doc.Programs, doc.Results)
}

// LoadFile reads a catalog from disk. Files ending in .xlsx are parsed as a
// results spreadsheet, anything else as a JSON Document.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadXLSX(f)
	}
	return Load(f)
}

// List returns every program in catalog order. Results are never included.
func (c *Catalog) List() []resultboard.Program {
	out := make([]resultboard.Program, len(c.programs))
	for i, p := range c.programs {
		p.Results = []resultboard.Result{}
		out[i] = p
	}
	return out
}

// Get returns the program for key with its results attached.
func (c *Catalog) Get(key string) (resultboard.Program, error) {
	for _, p := range c.programs {
		if p.Key != key {
			continue
		}
		p.Results = slices.Clone(c.results[key])
		if p.Results == nil {
			p.Results = []resultboard.Result{}
		}
		return p, nil
	}
	return resultboard.Program{}, ErrNotFound
}

func (c *Catalog) Len() int { return len(c.programs) }
