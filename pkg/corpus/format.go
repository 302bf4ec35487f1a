package corpus

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Format parses the lines of one corpus layout into RawRecords.
type Format interface {
	// ID returns the unique identifier of this format (e.g. "ngram").
	ID() string
	// Description returns a human-readable description.
	Description() string
	// ParseLine parses one trimmed, non-blank line. Errors wrap ErrMalformed,
	// ErrBadNumber or ErrFiltered.
	ParseLine(line string) (RawRecord, error)
}

// TotalsParser is implemented by formats that carry corpus-wide totals as an
// inline row. ParseTotals reports false for ordinary rows.
type TotalsParser interface {
	ParseTotals(line string) (Totals, bool)
}

// The registry maps corpus layout IDs to their parsers. Each layout file
// registers itself from init. Pipeline stages look layouts up with Get, and
// the CLI and the run ledger's corpus_formats table list them through All.
var (
	registryMu sync.RWMutex
	formats    = make(map[string]Format)
)

// Register makes a corpus layout available under f.ID(). A later
// registration with the same ID replaces the earlier one.
func Register(f Format) {
	registryMu.Lock()
	defer registryMu.Unlock()
	formats[f.ID()] = f
}

// Get returns the corpus layout registered under id.
func Get(id string) (Format, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := formats[id]
	if !ok {
		return nil, fmt.Errorf("unknown corpus format: %q", id)
	}
	return f, nil
}

// All returns the registered corpus layouts sorted by ID.
func All() []Format {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Format, 0, len(formats))
	for _, f := range formats {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}

// Reader scans a corpus in a given Format. Inline totals rows are captured
// rather than yielded.
type Reader struct {
	*Scanner[RawRecord]
	totals *Totals
}

// NewReader returns a Reader over r.
func NewReader(ctx context.Context, r io.Reader, f Format, opts ...Option) *Reader {
	rd := &Reader{}
	tp, hasTotals := f.(TotalsParser)
	rd.Scanner = NewScanner(ctx, r, func(line string) (RawRecord, error) {
		if hasTotals {
			if t, ok := tp.ParseTotals(line); ok {
				rd.totals = &t
				return RawRecord{}, errConsumed
			}
		}
		return f.ParseLine(line)
	}, opts...)
	return rd
}

// Totals returns the inline corpus totals seen so far, or nil.
func (r *Reader) Totals() *Totals {
	return r.totals
}
