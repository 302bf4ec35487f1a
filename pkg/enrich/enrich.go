// Package enrich classifies aggregated word-list records, attaches relative
// frequencies and keeps the corpus-wide symmetry tallies.
package enrich

import (
	"iter"
	"unicode/utf8"

	"github.com/hazyhaar/isograms/pkg/aggregate"
	"github.com/hazyhaar/isograms/pkg/classify"
	"github.com/hazyhaar/isograms/pkg/corpus"
)

// Row is one isogram in the output, in column order.
type Row struct {
	Isogramy       int
	Length         int
	Normalized     string
	Original       string
	MatchCount     int64
	VolumeCount    int64
	FreqPerMillion float64
	VolumePct      float64
	Palindrome     bool
	Tautonym       bool

	// FreqKnown and VolumeKnown are false when the corpus totals needed for
	// FreqPerMillion or VolumePct are missing.
	FreqKnown   bool
	VolumeKnown bool
}

// Summary is the end-of-run totals.
type Summary struct {
	TotalTokens  int64
	TotalVolumes int64
	Isograms     int64
	Palindromes  int64
	Tautonyms    int64
}

// Enricher turns aggregated records into isogram rows. It is not safe for
// concurrent use.
type Enricher struct {
	totals *corpus.Totals
	sum    Summary
}

// New returns an Enricher. totals may be nil, in which case relative
// frequencies are 0.
func New(totals *corpus.Totals) *Enricher {
	e := &Enricher{totals: totals}
	if totals != nil {
		e.sum.TotalTokens = totals.Tokens
		e.sum.TotalVolumes = totals.Volumes
	}
	return e
}

// Enrich classifies rec. Palindromes and tautonyms are tallied for every
// record; ok is false when rec is not an isogram and the record is dropped.
func (e *Enricher) Enrich(rec aggregate.Record) (Row, bool) {
	c := classify.Classify(rec.Normalized)
	if c.Palindrome {
		e.sum.Palindromes++
	}
	if c.Tautonym {
		e.sum.Tautonyms++
	}
	if c.Isogramy == 0 {
		return Row{}, false
	}
	e.sum.Isograms++

	row := Row{
		Isogramy:    c.Isogramy,
		Length:      utf8.RuneCountInString(rec.Normalized),
		Normalized:  rec.Normalized,
		Original:    rec.Original,
		MatchCount:  rec.MatchCount,
		VolumeCount: rec.VolumeCount,
		Palindrome:  c.Palindrome,
		Tautonym:    c.Tautonym,
	}
	if e.totals != nil && e.totals.Tokens > 0 {
		row.FreqPerMillion = float64(rec.MatchCount) / float64(e.totals.Tokens) * 1_000_000
		row.FreqKnown = true
	}
	if e.totals != nil && e.totals.Volumes > 0 {
		row.VolumePct = float64(rec.VolumeCount) / float64(e.totals.Volumes) * 100
		row.VolumeKnown = true
	}
	return row, true
}

// All enriches seq and yields the isogram rows.
func (e *Enricher) All(seq iter.Seq[aggregate.Record]) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for rec := range seq {
			if row, ok := e.Enrich(rec); ok {
				if !yield(row) {
					return
				}
			}
		}
	}
}

// Summary returns the tallies so far.
func (e *Enricher) Summary() Summary {
	return e.sum
}
