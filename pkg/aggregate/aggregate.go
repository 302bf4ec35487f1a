// Package aggregate merges raw corpus records into one record per
// normalized headword.
//
// Corpora are far larger than memory, so the default strategy relies on the
// corpus being sorted by headword and merges adjacent runs in a single pass.
// Hashed is the fallback for inputs that are not sorted.
package aggregate

import (
	"iter"
	"maps"
	"slices"

	"github.com/hazyhaar/isograms/pkg/corpus"
	"github.com/hazyhaar/isograms/pkg/normalize"
)

// Record is the merged counts of every raw record sharing a normalized key.
type Record struct {
	Normalized  string
	Original    string // label of the first raw record of the group
	MatchCount  int64
	VolumeCount int64
}

// Sorted is a raw record sequence ordered by ascending headword. Records
// whose headwords normalize to the same key must be adjacent for Runs to
// merge them; keys that reappear later produce duplicate output records.
type Sorted struct {
	seq iter.Seq[corpus.RawRecord]
}

// AssumeSorted declares seq sorted by headword. Nothing is verified; use
// WithUnsortedHook to observe violations.
func AssumeSorted(seq iter.Seq[corpus.RawRecord]) Sorted {
	return Sorted{seq: seq}
}

// Accumulator is the state of the run-merging fold: at most one open record.
type Accumulator struct {
	cur  Record
	open bool
}

// Add folds rec, whose normalized key is key, into the open run. When key
// starts a new run, the previous run is returned with ok set if it is
// emittable (see Flush).
func (a *Accumulator) Add(rec corpus.RawRecord, key string) (Record, bool) {
	if a.open && key == a.cur.Normalized {
		a.cur.MatchCount += rec.MatchCount
		a.cur.VolumeCount += rec.VolumeCount
		return Record{}, false
	}
	done, ok := a.Flush()
	a.cur = Record{
		Normalized:  key,
		Original:    rec.Label(),
		MatchCount:  rec.MatchCount,
		VolumeCount: rec.VolumeCount,
	}
	a.open = true
	return done, ok
}

// Flush closes the open run. ok is false when there was none or when its key
// is not purely alphabetic (numbers and empty keys are dropped).
func (a *Accumulator) Flush() (Record, bool) {
	if !a.open {
		return Record{}, false
	}
	done := a.cur
	a.cur, a.open = Record{}, false
	return done, normalize.IsAlpha(done.Normalized)
}

type options struct {
	onUnsorted func(prev, next string)
}

// Option configures Runs.
type Option func(*options)

// WithUnsortedHook calls fn whenever a headword sorts before its predecessor.
func WithUnsortedHook(fn func(prev, next string)) Option {
	return func(o *options) {
		o.onUnsorted = fn
	}
}

// Runs merges consecutive records sharing a normalized key and yields one
// Record per run, in input order.
func Runs(in Sorted, key normalize.Func, opts ...Option) iter.Seq[Record] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return func(yield func(Record) bool) {
		if in.seq == nil {
			return
		}
		var (
			acc     Accumulator
			prev    string
			started bool
		)
		for rec := range in.seq {
			if o.onUnsorted != nil && started && rec.Headword < prev {
				o.onUnsorted(prev, rec.Headword)
			}
			prev, started = rec.Headword, true

			if done, ok := acc.Add(rec, key(rec.Headword)); ok {
				if !yield(done) {
					return
				}
			}
		}
		if done, ok := acc.Flush(); ok {
			yield(done)
		}
	}
}

// Hashed merges records by normalized key regardless of input order and
// yields them in ascending key order once the input is exhausted. Memory
// grows with the number of distinct keys.
func Hashed(in iter.Seq[corpus.RawRecord], key normalize.Func) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		groups := make(map[string]*Record)
		for rec := range in {
			k := key(rec.Headword)
			if !normalize.IsAlpha(k) {
				continue
			}
			if g, ok := groups[k]; ok {
				g.MatchCount += rec.MatchCount
				g.VolumeCount += rec.VolumeCount
				continue
			}
			groups[k] = &Record{
				Normalized:  k,
				Original:    rec.Label(),
				MatchCount:  rec.MatchCount,
				VolumeCount: rec.VolumeCount,
			}
		}
		for _, k := range slices.Sorted(maps.Keys(groups)) {
			if !yield(*groups[k]) {
				return
			}
		}
	}
}
