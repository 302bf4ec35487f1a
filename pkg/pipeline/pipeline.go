// Package pipeline runs the two stages of isogram extraction:
//
//	corpus  -> word list  (normalize + aggregate)
//	word list -> isograms (classify + enrich)
//
// Each stage is a single forward pass over its input. Stream-level functions
// work on readers and writers; the file-level ones add path handling,
// totals side-files and the optional run ledger.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/hazyhaar/isograms/pkg/aggregate"
	"github.com/hazyhaar/isograms/pkg/corpus"
	"github.com/hazyhaar/isograms/pkg/enrich"
	"github.com/hazyhaar/isograms/pkg/ledger"
	"github.com/hazyhaar/isograms/pkg/normalize"
)

// Config tunes the pipeline.
type Config struct {
	// Normalize selects the normalizer mode (see normalize.Get).
	Normalize string `yaml:"normalize"`
	// AssumeSorted merges adjacent runs in constant memory. When false,
	// records are merged in a hash table so unsorted corpora still produce
	// one record per key.
	AssumeSorted bool `yaml:"assume_sorted"`
	// ProgressEvery logs progress every n input lines; 0 disables it.
	ProgressEvery int64 `yaml:"progress_every"`
	// Encoding of corpus files (e.g. "iso-8859-1"). Empty means UTF-8.
	// Word lists are always read and written as UTF-8.
	Encoding string `yaml:"encoding"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Normalize:     "canonical",
		AssumeSorted:  true,
		ProgressEvery: 1_000_000,
	}
}

// Pipeline runs stages with one configuration.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
	ledger *ledger.Ledger
	key    normalize.Func
}

// New creates a Pipeline. The ledger may be nil.
func New(cfg Config, logger *slog.Logger, l *ledger.Ledger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:    cfg,
		logger: logger,
		ledger: l,
		key:    normalize.Get(cfg.Normalize),
	}
}

// Result describes a word-list build.
type Result struct {
	Stats    corpus.Stats
	Records  int64          // word-list rows written
	Unsorted int64          // headwords sorting before their predecessor
	Totals   *corpus.Totals // corpus totals, nil when unknown
}

func (r *Result) add(o Result) {
	r.Stats.Add(o.Stats)
	r.Records += o.Records
	r.Unsorted += o.Unsorted
	if o.Totals != nil {
		r.Totals = o.Totals
	}
}

// BuildWordList aggregates one corpus stream into a word list written to w.
func (p *Pipeline) BuildWordList(ctx context.Context, r io.Reader, f corpus.Format, w io.Writer) (Result, error) {
	ww := aggregate.NewWordListWriter(w)
	res, err := p.aggregateInto(ctx, r, f, ww, "stream")
	if err != nil {
		return res, err
	}
	return res, ww.Flush()
}

func (p *Pipeline) aggregateInto(ctx context.Context, r io.Reader, f corpus.Format, ww *aggregate.WordListWriter, name string) (Result, error) {
	var res Result
	rd := corpus.NewReader(ctx, r, f, p.scanOptions(name)...)

	var records iter.Seq[aggregate.Record]
	if p.cfg.AssumeSorted {
		records = aggregate.Runs(aggregate.AssumeSorted(rd.All()), p.key,
			aggregate.WithUnsortedHook(func(string, string) { res.Unsorted++ }))
	} else {
		records = aggregate.Hashed(rd.All(), p.key)
	}

	for rec := range records {
		if err := ww.Write(rec); err != nil {
			res.Stats = rd.Stats()
			return res, err
		}
		res.Records++
	}
	res.Stats = rd.Stats()
	res.Totals = rd.Totals()
	if err := rd.Err(); err != nil {
		return res, fmt.Errorf("read %s: %w", name, err)
	}
	return res, nil
}

// Detect reads a word list from r, writes isogram rows to w and returns the
// run summary. totals may be nil.
func (p *Pipeline) Detect(ctx context.Context, r io.Reader, totals *corpus.Totals, w io.Writer) (enrich.Summary, corpus.Stats, error) {
	return p.detect(ctx, r, totals, w, "stream")
}

func (p *Pipeline) detect(ctx context.Context, r io.Reader, totals *corpus.Totals, w io.Writer, name string) (enrich.Summary, corpus.Stats, error) {
	rd := aggregate.NewWordListReader(ctx, r, p.scanOptions(name)...)
	e := enrich.New(totals)
	rw := enrich.NewRowWriter(w)

	for row := range e.All(rd.All()) {
		if err := rw.Write(row); err != nil {
			return e.Summary(), rd.Stats(), err
		}
	}
	if err := rd.Err(); err != nil {
		return e.Summary(), rd.Stats(), fmt.Errorf("read %s: %w", name, err)
	}
	if err := rw.Flush(); err != nil {
		return e.Summary(), rd.Stats(), err
	}
	return e.Summary(), rd.Stats(), nil
}

func (p *Pipeline) scanOptions(name string) []corpus.Option {
	opts := []corpus.Option{
		corpus.WithSkipHook(func(line int64, err error) {
			p.logger.Debug("skipped line", "input", name, "line", line, "error", err)
		}),
	}
	if p.cfg.ProgressEvery > 0 {
		opts = append(opts, corpus.WithProgress(p.cfg.ProgressEvery, func(s corpus.Stats) {
			p.logger.Info("progress", "input", name, "lines", s.Lines, "records", s.Records, "skipped", s.Skipped())
		}))
	}
	return opts
}
