package pipeline

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/isograms/pkg/aggregate"
	"github.com/hazyhaar/isograms/pkg/corpus"
	"github.com/hazyhaar/isograms/pkg/enrich"
	"github.com/hazyhaar/isograms/pkg/ledger"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// TotalsSuffix is appended to a word-list or output path to name its totals
// side-file.
const TotalsSuffix = ".totals"

// Prepare aggregates every input, in order, into a single word list at
// outfile. When corpus totals are known (inline in the corpus, or passed as
// totals) they are written to outfile + TotalsSuffix.
func (p *Pipeline) Prepare(ctx context.Context, f corpus.Format, inputs []string, outfile string, totals *corpus.Totals) (res Result, err error) {
	runID := p.begin("wordlist", f.ID(), strings.Join(inputs, ","), outfile)
	defer func() { p.finish(runID, wordListOutcome(res), err) }()

	out, err := os.Create(outfile)
	if err != nil {
		return res, fmt.Errorf("create %s: %w", outfile, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", outfile, cerr)
		}
	}()

	ww := aggregate.NewWordListWriter(out)
	for _, in := range inputs {
		p.logger.Info("reading corpus file", "format", f.ID(), "input", in)
		r, ferr := p.aggregateFile(ctx, f, in, ww)
		res.add(r)
		if ferr != nil {
			return res, ferr
		}
		p.logger.Info("corpus file done", "input", in,
			"lines", r.Stats.Lines, "records", r.Records, "skipped", r.Stats.Skipped())
	}
	if err := ww.Flush(); err != nil {
		return res, err
	}

	if res.Totals == nil {
		res.Totals = totals
	}
	if res.Totals != nil {
		if err := corpus.WriteTotalsFile(outfile+TotalsSuffix, *res.Totals); err != nil {
			return res, err
		}
		p.logger.Info("totals written", "path", outfile+TotalsSuffix,
			"tokens", res.Totals.Tokens, "volumes", res.Totals.Volumes)
	}

	if res.Unsorted > 0 {
		p.logger.Warn("input not sorted by headword, some keys may appear more than once",
			"out_of_order", res.Unsorted)
	}
	if res.Stats.Skipped() > 0 {
		p.logger.Warn("skipped corpus lines", "malformed", res.Stats.Malformed,
			"bad_number", res.Stats.BadNumber, "filtered", res.Stats.Filtered)
	}
	return res, nil
}

func (p *Pipeline) aggregateFile(ctx context.Context, f corpus.Format, path string, ww *aggregate.WordListWriter) (Result, error) {
	in, err := p.openInput(path, true)
	if err != nil {
		return Result{}, err
	}
	defer in.Close()
	return p.aggregateInto(ctx, in, f, ww, path)
}

// PrepareNgrams builds a word list from a Google Ngram directory: every
// *.gz file is a 1-gram corpus, and a *totalcounts*.txt file, if present,
// supplies the corpus totals.
func (p *Pipeline) PrepareNgrams(ctx context.Context, dir, outfile string) (Result, error) {
	f, err := corpus.Get("ngram")
	if err != nil {
		return Result{}, err
	}
	inputs, err := matchDir(dir, "*.gz")
	if err != nil {
		return Result{}, err
	}
	if len(inputs) == 0 {
		return Result{}, fmt.Errorf("no ngram files (*.gz) in %s", dir)
	}
	metas, err := matchDir(dir, "*totalcounts*.txt")
	if err != nil {
		return Result{}, err
	}

	var totals *corpus.Totals
	for _, m := range metas {
		t, err := p.readTotalCounts(m)
		if err != nil {
			p.logger.Warn("total counts unreadable", "path", m, "error", err)
			continue
		}
		p.logger.Info("total counts read", "path", m, "tokens", t.Tokens, "volumes", t.Volumes)
		totals = &t
		break
	}
	if totals == nil {
		p.logger.Warn("no total counts file, relative frequencies will be 0", "dir", dir)
	}
	return p.Prepare(ctx, f, inputs, outfile, totals)
}

// matchDir returns the files in dir whose names match pattern, in name
// order. dir itself is taken literally.
func matchDir(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := filepath.Match(pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", pattern, err)
		}
		if ok {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

func (p *Pipeline) readTotalCounts(path string) (corpus.Totals, error) {
	in, err := p.openInput(path, true)
	if err != nil {
		return corpus.Totals{}, err
	}
	defer in.Close()
	return corpus.ParseTotalCounts(in)
}

// PrepareBNC builds a word list from the BNC frequency list. Totals come from
// the list's !!WHOLE_CORPUS row.
func (p *Pipeline) PrepareBNC(ctx context.Context, infile, outfile string) (Result, error) {
	f, err := corpus.Get("bnc")
	if err != nil {
		return Result{}, err
	}
	return p.Prepare(ctx, f, []string{infile}, outfile, nil)
}

// DetectFile extracts isograms from the word list at infile into outfile and
// writes the run summary to outfile + TotalsSuffix. Totals are read from
// infile + TotalsSuffix; without them relative frequencies are 0.
func (p *Pipeline) DetectFile(ctx context.Context, infile, outfile string) (sum enrich.Summary, err error) {
	var stats corpus.Stats
	runID := p.begin("isograms", "", infile, outfile)
	defer func() { p.finish(runID, detectOutcome(sum, stats), err) }()

	totals, terr := corpus.ReadTotalsFile(infile + TotalsSuffix)
	switch {
	case terr != nil:
		p.logger.Warn("totals unreadable, relative frequencies will be 0", "error", terr)
		totals = nil
	case totals == nil:
		p.logger.Info("no totals file, relative frequencies will be 0", "path", infile+TotalsSuffix)
	}

	in, err := p.openInput(infile, false)
	if err != nil {
		return sum, err
	}
	defer in.Close()

	out, err := os.Create(outfile)
	if err != nil {
		return sum, fmt.Errorf("create %s: %w", outfile, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", outfile, cerr)
		}
	}()

	sum, stats, err = p.detect(ctx, in, totals, out, infile)
	if err != nil {
		return sum, err
	}
	if stats.Skipped() > 0 {
		p.logger.Warn("skipped word-list lines", "malformed", stats.Malformed, "bad_number", stats.BadNumber)
	}

	if err := writeSummaryFile(outfile+TotalsSuffix, sum); err != nil {
		return sum, err
	}
	p.logger.Info("isograms extracted", "isograms", sum.Isograms,
		"palindromes", sum.Palindromes, "tautonyms", sum.Tautonyms)
	return sum, nil
}

func writeSummaryFile(path string, sum enrich.Summary) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return enrich.WriteSummary(f, sum)
}

// input is a decoded input stream owning every layer beneath it.
type input struct {
	io.Reader
	closers []io.Closer
}

func (in *input) Close() error {
	var errs []error
	for i := len(in.closers) - 1; i >= 0; i-- {
		errs = append(errs, in.closers[i].Close())
	}
	return errors.Join(errs...)
}

// openInput opens path, gunzipping *.gz files and, when transcode is set,
// decoding the configured corpus encoding to UTF-8.
func (p *Pipeline) openInput(path string, transcode bool) (*input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	in := &input{Reader: f, closers: []io.Closer{f}}

	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("gunzip %s: %w", path, err)
		}
		in.Reader = gz
		in.closers = append(in.closers, gz)
	}

	if enc := p.cfg.Encoding; transcode && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		in.Reader = transform.NewReader(in.Reader, e.NewDecoder())
	}
	return in, nil
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}

func (p *Pipeline) begin(stage, format, input, output string) int64 {
	if p.ledger == nil {
		return 0
	}
	id, err := p.ledger.Begin(stage, format, input, output)
	if err != nil {
		p.logger.Warn("ledger: begin run", "error", err)
		return 0
	}
	return id
}

func (p *Pipeline) finish(id int64, r ledger.Result, runErr error) {
	if p.ledger == nil || id == 0 {
		return
	}
	if err := p.ledger.Finish(id, r, runErr); err != nil {
		p.logger.Warn("ledger: finish run", "run", id, "error", err)
	}
}

func wordListOutcome(res Result) ledger.Result {
	r := ledger.Result{
		Lines:     res.Stats.Lines,
		Malformed: res.Stats.Malformed,
		BadNumber: res.Stats.BadNumber,
		Filtered:  res.Stats.Filtered,
		Records:   res.Records,
	}
	if res.Totals != nil {
		r.TotalTokens = res.Totals.Tokens
		r.TotalVolumes = res.Totals.Volumes
	}
	return r
}

func detectOutcome(sum enrich.Summary, stats corpus.Stats) ledger.Result {
	return ledger.Result{
		Lines:        stats.Lines,
		Malformed:    stats.Malformed,
		BadNumber:    stats.BadNumber,
		Filtered:     stats.Filtered,
		Records:      sum.Isograms,
		TotalTokens:  sum.TotalTokens,
		TotalVolumes: sum.TotalVolumes,
		Isograms:     sum.Isograms,
		Palindromes:  sum.Palindromes,
		Tautonyms:    sum.Tautonyms,
	}
}
