package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/hazyhaar/isograms/pkg/classify"
	"github.com/hazyhaar/isograms/pkg/corpus"
	"github.com/hazyhaar/isograms/pkg/ledger"
	"github.com/hazyhaar/isograms/pkg/pipeline"
	"gopkg.in/yaml.v3"
)

type config struct {
	LogLevel string          `yaml:"log_level"`
	Ledger   string          `yaml:"ledger"` // empty disables the run ledger
	Pipeline pipeline.Config `yaml:"pipeline"`
}

func defaultConfig() config {
	return config{
		LogLevel: "info",
		Ledger:   "isograms.db",
		Pipeline: pipeline.DefaultConfig(),
	}
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "ngrams":
		err = cmdNgrams(os.Args[2:])
	case "bnc":
		err = cmdBNC(os.Args[2:])
	case "batch":
		err = cmdBatch(os.Args[2:])
	case "isogramy":
		err = cmdIsogramy(os.Args[2:])
	case "formats":
		err = cmdFormats(os.Args[2:])
	case "runs":
		err = cmdRuns(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "isograms %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: isograms <command> [flags]

Commands:
  ngrams    -indir DIR -out FILE   Build a word list from Google Ngram 1-grams
  bnc       -in FILE   -out FILE   Build a word list from the BNC frequency list
  batch     -in FILE   -out FILE   Extract isograms from a word list
  isogramy  STRING                 Print the isogram order of STRING (0: not an isogram)
  formats                          List supported corpus formats
  runs      [-limit N]             List recorded runs

Every command accepts -config FILE (default isograms.yaml).
`)
}

// env is what every pipeline command needs.
type env struct {
	cfg      config
	logger   *slog.Logger
	ledger   *ledger.Ledger
	pipeline *pipeline.Pipeline
}

func setup(cfgPath string) (*env, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))

	e := &env{cfg: cfg, logger: logger}
	if cfg.Ledger != "" {
		l, err := ledger.Open(cfg.Ledger)
		if err != nil {
			return nil, err
		}
		if err := l.Seed(corpus.All()); err != nil {
			l.Close()
			return nil, err
		}
		e.ledger = l
	}
	e.pipeline = pipeline.New(cfg.Pipeline, logger, e.ledger)
	return e, nil
}

func (e *env) Close() {
	if e.ledger != nil {
		e.ledger.Close()
	}
}

// signalContext is cancelled on SIGINT/SIGTERM; stages stop at the next line.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func cmdNgrams(args []string) error {
	fs := flag.NewFlagSet("ngrams", flag.ExitOnError)
	cfgPath := fs.String("config", "isograms.yaml", "path to config file")
	indir := fs.String("indir", "", "directory holding the 1-gram *.gz files and total counts")
	out := fs.String("out", "", "word list to write")
	fs.Parse(args)
	if *indir == "" || *out == "" {
		return errors.New("both -indir and -out are required")
	}

	e, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signalContext()
	defer stop()

	e.logger.Info("preparing 1-grams", "dir", *indir, "out", *out)
	res, err := e.pipeline.PrepareNgrams(ctx, *indir, *out)
	if err != nil {
		return err
	}
	printWordList(res)
	return nil
}

func cmdBNC(args []string) error {
	fs := flag.NewFlagSet("bnc", flag.ExitOnError)
	cfgPath := fs.String("config", "isograms.yaml", "path to config file")
	in := fs.String("in", "", "BNC frequency list (all.al or all.al.gz)")
	out := fs.String("out", "", "word list to write")
	fs.Parse(args)
	if *in == "" || *out == "" {
		return errors.New("both -in and -out are required")
	}

	e, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signalContext()
	defer stop()

	e.logger.Info("preparing BNC word list", "in", *in, "out", *out)
	res, err := e.pipeline.PrepareBNC(ctx, *in, *out)
	if err != nil {
		return err
	}
	printWordList(res)
	return nil
}

func cmdBatch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	cfgPath := fs.String("config", "isograms.yaml", "path to config file")
	in := fs.String("in", "", "word list to read")
	out := fs.String("out", "", "isogram list to write")
	fs.Parse(args)
	if *in == "" || *out == "" {
		return errors.New("both -in and -out are required")
	}

	e, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signalContext()
	defer stop()

	e.logger.Info("extracting isograms", "in", *in, "out", *out)
	sum, err := e.pipeline.DetectFile(ctx, *in, *out)
	if err != nil {
		return err
	}
	fmt.Printf("Found %s isograms, %s palindromes and %s tautonyms.\n",
		humanize.Comma(sum.Isograms), humanize.Comma(sum.Palindromes), humanize.Comma(sum.Tautonyms))
	return nil
}

func cmdIsogramy(args []string) error {
	if len(args) != 1 {
		return errors.New("expected exactly one STRING")
	}
	fmt.Println(classify.Isogram(args[0]))
	return nil
}

func cmdFormats(args []string) error {
	fs := flag.NewFlagSet("formats", flag.ExitOnError)
	cfgPath := fs.String("config", "isograms.yaml", "path to config file")
	fs.Parse(args)

	e, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer e.Close()

	fmt.Println("Corpus formats:")
	fmt.Println()
	for _, f := range corpus.All() {
		fmt.Printf("  %-8s  %s\n", f.ID(), f.Description())
	}
	return nil
}

func cmdRuns(args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	cfgPath := fs.String("config", "isograms.yaml", "path to config file")
	limit := fs.Int("limit", 20, "number of runs to show (0: all)")
	fs.Parse(args)

	e, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer e.Close()
	if e.ledger == nil {
		return errors.New("no ledger configured")
	}

	runs, err := e.ledger.ListRuns(*limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		status := r.Status
		if r.Error != nil {
			status += ": " + *r.Error
		}
		fmt.Printf("#%d  %-9s %-6s %s -> %s  lines=%s records=%s skipped=%s  [%s]\n",
			r.ID, r.Stage, r.Format, r.Input, r.Output,
			humanize.Comma(r.Lines), humanize.Comma(r.Records),
			humanize.Comma(r.Malformed+r.BadNumber+r.Filtered), status)
	}
	return nil
}

func printWordList(res pipeline.Result) {
	fmt.Printf("Wrote %s headwords from %s lines (%s skipped).\n",
		humanize.Comma(res.Records), humanize.Comma(res.Stats.Lines), humanize.Comma(res.Stats.Skipped()))
	if res.Totals != nil {
		fmt.Printf("Corpus totals: %s tokens, %s volumes.\n",
			humanize.Comma(res.Totals.Tokens), humanize.Comma(res.Totals.Volumes))
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
