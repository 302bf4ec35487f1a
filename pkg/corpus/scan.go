package corpus

import (
	"bufio"
	"context"
	"errors"
	"io"
	"iter"
	"strings"
)

// maxLineSize bounds a single corpus line. Longer lines are discarded and
// counted as malformed.
const maxLineSize = 1 << 20

// errConsumed marks a line a parser handled without producing a value
// (e.g. an inline totals row). It is not counted as skipped.
var errConsumed = errors.New("line consumed")

// ParseFunc turns one trimmed, non-blank line into a value.
type ParseFunc[T any] func(line string) (T, error)

type scanOptions struct {
	every    int64
	progress func(Stats)
	onSkip   func(line int64, err error)
}

// Option configures a Scanner.
type Option func(*scanOptions)

// WithProgress calls fn with the running stats every n lines.
func WithProgress(n int64, fn func(Stats)) Option {
	return func(o *scanOptions) {
		o.every = n
		o.progress = fn
	}
}

// WithSkipHook calls fn for every non-blank line that produced no record.
func WithSkipHook(fn func(line int64, err error)) Option {
	return func(o *scanOptions) {
		o.onSkip = fn
	}
}

// Scanner reads an input line by line and parses each line with a ParseFunc.
// Lines that fail to parse are counted and skipped; only I/O errors and
// context cancellation stop the scan and are reported by Err.
type Scanner[T any] struct {
	ctx   context.Context
	br    *bufio.Reader
	line  []byte
	parse ParseFunc[T]
	opts  scanOptions
	stats Stats
	err   error
}

// NewScanner returns a Scanner over r. ctx is checked once per line.
func NewScanner[T any](ctx context.Context, r io.Reader, parse ParseFunc[T], opts ...Option) *Scanner[T] {
	var o scanOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Scanner[T]{ctx: ctx, br: bufio.NewReaderSize(r, 64*1024), parse: parse, opts: o}
}

// All yields every parsed value in input order. The sequence can be ranged
// over once.
func (s *Scanner[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			raw, long, err := s.readLine()
			if err != nil {
				if err != io.EOF {
					s.err = err
				}
				return
			}
			if err := s.ctx.Err(); err != nil {
				s.err = err
				return
			}
			s.stats.Lines++
			if s.opts.progress != nil && s.opts.every > 0 && s.stats.Lines%s.opts.every == 0 {
				s.opts.progress(s.stats)
			}

			if long {
				s.skip(ErrLineTooLong)
				continue
			}
			line := strings.TrimSpace(string(raw))
			if line == "" {
				continue
			}
			v, err := s.parse(line)
			if err != nil {
				s.skip(err)
				continue
			}
			s.stats.Records++
			if !yield(v) {
				return
			}
		}
	}
}

// readLine returns the next line including its terminator. A line over
// maxLineSize is read to its end but not kept, and the second result is
// true. The last line of the input need not end in a newline.
func (s *Scanner[T]) readLine() ([]byte, bool, error) {
	s.line = s.line[:0]
	var n int
	for {
		frag, err := s.br.ReadSlice('\n')
		n += len(frag)
		if len(s.line)+len(frag) <= maxLineSize+1 {
			s.line = append(s.line, frag...)
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		size := n
		if err == nil {
			size-- // newline
		}
		if err == io.EOF && n > 0 {
			err = nil
		}
		return s.line, size > maxLineSize, err
	}
}

func (s *Scanner[T]) skip(err error) {
	switch {
	case errors.Is(err, errConsumed):
		return
	case errors.Is(err, ErrFiltered):
		s.stats.Filtered++
	case errors.Is(err, ErrBadNumber):
		s.stats.BadNumber++
	default:
		s.stats.Malformed++
	}
	if s.opts.onSkip != nil {
		s.opts.onSkip(s.stats.Lines, err)
	}
}

// Err returns the I/O or cancellation error that ended the scan, if any.
func (s *Scanner[T]) Err() error {
	return s.err
}

// Stats returns the line counts so far.
func (s *Scanner[T]) Stats() Stats {
	return s.stats
}
