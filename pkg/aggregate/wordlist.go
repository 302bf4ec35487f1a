package aggregate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hazyhaar/isograms/pkg/corpus"
)

// WordListWriter writes records in the word-list interchange format:
//
//	normalized TAB original TAB match_count TAB volume_count
type WordListWriter struct {
	w   *bufio.Writer
	buf []byte
	n   int64
}

// NewWordListWriter returns a buffered writer; call Flush when done.
func NewWordListWriter(w io.Writer) *WordListWriter {
	return &WordListWriter{w: bufio.NewWriter(w)}
}

// Write appends one record.
func (w *WordListWriter) Write(r Record) error {
	b := w.buf[:0]
	b = append(b, r.Normalized...)
	b = append(b, '\t')
	b = append(b, r.Original...)
	b = append(b, '\t')
	b = strconv.AppendInt(b, r.MatchCount, 10)
	b = append(b, '\t')
	b = strconv.AppendInt(b, r.VolumeCount, 10)
	b = append(b, '\n')
	w.buf = b
	if _, err := w.w.Write(b); err != nil {
		return fmt.Errorf("write word list: %w", err)
	}
	w.n++
	return nil
}

// Count returns the number of records written.
func (w *WordListWriter) Count() int64 {
	return w.n
}

// Flush writes any buffered data to the underlying writer.
func (w *WordListWriter) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush word list: %w", err)
	}
	return nil
}

// ParseWordListLine parses one word-list row.
func ParseWordListLine(line string) (Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 4 {
		return Record{}, fmt.Errorf("%w: want 4 tab-separated fields, got %d", corpus.ErrMalformed, len(fields))
	}
	if fields[0] == "" {
		return Record{}, fmt.Errorf("%w: empty normalized field", corpus.ErrMalformed)
	}
	match, err := corpus.ParseCount(fields[2])
	if err != nil {
		return Record{}, fmt.Errorf("match_count: %w", err)
	}
	volumes, err := corpus.ParseCount(fields[3])
	if err != nil {
		return Record{}, fmt.Errorf("volume_count: %w", err)
	}
	return Record{
		Normalized:  fields[0],
		Original:    fields[1],
		MatchCount:  match,
		VolumeCount: volumes,
	}, nil
}

// NewWordListReader scans a word list, skipping and counting bad rows.
func NewWordListReader(ctx context.Context, r io.Reader, opts ...corpus.Option) *corpus.Scanner[Record] {
	return corpus.NewScanner(ctx, r, ParseWordListLine, opts...)
}
