package enrich

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hazyhaar/isograms/pkg/corpus"
)

// RowWriter writes isogram rows as 10 tab-separated columns:
//
//	isogramy length normalized original match_count volume_count
//	freq_per_million volume_pct is_palindrome is_tautonym
type RowWriter struct {
	w   *bufio.Writer
	buf []byte
}

// NewRowWriter returns a buffered writer; call Flush when done.
func NewRowWriter(w io.Writer) *RowWriter {
	return &RowWriter{w: bufio.NewWriter(w)}
}

// Write appends one row.
func (w *RowWriter) Write(r Row) error {
	b := w.buf[:0]
	b = strconv.AppendInt(b, int64(r.Isogramy), 10)
	b = append(b, '\t')
	b = strconv.AppendInt(b, int64(r.Length), 10)
	b = append(b, '\t')
	b = append(b, r.Normalized...)
	b = append(b, '\t')
	b = append(b, r.Original...)
	b = append(b, '\t')
	b = strconv.AppendInt(b, r.MatchCount, 10)
	b = append(b, '\t')
	b = strconv.AppendInt(b, r.VolumeCount, 10)
	b = append(b, '\t')
	b = appendRatio(b, r.FreqPerMillion, r.FreqKnown)
	b = append(b, '\t')
	b = appendRatio(b, r.VolumePct, r.VolumeKnown)
	b = append(b, '\t')
	b = appendFlag(b, r.Palindrome)
	b = append(b, '\t')
	b = appendFlag(b, r.Tautonym)
	b = append(b, '\n')
	w.buf = b
	if _, err := w.w.Write(b); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *RowWriter) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush rows: %w", err)
	}
	return nil
}

// appendRatio writes f at full precision, keeping a ".0" on integral values
// (10000.0). An unknown ratio is written as a bare 0.
func appendRatio(b []byte, f float64, known bool) []byte {
	if !known {
		return append(b, '0')
	}
	start := len(b)
	b = strconv.AppendFloat(b, f, 'f', -1, 64)
	for _, c := range b[start:] {
		if c == '.' {
			return b
		}
	}
	return append(b, ".0"...)
}

func appendFlag(b []byte, v bool) []byte {
	if v {
		return append(b, '1')
	}
	return append(b, '0')
}

var summaryLabels = [...]string{
	"!total_1grams",
	"!total_volumes",
	"!total_isograms",
	"!total_palindromes",
	"!total_tautonyms",
}

func (s *Summary) fields() [5]*int64 {
	return [5]*int64{&s.TotalTokens, &s.TotalVolumes, &s.Isograms, &s.Palindromes, &s.Tautonyms}
}

// WriteSummary writes s as five "!label TAB value" lines.
func WriteSummary(w io.Writer, s Summary) error {
	var sb strings.Builder
	for i, v := range s.fields() {
		fmt.Fprintf(&sb, "%s\t%d\n", summaryLabels[i], *v)
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// ReadSummary parses the output of WriteSummary. Unknown labels are ignored.
func ReadSummary(r io.Reader) (Summary, error) {
	var s Summary
	fields := s.fields()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		label, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), "\t")
		if !ok {
			continue
		}
		for i, l := range summaryLabels {
			if l != label {
				continue
			}
			n, err := corpus.ParseCount(value)
			if err != nil {
				return Summary{}, fmt.Errorf("%s: %w", label, err)
			}
			*fields[i] = n
		}
	}
	if err := sc.Err(); err != nil {
		return Summary{}, fmt.Errorf("read summary: %w", err)
	}
	return s, nil
}
