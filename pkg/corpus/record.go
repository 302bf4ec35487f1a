// Package corpus reads raw word-frequency corpora line by line and turns
// them into RawRecords, tolerating malformed lines.
package corpus

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformed marks a line that does not split into the expected fields.
	ErrMalformed = errors.New("malformed record")
	// ErrBadNumber marks a count field that is not a non-negative integer.
	ErrBadNumber = errors.New("bad numeric field")
	// ErrFiltered marks a well-formed line the format deliberately excludes.
	ErrFiltered = errors.New("filtered record")
	// ErrLineTooLong marks a line over the scanner's size limit.
	ErrLineTooLong = fmt.Errorf("%w: line too long", ErrMalformed)
)

// RawRecord is one corpus line.
type RawRecord struct {
	Headword    string
	POS         string // empty when the format embeds or lacks tags
	MatchCount  int64
	VolumeCount int64
}

// Label is the headword as written to word lists: the POS tag is appended
// with an underscore when the format carries one in its own column.
func (r RawRecord) Label() string {
	if r.POS == "" {
		return r.Headword
	}
	return r.Headword + "_" + r.POS
}

// Totals holds the corpus-wide token and volume counts used as denominators
// for relative frequencies.
type Totals struct {
	Tokens  int64
	Volumes int64
}

// Stats counts what happened to the lines of one input.
type Stats struct {
	Lines     int64 // lines read, blank ones included
	Records   int64 // lines parsed into records
	Malformed int64
	BadNumber int64
	Filtered  int64
}

// Skipped is the number of non-blank lines that produced no record.
func (s Stats) Skipped() int64 {
	return s.Malformed + s.BadNumber + s.Filtered
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Lines += o.Lines
	s.Records += o.Records
	s.Malformed += o.Malformed
	s.BadNumber += o.BadNumber
	s.Filtered += o.Filtered
}

// ParseCount parses a non-negative decimal count.
func ParseCount(field string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadNumber, field)
	}
	return n, nil
}
