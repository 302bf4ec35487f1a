package corpus

import (
	"fmt"
	"strings"
)

func init() {
	Register(&bncFormat{})
}

// wholeCorpus is the BNC row carrying corpus-wide totals.
const wholeCorpus = "!!WHOLE_CORPUS"

// bncExcluded lists characters marking BNC tokens that are not words
// (abbreviations, compounds, URLs, multiword units).
const bncExcluded = "&_%/:"

// bncFormat reads the Kilgarriff BNC frequency list (all.al):
//
//	freq word pos file_count
type bncFormat struct{}

func (f *bncFormat) ID() string { return "bnc" }
func (f *bncFormat) Description() string {
	return "British National Corpus frequency list (freq, word, pos, file_count)"
}

func (f *bncFormat) ParseTotals(line string) (Totals, bool) {
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[1] != wholeCorpus {
		return Totals{}, false
	}
	tokens, err := ParseCount(fields[0])
	if err != nil {
		return Totals{}, false
	}
	volumes, err := ParseCount(fields[3])
	if err != nil {
		return Totals{}, false
	}
	return Totals{Tokens: tokens, Volumes: volumes}, true
}

func (f *bncFormat) ParseLine(line string) (RawRecord, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return RawRecord{}, fmt.Errorf("%w: want 4 space-separated fields, got %d", ErrMalformed, len(fields))
	}
	word := fields[1]
	if word == wholeCorpus {
		return RawRecord{}, fmt.Errorf("%w: unparsable totals row", ErrBadNumber)
	}
	if strings.ContainsAny(word, bncExcluded) {
		return RawRecord{}, fmt.Errorf("%w: %q", ErrFiltered, word)
	}
	freq, err := ParseCount(fields[0])
	if err != nil {
		return RawRecord{}, fmt.Errorf("freq: %w", err)
	}
	files, err := ParseCount(fields[3])
	if err != nil {
		return RawRecord{}, fmt.Errorf("file_count: %w", err)
	}
	return RawRecord{Headword: word, POS: fields[2], MatchCount: freq, VolumeCount: files}, nil
}
