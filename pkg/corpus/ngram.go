package corpus

import (
	"fmt"
	"strings"
)

func init() {
	Register(&ngramFormat{})
}

// ngramFormat reads Google Books 1-gram files (version 2):
//
//	headword TAB year TAB match_count TAB volume_count
//
// Files are sorted by headword, one line per year. Part-of-speech tags stay
// embedded in the headword ("house_NOUN").
type ngramFormat struct{}

func (f *ngramFormat) ID() string { return "ngram" }
func (f *ngramFormat) Description() string {
	return "Google Books Ngram 1-grams (headword, year, match_count, volume_count)"
}

func (f *ngramFormat) ParseLine(line string) (RawRecord, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 4 {
		return RawRecord{}, fmt.Errorf("%w: want 4 tab-separated fields, got %d", ErrMalformed, len(fields))
	}
	if fields[0] == "" {
		return RawRecord{}, fmt.Errorf("%w: empty headword", ErrMalformed)
	}
	match, err := ParseCount(fields[2])
	if err != nil {
		return RawRecord{}, fmt.Errorf("match_count: %w", err)
	}
	volumes, err := ParseCount(fields[3])
	if err != nil {
		return RawRecord{}, fmt.Errorf("volume_count: %w", err)
	}
	return RawRecord{Headword: fields[0], MatchCount: match, VolumeCount: volumes}, nil
}
