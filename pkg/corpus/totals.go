package corpus

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseTotalCounts sums the Google Ngram total_counts metadata: tab-separated
// year buckets "year,match_count,page_count,volume_count". Buckets with fewer
// than four fields (the empty leading and trailing ones) are ignored.
func ParseTotalCounts(r io.Reader) (Totals, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Totals{}, fmt.Errorf("read total counts: %w", err)
	}
	var t Totals
	for _, bucket := range strings.Fields(string(data)) {
		parts := strings.Split(bucket, ",")
		if len(parts) < 4 {
			continue
		}
		match, err := ParseCount(parts[1])
		if err != nil {
			return Totals{}, fmt.Errorf("bucket %s: %w", parts[0], err)
		}
		volumes, err := ParseCount(parts[3])
		if err != nil {
			return Totals{}, fmt.Errorf("bucket %s: %w", parts[0], err)
		}
		t.Tokens += match
		t.Volumes += volumes
	}
	return t, nil
}

// ReadTotalsFile reads a word-list totals side-file ("!total !any T V").
// A missing or short file means no totals are known and returns nil, nil.
func ReadTotalsFile(path string) (*Totals, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read totals %s: %w", path, err)
	}
	fields := strings.Fields(string(data))
	if len(fields) < 4 {
		return nil, nil
	}
	tokens, err := ParseCount(fields[2])
	if err != nil {
		return nil, fmt.Errorf("totals %s: %w", path, err)
	}
	volumes, err := ParseCount(fields[3])
	if err != nil {
		return nil, fmt.Errorf("totals %s: %w", path, err)
	}
	return &Totals{Tokens: tokens, Volumes: volumes}, nil
}

// WriteTotalsFile writes t as a word-list totals side-file.
func WriteTotalsFile(path string, t Totals) error {
	line := fmt.Sprintf("!total\t!any\t%d\t%d\n", t.Tokens, t.Volumes)
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		return fmt.Errorf("write totals %s: %w", path, err)
	}
	return nil
}
