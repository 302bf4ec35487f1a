package enrich

import (
	"slices"
	"strings"
	"testing"

	"github.com/hazyhaar/isograms/pkg/aggregate"
	"github.com/hazyhaar/isograms/pkg/corpus"
)

func rec(normalized, original string, match, volumes int64) aggregate.Record {
	return aggregate.Record{Normalized: normalized, Original: original, MatchCount: match, VolumeCount: volumes}
}

func TestEnrich_WithTotals(t *testing.T) {
	e := New(&corpus.Totals{Tokens: 1000, Volumes: 10})

	row, ok := e.Enrich(rec("abab", "ABAB", 10, 2))
	if !ok {
		t.Fatal("abab is a 2-isogram and should be emitted")
	}
	want := Row{
		Isogramy:       2,
		Length:         4,
		Normalized:     "abab",
		Original:       "ABAB",
		MatchCount:     10,
		VolumeCount:    2,
		FreqPerMillion: 10000.0,
		VolumePct:      20.0,
		Palindrome:     false,
		Tautonym:       true,
		FreqKnown:      true,
		VolumeKnown:    true,
	}
	if row != want {
		t.Errorf("row = %+v, want %+v", row, want)
	}

	if _, ok := e.Enrich(rec("xxyz", "XXYZ", 5, 1)); ok {
		t.Error("xxyz is not an isogram and should be dropped")
	}

	got := e.Summary()
	wantSum := Summary{TotalTokens: 1000, TotalVolumes: 10, Isograms: 1, Palindromes: 0, Tautonyms: 1}
	if got != wantSum {
		t.Errorf("summary = %+v, want %+v", got, wantSum)
	}
}

func TestEnrich_MissingTotals(t *testing.T) {
	for _, totals := range []*corpus.Totals{nil, {}} {
		e := New(totals)
		row, ok := e.Enrich(rec("abab", "ABAB", 10, 2))
		if !ok {
			t.Fatal("abab should be emitted")
		}
		if row.FreqPerMillion != 0 || row.VolumePct != 0 || row.FreqKnown || row.VolumeKnown {
			t.Errorf("totals %+v: freq=%v pct=%v, want 0 and 0", totals, row.FreqPerMillion, row.VolumePct)
		}
		if s := e.Summary(); s.TotalTokens != 0 || s.TotalVolumes != 0 {
			t.Errorf("summary totals = %+v, want zero", s)
		}
	}
}

func TestEnrich_DroppedStillTallied(t *testing.T) {
	e := New(nil)
	records := []aggregate.Record{
		rec("abcba", "abcba", 1, 1),   // palindrome, a=2 b=2 c=1: dropped
		rec("abaaba", "abaaba", 1, 1), // tautonym and palindrome, a=4 b=2: dropped
		rec("tartar", "tartar", 1, 1), // tautonym, t=2 a=2 r=2: kept
		rec("murmurs", "murmurs", 1, 1),
		rec("abcab", "abcab", 1, 1),
	}
	var emitted []string
	for row := range e.All(slices.Values(records)) {
		emitted = append(emitted, row.Normalized)
	}
	if !slices.Equal(emitted, []string{"tartar"}) {
		t.Errorf("emitted = %v, want [tartar]", emitted)
	}
	s := e.Summary()
	if s.Palindromes != 2 || s.Tautonyms != 2 || s.Isograms != 1 {
		t.Errorf("summary = %+v, want 2 palindromes, 2 tautonyms, 1 isogram", s)
	}
}

func TestRowWriter(t *testing.T) {
	var sb strings.Builder
	w := NewRowWriter(&sb)
	rows := []Row{
		{Isogramy: 2, Length: 4, Normalized: "abab", Original: "ABAB", MatchCount: 10, VolumeCount: 2,
			FreqPerMillion: 10000, VolumePct: 20, Tautonym: true, FreqKnown: true, VolumeKnown: true},
		{Isogramy: 1, Length: 3, Normalized: "xyz", Original: "XYZ", MatchCount: 5, VolumeCount: 1},
		{Isogramy: 1, Length: 1, Normalized: "a", Original: "a", MatchCount: 1, VolumeCount: 3,
			FreqPerMillion: 0.25, VolumePct: 37.5, Palindrome: true, FreqKnown: true, VolumeKnown: true},
		{Isogramy: 1, Length: 2, Normalized: "ab", Original: "ab", FreqKnown: true, VolumeKnown: true},
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	want := "2\t4\tabab\tABAB\t10\t2\t10000.0\t20.0\t0\t1\n" +
		"1\t3\txyz\tXYZ\t5\t1\t0\t0\t0\t0\n" +
		"1\t1\ta\ta\t1\t3\t0.25\t37.5\t1\t0\n" +
		"1\t2\tab\tab\t0\t0\t0.0\t0.0\t0\t0\n"
	if sb.String() != want {
		t.Errorf("rows =\n%q\nwant\n%q", sb.String(), want)
	}
	for _, line := range strings.Split(strings.TrimSpace(sb.String()), "\n") {
		if n := len(strings.Split(line, "\t")); n != 10 {
			t.Errorf("row %q has %d fields, want 10", line, n)
		}
	}
}

func TestSummaryFile(t *testing.T) {
	s := Summary{TotalTokens: 1000, TotalVolumes: 10, Isograms: 1, Palindromes: 2, Tautonyms: 3}

	var sb strings.Builder
	if err := WriteSummary(&sb, s); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	want := "!total_1grams\t1000\n!total_volumes\t10\n!total_isograms\t1\n!total_palindromes\t2\n!total_tautonyms\t3\n"
	if sb.String() != want {
		t.Errorf("summary =\n%q\nwant\n%q", sb.String(), want)
	}

	got, err := ReadSummary(strings.NewReader(sb.String() + "!other\t9\n"))
	if err != nil {
		t.Fatalf("ReadSummary: %v", err)
	}
	if got != s {
		t.Errorf("ReadSummary = %+v, want %+v", got, s)
	}

	if _, err := ReadSummary(strings.NewReader("!total_isograms\tmany\n")); err == nil {
		t.Error("expected error for non-numeric value")
	}
}
