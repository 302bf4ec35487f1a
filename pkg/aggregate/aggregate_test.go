package aggregate

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/hazyhaar/isograms/pkg/corpus"
	"github.com/hazyhaar/isograms/pkg/normalize"
)

func raw(headword string, match, volumes int64) corpus.RawRecord {
	return corpus.RawRecord{Headword: headword, MatchCount: match, VolumeCount: volumes}
}

func collect(seq func(func(Record) bool)) []Record {
	var out []Record
	for r := range seq {
		out = append(out, r)
	}
	return out
}

func TestAccumulator(t *testing.T) {
	var acc Accumulator

	if _, ok := acc.Flush(); ok {
		t.Fatal("Flush on empty accumulator should emit nothing")
	}
	if _, ok := acc.Add(raw("Abab_NOUN", 3, 1), "abab"); ok {
		t.Fatal("first record should not emit")
	}
	if _, ok := acc.Add(raw("abab_VERB", 4, 1), "abab"); ok {
		t.Fatal("same key should not emit")
	}
	done, ok := acc.Add(raw("abbey", 1, 1), "abbey")
	if !ok {
		t.Fatal("key change should emit the finished run")
	}
	want := Record{Normalized: "abab", Original: "Abab_NOUN", MatchCount: 7, VolumeCount: 2}
	if done != want {
		t.Errorf("emitted %+v, want %+v", done, want)
	}
	done, ok = acc.Flush()
	if !ok || done.Normalized != "abbey" {
		t.Errorf("Flush = %+v, %v", done, ok)
	}
	if _, ok := acc.Flush(); ok {
		t.Error("second Flush should emit nothing")
	}
}

func TestRuns(t *testing.T) {
	in := []corpus.RawRecord{
		raw("1999", 50, 5),
		raw("ABAB", 1, 1),
		raw("Abab_NOUN", 2, 1),
		raw("abab", 3, 1),
		raw("abab_VERB", 4, 1),
		raw("b2b", 9, 9),
		raw("café", 5, 2),
		raw("cafe_NOUN", 6, 3),
		raw("_NOUN", 1, 1),
		raw("zebra", 8, 4),
	}

	got := collect(Runs(AssumeSorted(slices.Values(in)), normalize.Canonical))
	want := []Record{
		{Normalized: "abab", Original: "ABAB", MatchCount: 10, VolumeCount: 4},
		{Normalized: "cafe", Original: "café", MatchCount: 11, VolumeCount: 5},
		{Normalized: "zebra", Original: "zebra", MatchCount: 8, VolumeCount: 4},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Runs =\n%+v\nwant\n%+v", got, want)
	}
}

func TestRuns_SumPerKey(t *testing.T) {
	in := []corpus.RawRecord{
		raw("a", 1, 1), raw("a", 2, 2), raw("a_DET", 3, 3),
		raw("an", 4, 1),
		raw("and", 5, 1), raw("and", 6, 1),
		raw("x1", 7, 1),
	}

	sums := make(map[string]int64)
	keys := make(map[string]bool)
	for _, r := range in {
		k := normalize.Canonical(r.Headword)
		if normalize.IsAlpha(k) {
			sums[k] += r.MatchCount
			keys[k] = true
		}
	}

	got := collect(Runs(AssumeSorted(slices.Values(in)), normalize.Canonical))
	if len(got) != len(keys) {
		t.Fatalf("emitted %d records, want %d distinct alphabetic keys", len(got), len(keys))
	}
	for _, r := range got {
		if r.MatchCount != sums[r.Normalized] {
			t.Errorf("%s: match_count = %d, want %d", r.Normalized, r.MatchCount, sums[r.Normalized])
		}
	}
}

func TestRuns_Empty(t *testing.T) {
	if got := collect(Runs(AssumeSorted(slices.Values([]corpus.RawRecord(nil))), normalize.Canonical)); len(got) != 0 {
		t.Errorf("empty input emitted %+v", got)
	}
	if got := collect(Runs(Sorted{}, normalize.Canonical)); len(got) != 0 {
		t.Errorf("zero Sorted emitted %+v", got)
	}
}

func TestRuns_NonAdjacentDuplicates(t *testing.T) {
	in := []corpus.RawRecord{raw("Abab", 1, 1), raw("Zulu", 1, 1), raw("abab", 2, 1)}

	var violations [][2]string
	got := collect(Runs(AssumeSorted(slices.Values(in)), normalize.Canonical,
		WithUnsortedHook(func(prev, next string) { violations = append(violations, [2]string{prev, next}) })))

	if len(got) != 3 || got[0].Normalized != "abab" || got[2].Normalized != "abab" {
		t.Errorf("Runs = %+v, want abab twice (not merged)", got)
	}
	if len(violations) != 0 {
		t.Errorf("byte order is ascending, got violations %v", violations)
	}

	in = []corpus.RawRecord{raw("beta", 1, 1), raw("alpha", 1, 1)}
	collect(Runs(AssumeSorted(slices.Values(in)), normalize.Canonical,
		WithUnsortedHook(func(prev, next string) { violations = append(violations, [2]string{prev, next}) })))
	if len(violations) != 1 || violations[0] != [2]string{"beta", "alpha"} {
		t.Errorf("violations = %v, want [[beta alpha]]", violations)
	}
}

func TestRuns_EarlyStop(t *testing.T) {
	in := []corpus.RawRecord{raw("a", 1, 1), raw("b", 1, 1), raw("c", 1, 1)}
	n := 0
	for range Runs(AssumeSorted(slices.Values(in)), normalize.Canonical) {
		n++
		break
	}
	if n != 1 {
		t.Errorf("iterations = %d, want 1", n)
	}
}

func TestHashed(t *testing.T) {
	in := []corpus.RawRecord{
		raw("Zulu", 1, 1),
		raw("Abab", 1, 1),
		raw("42", 1, 1),
		raw("abab_NOUN", 2, 3),
	}
	got := collect(Hashed(slices.Values(in), normalize.Canonical))
	want := []Record{
		{Normalized: "abab", Original: "Abab", MatchCount: 3, VolumeCount: 4},
		{Normalized: "zulu", Original: "Zulu", MatchCount: 1, VolumeCount: 1},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Hashed = %+v, want %+v", got, want)
	}
}

func TestWordList(t *testing.T) {
	var sb strings.Builder
	w := NewWordListWriter(&sb)
	recs := []Record{
		{Normalized: "abab", Original: "Abab_NOUN", MatchCount: 10, VolumeCount: 2},
		{Normalized: "house", Original: "house_nn1", MatchCount: 1200, VolumeCount: 560},
	}
	for _, r := range recs {
		if err := w.Write(r); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if w.Count() != 2 {
		t.Errorf("Count = %d, want 2", w.Count())
	}

	wantText := "abab\tAbab_NOUN\t10\t2\nhouse\thouse_nn1\t1200\t560\n"
	if sb.String() != wantText {
		t.Errorf("word list = %q, want %q", sb.String(), wantText)
	}

	rd := NewWordListReader(context.Background(), strings.NewReader(sb.String()+"broken\tline\nx\tX\tmany\t1\n"))
	got := collect(rd.All())
	if !slices.Equal(got, recs) {
		t.Errorf("read back %+v, want %+v", got, recs)
	}
	st := rd.Stats()
	if st.Malformed != 1 || st.BadNumber != 1 {
		t.Errorf("Stats = %+v, want 1 malformed and 1 bad number", st)
	}
}

func TestParseWordListLine(t *testing.T) {
	if _, err := ParseWordListLine("\tX\t1\t1"); !errors.Is(err, corpus.ErrMalformed) {
		t.Errorf("empty normalized: err = %v, want ErrMalformed", err)
	}
	if _, err := ParseWordListLine("x\tX\t1\t-1"); !errors.Is(err, corpus.ErrBadNumber) {
		t.Errorf("negative count: err = %v, want ErrBadNumber", err)
	}
}
