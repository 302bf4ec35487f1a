// Package classify detects the string symmetries tracked in word lists:
// isograms, palindromes and tautonyms.
//
// All functions compare runes verbatim and are case sensitive, so callers
// normalize their input first.
package classify

// Result bundles the three classifications of one string.
type Result struct {
	Isogramy   int
	Palindrome bool
	Tautonym   bool
}

// Classify runs every classifier over s.
func Classify(s string) Result {
	return Result{
		Isogramy:   Isogram(s),
		Palindrome: IsPalindrome(s),
		Tautonym:   IsTautonym(s),
	}
}

// IsPalindrome reports whether s reads the same reversed.
// The empty string is a palindrome.
func IsPalindrome(s string) bool {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		if r[i] != r[j] {
			return false
		}
	}
	return true
}

// IsTautonym reports whether s is two identical halves, e.g. "bonbon".
// Odd-length strings and the empty string are not tautonyms.
func IsTautonym(s string) bool {
	r := []rune(s)
	n := len(r)
	if n < 2 || n%2 != 0 {
		return false
	}
	half := n / 2
	for i := 0; i < half; i++ {
		if r[i] != r[half+i] {
			return false
		}
	}
	return true
}

// Isogram returns the order of s as an isogram: n when every distinct rune
// occurs exactly n times, 0 when counts differ. The empty string has no
// letters to set an order and returns 0.
//
//	"abca"   -> 0
//	"abcd"   -> 1
//	"baba"   -> 2
//	"ababab" -> 3
func Isogram(s string) int {
	counts := make(map[rune]int, len(s))
	for _, r := range s {
		counts[r]++
	}
	order := 0
	for _, c := range counts {
		if order == 0 {
			order = c
		}
		if c != order {
			return 0
		}
	}
	return order
}
