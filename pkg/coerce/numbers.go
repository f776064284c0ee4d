package coerce

import (
	"strconv"
	"strings"
)

// SuffixedInt reads loosely formatted small integers such as "4", "10+",
// "+3" or "2-8". Ranges resolve to their upper bound.
//
// The first two characters are tried first, then the last character, then
// the first one. Anything else, including native booleans, is absent.
func SuffixedInt(c Cell) *int {
	s, ok := c.Str()
	if !ok || s == "" {
		return nil
	}
	r := []rune(s)
	candidates := []string{
		string(r[:min(2, len(r))]),
		string(r[len(r)-1:]),
		string(r[:1]),
	}
	for _, part := range candidates {
		if n, ok := atoi(part); ok {
			return &n
		}
	}
	return nil
}

// BoundedInt is SuffixedInt restricted to [lo, hi]. Values outside the
// range are absent.
func BoundedInt(c Cell, lo, hi int) *int {
	n := SuffixedInt(c)
	if n == nil || *n < lo || *n > hi {
		return nil
	}
	return n
}

// atoi follows the integer-literal leniency of spreadsheet exports:
// surrounding whitespace and a leading sign are accepted.
func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
