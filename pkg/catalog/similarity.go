package catalog

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Scorer returns a similarity between two names on a 0–100 scale.
type Scorer func(a, b string) int

// Tokens lower-cases s, folds diacritics and splits on anything that is
// not a letter or digit.
func Tokens(s string) []string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	return strings.FieldsFunc(strings.ToLower(folded), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Ratio is the normalized edit similarity of two strings.
func Ratio(a, b string) int {
	if a == b {
		if a == "" {
			return 0
		}
		return 100
	}
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(d)/float64(max(la, lb)))))
}

// sortedKey joins the sorted tokens of s.
func sortedKey(s string) string {
	t := Tokens(s)
	sort.Strings(t)
	return strings.Join(t, " ")
}

// TokenSortRatio compares names after sorting their tokens, so word order
// and case do not matter.
func TokenSortRatio(a, b string) int {
	return Ratio(sortedKey(a), sortedKey(b))
}

// TokenSetRatio compares the shared tokens of two names against each
// side's remainder. A name that is a token subset of the other scores 100.
func TokenSetRatio(a, b string) int {
	ta, tb := tokenSet(Tokens(a)), tokenSet(Tokens(b))
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var common, onlyA, onlyB []string
	for t := range ta {
		if _, ok := tb[t]; ok {
			common = append(common, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if _, ok := ta[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(common, " ")
	withA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	withB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := Ratio(withA, withB)
	if base != "" {
		best = max(best, Ratio(base, withA), Ratio(base, withB))
	}
	return best
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// ScorerByName resolves a configured scorer name. Unknown names fall back
// to TokenSortRatio.
func ScorerByName(name string) Scorer {
	switch strings.ToLower(name) {
	case "token_set", "tokenset":
		return TokenSetRatio
	default:
		return TokenSortRatio
	}
}
