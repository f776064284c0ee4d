package coerce

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var amountRegex = regexp.MustCompile(`[.,]?\d[\d\s.,'’]*`)

// Price extracts the amount from a currency-decorated string such as
// "$14.99", "14,99 €", "1.234,56", "$.99" or "USD 1,299.00". Negative
// amounts are absent.
func Price(c Cell) *decimal.Decimal {
	s, ok := c.Str()
	if !ok {
		return nil
	}
	loc := amountRegex.FindStringIndex(s)
	if loc == nil {
		return nil
	}
	if strings.Contains(s[:loc[0]], "-") {
		return nil
	}
	raw := s[loc[0]:loc[1]]
	if raw[0] == '.' || raw[0] == ',' {
		raw = "0" + raw
	}
	d, err := decimal.NewFromString(canonicalAmount(raw))
	if err != nil {
		return nil
	}
	return &d
}

// canonicalAmount rewrites a localized number into "1234.56" form.
func canonicalAmount(raw string) string {
	raw = strings.TrimRight(raw, " \t.,'’")
	raw = strings.NewReplacer(" ", "", "\t", "", "'", "", "’", "").Replace(raw)

	lastDot := strings.LastIndex(raw, ".")
	lastComma := strings.LastIndex(raw, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// The separator that comes last is the decimal one.
		if lastComma > lastDot {
			return strings.Replace(strings.ReplaceAll(raw, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(raw, ",", "")
	case lastComma >= 0:
		return resolveSingleSeparator(raw, ",", lastComma)
	case lastDot >= 0:
		return resolveSingleSeparator(raw, ".", lastDot)
	}
	return raw
}

// resolveSingleSeparator handles numbers that use only one separator kind,
// the same way for dots and commas. A trailing group of exactly three
// digits after a non-zero head marks thousands grouping, so "1.000" and
// "1,000" are both 1000 while "0.125" stays a fraction.
func resolveSingleSeparator(raw, sep string, last int) string {
	tail := raw[last+1:]
	head := strings.ReplaceAll(raw[:last], sep, "")
	if len(tail) == 3 && strings.TrimLeft(head, "0") != "" {
		return head + tail
	}
	return head + "." + tail
}
