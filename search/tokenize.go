package search

import (
	"strings"
	"unicode"
)

// minPrefix is the shortest query token allowed to match a longer token by prefix.
const minPrefix = 2

// Tokenize splits 's' into lower case alphanumeric tokens.
//
//	Tokenize("EUR/USD Spot") == []string{"eur", "usd", "spot"}
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// compact glues the tokens of 's' together: "EUR/USD" becomes "eurusd".
func compact(s string) string { return strings.Join(Tokenize(s), "") }

// tokenMatch reports whether the query token 'q' matches the document token
// 't', either exactly or as a prefix of at least minPrefix characters.
func tokenMatch(q, t string) bool {
	if q == t {
		return true
	}
	return len(q) >= minPrefix && strings.HasPrefix(t, q)
}

// prefixRange returns the range [lo, hi) of the sorted list 'sorted' whose
// values start with 'prefix'.
func prefixRange(sorted []string, prefix string) (lo, hi int) {
	lo = lowerBound(sorted, prefix)
	hi = lo
	for hi < len(sorted) && strings.HasPrefix(sorted[hi], prefix) {
		hi++
	}
	return lo, hi
}

func lowerBound(sorted []string, v string) int {
	lo, hi := 0, len(sorted)
	for lo < hi {
		m := int(uint(lo+hi) >> 1)
		if sorted[m] < v {
			lo = m + 1
		} else {
			hi = m
		}
	}
	return lo
}
