package sheet

import "strings"

// DefaultUnsetKeywords are the sentinel values organizers type into a cell
// to mean "intentionally blank". Matched after trimming and lowercasing.
var DefaultUnsetKeywords = []string{"none", "-", "--", "---", "n/a", "na", "tba", "tbd"}

var truthyValues = map[string]bool{
	"x":    true,
	"y":    true,
	"yes":  true,
	"true": true,
	"t":    true,
	"1":    true,
}

// NormalizeKey canonicalizes a header or marker token for comparison.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsUnset reports whether a cell value is one of the given unset sentinels.
// Comparison is against the trimmed, lowercased value. An empty keyword in
// the set makes blank cells count as unset too.
func IsUnset(s string, keywords []string) bool {
	val := NormalizeKey(s)
	for _, kw := range keywords {
		if val == NormalizeKey(kw) {
			return true
		}
	}
	return false
}

// IsTruthy reports whether a cell value is an explicit yes-marker. This is a
// strict allow-list: anything not on it, including unset sentinels and blank
// cells, is falsy.
func IsTruthy(s string) bool {
	return truthyValues[NormalizeKey(s)]
}
