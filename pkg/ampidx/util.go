package ampidx

import (
	"strings"
	"unicode/utf8"
)

// runeCount returns s's length in Unicode scalar values, not bytes.
// Collapsing and min-prefix admission are both defined over character
// counts, never byte offsets; index.go measures query and key lengths for
// the short-key threshold and for admission through here.
func runeCount(s string) int {
	return utf8.RuneCountInString(s)
}

// startsWith reports whether key begins with query.
func startsWith(key, query string) bool {
	return strings.HasPrefix(key, query)
}
