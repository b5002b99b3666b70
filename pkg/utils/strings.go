package utils

import (
	"strings"
	"unicode/utf8"
)

// TruncateBytes cuts s to at most n bytes without splitting a character.
// Invalid UTF-8 from client headers is dropped first so the result is always
// safe to store in a UTF8 column.
func TruncateBytes(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}

	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
