package util

import (
	"strings"
	"unicode"
)

// SanitizeText strips NUL and other control characters that PDF extractors
// leave behind, keeping newlines and tabs. Postgres text columns reject NUL.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		switch {
		case ch == '\n' || ch == '\r' || ch == '\t':
			b.WriteRune(ch)
		case ch == unicode.ReplacementChar, unicode.IsControl(ch):
		default:
			b.WriteRune(ch)
		}
	}
	return strings.TrimSpace(b.String())
}
