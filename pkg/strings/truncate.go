package strings

import (
	"strings"
)

// DefaultValueMaxLen is the default maximum length for variable values in
// formatted table output. Shared so every renderer truncates the same way.
const DefaultValueMaxLen = 60

// MinTruncateLen is the minimum maxLen value for Truncate.
// Values smaller than this would not leave room for meaningful content plus "...".
const MinTruncateLen = 4

// Truncate collapses a string to a single line and cuts it to maxLen
// characters, appending "..." when anything was dropped. Newlines become
// spaces and runs of whitespace collapse to one space, so multi-line
// values never break table rows.
//
// Truncation operates on runes rather than bytes, preventing cuts in the
// middle of multi-byte characters. A maxLen below MinTruncateLen is
// clamped to MinTruncateLen so there is room for at least one character
// plus "...".
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	// strings.Fields splits on any whitespace (\n, \r, \t, repeated
	// spaces); rejoining with single spaces flattens the value.
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
