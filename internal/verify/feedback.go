package verify

import (
	"strings"
	"unicode/utf8"
)

// Snip joins separate excerpts of a log.
const Snip = "\n...[SNIP]...\n"

// keyErrorMarkers flag the lines worth keeping from a long failure log.
//
//nolint:gochecknoglobals // Read-only marker list
var keyErrorMarkers = []string{
	"Compilation failure",
	"Caused by:",
	"AssertionFailedError",
	"error:",
	"FAIL",
}

const (
	linesBefore = 5
	linesAfter  = 15
)

// ExtractKeyError keeps windows of lines around known failure markers,
// joined by Snip. Without any marker it keeps the head of the log. The
// result is capped at limit bytes when limit is positive.
func ExtractKeyError(log string, limit int) string {
	lines := strings.Split(log, "\n")
	var excerpts []string
	for i, line := range lines {
		if !hasMarker(line) {
			continue
		}
		start := max(0, i-linesBefore)
		end := min(len(lines), i+linesAfter)
		excerpts = append(excerpts, strings.Join(lines[start:end], "\n"))
	}
	if len(excerpts) == 0 {
		return Head(log, limit)
	}
	return Head(strings.Join(excerpts, Snip), limit)
}

func hasMarker(line string) bool {
	for _, m := range keyErrorMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

// Head returns at most the first limit bytes of s, never splitting a rune.
func Head(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Tail returns at most the last limit bytes of s, never splitting a rune.
func Tail(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := len(s) - limit
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}
	return s[cut:]
}
