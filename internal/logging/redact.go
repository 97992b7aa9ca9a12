// Package logging keeps provider credentials out of log output.
//
// Prompts and provider errors are logged in debug mode and may echo API keys
// from the environment, so console and file writers are wrapped with
// FilteringWriter and every logger carries the SensitiveDataHook.
package logging

import (
	"io"
	"regexp"

	"github.com/rs/zerolog"
)

// RedactedValue replaces matched secrets.
const RedactedValue = "[REDACTED]"

//nolint:gochecknoglobals // Compiled once
var sensitivePatterns = []*regexp.Regexp{
	// OpenAI and DeepSeek style keys
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),
	// Google API keys (Gemini)
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{30,}`),
	// Bearer tokens and authorization headers
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{16,}`),
	regexp.MustCompile(`(?i)authorization\s*[:=]\s*["']?[a-zA-Z0-9._ -]{16,}`),
	// key=value assignments; a closing quote is left alone so JSON lines stay valid
	regexp.MustCompile(`(?i)(api[_-]?key|secret|token|password)\s*[:=]\s*["']?[^\s"']{8,}`),
}

// ContainsSensitiveData reports whether s matches a secret pattern.
func ContainsSensitiveData(s string) bool {
	for _, p := range sensitivePatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces every secret in s with RedactedValue.
func FilterSensitiveValue(s string) string {
	for _, p := range sensitivePatterns {
		s = p.ReplaceAllString(s, RedactedValue)
	}
	return s
}

// SensitiveDataHook flags events whose message looks like it carries a secret.
// zerolog hooks cannot rewrite messages; FilteringWriter does the redaction.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements zerolog.Hook.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// FilteringWriter redacts secrets before writing to the wrapped writer.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter wraps w.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer. It reports len(p) on success so callers never
// see a short write caused by redaction.
func (fw *FilteringWriter) Write(p []byte) (int, error) {
	if _, err := fw.w.Write([]byte(FilterSensitiveValue(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Excerpt shortens s for log fields.
func Excerpt(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
