package config

import (
	"os"
	"strings"
)

// StrictReferenceColumns makes the reference loader log unknown and missing optional
// columns as errors instead of debug noise.
//
// Set via env:
// - STRICT_REFERENCE_COLUMNS=true
func StrictReferenceColumns() bool {
	return isTruthy(os.Getenv("STRICT_REFERENCE_COLUMNS"))
}

// SkipSourceFor disables one source system for a run without touching its input path.
//
// Set via env:
// - RESOLVER_SKIP_SOURCES="A,B"
//
// Source keys are case-insensitive.
func SkipSourceFor(source string) bool {
	source = strings.ToUpper(strings.TrimSpace(source))
	if source == "" {
		return false
	}
	raw := os.Getenv("RESOLVER_SKIP_SOURCES")
	if strings.TrimSpace(raw) == "" {
		return false
	}
	for _, part := range strings.Split(raw, ",") {
		if strings.ToUpper(strings.TrimSpace(part)) == source {
			return true
		}
	}
	return false
}

func isTruthy(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
