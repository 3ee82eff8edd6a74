// Package labelutil filters free-text facet labels (subjects, publishers)
// that arrive from messy imports.
package labelutil

import (
	"strings"
	"unicode"
)

// IsPrintableASCII reports whether s is non-blank and made up only of
// printable ASCII characters. Tabs and newlines count as non-printable.
func IsPrintableASCII(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// Filter keeps the values that pass IsPrintableASCII, preserving order.
func Filter(values []string) []string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if IsPrintableASCII(v) {
			kept = append(kept, v)
		}
	}
	return kept
}
