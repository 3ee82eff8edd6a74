package labelutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPrintableASCII(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"Mathematics":         true,
		"Social Science":      true,
		"C++ & Data (Vol. 2)": true,
		"":                    false,
		"   ":                 false,
		"Ciência":             false,
		"गणित":                false,
		"Line\nBreak":         false,
		"Tab\tSeparated":      false,
		"\x00null":            false,
	}

	for in, want := range tests {
		assert.Equal(t, want, IsPrintableASCII(in), "%q", in)
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"Math", "Physics"}, Filter([]string{"Math", "Ciência", "", "Physics"}))
	assert.Empty(t, Filter(nil))
}
