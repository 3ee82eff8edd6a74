package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrend(t *testing.T) {
	t.Parallel()

	cases := []struct {
		current int
		prior   int
		want    string
	}{
		{0, 0, "+0%"},
		{5, 0, "+100%"},
		{10, 5, "+100%"},
		{5, 10, "-50%"},
		{7, 7, "+0%"},
		{0, 4, "-100%"},
		{4, 3, "+33%"},
		{2, 3, "-33%"},
		{5, 3, "+67%"},
		{200, 1000, "-80%"},
		{1000, 999, "+0%"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Trend(tc.current, tc.prior), "Trend(%d, %d)", tc.current, tc.prior)
	}
}
