package stats

import (
	"fmt"
	"math"
)

// Trend renders the change from prior to current as a signed whole
// percentage, e.g. "+100%", "+0%" or "-50%". Growth from nothing is "+100%".
func Trend(current, prior int) string {
	if prior == 0 {
		if current > 0 {
			return "+100%"
		}
		return "+0%"
	}

	pct := int(math.Round(float64(current-prior) / float64(prior) * 100))
	if pct >= 0 {
		return fmt.Sprintf("+%d%%", pct)
	}
	return fmt.Sprintf("%d%%", pct)
}
