package capacity

import "fmt"

// Remaining returns total - used, clamped at zero. A NaN difference also
// yields zero so it can never compare as above a threshold.
func Remaining(used, total float64) float64 {
	if r := total - used; r > 0 {
		return r
	}
	return 0
}

// Abbreviate renders n with a K or M suffix and one decimal, e.g. "1.5M".
// Values below one thousand are rounded to an integer without suffix.
func Abbreviate(n float64) string {
	switch {
	case n >= million:
		return fmt.Sprintf("%.1fM", n/million)
	case n >= thousand:
		return fmt.Sprintf("%.1fK", n/thousand)
	default:
		return fmt.Sprintf("%.0f", n)
	}
}
