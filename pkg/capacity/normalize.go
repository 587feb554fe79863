// Package capacity turns dashboard capacity text into numeric readings.
package capacity

import (
	"math"
	"strconv"
	"strings"
)

const (
	thousand = 1_000
	million  = 1_000_000
)

var tokenCleaner = strings.NewReplacer(",", "", "\n", "", "\r", "")

// Normalize converts a human-formatted number such as "1,250", "18K" or
// "1.2M" into its value. Anything unparseable yields 0.
func Normalize(token string) float64 {
	s := strings.ToUpper(strings.TrimSpace(tokenCleaner.Replace(token)))
	if s == "" {
		return 0
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "M"):
		multiplier = million
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "K"):
		multiplier = thousand
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	// The suffix can push a finite prefix past float64 range.
	v *= multiplier
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
