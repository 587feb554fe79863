package capacity

import (
	"regexp"
	"strings"
)

// numericRun matches one displayed figure, e.g. "19K", "1.2M" or "97".
var numericRun = regexp.MustCompile(`\d+(?:\.\d+)?[MK]?`)

const zeroToken = "0"

// SplitTokens extracts the (used, total) tokens from a capacity cell.
//
// Cells rendered as "<used> / <total>" are split on the slash. Cells without
// a slash ("19K30K") are scanned for numeric runs. A single value means
// used == total; anything else unreadable yields ("0", "0").
func SplitTokens(raw string) (used, total string) {
	text := strings.TrimSpace(tokenCleaner.Replace(raw))

	if strings.Contains(text, "/") {
		return splitSlashed(text)
	}
	return scanRuns(text)
}

func splitSlashed(text string) (string, string) {
	var parts []string
	for _, p := range strings.Split(text, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	switch len(parts) {
	case 2:
		return parts[0], parts[1]
	case 1:
		return parts[0], parts[0]
	default:
		return zeroToken, zeroToken
	}
}

func scanRuns(text string) (string, string) {
	matches := numericRun.FindAllString(strings.ToUpper(text), 2)
	switch len(matches) {
	case 2:
		return matches[0], matches[1]
	case 1:
		return matches[0], matches[0]
	default:
		return zeroToken, zeroToken
	}
}

// ParseCell returns the normalized (used, total) values of a capacity cell.
func ParseCell(raw string) (used, total float64) {
	u, t := SplitTokens(raw)
	return Normalize(u), Normalize(t)
}
