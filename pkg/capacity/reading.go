package capacity

import "time"

// Reading is one capacity observation of a vault. The zero value is a valid
// empty reading. Remaining is always derived from Used and Total.
type Reading struct {
	used      float64
	total     float64
	remaining float64
	timestamp time.Time
}

// NewReading builds a reading captured at ts, stored in UTC.
func NewReading(used, total float64, ts time.Time) Reading {
	return Reading{
		used:      used,
		total:     total,
		remaining: Remaining(used, total),
		timestamp: ts.UTC(),
	}
}

// ParseReading parses a raw capacity cell into a reading captured at ts.
func ParseReading(raw string, ts time.Time) Reading {
	used, total := ParseCell(raw)
	return NewReading(used, total, ts)
}

// Zero is the fail-safe reading used when no capacity could be read.
func Zero(ts time.Time) Reading {
	return NewReading(0, 0, ts)
}

func (r Reading) Used() float64        { return r.used }
func (r Reading) Total() float64       { return r.total }
func (r Reading) Remaining() float64   { return r.remaining }
func (r Reading) Timestamp() time.Time { return r.timestamp }
