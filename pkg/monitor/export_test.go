package monitor

import "time"

// SetNow replaces the pipeline clock.
func (p *Pipeline) SetNow(now func() time.Time) {
	p.now = now
}
