package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/capacity"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/model"
)

// DefaultThreshold is the remaining capacity below which a vault alerts.
const DefaultThreshold = 2_000_000

// Policy holds the decision threshold and the attribution embedded in alerts.
type Policy struct {
	Threshold   float64
	Dashboard   string // Display name, e.g. "Hypervault"
	Attribution string // Source line, e.g. "app.hypervault.finance/#/earn"
	SourceURL   string // Link to the dashboard page
}

// Decide compares the remaining capacity of a reading against the threshold.
// Remaining strictly below the threshold alerts; equal is OK.
func (p Policy) Decide(vault string, r capacity.Reading) *model.Outcome {
	o := &model.Outcome{
		Vault:     vault,
		Threshold: p.Threshold,
		Capacity:  model.NewCapacityResponse(r),
		Rendered: model.Rendered{
			Used:      capacity.Abbreviate(r.Used()),
			Total:     capacity.Abbreviate(r.Total()),
			Remaining: capacity.Abbreviate(r.Remaining()),
		},
		Timestamp: r.Timestamp(),
		Reading:   r,
	}

	ts := r.Timestamp().UTC().Format(time.RFC3339)
	if r.Remaining() < p.Threshold {
		o.Status = model.StatusAlert
		o.Subject = p.subject(vault)
		o.Body = p.body(vault, r, ts)
		return o
	}

	o.Status = model.StatusOK
	o.Message = fmt.Sprintf("%s: capacity OK (%s of %s)", ts, o.Rendered.Remaining, o.Rendered.Total)
	return o
}

func (p Policy) subject(vault string) string {
	return strings.TrimSpace(fmt.Sprintf("%s %s capacity < %s", p.Dashboard, vault, capacity.Abbreviate(p.Threshold)))
}

func (p Policy) body(vault string, r capacity.Reading, ts string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ Alert: %s capacity below %s\n\n", vault, capacity.Abbreviate(p.Threshold))
	fmt.Fprintf(&b, "• Remaining capacity: %.0f (%s)\n", r.Remaining(), capacity.Abbreviate(r.Remaining()))
	fmt.Fprintf(&b, "• Used capacity: %.0f (%s)\n", r.Used(), capacity.Abbreviate(r.Used()))
	fmt.Fprintf(&b, "• Total capacity: %.0f (%s)\n", r.Total(), capacity.Abbreviate(r.Total()))
	fmt.Fprintf(&b, "• Timestamp (UTC): %s\n", ts)
	if p.Attribution != "" {
		fmt.Fprintf(&b, "• Source: %s\n", p.Attribution)
	}
	if p.SourceURL != "" {
		fmt.Fprintf(&b, "• Link: %s\n", p.SourceURL)
	}
	return b.String()
}
