package alerts

import (
	"context"
	"time"

	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/model"
)

// AlertLevel indicates the severity of a capacity alert.
type AlertLevel string

const (
	AlertWarning   AlertLevel = "warning"   // Remaining capacity below threshold
	AlertExhausted AlertLevel = "exhausted" // Nothing left, or the dashboard could not be read
)

// Alert is a low-capacity notification handed to every configured sink.
type Alert struct {
	ID        string     `json:"id"`
	Level     AlertLevel `json:"level"`
	Vault     string     `json:"vault"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	Used      float64    `json:"used"`
	Total     float64    `json:"total"`
	Remaining float64    `json:"remaining"`
	Threshold float64    `json:"threshold"`
	Timestamp time.Time  `json:"timestamp"`
}

// FromOutcome builds the alert for an alert outcome.
func FromOutcome(o *model.Outcome) Alert {
	level := AlertWarning
	if o.Capacity.Remaining <= 0 {
		level = AlertExhausted
	}
	return Alert{
		ID:        o.ID,
		Level:     level,
		Vault:     o.Vault,
		Subject:   o.Subject,
		Body:      o.Body,
		Used:      o.Capacity.Used,
		Total:     o.Capacity.Total,
		Remaining: o.Capacity.Remaining,
		Threshold: o.Threshold,
		Timestamp: o.Timestamp,
	}
}

// Notifier sends alerts to external systems.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers an alert. Implementations must be safe for concurrent use.
	Send(ctx context.Context, alert Alert) error
}
