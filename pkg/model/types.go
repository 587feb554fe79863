package model

import (
	"time"

	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/capacity"
)

// OutcomeStatus is the result of a threshold decision.
type OutcomeStatus string

const (
	StatusAlert OutcomeStatus = "alert" // Remaining capacity below threshold
	StatusOK    OutcomeStatus = "ok"    // Remaining capacity at or above threshold
)

// CapacityResponse is the JSON body served by the capacity relay.
type CapacityResponse struct {
	Used      float64 `json:"used" yaml:"used"`
	Total     float64 `json:"total" yaml:"total"`
	Remaining float64 `json:"remaining" yaml:"remaining"`
}

// NewCapacityResponse converts a reading into its relay form.
func NewCapacityResponse(r capacity.Reading) CapacityResponse {
	return CapacityResponse{
		Used:      r.Used(),
		Total:     r.Total(),
		Remaining: r.Remaining(),
	}
}

// Rendered holds the abbreviated display forms of a reading.
type Rendered struct {
	Used      string `json:"used" yaml:"used"`
	Total     string `json:"total" yaml:"total"`
	Remaining string `json:"remaining" yaml:"remaining"`
}

// Outcome is the decision for one reading. Alert outcomes carry Subject and
// Body for the alert sinks; OK outcomes carry a single Message line.
type Outcome struct {
	ID        string           `json:"id" yaml:"id"`
	Status    OutcomeStatus    `json:"status" yaml:"status"`
	Vault     string           `json:"vault" yaml:"vault"`
	Threshold float64          `json:"threshold" yaml:"threshold"`
	Capacity  CapacityResponse `json:"capacity" yaml:"capacity"`
	Rendered  Rendered         `json:"rendered" yaml:"rendered"`
	Timestamp time.Time        `json:"timestamp" yaml:"timestamp"`
	Subject   string           `json:"subject,omitempty" yaml:"subject,omitempty"`
	Body      string           `json:"body,omitempty" yaml:"body,omitempty"`
	Message   string           `json:"message,omitempty" yaml:"message,omitempty"`

	Reading capacity.Reading `json:"-" yaml:"-"`
}

// IsAlert reports whether the outcome should be dispatched to alert sinks.
func (o *Outcome) IsAlert() bool {
	return o.Status == StatusAlert
}

// SinkMessage returns the subject and body to deliver. ok is false for
// outcomes that are only logged.
func (o *Outcome) SinkMessage() (subject, body string, ok bool) {
	if !o.IsAlert() {
		return "", "", false
	}
	return o.Subject, o.Body, true
}

// Vault is a watch list entry: a dashboard row the monitor checks on schedule.
type Vault struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Label     string    `json:"label,omitempty" db:"label"`
	Enabled   bool      `json:"enabled" db:"enabled"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
