package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/alerts"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/capacity"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/metrics"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/model"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/source"
)

// Pipeline reads a vault's capacity cell, decides, and dispatches alerts.
// It holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	source    source.Source
	policy    Policy
	notifiers []alerts.Notifier
	metrics   *metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewPipeline wires a pipeline. rec may be nil to disable metrics.
func NewPipeline(src source.Source, policy Policy, notifiers []alerts.Notifier, rec *metrics.Recorder, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		source:    src,
		policy:    policy,
		notifiers: notifiers,
		metrics:   rec,
		logger:    logger,
		now:       time.Now,
	}
}

// Policy returns the decision policy in use.
func (p *Pipeline) Policy() Policy {
	return p.policy
}

// Read fetches and parses the capacity of a vault. Source failures degrade
// to an empty cell, which parses as a zero reading.
func (p *Pipeline) Read(ctx context.Context, vault string) capacity.Reading {
	text, err := p.source.Fetch(ctx, vault)
	if err != nil {
		if errors.Is(err, source.ErrRowNotFound) {
			p.logger.Warn("vault row not found, assuming zero capacity", "vault", vault, "source", p.source.Name())
		} else {
			p.logger.Error("fetch capacity cell", "vault", vault, "source", p.source.Name(), "error", err)
		}
		if p.metrics != nil {
			p.metrics.FetchFailed(vault)
		}
		text = ""
	}

	r := capacity.ParseReading(text, p.now())
	p.logger.Debug("capacity read",
		"vault", vault,
		"raw", text,
		"used", r.Used(),
		"total", r.Total(),
		"remaining", r.Remaining(),
	)
	return r
}

// Evaluate reads a vault and decides, without dispatching alerts.
func (p *Pipeline) Evaluate(ctx context.Context, vault string) *model.Outcome {
	o := p.policy.Decide(vault, p.Read(ctx, vault))
	o.ID = uuid.New().String()

	if p.metrics != nil {
		p.metrics.ObserveOutcome(o)
	}
	return o
}

// Run evaluates a vault and delivers alert outcomes to every notifier.
// Delivery failures are logged and never abort the run. The only error
// returned is the context's, when it is done before the run starts.
func (p *Pipeline) Run(ctx context.Context, vault string) (*model.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := p.Evaluate(ctx, vault)
	if !o.IsAlert() {
		p.logger.Info(o.Message, "vault", vault, "run_id", o.ID)
		return o, nil
	}

	p.logger.Warn("capacity below threshold",
		"vault", vault,
		"run_id", o.ID,
		"remaining", o.Capacity.Remaining,
		"threshold", o.Threshold,
	)

	alert := alerts.FromOutcome(o)
	for _, notifier := range p.notifiers {
		if err := notifier.Send(ctx, alert); err != nil {
			p.logger.Error("send alert failed",
				"notifier", notifier.Name(),
				"vault", vault,
				"error", err,
			)
			if p.metrics != nil {
				p.metrics.DispatchFailed(vault, notifier.Name())
			}
		}
	}
	return o, nil
}
