package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/model"
	"github.com/robfig/cron/v3"
)

// Runner checks one vault and dispatches its alerts.
type Runner interface {
	Run(ctx context.Context, vault string) (*model.Outcome, error)
}

// VaultLister supplies the watch list.
type VaultLister interface {
	ListVaults(ctx context.Context, enabledOnly bool) ([]model.Vault, error)
}

// Scheduler runs capacity checks on a cron schedule. A tick that is still
// running when the next one fires is skipped rather than queued.
type Scheduler struct {
	cron         *cron.Cron
	schedule     cron.Schedule
	runner       Runner
	vaults       VaultLister
	defaultVault string
	logger       *slog.Logger
}

// New creates a scheduler. vaults may be nil to check only defaultVault.
func New(spec string, runner Runner, vaults VaultLister, defaultVault string, logger *slog.Logger) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}

	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		schedule:     schedule,
		runner:       runner,
		vaults:       vaults,
		defaultVault: defaultVault,
		logger:       logger,
	}
	return s, nil
}

// Next returns the next activation time after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Tick checks the default vault and every enabled watched vault once,
// sequentially. A failed check never stops the remaining ones.
func (s *Scheduler) Tick(ctx context.Context) []*model.Outcome {
	var outcomes []*model.Outcome
	for _, vault := range s.targets(ctx) {
		o, err := s.runner.Run(ctx, vault)
		if err != nil {
			s.logger.Warn("check aborted", "vault", vault, "error", err)
			continue
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// Run starts the schedule and blocks until ctx is done, then waits for an
// in-flight tick to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Schedule(s.schedule, cron.FuncJob(func() { s.Tick(ctx) }))
	s.cron.Start()
	s.logger.Info("scheduler started", "next", s.Next(time.Now().UTC()))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) targets(ctx context.Context) []string {
	seen := make(map[string]bool)
	var targets []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			targets = append(targets, name)
		}
	}

	add(s.defaultVault)
	if s.vaults == nil {
		return targets
	}

	vaults, err := s.vaults.ListVaults(ctx, true)
	if err != nil {
		s.logger.Error("load watch list", "error", err)
		return targets
	}
	for _, v := range vaults {
		add(v.Name)
	}
	return targets
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
