package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ogulcanaydogan/vault-capacity-guardian/internal/scheduler"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Check vaults on a cron schedule",
	Long: `Check the configured vault and every enabled vault on the watch list
on the schedule.cron schedule, alerting whenever remaining capacity is below
the threshold. A check still running when the next one is due is skipped.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().String("cron", "", "Cron schedule (default from config)")
	watchCmd.Flags().Bool("now", false, "Run one check immediately before the first scheduled one")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if spec, _ := cmd.Flags().GetString("cron"); spec != "" {
		cfg.Schedule.Cron = spec
	}
	now, _ := cmd.Flags().GetBool("now")

	logger := newLogger(cfg)
	pipeline, err := initPipeline(cfg, logger, nil, true)
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sched, err := scheduler.New(cfg.Schedule.Cron, pipeline, store, cfg.Monitor.Vault, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if now {
		sched.Tick(ctx)
	}
	return sched.Run(ctx)
}
