package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ogulcanaydogan/vault-capacity-guardian/internal/config"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/alerts"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/metrics"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/monitor"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/source"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/storage"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "vcg",
	Short: "Vault Capacity Guardian - DeFi vault capacity monitoring and alerting",
	Long: `Vault Capacity Guardian reads the capacity column of a vault dashboard,
normalizes the used and total figures, and alerts when the remaining
capacity drops below a threshold. It runs one-off checks, a cron-driven
watcher, and an HTTP relay serving the parsed figures as JSON.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.vcg/config.yaml)")
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyThreshold honors a --threshold flag override.
func applyThreshold(cmd *cobra.Command, cfg *config.Config) error {
	if !cmd.Flags().Changed("threshold") {
		return nil
	}
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	if threshold < 0 {
		return fmt.Errorf("threshold must not be negative, got %v", threshold)
	}
	cfg.Monitor.Threshold = threshold
	return nil
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// newPolicy builds the decision policy from config.
func newPolicy(cfg *config.Config) monitor.Policy {
	return monitor.Policy{
		Threshold:   cfg.Monitor.Threshold,
		Dashboard:   cfg.Monitor.Dashboard,
		Attribution: cfg.Monitor.Attribution,
		SourceURL:   cfg.Monitor.SourceURL,
	}
}

// initSource creates the page source selected by source.kind.
func initSource(cfg *config.Config) (source.Source, error) {
	switch cfg.Source.Kind {
	case "html":
		return source.NewHTML(cfg.Source.URL, cfg.Source.UserAgent, cfg.Source.Timeout), nil
	case "static":
		if cfg.Source.Fixtures != "" {
			return source.LoadFixtures(cfg.Source.Fixtures)
		}
		return source.NewStatic(cfg.StaticCells()), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}

// initStorage creates a storage backend from config.
func initStorage(cfg *config.Config) (storage.Storage, error) {
	return storage.NewSQLite(cfg.Storage.Path)
}

// initNotifiers creates alert notifiers from config.
func initNotifiers(cfg *config.Config, logger *slog.Logger) ([]alerts.Notifier, error) {
	var notifiers []alerts.Notifier

	if cfg.Alerts.Log.Enabled {
		notifiers = append(notifiers, alerts.NewLogNotifier(logger))
	}

	if s := cfg.Alerts.SMTP; s.Enabled {
		n, err := alerts.NewSMTPNotifier(alerts.SMTPConfig{
			Host:     s.Host,
			Port:     s.Port,
			Username: s.Username,
			Password: s.Password,
			From:     s.From,
			To:       s.To,
			TLS:      s.TLS,
		})
		if err != nil {
			return nil, fmt.Errorf("init smtp notifier: %w", err)
		}
		notifiers = append(notifiers, n)
	}

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alerts.NewSlackNotifier(
			cfg.Alerts.Slack.WebhookURL,
			cfg.Alerts.Slack.Channel,
		))
	}

	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alerts.NewWebhookNotifier(
			cfg.Alerts.Webhook.URL,
			cfg.Alerts.Webhook.Secret,
		))
	}

	if t := cfg.Alerts.Telegram; t.Enabled {
		n, err := alerts.NewTelegramNotifier(t.Token, t.ChatID, t.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("init telegram notifier: %w", err)
		}
		notifiers = append(notifiers, n)
	}

	return notifiers, nil
}

// initPipeline creates a fully wired pipeline. With dispatch false no
// notifiers are built, so a dry run never reaches an external sink.
func initPipeline(cfg *config.Config, logger *slog.Logger, rec *metrics.Recorder, dispatch bool) (*monitor.Pipeline, error) {
	src, err := initSource(cfg)
	if err != nil {
		return nil, err
	}

	var notifiers []alerts.Notifier
	if dispatch {
		notifiers, err = initNotifiers(cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	return monitor.NewPipeline(src, newPolicy(cfg), notifiers, rec, logger), nil
}

// initRecorder returns a metrics recorder, or nil when metrics are disabled.
func initRecorder(cfg *config.Config) *metrics.Recorder {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.NewRecorder()
}
