package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all Vault Capacity Guardian configuration.
type Config struct {
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Source   SourceConfig   `mapstructure:"source"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
	Server   ServerConfig   `mapstructure:"server"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// MonitorConfig defines what is watched and when it alerts.
type MonitorConfig struct {
	Vault       string  `mapstructure:"vault"`
	Threshold   float64 `mapstructure:"threshold"`
	Dashboard   string  `mapstructure:"dashboard"`
	SourceURL   string  `mapstructure:"source_url"`
	Attribution string  `mapstructure:"attribution"`
}

// SourceConfig defines where capacity cell text comes from.
type SourceConfig struct {
	Kind      string        `mapstructure:"kind"`
	URL       string        `mapstructure:"url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Fixtures  string        `mapstructure:"fixtures"`
	Static    []StaticCell  `mapstructure:"static"`
}

// StaticCell is one inline cell for the static source. A list is used
// rather than a map because config keys are case-insensitive.
type StaticCell struct {
	Vault string `mapstructure:"vault"`
	Cell  string `mapstructure:"cell"`
}

// AlertsConfig defines alerting integrations.
type AlertsConfig struct {
	Log      LogAlertConfig `mapstructure:"log"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Slack    SlackConfig    `mapstructure:"slack"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// LogAlertConfig toggles the structured log sink.
type LogAlertConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SMTPConfig defines email relay settings.
type SMTPConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
	TLS      string   `mapstructure:"tls"`
}

// SlackConfig defines Slack webhook settings.
type SlackConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
}

// WebhookConfig defines generic webhook settings.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Secret  string `mapstructure:"secret"`
}

// TelegramConfig defines Telegram bot settings.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Token    string `mapstructure:"token"`
	ChatID   int64  `mapstructure:"chat_id"`
	Endpoint string `mapstructure:"endpoint"`
}

// ServerConfig defines the HTTP API settings.
type ServerConfig struct {
	Listen       string        `mapstructure:"listen"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// ScheduleConfig defines the watch schedule.
type ScheduleConfig struct {
	Cron string `mapstructure:"cron"`
}

// StorageConfig defines database settings.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// MetricsConfig toggles Prometheus instrumentation.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".vcg"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("VCG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("monitor.vault", "HYPE")
	v.SetDefault("monitor.threshold", 2_000_000)
	v.SetDefault("monitor.dashboard", "Hypervault")
	v.SetDefault("monitor.source_url", "https://app.hypervault.finance/#/earn")
	v.SetDefault("monitor.attribution", "app.hypervault.finance/#/earn")

	v.SetDefault("source.kind", "html")
	v.SetDefault("source.url", "https://app.hypervault.finance/#/earn")
	v.SetDefault("source.timeout", "60s")

	v.SetDefault("alerts.log.enabled", true)
	v.SetDefault("alerts.smtp.port", 587)
	v.SetDefault("alerts.smtp.tls", "mandatory")
	v.SetDefault("alerts.slack.channel", "#vault-capacity")

	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")

	v.SetDefault("schedule.cron", "*/5 * * * *")
	v.SetDefault("storage.path", filepath.Join(home, ".vcg", "vaults.db"))
	v.SetDefault("metrics.enabled", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate reports every setting that would prevent the monitor from running.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Monitor.Vault) == "" {
		errs = append(errs, errors.New("monitor.vault is required"))
	}
	if c.Monitor.Threshold < 0 {
		errs = append(errs, fmt.Errorf("monitor.threshold must not be negative, got %v", c.Monitor.Threshold))
	}

	switch c.Source.Kind {
	case "html":
		if c.Source.URL == "" {
			errs = append(errs, errors.New("source.url is required for the html source"))
		}
	case "static":
		if c.Source.Fixtures == "" && len(c.Source.Static) == 0 {
			errs = append(errs, errors.New("source.fixtures or source.static is required for the static source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source.kind %q (want html or static)", c.Source.Kind))
	}

	if s := c.Alerts.SMTP; s.Enabled {
		if s.Host == "" || s.From == "" || len(s.To) == 0 {
			errs = append(errs, errors.New("alerts.smtp requires host, from and to"))
		}
	}
	if c.Alerts.Slack.Enabled && c.Alerts.Slack.WebhookURL == "" {
		errs = append(errs, errors.New("alerts.slack.webhook_url is required"))
	}
	if c.Alerts.Webhook.Enabled && c.Alerts.Webhook.URL == "" {
		errs = append(errs, errors.New("alerts.webhook.url is required"))
	}
	if t := c.Alerts.Telegram; t.Enabled && (t.Token == "" || t.ChatID == 0) {
		errs = append(errs, errors.New("alerts.telegram requires token and chat_id"))
	}

	if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
		errs = append(errs, fmt.Errorf("schedule.cron: %w", err))
	}

	return errors.Join(errs...)
}

// StaticCells returns the inline static cells as a vault to text map.
func (c *Config) StaticCells() map[string]string {
	cells := make(map[string]string, len(c.Source.Static))
	for _, sc := range c.Source.Static {
		cells[sc.Vault] = sc.Cell
	}
	return cells
}
