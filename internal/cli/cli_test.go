package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ogulcanaydogan/vault-capacity-guardian/internal/config"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/capacity"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/model"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/monitor"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var outputTime = time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
monitor:
  vault: HYPE
source:
  kind: static
  static:
    - vault: HYPE
      cell: "1.5M / 2.0M"
    - vault: USDT0
      cell: "1M / 5M"
alerts:
  log:
    enabled: false
storage:
  path: ` + filepath.Join(dir, "vaults.db") + `
logging:
  level: error
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestWriteOutcome(t *testing.T) {
	policy := monitor.Policy{Threshold: monitor.DefaultThreshold, Dashboard: "Hypervault"}
	alert := policy.Decide("HYPE", capacity.ParseReading("1.5M / 2.0M", outputTime))
	ok := policy.Decide("USDT0", capacity.ParseReading("1M / 5M", outputTime))

	t.Run("text alert", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeOutcome(&buf, alert, "text"))
		assert.Contains(t, buf.String(), "Hypervault HYPE capacity < 2.0M\n\n⚠️ Alert: HYPE capacity below 2.0M")
	})

	t.Run("text ok", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeOutcome(&buf, ok, ""))
		assert.Equal(t, "2025-03-01T12:30:00Z: capacity OK (4.0M of 5.0M)\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeOutcome(&buf, alert, "json"))

		var o model.Outcome
		require.NoError(t, json.Unmarshal(buf.Bytes(), &o))
		assert.Equal(t, model.StatusAlert, o.Status)
		assert.Equal(t, 500_000.0, o.Capacity.Remaining)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeOutcome(&buf, ok, "yaml"))

		var decoded map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "ok", decoded["status"])
		assert.Equal(t, "USDT0", decoded["vault"])
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, writeOutcome(&bytes.Buffer{}, ok, "xml"))
	})
}

func TestApplyThreshold(t *testing.T) {
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{}
		cmd.Flags().Float64("threshold", 0, "")
		return cmd
	}
	cfg := &config.Config{Monitor: config.MonitorConfig{Threshold: 2_000_000}}

	cmd := newCmd()
	require.NoError(t, applyThreshold(cmd, cfg))
	assert.Equal(t, 2_000_000.0, cfg.Monitor.Threshold)

	cmd = newCmd()
	require.NoError(t, cmd.Flags().Set("threshold", "750000"))
	require.NoError(t, applyThreshold(cmd, cfg))
	assert.Equal(t, 750_000.0, cfg.Monitor.Threshold)

	cmd = newCmd()
	require.NoError(t, cmd.Flags().Set("threshold", "-5"))
	assert.Error(t, applyThreshold(cmd, cfg))
}

func TestInitSource(t *testing.T) {
	cfg := &config.Config{Source: config.SourceConfig{Kind: "html", URL: "https://example.com"}}
	src, err := initSource(cfg)
	require.NoError(t, err)
	assert.Equal(t, "html", src.Name())

	cfg.Source = config.SourceConfig{Kind: "static", Static: []config.StaticCell{{Vault: "HYPE", Cell: "1M"}}}
	src, err = initSource(cfg)
	require.NoError(t, err)
	text, err := src.Fetch(t.Context(), "HYPE")
	require.NoError(t, err)
	assert.Equal(t, "1M", text)

	cfg.Source = config.SourceConfig{Kind: "static", Fixtures: filepath.Join(t.TempDir(), "missing.yaml")}
	_, err = initSource(cfg)
	assert.Error(t, err)

	cfg.Source = config.SourceConfig{Kind: "browser"}
	_, err = initSource(cfg)
	assert.Error(t, err)
}

func TestInitNotifiers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	cfg := &config.Config{}
	cfg.Alerts.Log.Enabled = true
	cfg.Alerts.Slack = config.SlackConfig{Enabled: true, WebhookURL: "https://hooks.slack.test/x"}
	cfg.Alerts.Webhook = config.WebhookConfig{Enabled: true, URL: "https://hooks.test/x"}
	cfg.Alerts.SMTP = config.SMTPConfig{
		Enabled: true, Host: "smtp.gmail.com", Port: 587,
		From: "bot@example.com", To: []string{"ops@example.com"}, TLS: "mandatory",
	}

	notifiers, err := initNotifiers(cfg, logger)
	require.NoError(t, err)

	var names []string
	for _, n := range notifiers {
		names = append(names, n.Name())
	}
	assert.Equal(t, []string{"log", "smtp", "slack", "webhook"}, names)

	cfg.Alerts.SMTP.TLS = "sometimes"
	_, err = initNotifiers(cfg, logger)
	assert.Error(t, err)
}

func TestParseCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out := execute(t, "--config", cfgPath, "parse", "19K30K", "--vault", "USDT0", "--output", "json")

	var o model.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &o))
	assert.Equal(t, "USDT0", o.Vault)
	assert.Equal(t, model.CapacityResponse{Used: 19_000, Total: 30_000, Remaining: 11_000}, o.Capacity)
	assert.True(t, o.IsAlert())
}

func TestCheckCommand_DryRun(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out := execute(t, "--config", cfgPath, "check", "--dry-run", "--output", "text")
	assert.Contains(t, out, "HYPE capacity < 2.0M")

	out = execute(t, "--config", cfgPath, "check", "USDT0", "--dry-run", "--output", "text")
	assert.Contains(t, out, "capacity OK (4.0M of 5.0M)")
}

func TestVaultsCommands(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out := execute(t, "--config", cfgPath, "vaults", "add", "kHYPE", "--label", "Kinetiq HYPE")
	assert.Contains(t, out, "Name:     kHYPE")

	out = execute(t, "--config", cfgPath, "vaults", "disable", "kHYPE")
	assert.Equal(t, "Vault kHYPE disabled\n", out)

	out = execute(t, "--config", cfgPath, "vaults", "list")
	assert.Contains(t, out, "kHYPE")
	assert.Contains(t, out, "false")

	out = execute(t, "--config", cfgPath, "vaults", "remove", "kHYPE")
	assert.Contains(t, out, "removed")

	out = execute(t, "--config", cfgPath, "vaults", "list")
	assert.Contains(t, out, "No watched vaults")
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "version")
	assert.Equal(t, "vcg version dev\n", out)
}
