package alerts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/alerts"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAlert() alerts.Alert {
	return alerts.Alert{
		ID:        "run-1",
		Level:     alerts.AlertWarning,
		Vault:     "HYPE",
		Subject:   "Hypervault HYPE capacity < 2.0M",
		Body:      "Remaining capacity: 500000 (500.0K)",
		Used:      1_500_000,
		Total:     2_000_000,
		Remaining: 500_000,
		Threshold: 2_000_000,
		Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFromOutcome(t *testing.T) {
	o := &model.Outcome{
		ID:        "abc",
		Status:    model.StatusAlert,
		Vault:     "USDT0",
		Threshold: 2_000_000,
		Capacity:  model.CapacityResponse{Used: 900_000, Total: 1_000_000, Remaining: 100_000},
		Subject:   "subject",
		Body:      "body",
	}

	a := alerts.FromOutcome(o)
	assert.Equal(t, "abc", a.ID)
	assert.Equal(t, alerts.AlertWarning, a.Level)
	assert.Equal(t, "USDT0", a.Vault)
	assert.Equal(t, "subject", a.Subject)
	assert.Equal(t, "body", a.Body)
	assert.Equal(t, 100_000.0, a.Remaining)

	o.Capacity = model.CapacityResponse{}
	assert.Equal(t, alerts.AlertExhausted, alerts.FromOutcome(o).Level)
}

func TestLogNotifier_Send(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	n := alerts.NewLogNotifier(logger)
	assert.Equal(t, "log", n.Name())
	require.NoError(t, n.Send(context.Background(), testAlert()))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "Hypervault HYPE capacity < 2.0M", entry["msg"])
	assert.Equal(t, "HYPE", entry["vault"])
	assert.Equal(t, 500_000.0, entry["remaining"])
}
