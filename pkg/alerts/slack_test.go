package alerts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/alerts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlackNotifier_Name(t *testing.T) {
	n := alerts.NewSlackNotifier("https://hooks.slack.com/test", "#test")
	assert.Equal(t, "slack", n.Name())
}

func TestSlackNotifier_Send(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, http.MethodPost, r.Method)

		err := json.NewDecoder(r.Body).Decode(&received)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := alerts.NewSlackNotifier(server.URL, "#vaults")

	err := n.Send(context.Background(), testAlert())
	require.NoError(t, err)
	assert.Equal(t, "#vaults", received["channel"])
	assert.Equal(t, "Hypervault HYPE capacity < 2.0M", received["text"])
	assert.NotNil(t, received["attachments"])
}

func TestSlackNotifier_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := alerts.NewSlackNotifier(server.URL, "#test")
	err := n.Send(context.Background(), alerts.Alert{Level: alerts.AlertWarning})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestSlackNotifier_AlertLevelColors(t *testing.T) {
	tests := []struct {
		level alerts.AlertLevel
		color string
	}{
		{alerts.AlertWarning, "#ff9900"},
		{alerts.AlertExhausted, "#cc0000"},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			var received struct {
				Attachments []struct {
					Color string `json:"color"`
				} `json:"attachments"`
			}
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&received)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			n := alerts.NewSlackNotifier(server.URL, "#test")
			err := n.Send(context.Background(), alerts.Alert{Level: tt.level})
			require.NoError(t, err)
			require.Len(t, received.Attachments, 1)
			assert.Equal(t, tt.color, received.Attachments[0].Color)
		})
	}
}
