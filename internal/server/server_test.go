package server_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ogulcanaydogan/vault-capacity-guardian/internal/server"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/alerts"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/metrics"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/model"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/monitor"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/source"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) *server.Server {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.AddVault(t.Context(), &model.Vault{Name: "kHYPE", Enabled: true}))

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	src := source.NewStatic(map[string]string{
		"HYPE":  "1.5M / 2.0M",
		"kHYPE": "1,250K / 3M",
		"WHYPE": "1E308M / 1E308M",
	})
	policy := monitor.Policy{Threshold: monitor.DefaultThreshold, Dashboard: "Hypervault"}
	rec := metrics.NewRecorder()
	p := monitor.NewPipeline(src, policy, []alerts.Notifier{}, rec, logger)

	return server.NewServer(p, store, "HYPE", rec.Handler(), logger)
}

func get(t *testing.T, srv *server.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	w := get(t, setupServer(t), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestServer_Capacity(t *testing.T) {
	w := get(t, setupServer(t), "/api/v1/capacity/HYPE")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var raw map[string]float64
	require.NoError(t, json.NewDecoder(w.Body).Decode(&raw))
	assert.Equal(t, map[string]float64{"used": 1_500_000, "total": 2_000_000, "remaining": 500_000}, raw)
}

func TestServer_RelayAlias(t *testing.T) {
	srv := setupServer(t)

	tests := []struct {
		path      string
		remaining float64
	}{
		{path: "/hype", remaining: 500_000},
		{path: "/khype", remaining: 1_750_000},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(t, srv, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)

			var resp model.CapacityResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.remaining, resp.Remaining)
		})
	}
}

func TestServer_RelayAlias_UnknownPath(t *testing.T) {
	srv := setupServer(t)

	for _, path := range []string{"/unknown", "/favicon.ico", "/robots.txt"} {
		w := get(t, srv, path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestServer_Capacity_OverflowingCell(t *testing.T) {
	w := get(t, setupServer(t), "/api/v1/capacity/WHYPE")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"used":0,"total":0,"remaining":0}`, w.Body.String())

	w = get(t, setupServer(t), "/api/v1/check/WHYPE")
	assert.Equal(t, http.StatusOK, w.Code)

	var o model.Outcome
	require.NoError(t, json.NewDecoder(w.Body).Decode(&o))
	assert.Equal(t, model.StatusAlert, o.Status)
}

func TestServer_Check(t *testing.T) {
	w := get(t, setupServer(t), "/api/v1/check/HYPE")
	assert.Equal(t, http.StatusOK, w.Code)

	var o model.Outcome
	require.NoError(t, json.NewDecoder(w.Body).Decode(&o))
	assert.Equal(t, model.StatusAlert, o.Status)
	assert.Equal(t, "HYPE", o.Vault)
	assert.Equal(t, "500.0K", o.Rendered.Remaining)
	assert.Equal(t, "Hypervault HYPE capacity < 2.0M", o.Subject)
	assert.NotEmpty(t, o.ID)
}

func TestServer_Vaults(t *testing.T) {
	w := get(t, setupServer(t), "/api/v1/vaults")
	assert.Equal(t, http.StatusOK, w.Code)

	var vaults []model.Vault
	require.NoError(t, json.NewDecoder(w.Body).Decode(&vaults))
	require.Len(t, vaults, 1)
	assert.Equal(t, "kHYPE", vaults[0].Name)
}

func TestServer_Vaults_NoStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	p := monitor.NewPipeline(source.NewStatic(nil), monitor.Policy{}, nil, nil, logger)
	srv := server.NewServer(p, nil, "HYPE", nil, logger)

	w := get(t, srv, "/api/v1/vaults")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	// Without a metrics handler /metrics falls through to the relay alias,
	// which only serves known vaults.
	w = get(t, srv, "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(t, srv, "/HYPE")
	assert.JSONEq(t, `{"used":0,"total":0,"remaining":0}`, w.Body.String())
}

func TestServer_Metrics(t *testing.T) {
	srv := setupServer(t)
	get(t, srv, "/api/v1/check/HYPE")

	w := get(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `vcg_vault_capacity_remaining{vault="HYPE"} 500000`), body)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/capacity/HYPE", nil)
	w := httptest.NewRecorder()
	setupServer(t).Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
