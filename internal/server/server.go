package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/model"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/monitor"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/storage"
)

// Server exposes vault capacity readings, health and metrics over HTTP.
type Server struct {
	pipeline     *monitor.Pipeline
	store        storage.Storage
	defaultVault string
	metrics      http.Handler
	mux          *http.ServeMux
	logger       *slog.Logger
}

// NewServer creates an API server. store and metrics may be nil.
func NewServer(p *monitor.Pipeline, store storage.Storage, defaultVault string, metrics http.Handler, logger *slog.Logger) *Server {
	s := &Server{
		pipeline:     p,
		store:        store,
		defaultVault: defaultVault,
		metrics:      metrics,
		mux:          http.NewServeMux(),
		logger:       logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/capacity/{vault}", s.handleCapacity)
	s.mux.HandleFunc("GET /api/v1/check/{vault}", s.handleCheck)
	s.mux.HandleFunc("GET /api/v1/vaults", s.handleVaults)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
	// Relay alias, e.g. GET /hype. Only configured or watched vaults.
	s.mux.HandleFunc("GET /{vault}", s.handleRelay)
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCapacity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()

	vault, _ := s.resolveVault(ctx, r.PathValue("vault"))
	s.writeCapacity(ctx, w, vault)
}

func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()

	vault, known := s.resolveVault(ctx, r.PathValue("vault"))
	if !known {
		http.NotFound(w, r)
		return
	}
	s.writeCapacity(ctx, w, vault)
}

func (s *Server) writeCapacity(ctx context.Context, w http.ResponseWriter, vault string) {
	reading := s.pipeline.Read(ctx, vault)
	s.writeJSON(w, http.StatusOK, model.NewCapacityResponse(reading))
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()

	vault, _ := s.resolveVault(ctx, r.PathValue("vault"))
	s.writeJSON(w, http.StatusOK, s.pipeline.Evaluate(ctx, vault))
}

func (s *Server) handleVaults(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSON(w, http.StatusOK, []model.Vault{})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	vaults, err := s.store.ListVaults(ctx, false)
	if err != nil {
		s.logger.Error("list vaults", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if vaults == nil {
		vaults = []model.Vault{}
	}
	s.writeJSON(w, http.StatusOK, vaults)
}

// resolveVault maps a case-insensitive path segment onto the configured or
// watched vault name, since row matching on the page is case-sensitive.
// known is false when the name matches neither.
func (s *Server) resolveVault(ctx context.Context, name string) (vault string, known bool) {
	if strings.EqualFold(name, s.defaultVault) {
		return s.defaultVault, true
	}
	if s.store == nil {
		return name, false
	}

	vaults, err := s.store.ListVaults(ctx, false)
	if err != nil {
		s.logger.Warn("resolve vault from watch list", "vault", name, "error", err)
		return name, false
	}
	for _, v := range vaults {
		if v.Name == name {
			return name, true
		}
	}
	for _, v := range vaults {
		if strings.EqualFold(v.Name, name) {
			return v.Name, true
		}
	}
	return name, false
}

// writeJSON encodes before writing the status so an unencodable value
// becomes a 500 instead of an empty 200.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}
