// Package metrics exposes vault capacity readings as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the capacity metrics on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	used      *prometheus.GaugeVec
	total     *prometheus.GaugeVec
	remaining *prometheus.GaugeVec
	lastCheck *prometheus.GaugeVec
	checks    *prometheus.CounterVec
	fetchErrs *prometheus.CounterVec
	sinkErrs  *prometheus.CounterVec
}

// NewRecorder creates a recorder with process and Go runtime collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		used: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vcg_vault_capacity_used",
			Help: "Capacity already used in the vault, in vault units.",
		}, []string{"vault"}),
		total: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vcg_vault_capacity_total",
			Help: "Total vault capacity, in vault units.",
		}, []string{"vault"}),
		remaining: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vcg_vault_capacity_remaining",
			Help: "Remaining vault capacity, floored at zero.",
		}, []string{"vault"}),
		lastCheck: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vcg_vault_last_check_timestamp_seconds",
			Help: "Unix time of the last capacity reading.",
		}, []string{"vault"}),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vcg_vault_checks_total",
			Help: "Capacity checks by decision outcome.",
		}, []string{"vault", "outcome"}),
		fetchErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vcg_source_fetch_errors_total",
			Help: "Page source failures that degraded to a zero reading.",
		}, []string{"vault"}),
		sinkErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vcg_alert_dispatch_errors_total",
			Help: "Alert deliveries that failed, by sink.",
		}, []string{"vault", "sink"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.used, r.total, r.remaining, r.lastCheck,
		r.checks, r.fetchErrs, r.sinkErrs,
	)
	return r
}

// ObserveOutcome records the reading and decision of one check.
func (r *Recorder) ObserveOutcome(o *model.Outcome) {
	r.used.WithLabelValues(o.Vault).Set(o.Capacity.Used)
	r.total.WithLabelValues(o.Vault).Set(o.Capacity.Total)
	r.remaining.WithLabelValues(o.Vault).Set(o.Capacity.Remaining)
	r.lastCheck.WithLabelValues(o.Vault).Set(float64(o.Timestamp.Unix()))
	r.checks.WithLabelValues(o.Vault, string(o.Status)).Inc()
}

// FetchFailed counts a page source failure.
func (r *Recorder) FetchFailed(vault string) {
	r.fetchErrs.WithLabelValues(vault).Inc()
}

// DispatchFailed counts a failed alert delivery.
func (r *Recorder) DispatchFailed(vault, sink string) {
	r.sinkErrs.WithLabelValues(vault, sink).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
