// internal/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the instrumentation for the transfer service. A nil
// *Metrics is valid and records nothing, so callers never branch.
type Metrics struct {
	transfers    *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	windows      *prometheus.CounterVec
	placeholders *prometheus.CounterVec
	reverts      *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		transfers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transferdesk_transfers_total",
			Help: "Completed transfer actions by league and action.",
		}, []string{"league", "action"}),
		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transferdesk_rejections_total",
			Help: "Rejected transfer actions by league and reason.",
		}, []string{"league", "reason"}),
		windows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transferdesk_windows_total",
			Help: "Window lifecycle events by league and event (opened, closed).",
		}, []string{"league", "event"}),
		placeholders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transferdesk_placeholders_total",
			Help: "Placeholder player records synthesized on roster misses.",
		}, []string{"league"}),
		reverts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transferdesk_reverts_total",
			Help: "Administrative reverts of unmatched releases.",
		}, []string{"league"}),
	}
}

// Default builds Metrics on the global registry.
func Default() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

// Handler serves the default registry in the usual exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) Transfer(league, action string) {
	if m == nil {
		return
	}
	m.transfers.WithLabelValues(league, action).Inc()
}

func (m *Metrics) Rejection(league, reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(league, reason).Inc()
}

func (m *Metrics) WindowEvent(league, event string) {
	if m == nil {
		return
	}
	m.windows.WithLabelValues(league, event).Inc()
}

func (m *Metrics) Placeholder(league string) {
	if m == nil {
		return
	}
	m.placeholders.WithLabelValues(league).Inc()
}

func (m *Metrics) Revert(league string) {
	if m == nil {
		return
	}
	m.reverts.WithLabelValues(league).Inc()
}
