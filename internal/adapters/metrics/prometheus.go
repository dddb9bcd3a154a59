// Package metrics records confirmation and assistant activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bnema/taskmate/internal/domain"
	"github.com/bnema/taskmate/internal/ports"
)

const namespace = "taskmate"

type PrometheusRecorder struct {
	registry         *prometheus.Registry
	verdictsTotal    *prometheus.CounterVec
	advancesTotal    *prometheus.CounterVec
	sweptTotal       prometheus.Counter
	activeSessions   prometheus.Gauge
	completionsTotal *prometheus.CounterVec
	completionTime   *prometheus.HistogramVec
}

var _ ports.Metrics = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder registers its collectors on a private registry so
// several recorders can coexist in one process.
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		verdictsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "name_resolutions_total",
				Help:      "Candidate name resolutions by verdict",
			},
			[]string{"verdict"},
		),
		advancesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "confirmation_replies_total",
				Help:      "Replies to pending confirmations by outcome",
			},
			[]string{"outcome"},
		),
		sweptTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "Sessions removed after exceeding the idle timeout",
		}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held in the store",
		}),
		completionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_requests_total",
				Help:      "Language model completions by model and status",
			},
			[]string{"model", "status"},
		),
		completionTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_request_duration_seconds",
				Help:      "Duration of language model completions in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"model"},
		),
	}
}

func (p *PrometheusRecorder) ObserveVerdict(verdict domain.Verdict) {
	p.verdictsTotal.WithLabelValues(string(verdict.Kind)).Inc()
}

func (p *PrometheusRecorder) ObserveAdvance(outcome domain.Outcome) {
	p.advancesTotal.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveSweep(removed int) {
	if removed > 0 {
		p.sweptTotal.Add(float64(removed))
	}
}

func (p *PrometheusRecorder) SetActiveSessions(n int) {
	p.activeSessions.Set(float64(n))
}

func (p *PrometheusRecorder) ObserveCompletion(model string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.completionsTotal.WithLabelValues(model, status).Inc()
	p.completionTime.WithLabelValues(model).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the recorder's registry in the Prometheus text format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
