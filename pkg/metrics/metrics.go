// Package metrics records loader run statistics in a Prometheus registry and
// exports them in the node-exporter textfile format, since a batch job has
// no long-lived endpoint to scrape.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "price_loader"

// Metrics holds the run gauges and counters.
type Metrics struct {
	registry    *prometheus.Registry
	extractRows *prometheus.GaugeVec
	duration    prometheus.Gauge
	lastSuccess prometheus.Gauge
	runs        *prometheus.CounterVec
}

// New creates the metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		extractRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "extract_rows",
			Help:      "Rows written to each extract by the last run.",
		}, []string{"extract"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time the last successful run finished.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Runs by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.extractRows, m.duration, m.lastSuccess, m.runs)
	return m
}

// ObserveSuccess records a completed run.
func (m *Metrics) ObserveSuccess(rows map[string]int, took time.Duration, finished time.Time) {
	for extract, n := range rows {
		m.extractRows.WithLabelValues(extract).Set(float64(n))
	}
	m.duration.Set(took.Seconds())
	m.lastSuccess.Set(float64(finished.Unix()))
	m.runs.WithLabelValues("success").Inc()
}

// ObserveFailure records a run that aborted.
func (m *Metrics) ObserveFailure(took time.Duration) {
	m.duration.Set(took.Seconds())
	m.runs.WithLabelValues("failure").Inc()
}

// WriteTextfile atomically writes every metric to path.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
