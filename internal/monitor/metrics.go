package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pass triggers used as metric labels
const (
	triggerTick     = "tick"
	triggerForce    = "force"
	triggerActivate = "activate"
)

// Metrics is the Prometheus instrumentation for a Monitor. A nil *Metrics
// records nothing.
type Metrics struct {
	ticks             *prometheus.CounterVec
	passes            *prometheus.CounterVec
	passDuration      prometheus.Histogram
	switches          *prometheus.CounterVec
	monitoredFiles    prometheus.Gauge
	consecutiveErrors prometheus.Gauge
}

// NewMetrics creates monitor metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cccs",
				Subsystem: "monitor",
				Name:      "ticks_total",
				Help:      "Total monitor ticks by outcome",
			},
			[]string{"outcome"},
		),
		passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cccs",
				Subsystem: "monitor",
				Name:      "passes_total",
				Help:      "Total full scan passes by trigger and result",
			},
			[]string{"trigger", "result"},
		),
		passDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "cccs",
				Subsystem: "monitor",
				Name:      "pass_duration_seconds",
				Help:      "Duration of full scan passes",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
		),
		switches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cccs",
				Subsystem: "monitor",
				Name:      "switches_total",
				Help:      "Total profile activations by result",
			},
			[]string{"result"},
		),
		monitoredFiles: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "cccs",
				Subsystem: "monitor",
				Name:      "monitored_files",
				Help:      "Number of files in the monitored set",
			},
		),
		consecutiveErrors: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "cccs",
				Subsystem: "monitor",
				Name:      "consecutive_errors",
				Help:      "Number of consecutive failed passes",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.ticks,
			m.passes,
			m.passDuration,
			m.switches,
			m.monitoredFiles,
			m.consecutiveErrors,
		)
	}
	return m
}

func (m *Metrics) recordTick(changed bool) {
	if m == nil {
		return
	}
	outcome := "unchanged"
	if changed {
		outcome = "changed"
	}
	m.ticks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) recordPass(trigger string, started time.Time, err error, files int, consecutive int64) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	} else {
		m.monitoredFiles.Set(float64(files))
	}
	m.passes.WithLabelValues(trigger, result).Inc()
	m.passDuration.Observe(time.Since(started).Seconds())
	m.consecutiveErrors.Set(float64(consecutive))
}

func (m *Metrics) recordSwitch(result string) {
	if m == nil {
		return
	}
	m.switches.WithLabelValues(result).Inc()
}
