package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors that report pipeline activity
type Metrics struct {
	stageDuration        *prometheus.HistogramVec
	outcomes             *prometheus.CounterVec
	notificationAttempts *prometheus.CounterVec
	runsActive           prometheus.Gauge
}

// MustNewMetrics constructs a Metrics instance using the provided registerer.
// Tests pass a fresh registry. Registration errors other than re-registration panic.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "interview_scheduler",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration spent in each pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage", "status"},
	)
	outcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "interview_scheduler",
			Subsystem: "pipeline",
			Name:      "outcomes_total",
			Help:      "Pipeline runs by terminal status.",
		},
		[]string{"status", "fallback"},
	)
	notificationAttempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "interview_scheduler",
			Subsystem: "pipeline",
			Name:      "notification_attempts_total",
			Help:      "Notification delivery attempts by result.",
		},
		[]string{"result"},
	)
	runsActive := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "interview_scheduler",
			Subsystem: "pipeline",
			Name:      "runs_active",
			Help:      "Number of pipeline runs currently executing.",
		},
	)

	collectors := []prometheus.Collector{stageDuration, outcomes, notificationAttempts, runsActive}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				switch target := collector.(type) {
				case *prometheus.HistogramVec:
					stageDuration = already.ExistingCollector.(*prometheus.HistogramVec)
				case *prometheus.CounterVec:
					switch target {
					case outcomes:
						outcomes = already.ExistingCollector.(*prometheus.CounterVec)
					case notificationAttempts:
						notificationAttempts = already.ExistingCollector.(*prometheus.CounterVec)
					}
				case prometheus.Gauge:
					runsActive = already.ExistingCollector.(prometheus.Gauge)
				}
				continue
			}
			panic(err)
		}
	}

	return &Metrics{
		stageDuration:        stageDuration,
		outcomes:             outcomes,
		notificationAttempts: notificationAttempts,
		runsActive:           runsActive,
	}
}

// ObserveStage records the time spent in a stage with the provided status label
func (m *Metrics) ObserveStage(stage string, status string, duration time.Duration) {
	if m == nil || m.stageDuration == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage, status).Observe(duration.Seconds())
}

// IncOutcome counts a finished run
func (m *Metrics) IncOutcome(status string, fallback bool) {
	if m == nil || m.outcomes == nil {
		return
	}
	label := "false"
	if fallback {
		label = "true"
	}
	m.outcomes.WithLabelValues(status, label).Inc()
}

// NotificationAttempt counts one delivery attempt
func (m *Metrics) NotificationAttempt(success bool) {
	if m == nil || m.notificationAttempts == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.notificationAttempts.WithLabelValues(result).Inc()
}

// IncActiveRuns marks a run as active
func (m *Metrics) IncActiveRuns() {
	if m == nil || m.runsActive == nil {
		return
	}
	m.runsActive.Inc()
}

// DecActiveRuns marks a run as finished
func (m *Metrics) DecActiveRuns() {
	if m == nil || m.runsActive == nil {
		return
	}
	m.runsActive.Dec()
}
