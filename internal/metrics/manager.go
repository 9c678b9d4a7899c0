// Package metrics exposes Prometheus instruments for the tracking pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "formcoach"

// Manager holds every instrument formcoach records. Instruments are
// registered on the registry passed to NewManager.
type Manager struct {
	// counters
	CounterFrames         *prometheus.CounterVec
	CounterReps           *prometheus.CounterVec
	CounterWarnings       *prometheus.CounterVec
	CounterDetectorErrors prometheus.Counter
	CounterRequests       *prometheus.CounterVec

	// gauges
	GaugeActiveSessions prometheus.Gauge

	// histograms
	HistFrameDuration   prometheus.Histogram
	HistRequestDuration prometheus.Histogram
}

// NewRegistry returns a registry with build info, Go runtime and process
// collectors registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewTestManager returns a Manager on a private registry, so tests can
// create as many as they like.
func NewTestManager() *Manager {
	return NewManager(prometheus.NewRegistry())
}

// NewTestManagerAndRegistry is NewTestManager that also returns the registry
// for scraping.
func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager(reg), reg
}

// NewManager creates the instruments and registers them on reg. It panics
// if reg already holds them.
func NewManager(reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterFrames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames processed, by exercise and whether a pose was found",
		}, []string{"exercise", "pose"}),
		CounterReps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reps_total",
			Help:      "Completed repetitions, by exercise and side",
		}, []string{"exercise", "side"}),
		CounterWarnings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "form_warnings_total",
			Help:      "Frames carrying a form warning, by exercise and fault code",
		}, []string{"exercise", "code"}),
		CounterDetectorErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detector_errors_total",
			Help:      "Frames skipped because pose detection failed",
		}),
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),

		GaugeActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently running",
		}),

		HistFrameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time to detect, track and render one frame",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.033, 0.05, 0.1, 0.2, 0.5, 1},
		}),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
