package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for CounterOperations.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected" // domain rule refused the operation
	OutcomeError    = "error"
)

type Manager struct {
	// counters
	CounterRequests           *prometheus.CounterVec
	CounterOperations         *prometheus.CounterVec
	CounterEventsPublished    *prometheus.CounterVec
	CounterDishCacheHits      prometheus.Counter
	CounterDishCacheMisses    prometheus.Counter
	CounterHandleRequestPanic prometheus.Counter

	// histograms
	HistogramRequestDuration *prometheus.HistogramVec
}

// SetupPrometheus creates the registry exposed at /metrics with the Go
// runtime and process collectors.
func SetupPrometheus() *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promRegistry
}

func NewTestManager() *Manager {
	return NewManager("coaching", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("coaching", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterOperations := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "operation",
		Help:      "The total number of coaching operations by outcome",
	}, []string{"operation", "outcome"})
	counterEventsPublished := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "events_published",
		Help:      "The total number of domain events handed to the notification queue",
	}, []string{"type", "outcome"})
	counterDishCacheHits := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "dish_cache_hits",
		Help:      "Dish lookups served from the cache",
	})
	counterDishCacheMisses := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "dish_cache_misses",
		Help:      "Dish lookups that went to the catalog",
	})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})

	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status_code"})

	return &Manager{
		CounterRequests:           counterRequests,
		CounterOperations:         counterOperations,
		CounterEventsPublished:    counterEventsPublished,
		CounterDishCacheHits:      counterDishCacheHits,
		CounterDishCacheMisses:    counterDishCacheMisses,
		CounterHandleRequestPanic: counterHandleRequestPanic,
		HistogramRequestDuration:  histogramRequestDuration,
	}
}

// ObserveOperation counts one finished coaching operation.
func (m *Manager) ObserveOperation(operation, outcome string) {
	m.CounterOperations.With(prometheus.Labels{
		"operation": operation,
		"outcome":   outcome,
	}).Inc()
}
