package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Response parsing metrics
	ResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_responses_total",
			Help: "Total number of parsed responses by outcome",
		},
		[]string{"outcome"},
	)

	ResponseErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_response_errors_total",
			Help: "Total number of rejected responses by error kind",
		},
		[]string{"kind"},
	)

	RecordsIgnoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_records_ignored_total",
			Help: "Total number of resource records skipped as ignorable by type",
		},
		[]string{"type"},
	)

	ParseDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "burrow_parse_duration_seconds",
			Help:    "Time taken to validate one response in seconds",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		},
	)

	// Cache metrics
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_cache_lookups_total",
			Help: "Total number of cache lookups by result",
		},
		[]string{"result"},
	)

	CacheInvariantViolations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_cache_invariant_violations_total",
			Help: "Total number of inconsistent cache expiry merges",
		},
	)

	CoalescedFetches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_coalesced_fetches_total",
			Help: "Total number of lookups that shared an in-flight fetch",
		},
	)
)

func init() {
	prometheus.MustRegister(ResponsesTotal)
	prometheus.MustRegister(ResponseErrorsTotal)
	prometheus.MustRegister(RecordsIgnoredTotal)
	prometheus.MustRegister(ParseDuration)
	prometheus.MustRegister(CacheLookupsTotal)
	prometheus.MustRegister(CacheInvariantViolations)
	prometheus.MustRegister(CoalescedFetches)
}

// Timer measures the duration of an operation
type Timer struct {
	start time.Time
}

// NewTimer starts a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the time elapsed since the timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration records the elapsed time in seconds on a histogram
func (t *Timer) ObserveDuration(h prometheus.Observer) {
	h.Observe(t.Duration().Seconds())
}
