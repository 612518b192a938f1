package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTimerDuration(t *testing.T) {
	timer := NewTimer()
	assert.False(t, timer.start.IsZero())

	time.Sleep(20 * time.Millisecond)
	first := timer.Duration()
	assert.GreaterOrEqual(t, first, 20*time.Millisecond)

	time.Sleep(5 * time.Millisecond)
	assert.Greater(t, timer.Duration(), first)
}

func TestTimerObserveDuration(t *testing.T) {
	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "test_parse_seconds",
		Help: "Test histogram",
	})

	NewTimer().ObserveDuration(histogram)
	assert.Equal(t, 1, testutil.CollectAndCount(histogram))
}

func TestParseDurationDescribesValidation(t *testing.T) {
	desc := ParseDuration.Desc().String()
	assert.Contains(t, desc, "burrow_parse_duration_seconds")
	assert.Contains(t, desc, "Time taken to validate one response")
	assert.NotContains(t, desc, "commit")
}

func TestCountersRegistered(t *testing.T) {
	before := testutil.ToFloat64(ResponsesTotal.WithLabelValues("answered"))
	ResponsesTotal.WithLabelValues("answered").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ResponsesTotal.WithLabelValues("answered")))

	// Registering a second time must collide with the init registration.
	err := prometheus.Register(CacheInvariantViolations)
	assert.Error(t, err)
}
