package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagersAreIndependent(t *testing.T) {
	a := NewManager()
	b := NewManager()

	a.GetPrometheusMetrics().RecordStreamTick("anomaly", time.Millisecond)
	a.GetPrometheusMetrics().RecordStreamTick("anomaly", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(a.GetPrometheusMetrics().StreamTicksTotal.WithLabelValues("anomaly")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.GetPrometheusMetrics().StreamTicksTotal.WithLabelValues("anomaly")))
}

func TestRecorders(t *testing.T) {
	m := NewManager().GetPrometheusMetrics()

	m.RecordAnomalySample("spike", 0.8, true)
	m.RecordAnomalySample("none", 0.05, false)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnomaliesDetectedTotal.WithLabelValues("spike")))
	assert.Equal(t, 0.05, testutil.ToFloat64(m.AnomalyScore))

	m.UpdateLine(46, 12, map[string]int{"assembly": 9})
	assert.Equal(t, 46.0, testutil.ToFloat64(m.LineOEE))
	assert.Equal(t, 9.0, testutil.ToFloat64(m.StationBuffer.WithLabelValues("assembly")))

	m.UpdateComponentHealth("simulation", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ComponentHealth.WithLabelValues("simulation")))
	m.SetStreamPaused("efficiency", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StreamsPaused.WithLabelValues("efficiency")))

	m.RecordCopilotQuery("log", 10*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CopilotQueriesTotal.WithLabelValues("log")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	mgr := NewManager()
	mgr.GetPrometheusMetrics().RecordOptimization("energy")
	mgr.UpdateSystemMetrics()

	rec := httptest.NewRecorder()
	mgr.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `plantsim_optimizations_total{engine="energy"} 1`)
	assert.Contains(t, rec.Body.String(), "plantsim_goroutines")
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	n, err := testutil.GatherAndCount(mgr.Registry(), "plantsim_goroutines", "plantsim_memory_usage_bytes")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
