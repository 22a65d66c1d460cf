package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics contains all Prometheus metrics for the plant simulator
type PrometheusMetrics struct {
	// Simulation stream metrics
	StreamTicksTotal   *prometheus.CounterVec
	StreamTickDuration *prometheus.HistogramVec
	StreamsPaused      *prometheus.GaugeVec

	// Anomaly metrics
	AnomaliesDetectedTotal *prometheus.CounterVec
	AnomalyScore           prometheus.Gauge

	// Production line metrics
	LineOEE           prometheus.Gauge
	LineProducedTotal prometheus.Gauge
	StationBuffer     *prometheus.GaugeVec

	// Machine health metrics
	PredictiveAnomalyScore prometheus.Gauge
	PredictiveRUL          prometheus.Gauge

	// Energy metrics
	SpotPrice prometheus.Gauge

	// Engine request metrics
	OptimizationsTotal   *prometheus.CounterVec
	CopilotQueriesTotal  *prometheus.CounterVec
	CopilotQueryDuration prometheus.Histogram

	// Notification metrics
	NotificationsSentTotal    *prometheus.CounterVec
	NotificationFailuresTotal *prometheus.CounterVec
	NotificationDuration      *prometheus.HistogramVec

	// API metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Application health metrics
	ApplicationUptime prometheus.Gauge
	ComponentHealth   *prometheus.GaugeVec
	MemoryUsage       prometheus.Gauge
	GoroutineCount    prometheus.Gauge
}

// NewPrometheusMetrics creates all metrics and registers them with reg
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	f := promauto.With(reg)

	return &PrometheusMetrics{
		StreamTicksTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantsim_stream_ticks_total",
				Help: "Total number of simulation ticks per stream",
			},
			[]string{"stream"},
		),

		StreamTickDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plantsim_stream_tick_duration_seconds",
				Help:    "Time spent in one simulation tick",
				Buckets: []float64{.00001, .0001, .001, .01, .1},
			},
			[]string{"stream"},
		),

		StreamsPaused: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "plantsim_stream_paused",
				Help: "Whether a simulation stream is paused (1=paused)",
			},
			[]string{"stream"},
		),

		AnomaliesDetectedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantsim_anomalies_detected_total",
				Help: "Total number of anomalous signal samples",
			},
			[]string{"noise"},
		),

		AnomalyScore: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "plantsim_anomaly_score",
				Help: "Anomaly score of the latest signal sample",
			},
		),

		LineOEE: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "plantsim_line_oee_percent",
				Help: "Overall equipment effectiveness of the production line",
			},
		),

		LineProducedTotal: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "plantsim_line_produced",
				Help: "Units produced by the line in the current shift",
			},
		),

		StationBuffer: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "plantsim_station_buffer",
				Help: "Work-in-progress buffer per station",
			},
			[]string{"station"},
		),

		PredictiveAnomalyScore: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "plantsim_predictive_anomaly_score",
				Help: "Latest machine health anomaly score",
			},
		),

		PredictiveRUL: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "plantsim_predictive_rul_hours",
				Help: "Latest remaining useful life estimate in hours",
			},
		),

		SpotPrice: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "plantsim_energy_spot_price",
				Help: "Latest simulated electricity spot price (TL/kWh)",
			},
		),

		OptimizationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantsim_optimizations_total",
				Help: "Total number of optimization runs per engine",
			},
			[]string{"engine"},
		),

		CopilotQueriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantsim_copilot_queries_total",
				Help: "Total number of copilot queries by answer source type",
			},
			[]string{"source_type"},
		),

		CopilotQueryDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "plantsim_copilot_query_duration_seconds",
				Help:    "Duration of copilot queries including simulated retrieval",
				Buckets: []float64{.01, .1, .5, 1, 2, 5},
			},
		),

		NotificationsSentTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantsim_notifications_sent_total",
				Help: "Total number of notifications sent",
			},
			[]string{"channel", "type"},
		),

		NotificationFailuresTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantsim_notification_failures_total",
				Help: "Total number of failed notifications",
			},
			[]string{"channel", "type"},
		),

		NotificationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plantsim_notification_duration_seconds",
				Help:    "Duration of notification delivery",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"channel", "type"},
		),

		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantsim_http_requests_total",
				Help: "Total number of HTTP requests received",
			},
			[]string{"method", "path", "status"},
		),

		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plantsim_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		ApplicationUptime: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "plantsim_application_uptime_seconds",
				Help: "Application uptime in seconds",
			},
		),

		ComponentHealth: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "plantsim_component_health",
				Help: "Health status of application components (1=healthy, 0=unhealthy)",
			},
			[]string{"component"},
		),

		MemoryUsage: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "plantsim_memory_usage_bytes",
				Help: "Current memory usage in bytes",
			},
		),

		GoroutineCount: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "plantsim_goroutines",
				Help: "Number of running goroutines",
			},
		),
	}
}

// RecordStreamTick records one tick of a simulation stream
func (m *PrometheusMetrics) RecordStreamTick(stream string, duration time.Duration) {
	m.StreamTicksTotal.WithLabelValues(stream).Inc()
	m.StreamTickDuration.WithLabelValues(stream).Observe(duration.Seconds())
}

// SetStreamPaused flags a stream as paused or running
func (m *PrometheusMetrics) SetStreamPaused(stream string, paused bool) {
	m.StreamsPaused.WithLabelValues(stream).Set(boolValue(paused))
}

// RecordAnomalySample records the score of a signal sample
func (m *PrometheusMetrics) RecordAnomalySample(noise string, score float64, anomalous bool) {
	m.AnomalyScore.Set(score)
	if anomalous {
		m.AnomaliesDetectedTotal.WithLabelValues(noise).Inc()
	}
}

// UpdateLine updates production line gauges
func (m *PrometheusMetrics) UpdateLine(oee float64, produced int, buffers map[string]int) {
	m.LineOEE.Set(oee)
	m.LineProducedTotal.Set(float64(produced))
	for station, buffer := range buffers {
		m.StationBuffer.WithLabelValues(station).Set(float64(buffer))
	}
}

// UpdatePredictive updates machine health gauges
func (m *PrometheusMetrics) UpdatePredictive(score float64, rul int) {
	m.PredictiveAnomalyScore.Set(score)
	m.PredictiveRUL.Set(float64(rul))
}

// UpdateSpotPrice updates the spot price gauge
func (m *PrometheusMetrics) UpdateSpotPrice(price float64) {
	m.SpotPrice.Set(price)
}

// RecordOptimization records an optimization run of an engine
func (m *PrometheusMetrics) RecordOptimization(engine string) {
	m.OptimizationsTotal.WithLabelValues(engine).Inc()
}

// RecordCopilotQuery records an answered copilot query
func (m *PrometheusMetrics) RecordCopilotQuery(sourceType string, duration time.Duration) {
	m.CopilotQueriesTotal.WithLabelValues(sourceType).Inc()
	m.CopilotQueryDuration.Observe(duration.Seconds())
}

// RecordNotificationSent records a sent notification
func (m *PrometheusMetrics) RecordNotificationSent(channel, notificationType string, duration time.Duration) {
	m.NotificationsSentTotal.WithLabelValues(channel, notificationType).Inc()
	m.NotificationDuration.WithLabelValues(channel, notificationType).Observe(duration.Seconds())
}

// RecordNotificationFailure records a failed notification
func (m *PrometheusMetrics) RecordNotificationFailure(channel, notificationType string) {
	m.NotificationFailuresTotal.WithLabelValues(channel, notificationType).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *PrometheusMetrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// UpdateApplicationUptime updates the application uptime metric
func (m *PrometheusMetrics) UpdateApplicationUptime(startTime time.Time) {
	m.ApplicationUptime.Set(time.Since(startTime).Seconds())
}

// UpdateComponentHealth updates the health status of a component
func (m *PrometheusMetrics) UpdateComponentHealth(component string, healthy bool) {
	m.ComponentHealth.WithLabelValues(component).Set(boolValue(healthy))
}

// UpdateMemoryUsage updates the memory usage metric
func (m *PrometheusMetrics) UpdateMemoryUsage(bytes uint64) {
	m.MemoryUsage.Set(float64(bytes))
}

// UpdateGoroutineCount updates the goroutine count metric
func (m *PrometheusMetrics) UpdateGoroutineCount(count int) {
	m.GoroutineCount.Set(float64(count))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
