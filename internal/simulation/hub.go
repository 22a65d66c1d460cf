// Package simulation runs the timed plant streams (signal sampling, line
// ticks, speed ramps, live machine health, spot prices and the simulated
// clock) and serves consistent snapshots of their state.
package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/acd-industrial/plantsim/internal/anomaly"
	"github.com/acd-industrial/plantsim/internal/config"
	"github.com/acd-industrial/plantsim/internal/efficiency"
	"github.com/acd-industrial/plantsim/internal/metrics"
	"github.com/acd-industrial/plantsim/internal/models"
	"github.com/acd-industrial/plantsim/internal/predictive"
	"github.com/acd-industrial/plantsim/pkg/utils"
)

// Stream names, also used as metric labels.
const (
	StreamAnomaly    = "anomaly"
	StreamEfficiency = "efficiency"
	StreamRamp       = "ramp"
	StreamPredictive = "predictive"
	StreamSpot       = "spot"
	StreamClock      = "clock"
	StreamSystem     = "system"
)

// InitialSpotPrice is shown until the first spot tick.
const InitialSpotPrice = 4.2

// AlertSink receives alerts raised by the streams.
type AlertSink interface {
	Notify(alert *models.Alert) bool
}

// Simulator defines the simulation hub interface
type Simulator interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool

	Anomaly() AnomalySnapshot
	SetNoise(noise anomaly.NoiseType)
	ResetAnomaly()

	Line() LineSnapshot
	SetStationSpeed(stationID string, speed int) (LineSnapshot, error)
	OptimizeLine() error
	PauseLine()
	ResumeLine()
	ResetLine()

	Predictive() PredictiveSnapshot
	SetReading(r predictive.Reading) (*predictive.Result, error)

	Spot() SpotSnapshot

	GetStats() *HubStats
	GetHealth() *HealthStatus
}

// Hub implements the Simulator interface
type Hub struct {
	cfg     config.SimulationConfig
	logger  *logrus.Entry
	metrics *metrics.Manager
	alerts  AlertSink
	now     func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	runErr  error

	anomaly    *anomalyStream
	line       *lineStream
	predictive *predictiveStream
	energy     *energyStream

	statsMu sync.Mutex
	stats   *HubStats
}

// HubStats provides simulation statistics
type HubStats struct {
	StartTime  time.Time            `json:"start_time"`
	Uptime     time.Duration        `json:"uptime"`
	IsRunning  bool                 `json:"is_running"`
	Ticks      map[string]uint64    `json:"ticks"`
	AlertsSent uint64               `json:"alerts_sent"`
	LastTick   map[string]time.Time `json:"last_tick"`
}

// HealthStatus provides health information
type HealthStatus struct {
	Healthy bool     `json:"healthy"`
	Issues  []string `json:"issues,omitempty"`
}

// NewHub creates a hub. metricsManager and alerts may be nil.
func NewHub(cfg config.SimulationConfig, metricsManager *metrics.Manager, alerts AlertSink) *Hub {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	newRand := func(stream uint64) *rand.Rand {
		return rand.New(rand.NewPCG(seed, stream))
	}

	h := &Hub{
		cfg:     cfg,
		logger:  utils.ComponentLogger("simulation"),
		metrics: metricsManager,
		alerts:  alerts,
		now:     time.Now,
		stats: &HubStats{
			Ticks:    make(map[string]uint64),
			LastTick: make(map[string]time.Time),
		},
	}

	noise, err := anomaly.ParseNoiseType(cfg.InitialNoise)
	if err != nil {
		noise = anomaly.NoiseNone
	}

	anomalyRand := newRand(1)
	h.anomaly = &anomalyStream{
		rng:      anomalyRand,
		detector: anomaly.NewDetector(anomalyRand),
		tracker:  anomaly.NewTracker(cfg.AlertDebounce, cfg.AlertGap),
		signals:  NewWindow[anomaly.Signal](cfg.SignalHistory),
		cluster:  NewWindow[anomaly.ClusterPoint](cfg.ClusterHistory),
	}
	h.resetAnomalyLocked()
	h.anomaly.noise = noise

	h.line = &lineStream{state: efficiency.NewLine()}

	h.predictive = &predictiveStream{
		reading: predictive.Reading{Vibration: 0.5, Temperature: 62, RPM: 3000},
		history: NewWindow[HistoryPoint](cfg.PredictiveHistory),
		status:  predictive.StatusNormal,
	}

	h.energy = &energyStream{
		rng:     newRand(2),
		price:   InitialSpotPrice,
		hour:    h.now().Hour(),
		simHour: cfg.StartHour,
	}

	return h
}

// Start launches one goroutine per stream
func (h *Hub) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return utils.NewAppError(utils.ErrCodeConflict, "Simulation already running")
	}
	for stream, interval := range h.intervals() {
		if interval <= 0 {
			return utils.NewAppError(utils.ErrCodeSimulation, "Invalid stream interval", fmt.Sprintf("%s: %s", stream, interval))
		}
	}

	h.logger.WithFields(logrus.Fields{
		"anomaly_interval":    h.cfg.AnomalyInterval,
		"efficiency_interval": h.cfg.EfficiencyInterval,
		"predictive_interval": h.cfg.PredictiveInterval,
	}).Info("Starting simulation hub")

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)

	h.every(g, gctx, StreamAnomaly, h.cfg.AnomalyInterval, h.tickAnomaly)
	h.every(g, gctx, StreamEfficiency, h.cfg.EfficiencyInterval, h.tickLine)
	h.every(g, gctx, StreamRamp, h.cfg.RampInterval, h.tickRamp)
	h.every(g, gctx, StreamPredictive, h.cfg.PredictiveInterval, h.tickPredictive)
	h.every(g, gctx, StreamSpot, h.cfg.SpotInterval, h.tickSpot)
	h.every(g, gctx, StreamClock, h.cfg.ClockInterval, h.tickClock)
	if h.metrics != nil {
		h.every(g, gctx, StreamSystem, h.cfg.SystemMetricsInterval, func(time.Time) {
			h.metrics.UpdateSystemMetrics()
		})
		h.metrics.GetPrometheusMetrics().UpdateComponentHealth("simulation", true)
	}

	done := make(chan struct{})
	h.cancel = cancel
	h.done = done
	h.running = true

	h.statsMu.Lock()
	h.stats.StartTime = h.now()
	h.statsMu.Unlock()

	go h.wait(g, cancel, done)

	return nil
}

// wait marks the hub stopped once every stream has returned, whether
// Stop or the parent context ended the run.
func (h *Hub) wait(g *errgroup.Group, cancel context.CancelFunc, done chan struct{}) {
	err := g.Wait()
	cancel()

	h.mu.Lock()
	if h.done == done {
		h.running = false
		h.runErr = err
		if h.metrics != nil {
			h.metrics.GetPrometheusMetrics().UpdateComponentHealth("simulation", false)
		}
	}
	h.mu.Unlock()

	h.logger.Info("Simulation hub stopped")
	close(done)
}

// Stop cancels every stream and waits for them to return
func (h *Hub) Stop() error {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.mu.Unlock()

	if done == nil {
		return nil
	}

	h.logger.Info("Stopping simulation hub")
	cancel()
	<-done

	h.mu.Lock()
	defer h.mu.Unlock()
	err := h.runErr
	if h.done == done {
		h.done = nil
		h.runErr = nil
	}
	return err
}

// IsRunning returns whether the streams are running
func (h *Hub) IsRunning() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

func (h *Hub) every(g *errgroup.Group, ctx context.Context, stream string, interval time.Duration, tick func(time.Time)) {
	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				start := time.Now()
				tick(h.now())
				h.recordTick(stream, start)
			}
		}
	})
}

func (h *Hub) recordTick(stream string, start time.Time) {
	h.statsMu.Lock()
	h.stats.Ticks[stream]++
	h.stats.LastTick[stream] = start
	h.statsMu.Unlock()

	if h.metrics != nil {
		h.metrics.GetPrometheusMetrics().RecordStreamTick(stream, time.Since(start))
	}
}

func (h *Hub) raise(alert *models.Alert) {
	if h.alerts == nil {
		return
	}
	if h.alerts.Notify(alert) {
		h.statsMu.Lock()
		h.stats.AlertsSent++
		h.statsMu.Unlock()
	}
}

// GetStats returns a snapshot of the hub statistics
func (h *Hub) GetStats() *HubStats {
	running := h.IsRunning()

	h.statsMu.Lock()
	defer h.statsMu.Unlock()

	out := &HubStats{
		StartTime:  h.stats.StartTime,
		IsRunning:  running,
		AlertsSent: h.stats.AlertsSent,
		Ticks:      make(map[string]uint64, len(h.stats.Ticks)),
		LastTick:   make(map[string]time.Time, len(h.stats.LastTick)),
	}
	if running {
		out.Uptime = h.now().Sub(h.stats.StartTime)
	}
	for k, v := range h.stats.Ticks {
		out.Ticks[k] = v
	}
	for k, v := range h.stats.LastTick {
		out.LastTick[k] = v
	}
	return out
}

func (h *Hub) intervals() map[string]time.Duration {
	out := map[string]time.Duration{
		StreamAnomaly:    h.cfg.AnomalyInterval,
		StreamEfficiency: h.cfg.EfficiencyInterval,
		StreamRamp:       h.cfg.RampInterval,
		StreamPredictive: h.cfg.PredictiveInterval,
		StreamSpot:       h.cfg.SpotInterval,
		StreamClock:      h.cfg.ClockInterval,
	}
	if h.metrics != nil {
		out[StreamSystem] = h.cfg.SystemMetricsInterval
	}
	return out
}

// GetHealth reports streams that stopped ticking
func (h *Hub) GetHealth() *HealthStatus {
	if !h.IsRunning() {
		return &HealthStatus{Healthy: false, Issues: []string{"simulation not running"}}
	}

	intervals := h.intervals()
	delete(intervals, StreamSystem)

	now := h.now()
	h.statsMu.Lock()
	defer h.statsMu.Unlock()

	health := &HealthStatus{Healthy: true}
	for stream, interval := range intervals {
		last, ok := h.stats.LastTick[stream]
		if !ok {
			last = h.stats.StartTime
		}
		// a stream is stale after missing several ticks
		if now.Sub(last) > 5*interval+time.Second {
			health.Healthy = false
			health.Issues = append(health.Issues, fmt.Sprintf("%s stream stalled", stream))
		}
	}
	return health
}
