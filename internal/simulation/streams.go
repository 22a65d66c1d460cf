package simulation

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/acd-industrial/plantsim/internal/anomaly"
	"github.com/acd-industrial/plantsim/internal/efficiency"
	"github.com/acd-industrial/plantsim/internal/predictive"
)

const startupNote = "Sistem başlatıldı. Sinyal izleme aktif."

type anomalyStream struct {
	mu       sync.Mutex
	rng      *rand.Rand
	detector *anomaly.Detector
	tracker  *anomaly.Tracker
	noise    anomaly.NoiseType
	signals  *Window[anomaly.Signal]
	cluster  *Window[anomaly.ClusterPoint]
	last     *anomaly.Detection
}

type lineStream struct {
	mu         sync.Mutex
	state      efficiency.LineState
	paused     bool
	optimizing bool
	targets    map[string]int
	targetsAt  time.Time
	drainAt    time.Time
}

type predictiveStream struct {
	mu      sync.Mutex
	reading predictive.Reading
	history *Window[HistoryPoint]
	status  predictive.Status
}

type energyStream struct {
	mu      sync.Mutex
	rng     *rand.Rand
	price   float64
	hour    int
	simHour int
	at      time.Time
}

// HistoryPoint is one live predictive evaluation.
type HistoryPoint struct {
	At     time.Time          `json:"at"`
	Label  string             `json:"label"`
	Result *predictive.Result `json:"result"`
}

// AnomalySnapshot is a copy of the anomaly stream state.
type AnomalySnapshot struct {
	Noise      anomaly.NoiseType      `json:"noise"`
	Status     string                 `json:"status"`
	Message    string                 `json:"message"`
	Confidence int                    `json:"confidence"`
	Latest     *anomaly.Detection     `json:"latest,omitempty"`
	Signals    []anomaly.Signal       `json:"signals"`
	Cluster    []anomaly.ClusterPoint `json:"cluster"`
	Log        []anomaly.LogEntry     `json:"log"`
}

// LineSnapshot is a copy of the production line state with its analysis.
type LineSnapshot struct {
	efficiency.Report
	Paused     bool `json:"paused"`
	Optimizing bool `json:"optimizing"`
}

// PredictiveSnapshot is a copy of the live machine health state.
type PredictiveSnapshot struct {
	Reading predictive.Reading `json:"reading"`
	Latest  *predictive.Result `json:"latest,omitempty"`
	History []HistoryPoint     `json:"history"`
}

// SpotSnapshot is the latest spot price and the simulated clock.
type SpotSnapshot struct {
	Price     float64   `json:"price"`
	Hour      int       `json:"hour"`
	SimHour   int       `json:"sim_hour"`
	SimClock  string    `json:"sim_clock"`
	UpdatedAt time.Time `json:"updated_at"`
}
