package simulation

import (
	"time"

	"github.com/acd-industrial/plantsim/internal/anomaly"
	"github.com/acd-industrial/plantsim/internal/models"
)

// InitialClusterSize is the number of normal points seeding the scatter view.
const InitialClusterSize = 30

func (h *Hub) tickAnomaly(now time.Time) {
	s := h.anomaly
	s.mu.Lock()
	noise := s.noise
	det := s.detector.Detect(noise)
	s.signals.Push(det.Signal)
	s.cluster.Push(det.Cluster)
	s.last = &det
	alert := s.tracker.Observe(now, noise, det.Signal)
	s.mu.Unlock()

	if h.metrics != nil {
		h.metrics.GetPrometheusMetrics().RecordAnomalySample(string(noise), det.Signal.AnomalyScore, det.Signal.IsAnomaly)
	}

	if alert {
		a := models.NewAlert(StreamAnomaly, models.SeverityForScore(det.Signal.AnomalyScore),
			det.Signal.AnomalyScore, "Sinyal anomalisi", det.Message)
		a.Data = map[string]interface{}{
			"noise": noise,
			"value": det.Signal.Value,
			"time":  det.Signal.Time,
		}
		h.raise(a)
	}
}

// Anomaly returns a snapshot of the anomaly stream
func (h *Hub) Anomaly() AnomalySnapshot {
	s := h.anomaly
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := AnomalySnapshot{
		Noise:      s.noise,
		Status:     "normal",
		Message:    s.tracker.Message(),
		Confidence: 99,
		Signals:    s.signals.Items(),
		Cluster:    s.cluster.Items(),
		Log:        s.tracker.Log(),
	}
	if s.tracker.Active() {
		snap.Status = "anomaly"
	}
	if s.last != nil {
		last := *s.last
		snap.Latest = &last
		snap.Confidence = last.Confidence
	}
	return snap
}

// SetNoise switches the injected fault
func (h *Hub) SetNoise(noise anomaly.NoiseType) {
	s := h.anomaly
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.noise == noise {
		return
	}
	s.noise = noise
	s.tracker.NoiseChanged(h.now(), noise)
	h.logger.WithField("noise", noise).Info("Signal noise changed")
}

// ResetAnomaly clears the detector baseline, history and log
func (h *Hub) ResetAnomaly() {
	s := h.anomaly
	s.mu.Lock()
	defer s.mu.Unlock()
	h.resetAnomalyLocked()
}

func (h *Hub) resetAnomalyLocked() {
	s := h.anomaly
	s.detector.Reset()
	s.tracker.Reset()
	s.noise = anomaly.NoiseNone
	s.signals.Reset()
	s.cluster.Reset()
	for _, p := range s.detector.InitialCluster(InitialClusterSize) {
		s.cluster.Push(p)
	}
	s.last = nil
	s.tracker.Note(h.now(), startupNote)
}
