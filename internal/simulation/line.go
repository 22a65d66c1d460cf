package simulation

import (
	"time"

	"github.com/acd-industrial/plantsim/internal/efficiency"
	"github.com/acd-industrial/plantsim/pkg/utils"
)

func (h *Hub) tickLine(time.Time) {
	s := h.line
	s.mu.Lock()
	if s.paused {
		s.mu.Unlock()
		return
	}
	s.state = efficiency.Tick(s.state)
	state := s.state
	s.mu.Unlock()

	if h.metrics != nil {
		buffers := make(map[string]int, len(state.Stations))
		for _, st := range state.Stations {
			buffers[st.ID] = st.BufferIn
		}
		h.metrics.GetPrometheusMetrics().UpdateLine(float64(efficiency.CalculateOEE(state.Stations)), state.TotalProduced, buffers)
	}
}

// tickRamp drives an auto-optimization: after the calculation delay the
// speed targets are set, speeds move towards them every tick and the
// buffers are drained once the drain delay has passed.
func (h *Hub) tickRamp(now time.Time) {
	s := h.line
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.optimizing && s.targets == nil && !now.Before(s.targetsAt) {
		s.targets = make(map[string]int, len(s.state.Stations))
		for _, st := range s.state.Stations {
			s.targets[st.ID] = efficiency.BalancedSpeed
		}
		s.drainAt = now.Add(h.cfg.DrainDelay)
	}

	if s.targets != nil {
		next, changed := efficiency.Ramp(s.state, s.targets)
		s.state = next
		if !changed && !s.optimizing {
			s.targets = nil
		}
	}

	if s.optimizing && s.targets != nil && !now.Before(s.drainAt) {
		s.state = efficiency.DrainBuffers(s.state)
		s.optimizing = false
		h.logger.Info("Line optimization finished")
	}
}

// Line returns a snapshot of the production line
func (h *Hub) Line() LineSnapshot {
	s := h.line
	s.mu.Lock()
	defer s.mu.Unlock()
	return h.lineSnapshotLocked()
}

func (h *Hub) lineSnapshotLocked() LineSnapshot {
	s := h.line
	return LineSnapshot{
		Report:     efficiency.Analyze(s.state),
		Paused:     s.paused,
		Optimizing: s.optimizing,
	}
}

// SetStationSpeed sets a station speed directly and cancels any ramp
// towards a target for it
func (h *Hub) SetStationSpeed(stationID string, speed int) (LineSnapshot, error) {
	s := h.line
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := efficiency.UpdateStationSpeed(s.state, stationID, speed)
	if err != nil {
		return LineSnapshot{}, err
	}
	s.state = next
	delete(s.targets, stationID)
	return h.lineSnapshotLocked(), nil
}

// OptimizeLine starts an auto-optimization
func (h *Hub) OptimizeLine() error {
	s := h.line
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.optimizing {
		return utils.NewAppError(utils.ErrCodeConflict, "Line optimization already in progress")
	}
	s.optimizing = true
	s.targets = nil
	s.targetsAt = h.now().Add(h.cfg.OptimizeDelay)

	if h.metrics != nil {
		h.metrics.GetPrometheusMetrics().RecordOptimization(StreamEfficiency)
	}
	h.logger.Info("Line optimization started")
	return nil
}

// PauseLine stops line ticks; ramps continue
func (h *Hub) PauseLine() { h.setPaused(true) }

// ResumeLine restarts line ticks
func (h *Hub) ResumeLine() { h.setPaused(false) }

func (h *Hub) setPaused(paused bool) {
	s := h.line
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()

	if h.metrics != nil {
		h.metrics.GetPrometheusMetrics().SetStreamPaused(StreamEfficiency, paused)
	}
}

// ResetLine restores the initial line and cancels any optimization
func (h *Hub) ResetLine() {
	s := h.line
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = efficiency.NewLine()
	s.optimizing = false
	s.targets = nil
}
