package simulation

import (
	"fmt"
	"time"

	"github.com/acd-industrial/plantsim/internal/models"
	"github.com/acd-industrial/plantsim/internal/predictive"
)

func (h *Hub) tickPredictive(now time.Time) {
	s := h.predictive
	s.mu.Lock()
	res := predictive.Evaluate(s.reading)
	s.history.Push(HistoryPoint{At: now, Label: now.Format("15:04:05"), Result: res})
	prev := s.status
	s.status = res.Status
	s.mu.Unlock()

	if h.metrics != nil {
		h.metrics.GetPrometheusMetrics().UpdatePredictive(res.AnomalyScore, res.RUL)
	}

	// alert on entering critical only
	if res.Status == predictive.StatusCritical && prev != predictive.StatusCritical {
		score := min(res.AnomalyScore/predictive.MaxScore, 1)
		a := models.NewAlert(StreamPredictive, models.SeverityCritical, score, "Makine sağlığı kritik", res.Message)
		a.Data = map[string]interface{}{
			"rul":        res.RUL,
			"root_cause": res.RootCause,
			"score":      res.AnomalyScore,
		}
		h.raise(a)
	}
}

// Predictive returns a snapshot of the live machine health
func (h *Hub) Predictive() PredictiveSnapshot {
	s := h.predictive
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := PredictiveSnapshot{
		Reading: s.reading,
		History: s.history.Items(),
	}
	if last, ok := s.history.Last(); ok {
		snap.Latest = last.Result
	}
	return snap
}

// SetReading moves the live sensor sliders and evaluates them once
func (h *Hub) SetReading(r predictive.Reading) (*predictive.Result, error) {
	res, err := predictive.Simulate(r)
	if err != nil {
		return nil, err
	}

	s := h.predictive
	s.mu.Lock()
	s.reading = r
	s.mu.Unlock()

	h.logger.WithField("reading", fmt.Sprintf("%+v", r)).Debug("Predictive reading updated")
	return res, nil
}
