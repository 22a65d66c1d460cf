package simulation

import (
	"time"

	"github.com/acd-industrial/plantsim/internal/energy"
	"github.com/acd-industrial/plantsim/pkg/utils"
)

func (h *Hub) tickSpot(now time.Time) {
	s := h.energy
	s.mu.Lock()
	s.hour = now.Hour()
	s.price = energy.SpotPrice(s.hour, s.rng)
	s.at = now
	price := s.price
	s.mu.Unlock()

	if h.metrics != nil {
		h.metrics.GetPrometheusMetrics().UpdateSpotPrice(price)
	}
}

func (h *Hub) tickClock(time.Time) {
	s := h.energy
	s.mu.Lock()
	s.simHour = (s.simHour + 1) % 24
	s.mu.Unlock()
}

// Spot returns the latest spot price and simulated hour
func (h *Hub) Spot() SpotSnapshot {
	s := h.energy
	s.mu.Lock()
	defer s.mu.Unlock()

	return SpotSnapshot{
		Price:     s.price,
		Hour:      s.hour,
		SimHour:   s.simHour,
		SimClock:  utils.FormatClock(float64(s.simHour)),
		UpdatedAt: s.at,
	}
}
