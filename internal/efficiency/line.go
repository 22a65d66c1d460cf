// Package efficiency simulates a three-stage production line as a chain
// of bounded queues and derives OEE and bottleneck advice from it.
package efficiency

import (
	"fmt"

	"github.com/acd-industrial/plantsim/pkg/utils"
)

const (
	DefaultSpeed          = 70
	DefaultBufferCapacity = 50
	BalancedSpeed         = 80
	MaxSpeed              = 100

	// RampStep is the largest speed change applied per ramp step.
	RampStep = 5

	// fixed quality factor of the simulated line
	quality = 0.98
)

// Station is one stage of the line.
type Station struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Speed          int    `json:"speed"`
	BufferIn       int    `json:"buffer_in"`
	BufferCapacity int    `json:"buffer_capacity"`
	Processed      int    `json:"processed"`
}

// LineState is an immutable snapshot of the line. Operations return new
// states and leave their input untouched.
type LineState struct {
	Stations      []Station `json:"stations"`
	TotalProduced int       `json:"total_produced"`
	TickCount     int       `json:"tick_count"`
}

// NewLine returns the cutting → assembly → packing line at default speed.
func NewLine() LineState {
	mk := func(id, name string) Station {
		return Station{ID: id, Name: name, Speed: DefaultSpeed, BufferCapacity: DefaultBufferCapacity}
	}
	return LineState{
		Stations: []Station{
			mk("cutting", "Kesim"),
			mk("assembly", "Montaj"),
			mk("packing", "Paketleme"),
		},
	}
}

// Clone returns a deep copy.
func (s LineState) Clone() LineState {
	out := s
	out.Stations = append([]Station(nil), s.Stations...)
	return out
}

// Tick advances the line by one step. Stations are visited from last to
// first so that a station pulls only what was buffered before this tick.
func Tick(s LineState) LineState {
	next := s.Clone()
	st := next.Stations

	for i := len(st) - 1; i >= 0; i-- {
		capacity := st[i].Speed / 10

		items := capacity
		if i > 0 {
			items = min(capacity, st[i].BufferIn)
			st[i].BufferIn -= items
		}
		st[i].Processed += items

		if i < len(st)-1 {
			st[i+1].BufferIn = min(st[i+1].BufferIn+items, st[i+1].BufferCapacity)
		}
	}

	if n := len(st); n > 0 {
		next.TotalProduced += st[n-1].Speed / 10
	}
	next.TickCount++
	return next
}

func (s LineState) index(stationID string) int {
	for i, st := range s.Stations {
		if st.ID == stationID {
			return i
		}
	}
	return -1
}

// UpdateStationSpeed sets one station's speed, clamped to 0..100.
func UpdateStationSpeed(s LineState, stationID string, speed int) (LineState, error) {
	i := s.index(stationID)
	if i < 0 {
		return s, utils.NewAppError(utils.ErrCodeNotFound, "unknown station", stationID)
	}
	next := s.Clone()
	next.Stations[i].Speed = clampSpeed(speed)
	return next, nil
}

// AutoOptimize balances every station at BalancedSpeed and drains buffers.
func AutoOptimize(s LineState) LineState {
	next := s.Clone()
	for i := range next.Stations {
		next.Stations[i].Speed = BalancedSpeed
		next.Stations[i].BufferIn = 0
	}
	return next
}

// Ramp moves each station with a target at most RampStep towards it.
// It reports whether any speed changed.
func Ramp(s LineState, targets map[string]int) (LineState, bool) {
	next := s.Clone()
	changed := false
	for i, st := range next.Stations {
		target, ok := targets[st.ID]
		if !ok || st.Speed == target {
			continue
		}
		diff := target - st.Speed
		step := min(abs(diff), RampStep)
		if diff < 0 {
			step = -step
		}
		next.Stations[i].Speed += step
		changed = true
	}
	return next, changed
}

// DrainBuffers empties every input buffer.
func DrainBuffers(s LineState) LineState {
	next := s.Clone()
	for i := range next.Stations {
		next.Stations[i].BufferIn = 0
	}
	return next
}

func clampSpeed(v int) int {
	return max(0, min(MaxSpeed, v))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// FormatShiftTime renders the tick count as HH:MM:SS of shift time, one
// tick being half a second.
func FormatShiftTime(tickCount int) string {
	total := tickCount / 2
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
