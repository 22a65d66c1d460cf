package efficiency

import (
	"fmt"
	"math"
	"strings"

	"github.com/acd-industrial/plantsim/pkg/utils"
)

// BufferStatus is a colour band for a buffer's fill level.
type BufferStatus string

const (
	BufferLow      BufferStatus = "low"
	BufferMedium   BufferStatus = "medium"
	BufferCritical BufferStatus = "critical"
)

// BufferPercentage is the fill level of the station's input buffer.
func BufferPercentage(st Station) float64 {
	if st.BufferCapacity <= 0 {
		return 0
	}
	return float64(st.BufferIn) / float64(st.BufferCapacity) * 100
}

// IsBufferCritical reports a buffer above 80 %.
func IsBufferCritical(st Station) bool {
	return BufferPercentage(st) > 80
}

// StatusOf classifies the buffer fill level.
func StatusOf(st Station) BufferStatus {
	p := BufferPercentage(st)
	switch {
	case p < 50:
		return BufferLow
	case p < 80:
		return BufferMedium
	default:
		return BufferCritical
	}
}

// IsStarved reports whether a downstream station has nothing to work on.
// The first station has unlimited supply and is never starved.
func IsStarved(st Station, index int) bool {
	return index > 0 && st.BufferIn == 0
}

// FindBottleneck returns the slowest station; the first one wins ties.
func FindBottleneck(stations []Station) (Station, bool) {
	if len(stations) == 0 {
		return Station{}, false
	}
	best := stations[0]
	for _, st := range stations[1:] {
		if st.Speed < best.Speed {
			best = st
		}
	}
	return best, true
}

// CalculateOEE approximates OEE as availability × performance × quality.
// Performance is mean speed; availability is scored per station from its
// buffer health.
func CalculateOEE(stations []Station) int {
	if len(stations) == 0 {
		return 0
	}

	speedSum := 0
	availability := 0.0
	for i, st := range stations {
		speedSum += st.Speed
		p := BufferPercentage(st)
		switch {
		case i == 0:
			availability += 1
		case p > 10 && p < 80:
			availability += 1
		case p <= 10:
			availability += 0.5
		default:
			availability += 0.7
		}
	}
	n := float64(len(stations))
	performance := float64(speedSum) / n / 100

	return int(math.Round(availability / n * performance * quality * 100))
}

// CycleTime converts a speed percentage to seconds per part, 10 s at
// full speed. A stopped station reports 999.
func CycleTime(speed int) float64 {
	if speed <= 0 {
		return 999
	}
	return utils.Round(1000/float64(speed), 1)
}

// Recommendation is the advisory text for the current line state.
func Recommendation(s LineState) string {
	bottleneck, ok := FindBottleneck(s.Stations)
	if !ok {
		return "Üretim hattı dengeli çalışıyor. Mevcut ayarlar optimal."
	}

	var congested, starved []string
	for i := 1; i < len(s.Stations); i++ {
		st := s.Stations[i]
		if BufferPercentage(st) > 70 {
			congested = append(congested, st.Name)
		}
		if IsStarved(st, i) {
			starved = append(starved, st.Name)
		}
	}

	if len(congested) > 0 {
		if up := s.index(bottleneck.ID) - 1; up >= 0 {
			upstream := s.Stations[up]
			diff := upstream.Speed - bottleneck.Speed
			return fmt.Sprintf("Analiz: %s istasyonu %%%d kapasiteyle darboğaz yaratıyor. "+
				"Öneri: %s hızını %%%d düşürerek ara stok maliyetini azaltın.",
				bottleneck.Name, bottleneck.Speed, upstream.Name, int(math.Round(float64(diff)/2)))
		}
	}

	if len(starved) > 0 {
		return fmt.Sprintf("Analiz: %s istasyonları malzeme bekliyor. "+
			"Öneri: Önceki istasyonların hızını artırın veya darboğazı giderin.", strings.Join(starved, ", "))
	}

	sum := 0
	for _, st := range s.Stations {
		sum += st.Speed
	}
	avg := float64(sum) / float64(len(s.Stations))
	if avg < 70 {
		return fmt.Sprintf("Analiz: Ortalama hat hızı düşük (%%%d). "+
			"Öneri: Tüm istasyonları %%80 hıza dengelemek için \"Otomatik Optimize Et\" butonunu kullanın.",
			int(math.Round(avg)))
	}

	return fmt.Sprintf("Analiz: Hat dengeli ancak %s en yavaş istasyon. "+
		"Öneri: Bu istasyonun hızını artırarak toplam verimi yükseltebilirsiniz.", bottleneck.Name)
}

// Report bundles the derived figures of a line snapshot.
type Report struct {
	State          LineState       `json:"state"`
	OEE            int             `json:"oee"`
	Bottleneck     string          `json:"bottleneck"`
	ShiftTime      string          `json:"shift_time"`
	Recommendation string          `json:"recommendation"`
	Stations       []StationReport `json:"stations"`
}

// StationReport is the per-station view of a report.
type StationReport struct {
	ID               string       `json:"id"`
	BufferPercentage float64      `json:"buffer_percentage"`
	BufferStatus     BufferStatus `json:"buffer_status"`
	Critical         bool         `json:"critical"`
	Starved          bool         `json:"starved"`
	CycleTime        float64      `json:"cycle_time"`
}

// Analyze builds a report for the state.
func Analyze(s LineState) Report {
	r := Report{
		State:          s.Clone(),
		OEE:            CalculateOEE(s.Stations),
		ShiftTime:      FormatShiftTime(s.TickCount),
		Recommendation: Recommendation(s),
	}
	if b, ok := FindBottleneck(s.Stations); ok {
		r.Bottleneck = b.ID
	}
	for i, st := range s.Stations {
		r.Stations = append(r.Stations, StationReport{
			ID:               st.ID,
			BufferPercentage: BufferPercentage(st),
			BufferStatus:     StatusOf(st),
			Critical:         IsBufferCritical(st),
			Starved:          IsStarved(st, i),
			CycleTime:        CycleTime(st.Speed),
		})
	}
	return r
}
