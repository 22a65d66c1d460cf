// Package anomaly generates a synthetic vibration signal that operators
// can sabotage, and flags samples with range, flatline and Z-score rules
// against a rolling baseline.
package anomaly

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/acd-industrial/plantsim/pkg/utils"
)

// NoiseType selects the fault injected into the signal.
type NoiseType string

const (
	NoiseNone   NoiseType = "none"
	NoiseRandom NoiseType = "random"
	NoiseSpike  NoiseType = "spike"
	NoiseFlat   NoiseType = "flat"
)

// ParseNoiseType validates a noise type name.
func ParseNoiseType(s string) (NoiseType, error) {
	switch n := NoiseType(s); n {
	case NoiseNone, NoiseRandom, NoiseSpike, NoiseFlat:
		return n, nil
	}
	return "", utils.NewAppError(utils.ErrCodeValidation, "unknown noise type", s)
}

const (
	Amplitude         = 10.0
	RangeThreshold    = 11.0
	FlatlineThreshold = 0.1
	ZScoreThreshold   = 2.5
	WindowSize        = 50
	TimeStep          = 0.1
)

// Signal is one sample of the monitored signal.
type Signal struct {
	Time         float64 `json:"time"`
	Value        float64 `json:"value"`
	IsAnomaly    bool    `json:"is_anomaly"`
	AnomalyScore float64 `json:"anomaly_score"`
}

// ClusterPoint is a 2-D embedding of a sample for the scatter view.
type ClusterPoint struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	IsAnomaly bool    `json:"is_anomaly"`
}

// Detector holds the simulated clock and the baseline window. It is not
// safe for concurrent use.
type Detector struct {
	rng    *rand.Rand
	time   float64
	window []float64
}

// NewDetector returns a detector drawing noise from rng. A nil rng uses
// a time-seeded generator.
func NewDetector(rng *rand.Rand) *Detector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Detector{rng: rng, window: make([]float64, 0, WindowSize+1)}
}

// Reset rewinds the clock and forgets the baseline.
func (d *Detector) Reset() {
	d.time = 0
	d.window = d.window[:0]
}

// Baseline returns a copy of the current window.
func (d *Detector) Baseline() []float64 {
	return append([]float64(nil), d.window...)
}

// Next produces and classifies the next sample.
func (d *Detector) Next(noise NoiseType) Signal {
	d.time += TimeStep
	value := math.Sin(d.time) * Amplitude

	switch noise {
	case NoiseRandom:
		value += (d.rng.Float64() - 0.5) * 8
	case NoiseSpike:
		value += 15 + d.rng.Float64()*10
	case NoiseFlat:
		value = 0
	default:
		value += (d.rng.Float64() - 0.5) * 0.3
	}

	sig := Classify(value, noise, d.window)
	sig.Time = d.time

	// anomalies stay out of the baseline so sabotage is never learned
	if !sig.IsAnomaly {
		d.window = append(d.window, value)
		if len(d.window) > WindowSize {
			d.window = d.window[1:]
		}
	}
	return sig
}

// Classify scores value against the given baseline.
func Classify(value float64, noise NoiseType, baseline []float64) Signal {
	m := Mean(baseline)
	sd := StdDev(baseline, m)
	z := 0.0
	if sd != 0 {
		z = math.Abs((value - m) / sd)
	}

	outside := math.Abs(value) > RangeThreshold
	flat := noise == NoiseFlat && math.Abs(value) < FlatlineThreshold
	highZ := z > ZScoreThreshold

	var score float64
	switch {
	case outside:
		score = math.Min(1, (math.Abs(value)-RangeThreshold)/10)
	case flat:
		score = 0.98
	case highZ:
		score = math.Min(1, z/5)
	default:
		score = math.Min(0.15, z/10)
	}

	return Signal{
		Value:        value,
		IsAnomaly:    outside || flat || (noise != NoiseNone && highZ),
		AnomalyScore: score,
	}
}

// Mean is the arithmetic mean, 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev is the population standard deviation around mean. It returns 1
// instead of 0 so callers can divide by it.
func StdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 1
	}
	sq := 0.0
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	sd := math.Sqrt(sq / float64(len(values)))
	if sd == 0 {
		return 1
	}
	return sd
}

// Cluster places a sample in the scatter view: anomalies land on a ring
// of radius 3..5, normal samples near the origin.
func (d *Detector) Cluster(s Signal) ClusterPoint {
	if s.IsAnomaly {
		angle := d.rng.Float64() * 2 * math.Pi
		dist := 3 + d.rng.Float64()*2
		return ClusterPoint{X: math.Cos(angle) * dist, Y: math.Sin(angle) * dist, IsAnomaly: true}
	}
	return ClusterPoint{
		X: (d.rng.Float64() - 0.5) * 1.5,
		Y: (d.rng.Float64() - 0.5) * 1.5,
	}
}

// InitialCluster seeds the scatter view with count normal points.
func (d *Detector) InitialCluster(count int) []ClusterPoint {
	pts := make([]ClusterPoint, 0, count)
	for i := 0; i < count; i++ {
		pts = append(pts, ClusterPoint{
			X: (d.rng.Float64() - 0.5) * 2,
			Y: (d.rng.Float64() - 0.5) * 2,
		})
	}
	return pts
}

// Message is the operator text for a sample.
func Message(noise NoiseType, isAnomaly bool, score float64) string {
	if !isAnomaly {
		return "Sinyal Normal. Tüm parametreler beklenen aralıkta."
	}
	switch noise {
	case NoiseRandom:
		return fmt.Sprintf("Bilinmeyen Desen Tespit Edildi! (Tür: Rastgele Parazit - Skor: %.2f)", score)
	case NoiseSpike:
		return fmt.Sprintf("Bilinmeyen Desen Tespit Edildi! (Tür: Ani Sinyal Sıçraması - Skor: %.2f)", score)
	case NoiseFlat:
		return fmt.Sprintf("Bilinmeyen Desen Tespit Edildi! (Tür: Sinyal Kaybı/Donma - Skor: %.2f)", score)
	default:
		return fmt.Sprintf("Anomali Tespit Edildi! (Skor: %.2f)", score)
	}
}

// Confidence is the complement of the score as a whole percentage.
func Confidence(score float64) int {
	return int(math.Round((1 - score) * 100))
}

// Detection bundles a sample with its scatter point and operator text.
type Detection struct {
	Signal     Signal       `json:"signal"`
	Cluster    ClusterPoint `json:"cluster"`
	Status     string       `json:"status"`
	Message    string       `json:"message"`
	Confidence int          `json:"confidence"`
}

// Detect runs one full detection step.
func (d *Detector) Detect(noise NoiseType) Detection {
	s := d.Next(noise)
	status := "normal"
	if s.IsAnomaly {
		status = "anomaly"
	}
	return Detection{
		Signal:     s,
		Cluster:    d.Cluster(s),
		Status:     status,
		Message:    Message(noise, s.IsAnomaly, s.AnomalyScore),
		Confidence: Confidence(s.AnomalyScore),
	}
}
