// Package predictive estimates machine health from a vibration,
// temperature and spindle speed reading. The model is a reconstruction
// error against physics-style expected values, not a trained network.
package predictive

import (
	"fmt"
	"math"

	"github.com/acd-industrial/plantsim/pkg/utils"
)

// Input bounds accepted by Simulate.
const (
	MinVibration   = 0.0
	MaxVibration   = 5.0
	MinTemperature = 20.0
	MaxTemperature = 150.0
	MinRPM         = 0.0
	MaxRPM         = 6000.0

	// BaseRUL is the remaining useful life of a healthy machine in hours.
	BaseRUL = 2000

	// MaxScore caps the anomaly score.
	MaxScore = 5.0

	vibrationWeight = 0.7
	tempWeight      = 0.3
)

// Root causes reported by Simulate.
const (
	CauseVibration   = "Vibration"
	CauseTemperature = "Temperature"
)

// Status is the operator-facing health band of a result.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Reading is one sensor sample.
type Reading struct {
	Vibration   float64 `json:"vibration"`
	Temperature float64 `json:"temperature"`
	RPM         float64 `json:"rpm"`
}

// Result is the outcome of one evaluation.
type Result struct {
	ExpectedVibration   float64 `json:"expected_vibration"`
	ActualVibration     float64 `json:"actual_vibration"`
	ExpectedTemperature float64 `json:"expected_temperature"`
	ActualTemperature   float64 `json:"actual_temperature"`
	ActualRPM           float64 `json:"actual_rpm"`
	AnomalyScore        float64 `json:"anomaly_score"`
	RUL                 int     `json:"rul"`
	RootCause           string  `json:"root_cause"`
	AIConfidence        float64 `json:"ai_confidence"`
	Status              Status  `json:"status"`
	Message             string  `json:"message"`
}

// Validate checks the reading against the accepted slider ranges.
func (r Reading) Validate() error {
	check := func(name string, v, lo, hi float64) error {
		if math.IsNaN(v) || v < lo || v > hi {
			return utils.NewAppError(utils.ErrCodeValidation,
				fmt.Sprintf("%s out of range", name),
				fmt.Sprintf("got %v, want %v..%v", v, lo, hi))
		}
		return nil
	}
	if err := check("vibration", r.Vibration, MinVibration, MaxVibration); err != nil {
		return err
	}
	if err := check("temperature", r.Temperature, MinTemperature, MaxTemperature); err != nil {
		return err
	}
	return check("rpm", r.RPM, MinRPM, MaxRPM)
}

// ExpectedVibration is the vibration of a healthy motor at rpm, in mm/s.
func ExpectedVibration(rpm float64) float64 {
	return (rpm / 3000) * 0.5
}

// ExpectedTemperature is the healthy temperature given speed and the
// heat added by the measured vibration.
func ExpectedTemperature(rpm, vibration float64) float64 {
	return 35 + (rpm/1000)*8 + vibration*5
}

// Simulate evaluates a reading. The reading is validated first.
func Simulate(r Reading) (*Result, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return Evaluate(r), nil
}

// Evaluate computes the result without range checks.
func Evaluate(r Reading) *Result {
	expectedVib := ExpectedVibration(r.RPM)
	expectedTemp := ExpectedTemperature(r.RPM, r.Vibration)

	vibErr := math.Abs(r.Vibration - expectedVib)
	tempErr := math.Abs(r.Temperature-expectedTemp) / 10

	score := math.Min(vibErr*vibrationWeight+tempErr*tempWeight, MaxScore)
	confidence := math.Max(0, 100-score*18)

	denom := math.Max(score, 0.01)
	cause := CauseTemperature
	if (vibErr*vibrationWeight)/denom > (tempErr*tempWeight)/denom {
		cause = CauseVibration
	}

	rounded := utils.Round(score, 2)
	status := Classify(score)

	return &Result{
		ExpectedVibration:   utils.Round(expectedVib, 3),
		ActualVibration:     utils.Round(r.Vibration, 3),
		ExpectedTemperature: utils.Round(expectedTemp, 1),
		ActualTemperature:   utils.Round(r.Temperature, 1),
		ActualRPM:           r.RPM,
		AnomalyScore:        rounded,
		RUL:                 RemainingUsefulLife(score),
		RootCause:           cause,
		AIConfidence:        utils.Round(confidence, 1),
		Status:              status,
		Message:             status.Message(),
	}
}

// RemainingUsefulLife maps an anomaly score to hours of life left.
func RemainingUsefulLife(score float64) int {
	switch {
	case score < 0.2:
		return BaseRUL
	case score < 0.5:
		return int(math.Floor(BaseRUL * (1 - score*0.3)))
	case score < 1.5:
		return int(math.Floor(BaseRUL / math.Exp(score*0.8)))
	default:
		return max(1, int(math.Floor(BaseRUL/math.Exp(score))))
	}
}

// Classify places a score in its health band.
func Classify(score float64) Status {
	switch {
	case score < 0.2:
		return StatusNormal
	case score < 1.0:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// Message returns the operator text for the status.
func (s Status) Message() string {
	switch s {
	case StatusCritical:
		return "KRİTİK ANOMALİ. Kök neden analizi başlatıldı."
	case StatusWarning:
		return "Sapma Tespit Edildi. Sinyal sağlıklı durumdan uzaklaşıyor."
	default:
		return "Normal Operasyon. Yeniden yapılandırma hatası minimum (%99 eşleşme)."
	}
}
