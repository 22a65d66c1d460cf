// Package energy schedules an industrial furnace against a time-of-use
// tariff. Optimisation is a brute-force scan over the 24 start hours.
package energy

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/acd-industrial/plantsim/pkg/utils"
)

const (
	MinTargetTemperature = 500
	MaxTargetTemperature = 1200
	MinDeadline          = 6
	MaxDeadline          = 24

	// EmissionFactor is the grid average in kg CO2 per kWh.
	EmissionFactor = 0.4

	// referencePowerKW normalises cost comparisons between start hours.
	referencePowerKW = 100
)

// Plan describes one furnace heating run.
type Plan struct {
	StartHour         int     `json:"start_hour"`
	TargetTemperature float64 `json:"target_temperature"`
	Deadline          int     `json:"deadline"`
}

// DefaultPlan is the shift-start schedule an operator would pick by hand.
func DefaultPlan() Plan {
	return Plan{StartHour: 8, TargetTemperature: 850, Deadline: 17}
}

// Validate checks the plan against the accepted control ranges.
func (p Plan) Validate() error {
	if p.StartHour < 0 || p.StartHour > 23 {
		return utils.NewAppError(utils.ErrCodeValidation, "start hour out of range",
			fmt.Sprintf("got %d, want 0..23", p.StartHour))
	}
	if math.IsNaN(p.TargetTemperature) || p.TargetTemperature < MinTargetTemperature || p.TargetTemperature > MaxTargetTemperature {
		return utils.NewAppError(utils.ErrCodeValidation, "target temperature out of range",
			fmt.Sprintf("got %v, want %d..%d", p.TargetTemperature, MinTargetTemperature, MaxTargetTemperature))
	}
	if p.Deadline < MinDeadline || p.Deadline > MaxDeadline {
		return utils.NewAppError(utils.ErrCodeValidation, "deadline out of range",
			fmt.Sprintf("got %d, want %d..%d", p.Deadline, MinDeadline, MaxDeadline))
	}
	return nil
}

// ChartPoint is one hour of the consumption chart.
type ChartPoint struct {
	Hour        string  `json:"hour"`
	TariffRate  float64 `json:"tariff_rate"`
	TariffZone  Zone    `json:"tariff_zone"`
	Consumption float64 `json:"consumption"`
	IsActive    bool    `json:"is_active"`
}

// Summary is the cost picture of a plan.
type Summary struct {
	Plan            Plan         `json:"plan"`
	HeatingDuration int          `json:"heating_duration"`
	PowerKW         float64      `json:"power_kw"`
	TotalKWh        float64      `json:"total_kwh"`
	Cost            float64      `json:"cost"`
	CostText        string       `json:"cost_text"`
	CarbonKg        float64      `json:"carbon_kg"`
	Chart           []ChartPoint `json:"chart"`
}

// Optimization compares a plan with its cheapest rescheduling.
type Optimization struct {
	Before         Summary `json:"before"`
	After          Summary `json:"after"`
	Savings        float64 `json:"savings"`
	SavingsPercent int     `json:"savings_percent"`
}

// HeatingDuration is the number of whole hours needed to reach targetTemp.
// 2h at 500°C rising linearly to 5h at 1200°C.
func HeatingDuration(targetTemp float64) int {
	factor := (targetTemp - 500) / 700
	return int(math.Ceil(2 + factor*3))
}

// PowerConsumption is the furnace draw in kW at targetTemp.
func PowerConsumption(targetTemp float64) float64 {
	factor := (targetTemp - 500) / 700
	return math.Round(100 + factor*250)
}

// Cost sums the tariff over the run, wrapping past midnight.
func Cost(startHour, duration int, powerKW float64) float64 {
	total := 0.0
	for i := 0; i < duration; i++ {
		total += powerKW * RateAt(startHour+i)
	}
	return math.Round(total)
}

// OptimalStartHour returns the cheapest start hour whose end hour
// (mod 24) does not pass the deadline. A deadline of 24 accepts any hour.
// The earliest hour wins ties; 0 is returned when no hour qualifies.
func OptimalStartHour(duration, deadline int) int {
	minCost := math.Inf(1)
	best := 0

	for start := 0; start < 24; start++ {
		end := (start + duration) % 24
		if end > deadline && deadline != 24 {
			continue
		}
		c := Cost(start, duration, referencePowerKW)
		if c < minCost {
			minCost = c
			best = start
		}
	}
	return best
}

// Chart renders the 24h consumption profile of a run.
func Chart(startHour, duration int, powerKW float64) []ChartPoint {
	points := make([]ChartPoint, 0, len(Tariffs))
	end := startHour + duration

	for _, t := range Tariffs {
		var active bool
		if end <= 24 {
			active = t.Hour >= startHour && t.Hour < end
		} else {
			active = t.Hour >= startHour || t.Hour < end%24
		}

		consumption := 0.0
		if active {
			consumption = powerKW
		}
		points = append(points, ChartPoint{
			Hour:        fmt.Sprintf("%02d:00", t.Hour),
			TariffRate:  t.Rate,
			TariffZone:  t.Zone,
			Consumption: consumption,
			IsActive:    active,
		})
	}
	return points
}

// CarbonFootprint converts kWh to kg CO2, one decimal.
func CarbonFootprint(totalKWh float64) float64 {
	return utils.Round(totalKWh*EmissionFactor, 1)
}

// SpotPrice is the tariff at hour with a ±0.1 TL fluctuation. rng may be
// nil, in which case the shared generator is used.
func SpotPrice(hour int, rng *rand.Rand) float64 {
	f := rand.Float64
	if rng != nil {
		f = rng.Float64
	}
	fluctuation := (f() - 0.5) * 0.2
	return utils.Round(RateAt(hour)+fluctuation, 2)
}

// Summarize computes the cost picture of a plan.
func Summarize(p Plan) (*Summary, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	duration := HeatingDuration(p.TargetTemperature)
	power := PowerConsumption(p.TargetTemperature)
	kwh := power * float64(duration)
	cost := Cost(p.StartHour, duration, power)

	return &Summary{
		Plan:            p,
		HeatingDuration: duration,
		PowerKW:         power,
		TotalKWh:        kwh,
		Cost:            cost,
		CostText:        utils.FormatTurkishNumber(cost),
		CarbonKg:        CarbonFootprint(kwh),
		Chart:           Chart(p.StartHour, duration, power),
	}, nil
}

// Optimize moves the plan to its cheapest start hour.
func Optimize(p Plan) (*Optimization, error) {
	before, err := Summarize(p)
	if err != nil {
		return nil, err
	}

	shifted := p
	shifted.StartHour = OptimalStartHour(before.HeatingDuration, p.Deadline)
	after, err := Summarize(shifted)
	if err != nil {
		return nil, err
	}

	savings := before.Cost - after.Cost
	percent := 0
	if before.Cost > 0 {
		percent = int(math.Round(savings / before.Cost * 100))
	}

	return &Optimization{
		Before:         *before,
		After:          *after,
		Savings:        savings,
		SavingsPercent: percent,
	}, nil
}
