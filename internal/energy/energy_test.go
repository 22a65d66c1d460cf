package energy

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acd-industrial/plantsim/pkg/utils"
)

func TestHeatingDurationAndPower(t *testing.T) {
	assert.Equal(t, 2, HeatingDuration(500))
	assert.Equal(t, 4, HeatingDuration(850))
	assert.Equal(t, 5, HeatingDuration(1200))

	assert.Equal(t, 100.0, PowerConsumption(500))
	assert.Equal(t, 225.0, PowerConsumption(850))
	assert.Equal(t, 350.0, PowerConsumption(1200))
}

func TestCostWrapsPastMidnight(t *testing.T) {
	assert.Equal(t, 600.0, Cost(0, 4, 100))
	// 22, 23, 0, 1
	assert.Equal(t, 680.0, Cost(22, 4, 100))
}

func TestOptimalStartHour(t *testing.T) {
	assert.Equal(t, 0, OptimalStartHour(4, 17))
	// only the overnight runs ending by 03:00 qualify
	assert.Equal(t, 23, OptimalStartHour(4, 3))
	assert.Equal(t, 0, OptimalStartHour(2, 24))
}

func TestChartActiveHours(t *testing.T) {
	chart := Chart(22, 4, 200)
	require.Len(t, chart, 24)

	var active []string
	for _, p := range chart {
		if p.IsActive {
			active = append(active, p.Hour)
			assert.Equal(t, 200.0, p.Consumption)
		} else {
			assert.Zero(t, p.Consumption)
		}
	}
	assert.Equal(t, []string{"00:00", "01:00", "22:00", "23:00"}, active)
	assert.Equal(t, ZonePeak, chart[9].TariffZone)
}

func TestCarbonFootprint(t *testing.T) {
	assert.Equal(t, 360.0, CarbonFootprint(900))
	assert.Equal(t, 0.4, CarbonFootprint(1))
}

func TestSpotPriceStaysNearTariff(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 100; i++ {
		p := SpotPrice(10, rng)
		assert.InDelta(t, 5.0, p, 0.1+1e-9)
	}
}

func TestOptimizeDefaultPlan(t *testing.T) {
	opt, err := Optimize(DefaultPlan())
	require.NoError(t, err)

	assert.Equal(t, 8, opt.Before.Plan.StartHour)
	assert.Equal(t, 0, opt.After.Plan.StartHour)
	assert.Equal(t, 1350.0, opt.After.Cost)
	assert.Equal(t, "1.350", opt.After.CostText)
	assert.InDelta(t, 4343, opt.Before.Cost, 1)
	assert.InDelta(t, 69, opt.SavingsPercent, 1)
	assert.Equal(t, 360.0, opt.After.CarbonKg)
}

func TestPlanValidation(t *testing.T) {
	bad := []Plan{
		{StartHour: 24, TargetTemperature: 850, Deadline: 17},
		{StartHour: 8, TargetTemperature: 400, Deadline: 17},
		{StartHour: 8, TargetTemperature: 850, Deadline: 5},
	}
	for _, p := range bad {
		_, err := Summarize(p)
		assert.True(t, utils.IsCode(err, utils.ErrCodeValidation), "plan %+v", p)
	}
}
