package predictive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acd-industrial/plantsim/pkg/utils"
)

func TestSimulateHealthyDefaults(t *testing.T) {
	res, err := Simulate(Reading{Vibration: 0.5, Temperature: 62, RPM: 3000})
	require.NoError(t, err)

	assert.Equal(t, 0.5, res.ExpectedVibration)
	assert.Equal(t, 61.5, res.ExpectedTemperature)
	assert.InDelta(t, 0.015, res.AnomalyScore, 0.006)
	assert.Equal(t, BaseRUL, res.RUL)
	assert.Equal(t, CauseTemperature, res.RootCause)
	assert.Equal(t, 99.7, res.AIConfidence)
	assert.Equal(t, StatusNormal, res.Status)
}

func TestSimulateCriticalVibration(t *testing.T) {
	res, err := Simulate(Reading{Vibration: 4, Temperature: 62, RPM: 3000})
	require.NoError(t, err)

	assert.Equal(t, 79.0, res.ExpectedTemperature)
	assert.Equal(t, 2.96, res.AnomalyScore)
	assert.Equal(t, 103, res.RUL)
	assert.Equal(t, CauseVibration, res.RootCause)
	assert.Equal(t, 46.7, res.AIConfidence)
	assert.Equal(t, StatusCritical, res.Status)
	assert.Contains(t, res.Message, "KRİTİK")
}

func TestSimulateClampsScore(t *testing.T) {
	res, err := Simulate(Reading{Vibration: 5, Temperature: 150, RPM: 0})
	require.NoError(t, err)

	assert.Equal(t, 5.0, res.AnomalyScore)
	assert.Equal(t, 10.0, res.AIConfidence)
	assert.Equal(t, 13, res.RUL)
}

func TestSimulateRejectsOutOfRange(t *testing.T) {
	cases := []Reading{
		{Vibration: -0.1, Temperature: 60, RPM: 1000},
		{Vibration: 1, Temperature: 10, RPM: 1000},
		{Vibration: 1, Temperature: 60, RPM: 7000},
	}
	for _, r := range cases {
		_, err := Simulate(r)
		require.Error(t, err)
		assert.True(t, utils.IsCode(err, utils.ErrCodeValidation))
	}
}

func TestRemainingUsefulLifeBands(t *testing.T) {
	assert.Equal(t, 2000, RemainingUsefulLife(0.1))
	assert.InDelta(t, 1760, RemainingUsefulLife(0.4), 1)
	assert.Equal(t, 898, RemainingUsefulLife(1.0))
	assert.Equal(t, 99, RemainingUsefulLife(3.0))
	assert.Equal(t, 1, RemainingUsefulLife(10))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, StatusNormal, Classify(0.19))
	assert.Equal(t, StatusWarning, Classify(0.2))
	assert.Equal(t, StatusWarning, Classify(0.99))
	assert.Equal(t, StatusCritical, Classify(1.0))
}
