package efficiency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acd-industrial/plantsim/pkg/utils"
)

func TestTickMovesMaterialDownstream(t *testing.T) {
	s := NewLine()

	s = Tick(s)
	assert.Equal(t, 7, s.Stations[1].BufferIn)
	assert.Equal(t, 0, s.Stations[2].BufferIn)
	assert.Equal(t, 7, s.TotalProduced)
	assert.Equal(t, 1, s.TickCount)

	s = Tick(s)
	assert.Equal(t, 7, s.Stations[1].BufferIn)
	assert.Equal(t, 7, s.Stations[2].BufferIn)
	assert.Equal(t, 14, s.Stations[0].Processed)
	assert.Equal(t, 7, s.Stations[1].Processed)

	s = Tick(s)
	assert.Equal(t, 7, s.Stations[2].Processed)
}

func TestTickDoesNotMutateInput(t *testing.T) {
	s := NewLine()
	_ = Tick(s)
	assert.Equal(t, 0, s.Stations[1].BufferIn)
	assert.Equal(t, 0, s.TickCount)
}

func TestBufferIsCappedAndBottleneckReported(t *testing.T) {
	s := NewLine()
	var err error
	s, err = UpdateStationSpeed(s, "cutting", 90)
	require.NoError(t, err)
	s, err = UpdateStationSpeed(s, "assembly", 40)
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		s = Tick(s)
	}

	assembly := s.Stations[1]
	assert.Equal(t, DefaultBufferCapacity, assembly.BufferIn)
	assert.True(t, IsBufferCritical(assembly))
	assert.Equal(t, BufferCritical, StatusOf(assembly))

	b, ok := FindBottleneck(s.Stations)
	require.True(t, ok)
	assert.Equal(t, "assembly", b.ID)

	rec := Recommendation(s)
	assert.Contains(t, rec, "Montaj istasyonu %40")
	assert.Contains(t, rec, "Kesim hızını %25")
}

func TestUpdateStationSpeed(t *testing.T) {
	s, err := UpdateStationSpeed(NewLine(), "packing", 150)
	require.NoError(t, err)
	assert.Equal(t, MaxSpeed, s.Stations[2].Speed)

	s, err = UpdateStationSpeed(s, "packing", -5)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Stations[2].Speed)

	_, err = UpdateStationSpeed(s, "welding", 50)
	assert.True(t, utils.IsCode(err, utils.ErrCodeNotFound))
}

func TestAutoOptimizeAndOEE(t *testing.T) {
	s := NewLine()
	assert.Equal(t, 46, CalculateOEE(s.Stations))

	s = Tick(Tick(s))
	s = AutoOptimize(s)
	for _, st := range s.Stations {
		assert.Equal(t, BalancedSpeed, st.Speed)
		assert.Zero(t, st.BufferIn)
	}
	assert.Equal(t, 52, CalculateOEE(s.Stations))
	assert.Zero(t, CalculateOEE(nil))
}

func TestRampApproachesTargets(t *testing.T) {
	targets := map[string]int{"cutting": 80, "assembly": 40}
	s, changed := Ramp(NewLine(), targets)
	require.True(t, changed)
	assert.Equal(t, 75, s.Stations[0].Speed)
	assert.Equal(t, 65, s.Stations[1].Speed)
	assert.Equal(t, 70, s.Stations[2].Speed)

	for i := 0; i < 10; i++ {
		s, _ = Ramp(s, targets)
	}
	assert.Equal(t, 80, s.Stations[0].Speed)
	assert.Equal(t, 40, s.Stations[1].Speed)

	_, changed = Ramp(s, targets)
	assert.False(t, changed)
}

func TestStarvedRecommendation(t *testing.T) {
	s := NewLine()
	assert.False(t, IsStarved(s.Stations[0], 0))
	assert.True(t, IsStarved(s.Stations[1], 1))
	assert.Contains(t, Recommendation(s), "Montaj, Paketleme istasyonları malzeme bekliyor")
}

func TestSlowLineRecommendation(t *testing.T) {
	s := NewLine()
	for i := range s.Stations {
		s.Stations[i].Speed = 50
		s.Stations[i].BufferIn = 20
	}
	assert.Contains(t, Recommendation(s), "Ortalama hat hızı düşük (%50)")
}

func TestCycleTimeAndShiftTime(t *testing.T) {
	assert.Equal(t, 12.5, CycleTime(80))
	assert.Equal(t, 33.3, CycleTime(30))
	assert.Equal(t, 999.0, CycleTime(0))

	assert.Equal(t, "00:00:00", FormatShiftTime(1))
	assert.Equal(t, "01:01:01", FormatShiftTime(7322))
}

func TestAnalyze(t *testing.T) {
	r := Analyze(Tick(NewLine()))
	assert.Equal(t, "cutting", r.Bottleneck)
	require.Len(t, r.Stations, 3)
	assert.InDelta(t, 14.0, r.Stations[1].BufferPercentage, 1e-9)
	assert.Equal(t, BufferLow, r.Stations[1].BufferStatus)
	assert.True(t, r.Stations[2].Starved)
}
