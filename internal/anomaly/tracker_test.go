package anomaly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerDebounce(t *testing.T) {
	tr := NewTracker(0, 0)
	t0 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	tr.Observe(t0, NoiseSpike, Signal{IsAnomaly: true, AnomalyScore: 0.7})
	assert.True(t, tr.Active())
	assert.Contains(t, tr.Message(), "Ani Sinyal Sıçraması")

	tr.Observe(t0.Add(200*time.Millisecond), NoiseNone, Signal{})
	assert.True(t, tr.Active(), "status must hold inside the debounce window")

	tr.Observe(t0.Add(600*time.Millisecond), NoiseNone, Signal{})
	assert.False(t, tr.Active())
	assert.Equal(t, "Sinyal Normal. Tüm parametreler beklenen aralıkta.", tr.Message())
}

func TestTrackerThrottlesAlerts(t *testing.T) {
	tr := NewTracker(0, time.Second)
	t0 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	anomalous := Signal{IsAnomaly: true, AnomalyScore: 0.9}

	assert.True(t, tr.Observe(t0, NoiseRandom, anomalous))
	assert.False(t, tr.Observe(t0.Add(100*time.Millisecond), NoiseRandom, anomalous))
	assert.False(t, tr.Observe(t0.Add(900*time.Millisecond), NoiseRandom, anomalous))
	assert.True(t, tr.Observe(t0.Add(time.Second), NoiseRandom, anomalous))
	assert.False(t, tr.Observe(t0.Add(2*time.Second), NoiseNone, Signal{}))
}

func TestTrackerLogKeepsNewestFive(t *testing.T) {
	tr := NewTracker(0, 0)
	t0 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	// below the log threshold
	tr.Observe(t0, NoiseRandom, Signal{IsAnomaly: true, AnomalyScore: 0.4})
	assert.Empty(t, tr.Log())

	for i := 0; i < 7; i++ {
		tr.Observe(t0.Add(time.Duration(i)*time.Second), NoiseSpike, Signal{IsAnomaly: true, AnomalyScore: 0.6})
	}
	tr.NoiseChanged(t0.Add(10*time.Second), NoiseNone)

	log := tr.Log()
	require.Len(t, log, LogSize)
	assert.Equal(t, "Sabotaj devre dışı. Normal moda dönüş.", log[0].Message)
	assert.Equal(t, "Bilinmeyen Desen Tespit Edildi! (Tür: Ani Sinyal Sıçraması - Skor: 0.60)", log[1].Message)
	assert.Equal(t, t0.Add(6*time.Second), log[1].At)

	tr.NoiseChanged(t0.Add(11*time.Second), NoiseFlat)
	assert.Equal(t, "Sensör Donması aktif edildi.", tr.Log()[0].Message)

	tr.Reset()
	assert.Empty(t, tr.Log())
	assert.False(t, tr.Active())
}
