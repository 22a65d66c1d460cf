package anomaly

import (
	"fmt"
	"time"
)

const (
	LogSize         = 5
	LogScoreMin     = 0.5
	DefaultDebounce = 500 * time.Millisecond
	DefaultAlertGap = time.Second
)

// LogEntry is one line of the operator log.
type LogEntry struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// Tracker keeps the operator-facing state on top of raw samples: a short
// log of notable events, a debounced status and an alert throttle.
// It is not safe for concurrent use.
type Tracker struct {
	debounce    time.Duration
	alertGap    time.Duration
	log         []LogEntry
	active      bool
	lastAnomaly time.Time
	lastAlert   time.Time
	lastScore   float64
	lastNoise   NoiseType
}

// NewTracker returns a tracker. Zero durations fall back to defaults.
func NewTracker(debounce, alertGap time.Duration) *Tracker {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if alertGap <= 0 {
		alertGap = DefaultAlertGap
	}
	return &Tracker{debounce: debounce, alertGap: alertGap}
}

// Observe folds a sample into the tracker and reports whether an alert
// should go out for it.
func (t *Tracker) Observe(now time.Time, noise NoiseType, s Signal) bool {
	if !s.IsAnomaly {
		if t.active && now.Sub(t.lastAnomaly) >= t.debounce {
			t.active = false
		}
		return false
	}

	t.active = true
	t.lastAnomaly = now
	t.lastScore = s.AnomalyScore
	t.lastNoise = noise

	if s.AnomalyScore > LogScoreMin {
		t.push(now, Message(noise, true, s.AnomalyScore))
	}

	if !t.lastAlert.IsZero() && now.Sub(t.lastAlert) < t.alertGap {
		return false
	}
	t.lastAlert = now
	return true
}

var noiseNames = map[NoiseType]string{
	NoiseRandom: "Gürültü Enjeksiyonu",
	NoiseSpike:  "Ani Spike",
	NoiseFlat:   "Sensör Donması",
}

// NoiseChanged logs an operator toggle.
func (t *Tracker) NoiseChanged(now time.Time, noise NoiseType) {
	if noise == NoiseNone {
		t.push(now, "Sabotaj devre dışı. Normal moda dönüş.")
		return
	}
	t.push(now, fmt.Sprintf("%s aktif edildi.", noiseNames[noise]))
}

// Note adds a free-form line to the log.
func (t *Tracker) Note(now time.Time, msg string) {
	t.push(now, msg)
}

// Active reports the debounced anomaly status.
func (t *Tracker) Active() bool { return t.active }

// Message is the status line for the debounced state.
func (t *Tracker) Message() string {
	return Message(t.lastNoise, t.active, t.lastScore)
}

// Log returns the newest entries first.
func (t *Tracker) Log() []LogEntry {
	out := make([]LogEntry, len(t.log))
	for i, e := range t.log {
		out[len(t.log)-1-i] = e
	}
	return out
}

// Reset clears status and log.
func (t *Tracker) Reset() {
	t.log = nil
	t.active = false
	t.lastAnomaly = time.Time{}
	t.lastAlert = time.Time{}
	t.lastScore = 0
	t.lastNoise = NoiseNone
}

func (t *Tracker) push(now time.Time, msg string) {
	t.log = append(t.log, LogEntry{At: now, Message: msg})
	if len(t.log) > LogSize {
		t.log = t.log[len(t.log)-LogSize:]
	}
}
