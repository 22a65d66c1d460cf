package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityForScore(t *testing.T) {
	assert.Equal(t, SeverityInfo, SeverityForScore(0.1))
	assert.Equal(t, SeverityWarning, SeverityForScore(0.4))
	assert.Equal(t, SeverityWarning, SeverityForScore(0.79))
	assert.Equal(t, SeverityCritical, SeverityForScore(0.98))
}

func TestNewAlert(t *testing.T) {
	a := NewAlert("anomaly", SeverityCritical, 0.98, "Anomali", "Sinyal Kaybı")
	b := NewAlert("anomaly", SeverityCritical, 0.98, "Anomali", "Sinyal Kaybı")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "anomaly", a.Stream)
	assert.False(t, a.CreatedAt.IsZero())
}
