package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTurkishNumber(t *testing.T) {
	assert.Equal(t, "127.500", FormatTurkishNumber(127500))
	assert.Equal(t, "950", FormatTurkishNumber(949.6))
	assert.Equal(t, "1.234.567", FormatTurkishNumber(1234567))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "08:00", FormatClock(8))
	assert.Equal(t, "15:30", FormatClock(15.5))
	assert.Equal(t, "10:15", FormatClock(10.25))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.23, Round(1.2345, 2))
	assert.Equal(t, 0.167, Round(1.0/6, 3))
	assert.Equal(t, 62.0, Round(61.96, 1))
}

func TestErrorCode(t *testing.T) {
	err := NewAppError(ErrCodeValidation, "bad input", "rpm")
	assert.Equal(t, "VALIDATION_ERROR: bad input (rpm)", err.Error())
	assert.True(t, IsCode(fmt.Errorf("wrapped: %w", err), ErrCodeValidation))
	assert.Equal(t, ErrCodeInternal, ErrorCode(fmt.Errorf("plain")))
	assert.False(t, IsCode(nil, ErrCodeValidation))
}
