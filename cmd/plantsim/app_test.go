package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acd-industrial/plantsim/internal/config"
)

func testAppConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Logging.Output = "discard"
	cfg.Simulation.Seed = 1
	return cfg
}

func TestApplicationLifecycle(t *testing.T) {
	app, err := NewApplication(testAppConfig())
	require.NoError(t, err)

	require.NoError(t, app.Start())
	assert.True(t, app.simulation.IsRunning())
	assert.True(t, app.notification.IsHealthy())

	stats := app.GetStats()
	assert.Equal(t, AppVersion, stats["version"])
	assert.Contains(t, stats, "uptime")
	assert.Contains(t, stats, "notification")

	require.NoError(t, app.Stop())
	assert.False(t, app.simulation.IsRunning())
	assert.Equal(t, "unhealthy", app.GetHealth()["status"])
}

func TestApplicationWithoutNotifications(t *testing.T) {
	cfg := testAppConfig()
	cfg.Notifications.Enabled = false

	app, err := NewApplication(cfg)
	require.NoError(t, err)
	assert.Nil(t, app.notification)
	assert.NotContains(t, app.GetStats(), "notification")
}

func TestApplicationRejectsBadLogLevel(t *testing.T) {
	cfg := testAppConfig()
	cfg.Logging.Level = "loud"

	_, err := NewApplication(cfg)
	assert.Error(t, err)
}
