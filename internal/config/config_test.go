package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "plantsim", cfg.App.Name)
	assert.Equal(t, 100*time.Millisecond, cfg.Simulation.AnomalyInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Simulation.EfficiencyInterval)
	assert.Equal(t, 50*time.Millisecond, cfg.Simulation.RampInterval)
	assert.Equal(t, time.Second, cfg.Simulation.PredictiveInterval)
	assert.Equal(t, 5*time.Second, cfg.Simulation.SpotInterval)
	assert.Equal(t, 3*time.Second, cfg.Simulation.ClockInterval)
	assert.Equal(t, 30, cfg.Simulation.PredictiveHistory)
	assert.Equal(t, 1800*time.Millisecond, cfg.Copilot.QueryDelay)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plantsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
simulation:
  anomaly_interval: 250ms
  initial_noise: spike
copilot:
  query_delay: 0s
notifications:
  enable_webhook_notifications: true
  webhook_url: http://hooks.local/alerts
  webhook_headers:
    x-token: abc
`), 0o600))

	t.Setenv("PLANTSIM_SERVER_HOST", "127.0.0.1")
	t.Setenv("PLANTSIM_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Address())
	assert.Equal(t, 250*time.Millisecond, cfg.Simulation.AnomalyInterval)
	assert.Equal(t, "spike", cfg.Simulation.InitialNoise)
	assert.Equal(t, time.Duration(0), cfg.Copilot.QueryDelay)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "abc", cfg.Notifications.WebhookHeaders["x-token"])
	// untouched keys keep defaults
	assert.Equal(t, 500*time.Millisecond, cfg.Simulation.EfficiencyInterval)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"zero interval":  func(c *Config) { c.Simulation.RampInterval = 0 },
		"history":        func(c *Config) { c.Simulation.PredictiveHistory = 0 },
		"noise":          func(c *Config) { c.Simulation.InitialNoise = "hum" },
		"start hour":     func(c *Config) { c.Simulation.StartHour = 24 },
		"negative delay": func(c *Config) { c.Copilot.QueryDelay = -time.Second },
		"webhook no url": func(c *Config) { c.Notifications.EnableWebhookNotifications = true },
		"severity":       func(c *Config) { c.Notifications.MinSeverity = "loud" },
		"port":           func(c *Config) { c.Server.Port = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
