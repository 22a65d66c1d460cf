package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Simulation    SimulationConfig   `mapstructure:"simulation"`
	Copilot       CopilotConfig      `mapstructure:"copilot"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Server        ServerConfig       `mapstructure:"server"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// SimulationConfig contains the cadences and sizes of the simulation streams
type SimulationConfig struct {
	AnomalyInterval       time.Duration `mapstructure:"anomaly_interval"`
	EfficiencyInterval    time.Duration `mapstructure:"efficiency_interval"`
	RampInterval          time.Duration `mapstructure:"ramp_interval"`
	PredictiveInterval    time.Duration `mapstructure:"predictive_interval"`
	SpotInterval          time.Duration `mapstructure:"spot_interval"`
	ClockInterval         time.Duration `mapstructure:"clock_interval"`
	SystemMetricsInterval time.Duration `mapstructure:"system_metrics_interval"`
	PredictiveHistory     int           `mapstructure:"predictive_history"`
	SignalHistory         int           `mapstructure:"signal_history"`
	ClusterHistory        int           `mapstructure:"cluster_history"`
	AlertDebounce         time.Duration `mapstructure:"alert_debounce"`
	AlertGap              time.Duration `mapstructure:"alert_gap"`
	OptimizeDelay         time.Duration `mapstructure:"optimize_delay"`
	DrainDelay            time.Duration `mapstructure:"drain_delay"`
	InitialNoise          string        `mapstructure:"initial_noise"`
	StartHour             int           `mapstructure:"start_hour"`
	Seed                  uint64        `mapstructure:"seed"` // 0 seeds from the clock
}

// CopilotConfig contains the simulated copilot latencies
type CopilotConfig struct {
	QueryDelay time.Duration `mapstructure:"query_delay"`
	ChatDelay  time.Duration `mapstructure:"chat_delay"`
	ChatJitter time.Duration `mapstructure:"chat_jitter"`
}

// NotificationConfig contains alert notification configuration
type NotificationConfig struct {
	Enabled                    bool              `mapstructure:"enabled"`
	QueueSize                  int               `mapstructure:"queue_size"`
	RecentLimit                int               `mapstructure:"recent_limit"`
	MinSeverity                string            `mapstructure:"min_severity"`
	NotificationTimeout        time.Duration     `mapstructure:"notification_timeout"`
	RetryAttempts              int               `mapstructure:"retry_attempts"`
	RetryDelay                 time.Duration     `mapstructure:"retry_delay"`
	EnableLogNotifications     bool              `mapstructure:"enable_log_notifications"`
	EnableWebhookNotifications bool              `mapstructure:"enable_webhook_notifications"`
	WebhookURL                 string            `mapstructure:"webhook_url"`
	WebhookHeaders             map[string]string `mapstructure:"webhook_headers"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port          int           `mapstructure:"port"`
	Host          string        `mapstructure:"host"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	EnableMetrics bool          `mapstructure:"enable_metrics"`
	EnableHealth  bool          `mapstructure:"enable_health"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
	Output string `mapstructure:"output"` // stdout, file, discard
	File   string `mapstructure:"file"`
}

// Load loads configuration from file and environment variables.
// Variables use the PLANTSIM_ prefix with underscores for nesting,
// e.g. PLANTSIM_SERVER_PORT.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("PLANTSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no file or environment is given
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	// defaults are static and always decode
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "plantsim")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)

	// Simulation defaults
	v.SetDefault("simulation.anomaly_interval", "100ms")
	v.SetDefault("simulation.efficiency_interval", "500ms")
	v.SetDefault("simulation.ramp_interval", "50ms")
	v.SetDefault("simulation.predictive_interval", "1s")
	v.SetDefault("simulation.spot_interval", "5s")
	v.SetDefault("simulation.clock_interval", "3s")
	v.SetDefault("simulation.system_metrics_interval", "15s")
	v.SetDefault("simulation.predictive_history", 30)
	v.SetDefault("simulation.signal_history", 50)
	v.SetDefault("simulation.cluster_history", 50)
	v.SetDefault("simulation.alert_debounce", "500ms")
	v.SetDefault("simulation.alert_gap", "1s")
	v.SetDefault("simulation.optimize_delay", "1500ms")
	v.SetDefault("simulation.drain_delay", "1s")
	v.SetDefault("simulation.initial_noise", "none")
	v.SetDefault("simulation.start_hour", 8)
	v.SetDefault("simulation.seed", 0)

	// Copilot defaults
	v.SetDefault("copilot.query_delay", "1800ms")
	v.SetDefault("copilot.chat_delay", "800ms")
	v.SetDefault("copilot.chat_jitter", "700ms")

	// Notification defaults
	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.queue_size", 64)
	v.SetDefault("notifications.recent_limit", 50)
	v.SetDefault("notifications.min_severity", "warning")
	v.SetDefault("notifications.notification_timeout", "5s")
	v.SetDefault("notifications.retry_attempts", 3)
	v.SetDefault("notifications.retry_delay", "1s")
	v.SetDefault("notifications.enable_log_notifications", true)
	v.SetDefault("notifications.enable_webhook_notifications", false)
	v.SetDefault("notifications.webhook_url", "")

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.enable_metrics", true)
	v.SetDefault("server.enable_health", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

var validNoise = map[string]bool{"none": true, "random": true, "spike": true, "flat": true}

var validSeverity = map[string]bool{"": true, "info": true, "warning": true, "critical": true}

// Validate validates the configuration
func (c *Config) Validate() error {
	s := c.Simulation
	intervals := map[string]time.Duration{
		"anomaly_interval":        s.AnomalyInterval,
		"efficiency_interval":     s.EfficiencyInterval,
		"ramp_interval":           s.RampInterval,
		"predictive_interval":     s.PredictiveInterval,
		"spot_interval":           s.SpotInterval,
		"clock_interval":          s.ClockInterval,
		"system_metrics_interval": s.SystemMetricsInterval,
	}
	for name, d := range intervals {
		if d <= 0 {
			return fmt.Errorf("simulation %s must be positive", name)
		}
	}
	if s.PredictiveHistory <= 0 || s.SignalHistory <= 0 || s.ClusterHistory <= 0 {
		return fmt.Errorf("simulation history sizes must be positive")
	}
	if !validNoise[s.InitialNoise] {
		return fmt.Errorf("unknown initial noise %q", s.InitialNoise)
	}
	if s.StartHour < 0 || s.StartHour > 23 {
		return fmt.Errorf("simulation start hour must be between 0 and 23")
	}

	if s.OptimizeDelay < 0 || s.DrainDelay < 0 {
		return fmt.Errorf("simulation optimize delays must not be negative")
	}

	if c.Copilot.QueryDelay < 0 || c.Copilot.ChatDelay < 0 || c.Copilot.ChatJitter < 0 {
		return fmt.Errorf("copilot delays must not be negative")
	}

	n := c.Notifications
	if n.Enabled && n.EnableWebhookNotifications && n.WebhookURL == "" {
		return fmt.Errorf("webhook URL is required when webhook notifications are enabled")
	}
	if !validSeverity[n.MinSeverity] {
		return fmt.Errorf("unknown notification severity %q", n.MinSeverity)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}
	return nil
}

// Address returns host:port of the HTTP server
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
