package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/acd-industrial/plantsim/internal/config"
	"github.com/acd-industrial/plantsim/internal/copilot"
	"github.com/acd-industrial/plantsim/internal/metrics"
	"github.com/acd-industrial/plantsim/internal/models"
	"github.com/acd-industrial/plantsim/internal/notification"
	"github.com/acd-industrial/plantsim/internal/server"
	"github.com/acd-industrial/plantsim/internal/simulation"
	"github.com/acd-industrial/plantsim/internal/vision"
	"github.com/acd-industrial/plantsim/pkg/utils"
)

// Application represents the main application
type Application struct {
	config       *config.Config
	logger       *logrus.Logger
	metrics      *metrics.Manager
	notification *notification.NotificationManager
	simulation   *simulation.Hub
	copilot      *copilot.Copilot
	inspector    *vision.Inspector
	server       *server.HTTPServer
	ctx          context.Context
	cancel       context.CancelFunc
	startTime    time.Time
}

// NewApplication creates a new application instance
func NewApplication(cfg *config.Config) (*Application, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &Application{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}

	if err := app.initializeLogger(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := app.initializeComponents(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	return app, nil
}

// initializeLogger initializes the application logger
func (app *Application) initializeLogger() error {
	logCfg := app.config.Logging

	if err := utils.InitLogger(logCfg.Level, logCfg.Format, logCfg.Output, logCfg.File); err != nil {
		return err
	}

	app.logger = utils.GetLogger()
	app.logger.WithFields(logrus.Fields{
		"level":  logCfg.Level,
		"format": logCfg.Format,
		"output": logCfg.Output,
	}).Info("Logger initialized")

	return nil
}

// initializeComponents initializes all application components
func (app *Application) initializeComponents() error {
	app.logger.Info("Initializing application components")

	app.metrics = metrics.NewManager()

	if app.config.Notifications.Enabled {
		app.initializeNotification()
	}

	app.initializeSimulation()

	app.copilot = copilot.New(nil, copilot.Options{
		QueryDelay: app.config.Copilot.QueryDelay,
		ChatDelay:  app.config.Copilot.ChatDelay,
		ChatJitter: app.config.Copilot.ChatJitter,
	})

	var err error
	app.inspector, err = vision.NewInspector()
	if err != nil {
		return fmt.Errorf("failed to load vision samples: %w", err)
	}

	if err := app.initializeServer(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	app.logger.Info("All components initialized successfully")
	return nil
}

// initializeNotification initializes the notification manager
func (app *Application) initializeNotification() {
	n := app.config.Notifications
	app.notification = notification.NewNotificationManager(&notification.NotificationManagerConfig{
		NotificationTimeout:        n.NotificationTimeout,
		RetryAttempts:              n.RetryAttempts,
		RetryDelay:                 n.RetryDelay,
		EnableLogNotifications:     n.EnableLogNotifications,
		EnableWebhookNotifications: n.EnableWebhookNotifications,
		WebhookURL:                 n.WebhookURL,
		WebhookHeaders:             n.WebhookHeaders,
		MinSeverity:                models.Severity(n.MinSeverity),
		QueueSize:                  n.QueueSize,
		RecentLimit:                n.RecentLimit,
		LogLevel:                   app.config.Logging.Level,
	}, app.metrics.GetPrometheusMetrics())
}

// initializeSimulation creates the hub; alerts go to the notification
// manager when one is configured
func (app *Application) initializeSimulation() {
	var sink simulation.AlertSink
	if app.notification != nil {
		sink = app.notification
	}
	app.simulation = simulation.NewHub(app.config.Simulation, app.metrics, sink)
}

// initializeServer initializes the HTTP server
func (app *Application) initializeServer() error {
	serverCfg := &server.ServerConfig{
		Port:          app.config.Server.Port,
		Host:          app.config.Server.Host,
		ReadTimeout:   app.config.Server.ReadTimeout,
		WriteTimeout:  app.config.Server.WriteTimeout,
		EnableMetrics: app.config.Server.EnableMetrics,
		EnableHealth:  app.config.Server.EnableHealth,
		Version:       AppVersion,
	}

	var err error
	app.server, err = server.NewHTTPServer(serverCfg, app.simulation, app.copilot, app.inspector, app.notification, app.metrics)
	return err
}

// Start starts the application
func (app *Application) Start() error {
	app.logger.WithFields(logrus.Fields{
		"version":     AppVersion,
		"environment": app.config.App.Environment,
	}).Info("Starting plantsim")

	if app.notification != nil {
		if err := app.notification.Start(app.ctx); err != nil {
			return fmt.Errorf("failed to start notification manager: %w", err)
		}
	}

	if err := app.simulation.Start(app.ctx); err != nil {
		return fmt.Errorf("failed to start simulation: %w", err)
	}

	if err := app.server.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	app.startTime = time.Now()
	app.logger.WithField("server_address", app.config.Server.Address()).Info("plantsim started successfully")
	return nil
}

// Stop stops the application gracefully
func (app *Application) Stop() error {
	app.logger.Info("Stopping plantsim")

	app.cancel()

	// reverse start order
	if app.server != nil {
		if err := app.server.Stop(); err != nil {
			app.logger.WithError(err).Error("Failed to stop HTTP server")
		}
	}

	if app.simulation != nil {
		if err := app.simulation.Stop(); err != nil {
			app.logger.WithError(err).Error("Failed to stop simulation")
		}
	}

	if app.notification != nil {
		if err := app.notification.Stop(); err != nil {
			app.logger.WithError(err).Error("Failed to stop notification manager")
		}
	}

	app.logger.Info("plantsim stopped successfully")
	return nil
}

// GetStats returns application statistics
func (app *Application) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"version":    AppVersion,
		"timestamp":  time.Now(),
		"simulation": app.simulation.GetStats(),
	}
	if !app.startTime.IsZero() {
		stats["uptime"] = time.Since(app.startTime).String()
	}
	if app.notification != nil {
		stats["notification"] = app.notification.GetStats()
	}
	return stats
}

// GetHealth returns application health status
func (app *Application) GetHealth() map[string]interface{} {
	components := map[string]bool{
		"simulation": app.simulation.GetHealth().Healthy,
	}
	if app.notification != nil {
		components["notification"] = app.notification.IsHealthy()
	}

	status := "healthy"
	for _, healthy := range components {
		if !healthy {
			status = "unhealthy"
			break
		}
	}

	return map[string]interface{}{
		"status":     status,
		"timestamp":  time.Now(),
		"version":    AppVersion,
		"components": components,
	}
}
