package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/acd-industrial/plantsim/internal/copilot"
	"github.com/acd-industrial/plantsim/internal/metrics"
	"github.com/acd-industrial/plantsim/internal/notification"
	"github.com/acd-industrial/plantsim/internal/simulation"
	"github.com/acd-industrial/plantsim/internal/vision"
	"github.com/acd-industrial/plantsim/pkg/utils"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port          int           `json:"port"`
	Host          string        `json:"host"`
	ReadTimeout   time.Duration `json:"read_timeout"`
	WriteTimeout  time.Duration `json:"write_timeout"`
	EnableMetrics bool          `json:"enable_metrics"`
	EnableHealth  bool          `json:"enable_health"`
	Version       string        `json:"version"`
}

// HTTPServer represents the HTTP server
type HTTPServer struct {
	config         *ServerConfig
	server         *http.Server
	router         *mux.Router
	handler        http.Handler
	simulation     simulation.Simulator
	copilot        *copilot.Copilot
	inspector      *vision.Inspector
	notification   *notification.NotificationManager
	metricsManager *metrics.Manager
	logger         *logrus.Entry
}

// NewHTTPServer creates a new HTTP server. notification and metricsManager
// may be nil.
func NewHTTPServer(
	config *ServerConfig,
	sim simulation.Simulator,
	cp *copilot.Copilot,
	inspector *vision.Inspector,
	notification *notification.NotificationManager,
	metricsManager *metrics.Manager,
) (*HTTPServer, error) {
	if sim == nil || cp == nil || inspector == nil {
		return nil, utils.NewAppError(utils.ErrCodeConfiguration, "HTTP server requires simulation, copilot and inspector")
	}

	server := &HTTPServer{
		config:         config,
		simulation:     sim,
		copilot:        cp,
		inspector:      inspector,
		notification:   notification,
		metricsManager: metricsManager,
		logger:         utils.ComponentLogger("server"),
	}

	// Setup router
	server.setupRouter()

	// CORS wraps the router so preflights for any path are answered
	// before route matching
	server.handler = server.corsMiddleware(server.router)

	// Create HTTP server
	server.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return server, nil
}

// Handler exposes the router, mainly for tests
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// setupRouter sets up the HTTP routes
func (s *HTTPServer) setupRouter() {
	s.router = mux.NewRouter()

	// Middleware
	s.router.Use(s.loggingMiddleware)
	if s.metricsManager != nil {
		s.router.Use(s.metricsMiddleware)
	}

	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Health check endpoint
	if s.config.EnableHealth {
		api.HandleFunc("/health", s.healthHandler).Methods("GET")
		api.HandleFunc("/health/detailed", s.detailedHealthHandler).Methods("GET")
	}

	// Metrics endpoint
	if s.config.EnableMetrics && s.metricsManager != nil {
		s.router.Handle("/metrics", s.metricsManager.Handler())
	}
	api.HandleFunc("/stats", s.statsHandler).Methods("GET")

	// Simulation endpoints
	api.HandleFunc("/simulation/status", s.simulationStatusHandler).Methods("GET")
	api.HandleFunc("/simulation/start", s.startSimulationHandler).Methods("POST")
	api.HandleFunc("/simulation/stop", s.stopSimulationHandler).Methods("POST")

	// Predictive maintenance endpoints
	api.HandleFunc("/predictive/simulate", s.simulatePredictiveHandler).Methods("POST")
	api.HandleFunc("/predictive/live", s.livePredictiveHandler).Methods("GET")
	api.HandleFunc("/predictive/live", s.setReadingHandler).Methods("PUT")

	// Energy endpoints
	api.HandleFunc("/energy/tariffs", s.tariffsHandler).Methods("GET")
	api.HandleFunc("/energy/plan", s.energyPlanHandler).Methods("POST")
	api.HandleFunc("/energy/optimize", s.energyOptimizeHandler).Methods("POST")
	api.HandleFunc("/energy/spot", s.spotHandler).Methods("GET")

	// Production line endpoints
	api.HandleFunc("/efficiency/line", s.lineHandler).Methods("GET")
	api.HandleFunc("/efficiency/stations/{id}", s.stationSpeedHandler).Methods("PUT")
	api.HandleFunc("/efficiency/optimize", s.optimizeLineHandler).Methods("POST")
	api.HandleFunc("/efficiency/pause", s.pauseLineHandler).Methods("POST")
	api.HandleFunc("/efficiency/resume", s.resumeLineHandler).Methods("POST")
	api.HandleFunc("/efficiency/reset", s.resetLineHandler).Methods("POST")

	// Planning endpoints
	api.HandleFunc("/planning/schedule", s.scheduleHandler).Methods("GET")
	api.HandleFunc("/planning/optimize", s.optimizeScheduleHandler).Methods("POST")
	api.HandleFunc("/planning/evaluate", s.evaluateScheduleHandler).Methods("POST")

	// Anomaly endpoints
	api.HandleFunc("/anomaly/stream", s.anomalyStreamHandler).Methods("GET")
	api.HandleFunc("/anomaly/noise", s.setNoiseHandler).Methods("PUT")
	api.HandleFunc("/anomaly/reset", s.resetAnomalyHandler).Methods("POST")

	// Copilot endpoints
	api.HandleFunc("/copilot/query", s.copilotQueryHandler).Methods("POST")
	api.HandleFunc("/copilot/chat", s.copilotChatHandler).Methods("POST")
	api.HandleFunc("/copilot/prompts", s.copilotPromptsHandler).Methods("GET")

	// Vision endpoints
	api.HandleFunc("/vision/samples", s.visionSamplesHandler).Methods("GET")
	api.HandleFunc("/vision/inspect/{index:[0-9]+}", s.visionInspectHandler).Methods("GET")

	// Alert endpoints
	api.HandleFunc("/alerts", s.listAlertsHandler).Methods("GET")
	api.HandleFunc("/notifications/test", s.testNotificationHandler).Methods("POST")
}

// Start starts the HTTP server
func (s *HTTPServer) Start() error {
	s.logger.WithFields(logrus.Fields{
		"address":         s.server.Addr,
		"metrics_enabled": s.config.EnableMetrics,
	}).Info("Starting HTTP server")

	// metrics appear on the first scrape
	if s.metricsManager != nil {
		s.metricsManager.UpdateSystemMetrics()
		s.updateComponentHealth()
	}

	errChan := make(chan error, 1)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("HTTP server error")
			errChan <- err
		}
	}()

	// catch immediate binding errors
	select {
	case err := <-errChan:
		return fmt.Errorf("failed to start HTTP server: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Stop stops the HTTP server
func (s *HTTPServer) Stop() error {
	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) updateComponentHealth() {
	if s.metricsManager == nil {
		return
	}
	pm := s.metricsManager.GetPrometheusMetrics()
	pm.UpdateComponentHealth("simulation", s.simulation.GetHealth().Healthy)
	if s.notification != nil {
		pm.UpdateComponentHealth("notification", s.notification.GetHealth().Healthy)
	}
}

// Utility Methods

// decodeJSON decodes the request body into v. An empty body leaves v
// untouched when optional is set.
func decodeJSON(r *http.Request, v interface{}, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && optional {
		return nil
	}
	return err
}

// writeJSON writes a JSON response
func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string, err error) {
	errorResponse := map[string]interface{}{
		"error":     message,
		"status":    status,
		"timestamp": time.Now(),
	}

	if err != nil {
		errorResponse["details"] = err.Error()
		errorResponse["code"] = utils.ErrorCode(err)
		entry := s.logger.WithFields(logrus.Fields{
			"status":  status,
			"message": message,
			"error":   err,
		})
		if status >= 500 {
			entry.Error("HTTP error")
		} else {
			entry.Warn("HTTP error")
		}
	}

	s.writeJSON(w, status, errorResponse)
}

// writeAppError picks the status from the error code
func (s *HTTPServer) writeAppError(w http.ResponseWriter, message string, err error) {
	s.writeError(w, statusFor(err), message, err)
}

func statusFor(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	switch utils.ErrorCode(err) {
	case utils.ErrCodeValidation:
		return http.StatusBadRequest
	case utils.ErrCodeNotFound:
		return http.StatusNotFound
	case utils.ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
