package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/acd-industrial/plantsim/internal/anomaly"
	"github.com/acd-industrial/plantsim/internal/energy"
	"github.com/acd-industrial/plantsim/internal/models"
	"github.com/acd-industrial/plantsim/internal/planning"
	"github.com/acd-industrial/plantsim/internal/predictive"
	"github.com/acd-industrial/plantsim/internal/vision"
)

// Health Handlers

// healthHandler returns basic health status
func (s *HTTPServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":          "healthy",
		"timestamp":       time.Now().UTC().Format(time.RFC3339Nano),
		"version":         s.config.Version,
		"metrics_enabled": s.config.EnableMetrics,
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// detailedHealthHandler returns health per component
func (s *HTTPServer) detailedHealthHandler(w http.ResponseWriter, r *http.Request) {
	components := map[string]interface{}{
		"simulation": s.simulation.GetHealth(),
	}
	status := "healthy"
	if !s.simulation.GetHealth().Healthy {
		status = "degraded"
	}
	if s.notification != nil {
		h := s.notification.GetHealth()
		components["notification"] = h
		if !h.Healthy {
			status = "degraded"
		}
	}
	s.updateComponentHealth()

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"timestamp":  time.Now(),
		"version":    s.config.Version,
		"components": components,
	})
}

// statsHandler returns application statistics
func (s *HTTPServer) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"timestamp":       time.Now(),
		"simulation":      s.simulation.GetStats(),
		"metrics_enabled": s.config.EnableMetrics,
	}
	if s.notification != nil {
		stats["notification"] = s.notification.GetStats()
	}
	if s.metricsManager != nil {
		stats["uptime"] = s.metricsManager.Uptime().String()
	}

	s.writeJSON(w, http.StatusOK, stats)
}

// Simulation Handlers

// simulationStatusHandler gets simulation status
func (s *HTTPServer) simulationStatusHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"running":   s.simulation.IsRunning(),
		"health":    s.simulation.GetHealth(),
		"stats":     s.simulation.GetStats(),
		"timestamp": time.Now(),
	})
}

// startSimulationHandler starts the streams. They outlive the request.
func (s *HTTPServer) startSimulationHandler(w http.ResponseWriter, r *http.Request) {
	if s.simulation.IsRunning() {
		s.writeError(w, http.StatusConflict, "Simulation is already running", nil)
		return
	}

	if err := s.simulation.Start(context.Background()); err != nil {
		s.writeAppError(w, "Failed to start simulation", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Simulation started successfully",
	})
}

// stopSimulationHandler stops the streams
func (s *HTTPServer) stopSimulationHandler(w http.ResponseWriter, r *http.Request) {
	if !s.simulation.IsRunning() {
		s.writeError(w, http.StatusConflict, "Simulation is not running", nil)
		return
	}

	if err := s.simulation.Stop(); err != nil {
		s.writeAppError(w, "Failed to stop simulation", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Simulation stopped successfully",
	})
}

// Predictive Handlers

// simulatePredictiveHandler evaluates one reading without touching the live state
func (s *HTTPServer) simulatePredictiveHandler(w http.ResponseWriter, r *http.Request) {
	var reading predictive.Reading
	if err := decodeJSON(r, &reading, false); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := predictive.Simulate(reading)
	if err != nil {
		s.writeAppError(w, "Invalid sensor reading", err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// livePredictiveHandler returns the live machine health history
func (s *HTTPServer) livePredictiveHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.simulation.Predictive())
}

// setReadingHandler moves the live sensor sliders
func (s *HTTPServer) setReadingHandler(w http.ResponseWriter, r *http.Request) {
	var reading predictive.Reading
	if err := decodeJSON(r, &reading, false); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := s.simulation.SetReading(reading)
	if err != nil {
		s.writeAppError(w, "Invalid sensor reading", err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// Energy Handlers

// tariffsHandler returns the time-of-use tariff table
func (s *HTTPServer) tariffsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"tariffs": energy.Tariffs,
	})
}

// energyPlanHandler prices a heating plan. Missing fields keep the default plan.
func (s *HTTPServer) energyPlanHandler(w http.ResponseWriter, r *http.Request) {
	plan := energy.DefaultPlan()
	if err := decodeJSON(r, &plan, true); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	summary, err := energy.Summarize(plan)
	if err != nil {
		s.writeAppError(w, "Invalid heating plan", err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

// energyOptimizeHandler shifts a heating plan to its cheapest start
func (s *HTTPServer) energyOptimizeHandler(w http.ResponseWriter, r *http.Request) {
	plan := energy.DefaultPlan()
	if err := decodeJSON(r, &plan, true); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	opt, err := energy.Optimize(plan)
	if err != nil {
		s.writeAppError(w, "Invalid heating plan", err)
		return
	}
	s.recordOptimization("energy")
	s.writeJSON(w, http.StatusOK, opt)
}

// spotHandler returns the live spot price and simulated clock
func (s *HTTPServer) spotHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.simulation.Spot())
}

// Production Line Handlers

// lineHandler returns the live line with its analysis
func (s *HTTPServer) lineHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.simulation.Line())
}

// stationSpeedHandler sets one station's speed
func (s *HTTPServer) stationSpeedHandler(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Speed *int `json:"speed"`
	}
	if err := decodeJSON(r, &request, false); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if request.Speed == nil {
		s.writeError(w, http.StatusBadRequest, "Speed is required", nil)
		return
	}

	snap, err := s.simulation.SetStationSpeed(mux.Vars(r)["id"], *request.Speed)
	if err != nil {
		s.writeAppError(w, "Failed to set station speed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// optimizeLineHandler starts an auto-optimization; it completes on the ramp stream
func (s *HTTPServer) optimizeLineHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.simulation.OptimizeLine(); err != nil {
		s.writeAppError(w, "Failed to optimize line", err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "Line optimization started",
	})
}

func (s *HTTPServer) pauseLineHandler(w http.ResponseWriter, r *http.Request) {
	s.simulation.PauseLine()
	s.writeJSON(w, http.StatusOK, s.simulation.Line())
}

func (s *HTTPServer) resumeLineHandler(w http.ResponseWriter, r *http.Request) {
	s.simulation.ResumeLine()
	s.writeJSON(w, http.StatusOK, s.simulation.Line())
}

func (s *HTTPServer) resetLineHandler(w http.ResponseWriter, r *http.Request) {
	s.simulation.ResetLine()
	s.writeJSON(w, http.StatusOK, s.simulation.Line())
}

// Planning Handlers

type scheduleRequest struct {
	Orders []planning.Order `json:"orders"`
}

// scheduleHandler returns the hand-made schedule with its score
func (s *HTTPServer) scheduleHandler(w http.ResponseWriter, r *http.Request) {
	res, err := planning.Evaluate(planning.BadSchedule())
	if err != nil {
		s.writeAppError(w, "Failed to evaluate schedule", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"machines":   planning.Machines,
		"schedule":   res,
		"by_machine": planning.GroupByMachine(res.Orders),
	})
}

// optimizeScheduleHandler reorders a schedule; no body optimizes the hand-made one
func (s *HTTPServer) optimizeScheduleHandler(w http.ResponseWriter, r *http.Request) {
	var request scheduleRequest
	if err := decodeJSON(r, &request, true); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if request.Orders == nil {
		request.Orders = planning.BadSchedule()
	}

	plan, err := planning.OptimizePlan(request.Orders)
	if err != nil {
		s.writeAppError(w, "Invalid schedule", err)
		return
	}
	s.recordOptimization("planning")
	s.writeJSON(w, http.StatusOK, plan)
}

// evaluateScheduleHandler scores a schedule as given
func (s *HTTPServer) evaluateScheduleHandler(w http.ResponseWriter, r *http.Request) {
	var request scheduleRequest
	if err := decodeJSON(r, &request, false); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := planning.Evaluate(request.Orders)
	if err != nil {
		s.writeAppError(w, "Invalid schedule", err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// Anomaly Handlers

// anomalyStreamHandler returns the signal window, scatter and log
func (s *HTTPServer) anomalyStreamHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.simulation.Anomaly())
}

// setNoiseHandler injects or clears a fault
func (s *HTTPServer) setNoiseHandler(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Noise string `json:"noise"`
	}
	if err := decodeJSON(r, &request, false); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	noise, err := anomaly.ParseNoiseType(request.Noise)
	if err != nil {
		s.writeAppError(w, "Invalid noise type", err)
		return
	}
	s.simulation.SetNoise(noise)
	s.writeJSON(w, http.StatusOK, s.simulation.Anomaly())
}

func (s *HTTPServer) resetAnomalyHandler(w http.ResponseWriter, r *http.Request) {
	s.simulation.ResetAnomaly()
	s.writeJSON(w, http.StatusOK, s.simulation.Anomaly())
}

// Copilot Handlers

// copilotQueryHandler answers a question after the retrieval delay
func (s *HTTPServer) copilotQueryHandler(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Query string `json:"query"`
	}
	if err := decodeJSON(r, &request, false); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start := time.Now()
	resp, err := s.copilot.Query(r.Context(), request.Query)
	if err != nil {
		s.writeAppError(w, "Copilot query failed", err)
		return
	}
	if s.metricsManager != nil {
		s.metricsManager.GetPrometheusMetrics().RecordCopilotQuery(string(resp.SourceType), time.Since(start))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// copilotChatHandler answers a dashboard chat message
func (s *HTTPServer) copilotChatHandler(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &request, false); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	reply, err := s.copilot.Chat(r.Context(), request.Message)
	if err != nil {
		s.writeAppError(w, "Copilot chat failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, reply)
}

func (s *HTTPServer) copilotPromptsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"prompts":        s.copilot.QuickPrompts(),
		"thinking_steps": s.copilot.ThinkingSteps(),
	})
}

// Vision Handlers

func (s *HTTPServer) visionSamplesHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"samples":           s.inspector.Samples(),
		"presets":           s.inspector.Presets(),
		"default_threshold": vision.DefaultThreshold,
	})
}

// visionInspectHandler inspects one sample at ?threshold=, default 0.5
func (s *HTTPServer) visionInspectHandler(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid sample index", err)
		return
	}

	threshold := vision.DefaultThreshold
	if v := r.URL.Query().Get("threshold"); v != "" {
		threshold, err = strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "Invalid threshold", err)
			return
		}
	}

	res, err := s.inspector.Inspect(index, threshold)
	if err != nil {
		s.writeAppError(w, "Inspection failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// Alert Handlers

// listAlertsHandler lists recent alerts, newest first
func (s *HTTPServer) listAlertsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}

	alerts := []*models.Alert{}
	if s.notification != nil {
		alerts = s.notification.RecentAlerts(limit)
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"total":  len(alerts),
	})
}

// testNotificationHandler delivers a synthetic alert on every channel
func (s *HTTPServer) testNotificationHandler(w http.ResponseWriter, r *http.Request) {
	if s.notification == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Notifications are disabled", nil)
		return
	}

	alert := models.NewAlert("test", models.SeverityInfo, 0, "Test bildirimi", "plantsim test notification")
	records, err := s.notification.Send(r.Context(), alert)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, "Failed to send test notification", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Test notification sent successfully",
		"alert_id":      alert.ID,
		"notifications": records,
	})
}

func (s *HTTPServer) recordOptimization(engine string) {
	if s.metricsManager != nil {
		s.metricsManager.GetPrometheusMetrics().RecordOptimization(engine)
	}
}
