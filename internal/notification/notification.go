// Package notification delivers simulation alerts to the log and to an
// optional webhook, off the caller's goroutine.
package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/acd-industrial/plantsim/internal/models"
	"github.com/acd-industrial/plantsim/pkg/utils"
)

// Notifier defines the notification interface
type Notifier interface {
	Start(ctx context.Context) error
	Stop() error
	IsHealthy() bool

	// Notify queues an alert and reports whether it was accepted.
	Notify(alert *models.Alert) bool
	// Send delivers an alert synchronously on every enabled channel.
	Send(ctx context.Context, alert *models.Alert) ([]*models.Notification, error)

	RecentAlerts(limit int) []*models.Alert
	GetStats() *NotificationStats
}

// Recorder receives delivery outcomes, typically Prometheus counters
type Recorder interface {
	RecordNotificationSent(channel, notificationType string, duration time.Duration)
	RecordNotificationFailure(channel, notificationType string)
}

// NotificationManager implements the Notifier interface
type NotificationManager struct {
	config   *NotificationManagerConfig
	logger   *NotificationLogger
	recorder Recorder

	mu      sync.RWMutex
	running bool
	queue   chan *models.Alert
	stop    chan struct{}
	wg      sync.WaitGroup
	recent  []*models.Alert

	webhookSender *WebhookSender

	stats *NotificationStats
}

// NotificationManagerConfig holds notification manager configuration
type NotificationManagerConfig struct {
	NotificationTimeout        time.Duration     `json:"notification_timeout"`
	RetryAttempts              int               `json:"retry_attempts"`
	RetryDelay                 time.Duration     `json:"retry_delay"`
	EnableLogNotifications     bool              `json:"enable_log_notifications"`
	EnableWebhookNotifications bool              `json:"enable_webhook_notifications"`
	WebhookURL                 string            `json:"webhook_url"`
	WebhookHeaders             map[string]string `json:"webhook_headers"`
	MinSeverity                models.Severity   `json:"min_severity"`
	QueueSize                  int               `json:"queue_size"`
	RecentLimit                int               `json:"recent_limit"`
	LogLevel                   string            `json:"log_level"`
}

// NotificationStats provides notification statistics
type NotificationStats struct {
	TotalAlerts              uint64        `json:"total_alerts"`
	TotalNotificationsSent   uint64        `json:"total_notifications_sent"`
	TotalWebhooksSent        uint64        `json:"total_webhooks_sent"`
	TotalNotificationsFailed uint64        `json:"total_notifications_failed"`
	DroppedAlerts            uint64        `json:"dropped_alerts"`
	FilteredAlerts           uint64        `json:"filtered_alerts"`
	AverageResponseTime      time.Duration `json:"average_response_time"`
	QueueLength              int           `json:"queue_length"`
	LastError                *string       `json:"last_error,omitempty"`
	LastErrorTime            *time.Time    `json:"last_error_time,omitempty"`
}

type NotificationHealth struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// NewNotificationManager creates a new notification manager. recorder may be nil.
func NewNotificationManager(config *NotificationManagerConfig, recorder Recorder) *NotificationManager {
	if config.QueueSize <= 0 {
		config.QueueSize = 64
	}
	if config.RecentLimit <= 0 {
		config.RecentLimit = 50
	}

	nm := &NotificationManager{
		config:   config,
		logger:   NewNotificationLogger(config.LogLevel),
		recorder: recorder,
		queue:    make(chan *models.Alert, config.QueueSize),
		stats:    &NotificationStats{},
	}
	nm.webhookSender = NewWebhookSender(config, nm.logger)

	return nm
}

// Start launches the delivery worker
func (nm *NotificationManager) Start(ctx context.Context) error {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	if nm.running {
		return utils.NewAppError(utils.ErrCodeConflict, "Notification manager already running")
	}
	if nm.config.EnableWebhookNotifications {
		if err := ValidateWebhookConfig(nm.webhookConfig()); err != nil {
			return err
		}
	}

	nm.logger.Info("Starting notification manager", map[string]interface{}{
		"log_channel":     nm.config.EnableLogNotifications,
		"webhook_channel": nm.config.EnableWebhookNotifications,
	})
	nm.running = true
	nm.stop = make(chan struct{})

	nm.wg.Add(1)
	go nm.worker(ctx, nm.stop)

	return nil
}

// Stop stops the worker after it finishes the alert in flight
func (nm *NotificationManager) Stop() error {
	nm.mu.Lock()
	if !nm.running {
		nm.mu.Unlock()
		return nil
	}
	nm.running = false
	close(nm.stop)
	nm.mu.Unlock()

	nm.wg.Wait()
	nm.logger.Info("Notification manager stopped")
	return nil
}

// IsHealthy returns whether the notification manager is healthy
func (nm *NotificationManager) IsHealthy() bool {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	return nm.running
}

func (nm *NotificationManager) worker(ctx context.Context, stop <-chan struct{}) {
	defer nm.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case alert := <-nm.queue:
			sendCtx, cancel := context.WithTimeout(ctx, nm.deliveryBudget())
			_, _ = nm.Send(sendCtx, alert)
			cancel()
		}
	}
}

// deliveryBudget bounds one alert including webhook retries.
func (nm *NotificationManager) deliveryBudget() time.Duration {
	attempts := time.Duration(max(nm.config.RetryAttempts, 1))
	return attempts*nm.config.NotificationTimeout + attempts*attempts*nm.config.RetryDelay + time.Second
}

// Notify queues an alert without blocking. Alerts below the configured
// severity are filtered; a stopped manager or a full queue drops the alert.
func (nm *NotificationManager) Notify(alert *models.Alert) bool {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	nm.remember(alert)
	nm.stats.TotalAlerts++

	if !severityAtLeast(alert.Severity, nm.config.MinSeverity) {
		nm.stats.FilteredAlerts++
		return false
	}
	if !nm.running {
		nm.stats.DroppedAlerts++
		nm.logger.Debug("Notification manager not running, alert dropped", map[string]interface{}{
			"alert_id": alert.ID,
			"stream":   alert.Stream,
		})
		return false
	}

	select {
	case nm.queue <- alert:
		return true
	default:
		nm.stats.DroppedAlerts++
		nm.logger.Warn("Notification queue full, alert dropped", map[string]interface{}{
			"alert_id": alert.ID,
			"stream":   alert.Stream,
		})
		return false
	}
}

// Send delivers an alert on every enabled channel and returns one record
// per channel. The error joins all channel failures.
func (nm *NotificationManager) Send(ctx context.Context, alert *models.Alert) ([]*models.Notification, error) {
	var records []*models.Notification
	var errs []error

	if nm.config.EnableLogNotifications {
		start := time.Now()
		nm.logger.LogAlert(alert)
		records = append(records, nm.record(models.NotificationTypeLog, alert, "log", 1, start, nil))
	}

	if nm.config.EnableWebhookNotifications {
		start := time.Now()
		resp := nm.webhookSender.SendWebhook(ctx, nm.webhookConfig(), alert)
		records = append(records, nm.record(models.NotificationTypeWebhook, alert, nm.config.WebhookURL, resp.Attempts, start, resp.Error))
		if resp.Error != nil {
			errs = append(errs, resp.Error)
		}
	}

	return records, errors.Join(errs...)
}

func (nm *NotificationManager) record(kind models.NotificationType, alert *models.Alert, target string, attempts int, start time.Time, err error) *models.Notification {
	now := time.Now()
	n := &models.Notification{
		ID:        uuid.NewString(),
		Type:      kind,
		AlertID:   alert.ID,
		Target:    target,
		Attempts:  attempts,
		CreatedAt: start,
	}

	if err != nil {
		msg := err.Error()
		n.Status = "failed"
		n.Error = &msg
	} else {
		n.Status = "sent"
		n.SentAt = &now
	}

	nm.updateNotificationStats(kind, start, err)
	if nm.recorder != nil {
		if err != nil {
			nm.recorder.RecordNotificationFailure(string(kind), alert.Stream)
		} else {
			nm.recorder.RecordNotificationSent(string(kind), alert.Stream, time.Since(start))
		}
	}
	return n
}

func (nm *NotificationManager) webhookConfig() *WebhookConfig {
	return &WebhookConfig{
		URL:     nm.config.WebhookURL,
		Method:  "POST",
		Headers: nm.config.WebhookHeaders,
	}
}

func (nm *NotificationManager) remember(alert *models.Alert) {
	nm.recent = append(nm.recent, alert)
	if len(nm.recent) > nm.config.RecentLimit {
		nm.recent = nm.recent[len(nm.recent)-nm.config.RecentLimit:]
	}
}

// RecentAlerts returns up to limit alerts, newest first
func (nm *NotificationManager) RecentAlerts(limit int) []*models.Alert {
	nm.mu.RLock()
	defer nm.mu.RUnlock()

	if limit <= 0 || limit > len(nm.recent) {
		limit = len(nm.recent)
	}
	out := make([]*models.Alert, 0, limit)
	for i := len(nm.recent) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, nm.recent[i])
	}
	return out
}

func (nm *NotificationManager) updateNotificationStats(kind models.NotificationType, startTime time.Time, err error) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	nm.stats.TotalNotificationsSent++
	if kind == models.NotificationTypeWebhook && err == nil {
		nm.stats.TotalWebhooksSent++
	}

	if err != nil {
		nm.stats.TotalNotificationsFailed++
		errorStr := err.Error()
		nm.stats.LastError = &errorStr
		now := time.Now()
		nm.stats.LastErrorTime = &now
	}

	responseTime := time.Since(startTime)
	if nm.stats.TotalNotificationsSent == 1 {
		nm.stats.AverageResponseTime = responseTime
	} else {
		nm.stats.AverageResponseTime = (nm.stats.AverageResponseTime + responseTime) / 2
	}
}

// GetStats returns a snapshot of the notification statistics
func (nm *NotificationManager) GetStats() *NotificationStats {
	nm.mu.RLock()
	defer nm.mu.RUnlock()

	stats := *nm.stats
	stats.QueueLength = len(nm.queue)
	return &stats
}

func (nm *NotificationManager) GetHealth() *NotificationHealth {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	health := &NotificationHealth{
		Healthy: nm.running,
	}
	if nm.stats.LastError != nil {
		health.Error = *nm.stats.LastError
	}
	return health
}

var severityRank = map[models.Severity]int{
	models.SeverityInfo:     0,
	models.SeverityWarning:  1,
	models.SeverityCritical: 2,
}

func severityAtLeast(s, min models.Severity) bool {
	if min == "" {
		return true
	}
	return severityRank[s] >= severityRank[min]
}
