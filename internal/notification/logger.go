package notification

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/acd-industrial/plantsim/internal/models"
	"github.com/acd-industrial/plantsim/pkg/utils"
)

// NotificationLogger handles logging for notification operations
type NotificationLogger struct {
	entry    *logrus.Entry
	logLevel logrus.Level
}

// NewNotificationLogger creates a new notification logger. Messages above
// logLevel are dropped even when the global logger is more verbose.
func NewNotificationLogger(logLevel string) *NotificationLogger {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}

	return &NotificationLogger{
		entry:    utils.ComponentLogger("notification"),
		logLevel: level,
	}
}

// WithField adds a single field to the logger context
func (nl *NotificationLogger) WithField(key string, value interface{}) *NotificationLogger {
	return &NotificationLogger{
		entry:    nl.entry.WithField(key, value),
		logLevel: nl.logLevel,
	}
}

// Debug logs a debug message
func (nl *NotificationLogger) Debug(message string, context ...map[string]interface{}) {
	nl.log(logrus.DebugLevel, message, context...)
}

// Info logs an info message
func (nl *NotificationLogger) Info(message string, context ...map[string]interface{}) {
	nl.log(logrus.InfoLevel, message, context...)
}

// Warn logs a warning message
func (nl *NotificationLogger) Warn(message string, context ...map[string]interface{}) {
	nl.log(logrus.WarnLevel, message, context...)
}

// Error logs an error message
func (nl *NotificationLogger) Error(message string, context ...map[string]interface{}) {
	nl.log(logrus.ErrorLevel, message, context...)
}

func (nl *NotificationLogger) log(level logrus.Level, message string, context ...map[string]interface{}) {
	// logrus levels grow with verbosity
	if level > nl.logLevel {
		return
	}

	fields := logrus.Fields{}
	for _, ctx := range context {
		for k, v := range ctx {
			fields[k] = v
		}
	}
	nl.entry.WithFields(fields).Log(level, message)
}

// LogAlert writes an alert to the log channel
func (nl *NotificationLogger) LogAlert(alert *models.Alert) {
	ctx := map[string]interface{}{
		"alert_id": alert.ID,
		"stream":   alert.Stream,
		"severity": alert.Severity,
		"score":    alert.Score,
	}

	switch alert.Severity {
	case models.SeverityCritical:
		nl.Error(alert.Message, ctx)
	case models.SeverityWarning:
		nl.Warn(alert.Message, ctx)
	default:
		nl.Info(alert.Message, ctx)
	}
}

// LogWebhookAttempt logs a webhook attempt
func (nl *NotificationLogger) LogWebhookAttempt(url, method string) {
	nl.Debug("Webhook attempt started", map[string]interface{}{
		"url":    url,
		"method": method,
	})
}

// LogWebhookResponse logs a webhook response
func (nl *NotificationLogger) LogWebhookResponse(url string, statusCode int, duration time.Duration, err error) {
	context := map[string]interface{}{
		"url":         url,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}

	if err != nil {
		context["error"] = err.Error()
		nl.Error("Webhook failed", context)
	} else {
		nl.Debug("Webhook completed", context)
	}
}

// LogRetryAttempt logs a retry attempt
func (nl *NotificationLogger) LogRetryAttempt(operation string, attempt int, maxAttempts int, delay time.Duration) {
	nl.Warn("Retrying operation", map[string]interface{}{
		"operation":    operation,
		"attempt":      attempt,
		"max_attempts": maxAttempts,
		"retry_delay":  delay.String(),
	})
}
