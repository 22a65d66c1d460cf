package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType defines the delivery channel of a notification
type NotificationType string

const (
	NotificationTypeWebhook NotificationType = "webhook"
	NotificationTypeLog     NotificationType = "log"
)

// Severity grades an alert
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// SeverityForScore maps a 0..1 anomaly score to a severity
func SeverityForScore(score float64) Severity {
	switch {
	case score >= 0.8:
		return SeverityCritical
	case score >= 0.4:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Alert is raised by a simulation stream when something needs an operator
type Alert struct {
	ID        string                 `json:"id"`
	Stream    string                 `json:"stream"`
	Severity  Severity               `json:"severity"`
	Score     float64                `json:"score"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewAlert creates an alert with a fresh ID
func NewAlert(stream string, severity Severity, score float64, title, message string) *Alert {
	return &Alert{
		ID:        uuid.NewString(),
		Stream:    stream,
		Severity:  severity,
		Score:     score,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
}

// Notification records the delivery of an alert on one channel
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	AlertID   string           `json:"alert_id"`
	Target    string           `json:"target"`
	Status    string           `json:"status"` // sent, failed
	Attempts  int              `json:"attempts"`
	CreatedAt time.Time        `json:"created_at"`
	SentAt    *time.Time       `json:"sent_at,omitempty"`
	Error     *string          `json:"error,omitempty"`
}
