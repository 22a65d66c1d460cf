package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/acd-industrial/plantsim/internal/models"
	"github.com/acd-industrial/plantsim/pkg/utils"
)

// WebhookSender handles webhook notifications
type WebhookSender struct {
	config     *NotificationManagerConfig
	logger     *NotificationLogger
	httpClient *http.Client
}

// WebhookConfig defines webhook configuration
type WebhookConfig struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
}

// WebhookPayload defines the webhook payload structure
type WebhookPayload struct {
	Alert     *models.Alert `json:"alert"`
	Timestamp time.Time     `json:"timestamp"`
	Source    string        `json:"source"`
	Type      string        `json:"type"`
	Version   string        `json:"version"`
}

// WebhookRetryConfig defines retry configuration for webhooks
type WebhookRetryConfig struct {
	MaxAttempts int           `json:"max_attempts"`
	BaseDelay   time.Duration `json:"base_delay"`
	MaxDelay    time.Duration `json:"max_delay"`
	Backoff     string        `json:"backoff"` // linear, exponential
}

// WebhookResponse represents a webhook response
type WebhookResponse struct {
	StatusCode   int           `json:"status_code"`
	ResponseTime time.Duration `json:"response_time"`
	Success      bool          `json:"success"`
	Attempts     int           `json:"attempts"`
	Error        error         `json:"error,omitempty"`
	Body         string        `json:"body,omitempty"`
}

// NewWebhookSender creates a new webhook sender
func NewWebhookSender(config *NotificationManagerConfig, logger *NotificationLogger) *WebhookSender {
	return &WebhookSender{
		config: config,
		logger: logger.WithField("channel", "webhook"),
		httpClient: &http.Client{
			Timeout: config.NotificationTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

// SendWebhook posts an alert and retries on failure
func (ws *WebhookSender) SendWebhook(ctx context.Context, config *WebhookConfig, alert *models.Alert) *WebhookResponse {
	ws.logger.LogWebhookAttempt(config.URL, config.Method)

	payload := &WebhookPayload{
		Alert:     alert,
		Timestamp: time.Now(),
		Source:    "plantsim",
		Type:      "alert",
		Version:   "1.0",
	}

	response := ws.sendWebhookWithRetry(ctx, config, payload)
	ws.logger.LogWebhookResponse(config.URL, response.StatusCode, response.ResponseTime, response.Error)
	return response
}

func (ws *WebhookSender) sendWebhookWithRetry(ctx context.Context, config *WebhookConfig, payload *WebhookPayload) *WebhookResponse {
	retryConfig := &WebhookRetryConfig{
		MaxAttempts: ws.config.RetryAttempts,
		BaseDelay:   ws.config.RetryDelay,
		MaxDelay:    30 * time.Second,
		Backoff:     "exponential",
	}
	if retryConfig.MaxAttempts < 1 {
		retryConfig.MaxAttempts = 1
	}

	var lastResponse *WebhookResponse

	for attempt := 1; attempt <= retryConfig.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := calculateRetryDelay(retryConfig, attempt)
			ws.logger.LogRetryAttempt("webhook", attempt, retryConfig.MaxAttempts, delay)

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return &WebhookResponse{Attempts: attempt - 1, Error: ctx.Err()}
			}
		}

		response := ws.sendSingleWebhook(ctx, config, payload)
		response.Attempts = attempt
		lastResponse = response

		if response.Success {
			return response
		}
	}

	return lastResponse
}

func (ws *WebhookSender) sendSingleWebhook(ctx context.Context, config *WebhookConfig, payload *WebhookPayload) *WebhookResponse {
	startTime := time.Now()
	response := &WebhookResponse{}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		response.Error = utils.NewAppError(utils.ErrCodeInternal, "Failed to marshal webhook payload", err.Error())
		return response
	}

	req, err := http.NewRequestWithContext(ctx, config.Method, config.URL, bytes.NewReader(jsonData))
	if err != nil {
		response.Error = utils.NewAppError(utils.ErrCodeNotification, "Failed to create webhook request", err.Error())
		return response
	}
	setRequestHeaders(req, config.Headers)

	resp, err := ws.httpClient.Do(req)
	response.ResponseTime = time.Since(startTime)
	if err != nil {
		response.Error = utils.NewAppError(utils.ErrCodeNotification, "Failed to send webhook", err.Error())
		return response
	}
	defer resp.Body.Close()

	response.StatusCode = resp.StatusCode

	// first KiB only
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	response.Body = string(body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		response.Success = true
	} else {
		response.Error = utils.NewAppError(utils.ErrCodeNotification,
			"Webhook returned non-success status",
			fmt.Sprintf("status: %d, body: %s", resp.StatusCode, response.Body))
	}

	return response
}

func setRequestHeaders(req *http.Request, headers map[string]string) {
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", "PlantSim/1.0")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	req.Header.Set("X-Timestamp", fmt.Sprintf("%d", time.Now().Unix()))
	req.Header.Set("X-Request-ID", uuid.NewString())
}

// calculateRetryDelay calculates the delay before the given attempt
func calculateRetryDelay(config *WebhookRetryConfig, attempt int) time.Duration {
	var delay time.Duration

	switch config.Backoff {
	case "exponential":
		// base, 2*base, 4*base, ...
		delay = time.Duration(int64(config.BaseDelay) << uint(attempt-2))
	case "linear":
		delay = time.Duration(int64(config.BaseDelay) * int64(attempt-1))
	default:
		delay = config.BaseDelay
	}

	if delay > config.MaxDelay {
		delay = config.MaxDelay
	}

	return delay
}

// ValidateWebhookConfig fills defaults and checks the URL
func ValidateWebhookConfig(config *WebhookConfig) error {
	if config.URL == "" {
		return utils.NewAppError(utils.ErrCodeValidation, "Webhook URL is required")
	}

	if config.Method == "" {
		config.Method = http.MethodPost
	}

	if config.Headers == nil {
		config.Headers = make(map[string]string)
	}

	return nil
}
