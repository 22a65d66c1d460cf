package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acd-industrial/plantsim/internal/models"
)

type fakeRecorder struct {
	mu     sync.Mutex
	sent   map[string]int
	failed map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{sent: map[string]int{}, failed: map[string]int{}}
}

func (r *fakeRecorder) RecordNotificationSent(channel, _ string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent[channel]++
}

func (r *fakeRecorder) RecordNotificationFailure(channel, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[channel]++
}

func testConfig(url string) *NotificationManagerConfig {
	return &NotificationManagerConfig{
		NotificationTimeout:        time.Second,
		RetryAttempts:              3,
		RetryDelay:                 time.Millisecond,
		EnableLogNotifications:     true,
		EnableWebhookNotifications: url != "",
		WebhookURL:                 url,
		LogLevel:                   "panic",
	}
}

func testAlert(sev models.Severity) *models.Alert {
	return models.NewAlert("anomaly", sev, 0.9, "Anomali", "Ani Sinyal Sıçraması")
}

func TestSendDeliversWebhookPayload(t *testing.T) {
	var got WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "secret", r.Header.Get("X-Token"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.WebhookHeaders = map[string]string{"X-Token": "secret"}
	rec := newFakeRecorder()
	nm := NewNotificationManager(cfg, rec)

	alert := testAlert(models.SeverityCritical)
	records, err := nm.Send(context.Background(), alert)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, models.NotificationTypeLog, records[0].Type)
	assert.Equal(t, models.NotificationTypeWebhook, records[1].Type)
	assert.Equal(t, "sent", records[1].Status)
	assert.Equal(t, 1, records[1].Attempts)
	assert.Equal(t, alert.ID, got.Alert.ID)
	assert.Equal(t, "plantsim", got.Source)

	stats := nm.GetStats()
	assert.Equal(t, uint64(2), stats.TotalNotificationsSent)
	assert.Equal(t, uint64(1), stats.TotalWebhooksSent)
	assert.Equal(t, 1, rec.sent["webhook"])
	assert.Equal(t, 1, rec.sent["log"])
}

func TestSendRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	nm := NewNotificationManager(testConfig(srv.URL), nil)
	records, err := nm.Send(context.Background(), testAlert(models.SeverityWarning))
	require.NoError(t, err)
	assert.Equal(t, 3, records[1].Attempts)
	assert.EqualValues(t, 3, calls.Load())
}

func TestSendReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	rec := newFakeRecorder()
	nm := NewNotificationManager(testConfig(srv.URL), rec)
	records, err := nm.Send(context.Background(), testAlert(models.SeverityCritical))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status: 500")
	assert.Equal(t, "failed", records[1].Status)
	assert.Equal(t, 3, records[1].Attempts)

	stats := nm.GetStats()
	assert.Equal(t, uint64(1), stats.TotalNotificationsFailed)
	require.NotNil(t, stats.LastError)
	assert.Equal(t, 1, rec.failed["webhook"])
	assert.NotEmpty(t, nm.GetHealth().Error)
}

func TestNotifyIsDeliveredByWorker(t *testing.T) {
	delivered := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p WebhookPayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		delivered <- p.Alert.ID
	}))
	defer srv.Close()

	nm := NewNotificationManager(testConfig(srv.URL), nil)
	require.NoError(t, nm.Start(context.Background()))
	assert.True(t, nm.IsHealthy())

	alert := testAlert(models.SeverityCritical)
	assert.True(t, nm.Notify(alert))

	select {
	case id := <-delivered:
		assert.Equal(t, alert.ID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("alert was not delivered")
	}

	require.NoError(t, nm.Stop())
	assert.False(t, nm.IsHealthy())
}

func TestStartTwiceFails(t *testing.T) {
	nm := NewNotificationManager(testConfig(""), nil)
	require.NoError(t, nm.Start(context.Background()))
	defer nm.Stop()
	assert.Error(t, nm.Start(context.Background()))
}

func TestStartRejectsWebhookWithoutURL(t *testing.T) {
	cfg := testConfig("")
	cfg.EnableWebhookNotifications = true
	nm := NewNotificationManager(cfg, nil)
	assert.Error(t, nm.Start(context.Background()))
}

func TestNotifyDropsWhenStopped(t *testing.T) {
	cfg := testConfig("")
	cfg.MinSeverity = models.SeverityWarning
	nm := NewNotificationManager(cfg, nil)

	assert.False(t, nm.Notify(testAlert(models.SeverityInfo)))
	assert.False(t, nm.Notify(testAlert(models.SeverityCritical)))

	require.NoError(t, nm.Start(context.Background()))
	require.NoError(t, nm.Stop())
	assert.False(t, nm.Notify(testAlert(models.SeverityWarning)))

	stats := nm.GetStats()
	assert.Equal(t, uint64(3), stats.TotalAlerts)
	assert.Equal(t, uint64(1), stats.FilteredAlerts)
	assert.Equal(t, uint64(2), stats.DroppedAlerts)
	assert.Zero(t, stats.QueueLength)

	// dropped alerts still show up in the recent list
	recent := nm.RecentAlerts(2)
	require.Len(t, recent, 2)
	assert.Equal(t, models.SeverityWarning, recent[0].Severity)
}

func TestNotifyDropsWhenQueueFull(t *testing.T) {
	received := make(chan struct{}, 1)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- struct{}{}
		<-release
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.RetryAttempts = 1
	cfg.QueueSize = 1
	nm := NewNotificationManager(cfg, nil)
	require.NoError(t, nm.Start(context.Background()))

	// the worker holds the first alert while the webhook blocks
	assert.True(t, nm.Notify(testAlert(models.SeverityCritical)))
	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not called")
	}

	assert.True(t, nm.Notify(testAlert(models.SeverityCritical)))
	assert.False(t, nm.Notify(testAlert(models.SeverityCritical)))
	assert.Equal(t, uint64(1), nm.GetStats().DroppedAlerts)
	assert.Equal(t, 1, nm.GetStats().QueueLength)

	close(release)
	require.NoError(t, nm.Stop())
}

func TestRecentAlertsBounded(t *testing.T) {
	cfg := testConfig("")
	cfg.RecentLimit = 3
	nm := NewNotificationManager(cfg, nil)
	for i := 0; i < 5; i++ {
		nm.Notify(testAlert(models.SeverityInfo))
	}
	assert.Len(t, nm.RecentAlerts(0), 3)
}

func TestCalculateRetryDelay(t *testing.T) {
	cfg := &WebhookRetryConfig{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second, Backoff: "exponential"}
	assert.Equal(t, 100*time.Millisecond, calculateRetryDelay(cfg, 2))
	assert.Equal(t, 200*time.Millisecond, calculateRetryDelay(cfg, 3))
	assert.Equal(t, time.Second, calculateRetryDelay(cfg, 10))

	cfg.Backoff = "linear"
	assert.Equal(t, 200*time.Millisecond, calculateRetryDelay(cfg, 3))

	cfg.Backoff = "fixed"
	assert.Equal(t, 100*time.Millisecond, calculateRetryDelay(cfg, 5))
}

func TestValidateWebhookConfig(t *testing.T) {
	assert.Error(t, ValidateWebhookConfig(&WebhookConfig{}))

	cfg := &WebhookConfig{URL: "http://example.invalid"}
	require.NoError(t, ValidateWebhookConfig(cfg))
	assert.Equal(t, http.MethodPost, cfg.Method)
	assert.NotNil(t, cfg.Headers)
}
