package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsmonitor/internal/alert"
	"github.com/rsmonitor/internal/auth"
	"github.com/rsmonitor/internal/config"
	"github.com/rsmonitor/internal/models"
	"github.com/rsmonitor/internal/monitor"
)

type stubMonitor struct {
	name   string
	issues bool
}

func (s stubMonitor) Name() string { return s.name }

func (s stubMonitor) Check(ctx context.Context) models.MonitorResult {
	result := models.MonitorResult{Component: s.name, Timestamp: time.Now()}
	if s.issues {
		result.HasIssues = true
		result.Issues = []models.Issue{{
			Type:     "stuck_repairs",
			Severity: models.SeverityWarning,
			Message:  "5 repairs have been in the queue for more than 24 hours",
		}}
	}
	return result
}

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(ctx context.Context, alert *models.Alert) {}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authenticator := auth.New(config.ServerConfig{
		JWTSecret:     "test-secret",
		AdminUser:     "admin",
		AdminPassword: "s3cret",
	})

	manager := alert.NewManager(&config.AlertConfig{Enabled: true, CooldownMinutes: 15}, noopDispatcher{})
	orchestrator := monitor.NewOrchestrator(manager, []monitor.Monitor{
		stubMonitor{name: "database"},
		stubMonitor{name: "queue", issues: true},
	}, 2)

	server := NewServer(orchestrator, manager, authenticator)

	token, err := authenticator.GenerateToken("admin")
	require.NoError(t, err)
	return server, token
}

func doRequest(s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealthzIsPublic(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/v1/auth/login", "",
		gin.H{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(s, http.MethodPost, "/api/v1/auth/login", "",
		gin.H{"username": "admin", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])
}

func TestAuthRequired(t *testing.T) {
	s, token := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/api/v1/monitoring/status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(s, http.MethodGet, "/api/v1/monitoring/status", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(s, http.MethodGet, "/api/v1/monitoring/status", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthSummaryEndpoint(t *testing.T) {
	s, token := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/api/v1/health/summary?details=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary models.HealthSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))

	assert.InDelta(t, 87.5, summary.Score, 0.01)
	assert.Equal(t, "degraded", summary.Status)
	assert.Len(t, summary.Components, 2)
	assert.NotNil(t, summary.Results)
	assert.NotNil(t, summary.AlertSummary)
}

func TestHealthSummaryComponentFilter(t *testing.T) {
	s, token := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/api/v1/health/summary?components=database", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary models.HealthSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))

	assert.Len(t, summary.Components, 1)
	assert.Contains(t, summary.Components, "database")
	assert.Equal(t, "healthy", summary.Status)
}

func TestCheckMonitorEndpoint(t *testing.T) {
	s, token := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/api/v1/monitors/queue", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.MonitorResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "queue", result.Component)
	assert.True(t, result.HasIssues)

	w = doRequest(s, http.MethodGet, "/api/v1/monitors/mainframe", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "unknown monitor: mainframe")
}

func TestAlertLifecycle(t *testing.T) {
	s, token := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/v1/alerts", token, gin.H{
		"severity":  "urgent",
		"component": "database",
		"title":     "Manual Alert",
		"message":   "something is off",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(s, http.MethodPost, "/api/v1/alerts", token, gin.H{
		"severity":     "critical",
		"component":    "database",
		"title":        "Manual Alert",
		"message":      "something is off",
		"actual_value": 12.5,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Alert
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, models.SeverityCritical, created.Severity)

	w = doRequest(s, http.MethodGet, "/api/v1/alerts?severity=critical", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Alerts []models.Alert `json:"alerts"`
		Count  int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, 1, listing.Count)

	w = doRequest(s, http.MethodGet, "/api/v1/alerts?severity=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(s, http.MethodPut, "/api/v1/alerts/"+created.ID+"/resolve", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(s, http.MethodPut, "/api/v1/alerts/"+created.ID+"/resolve", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(s, http.MethodGet, "/api/v1/alerts/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, 1, listing.Count)

	w = doRequest(s, http.MethodGet, "/api/v1/alerts/summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary models.AlertSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 0, summary.ActiveCount)
}

func TestAlertHistoryInvalidLimit(t *testing.T) {
	s, token := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/api/v1/alerts/history?limit=many", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMonitoringControl(t *testing.T) {
	s, token := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/v1/monitoring/start", token,
		gin.H{"interval_seconds": 30})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"interval_seconds":30`)

	w = doRequest(s, http.MethodPost, "/api/v1/monitoring/start", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(s, http.MethodGet, "/api/v1/monitoring/status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status monitor.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.Running)
	assert.Equal(t, 30, status.IntervalSeconds)

	w = doRequest(s, http.MethodPost, "/api/v1/monitoring/stop", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(s, http.MethodPost, "/api/v1/monitoring/stop", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
