package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsmonitor/internal/config"
	"github.com/rsmonitor/internal/models"
)

func findIssue(t *testing.T, result models.MonitorResult, issueType string) models.Issue {
	t.Helper()
	for _, issue := range result.Issues {
		if issue.Type == issueType {
			return issue
		}
	}
	t.Fatalf("issue %q not found in %v", issueType, result.Issues)
	return models.Issue{}
}

func TestAPIMonitorHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewAPIMonitor(config.APIProbeConfig{
		BaseURL:        srv.URL,
		Endpoints:      []string{"/api/health/", "/api/repairs/"},
		TimeoutSeconds: 2,
	}, config.ThresholdConfig{APIResponseMS: 2000, APIErrorRatePct: 5})

	result := m.Check(context.Background())

	assert.Equal(t, "api", result.Component)
	assert.False(t, result.HasIssues)
	assert.Empty(t, result.Issues)
	assert.Equal(t, 0, result.Details["failed_endpoints"])
}

func TestAPIMonitorUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	m := NewAPIMonitor(config.APIProbeConfig{
		BaseURL:        srv.URL,
		Endpoints:      []string{"/a", "/b"},
		TimeoutSeconds: 1,
	}, config.ThresholdConfig{APIErrorRatePct: 5})

	result := m.Check(context.Background())

	require.True(t, result.HasIssues)
	require.Len(t, result.Issues, 1)
	issue := findIssue(t, result, "api_unreachable")
	assert.Equal(t, models.SeverityCritical, issue.Severity)
}

func TestAPIMonitorErrorRate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/fail", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m := NewAPIMonitor(config.APIProbeConfig{
		BaseURL:        srv.URL,
		Endpoints:      []string{"/ok", "/fail"},
		TimeoutSeconds: 2,
	}, config.ThresholdConfig{APIErrorRatePct: 5})

	result := m.Check(context.Background())

	require.True(t, result.HasIssues)
	issue := findIssue(t, result, "high_error_rate")
	assert.Equal(t, models.SeverityWarning, issue.Severity)
	require.NotNil(t, issue.Value)
	assert.InDelta(t, 50.0, *issue.Value, 0.01)
}

func TestAPIMonitorNoEndpoints(t *testing.T) {
	m := NewAPIMonitor(config.APIProbeConfig{BaseURL: "http://localhost:1"}, config.ThresholdConfig{})

	result := m.Check(context.Background())

	assert.False(t, result.HasIssues)
	assert.Equal(t, "no endpoints configured", result.Details["note"])
}
