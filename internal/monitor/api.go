package monitor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rsmonitor/internal/config"
	"github.com/rsmonitor/internal/models"
)

// APIMonitor probes the portal's HTTP endpoints and tracks latency and
// failure rate across them.
type APIMonitor struct {
	client     *http.Client
	baseURL    string
	endpoints  []string
	thresholds config.ThresholdConfig
}

type endpointResult struct {
	Endpoint   string  `json:"endpoint"`
	OK         bool    `json:"ok"`
	StatusCode int     `json:"status_code,omitempty"`
	ElapsedMS  float64 `json:"elapsed_ms"`
	Error      string  `json:"error,omitempty"`
}

func NewAPIMonitor(cfg config.APIProbeConfig, thresholds config.ThresholdConfig) *APIMonitor {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &APIMonitor{
		client:     &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		endpoints:  cfg.Endpoints,
		thresholds: thresholds,
	}
}

func (m *APIMonitor) Name() string { return "api" }

func (m *APIMonitor) Check(ctx context.Context) models.MonitorResult {
	start := time.Now()

	if len(m.endpoints) == 0 {
		return models.MonitorResult{
			Component: m.Name(),
			Details:   map[string]interface{}{"note": "no endpoints configured"},
			ElapsedMS: float64(time.Since(start)) / float64(time.Millisecond),
			Timestamp: time.Now(),
		}
	}

	results := make([]endpointResult, 0, len(m.endpoints))
	failures := 0
	var totalMS float64
	for _, endpoint := range m.endpoints {
		r := m.probe(ctx, endpoint)
		if !r.OK {
			failures++
		}
		totalMS += r.ElapsedMS
		results = append(results, r)
	}

	errorRate := float64(failures) / float64(len(results)) * 100
	avgMS := totalMS / float64(len(results))

	details := map[string]interface{}{
		"base_url":         m.baseURL,
		"endpoints":        results,
		"error_rate_pct":   errorRate,
		"avg_response_ms":  avgMS,
		"failed_endpoints": failures,
	}

	var issues []models.Issue

	if failures == len(results) {
		value := float64(failures)
		issues = append(issues, models.Issue{
			Type:     "api_unreachable",
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("All %d API endpoints at %s are failing", failures, m.baseURL),
			Value:    &value,
		})
	} else if m.thresholds.APIErrorRatePct > 0 && errorRate > m.thresholds.APIErrorRatePct {
		threshold := m.thresholds.APIErrorRatePct
		value := errorRate
		issues = append(issues, models.Issue{
			Type:     "high_error_rate",
			Severity: models.SeverityWarning,
			Message: fmt.Sprintf("API error rate (%.1f%%) exceeds threshold (%.1f%%)",
				errorRate, m.thresholds.APIErrorRatePct),
			Threshold: &threshold,
			Value:     &value,
		})
	}

	if failures < len(results) && m.thresholds.APIResponseMS > 0 && avgMS > m.thresholds.APIResponseMS {
		threshold := m.thresholds.APIResponseMS
		value := avgMS
		issues = append(issues, models.Issue{
			Type:     "slow_api_response",
			Severity: models.SeverityWarning,
			Message: fmt.Sprintf("Average API response time (%.0fms) exceeds threshold (%.0fms)",
				avgMS, m.thresholds.APIResponseMS),
			Threshold: &threshold,
			Value:     &value,
		})
	}

	return models.MonitorResult{
		Component: m.Name(),
		HasIssues: len(issues) > 0,
		Issues:    issues,
		Details:   details,
		ElapsedMS: float64(time.Since(start)) / float64(time.Millisecond),
		Timestamp: time.Now(),
	}
}

func (m *APIMonitor) probe(ctx context.Context, endpoint string) endpointResult {
	url := m.baseURL + endpoint
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return endpointResult{Endpoint: endpoint, Error: err.Error()}
	}

	resp, err := m.client.Do(req)
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)
	if err != nil {
		return endpointResult{Endpoint: endpoint, ElapsedMS: elapsed, Error: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	return endpointResult{
		Endpoint:   endpoint,
		OK:         resp.StatusCode < http.StatusInternalServerError,
		StatusCode: resp.StatusCode,
		ElapsedMS:  elapsed,
	}
}
