package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rsmonitor/internal/models"
)

const defaultBaseURL = "http://localhost:8080"

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// MonitoringStatus mirrors the monitoring status endpoint's response.
type MonitoringStatus struct {
	Running         bool       `json:"running"`
	IntervalSeconds int        `json:"interval_seconds"`
	Components      []string   `json:"components"`
	TotalTicks      uint64     `json:"total_ticks"`
	FailedChecks    uint64     `json:"failed_checks"`
	LastTick        *time.Time `json:"last_tick"`
	LastDurationMS  float64    `json:"last_duration_ms"`
}

func NewClient() (*Client, error) {
	baseURL := os.Getenv("RSMONITOR_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	token := os.Getenv("RSMONITOR_API_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("RSMONITOR_API_TOKEN environment variable is not set, run the login command first")
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Login exchanges operator credentials for a token. It needs no client
// because every other call requires the token it returns.
func Login(username, password string) (string, error) {
	baseURL := os.Getenv("RSMONITOR_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", fmt.Errorf("failed to marshal credentials: %v", err)
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}
	resp, err := httpClient.Post(strings.TrimRight(baseURL, "/")+"/api/v1/auth/login",
		"application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return "", fmt.Errorf("API error: %s", errResp.Error)
		}
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %v", err)
	}
	return out.Token, nil
}

func (c *Client) HealthSummary(components []string, details bool) (*models.HealthSummary, error) {
	query := url.Values{}
	if details {
		query.Set("details", "true")
	}
	if len(components) > 0 {
		query.Set("components", strings.Join(components, ","))
	}

	endpoint := "/api/v1/health/summary"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var summary models.HealthSummary
	if err := c.get(endpoint, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) CheckMonitor(name string) (*models.MonitorResult, error) {
	var result models.MonitorResult
	if err := c.get(fmt.Sprintf("/api/v1/monitors/%s", name), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListAlerts(severity, component string) ([]models.Alert, error) {
	query := url.Values{}
	if severity != "" {
		query.Set("severity", severity)
	}
	if component != "" {
		query.Set("component", component)
	}

	endpoint := "/api/v1/alerts"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var resp struct {
		Alerts []models.Alert `json:"alerts"`
		Count  int            `json:"count"`
	}
	if err := c.get(endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Alerts, nil
}

func (c *Client) ResolveAlert(alertID string) error {
	return c.put(fmt.Sprintf("/api/v1/alerts/%s/resolve", alertID), nil, nil)
}

func (c *Client) AlertHistory(limit int) ([]models.Alert, error) {
	endpoint := "/api/v1/alerts/history"
	if limit > 0 {
		endpoint += fmt.Sprintf("?limit=%d", limit)
	}

	var resp struct {
		Alerts []models.Alert `json:"alerts"`
		Count  int            `json:"count"`
	}
	if err := c.get(endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Alerts, nil
}

func (c *Client) AlertSummary() (*models.AlertSummary, error) {
	var summary models.AlertSummary
	if err := c.get("/api/v1/alerts/summary", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// StartMonitoring starts the background loop and returns the interval the
// server settled on.
func (c *Client) StartMonitoring(intervalSeconds int) (int, error) {
	data := map[string]int{}
	if intervalSeconds > 0 {
		data["interval_seconds"] = intervalSeconds
	}

	var resp struct {
		Message         string `json:"message"`
		IntervalSeconds int    `json:"interval_seconds"`
	}
	if err := c.post("/api/v1/monitoring/start", data, &resp); err != nil {
		return 0, err
	}
	return resp.IntervalSeconds, nil
}

func (c *Client) StopMonitoring() error {
	return c.post("/api/v1/monitoring/stop", nil, nil)
}

func (c *Client) MonitoringStatus() (*MonitoringStatus, error) {
	var status MonitoringStatus
	if err := c.get("/api/v1/monitoring/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) get(endpoint string, v interface{}) error {
	resp, err := c.doRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *Client) post(endpoint string, data, v interface{}) error {
	return c.send(http.MethodPost, endpoint, data, v)
}

func (c *Client) put(endpoint string, data, v interface{}) error {
	return c.send(http.MethodPut, endpoint, data, v)
}

func (c *Client) send(method, endpoint string, data, v interface{}) error {
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %v", err)
		}
		body = bytes.NewReader(jsonData)
	}

	resp, err := c.doRequest(method, endpoint, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if v != nil {
		return json.NewDecoder(resp.Body).Decode(v)
	}
	return nil
}

func (c *Client) doRequest(method, endpoint string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("API error: %s", errResp.Error)
		}
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	return resp, nil
}
