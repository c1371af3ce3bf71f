package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rsmonitor/internal/models"
)

func TestRenderHealthSummary(t *testing.T) {
	threshold := 3.0
	value := 5.0
	summary := &models.HealthSummary{
		Score:        87.5,
		Status:       "degraded",
		ActiveAlerts: 1,
		Components: map[string]models.ComponentHealth{
			"database": {Score: 100, Status: "healthy"},
			"queue":    {Score: 75, Status: "degraded"},
		},
		Results: map[string]models.MonitorResult{
			"database": {Component: "database"},
			"queue": {
				Component: "queue",
				HasIssues: true,
				Issues: []models.Issue{{
					Type:      "stuck_repairs",
					Severity:  models.SeverityWarning,
					Message:   "5 repairs have been in the queue for more than 24 hours",
					Threshold: &threshold,
					Value:     &value,
				}},
			},
		},
		GeneratedAt: time.Now(),
	}

	text := RenderHealthSummary(summary)

	assert.Contains(t, text, "# System Health Report")
	assert.Contains(t, text, "Overall: **degraded** (score 87.5)")
	assert.Contains(t, text, "| database | 100 | healthy |")
	assert.Contains(t, text, "| queue | 75 | degraded |")
	assert.Contains(t, text, "### queue")
	assert.Contains(t, text, "[warning] 5 repairs have been in the queue for more than 24 hours")
	assert.NotContains(t, text, "### database", "clean components list no issues")
}

func TestRenderAlertSummary(t *testing.T) {
	now := time.Now()
	summary := &models.AlertSummary{
		ActiveCount: 2,
		SeverityBreakdown: map[models.Severity]int{
			models.SeverityCritical: 1,
			models.SeverityWarning:  1,
			models.SeverityInfo:     0,
		},
		ComponentBreakdown: map[string]int{"queue": 2},
		AlertsLast24h:      4,
		MostRecent: &models.Alert{
			Severity:  models.SeverityCritical,
			Component: "queue",
			Title:     "Queue Issue",
			CreatedAt: now,
		},
		GeneratedAt: now,
	}

	text := RenderAlertSummary(summary)

	assert.Contains(t, text, "Active alerts: 2")
	assert.Contains(t, text, "Alerts last 24h: 4")
	assert.Contains(t, text, "- critical: 1")
	assert.Contains(t, text, "- info: 0")
	assert.Contains(t, text, "- queue: 2")
	assert.Contains(t, text, "Most recent: [critical] queue: Queue Issue")
}

func TestIssueLine(t *testing.T) {
	assert.Equal(t, "High pending repair count", IssueLine(models.StringIssue("High pending repair count")))

	assert.Equal(t, "[critical] All endpoints failing", IssueLine(models.Issue{
		Type:     "api_unreachable",
		Severity: models.SeverityCritical,
		Message:  "All endpoints failing",
	}))

	assert.Equal(t, "stuck_repairs", IssueLine(models.Issue{Type: "stuck_repairs"}))
}
