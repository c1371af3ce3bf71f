package alert

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsmonitor/internal/config"
	"github.com/rsmonitor/internal/models"
)

type fakeDispatcher struct {
	mu     sync.Mutex
	alerts []*models.Alert
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, alert *models.Alert) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, alert)
}

func (f *fakeDispatcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.alerts)
}

func newTestManager(enabled bool) (*Manager, *fakeDispatcher) {
	dispatcher := &fakeDispatcher{}
	cfg := &config.AlertConfig{Enabled: enabled, CooldownMinutes: 15}
	return NewManager(cfg, dispatcher), dispatcher
}

func TestCreateAlwaysNotifyConditionally(t *testing.T) {
	m, dispatcher := newTestManager(true)
	ctx := context.Background()

	m.CreateAlert(ctx, models.SeverityWarning, "queue", "stuck_repairs", "stuck", nil, nil, nil)
	assert.Equal(t, 1, dispatcher.count())

	m.CreateAlert(ctx, models.SeverityWarning, "queue", "stuck_repairs", "still stuck", nil, nil, nil)
	assert.Len(t, m.ActiveAlerts(), 2, "alert is created even while cooling down")
	assert.Equal(t, 1, dispatcher.count(), "notification is suppressed by the cooldown")
}

func TestCreateAlertWithAlertingDisabled(t *testing.T) {
	m, dispatcher := newTestManager(false)

	m.CreateAlert(context.Background(), models.SeverityCritical, "database", "integrity_check_failed", "bad", nil, nil, nil)
	assert.Len(t, m.ActiveAlerts(), 1, "alerts are still recorded")
	assert.Zero(t, dispatcher.count(), "but never notified")
}

func TestProcessResultsStuckRepairs(t *testing.T) {
	m, dispatcher := newTestManager(true)

	threshold := 3.0
	value := 5.0
	results := map[string]models.MonitorResult{
		"queue": {
			Component: "queue",
			HasIssues: true,
			Issues: []models.Issue{{
				Type:      "stuck_repairs",
				Severity:  models.SeverityWarning,
				Message:   "5 stuck",
				Threshold: &threshold,
				Value:     &value,
			}},
		},
	}

	created := m.ProcessResults(context.Background(), results)
	require.Len(t, created, 1)

	alert := created[0]
	assert.Equal(t, models.SeverityWarning, alert.Severity)
	assert.Equal(t, "queue", alert.Component)
	assert.Equal(t, "stuck_repairs", alert.Title)
	assert.Equal(t, "5 stuck", alert.Message)
	require.NotNil(t, alert.ActualValue)
	assert.Equal(t, 5.0, *alert.ActualValue)
	require.NotNil(t, alert.ThresholdValue)
	assert.Equal(t, 3.0, *alert.ThresholdValue)
	assert.Equal(t, "queue", alert.Metadata["monitor"])
	assert.Equal(t, 1, dispatcher.count())
}

func TestProcessResultsDefaults(t *testing.T) {
	tests := []struct {
		component    string
		wantSeverity models.Severity
		wantTitle    string
		wantMessage  string
	}{
		{"database", models.SeverityWarning, "Database Performance Issue", "Database performance issue detected"},
		{"api", models.SeverityWarning, "API Issue", "API performance issue detected"},
		{"queue", models.SeverityWarning, "Queue Issue", "Queue processing issue detected"},
		{"storage", models.SeverityWarning, "Storage Issue", "Storage issue detected"},
		{"activity", models.SeverityInfo, "Activity Issue", "Activity pattern issue detected"},
	}

	for _, tt := range tests {
		t.Run(tt.component, func(t *testing.T) {
			m, _ := newTestManager(true)
			results := map[string]models.MonitorResult{
				tt.component: {HasIssues: true, Issues: []models.Issue{{}}},
			}

			created := m.ProcessResults(context.Background(), results)
			require.Len(t, created, 1)
			assert.Equal(t, tt.wantSeverity, created[0].Severity)
			assert.Equal(t, tt.wantTitle, created[0].Title)
			assert.Equal(t, tt.wantMessage, created[0].Message)
		})
	}
}

func TestProcessResultsStringIssue(t *testing.T) {
	m, _ := newTestManager(true)
	results := map[string]models.MonitorResult{
		"storage": {HasIssues: true, Issues: []models.Issue{models.StringIssue("disk nearly full")}},
	}

	created := m.ProcessResults(context.Background(), results)
	require.Len(t, created, 1)
	assert.Equal(t, "disk nearly full", created[0].Message, "bare string becomes the message")
	assert.Equal(t, "Storage Issue", created[0].Title)
	assert.Equal(t, models.SeverityWarning, created[0].Severity)
	assert.Nil(t, created[0].ActualValue)
}

func TestProcessResultsSkipsCleanAndUnknown(t *testing.T) {
	m, dispatcher := newTestManager(true)
	results := map[string]models.MonitorResult{
		"database":  {HasIssues: false},
		"mainframe": {HasIssues: true, Issues: []models.Issue{models.StringIssue("not a known component")}},
	}

	created := m.ProcessResults(context.Background(), results)
	assert.Empty(t, created)
	assert.Zero(t, dispatcher.count())
}

func TestProcessResultsComponentOrder(t *testing.T) {
	m, _ := newTestManager(true)
	results := map[string]models.MonitorResult{}
	for _, c := range []string{"activity", "storage", "queue", "api", "database"} {
		results[c] = models.MonitorResult{HasIssues: true, Issues: []models.Issue{models.StringIssue(c + " issue")}}
	}

	created := m.ProcessResults(context.Background(), results)
	require.Len(t, created, 5)

	var got []string
	for _, alert := range created {
		got = append(got, alert.Component)
	}
	assert.Equal(t, []string{"database", "api", "queue", "storage", "activity"}, got,
		"aggregation walks components in a fixed order")
}
