package alert

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rsmonitor/internal/config"
	"github.com/rsmonitor/internal/models"
)

// Dispatcher is the slice of the notification layer the manager needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, alert *models.Alert)
}

// componentOrder fixes the order results are aggregated in, which keeps
// alert creation deterministic within a cycle.
var componentOrder = []string{"database", "api", "queue", "storage", "activity"}

type componentDefaults struct {
	severity models.Severity
	title    string
	message  string
}

var defaultsByComponent = map[string]componentDefaults{
	"database": {models.SeverityWarning, "Database Performance Issue", "Database performance issue detected"},
	"api":      {models.SeverityWarning, "API Issue", "API performance issue detected"},
	"queue":    {models.SeverityWarning, "Queue Issue", "Queue processing issue detected"},
	"storage":  {models.SeverityWarning, "Storage Issue", "Storage issue detected"},
	"activity": {models.SeverityInfo, "Activity Issue", "Activity pattern issue detected"},
}

// Manager ties the registry, the cooldown and the notification channels
// together. Alerts are always created; the cooldown only gates whether a
// creation also notifies.
type Manager struct {
	registry   *Registry
	cooldown   *Cooldown
	dispatcher Dispatcher
	log        *logrus.Entry
}

func NewManager(cfg *config.AlertConfig, dispatcher Dispatcher) *Manager {
	return &Manager{
		registry:   NewRegistry(),
		cooldown:   NewCooldown(cfg.Enabled, time.Duration(cfg.CooldownMinutes)*time.Minute),
		dispatcher: dispatcher,
		log:        logrus.WithField("component", "alerts"),
	}
}

// CreateAlert registers a new alert and notifies the channels unless the
// (component, title) pair is still cooling down. The alert exists in the
// registry either way.
func (m *Manager) CreateAlert(ctx context.Context, severity models.Severity, component, title, message string, threshold, actual *float64, metadata map[string]interface{}) *models.Alert {
	alert := m.registry.Create(severity, component, title, message, threshold, actual, metadata)

	if m.cooldown.Allow(component, title) {
		m.dispatcher.Dispatch(ctx, alert)
		m.log.WithFields(logrus.Fields{
			"severity":  severity,
			"component": component,
		}).Infof("Alert created and notified: %s", title)
	} else {
		m.log.Debugf("Alert created, notification suppressed by cooldown: %s/%s", component, title)
	}

	return alert
}

// ProcessResults turns raw monitor results into alerts, walking components in
// a fixed order and skipping entries without issues. Every issue creates an
// alert; metadata carries the monitor name and the raw issue for traceability.
func (m *Manager) ProcessResults(ctx context.Context, results map[string]models.MonitorResult) []*models.Alert {
	var created []*models.Alert

	for _, component := range componentOrder {
		result, ok := results[component]
		if !ok || !result.HasIssues {
			continue
		}

		for _, issue := range result.Issues {
			created = append(created, m.createFromIssue(ctx, component, issue))
		}
	}

	return created
}

func (m *Manager) createFromIssue(ctx context.Context, component string, issue models.Issue) *models.Alert {
	defaults := defaultsByComponent[component]

	severity := defaults.severity
	title := defaults.title
	message := defaults.message

	if issue.IsString() {
		message = issue.Text
	} else {
		if issue.Severity != "" {
			severity = issue.Severity
		}
		if issue.Type != "" {
			title = issue.Type
		}
		if issue.Message != "" {
			message = issue.Message
		}
	}

	metadata := map[string]interface{}{
		"monitor": component,
		"issue":   issue,
	}

	return m.CreateAlert(ctx, severity, component, title, message, issue.Threshold, issue.Value, metadata)
}

// ResolveAlert resolves an active alert by id; unknown ids are a no-op.
func (m *Manager) ResolveAlert(id string) bool {
	return m.registry.Resolve(id)
}

// ActiveAlerts returns a snapshot of the unresolved alerts.
func (m *Manager) ActiveAlerts() []models.Alert {
	return m.registry.Active()
}

// AlertHistory returns recent alert snapshots, most recent first.
func (m *Manager) AlertHistory(limit int) []models.Alert {
	return m.registry.History(limit)
}

// Summary returns the current alert overview.
func (m *Manager) Summary() models.AlertSummary {
	return m.registry.Summary()
}
