package models

import (
	"time"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ValidSeverity reports whether s is one of the known severity levels.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// Alert represents one notifiable condition raised against a monitored
// component. Alerts live in memory only; they do not survive a restart.
type Alert struct {
	ID             string                 `json:"id"`
	Severity       Severity               `json:"severity"`
	Component      string                 `json:"component"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	ThresholdValue *float64               `json:"threshold_value,omitempty"`
	ActualValue    *float64               `json:"actual_value,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	ResolvedAt     *time.Time             `json:"resolved_at,omitempty"`
	IsResolved     bool                   `json:"is_resolved"`
}

// AlertSummary is a point-in-time view over the alert registry, computed on
// demand and never cached.
type AlertSummary struct {
	ActiveCount        int              `json:"active_count"`
	SeverityBreakdown  map[Severity]int `json:"severity_breakdown"`
	ComponentBreakdown map[string]int   `json:"component_breakdown"`
	AlertsLast24h      int              `json:"alerts_last_24h"`
	MostRecent         *Alert           `json:"most_recent,omitempty"`
	GeneratedAt        time.Time        `json:"generated_at"`
}
