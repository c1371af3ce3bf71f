package models

import (
	"encoding/json"
	"time"
)

// Issue is a single problem reported by a monitor. Monitors may report either
// a bare string or a structured record; both forms round-trip through JSON
// (a string issue marshals as a JSON string, a structured one as an object).
type Issue struct {
	Text      string                 `json:"-"`
	Type      string                 `json:"type,omitempty"`
	Severity  Severity               `json:"severity,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Threshold *float64               `json:"threshold,omitempty"`
	Value     *float64               `json:"value,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// StringIssue wraps a bare message into the string form of Issue.
func StringIssue(text string) Issue {
	return Issue{Text: text}
}

// IsString reports whether the issue is the bare-string form.
func (i Issue) IsString() bool {
	return i.Text != ""
}

func (i Issue) MarshalJSON() ([]byte, error) {
	if i.IsString() {
		return json.Marshal(i.Text)
	}
	type plain Issue
	return json.Marshal(plain(i))
}

func (i *Issue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*i = Issue{Text: s}
		return nil
	}
	type plain Issue
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*i = Issue(p)
	return nil
}

// MonitorResult is the uniform shape every monitor returns from a check.
// A failed check sets Error instead of returning a Go error, so one broken
// component degrades its own score without aborting the cycle.
type MonitorResult struct {
	Component string                 `json:"component"`
	HasIssues bool                   `json:"has_issues"`
	Issues    []Issue                `json:"issues,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	ElapsedMS float64                `json:"elapsed_ms"`
	Timestamp time.Time              `json:"timestamp"`
}

// ErrorResult builds the result for a check that failed outright.
func ErrorResult(component string, err error) MonitorResult {
	return MonitorResult{
		Component: component,
		Error:     err.Error(),
		Timestamp: time.Now(),
	}
}

// ComponentHealth is one component's contribution to the overall summary.
type ComponentHealth struct {
	Score  int    `json:"score"`
	Status string `json:"status"`
}

// HealthSummary is the aggregate health view across all checked components.
// Score is the unweighted mean of the component scores, 100 when nothing
// was checked.
type HealthSummary struct {
	Score        float64                    `json:"score"`
	Status       string                     `json:"status"`
	ActiveAlerts int                        `json:"active_alerts"`
	Components   map[string]ComponentHealth `json:"components"`
	Results      map[string]MonitorResult   `json:"results,omitempty"`
	AlertSummary *AlertSummary              `json:"alert_summary,omitempty"`
	GeneratedAt  time.Time                  `json:"generated_at"`
}
