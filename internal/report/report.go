// Package report renders health and alert summaries as markdown text, for
// the CLI and for the text format of the summary endpoints.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rsmonitor/internal/models"
)

// RenderHealthSummary renders the aggregate health view. With details
// present (Results populated) each component's issues are listed.
func RenderHealthSummary(summary *models.HealthSummary) string {
	var b strings.Builder

	b.WriteString("# System Health Report\n\n")
	fmt.Fprintf(&b, "Overall: **%s** (score %.1f)\n", summary.Status, summary.Score)
	fmt.Fprintf(&b, "Active alerts: %d\n", summary.ActiveAlerts)
	fmt.Fprintf(&b, "Generated: %s\n\n", summary.GeneratedAt.Format(time.RFC3339))

	if len(summary.Components) > 0 {
		b.WriteString("| Component | Score | Status |\n")
		b.WriteString("|-----------|-------|--------|\n")
		for _, name := range sortedKeys(summary.Components) {
			health := summary.Components[name]
			fmt.Fprintf(&b, "| %s | %d | %s |\n", name, health.Score, health.Status)
		}
	}

	if len(summary.Results) > 0 {
		issues := renderIssues(summary.Results)
		if issues != "" {
			b.WriteString("\n## Issues\n")
			b.WriteString(issues)
		}
	}

	if summary.AlertSummary != nil {
		b.WriteString("\n")
		b.WriteString(RenderAlertSummary(summary.AlertSummary))
	}

	return b.String()
}

// RenderAlertSummary renders the registry counts.
func RenderAlertSummary(summary *models.AlertSummary) string {
	var b strings.Builder

	b.WriteString("# Alert Summary\n\n")
	fmt.Fprintf(&b, "Active alerts: %d\n", summary.ActiveCount)
	fmt.Fprintf(&b, "Alerts last 24h: %d\n\n", summary.AlertsLast24h)

	b.WriteString("## By severity\n")
	for _, severity := range []models.Severity{models.SeverityCritical, models.SeverityWarning, models.SeverityInfo} {
		fmt.Fprintf(&b, "- %s: %d\n", severity, summary.SeverityBreakdown[severity])
	}

	if len(summary.ComponentBreakdown) > 0 {
		b.WriteString("\n## By component\n")
		components := make([]string, 0, len(summary.ComponentBreakdown))
		for name := range summary.ComponentBreakdown {
			components = append(components, name)
		}
		sort.Strings(components)
		for _, name := range components {
			fmt.Fprintf(&b, "- %s: %d\n", name, summary.ComponentBreakdown[name])
		}
	}

	if summary.MostRecent != nil {
		fmt.Fprintf(&b, "\nMost recent: [%s] %s: %s (%s)\n",
			summary.MostRecent.Severity,
			summary.MostRecent.Component,
			summary.MostRecent.Title,
			summary.MostRecent.CreatedAt.Format(time.RFC3339),
		)
	}

	return b.String()
}

func renderIssues(results map[string]models.MonitorResult) string {
	var b strings.Builder

	for _, name := range sortedResultKeys(results) {
		result := results[name]
		if result.Error == "" && len(result.Issues) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n### %s\n", name)
		if result.Error != "" {
			fmt.Fprintf(&b, "- check failed: %s\n", result.Error)
		}
		for _, issue := range result.Issues {
			fmt.Fprintf(&b, "- %s\n", IssueLine(issue))
		}
	}

	return b.String()
}

// IssueLine renders one issue in either of its two forms.
func IssueLine(issue models.Issue) string {
	if issue.IsString() {
		return issue.Text
	}

	line := issue.Message
	if line == "" {
		line = issue.Type
	}
	if issue.Severity != "" {
		return fmt.Sprintf("[%s] %s", issue.Severity, line)
	}
	return line
}

func sortedKeys(components map[string]models.ComponentHealth) []string {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedResultKeys(results map[string]models.MonitorResult) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
