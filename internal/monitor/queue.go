package monitor

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rsmonitor/internal/config"
	"github.com/rsmonitor/internal/models"
)

// QueueMonitor watches the repair queue: backlog depth, stuck repairs,
// per-technician load and weekly throughput.
type QueueMonitor struct {
	db         *gorm.DB
	thresholds config.ThresholdConfig
}

func NewQueueMonitor(db *gorm.DB, thresholds config.ThresholdConfig) *QueueMonitor {
	return &QueueMonitor{db: db, thresholds: thresholds}
}

func (m *QueueMonitor) Name() string { return "queue" }

type queueStatusRow struct {
	QueueStatus string  `json:"queue_status"`
	Count       int     `json:"count"`
	AvgAgeHours float64 `json:"avg_age_hours"`
}

type stuckRepairRow struct {
	ID          uint    `json:"id"`
	UnitNumber  string  `json:"unit_number"`
	QueueStatus string  `json:"queue_status"`
	StuckHours  float64 `json:"stuck_hours"`
}

type technicianLoadRow struct {
	TechnicianID   uint   `json:"technician_id"`
	TechnicianName string `json:"technician_name"`
	TotalRepairs   int    `json:"total_repairs"`
	InProgress     int    `json:"in_progress"`
	Pending        int    `json:"pending"`
}

type throughputRow struct {
	TotalRequests    int `json:"total_requests"`
	TotalCompletions int `json:"total_completions"`
}

func (m *QueueMonitor) Check(ctx context.Context) models.MonitorResult {
	start := time.Now()
	db := m.db.WithContext(ctx)

	var statuses []queueStatusRow
	err := db.Raw(`
		SELECT queue_status,
		       COUNT(*) AS count,
		       AVG((julianday('now') - julianday(repair_date)) * 24) AS avg_age_hours
		FROM technician_portal_repair
		WHERE queue_status != ?
		GROUP BY queue_status`, models.RepairCompleted).Scan(&statuses).Error
	if err != nil {
		return models.ErrorResult(m.Name(), fmt.Errorf("queue status query failed: %v", err))
	}

	var stuck []stuckRepairRow
	err = db.Raw(`
		SELECT id, unit_number, queue_status,
		       (julianday('now') - julianday(repair_date)) * 24 AS stuck_hours
		FROM technician_portal_repair
		WHERE queue_status NOT IN (?, ?)
		  AND (julianday('now') - julianday(repair_date)) * 24 > ?
		ORDER BY stuck_hours DESC`,
		models.RepairCompleted, models.RepairDenied, m.thresholds.QueueStuckHours).
		Scan(&stuck).Error
	if err != nil {
		return models.ErrorResult(m.Name(), fmt.Errorf("stuck repair query failed: %v", err))
	}

	var load []technicianLoadRow
	err = db.Raw(`
		SELECT t.id AS technician_id,
		       u.username AS technician_name,
		       COUNT(r.id) AS total_repairs,
		       SUM(CASE WHEN r.queue_status = ? THEN 1 ELSE 0 END) AS in_progress,
		       SUM(CASE WHEN r.queue_status = ? THEN 1 ELSE 0 END) AS pending
		FROM technician_portal_technician t
		JOIN auth_user u ON t.user_id = u.id
		LEFT JOIN technician_portal_repair r
		  ON t.id = r.technician_id AND r.queue_status NOT IN (?, ?)
		GROUP BY t.id, u.username
		HAVING COUNT(r.id) > 0
		ORDER BY total_repairs DESC`,
		models.RepairInProgress, models.RepairPending,
		models.RepairCompleted, models.RepairDenied).
		Scan(&load).Error
	if err != nil {
		return models.ErrorResult(m.Name(), fmt.Errorf("technician load query failed: %v", err))
	}

	var throughput throughputRow
	err = db.Raw(`
		WITH daily_stats AS (
		    SELECT DATE(repair_date) AS date,
		           SUM(CASE WHEN queue_status = ? THEN 1 ELSE 0 END) AS new_requests,
		           SUM(CASE WHEN queue_status = ? THEN 1 ELSE 0 END) AS completed_repairs
		    FROM technician_portal_repair
		    WHERE repair_date > datetime('now', '-7 days')
		    GROUP BY DATE(repair_date)
		)
		SELECT COALESCE(SUM(new_requests), 0) AS total_requests,
		       COALESCE(SUM(completed_repairs), 0) AS total_completions
		FROM daily_stats`,
		models.RepairRequested, models.RepairCompleted).
		Scan(&throughput).Error
	if err != nil {
		return models.ErrorResult(m.Name(), fmt.Errorf("throughput query failed: %v", err))
	}

	totalQueued := 0
	pending := 0
	for _, row := range statuses {
		totalQueued += row.Count
		if row.QueueStatus == models.RepairPending || row.QueueStatus == models.RepairRequested {
			pending += row.Count
		}
	}

	completionRate := 0.0
	if throughput.TotalRequests > 0 {
		completionRate = float64(throughput.TotalCompletions) / float64(throughput.TotalRequests) * 100
	}

	details := map[string]interface{}{
		"status_breakdown": statuses,
		"total_queued":     totalQueued,
		"stuck_repairs":    stuck,
		"technician_load":  load,
		"throughput_7d": map[string]interface{}{
			"new_requests":        throughput.TotalRequests,
			"completed_repairs":   throughput.TotalCompletions,
			"completion_rate_pct": completionRate,
		},
	}

	var issues []models.Issue

	if len(stuck) > 0 {
		threshold := float64(m.thresholds.QueueStuckHours)
		value := float64(len(stuck))
		issues = append(issues, models.Issue{
			Type:     "stuck_repairs",
			Severity: models.SeverityWarning,
			Message: fmt.Sprintf("%d repairs have been in the queue for more than %d hours",
				len(stuck), m.thresholds.QueueStuckHours),
			Threshold: &threshold,
			Value:     &value,
			Details:   map[string]interface{}{"repairs": stuck},
		})
	}

	if m.thresholds.QueueDepth > 0 && totalQueued > m.thresholds.QueueDepth {
		threshold := float64(m.thresholds.QueueDepth)
		value := float64(totalQueued)
		issues = append(issues, models.Issue{
			Type:     "high_queue_depth",
			Severity: models.SeverityWarning,
			Message: fmt.Sprintf("Queue depth (%d) exceeds threshold (%d)",
				totalQueued, m.thresholds.QueueDepth),
			Threshold: &threshold,
			Value:     &value,
		})
	}

	if m.thresholds.PendingRepairs > 0 && pending > m.thresholds.PendingRepairs {
		threshold := float64(m.thresholds.PendingRepairs)
		value := float64(pending)
		issues = append(issues, models.Issue{
			Type:     "high_pending_count",
			Severity: models.SeverityWarning,
			Message: fmt.Sprintf("%d repairs are awaiting approval, threshold is %d",
				pending, m.thresholds.PendingRepairs),
			Threshold: &threshold,
			Value:     &value,
		})
	}

	if throughput.TotalRequests > 0 && completionRate < m.thresholds.CompletionRatePct {
		threshold := m.thresholds.CompletionRatePct
		value := completionRate
		issues = append(issues, models.Issue{
			Type:     "low_completion_rate",
			Severity: models.SeverityCritical,
			Message: fmt.Sprintf("Completion rate over the last 7 days is %.1f%%, threshold is %.0f%%",
				completionRate, m.thresholds.CompletionRatePct),
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
