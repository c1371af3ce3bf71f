package monitor

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rsmonitor/internal/config"
	"github.com/rsmonitor/internal/models"
)

// ActivityMonitor watches portal usage: user logins, technician activity and
// repairs created today. Its issues are informational, a quiet portal is not
// an outage.
type ActivityMonitor struct {
	db         *gorm.DB
	thresholds config.ThresholdConfig
}

func NewActivityMonitor(db *gorm.DB, thresholds config.ThresholdConfig) *ActivityMonitor {
	return &ActivityMonitor{db: db, thresholds: thresholds}
}

func (m *ActivityMonitor) Name() string { return "activity" }

func (m *ActivityMonitor) Check(ctx context.Context) models.MonitorResult {
	start := time.Now()
	db := m.db.WithContext(ctx)

	var activeMonth int64
	err := db.Raw(`
		SELECT COUNT(*) FROM auth_user
		WHERE last_login > datetime('now', '-30 days')`).Scan(&activeMonth).Error
	if err != nil {
		return models.ErrorResult(m.Name(), fmt.Errorf("user activity query failed: %v", err))
	}

	var activeToday int64
	err = db.Raw(`
		SELECT COUNT(*) FROM auth_user
		WHERE last_login > date('now')`).Scan(&activeToday).Error
	if err != nil {
		return models.ErrorResult(m.Name(), fmt.Errorf("user activity query failed: %v", err))
	}

	var activeTechs int64
	err = db.Raw(`
		SELECT COUNT(DISTINCT t.id)
		FROM technician_portal_technician t
		JOIN auth_user u ON t.user_id = u.id
		WHERE t.is_active = 1 AND u.last_login > date('now')`).Scan(&activeTechs).Error
	if err != nil {
		return models.ErrorResult(m.Name(), fmt.Errorf("technician activity query failed: %v", err))
	}

	var repairsToday int64
	err = db.Raw(`
		SELECT COUNT(*) FROM technician_portal_repair
		WHERE repair_date > date('now')`).Scan(&repairsToday).Error
	if err != nil {
		return models.ErrorResult(m.Name(), fmt.Errorf("repair activity query failed: %v", err))
	}

	window := m.thresholds.InactivityDays
	if window <= 0 {
		window = 7
	}
	cutoff := time.Now().AddDate(0, 0, -window)

	var recentLogins int64
	err = db.Raw(`
		SELECT COUNT(*) FROM auth_user
		WHERE last_login > ?`, cutoff).Scan(&recentLogins).Error
	if err != nil {
		return models.ErrorResult(m.Name(), fmt.Errorf("user activity query failed: %v", err))
	}

	details := map[string]interface{}{
		"active_users_30d":          activeMonth,
		"active_users_today":        activeToday,
		"active_technicians_today":  activeTechs,
		"repairs_today":             repairsToday,
		"logins_in_activity_window": recentLogins,
		"activity_window_days":      window,
	}

	var issues []models.Issue

	if recentLogins == 0 {
		threshold := float64(window)
		value := 0.0
		issues = append(issues, models.Issue{
			Type:      "no_recent_activity",
			Severity:  models.SeverityInfo,
			Message:   fmt.Sprintf("No user has logged in within the last %d days", window),
			Threshold: &threshold,
			Value:     &value,
		})
	}

	if m.thresholds.MinActiveTechs > 0 && activeTechs < int64(m.thresholds.MinActiveTechs) {
		threshold := float64(m.thresholds.MinActiveTechs)
		value := float64(activeTechs)
		issues = append(issues, models.Issue{
			Type:     "low_technician_activity",
			Severity: models.SeverityInfo,
			Message: fmt.Sprintf("Only %d technicians active today, expected at least %d",
				activeTechs, m.thresholds.MinActiveTechs),
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
