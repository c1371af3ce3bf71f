package monitor

import (
	"context"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/rsmonitor/internal/config"
	"github.com/rsmonitor/internal/models"
)

// DatabaseMonitor watches the portal's SQLite database: connectivity,
// response time, file size and integrity.
type DatabaseMonitor struct {
	db         *gorm.DB
	dbPath     string
	thresholds config.ThresholdConfig
}

func NewDatabaseMonitor(db *gorm.DB, dbPath string, thresholds config.ThresholdConfig) *DatabaseMonitor {
	return &DatabaseMonitor{db: db, dbPath: dbPath, thresholds: thresholds}
}

func (m *DatabaseMonitor) Name() string { return "database" }

func (m *DatabaseMonitor) Check(ctx context.Context) models.MonitorResult {
	start := time.Now()

	var one int
	if err := m.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		return models.ErrorResult(m.Name(), fmt.Errorf("connectivity check failed: %v", err))
	}
	responseMS := float64(time.Since(start)) / float64(time.Millisecond)

	details := map[string]interface{}{
		"database_path":    m.dbPath,
		"response_time_ms": responseMS,
	}

	var sizeMB float64
	if info, err := os.Stat(m.dbPath); err == nil {
		sizeMB = float64(info.Size()) / (1024 * 1024)
		details["database_size_mb"] = sizeMB
	}

	var integrity string
	if err := m.db.WithContext(ctx).Raw("PRAGMA quick_check").Scan(&integrity).Error; err == nil {
		details["integrity"] = integrity
	}

	if counts := m.tableCounts(ctx); counts != nil {
		details["table_counts"] = counts
	}

	var issues []models.Issue

	if m.thresholds.DBResponseMS > 0 && responseMS > m.thresholds.DBResponseMS {
		threshold := m.thresholds.DBResponseMS
		value := responseMS
		issues = append(issues, models.Issue{
			Type:      "slow_database_response",
			Severity:  models.SeverityWarning,
			Message:   fmt.Sprintf("Database response time (%.0fms) exceeds threshold (%.0fms)", value, threshold),
			Threshold: &threshold,
			Value:     &value,
		})
	}

	if m.thresholds.DBSizeMB > 0 && sizeMB > m.thresholds.DBSizeMB {
		threshold := m.thresholds.DBSizeMB
		value := sizeMB
		issues = append(issues, models.Issue{
			Type:      "database_too_large",
			Severity:  models.SeverityWarning,
			Message:   fmt.Sprintf("Database size (%.1fMB) exceeds threshold (%.1fMB)", value, threshold),
			Threshold: &threshold,
			Value:     &value,
		})
	}

	if integrity != "" && integrity != "ok" {
		issues = append(issues, models.Issue{
			Type:     "integrity_check_failed",
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("SQLite quick_check reported: %s", integrity),
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

func (m *DatabaseMonitor) tableCounts(ctx context.Context) map[string]int64 {
	var tables []string
	if err := m.db.WithContext(ctx).
		Raw("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'").
		Scan(&tables).Error; err != nil {
		return nil
	}

	counts := make(map[string]int64, len(tables))
	for _, table := range tables {
		var n int64
		if err := m.db.WithContext(ctx).Table(table).Count(&n).Error; err != nil {
			continue
		}
		counts[table] = n
	}
	return counts
}
