package monitor

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/rsmonitor/internal/config"
	"github.com/rsmonitor/internal/models"
)

// StorageMonitor watches the disk holding the portal's data and the size of
// its upload directory.
type StorageMonitor struct {
	path       string
	uploadDir  string
	thresholds config.ThresholdConfig
}

type largeFile struct {
	Path   string  `json:"path"`
	SizeMB float64 `json:"size_mb"`
}

func NewStorageMonitor(cfg config.StorageConfig, thresholds config.ThresholdConfig) *StorageMonitor {
	return &StorageMonitor{path: cfg.Path, uploadDir: cfg.UploadDir, thresholds: thresholds}
}

func (m *StorageMonitor) Name() string { return "storage" }

func (m *StorageMonitor) Check(ctx context.Context) models.MonitorResult {
	start := time.Now()

	usage, err := disk.UsageWithContext(ctx, m.path)
	if err != nil {
		return models.ErrorResult(m.Name(), fmt.Errorf("disk usage check failed for %s: %v", m.path, err))
	}

	freeGB := float64(usage.Free) / (1024 * 1024 * 1024)
	details := map[string]interface{}{
		"path":       m.path,
		"total_gb":   float64(usage.Total) / (1024 * 1024 * 1024),
		"used_gb":    float64(usage.Used) / (1024 * 1024 * 1024),
		"free_gb":    freeGB,
		"used_pct":   usage.UsedPercent,
		"upload_dir": m.uploadDir,
	}

	largeFiles, uploadMB := m.scanUploads()
	details["upload_dir_size_mb"] = uploadMB
	if len(largeFiles) > 0 {
		details["large_files"] = largeFiles
	}

	var issues []models.Issue

	if m.thresholds.DiskUsagePct > 0 && usage.UsedPercent > m.thresholds.DiskUsagePct {
		threshold := m.thresholds.DiskUsagePct
		value := usage.UsedPercent
		issues = append(issues, models.Issue{
			Type:     "high_disk_usage",
			Severity: models.SeverityWarning,
			Message: fmt.Sprintf("Disk usage (%.1f%%) exceeds threshold (%.1f%%)",
				usage.UsedPercent, m.thresholds.DiskUsagePct),
			Threshold: &threshold,
			Value:     &value,
		})
	}

	if m.thresholds.MinFreeDiskGB > 0 && freeGB < m.thresholds.MinFreeDiskGB {
		threshold := m.thresholds.MinFreeDiskGB
		value := freeGB
		issues = append(issues, models.Issue{
			Type:     "low_free_space",
			Severity: models.SeverityCritical,
			Message: fmt.Sprintf("Only %.1fGB free disk space left, threshold is %.1fGB",
				freeGB, m.thresholds.MinFreeDiskGB),
			Threshold: &threshold,
			Value:     &value,
		})
	}

	if len(largeFiles) > 0 {
		threshold := m.thresholds.LargeFileMB
		value := float64(len(largeFiles))
		issues = append(issues, models.Issue{
			Type:     "large_files",
			Severity: models.SeverityWarning,
			Message: fmt.Sprintf("%d files in %s are larger than %.0fMB",
				len(largeFiles), m.uploadDir, m.thresholds.LargeFileMB),
			Threshold: &threshold,
			Value:     &value,
			Details:   map[string]interface{}{"files": largeFiles},
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

// scanUploads walks the upload directory collecting its total size and any
// files over the large file threshold. The directory may not exist yet on a
// fresh install, that is not an error.
func (m *StorageMonitor) scanUploads() ([]largeFile, float64) {
	if m.uploadDir == "" {
		return nil, 0
	}

	var large []largeFile
	var totalBytes int64
	filepath.WalkDir(m.uploadDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		totalBytes += info.Size()
		sizeMB := float64(info.Size()) / (1024 * 1024)
		if m.thresholds.LargeFileMB > 0 && sizeMB > m.thresholds.LargeFileMB {
			large = append(large, largeFile{Path: path, SizeMB: sizeMB})
		}
		return nil
	})

	sort.Slice(large, func(i, j int) bool { return large[i].SizeMB > large[j].SizeMB })
	if len(large) > 20 {
		large = large[:20]
	}
	return large, float64(totalBytes) / (1024 * 1024)
}
