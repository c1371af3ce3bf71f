package monitor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsmonitor/internal/config"
	"github.com/rsmonitor/internal/models"
)

func TestStorageMonitorClean(t *testing.T) {
	dir := t.TempDir()

	m := NewStorageMonitor(config.StorageConfig{
		Path:      dir,
		UploadDir: filepath.Join(dir, "media"),
	}, config.ThresholdConfig{DiskUsagePct: 100, LargeFileMB: 100})

	result := m.Check(context.Background())

	assert.Equal(t, "storage", result.Component)
	assert.False(t, result.HasIssues)
	assert.Greater(t, result.Details["total_gb"].(float64), 0.0)
}

func TestStorageMonitorLowFreeSpace(t *testing.T) {
	dir := t.TempDir()

	// No disk has a petabyte free
	m := NewStorageMonitor(config.StorageConfig{Path: dir},
		config.ThresholdConfig{MinFreeDiskGB: 1 << 20})

	result := m.Check(context.Background())

	require.True(t, result.HasIssues)
	issue := findIssue(t, result, "low_free_space")
	assert.Equal(t, models.SeverityCritical, issue.Severity)
}

func TestStorageMonitorLargeFiles(t *testing.T) {
	dir := t.TempDir()
	uploads := filepath.Join(dir, "media")
	require.NoError(t, os.MkdirAll(uploads, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(uploads, "dump.bin"),
		bytes.Repeat([]byte{0xAB}, 2048), 0644))

	m := NewStorageMonitor(config.StorageConfig{Path: dir, UploadDir: uploads},
		config.ThresholdConfig{LargeFileMB: 0.001})

	result := m.Check(context.Background())

	require.True(t, result.HasIssues)
	issue := findIssue(t, result, "large_files")
	assert.Equal(t, models.SeverityWarning, issue.Severity)
	require.NotNil(t, issue.Value)
	assert.Equal(t, 1.0, *issue.Value)
}
