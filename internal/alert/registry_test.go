package alert

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsmonitor/internal/models"
)

func TestRegistryCreate(t *testing.T) {
	r := NewRegistry()

	threshold := 3.0
	actual := 5.0
	alert := r.Create(models.SeverityWarning, "queue", "stuck_repairs", "5 repairs stuck",
		&threshold, &actual, map[string]interface{}{"monitor": "queue"})

	require.NotEmpty(t, alert.ID)
	assert.False(t, alert.IsResolved)
	assert.Nil(t, alert.ResolvedAt)
	assert.WithinDuration(t, time.Now(), alert.CreatedAt, time.Second)

	active := r.Active()
	require.Len(t, active, 1)
	assert.Equal(t, alert.ID, active[0].ID)

	second := r.Create(models.SeverityWarning, "queue", "stuck_repairs", "still stuck", nil, nil, nil)
	assert.NotEqual(t, alert.ID, second.ID, "ids must be unique")
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	alert := r.Create(models.SeverityCritical, "database", "integrity_check_failed", "bad page", nil, nil, nil)

	require.True(t, r.Resolve(alert.ID))
	assert.Empty(t, r.Active(), "resolved alert leaves the active set")

	history := r.History(0)
	require.Len(t, history, 1, "resolved alert stays in history")
	assert.False(t, history[0].IsResolved, "history keeps the creation-time snapshot")

	assert.False(t, r.Resolve(alert.ID), "second resolve is a no-op")
	assert.False(t, r.Resolve("no-such-id"), "unknown id is a no-op")
	assert.Empty(t, r.Active())
}

func TestRegistryHistoryEviction(t *testing.T) {
	r := NewRegistry()
	r.maxHistory = 3

	for i := 0; i < 5; i++ {
		r.Create(models.SeverityInfo, "activity", fmt.Sprintf("issue_%d", i), "msg", nil, nil, nil)
	}

	history := r.History(0)
	require.Len(t, history, 3, "history never exceeds its capacity")
	assert.Equal(t, "issue_4", history[0].Title, "most recent first")
	assert.Equal(t, "issue_2", history[2].Title, "oldest entries evicted")
}

func TestRegistryHistoryLimit(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 4; i++ {
		r.Create(models.SeverityInfo, "activity", fmt.Sprintf("issue_%d", i), "msg", nil, nil, nil)
	}

	history := r.History(2)
	require.Len(t, history, 2)
	assert.Equal(t, "issue_3", history[0].Title)
	assert.Equal(t, "issue_2", history[1].Title)
}

func TestRegistrySummary(t *testing.T) {
	r := NewRegistry()
	r.Create(models.SeverityCritical, "database", "integrity_check_failed", "bad page", nil, nil, nil)
	r.Create(models.SeverityWarning, "queue", "stuck_repairs", "stuck", nil, nil, nil)
	last := r.Create(models.SeverityWarning, "queue", "high_queue_depth", "deep", nil, nil, nil)

	summary := r.Summary()
	assert.Equal(t, 3, summary.ActiveCount)
	assert.Equal(t, 1, summary.SeverityBreakdown[models.SeverityCritical])
	assert.Equal(t, 2, summary.SeverityBreakdown[models.SeverityWarning])
	assert.Equal(t, 0, summary.SeverityBreakdown[models.SeverityInfo])
	assert.Equal(t, 2, summary.ComponentBreakdown["queue"])
	assert.Equal(t, 1, summary.ComponentBreakdown["database"])
	assert.Equal(t, 3, summary.AlertsLast24h)
	require.NotNil(t, summary.MostRecent)
	assert.Equal(t, last.ID, summary.MostRecent.ID)
	assert.WithinDuration(t, time.Now(), summary.GeneratedAt, time.Second)
}

func TestRegistrySummaryEmpty(t *testing.T) {
	summary := NewRegistry().Summary()

	assert.Zero(t, summary.ActiveCount)
	assert.Nil(t, summary.MostRecent)
	assert.Zero(t, summary.AlertsLast24h)
	assert.Equal(t, 0, summary.SeverityBreakdown[models.SeverityCritical], "breakdown keys always present")
}
