package alert

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rsmonitor/internal/models"
)

const historyLimit = 1000

// Registry owns the set of active alerts and a bounded FIFO history of every
// alert ever created. History entries are snapshots taken at creation time;
// resolving an alert later does not rewrite its history copy.
type Registry struct {
	mutex      sync.RWMutex
	active     map[string]*models.Alert
	history    []models.Alert
	maxHistory int
}

func NewRegistry() *Registry {
	return &Registry{
		active:     make(map[string]*models.Alert),
		maxHistory: historyLimit,
	}
}

// Create allocates a new alert, inserts it into the active set and appends a
// snapshot to history, evicting the oldest entry at capacity. Creation never
// consults the cooldown; callers gate the notification step, not this one.
func (r *Registry) Create(severity models.Severity, component, title, message string, threshold, actual *float64, metadata map[string]interface{}) *models.Alert {
	alert := &models.Alert{
		ID:             uuid.NewString(),
		Severity:       severity,
		Component:      component,
		Title:          title,
		Message:        message,
		ThresholdValue: threshold,
		ActualValue:    actual,
		Metadata:       metadata,
		CreatedAt:      time.Now(),
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.active[alert.ID] = alert
	r.history = append(r.history, *alert)
	if len(r.history) > r.maxHistory {
		r.history = r.history[len(r.history)-r.maxHistory:]
	}

	return alert
}

// Resolve marks an active alert resolved and removes it from the active set.
// An unknown or already resolved id is a no-op, not an error.
func (r *Registry) Resolve(id string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	alert, ok := r.active[id]
	if !ok {
		return false
	}

	now := time.Now()
	alert.IsResolved = true
	alert.ResolvedAt = &now
	delete(r.active, id)

	return true
}

// Active returns a snapshot of the unresolved alerts in unspecified order.
func (r *Registry) Active() []models.Alert {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]models.Alert, 0, len(r.active))
	for _, alert := range r.active {
		out = append(out, *alert)
	}
	return out
}

// History returns up to limit history snapshots, most recent first. A limit
// of zero or less returns the whole buffer.
func (r *Registry) History(limit int) []models.Alert {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if limit <= 0 || limit > len(r.history) {
		limit = len(r.history)
	}
	out := make([]models.Alert, 0, limit)
	for i := len(r.history) - 1; i >= len(r.history)-limit; i-- {
		out = append(out, r.history[i])
	}
	return out
}

// Summary derives the current alert overview. It is computed on every call,
// never cached.
func (r *Registry) Summary() models.AlertSummary {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	summary := models.AlertSummary{
		ActiveCount: len(r.active),
		SeverityBreakdown: map[models.Severity]int{
			models.SeverityCritical: 0,
			models.SeverityWarning:  0,
			models.SeverityInfo:     0,
		},
		ComponentBreakdown: make(map[string]int),
		GeneratedAt:        time.Now(),
	}

	var mostRecent *models.Alert
	for _, alert := range r.active {
		summary.SeverityBreakdown[alert.Severity]++
		summary.ComponentBreakdown[alert.Component]++
		if mostRecent == nil || alert.CreatedAt.After(mostRecent.CreatedAt) {
			mostRecent = alert
		}
	}
	if mostRecent != nil {
		snapshot := *mostRecent
		summary.MostRecent = &snapshot
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	for _, alert := range r.history {
		if alert.CreatedAt.After(cutoff) {
			summary.AlertsLast24h++
		}
	}

	return summary
}
