package monitor

import (
	"context"

	"github.com/rsmonitor/internal/models"
)

// Monitor inspects one subsystem of the monitored application. Check never
// returns a Go error; a failed check reports through the result's Error
// field so one broken component cannot abort a cycle.
type Monitor interface {
	Name() string
	Check(ctx context.Context) models.MonitorResult
}
