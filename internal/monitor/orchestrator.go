package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/rsmonitor/internal/alert"
	"github.com/rsmonitor/internal/models"
)

const (
	DefaultInterval = 60 * time.Second
	MinInterval     = 10 * time.Second

	scoreError    = 50
	scoreDegraded = 75
	scoreHealthy  = 100
)

// Orchestrator runs the probe set on a timer and funnels the results through
// the alert manager. Start and Stop are safe from any goroutine, and the loop
// survives any single bad cycle.
type Orchestrator struct {
	monitors []Monitor
	manager  *alert.Manager
	sem      *semaphore.Weighted
	log      *logrus.Entry

	mutex    sync.Mutex
	running  bool
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}

	metrics tickMetrics
}

type tickMetrics struct {
	mutex        sync.RWMutex
	totalTicks   uint64
	failedChecks uint64
	lastTick     time.Time
	lastDuration time.Duration
}

// Status describes the orchestrator for control endpoints.
type Status struct {
	Running         bool       `json:"running"`
	IntervalSeconds int        `json:"interval_seconds,omitempty"`
	Components      []string   `json:"components"`
	TotalTicks      uint64     `json:"total_ticks"`
	FailedChecks    uint64     `json:"failed_checks"`
	LastTick        *time.Time `json:"last_tick,omitempty"`
	LastDurationMS  float64    `json:"last_duration_ms,omitempty"`
}

func NewOrchestrator(manager *alert.Manager, monitors []Monitor, maxConcurrent int64) *Orchestrator {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	return &Orchestrator{
		monitors: monitors,
		manager:  manager,
		sem:      semaphore.NewWeighted(maxConcurrent),
		log:      logrus.WithField("component", "monitor"),
	}
}

// Start launches the background loop, clamping the interval to its floor and
// falling back to the default when none is given. It reports false without
// touching the loop when one is already running. The first cycle runs right
// away; later cycles follow the ticker.
func (o *Orchestrator) Start(interval time.Duration) bool {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if interval < MinInterval {
		interval = MinInterval
	}

	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.running {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	o.running = true
	o.interval = interval
	o.cancel = cancel
	o.done = make(chan struct{})

	go o.loop(ctx, interval, o.done)

	o.log.Infof("Monitoring started with interval %s", interval)
	return true
}

// Stop cancels the loop and waits for the in-flight cycle to finish. It
// reports false when no loop is running.
func (o *Orchestrator) Stop() bool {
	o.mutex.Lock()
	if !o.running {
		o.mutex.Unlock()
		return false
	}
	o.running = false
	cancel := o.cancel
	done := o.done
	o.cancel = nil
	o.done = nil
	o.mutex.Unlock()

	cancel()
	<-done

	o.log.Info("Monitoring stopped")
	return true
}

// Running reports whether the background loop is active.
func (o *Orchestrator) Running() bool {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.running
}

// Status returns a snapshot of the loop state and cycle counters.
func (o *Orchestrator) Status() Status {
	o.mutex.Lock()
	status := Status{
		Running: o.running,
	}
	if o.running {
		status.IntervalSeconds = int(o.interval / time.Second)
	}
	o.mutex.Unlock()

	for _, m := range o.monitors {
		status.Components = append(status.Components, m.Name())
	}

	o.metrics.mutex.RLock()
	status.TotalTicks = o.metrics.totalTicks
	status.FailedChecks = o.metrics.failedChecks
	if !o.metrics.lastTick.IsZero() {
		last := o.metrics.lastTick
		status.LastTick = &last
		status.LastDurationMS = float64(o.metrics.lastDuration) / float64(time.Millisecond)
	}
	o.metrics.mutex.RUnlock()

	return status
}

func (o *Orchestrator) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	o.tick(ctx)

	for {
		select {
		case <-ticker.C:
			o.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// tick runs one probe cycle. Probe failures degrade their own component and
// nothing else; once cancellation is observed no alert work starts.
func (o *Orchestrator) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	results := o.runChecks(ctx, o.monitors)

	failed := 0
	for name, result := range results {
		if result.Error != "" {
			failed++
			o.log.Warnf("%s check failed: %s", name, result.Error)
		}
	}

	if ctx.Err() == nil {
		created := o.manager.ProcessResults(ctx, results)
		if len(created) > 0 {
			o.log.Infof("Cycle raised %d alerts", len(created))
		}
	}

	o.metrics.mutex.Lock()
	o.metrics.totalTicks++
	o.metrics.failedChecks += uint64(failed)
	o.metrics.lastTick = start
	o.metrics.lastDuration = time.Since(start)
	o.metrics.mutex.Unlock()
}

// runChecks fans the probes out concurrently, capped by the semaphore, and
// joins them all before returning.
func (o *Orchestrator) runChecks(ctx context.Context, monitors []Monitor) map[string]models.MonitorResult {
	results := make(map[string]models.MonitorResult, len(monitors))

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, m := range monitors {
		wg.Add(1)
		go func(m Monitor) {
			defer wg.Done()

			if err := o.sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer o.sem.Release(1)

			result := o.safeCheck(ctx, m)

			mu.Lock()
			results[m.Name()] = result
			mu.Unlock()
		}(m)
	}

	wg.Wait()
	return results
}

// safeCheck shields a cycle from a panicking probe.
func (o *Orchestrator) safeCheck(ctx context.Context, m Monitor) (result models.MonitorResult) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Errorf("%s check panicked: %v", m.Name(), r)
			result = models.ErrorResult(m.Name(), fmt.Errorf("check panicked: %v", r))
		}
	}()
	return m.Check(ctx)
}

// RunOnce executes a single probe cycle synchronously, independent of the
// background loop, and returns the raw results plus the alerts they raised.
func (o *Orchestrator) RunOnce(ctx context.Context) (map[string]models.MonitorResult, []*models.Alert) {
	results := o.runChecks(ctx, o.monitors)
	created := o.manager.ProcessResults(ctx, results)
	return results, created
}

// CheckComponent runs one probe by name, outside the loop.
func (o *Orchestrator) CheckComponent(ctx context.Context, name string) (models.MonitorResult, error) {
	for _, m := range o.monitors {
		if m.Name() == name {
			return o.safeCheck(ctx, m), nil
		}
	}
	return models.MonitorResult{}, fmt.Errorf("unknown monitor: %s", name)
}

// HealthSummary checks the selected components (all when none are named) and
// scores them. The active alert count reflects the registry before this
// cycle's results are processed; processing still happens afterwards so new
// issues raise alerts as usual.
func (o *Orchestrator) HealthSummary(ctx context.Context, components []string, includeDetails bool) models.HealthSummary {
	selected := o.selectMonitors(components)
	results := o.runChecks(ctx, selected)

	summary := models.HealthSummary{
		Components:  make(map[string]models.ComponentHealth, len(results)),
		GeneratedAt: time.Now(),
	}

	total := 0
	for name, result := range results {
		score := healthScore(result)
		summary.Components[name] = models.ComponentHealth{
			Score:  score,
			Status: statusForScore(float64(score)),
		}
		total += score
	}

	if len(results) > 0 {
		summary.Score = float64(total) / float64(len(results))
	} else {
		summary.Score = 100
	}
	summary.Status = statusForScore(summary.Score)
	summary.ActiveAlerts = len(o.manager.ActiveAlerts())

	if includeDetails {
		summary.Results = results
		alertSummary := o.manager.Summary()
		summary.AlertSummary = &alertSummary
	}

	o.manager.ProcessResults(ctx, results)

	return summary
}

func (o *Orchestrator) selectMonitors(components []string) []Monitor {
	if len(components) == 0 {
		return o.monitors
	}
	want := make(map[string]bool, len(components))
	for _, c := range components {
		want[c] = true
	}
	selected := make([]Monitor, 0, len(o.monitors))
	for _, m := range o.monitors {
		if want[m.Name()] {
			selected = append(selected, m)
		}
	}
	return selected
}

// healthScore maps one result to its score: an errored check scores 50, a
// check with issues 75, a clean check 100.
func healthScore(result models.MonitorResult) int {
	if result.Error != "" {
		return scoreError
	}
	if result.HasIssues {
		return scoreDegraded
	}
	return scoreHealthy
}

func statusForScore(score float64) string {
	switch {
	case score >= 90:
		return "healthy"
	case score >= 70:
		return "degraded"
	default:
		return "unhealthy"
	}
}
