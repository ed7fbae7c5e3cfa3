package health

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/fridgechef/internal/genai"
)

const checkInterval = 10 * time.Second

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Health(ctx context.Context) error
}

// ModelStats exposes the executor's endpoint statistics.
type ModelStats interface {
	Stats() genai.MonitorStats
}

type dependency struct {
	name     string
	pinger   Pinger
	critical bool
}

// Monitor aggregates health status from the model endpoint and storage.
type Monitor struct {
	model      ModelStats
	deps       []dependency
	lastCheck  time.Time
	lastReport HealthReport
	now        func() time.Time
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor.
func NewMonitor(model ModelStats) *Monitor {
	return &Monitor{
		model: model,
		now:   time.Now,
	}
}

// AddDependency registers a pinged component. A failing critical dependency
// makes the whole system critical; otherwise it only degrades it.
func (m *Monitor) AddDependency(name string, p Pinger, critical bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deps = append(m.deps, dependency{name: name, pinger: p, critical: critical})
	m.lastCheck = time.Time{}
}

// CheckHealth returns the current report, rechecking at most every 10s.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.lastCheck.IsZero() && m.now().Sub(m.lastCheck) < checkInterval {
		return m.lastReport
	}

	report := HealthReport{
		SystemStatus: StatusHealthy,
		Components:   make(map[string]ComponentHealth),
	}

	if m.model != nil {
		stats := m.model.Stats()
		c := ComponentHealth{Name: "genai", Status: StatusHealthy, Details: stats}
		// Throttling and errors slow answers down but the API still works
		if stats.Status != genai.StatusHealthy.String() {
			c.Status = StatusDegraded
		}
		report.Components[c.Name] = c
		report.SystemStatus = worst(report.SystemStatus, c.Status)
	}

	for _, d := range m.deps {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := d.pinger.Health(pingCtx)
		cancel()

		c := ComponentHealth{Name: d.name, Status: StatusHealthy}
		if err != nil {
			c.Error = err.Error()
			c.Status = StatusDegraded
			if d.critical {
				c.Status = StatusCritical
			}
		}
		report.Components[c.Name] = c
		report.SystemStatus = worst(report.SystemStatus, c.Status)
	}

	m.lastCheck = m.now()
	m.lastReport = report
	return report
}
