package genai

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Status represents the health state of the model endpoint.
type Status int

const (
	StatusHealthy   Status = iota // Endpoint is working normally
	StatusDegraded                // Endpoint is slow or failing often
	StatusThrottled               // Endpoint is rate limiting
)

func (s Status) String() string {
	switch s {
	case StatusDegraded:
		return "degraded"
	case StatusThrottled:
		return "throttled"
	default:
		return "healthy"
	}
}

// MonitorStats holds monitoring statistics for the endpoint.
type MonitorStats struct {
	Status         string        `json:"status"`
	AverageLatency time.Duration `json:"average_latency"`
	Successes      int           `json:"successes"`
	Failures       int           `json:"failures"`
	Throttles      int           `json:"throttles"`
	ErrorRate      float64       `json:"error_rate"` // over the last window
	LastSuccessAt  time.Time     `json:"last_success_at"`
	LastFailureAt  time.Time     `json:"last_failure_at"`
	RetryAfter     time.Duration `json:"retry_after"`
}

// Monitor tracks endpoint latency, failures and rate limiting.
type Monitor struct {
	mu sync.RWMutex

	recentLatencies  []time.Duration
	maxLatencyWindow int

	successes     int
	failures      int
	throttles     int
	lastSuccessAt time.Time
	lastFailureAt time.Time

	lastThrottleTime   time.Time
	retryAfterDuration time.Duration

	// Sliding window
	outcomes       []outcome
	windowDuration time.Duration

	slowResponseThreshold time.Duration
	degradedThreshold     float64
	minSamples            int

	now func() time.Time
}

type outcome struct {
	at     time.Time
	failed bool
}

// NewMonitor creates a new monitor with default settings.
func NewMonitor() *Monitor {
	return &Monitor{
		recentLatencies:       make([]time.Duration, 0, 100),
		maxLatencyWindow:      100,
		slowResponseThreshold: 20 * time.Second, // vision calls are slow
		degradedThreshold:     0.3,
		minSamples:            10,
		outcomes:              make([]outcome, 0),
		windowDuration:        time.Hour,
		now:                   time.Now,
	}
}

// RecordSuccess records a successful attempt with its latency.
func (m *Monitor) RecordSuccess(latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.successes++
	m.lastSuccessAt = now
	m.recordOutcomeLocked(now, false)
	m.recentLatencies = append(m.recentLatencies, latency)
	if len(m.recentLatencies) > m.maxLatencyWindow {
		m.recentLatencies = m.recentLatencies[1:]
	}
}

// RecordFailure records a failed attempt.
func (m *Monitor) RecordFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.failures++
	m.lastFailureAt = now
	m.recordOutcomeLocked(now, true)
}

// RecordThrottle records a 429 answer. retryAfter is the raw Retry-After header.
func (m *Monitor) RecordThrottle(retryAfter string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.failures++
	m.throttles++
	m.lastFailureAt = now
	m.lastThrottleTime = now
	m.retryAfterDuration = parseRetryAfter(retryAfter)
	m.recordOutcomeLocked(now, true)
}

// recordOutcomeLocked appends an attempt and drops those outside the window.
func (m *Monitor) recordOutcomeLocked(now time.Time, failed bool) {
	m.outcomes = append(m.outcomes, outcome{at: now, failed: failed})

	cutoff := now.Add(-m.windowDuration)
	i := 0
	for i < len(m.outcomes) && !m.outcomes[i].at.After(cutoff) {
		i++
	}
	if i > 0 {
		m.outcomes = append(m.outcomes[:0], m.outcomes[i:]...)
	}
}

// windowLocked counts attempts and failures recorded within the window.
func (m *Monitor) windowLocked() (total, failed int) {
	cutoff := m.now().Add(-m.windowDuration)
	for _, o := range m.outcomes {
		if !o.at.After(cutoff) {
			continue
		}
		total++
		if o.failed {
			failed++
		}
	}
	return total, failed
}

// Status returns the current status of the endpoint.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statusLocked()
}

func (m *Monitor) statusLocked() Status {
	if m.throttles > 0 && m.now().Sub(m.lastThrottleTime) < m.retryAfterDuration {
		return StatusThrottled
	}

	total, failed := m.windowLocked()
	if total >= m.minSamples && float64(failed)/float64(total) > m.degradedThreshold {
		return StatusDegraded
	}

	if len(m.recentLatencies) >= m.minSamples && m.averageLatencyLocked() > m.slowResponseThreshold {
		return StatusDegraded
	}

	return StatusHealthy
}

func (m *Monitor) averageLatencyLocked() time.Duration {
	if len(m.recentLatencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, lat := range m.recentLatencies {
		total += lat
	}
	return total / time.Duration(len(m.recentLatencies))
}

// Stats returns current monitoring statistics.
func (m *Monitor) Stats() MonitorStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := MonitorStats{
		Status:         m.statusLocked().String(),
		AverageLatency: m.averageLatencyLocked(),
		Successes:      m.successes,
		Failures:       m.failures,
		Throttles:      m.throttles,
		LastSuccessAt:  m.lastSuccessAt,
		LastFailureAt:  m.lastFailureAt,
	}
	if total, failed := m.windowLocked(); total > 0 {
		stats.ErrorRate = float64(failed) / float64(total)
	}
	if remaining := m.retryAfterDuration - m.now().Sub(m.lastThrottleTime); m.throttles > 0 && remaining > 0 {
		stats.RetryAfter = remaining
	}
	return stats
}

// parseRetryAfter accepts delta-seconds or an HTTP date; defaults to one minute.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return time.Minute
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
		return 0
	}
	return time.Minute
}
