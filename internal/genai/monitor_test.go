package genai

import (
	"testing"
	"time"
)

func newFixedMonitor(now *time.Time) *Monitor {
	m := NewMonitor()
	m.now = func() time.Time { return *now }
	return m
}

func TestMonitor_HealthyByDefault(t *testing.T) {
	m := NewMonitor()
	if got := m.Status(); got != StatusHealthy {
		t.Errorf("expected healthy, got %v", got)
	}
}

func TestMonitor_ThrottleWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newFixedMonitor(&now)

	m.RecordThrottle("30")
	if got := m.Status(); got != StatusThrottled {
		t.Fatalf("expected throttled, got %v", got)
	}
	if ra := m.Stats().RetryAfter; ra != 30*time.Second {
		t.Errorf("expected 30s retry-after, got %v", ra)
	}

	now = now.Add(31 * time.Second)
	if got := m.Status(); got != StatusHealthy {
		t.Errorf("expected healthy after window, got %v", got)
	}
}

func TestMonitor_DegradedOnErrorRate(t *testing.T) {
	m := NewMonitor()
	for i := 0; i < 6; i++ {
		m.RecordSuccess(100 * time.Millisecond)
	}
	for i := 0; i < 4; i++ {
		m.RecordFailure()
	}

	stats := m.Stats()
	if stats.Status != "degraded" {
		t.Errorf("expected degraded, got %s", stats.Status)
	}
	if stats.ErrorRate != 0.4 {
		t.Errorf("expected error rate 0.4, got %v", stats.ErrorRate)
	}
}

func TestMonitor_RecoversAfterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newFixedMonitor(&now)

	for i := 0; i < 100; i++ {
		m.RecordFailure()
	}
	if got := m.Status(); got != StatusDegraded {
		t.Fatalf("expected degraded, got %v", got)
	}

	now = now.Add(48 * time.Hour)
	for i := 0; i < 200; i++ {
		m.RecordSuccess(100 * time.Millisecond)
	}

	stats := m.Stats()
	if stats.Status != "healthy" {
		t.Errorf("expected healthy, got %s", stats.Status)
	}
	if stats.ErrorRate != 0 {
		t.Errorf("expected error rate 0, got %v", stats.ErrorRate)
	}
	if stats.Failures != 100 || stats.Successes != 200 {
		t.Errorf("expected lifetime counters 100/200, got %d/%d", stats.Failures, stats.Successes)
	}
	if len(m.outcomes) != 200 {
		t.Errorf("expected old outcomes trimmed, got %d", len(m.outcomes))
	}
}

func TestMonitor_WindowExpiresWithoutTraffic(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newFixedMonitor(&now)
	for i := 0; i < 20; i++ {
		m.RecordFailure()
	}

	now = now.Add(2 * time.Hour)
	if got := m.Status(); got != StatusHealthy {
		t.Errorf("expected healthy once failures leave the window, got %v", got)
	}
}

func TestMonitor_DegradedOnLatency(t *testing.T) {
	m := NewMonitor()
	for i := 0; i < 10; i++ {
		m.RecordSuccess(30 * time.Second)
	}
	if got := m.Status(); got != StatusDegraded {
		t.Errorf("expected degraded, got %v", got)
	}
	if avg := m.Stats().AverageLatency; avg != 30*time.Second {
		t.Errorf("expected 30s average, got %v", avg)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", time.Minute},
		{"0", 0},
		{"5", 5 * time.Second},
		{"garbage", time.Minute},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0}, // in the past
	}

	for _, tt := range tests {
		if got := parseRetryAfter(tt.in); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
