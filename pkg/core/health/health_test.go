package health

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func fixed(status Status, message string) func(ctx context.Context) CheckResult {
	return func(ctx context.Context) CheckResult {
		return CheckResult{Status: status, Message: message}
	}
}

func TestRegistry_OverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
		healthy  bool
	}{
		{"No checks", nil, StatusHealthy, true},
		{"All healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy, true},
		{"One degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded, true},
		{"Unknown beats degraded", []Status{StatusDegraded, StatusUnknown}, StatusUnknown, false},
		{"Unhealthy wins", []Status{StatusUnhealthy, StatusDegraded, StatusHealthy}, StatusUnhealthy, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry("bayan", "1.0.0")
			for i, s := range tt.statuses {
				registry.Register(NewChecker(string(rune('a'+i)), fixed(s, "")))
			}
			report := registry.Check(context.Background())
			if report.Status != tt.want {
				t.Errorf("Status = %v, want %v", report.Status, tt.want)
			}
			if report.Healthy() != tt.healthy {
				t.Errorf("Healthy() = %v, want %v", report.Healthy(), tt.healthy)
			}
		})
	}
}

func TestRegistry_RegistrationOrderAndReplace(t *testing.T) {
	registry := NewRegistry("bayan", "1.0.0")
	registry.Register(NewChecker("store", fixed(StatusDegraded, "locked")))
	registry.Register(NewChecker("engine", fixed(StatusHealthy, "")))
	registry.Register(NewChecker("store", fixed(StatusHealthy, "reachable")))

	report := registry.Check(context.Background())
	if len(report.Checks) != 2 {
		t.Fatalf("Expected 2 checks, got %d", len(report.Checks))
	}
	if report.Checks[0].Name != "store" || report.Checks[0].Message != "reachable" {
		t.Errorf("Replaced check should keep its slot: %+v", report.Checks[0])
	}
	if report.Checks[1].Name != "engine" {
		t.Errorf("Second check = %q", report.Checks[1].Name)
	}
}

func TestRegistry_ChecksRunConcurrently(t *testing.T) {
	registry := NewRegistry("bayan", "1.0.0")
	var running int32
	var peak int32
	for _, name := range []string{"a", "b", "c"} {
		registry.Register(NewChecker(name, func(ctx context.Context) CheckResult {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(30 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return CheckResult{Status: StatusHealthy}
		}))
	}

	registry.Check(context.Background())
	if atomic.LoadInt32(&peak) < 2 {
		t.Errorf("Checks did not overlap (peak %d)", peak)
	}
}

func TestRegistry_CheckTimeoutAndPanic(t *testing.T) {
	registry := NewRegistry("bayan", "1.0.0")
	registry.SetCheckTimeout(20 * time.Millisecond)
	registry.Register(ErrorCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	registry.Register(NewChecker("broken", func(ctx context.Context) CheckResult {
		panic("boom")
	}))
	registry.Register(NewChecker("silent", func(ctx context.Context) CheckResult {
		return CheckResult{}
	}))

	report := registry.Check(context.Background())
	byName := map[string]CheckResult{}
	for _, c := range report.Checks {
		byName[c.Name] = c
	}

	if c := byName["slow"]; c.Status != StatusUnhealthy || !strings.Contains(c.Message, "deadline") {
		t.Errorf("slow = %+v", c)
	}
	if c := byName["broken"]; c.Status != StatusUnhealthy || !strings.Contains(c.Message, "boom") {
		t.Errorf("broken = %+v", c)
	}
	if c := byName["silent"]; c.Status != StatusUnknown {
		t.Errorf("silent = %+v", c)
	}
	if got := report.Failing(); len(got) != 3 {
		t.Errorf("Failing() = %v", got)
	}
}

func TestRegistry_Last(t *testing.T) {
	registry := NewRegistry("bayan", "1.0.0")
	if registry.Last() != nil {
		t.Error("Last() should be nil before the first check")
	}
	report := registry.Check(context.Background())
	if registry.Last() != report {
		t.Error("Last() should return the latest report")
	}
	if s := report.String(); !strings.HasPrefix(s, "bayan 1.0.0: healthy") {
		t.Errorf("String() = %q", s)
	}
}

func TestErrorCheck(t *testing.T) {
	failing := true
	checker := ErrorCheck("engine", func(ctx context.Context) error {
		if failing {
			return errors.New("smoke run failed")
		}
		return nil
	})

	if result := checker.Check(context.Background()); result.Status != StatusUnhealthy || result.Message != "smoke run failed" {
		t.Errorf("Unexpected failing result %+v", result)
	}
	failing = false
	if result := checker.Check(context.Background()); result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

func TestPingCheck(t *testing.T) {
	registry := NewRegistry("bayan", "1.0.0")
	registry.Register(NewChecker("engine", fixed(StatusHealthy, "")))
	registry.Register(PingCheck("store", fakePinger{err: errors.New("locked")}))

	report := registry.Check(context.Background())
	if report.Status != StatusDegraded || !report.Healthy() {
		t.Errorf("Status = %v, want degraded but healthy", report.Status)
	}
	if got := report.Failing(); len(got) != 1 || got[0] != "store" {
		t.Errorf("Failing() = %v", got)
	}
}
