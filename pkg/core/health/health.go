// Package health aggregates named checks into a service health report.
// The server maps reports onto the gRPC health protocol and /healthz.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultCheckTimeout bounds a single check when the registry has no
// explicit timeout
const DefaultCheckTimeout = 5 * time.Second

// Status represents the health status of a service
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// worse returns the more severe of two statuses
func worse(a, b Status) Status {
	rank := func(s Status) int {
		switch s {
		case StatusHealthy:
			return 0
		case StatusDegraded:
			return 1
		case StatusUnknown:
			return 2
		default:
			return 3
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}

// CheckResult is the outcome of one check
type CheckResult struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Checker is a named health check
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

type checker struct {
	name string
	fn   func(ctx context.Context) CheckResult
}

func (c *checker) Name() string                          { return c.name }
func (c *checker) Check(ctx context.Context) CheckResult { return c.fn(ctx) }

// NewChecker creates a named checker from a function
func NewChecker(name string, fn func(ctx context.Context) CheckResult) Checker {
	return &checker{name: name, fn: fn}
}

// ErrorCheck reports unhealthy whenever fn returns an error
func ErrorCheck(name string, fn func(ctx context.Context) error) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		if err := fn(ctx); err != nil {
			return CheckResult{Status: StatusUnhealthy, Message: err.Error()}
		}
		return CheckResult{Status: StatusHealthy, Message: "ok"}
	})
}

// Pinger is implemented by *sql.DB and the fact store
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingCheck reports the reachability of a database. A failed ping
// degrades the service rather than failing it because runs do not
// depend on the snapshot store.
func PingCheck(name string, p Pinger) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		if err := p.PingContext(ctx); err != nil {
			return CheckResult{Status: StatusDegraded, Message: err.Error()}
		}
		return CheckResult{Status: StatusHealthy, Message: "reachable"}
	})
}

// Registry runs checks in registration order and remembers the last
// report
type Registry struct {
	mu      sync.Mutex
	checks  []Checker
	service string
	version string
	startAt time.Time
	timeout time.Duration
	last    *Report
}

// NewRegistry creates a registry for a service
func NewRegistry(service, version string) *Registry {
	return &Registry{
		service: service,
		version: version,
		startAt: time.Now(),
		timeout: DefaultCheckTimeout,
	}
}

// SetCheckTimeout changes the per-check deadline
func (r *Registry) SetCheckTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d > 0 {
		r.timeout = d
	}
}

// Register adds a checker. A checker with the same name is replaced in
// place.
func (r *Registry) Register(c Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.checks {
		if existing.Name() == c.Name() {
			r.checks[i] = c
			return
		}
	}
	r.checks = append(r.checks, c)
}

// Check runs all checks concurrently and returns the combined report
func (r *Registry) Check(ctx context.Context) *Report {
	r.mu.Lock()
	checks := append([]Checker(nil), r.checks...)
	timeout := r.timeout
	r.mu.Unlock()

	report := &Report{
		Service:   r.service,
		Version:   r.version,
		Status:    StatusHealthy,
		Uptime:    time.Since(r.startAt),
		Timestamp: time.Now(),
		Checks:    make([]CheckResult, len(checks)),
	}

	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			report.Checks[i] = run(ctx, c, timeout)
		}(i, c)
	}
	wg.Wait()

	for _, result := range report.Checks {
		report.Status = worse(report.Status, result.Status)
	}

	r.mu.Lock()
	r.last = report
	r.mu.Unlock()
	return report
}

// run executes one check with a deadline. A panicking check reports
// unhealthy.
func run(ctx context.Context, c Checker, timeout time.Duration) (result CheckResult) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			result = CheckResult{Status: StatusUnhealthy, Message: fmt.Sprintf("check panicked: %v", rec)}
		}
		result.Name = c.Name()
		result.Duration = time.Since(start)
		if result.Status == "" {
			result.Status = StatusUnknown
		}
	}()
	return c.Check(ctx)
}

// Last returns the most recent report, or nil before the first check
func (r *Registry) Last() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Report is the combined result of a registry run
type Report struct {
	Service   string        `json:"service"`
	Version   string        `json:"version"`
	Status    Status        `json:"status"`
	Uptime    time.Duration `json:"uptime"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks"`
}

// Healthy reports whether the service can accept work. Degraded
// services still can.
func (r *Report) Healthy() bool {
	return r.Status == StatusHealthy || r.Status == StatusDegraded
}

// Failing returns the names of checks that are not healthy
func (r *Report) Failing() []string {
	var names []string
	for _, c := range r.Checks {
		if c.Status != StatusHealthy {
			names = append(names, c.Name)
		}
	}
	return names
}

func (r *Report) String() string {
	return fmt.Sprintf("%s %s: %s (%d checks, up %v)",
		r.Service, r.Version, r.Status, len(r.Checks), r.Uptime.Truncate(time.Second))
}
