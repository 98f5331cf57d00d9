package observability

import (
	"context"
	"sync"
)

// HealthStatus is the state of one dependency or of the whole service.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDegraded HealthStatus = "degraded"
	HealthStatusDown     HealthStatus = "down"
)

// severity orders statuses so the worst component decides the service state.
func (s HealthStatus) severity() int {
	switch s {
	case HealthStatusDown:
		return 2
	case HealthStatusDegraded:
		return 1
	default:
		return 0
	}
}

// Health is one checker's report.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ServiceHealth is the aggregate served at /healthz.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker reports the state of one dependency: the credential, the
// recovery storage.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) Health

func (f HealthCheckFunc) CheckHealth(ctx context.Context) Health { return f(ctx) }

// NewServiceHealth returns an "up" aggregate with no components.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{Service: service, Status: HealthStatusUp, Version: version}
}

// AddComponent appends h and lowers the aggregate status to h's when worse.
func (sh *ServiceHealth) AddComponent(h Health) {
	sh.Components = append(sh.Components, h)
	if h.Status.severity() > sh.Status.severity() {
		sh.Status = h.Status
	}
}

// Check runs the checkers concurrently and aggregates their reports in
// argument order. Nil checkers are skipped.
func Check(ctx context.Context, service, version string, checkers ...HealthChecker) *ServiceHealth {
	results := make([]*Health, len(checkers))
	var wg sync.WaitGroup
	for i, c := range checkers {
		if c == nil {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := c.CheckHealth(ctx)
			results[i] = &h
		}()
	}
	wg.Wait()

	sh := NewServiceHealth(service, version)
	for _, h := range results {
		if h != nil {
			sh.AddComponent(*h)
		}
	}
	return sh
}
