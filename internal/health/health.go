// Package health runs named component checks and aggregates them into a
// single service health report served over HTTP.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/hengadev/serialx/internal/json"
)

// Status is the health state of a component or of the whole service.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check probes one component. Critical checks pull the overall status to
// unhealthy on failure; non-critical ones only degrade it.
type Check struct {
	Name     string
	Probe    func(ctx context.Context) error
	Timeout  time.Duration
	Critical bool
}

// Result is the outcome of a single check.
type Result struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
	Critical bool          `json:"critical"`
}

// Report is the aggregated outcome of all checks.
type Report struct {
	Status    Status            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Results   map[string]Result `json:"results"`
}

// Checker holds the registered checks. Registration happens during startup;
// Run may be called concurrently afterwards.
type Checker struct {
	service string
	version string

	mu     sync.RWMutex
	checks []Check
}

func NewChecker(service, version string) *Checker {
	return &Checker{service: service, version: version}
}

// Register adds a check. A zero timeout defaults to five seconds.
func (c *Checker) Register(check Check) {
	if check.Timeout == 0 {
		check.Timeout = 5 * time.Second
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, check)
}

// Run executes all checks concurrently and aggregates their results.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := make([]Check, len(c.checks))
	copy(checks, c.checks)
	c.mu.RUnlock()

	results := make(map[string]Result, len(checks))
	var wg sync.WaitGroup
	var resultMu sync.Mutex

	for _, check := range checks {
		wg.Add(1)
		go func(check Check) {
			defer wg.Done()
			result := runCheck(ctx, check)
			resultMu.Lock()
			results[check.Name] = result
			resultMu.Unlock()
		}(check)
	}
	wg.Wait()

	return Report{
		Status:    overallStatus(results),
		Service:   c.service,
		Version:   c.version,
		Timestamp: time.Now().UTC(),
		Results:   results,
	}
}

// Handler serves the report as JSON, with 503 when the service is
// unhealthy.
func (c *Checker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := c.Run(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if report.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		body, err := json.Marshal(report)
		if err != nil {
			http.Error(w, "encode health report", http.StatusInternalServerError)
			return
		}
		w.Write(body)
	})
}

func runCheck(ctx context.Context, check Check) Result {
	checkCtx, cancel := context.WithTimeout(ctx, check.Timeout)
	defer cancel()

	start := time.Now()
	err := check.Probe(checkCtx)
	result := Result{
		Name:     check.Name,
		Status:   StatusHealthy,
		Duration: time.Since(start),
		Critical: check.Critical,
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	return result
}

func overallStatus(results map[string]Result) Status {
	status := StatusHealthy
	for _, r := range results {
		if r.Status != StatusUnhealthy {
			continue
		}
		if r.Critical {
			return StatusUnhealthy
		}
		status = StatusDegraded
	}
	return status
}
