package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Build-time variables injected via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

// HealthResponse is the JSON response for the liveness endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// ReadinessResponse is the JSON response for the readiness endpoint.
type ReadinessResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// CheckResult is the result of a single readiness check.
type CheckResult struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// HealthChecker can verify its own health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

const checkTimeout = 2 * time.Second

// HealthHandler serves the liveness and readiness endpoints. Checks are
// registered by name; readiness runs them concurrently with a per-check
// timeout.
type HealthHandler struct {
	mu     sync.RWMutex
	checks map[string]HealthChecker
}

// NewHealthHandler creates a HealthHandler with no registered checks.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{checks: make(map[string]HealthChecker)}
}

// Register adds a named readiness check. A nil checker is ignored so call
// sites can pass optional dependencies without guarding.
func (h *HealthHandler) Register(name string, checker HealthChecker) {
	if checker == nil {
		return
	}
	h.mu.Lock()
	h.checks[name] = checker
	h.mu.Unlock()
}

// Liveness reports that the process is up. It never checks dependencies.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthResponse{
		Status:  "ok",
		Version: Version,
		Commit:  Commit,
	})
}

// Readiness runs all registered checks and reports 503 if any fail.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := make(map[string]HealthChecker, len(h.checks))
	for name, c := range h.checks {
		checks[name] = c
	}
	h.mu.RUnlock()

	results := make(map[string]CheckResult, len(checks))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for name, checker := range checks {
		wg.Add(1)
		go func(name string, checker HealthChecker) {
			defer wg.Done()
			result := runCheck(r.Context(), checker)
			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, checker)
	}
	wg.Wait()

	status := "ready"
	httpStatus := http.StatusOK
	for _, result := range results {
		if result.Status != "ok" {
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			break
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(ReadinessResponse{
		Status: status,
		Checks: results,
	})
}

// runCheck executes a health check with a per-check timeout.
func runCheck(parent context.Context, checker HealthChecker) CheckResult {
	ctx, cancel := context.WithTimeout(parent, checkTimeout)
	defer cancel()

	start := time.Now()
	err := checker.Ping(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return CheckResult{
			Status:    "error",
			LatencyMs: latency,
			Error:     err.Error(),
		}
	}
	return CheckResult{
		Status:    "ok",
		LatencyMs: latency,
	}
}
