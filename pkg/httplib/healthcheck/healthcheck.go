package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"
)

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

// HealthCheck is the health check handler.
type HealthCheck struct {
	checks  map[string]Checker
	timeout time.Duration
}

// Status is the body served on GET /health.
type Status struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// New creates a health check running checks with a shared timeout.
func New(timeout time.Duration, checks map[string]Checker) HealthCheck {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return HealthCheck{checks: checks, timeout: timeout}
}

// Handler is used to control the flow of GET /health endpoint
func (hc HealthCheck) Handler(h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if IsHealthCheckRequest(r) {
			hc.ServeHTTP(w, r)

			return
		}

		h.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

// Check runs every checker and reports per-dependency results.
func (hc HealthCheck) Check(ctx context.Context) (Status, bool) {
	ctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	names := make([]string, 0, len(hc.checks))
	for name := range hc.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := Status{Status: "ok", Checks: make(map[string]string, len(names))}
	healthy := true
	for _, name := range names {
		if err := hc.checks[name](ctx); err != nil {
			status.Checks[name] = err.Error()
			healthy = false
			continue
		}
		status.Checks[name] = "ok"
	}
	if !healthy {
		status.Status = "unavailable"
	}
	return status, healthy
}

// ServeHTTP serve http request for health check
func (hc HealthCheck) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status, healthy := hc.Check(r.Context())

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}

// IsHealthCheckRequest is used to check if the request is a health check request
func IsHealthCheckRequest(r *http.Request) bool {
	return r.Method == "GET" && r.URL.Path == "/health"
}
