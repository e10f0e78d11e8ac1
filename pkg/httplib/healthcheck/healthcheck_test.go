package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_Handler(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	testCases := []struct {
		name     string
		method   string
		path     string
		checks   map[string]Checker
		expected int
		status   string
	}{
		{
			name:     "healthy",
			method:   http.MethodGet,
			path:     "/health",
			checks:   map[string]Checker{"redis": func(context.Context) error { return nil }},
			expected: http.StatusOK,
			status:   "ok",
		},
		{
			name:   "dependency down",
			method: http.MethodGet,
			path:   "/health",
			checks: map[string]Checker{
				"redis":    func(context.Context) error { return nil },
				"postgres": func(context.Context) error { return errors.New("connection refused") },
			},
			expected: http.StatusServiceUnavailable,
			status:   "unavailable",
		},
		{
			name:     "other paths pass through",
			method:   http.MethodGet,
			path:     "/metrics",
			expected: http.StatusTeapot,
		},
		{
			name:     "post is not a health check",
			method:   http.MethodPost,
			path:     "/health",
			expected: http.StatusTeapot,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			New(0, tc.checks).Handler(next).ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))

			assert.Equal(t, tc.expected, rec.Code)
			if tc.status == "" {
				return
			}
			var body Status
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.status, body.Status)
			assert.Len(t, body.Checks, len(tc.checks))
		})
	}
}
