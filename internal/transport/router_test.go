package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/amo-tech-ai/fashionos100-sub001/internal/config"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/observability"
	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// testDeps returns Dependencies with everything except the wizard handler
// wired; routes that reach a handler are exercised in handlers_test.go.
func testDeps() Dependencies {
	cfg := config.Defaults()
	cfg.Server.CORS.AllowedOrigins = []string{"https://app.fashionos.app"}
	cfg.Server.HandlerTimeout = 5 * time.Second
	return Dependencies{
		Config: cfg,
		Health: observability.NewHealthHandler(),
	}
}

func rejectAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, model.NewUnauthorizedError("rejected"))
	})
}

func TestNewRouter_health(t *testing.T) {
	r := NewRouter(testDeps())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestNewRouter_ready(t *testing.T) {
	r := NewRouter(testDeps())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ready", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestNewRouter_metricsEndpoint(t *testing.T) {
	deps := testDeps()
	reg := prometheus.NewRegistry()
	observability.InitMetrics(reg)
	deps.Metrics = observability.Handler()
	r := NewRouter(deps)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestNewRouter_authenticatedRoutes_areRegistered(t *testing.T) {
	// With auth rejecting all requests, registered routes return 401
	// rather than 404/405.
	deps := testDeps()
	deps.Authenticate = rejectAuth
	deps.Wizard = NewWizardHandler(nil, nil, nil)
	r := NewRouter(deps)

	routes := []struct {
		method string
		path   string
	}{
		{"POST", "/wizard"},
		{"GET", "/wizard/abc"},
		{"PATCH", "/wizard/abc/config"},
		{"POST", "/wizard/abc/next"},
		{"POST", "/wizard/abc/back"},
		{"POST", "/wizard/abc/assist"},
		{"POST", "/wizard/abc/submit"},
		{"DELETE", "/wizard/abc/draft"},
	}

	for _, tc := range routes {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401 (auth should reject)", w.Code)
			}
		})
	}
}

func TestNewRouter_publicRoutesBypassAuth(t *testing.T) {
	deps := testDeps()
	deps.Authenticate = rejectAuth
	r := NewRouter(deps)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", w.Code)
	}
}

func TestNewRouter_corsPreflight(t *testing.T) {
	r := NewRouter(testDeps())

	req := httptest.NewRequest("OPTIONS", "/wizard", nil)
	req.Header.Set("Origin", "https://app.fashionos.app")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.fashionos.app" {
		t.Errorf("allow-origin = %q", got)
	}
}

func TestNewRouter_unknownOriginGetsNoCORSHeaders(t *testing.T) {
	r := NewRouter(testDeps())

	req := httptest.NewRequest("OPTIONS", "/wizard", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin = %q, want empty", got)
	}
}

func TestNewRouter_securityAndCorrelationHeaders(t *testing.T) {
	r := NewRouter(testDeps())

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Correlation-Id", "corr-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Correlation-Id"); got != "corr-42" {
		t.Errorf("correlation id = %q, want corr-42", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("x-content-type-options = %q", got)
	}

	// Absent inbound ID gets a generated one.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Header().Get("X-Correlation-Id") == "" {
		t.Error("correlation id should be generated when absent")
	}
}
