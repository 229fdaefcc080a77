// Package integration provides a reusable test harness for end-to-end
// testing of the wizard API server. It starts a full HTTP server with an
// in-memory draft store, a deterministic suggestion generator, and a test
// JWT issuer.
package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/amo-tech-ai/fashionos100-sub001/internal/assist"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/config"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/draft"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/observability"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/pricing"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/rate"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/transport"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/wizard"
	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// TestHarness encapsulates a fully wired wizard server for integration
// testing.
type TestHarness struct {
	t      *testing.T
	server *httptest.Server
	issuer *tokenIssuer

	// Internal components exposed for advanced test scenarios.
	Manager *wizard.Manager
	Drafts  *draft.MemoryStore

	cfg *config.Config
}

// HarnessOption configures the test harness.
type HarnessOption func(*harnessConfig)

type harnessConfig struct {
	assistEnabled   bool
	assistRateLimit int
	debounce        time.Duration
}

// WithAssist enables the assist endpoint backed by the deterministic
// static generator.
func WithAssist() HarnessOption {
	return func(c *harnessConfig) {
		c.assistEnabled = true
	}
}

// WithAssistRateLimit bounds assist calls per subject per minute.
func WithAssistRateLimit(limit int) HarnessOption {
	return func(c *harnessConfig) {
		c.assistRateLimit = limit
	}
}

// WithDebounce sets the draft save debounce window.
func WithDebounce(d time.Duration) HarnessOption {
	return func(c *harnessConfig) {
		c.debounce = d
	}
}

// NewHarness starts a wizard server and returns a harness bound to it.
// The server shuts down with the test.
func NewHarness(t *testing.T, opts ...HarnessOption) *TestHarness {
	t.Helper()

	hc := &harnessConfig{debounce: 5 * time.Millisecond}
	for _, opt := range opts {
		opt(hc)
	}

	issuer := newTokenIssuer(t)

	cfg := config.Defaults()
	cfg.Identity.Issuer = issuer.Issuer()
	cfg.Identity.Audience = issuer.Audience()
	cfg.Server.HandlerTimeout = 10 * time.Second

	drafts := draft.NewMemoryStore()
	logger := zap.NewNop()

	var factory wizard.AssistantFactory
	if hc.assistEnabled {
		merger := &assist.Merger{
			StartLead: cfg.Wizard.SuggestionStartLead,
			EndOffset: cfg.Wizard.SuggestionEndOffset,
			MaxScenes: cfg.Wizard.MaxScenes,
		}
		factory = func(store *wizard.Store) wizard.Assistant {
			return assist.New(assist.Options{
				Store:     store,
				Generator: &assist.StaticGenerator{},
				Merger:    merger,
				Timeout:   5 * time.Second,
				Logger:    logger,
			})
		}
	}

	manager := wizard.NewManager(wizard.ManagerOptions{
		Calculator: pricing.NewCalculator(cfg.Pricing.TaxRate),
		Drafts:     drafts,
		Namespace:  cfg.Draft.Namespace,
		Debounce:   hc.debounce,
		MaxScenes:  cfg.Wizard.MaxScenes,
		Assistants: factory,
		Logger:     logger,
	})

	var limiter *rate.WindowLimiter
	if hc.assistRateLimit > 0 {
		limiter = rate.NewWindowLimiter(hc.assistRateLimit, time.Minute)
	}

	router := transport.NewRouter(transport.Dependencies{
		Config:       cfg,
		Authenticate: transport.JWTAuthenticator(cfg.Identity, issuer.Secret()),
		Wizard:       transport.NewWizardHandler(manager, limiter, nil),
		Health:       observability.NewHealthHandler(),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &TestHarness{
		t:       t,
		server:  srv,
		issuer:  issuer,
		Manager: manager,
		Drafts:  drafts,
		cfg:     cfg,
	}
}

// sessionView mirrors the session descriptor returned by the API.
type sessionView struct {
	SessionID         string              `json:"sessionId"`
	Variant           string              `json:"variant"`
	CurrentStep       int                 `json:"currentStep"`
	StepID            string              `json:"stepId"`
	CanGoBack         bool                `json:"canGoBack"`
	DraftRecovered    bool                `json:"draftRecovered"`
	ValidationMessage string              `json:"validationMessage"`
	Config            model.Configuration `json:"config"`
	Breakdown         model.Breakdown     `json:"breakdown"`
}

// BaseURL returns the server's base URL.
func (h *TestHarness) BaseURL() string {
	return h.server.URL
}

// GenerateToken creates a valid JWT token with the given claims.
func (h *TestHarness) GenerateToken(claims TestClaims) string {
	return h.issuer.GenerateToken(claims)
}

// GenerateExpiredToken creates a JWT that has already expired.
func (h *TestHarness) GenerateExpiredToken(claims TestClaims) string {
	return h.issuer.GenerateExpiredToken(claims)
}

// --- HTTP client helpers ---

// GET performs an authenticated GET request.
func (h *TestHarness) GET(path, token string) *http.Response {
	h.t.Helper()
	return h.doRequest("GET", path, nil, token)
}

// POST performs an authenticated POST request with a JSON body.
func (h *TestHarness) POST(path string, body any, token string) *http.Response {
	h.t.Helper()
	return h.doRequest("POST", path, body, token)
}

// PATCH performs an authenticated PATCH request with a JSON body.
func (h *TestHarness) PATCH(path string, body any, token string) *http.Response {
	h.t.Helper()
	return h.doRequest("PATCH", path, body, token)
}

// DELETE performs an authenticated DELETE request.
func (h *TestHarness) DELETE(path, token string) *http.Response {
	h.t.Helper()
	return h.doRequest("DELETE", path, nil, token)
}

func (h *TestHarness) doRequest(method, path string, body any, token string) *http.Response {
	h.t.Helper()

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			h.t.Fatalf("marshal request body: %v", err)
		}
		bodyReader = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(context.Background(), method, h.server.URL+path, bodyReader)
	if err != nil {
		h.t.Fatalf("create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		h.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

// ParseJSON reads the response body and unmarshals it into the target.
func (h *TestHarness) ParseJSON(resp *http.Response, target any) {
	h.t.Helper()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		h.t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		h.t.Fatalf("unmarshal response body: %v\nbody: %s", err, string(data))
	}
}

// AssertStatus checks that the response has the expected status code.
func (h *TestHarness) AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Errorf("status = %d, want %d\nbody: %s", resp.StatusCode, expected, string(body))
	}
}

// AssertJSON checks that the response has the expected status and parses
// the body.
func (h *TestHarness) AssertJSON(t *testing.T, resp *http.Response, expected int, target any) {
	t.Helper()
	if resp.StatusCode != expected {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("status = %d, want %d\nbody: %s", resp.StatusCode, expected, string(body))
	}
	h.ParseJSON(resp, target)
}

// CreateSession starts a session and returns its view.
func (h *TestHarness) CreateSession(t *testing.T, token, variant string) sessionView {
	t.Helper()
	var body any
	if variant != "" {
		body = map[string]string{"variant": variant}
	}
	resp := h.POST("/wizard", body, token)
	var view sessionView
	h.AssertJSON(t, resp, http.StatusCreated, &view)
	return view
}

// OrganizerClaims returns TestClaims for a typical event organizer.
func OrganizerClaims() TestClaims {
	return TestClaims{
		SubjectID: "organizer-1",
		Email:     "organizer@fashionos.app",
		Roles:     []string{"organizer"},
	}
}
