package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/amo-tech-ai/fashionos100-sub001/internal/config"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/draft"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/observability"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/pricing"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/rate"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/wizard"
	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// fakeAssistant returns a canned merge result without calling any
// provider.
type fakeAssistant struct {
	cfg       model.Configuration
	err       error
	cancelled int
}

func (a *fakeAssistant) Generate(context.Context, model.GenerationRequest) (model.Configuration, error) {
	if a.err != nil {
		return model.Configuration{}, a.err
	}
	return a.cfg, nil
}

func (a *fakeAssistant) Cancel() { a.cancelled++ }

// newTestRouter builds the full router with dev auth and an in-memory
// draft store.
func newTestRouter(t *testing.T, factory wizard.AssistantFactory) (http.Handler, *draft.MemoryStore) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Server.HandlerTimeout = 5 * time.Second

	drafts := draft.NewMemoryStore()
	manager := wizard.NewManager(wizard.ManagerOptions{
		Calculator: pricing.NewCalculator(cfg.Pricing.TaxRate),
		Drafts:     drafts,
		Namespace:  cfg.Draft.Namespace,
		Debounce:   time.Millisecond,
		MaxScenes:  cfg.Wizard.MaxScenes,
		Assistants: factory,
		Logger:     zap.NewNop(),
	})

	limiter := rate.NewWindowLimiter(2, time.Minute)
	r := NewRouter(Dependencies{
		Config:       cfg,
		Authenticate: JWTAuthenticator(cfg.Identity, nil),
		Wizard:       NewWizardHandler(manager, limiter, nil),
		Health:       observability.NewHealthHandler(),
	})
	return r, drafts
}

func doRequest(t *testing.T, h http.Handler, method, path, subject string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("X-Subject-Id", subject)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createSession(t *testing.T, h http.Handler, subject, variant string) sessionDescriptor {
	t.Helper()
	var body any
	if variant != "" {
		body = map[string]string{"variant": variant}
	}
	w := doRequest(t, h, "POST", "/wizard", subject, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: status = %d, body = %s", w.Code, w.Body.String())
	}
	var desc sessionDescriptor
	decodeResponse(t, w, &desc)
	return desc
}

// validEventPatch fills every field the event flow's checks require.
func validEventPatch() map[string]any {
	return map[string]any{
		"title":     "Midnight Runway",
		"location":  "The Loft, 12 Gansevoort St",
		"startDate": "2026-11-20T19:00:00Z",
		"endDate":   "2026-11-20T22:00:00Z",
	}
}

func TestCreateSession_defaultsToEvent(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	desc := createSession(t, h, "user-1", "")

	if desc.Variant != "event" {
		t.Errorf("variant = %q, want event", desc.Variant)
	}
	if desc.CurrentStep != 0 || desc.StepID != "intro" {
		t.Errorf("position = %d/%s, want 0/intro", desc.CurrentStep, desc.StepID)
	}
	if len(desc.Steps) != 9 {
		t.Errorf("steps = %d, want 9", len(desc.Steps))
	}
	if desc.CanGoBack {
		t.Error("entry step should not allow back")
	}
	if desc.Breakdown.Subtotal != 45 {
		t.Errorf("default subtotal = %v, want 45", desc.Breakdown.Subtotal)
	}
}

func TestCreateSession_unknownVariant(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	w := doRequest(t, h, "POST", "/wizard", "user-1", map[string]string{"variant": "casting"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp struct {
		Error model.ErrorEnvelope `json:"error"`
	}
	decodeResponse(t, w, &resp)
	if resp.Error.Code != model.ErrBadRequest {
		t.Errorf("code = %q, want %q", resp.Error.Code, model.ErrBadRequest)
	}
}

func TestGetSession_foreignSubjectReadsAsAbsent(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	desc := createSession(t, h, "user-1", "event")

	w := doRequest(t, h, "GET", "/wizard/"+desc.SessionID, "user-2", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("foreign read status = %d, want 404", w.Code)
	}

	w = doRequest(t, h, "GET", "/wizard/"+desc.SessionID, "user-1", nil)
	if w.Code != http.StatusOK {
		t.Errorf("owner read status = %d, want 200", w.Code)
	}
}

func TestGetSession_unknownID(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	createSession(t, h, "user-1", "event")

	w := doRequest(t, h, "GET", "/wizard/nope", "user-1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestPatchConfig_acceptsInvalidIntermediateState(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	desc := createSession(t, h, "user-1", "event")

	// An empty title is invalid for the basics step but the patch still
	// lands; validation only gates forward movement.
	w := doRequest(t, h, "PATCH", "/wizard/"+desc.SessionID+"/config", "user-1",
		map[string]any{"description": "After-dark showcase"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var got sessionDescriptor
	decodeResponse(t, w, &got)
	if got.Config.Description != "After-dark showcase" {
		t.Errorf("description = %q, not applied", got.Config.Description)
	}
}

func TestNext_refusalKeepsPositionAndCarriesMessage(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	desc := createSession(t, h, "user-1", "event")
	url := "/wizard/" + desc.SessionID + "/next"

	// intro and draft-preview have no checks; basics requires a title.
	for i := 0; i < 2; i++ {
		w := doRequest(t, h, "POST", url, "user-1", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("next %d: status = %d", i, w.Code)
		}
	}

	w := doRequest(t, h, "POST", url, "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("refused next: status = %d, want 200", w.Code)
	}
	var got sessionDescriptor
	decodeResponse(t, w, &got)
	if got.CurrentStep != 2 || got.StepID != "basics" {
		t.Errorf("position = %d/%s, want 2/basics", got.CurrentStep, got.StepID)
	}
	if got.ValidationMessage == "" {
		t.Error("refusal should carry a validation message")
	}
}

func TestWizard_walkToReviewAndSubmit(t *testing.T) {
	h, drafts := newTestRouter(t, nil)
	desc := createSession(t, h, "user-1", "event")
	base := "/wizard/" + desc.SessionID

	w := doRequest(t, h, "PATCH", base+"/config", "user-1", validEventPatch())
	if w.Code != http.StatusOK {
		t.Fatalf("patch: status = %d, body = %s", w.Code, w.Body.String())
	}

	var got sessionDescriptor
	for i := 0; i < 7; i++ {
		w = doRequest(t, h, "POST", base+"/next", "user-1", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("next %d: status = %d", i, w.Code)
		}
		decodeResponse(t, w, &got)
		if got.ValidationMessage != "" {
			t.Fatalf("next %d refused: %q", i, got.ValidationMessage)
		}
	}
	if got.StepID != "review" {
		t.Fatalf("position = %d/%s, want review", got.CurrentStep, got.StepID)
	}

	w = doRequest(t, h, "POST", base+"/submit", "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("submit: status = %d, body = %s", w.Code, w.Body.String())
	}
	var sub submitResponse
	decodeResponse(t, w, &sub)
	if sub.Event.Title != "Midnight Runway" {
		t.Errorf("event title = %q", sub.Event.Title)
	}
	if sub.Breakdown.Total <= 0 {
		t.Errorf("total = %v, want > 0", sub.Breakdown.Total)
	}
	if drafts.Len() != 0 {
		t.Errorf("draft count = %d, submit should clear the draft", drafts.Len())
	}

	// The store resets for the next pass; the published title is gone.
	w = doRequest(t, h, "GET", base, "user-1", nil)
	decodeResponse(t, w, &got)
	if got.Config.Title != "" {
		t.Errorf("title after submit = %q, want empty", got.Config.Title)
	}
}

func TestSubmit_refusedOffReview(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	desc := createSession(t, h, "user-1", "event")

	w := doRequest(t, h, "POST", "/wizard/"+desc.SessionID+"/submit", "user-1", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	var resp struct {
		Error model.ErrorEnvelope `json:"error"`
	}
	decodeResponse(t, w, &resp)
	if resp.Error.Code != model.ErrInvalidTransition {
		t.Errorf("code = %q, want %q", resp.Error.Code, model.ErrInvalidTransition)
	}
}

func TestBack_atEntrySignalsExit(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	desc := createSession(t, h, "user-1", "event")
	base := "/wizard/" + desc.SessionID

	w := doRequest(t, h, "POST", base+"/back", "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp backResponse
	decodeResponse(t, w, &resp)
	if !resp.Exit {
		t.Error("back at entry should signal exit")
	}

	// After moving forward, back returns a descriptor instead.
	doRequest(t, h, "POST", base+"/next", "user-1", nil)
	w = doRequest(t, h, "POST", base+"/back", "user-1", nil)
	decodeResponse(t, w, &resp)
	if resp.Exit || resp.Descriptor == nil {
		t.Fatalf("back mid-flow: exit = %v, descriptor = %v", resp.Exit, resp.Descriptor)
	}
	if resp.Descriptor.CurrentStep != 0 {
		t.Errorf("step = %d, want 0", resp.Descriptor.CurrentStep)
	}
}

func TestAssist_disabledWithoutAssistant(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	desc := createSession(t, h, "user-1", "event")

	w := doRequest(t, h, "POST", "/wizard/"+desc.SessionID+"/assist", "user-1",
		map[string]string{"prompt": "rooftop party"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAssist_returnsMergedConfiguration(t *testing.T) {
	merged := model.DefaultConfiguration()
	merged.Title = "Rooftop Editorial Night"
	factory := func(*wizard.Store) wizard.Assistant {
		return &fakeAssistant{cfg: merged}
	}

	h, _ := newTestRouter(t, factory)
	desc := createSession(t, h, "user-1", "event")

	w := doRequest(t, h, "POST", "/wizard/"+desc.SessionID+"/assist", "user-1",
		map[string]string{"prompt": "rooftop party"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp assistResponse
	decodeResponse(t, w, &resp)
	if !resp.Success || resp.Data == nil {
		t.Fatalf("response = %+v, want success with data", resp)
	}
	if resp.Data.Title != "Rooftop Editorial Night" {
		t.Errorf("title = %q", resp.Data.Title)
	}
}

func TestAssist_requiresPrompt(t *testing.T) {
	factory := func(*wizard.Store) wizard.Assistant { return &fakeAssistant{} }
	h, _ := newTestRouter(t, factory)
	desc := createSession(t, h, "user-1", "event")

	w := doRequest(t, h, "POST", "/wizard/"+desc.SessionID+"/assist", "user-1",
		map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAssist_failureEnvelope(t *testing.T) {
	factory := func(*wizard.Store) wizard.Assistant {
		return &fakeAssistant{err: model.NewGenerationFailedError("Could not generate a suggestion. Continue filling in the details manually.")}
	}
	h, _ := newTestRouter(t, factory)
	desc := createSession(t, h, "user-1", "event")

	w := doRequest(t, h, "POST", "/wizard/"+desc.SessionID+"/assist", "user-1",
		map[string]string{"prompt": "rooftop party"})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	var resp assistResponse
	decodeResponse(t, w, &resp)
	if resp.Success || resp.Error == nil {
		t.Fatalf("response = %+v, want failure envelope", resp)
	}
	if resp.Error.Code != model.ErrGenerationFailed {
		t.Errorf("code = %q, want %q", resp.Error.Code, model.ErrGenerationFailed)
	}
}

func TestAssist_rateLimited(t *testing.T) {
	factory := func(*wizard.Store) wizard.Assistant { return &fakeAssistant{} }
	h, _ := newTestRouter(t, factory)
	desc := createSession(t, h, "user-1", "event")
	url := "/wizard/" + desc.SessionID + "/assist"
	body := map[string]string{"prompt": "rooftop party"}

	// The test limiter allows two calls per window.
	for i := 0; i < 2; i++ {
		if w := doRequest(t, h, "POST", url, "user-1", body); w.Code != http.StatusOK {
			t.Fatalf("call %d: status = %d", i, w.Code)
		}
	}
	w := doRequest(t, h, "POST", url, "user-1", body)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
}

func TestNext_cancelsInFlightGeneration(t *testing.T) {
	fake := &fakeAssistant{}
	factory := func(*wizard.Store) wizard.Assistant { return fake }
	h, _ := newTestRouter(t, factory)
	desc := createSession(t, h, "user-1", "event")

	doRequest(t, h, "POST", "/wizard/"+desc.SessionID+"/next", "user-1", nil)
	if fake.cancelled == 0 {
		t.Error("moving forward should cancel any in-flight generation")
	}
}

func TestDiscardDraft_resetsSession(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	desc := createSession(t, h, "user-1", "event")
	base := "/wizard/" + desc.SessionID

	doRequest(t, h, "POST", base+"/next", "user-1", nil)
	doRequest(t, h, "PATCH", base+"/config", "user-1", map[string]any{"title": "Scrapped"})

	w := doRequest(t, h, "DELETE", base+"/draft", "user-1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	w = doRequest(t, h, "GET", base, "user-1", nil)
	var got sessionDescriptor
	decodeResponse(t, w, &got)
	if got.CurrentStep != 0 {
		t.Errorf("step = %d, want 0 after discard", got.CurrentStep)
	}
	if got.Config.Title != "" {
		t.Errorf("title = %q, want empty after discard", got.Config.Title)
	}
}

func TestCreateSession_restoresDraftForSubject(t *testing.T) {
	h, drafts := newTestRouter(t, nil)

	saved := model.DefaultConfiguration()
	saved.Title = "Resumed Show"
	err := drafts.Save(context.Background(), "wizard:draft:user-1:event", model.Draft{
		Step:      3,
		State:     saved,
		LastSaved: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed draft: %v", err)
	}

	desc := createSession(t, h, "user-1", "event")
	if desc.CurrentStep != 3 {
		t.Errorf("step = %d, want 3", desc.CurrentStep)
	}
	if desc.Config.Title != "Resumed Show" {
		t.Errorf("title = %q, want Resumed Show", desc.Config.Title)
	}
	if !desc.DraftRecovered {
		t.Error("descriptor does not report the recovered draft")
	}

	fresh := createSession(t, h, "user-2", "event")
	if fresh.DraftRecovered {
		t.Error("fresh session reports a recovered draft")
	}
}
