package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/amo-tech-ai/fashionos100-sub001/internal/observability"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/rate"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/wizard"
	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

const maxRequestBody = 4 << 20

// WizardHandler serves the session API on top of the wizard manager.
type WizardHandler struct {
	manager       *wizard.Manager
	assistLimiter *rate.WindowLimiter
	metrics       *observability.Metrics
}

// NewWizardHandler creates the handler. A nil limiter disables assist
// throttling; a nil metrics set disables domain metrics.
func NewWizardHandler(manager *wizard.Manager, assistLimiter *rate.WindowLimiter, metrics *observability.Metrics) *WizardHandler {
	return &WizardHandler{manager: manager, assistLimiter: assistLimiter, metrics: metrics}
}

// session loads the session from the URL and checks that the caller owns
// it. Foreign sessions read as absent.
func (h *WizardHandler) session(r *http.Request) (*wizard.Session, error) {
	sess, err := h.manager.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		return nil, err
	}
	rctx := model.MustRequestContext(r.Context())
	if sess.Subject != rctx.SubjectID {
		return nil, model.NewSessionNotFoundError(sess.ID)
	}
	return sess, nil
}

func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return model.NewBadRequestError("Could not read request body")
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return model.NewBadRequestError("Request body is not valid JSON")
	}
	return nil
}

// CreateSession handles POST /wizard.
func (h *WizardHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Variant == "" {
		req.Variant = string(wizard.VariantEvent)
	}

	rctx := model.MustRequestContext(r.Context())
	sess, err := h.manager.Create(r.Context(), rctx.SubjectID, wizard.Variant(req.Variant))
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordSessionStarted(string(sess.Variant))
	}
	desc := describeSession(sess)
	WriteJSON(w, http.StatusCreated, desc)
}

// GetSession handles GET /wizard/{sessionID}.
func (h *WizardHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, describeSession(sess))
}

// PatchConfig handles PATCH /wizard/{sessionID}/config. The patch is
// applied verbatim; invalid intermediate states are allowed and only
// surface through the current step's validation message.
func (h *WizardHandler) PatchConfig(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var patch model.ConfigurationPatch
	if err := decodeBody(r, &patch); err != nil {
		WriteError(w, err)
		return
	}

	sess.Store.Update(patch)
	WriteJSON(w, http.StatusOK, describeSession(sess))
}

// Next handles POST /wizard/{sessionID}/next. A refused transition is
// not an error at the HTTP level; the descriptor carries the message the
// client shows next to the step.
func (h *WizardHandler) Next(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if sess.Assistant != nil {
		sess.Assistant.Cancel()
	}
	before, stepDef := sess.Seq.Current()
	after, msg := sess.Seq.Next(sess.Store)
	if h.metrics != nil {
		switch {
		case msg != "":
			h.metrics.RecordStepRefusal(string(sess.Variant), stepDef.ID)
		case after != before:
			h.metrics.RecordStepAdvance(string(sess.Variant), stepDef.ID)
		}
	}

	desc := describeSession(sess)
	desc.ValidationMessage = msg
	WriteJSON(w, http.StatusOK, desc)
}

// Back handles POST /wizard/{sessionID}/back. At the entry step the
// response signals exit instead of moving.
func (h *WizardHandler) Back(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if sess.Assistant != nil {
		sess.Assistant.Cancel()
	}
	if _, ok := sess.Seq.Back(); !ok {
		WriteJSON(w, http.StatusOK, backResponse{Exit: true})
		return
	}

	desc := describeSession(sess)
	WriteJSON(w, http.StatusOK, backResponse{Descriptor: &desc})
}

// Assist handles POST /wizard/{sessionID}/assist.
func (h *WizardHandler) Assist(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	if sess.Assistant == nil {
		WriteError(w, model.NewBadRequestError("Assistance is not enabled"))
		return
	}

	rctx := model.MustRequestContext(r.Context())
	if h.assistLimiter != nil && !h.assistLimiter.Allow(rctx.SubjectID) {
		WriteError(w, model.NewRateLimitedError())
		return
	}

	var req assistRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Prompt == "" {
		WriteError(w, model.NewBadRequestError("A prompt is required"))
		return
	}

	start := time.Now()
	merged, err := sess.Assistant.Generate(r.Context(), model.GenerationRequest{
		Prompt: req.Prompt,
		URLs:   req.URLs,
		Files:  req.Files,
	})
	if err != nil {
		env, ok := err.(*model.ErrorEnvelope)
		if !ok {
			env = model.NewInternalError()
		}
		if h.metrics != nil {
			status := "error"
			if env.Code == model.ErrGenerationSuperseded {
				status = "superseded"
			}
			h.metrics.RecordGeneration(status, time.Since(start))
		}
		status := statusForCode[env.Code]
		if status == 0 {
			status = http.StatusInternalServerError
		}
		WriteJSON(w, status, assistResponse{Success: false, Error: env})
		return
	}

	if h.metrics != nil {
		h.metrics.RecordGeneration("ok", time.Since(start))
	}
	WriteJSON(w, http.StatusOK, assistResponse{Success: true, Data: &merged})
}

// Submit handles POST /wizard/{sessionID}/submit.
func (h *WizardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	event, breakdown, err := h.manager.Submit(r.Context(), sess.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordSubmission(string(sess.Variant))
	}
	WriteJSON(w, http.StatusOK, submitResponse{Event: event, Breakdown: breakdown})
}

// DiscardDraft handles DELETE /wizard/{sessionID}/draft.
func (h *WizardHandler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.manager.Discard(r.Context(), sess.ID); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
