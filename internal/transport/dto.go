package transport

import (
	"github.com/amo-tech-ai/fashionos100-sub001/internal/wizard"
	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// createSessionRequest starts a wizard session.
type createSessionRequest struct {
	Variant string `json:"variant"`
}

// sessionDescriptor is the client's full view of a session: where it is,
// where it can go, and what the current document costs.
type sessionDescriptor struct {
	SessionID         string              `json:"sessionId"`
	Variant           string              `json:"variant"`
	CurrentStep       int                 `json:"currentStep"`
	StepID            string              `json:"stepId"`
	Steps             []wizard.StepInfo   `json:"steps"`
	CanGoNext         bool                `json:"canGoNext"`
	CanGoBack         bool                `json:"canGoBack"`
	DraftRecovered    bool                `json:"draftRecovered,omitempty"`
	ValidationMessage string              `json:"validationMessage,omitempty"`
	Config            model.Configuration `json:"config"`
	Breakdown         model.Breakdown     `json:"breakdown"`
}

func describeSession(sess *wizard.Session) sessionDescriptor {
	step, def := sess.Seq.Current()
	return sessionDescriptor{
		SessionID:         sess.ID,
		Variant:           string(sess.Variant),
		CurrentStep:       step,
		StepID:            def.ID,
		Steps:             sess.Seq.Flow().Describe(),
		CanGoNext:         sess.Seq.CanGoNext(sess.Store),
		CanGoBack:         sess.Seq.CanGoBack(),
		DraftRecovered:    sess.DraftRecovered,
		ValidationMessage: sess.Seq.ValidationMessage(sess.Store),
		Config:            sess.Store.Get(),
		Breakdown:         sess.Store.Breakdown(),
	}
}

// backResponse is returned by the back operation. Exit is true when the
// session was already at the entry step and the client should leave the
// wizard.
type backResponse struct {
	Exit       bool               `json:"exit"`
	Descriptor *sessionDescriptor `json:"descriptor,omitempty"`
}

// assistRequest starts a generation.
type assistRequest struct {
	Prompt string                 `json:"prompt"`
	URLs   []string               `json:"urls,omitempty"`
	Files  []model.GenerationFile `json:"files,omitempty"`
}

// assistResponse is the generation result envelope: either the merged
// configuration or a structured error, never a partial merge.
type assistResponse struct {
	Success bool                 `json:"success"`
	Data    *model.Configuration `json:"data,omitempty"`
	Error   *model.ErrorEnvelope `json:"error,omitempty"`
}

// submitResponse carries the published configuration and its final
// price.
type submitResponse struct {
	Event     model.Configuration `json:"event"`
	Breakdown model.Breakdown     `json:"breakdown"`
}
