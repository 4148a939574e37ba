package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/fitcoach/internal/agent"
	"github.com/ashureev/fitcoach/internal/assessment"
	"github.com/ashureev/fitcoach/internal/domain"
	"github.com/ashureev/fitcoach/internal/session"
)

// ActionGoBack tells the client to offer the "Go Back" control.
const ActionGoBack = "go_back"

type assessmentResponse struct {
	Step      assessment.Step        `json:"step"`
	StepTitle string                 `json:"stepTitle"`
	Steps     []assessment.StepInfo  `json:"steps"`
	Progress  int                    `json:"progress"`
	Draft     domain.AssessmentDraft `json:"draft"`
	Summary   []assessment.Row       `json:"summary"`
	Completed bool                   `json:"assessmentCompleted"`
	Loading   bool                   `json:"isLoading"`
	Error     string                 `json:"error,omitempty"`
}

func newAssessmentResponse(snap session.Snapshot) assessmentResponse {
	return assessmentResponse{
		Step:      snap.Step,
		StepTitle: snap.StepTitle,
		Steps:     assessment.Steps(),
		Progress:  snap.Progress,
		Draft:     snap.Draft,
		Summary:   snap.Summary,
		Completed: snap.Completed,
		Loading:   snap.Loading,
		Error:     snap.Error,
	}
}

// GetAssessment returns the wizard state.
func (h *Handler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.loggedIn(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, newAssessmentResponse(sess.Snapshot()))
}

// PatchAssessment merges answers into the draft. Fields left out of the
// body keep their value.
func (h *Handler) PatchAssessment(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.loggedIn(w, r)
	if !ok {
		return
	}
	var patch assessment.Patch
	if !h.decode(w, r, &patch) {
		return
	}
	sess.ApplyPatch(patch)
	JSON(w, http.StatusOK, newAssessmentResponse(sess.Snapshot()))
}

// NextStep advances the wizard.
func (h *Handler) NextStep(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.loggedIn(w, r)
	if !ok {
		return
	}
	sess.NextStep()
	JSON(w, http.StatusOK, newAssessmentResponse(sess.Snapshot()))
}

// PrevStep moves the wizard back.
func (h *Handler) PrevStep(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.loggedIn(w, r)
	if !ok {
		return
	}
	sess.PrevStep()
	JSON(w, http.StatusOK, newAssessmentResponse(sess.Snapshot()))
}

// JumpToStep moves the wizard to the step in the path. Numbers outside the
// wizard are clamped.
func (h *Handler) JumpToStep(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.loggedIn(w, r)
	if !ok {
		return
	}
	step, err := assessment.ParseStep(chi.URLParam(r, "step"))
	if err != nil {
		Error(w, http.StatusBadRequest, "step must be a number")
		return
	}
	sess.GoToStep(step)
	JSON(w, http.StatusOK, newAssessmentResponse(sess.Snapshot()))
}

// GoBack dismisses a submission error so the wizard is usable again.
func (h *Handler) GoBack(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.loggedIn(w, r)
	if !ok {
		return
	}
	sess.ClearError()
	JSON(w, http.StatusOK, newAssessmentResponse(sess.Snapshot()))
}

// SubmitAssessment completes the draft and generates the plan. It blocks
// until the model answers.
func (h *Handler) SubmitAssessment(w http.ResponseWriter, r *http.Request) {
	sess, user, ok := h.loggedIn(w, r)
	if !ok {
		return
	}

	// A client that disconnects still gets its plan on the next poll.
	err := sess.SubmitDraft(context.WithoutCancel(r.Context()))
	var verr *domain.ValidationError
	switch {
	case err == nil:
		snap := sess.Snapshot()
		JSON(w, http.StatusOK, map[string]interface{}{
			"plan":        snap.Plan,
			"chatHistory": snap.Transcript,
		})
	case errors.As(err, &verr):
		JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  verr.Error(),
			"fields": verr.Fields,
		})
	case errors.Is(err, session.ErrNotLoggedIn):
		Error(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, session.ErrStale):
		Error(w, http.StatusConflict, "session changed while the plan was generated")
	default:
		h.logger.Warn("Plan generation failed", "user_id", user.UserID, "error", err)
		JSON(w, http.StatusBadGateway, map[string]string{
			"error":  agent.PlanFailureMessage,
			"action": ActionGoBack,
		})
	}
}
