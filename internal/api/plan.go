package api

import (
	"net/http"
	"net/url"

	"github.com/ashureev/fitcoach/internal/domain"
	"github.com/ashureev/fitcoach/internal/view"
	"github.com/ashureev/fitcoach/web"
)

const noPlanError = "no plan available"

// plan returns the caller's plan or answers 401/404.
func (h *Handler) plan(w http.ResponseWriter, r *http.Request) (*domain.FitnessPlan, bool) {
	sess, _, ok := h.loggedIn(w, r)
	if !ok {
		return nil, false
	}
	plan := sess.Snapshot().Plan
	if plan == nil {
		Error(w, http.StatusNotFound, noPlanError)
		return nil, false
	}
	return plan, true
}

// GetPlan returns the whole plan.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.plan(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, plan)
}

// GetWorkout returns the workout accordion. ?open= names the expanded day
// (empty collapses all); ?toggle= activates a day header relative to open.
// Without either, the first day is expanded.
func (h *Handler) GetWorkout(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.plan(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, view.Workout(plan, openDay(plan, r.URL.Query())))
}

func openDay(plan *domain.FitnessPlan, q url.Values) string {
	open := view.DefaultOpenDay(plan)
	if q.Has("open") {
		open = q.Get("open")
	}
	if q.Has("toggle") {
		open = view.ToggleDay(open, q.Get("toggle"))
	}
	return open
}

// GetNutrition returns the nutrition tabs with ?day= selected.
func (h *Handler) GetNutrition(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.plan(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, view.Nutrition(plan, r.URL.Query().Get("day")))
}

// GetLifestyle returns the lifestyle habits.
func (h *Handler) GetLifestyle(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.plan(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"title":  view.HabitsTitle,
		"habits": view.Lifestyle(plan),
	})
}

// GetState returns the full session snapshot. It never requires a login.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.session(r).Snapshot())
}

// Dashboard renders the HTML dashboard for ?tab= and ?day=. The accordion
// follows ?open= and ?toggle= like GetWorkout.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	snap := h.session(r).Snapshot()
	v := view.Dashboard(snap, q.Get("tab"), q.Get("day"), openDay(snap.Plan, q))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := web.RenderDashboard(w, v); err != nil {
		h.logger.Error("Failed to render dashboard", "error", err)
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
	}
}
