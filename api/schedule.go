package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"booking-availability/schedule"
)

type scheduleBody struct {
	Rules []schedule.Rule `json:"rules"`
}

// getSchedule returns the stored rules only; days without a rule follow the
// default week.
func (a *API) getSchedule(w http.ResponseWriter, r *http.Request) {
	rules, err := a.schedules.ListRules(r.Context())
	if err != nil {
		a.internalError(w, "could not load schedule", err)
		return
	}
	a.Response(w, http.StatusOK, scheduleBody{Rules: rules})
}

func (a *API) putSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Rules) == 0 {
		a.Response(w, http.StatusBadRequest, "at least one rule is required")
		return
	}

	seen := make(map[int]bool, len(req.Rules))
	for i := range req.Rules {
		rule := &req.Rules[i]
		if err := rule.Validate(); err != nil {
			a.Response(w, http.StatusBadRequest, fmt.Sprintf("validate: %s", err))
			return
		}
		if seen[rule.DayOfWeek] {
			a.Response(w, http.StatusBadRequest, fmt.Sprintf("validate: day of week %d given twice", rule.DayOfWeek))
			return
		}
		seen[rule.DayOfWeek] = true
	}

	if err := a.schedules.UpsertRules(r.Context(), req.Rules, a.now()); err != nil {
		a.internalError(w, "could not save schedule", err)
		return
	}
	a.Response(w, http.StatusOK, req)
}
