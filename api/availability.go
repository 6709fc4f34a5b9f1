package api

import (
	"net/http"

	"go.uber.org/zap"
)

func (a *API) getAvailability(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("date")
	if value == "" {
		a.Response(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	date, err := a.engine.ParseDate(value)
	if err != nil {
		a.Response(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}

	slots, err := a.engine.GetAvailableSlots(r.Context(), date)
	if err != nil {
		a.internalError(w, "could not load availability", err, zap.String("date", value))
		return
	}
	a.Response(w, http.StatusOK, slots)
}
