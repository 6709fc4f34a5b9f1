package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"booking-availability/appointment"
	"booking-availability/availability"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type bookAppointmentRequest struct {
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	ServiceType string     `json:"service_type"`
	PatientID   *uuid.UUID `json:"patient_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Notes       string     `json:"notes"`
}

type validationResponse struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

func (a *API) bookAppointment(w http.ResponseWriter, r *http.Request) {
	var req bookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := a.engine.Book(r.Context(), availability.BookingRequest{
		Date:        req.Date,
		Time:        req.Time,
		ServiceType: req.ServiceType,
		Patient: appointment.Patient{
			ID:    req.PatientID,
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		},
		Notes: req.Notes,
	})
	if err != nil {
		a.internalError(w, "could not book appointment", err, zap.String("date", req.Date), zap.String("time", req.Time))
		return
	}

	switch res.Outcome {
	case availability.Booked:
		a.Response(w, http.StatusCreated, res.Appointment)
	case availability.Conflict:
		a.Response(w, http.StatusConflict, res.Conflict.Error())
	default:
		a.Response(w, http.StatusBadRequest, validationResponse{Field: res.Invalid.Field, Error: res.Invalid.Message})
	}
}

type getAppointmentsResponse struct {
	Date         string                    `json:"date,omitempty"`
	Appointments []appointment.Appointment `json:"appointments"`
}

// getAppointments lists appointments, cancelled included, ordered by time.
// date selects one day; otherwise from and to (inclusive dates) and
// patient_id narrow the list, and no parameters list everything.
func (a *API) getAppointments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var filter appointment.Filter

	if value := query.Get("date"); value != "" {
		if query.Get("from") != "" || query.Get("to") != "" {
			a.Response(w, http.StatusBadRequest, "date cannot be combined with from or to")
			return
		}
		date, err := a.engine.ParseDate(value)
		if err != nil {
			a.Response(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
			return
		}
		filter.From, filter.To = a.engine.Day(date)
	}
	if value := query.Get("from"); value != "" {
		from, err := a.engine.ParseDate(value)
		if err != nil {
			a.Response(w, http.StatusBadRequest, "from must be in YYYY-MM-DD format")
			return
		}
		filter.From, _ = a.engine.Day(from)
	}
	if value := query.Get("to"); value != "" {
		to, err := a.engine.ParseDate(value)
		if err != nil {
			a.Response(w, http.StatusBadRequest, "to must be in YYYY-MM-DD format")
			return
		}
		_, filter.To = a.engine.Day(to)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		a.Response(w, http.StatusBadRequest, "from must not be after to")
		return
	}
	if value := query.Get("patient_id"); value != "" {
		patientID, err := uuid.Parse(value)
		if err != nil {
			a.Response(w, http.StatusBadRequest, "invalid patient ID")
			return
		}
		filter.PatientID = &patientID
	}

	appointments, err := a.appointments.List(r.Context(), filter)
	if err != nil {
		a.internalError(w, "could not list appointments", err)
		return
	}
	a.Response(w, http.StatusOK, getAppointmentsResponse{Date: query.Get("date"), Appointments: appointments})
}

func (a *API) appointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		a.Response(w, http.StatusBadRequest, "invalid appointment ID")
		return uuid.Nil, false
	}
	return id, true
}

func (a *API) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := a.appointmentID(w, r)
	if !ok {
		return
	}

	appt, err := a.appointments.Get(r.Context(), id)
	if err != nil {
		a.internalError(w, "could not load appointment", err, zap.String("appointment_id", id.String()))
		return
	}
	if appt == nil {
		a.Response(w, http.StatusNotFound, "appointment not found")
		return
	}
	a.Response(w, http.StatusOK, appt)
}

type updateStatusRequest struct {
	Status appointment.Status `json:"status"`
}

func (a *API) updateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := a.appointmentID(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		a.Response(w, http.StatusBadRequest, "status must be one of pending, confirmed, cancelled")
		return
	}

	appt, err := a.appointments.UpdateStatus(r.Context(), id, req.Status)
	switch {
	case errors.Is(err, appointment.ErrNotFound):
		a.Response(w, http.StatusNotFound, "appointment not found")
		return
	case errors.Is(err, appointment.ErrSlotTaken):
		a.Response(w, http.StatusConflict, "another appointment already holds this slot")
		return
	case err != nil:
		a.internalError(w, "could not update appointment status", err, zap.String("appointment_id", id.String()))
		return
	}

	a.logger.Info("appointment status changed", zap.String("appointment_id", id.String()), zap.String("status", string(appt.Status)))
	a.Response(w, http.StatusOK, appt)
}

func (a *API) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := a.appointmentID(w, r)
	if !ok {
		return
	}

	err := a.appointments.Delete(r.Context(), id)
	if errors.Is(err, appointment.ErrNotFound) {
		a.Response(w, http.StatusNotFound, "appointment not found")
		return
	}
	if err != nil {
		a.internalError(w, "could not delete appointment", err, zap.String("appointment_id", id.String()))
		return
	}
	a.Response(w, http.StatusNoContent, nil)
}

type updateNotesRequest struct {
	Notes *string `json:"notes"`
}

func (a *API) updateAppointmentNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := a.appointmentID(w, r)
	if !ok {
		return
	}

	var req updateNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Notes == nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := appointment.ValidateNotes(*req.Notes); err != nil {
		a.Response(w, http.StatusBadRequest, err.Error())
		return
	}

	appt, err := a.appointments.UpdateNotes(r.Context(), id, *req.Notes)
	if errors.Is(err, appointment.ErrNotFound) {
		a.Response(w, http.StatusNotFound, "appointment not found")
		return
	}
	if err != nil {
		a.internalError(w, "could not update appointment notes", err, zap.String("appointment_id", id.String()))
		return
	}
	a.Response(w, http.StatusOK, appt)
}
