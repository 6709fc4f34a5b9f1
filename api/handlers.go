package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"booking-availability/appointment"
	"booking-availability/availability"
	"booking-availability/block"
	"booking-availability/schedule"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type API struct {
	root   *mux.Router
	router *mux.Router
	db     *sql.DB

	engine       *availability.Engine
	appointments *appointment.Accessor
	schedules    *schedule.Accessor
	blocks       *block.Accessor

	limiter        *rateLimiter
	trustProxy     bool
	allowedOrigins []string
	logger         *zap.Logger
	now            func() time.Time
}

func NewAPI(db *sql.DB, engine *availability.Engine, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	root := mux.NewRouter()
	return &API{
		root:           root,
		router:         root.PathPrefix("/api").Subrouter(),
		db:             db,
		engine:         engine,
		appointments:   appointment.NewAccessor(db),
		schedules:      schedule.NewAccessor(db),
		blocks:         block.NewAccessor(db),
		allowedOrigins: []string{"*"},
		logger:         logger,
		now:            time.Now,
	}
}

// WithBookingRateLimit caps booking attempts per client IP. Zero or less
// disables the limit.
func (a *API) WithBookingRateLimit(perMinute int) *API {
	a.limiter = newRateLimiter(perMinute)
	return a
}

// WithTrustedProxy takes the client address from X-Forwarded-For and
// X-Real-IP. Enable only behind a proxy that overwrites those headers.
func (a *API) WithTrustedProxy(trust bool) *API {
	a.trustProxy = trust
	return a
}

func (a *API) WithAllowedOrigins(origins []string) *API {
	a.allowedOrigins = origins
	return a
}

func (a *API) WithClock(now func() time.Time) *API {
	a.now = now
	return a
}

func (a *API) Router() *mux.Router {
	return a.root
}

func (a *API) Handler() http.Handler {
	var h http.Handler = a.root
	h = handlers.CORS(
		handlers.AllowedOrigins(a.allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(zap.NewStdLog(a.logger)), handlers.PrintRecoveryStack(true))(h)
	h = handlers.CombinedLoggingHandler(os.Stdout, h)
	if a.trustProxy {
		h = handlers.ProxyHeaders(h)
	}
	return h
}

type Response struct {
	Status   int `json:"status"`
	Response any `json:"response"`
}

func (a *API) Response(w http.ResponseWriter, status int, data any) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(Response{
		Status:   status,
		Response: data,
	})
	if err != nil {
		a.logger.Error("encode response", zap.Error(err))
	}
}

// internalError logs err and answers 500 with message only.
func (a *API) internalError(w http.ResponseWriter, message string, err error, fields ...zap.Field) {
	a.logger.Error(message, append(fields, zap.Error(err))...)
	a.Response(w, http.StatusInternalServerError, message)
}

func (a *API) RegisterRoutes() {
	a.router.HandleFunc("/health", a.health).Methods(http.MethodGet)

	a.router.HandleFunc("/availability", a.getAvailability).Methods(http.MethodGet)

	a.router.Handle("/appointments", a.rateLimit(http.HandlerFunc(a.bookAppointment))).Methods(http.MethodPost)
	a.router.HandleFunc("/appointments", a.getAppointments).Methods(http.MethodGet)
	a.router.HandleFunc("/appointments/{id}", a.getAppointment).Methods(http.MethodGet)
	a.router.HandleFunc("/appointments/{id}/status", a.updateAppointmentStatus).Methods(http.MethodPatch)
	a.router.HandleFunc("/appointments/{id}/notes", a.updateAppointmentNotes).Methods(http.MethodPatch)
	a.router.HandleFunc("/appointments/{id}", a.deleteAppointment).Methods(http.MethodDelete)

	a.router.HandleFunc("/schedule", a.getSchedule).Methods(http.MethodGet)
	a.router.HandleFunc("/schedule", a.putSchedule).Methods(http.MethodPut)

	a.router.HandleFunc("/blocks", a.getBlocks).Methods(http.MethodGet)
	a.router.HandleFunc("/blocks", a.createBlock).Methods(http.MethodPost)
	a.router.HandleFunc("/blocks/{id}", a.deleteBlock).Methods(http.MethodDelete)
}
