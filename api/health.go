package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.PingContext(ctx); err != nil {
		a.logger.Warn("health check: database unreachable", zap.Error(err))
		a.Response(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	a.Response(w, http.StatusOK, map[string]string{"status": "ok"})
}
