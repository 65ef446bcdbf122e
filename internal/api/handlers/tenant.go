package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/roomportal/backend/internal/api/middleware"
	"github.com/roomportal/backend/internal/portal"
	"github.com/roomportal/backend/internal/session"
)

// TenantHome returns the tenant's home screen.
func TenantHome(tenant *portal.TenantService, now func() time.Time, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		home, err := tenant.Home(r.Context(), session.FromContext(r.Context()), now())
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, home)
	}
}

// ListIncidents returns the incidents raised by the tenant.
func ListIncidents(tasks *portal.TaskService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := tasks.Incidents(r.Context(), session.FromContext(r.Context()))
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// ReportIncident records a new tenant incident.
func ReportIncident(tasks *portal.TaskService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req portal.IncidentInput
		if !decodeJSON(w, r, &req) {
			return
		}
		t, err := tasks.ReportIncident(r.Context(), session.FromContext(r.Context()), req)
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}
