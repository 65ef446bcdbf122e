package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/roomportal/backend/internal/api/middleware"
	"github.com/roomportal/backend/internal/calendar"
	"github.com/roomportal/backend/internal/export"
	"github.com/roomportal/backend/internal/portal"
	"github.com/roomportal/backend/internal/schedule"
	"github.com/roomportal/backend/internal/session"
	"github.com/roomportal/backend/internal/storage/models"
)

// CleaningRefresher is told when a cleaning schedule changes.
type CleaningRefresher interface {
	ForceEvaluate()
}

// ListProperties returns the effective property list.
func ListProperties(props *portal.PropertyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := props.List(r.Context())
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GetProperty returns one effective property.
func GetProperty(props *portal.PropertyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := props.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// PutProperty stores the request body as the live document of a property.
func PutProperty(props *portal.PropertyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc json.RawMessage
		if !decodeJSON(w, r, &doc) {
			return
		}
		p, err := props.PutLive(r.Context(), mux.Vars(r)["id"], doc)
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// DeleteProperty removes the live document of a property.
func DeleteProperty(props *portal.PropertyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := props.DeleteLive(r.Context(), mux.Vars(r)["id"]); err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UpdateCleaning replaces the cleaning configuration of a property.
func UpdateCleaning(props *portal.PropertyService, refresher CleaningRefresher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CleaningConfig
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := props.UpdateCleaning(r.Context(), mux.Vars(r)["id"], req)
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		if refresher != nil {
			refresher.ForceEvaluate()
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// UpdateWifi replaces the wifi details of a property.
func UpdateWifi(props *portal.PropertyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.WifiConfig
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := props.UpdateWifi(r.Context(), mux.Vars(r)["id"], req)
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// NextCleaning returns the next cleaning date of a property. Tenants may
// only ask about the property they live in.
func NextCleaning(props *portal.PropertyService, now func() time.Time, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		s := session.FromContext(r.Context())
		if s.Role == session.RoleTenant && s.PropertyID != id {
			middleware.WriteError(w, http.StatusForbidden, middleware.ErrForbidden, "Tenants can only view their own property")
			return
		}

		next, err := props.NextCleaning(r.Context(), id, now())
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, next)
	}
}

// CleaningCalendar serves the upcoming cleaning days of a property as an
// iCalendar feed. The weeks query parameter bounds the horizon.
func CleaningCalendar(props *portal.PropertyService, calc *schedule.Calculator, now func() time.Time, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		s := session.FromContext(r.Context())
		if s.Role == session.RoleTenant && s.PropertyID != id {
			middleware.WriteError(w, http.StatusForbidden, middleware.ErrForbidden, "Tenants can only view their own property")
			return
		}

		weeks := calendar.DefaultWeeks
		if v := r.URL.Query().Get("weeks"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > calendar.MaxWeeks {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation,
					fmt.Sprintf("weeks must be between 1 and %d", calendar.MaxWeeks))
				return
			}
			weeks = n
		}

		p, err := props.Get(r.Context(), id)
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}

		at := now()
		events := calendar.Upcoming(*p, calc, at, weeks)
		w.Header().Set("Content-Type", calendar.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "limpieza-"+p.ID+".ics"))
		if err := calendar.Write(w, "Limpieza "+p.Address, events, at); err != nil {
			logger.Warn("writing cleaning calendar failed", zap.String("property_id", id), zap.Error(err))
		}
	}
}

// OwnerProperties returns the properties owned by the caller.
func OwnerProperties(props *portal.PropertyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := session.FromContext(r.Context())
		list, err := props.ForOwner(r.Context(), s.UserID)
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// ExportProperties downloads the property portfolio as an xlsx workbook.
func ExportProperties(props *portal.PropertyService, calc *schedule.Calculator, now func() time.Time, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := props.Effective(r.Context())
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}

		at := now()
		data, err := export.Properties(list, calc, at)
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}

		filename := fmt.Sprintf("propiedades-%s.xlsx", at.In(calc.Location()).Format(schedule.DateLayout))
		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}
