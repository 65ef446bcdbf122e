package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/roomportal/backend/internal/api/middleware"
	"github.com/roomportal/backend/internal/portal"
	"github.com/roomportal/backend/internal/storage"
	"github.com/roomportal/backend/internal/storage/models"
)

// GetSettings returns the site configuration.
func GetSettings(repo *storage.SettingsRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := repo.GetSiteConfig(r.Context())
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}

// UpdateSettings stores the non-empty fields of the site configuration.
func UpdateSettings(repo *storage.SettingsRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.SiteConfig
		if !decodeJSON(w, r, &req) {
			return
		}

		req.CompanyName = portal.SanitizeText(req.CompanyName)
		req.ContactEmail = strings.TrimSpace(req.ContactEmail)
		req.ContactPhone = strings.TrimSpace(req.ContactPhone)
		req.WhatsApp = strings.TrimSpace(req.WhatsApp)
		req.GDPRContact = strings.TrimSpace(req.GDPRContact)
		req.DefaultCity = portal.SanitizeText(req.DefaultCity)

		ctx := r.Context()
		if err := repo.UpdateSiteConfig(ctx, req); err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}

		cfg, err := repo.GetSiteConfig(ctx)
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}
