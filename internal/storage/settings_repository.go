package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roomportal/backend/internal/storage/models"
)

// SettingsRepository reads and writes the key/value settings table.
type SettingsRepository struct {
	BaseRepository
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{BaseRepository: NewBaseRepository(db)}
}

// GetSiteConfig assembles the site configuration from the settings table.
// Missing keys yield empty fields.
func (r *SettingsRepository) GetSiteConfig(ctx context.Context) (models.SiteConfig, error) {
	rows, err := r.DB().QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return models.SiteConfig{}, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.SiteConfig{}, fmt.Errorf("scanning setting: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.SiteConfig{}, err
	}

	return models.SiteConfig{
		CompanyName:  values[models.SettingCompanyName],
		ContactEmail: values[models.SettingContactEmail],
		ContactPhone: values[models.SettingContactPhone],
		WhatsApp:     values[models.SettingWhatsApp],
		GDPRContact:  values[models.SettingGDPRContact],
		DefaultCity:  values[models.SettingDefaultCity],
	}, nil
}

// UpdateSiteConfig stores every non-empty field of cfg.
func (r *SettingsRepository) UpdateSiteConfig(ctx context.Context, cfg models.SiteConfig) error {
	values := map[string]string{
		models.SettingCompanyName:  cfg.CompanyName,
		models.SettingContactEmail: cfg.ContactEmail,
		models.SettingContactPhone: cfg.ContactPhone,
		models.SettingWhatsApp:     cfg.WhatsApp,
		models.SettingGDPRContact:  cfg.GDPRContact,
		models.SettingDefaultCity:  cfg.DefaultCity,
	}

	return r.DB().TransactionContext(ctx, func(tx *sql.Tx) error {
		for key, value := range values {
			if value == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
			`, key, value, r.Now()); err != nil {
				return fmt.Errorf("updating setting %s: %w", key, err)
			}
		}
		return nil
	})
}
