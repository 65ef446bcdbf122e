package portal

import (
	"context"
	"time"

	"github.com/roomportal/backend/internal/session"
	"github.com/roomportal/backend/internal/storage"
	"github.com/roomportal/backend/internal/storage/models"
)

// TenantHome is everything a tenant's home screen shows.
type TenantHome struct {
	Property *models.Property   `json:"property"`
	Room     *models.Room       `json:"room"`
	Wifi     *models.WifiConfig `json:"wifi"`
	Cleaning *NextCleaning      `json:"cleaning"`
	Site     models.SiteConfig  `json:"site"`
}

// TenantService assembles the tenant portal.
type TenantService struct {
	properties *PropertyService
	settings   *storage.SettingsRepository
}

// NewTenantService creates a tenant service.
func NewTenantService(properties *PropertyService, settings *storage.SettingsRepository) *TenantService {
	return &TenantService{properties: properties, settings: settings}
}

// Home returns the tenant's property, room, wifi details and next cleaning
// date. A property without an active schedule yields Cleaning.Scheduled false.
func (s *TenantService) Home(ctx context.Context, sess session.Session, now time.Time) (*TenantHome, error) {
	if sess.Role != session.RoleTenant {
		return nil, forbidden("viewing the tenant home")
	}
	if sess.PropertyID == "" {
		return nil, notFound("property", "")
	}

	p, err := s.properties.Get(ctx, sess.PropertyID)
	if err != nil {
		return nil, err
	}
	site, err := s.settings.GetSiteConfig(ctx)
	if err != nil {
		return nil, err
	}

	home := &TenantHome{
		Property: p,
		Wifi:     p.WifiConfig,
		Cleaning: s.properties.nextCleaning(p, now),
		Site:     site,
	}
	if sess.RoomID != "" {
		home.Room = p.Room(sess.RoomID)
	}
	return home, nil
}
