package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomportal/backend/internal/session"
	"github.com/roomportal/backend/internal/storage/models"
)

func TestTenantService_HomeNotScheduled(t *testing.T) {
	s := setup(t)

	home, err := s.tenant.Home(ctx, tenant, friday(t))

	require.NoError(t, err)
	assert.Equal(t, "alcala-112", home.Property.ID)
	require.NotNil(t, home.Room)
	assert.Equal(t, "Habitación 1", home.Room.Name)
	assert.Nil(t, home.Wifi)
	assert.False(t, home.Cleaning.Scheduled)
	assert.Equal(t, "Room Portal", home.Site.CompanyName)
}

func TestTenantService_HomeWithSchedule(t *testing.T) {
	s := setup(t)
	_, err := s.properties.UpdateCleaning(ctx, "alcala-112", models.CleaningConfig{Enabled: true, Days: []string{"Viernes"}})
	require.NoError(t, err)
	_, err = s.properties.UpdateWifi(ctx, "alcala-112", models.WifiConfig{SSID: "Alcala", Password: "clave"})
	require.NoError(t, err)

	home, err := s.tenant.Home(ctx, tenant, friday(t))

	require.NoError(t, err)
	assert.True(t, home.Cleaning.Scheduled)
	assert.Equal(t, "2026-10-16", *home.Cleaning.Date)
	assert.Equal(t, "Alcala", home.Wifi.SSID)
}

func TestTenantService_HomeErrors(t *testing.T) {
	s := setup(t)

	_, err := s.tenant.Home(ctx, staff, friday(t))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.tenant.Home(ctx, session.Session{UserID: "t-2", Role: session.RoleTenant}, friday(t))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.tenant.Home(ctx, session.Session{UserID: "t-3", Role: session.RoleTenant, PropertyID: "gone"}, friday(t))
	assert.ErrorIs(t, err, ErrNotFound)
}
