package portal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomportal/backend/internal/snapshot"
	"github.com/roomportal/backend/internal/storage/models"
)

func ids(props []models.Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.ID
	}
	return out
}

func TestPropertyService_EffectiveStaticOnly(t *testing.T) {
	s := setup(t)

	props, err := s.properties.Effective(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"alcala-112", "atocha-27", "bravo-murillo-38", "ezequiel-solana-9"}, ids(props))
	for _, p := range props {
		assert.Nil(t, p.CleaningConfig)
	}
}

func TestPropertyService_PutLiveReplacesAndAppends(t *testing.T) {
	s := setup(t)

	_, err := s.properties.PutLive(ctx, "atocha-27", json.RawMessage(`{"address":"Atocha 27 (reformado)","rooms":"broken"}`))
	require.NoError(t, err)
	_, err = s.properties.PutLive(ctx, "nueva", json.RawMessage(`{"address":"Avenida de América 1","rooms":[{"id":"r1","name":"H1"}]}`))
	require.NoError(t, err)

	props, err := s.properties.Effective(ctx)
	require.NoError(t, err)
	require.Len(t, props, 5)

	atocha, err := s.properties.Get(ctx, "atocha-27")
	require.NoError(t, err)
	assert.Equal(t, "Atocha 27 (reformado)", atocha.Address)
	assert.Empty(t, atocha.City, "live documents replace static entries wholesale")
	assert.NotNil(t, atocha.Rooms)
	assert.Empty(t, atocha.Rooms)

	assert.Equal(t, []string{snapshot.CollectionProperties, snapshot.CollectionProperties}, s.notifier.seen())
}

func TestPropertyService_PutLiveValidation(t *testing.T) {
	s := setup(t)

	_, err := s.properties.PutLive(ctx, "x", json.RawMessage(`[1,2]`))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.properties.PutLive(ctx, " ", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, s.notifier.seen())
}

func TestPropertyService_DeleteLiveRevertsToStatic(t *testing.T) {
	s := setup(t)
	_, err := s.properties.PutLive(ctx, "atocha-27", json.RawMessage(`{"address":"Otra"}`))
	require.NoError(t, err)

	require.NoError(t, s.properties.DeleteLive(ctx, "atocha-27"))

	p, err := s.properties.Get(ctx, "atocha-27")
	require.NoError(t, err)
	assert.Equal(t, "Calle de Atocha 27, 2ºIzq", p.Address)
	assert.ErrorIs(t, s.properties.DeleteLive(ctx, "atocha-27"), ErrNotFound)
}

func TestPropertyService_GetReturnsCopy(t *testing.T) {
	s := setup(t)

	p, err := s.properties.Get(ctx, "alcala-112")
	require.NoError(t, err)
	p.Address = "mutated"
	p.Rooms[0].Name = "mutated"

	again, err := s.properties.Get(ctx, "alcala-112")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again.Address)
	assert.NotEqual(t, "mutated", again.Rooms[0].Name)

	_, err = s.properties.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPropertyService_UpdateCleaningAndNext(t *testing.T) {
	s := setup(t)

	p, err := s.properties.UpdateCleaning(ctx, "bravo-murillo-38", models.CleaningConfig{
		Enabled: true,
		Days:    []string{"lunes", "Miercoles", "Lunes"},
		Hours:   "10:00-12:00",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Lunes", "Miércoles"}, p.CleaningConfig.Days)
	assert.Len(t, p.Rooms, 2, "the full record is kept")

	next, err := s.properties.NextCleaning(ctx, "bravo-murillo-38", friday(t))
	require.NoError(t, err)
	assert.True(t, next.Scheduled)
	assert.Equal(t, "2026-10-19", *next.Date)
	assert.Equal(t, "10:00-12:00", next.Hours)

	unscheduled, err := s.properties.NextCleaning(ctx, "atocha-27", friday(t))
	require.NoError(t, err)
	assert.False(t, unscheduled.Scheduled)
	assert.Nil(t, unscheduled.Date)
	assert.NotNil(t, unscheduled.Days)
}

func TestPropertyService_UpdateCleaningValidation(t *testing.T) {
	s := setup(t)

	_, err := s.properties.UpdateCleaning(ctx, "atocha-27", models.CleaningConfig{Enabled: true, Days: []string{"Funday"}})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.properties.UpdateCleaning(ctx, "atocha-27", models.CleaningConfig{Enabled: true})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.properties.UpdateCleaning(ctx, "atocha-27", models.CleaningConfig{Days: []string{"Lunes"}, CostPerHour: -1})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.properties.UpdateCleaning(ctx, "missing", models.CleaningConfig{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPropertyService_UpdateWifi(t *testing.T) {
	s := setup(t)

	p, err := s.properties.UpdateWifi(ctx, "alcala-112", models.WifiConfig{SSID: " Alcala112 ", Password: "secreta", Notes: "<i>router</i> en el salón"})
	require.NoError(t, err)
	assert.Equal(t, "Alcala112", p.WifiConfig.SSID)
	assert.Equal(t, "router en el salón", p.WifiConfig.Notes)

	_, err = s.properties.UpdateWifi(ctx, "alcala-112", models.WifiConfig{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPropertyService_ForOwner(t *testing.T) {
	s := setup(t)
	_, err := s.properties.PutLive(ctx, "ezequiel-solana-9", json.RawMessage(`{"address":"Ezequiel Solana 9","owner_id":"o-1"}`))
	require.NoError(t, err)

	owned, err := s.properties.ForOwner(ctx, owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ezequiel-solana-9"}, ids(owned))

	none, err := s.properties.ForOwner(ctx, "o-2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPropertyService_CachesUntilInvalidated(t *testing.T) {
	s := setup(t)
	_, err := s.properties.Effective(ctx)
	require.NoError(t, err)

	// A write by another instance bypasses this service's cache.
	require.NoError(t, storageDocs(s).Put(ctx, "remote", []byte(`{"address":"Remota"}`)))
	cached, err := s.properties.Effective(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 4)

	s.properties.Invalidate()
	fresh, err := s.properties.Effective(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 5)
}

func TestValidateCleaning_DisabledKeepsDays(t *testing.T) {
	cfg := models.CleaningConfig{Days: []string{"sabado"}}
	require.NoError(t, ValidateCleaning(&cfg))
	assert.Equal(t, []string{"Sábado"}, cfg.Days)
	assert.NoError(t, ValidateCleaning(&models.CleaningConfig{}))
}
