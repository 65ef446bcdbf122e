package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomportal/backend/internal/storage/models"
)

func TestDecodeLive_FullDocument(t *testing.T) {
	raw := []byte(`{
		"id": "ignored",
		"address": "Calle de Toledo 4",
		"city": "Madrid",
		"rooms": [{"id": "h1", "name": "Habitación 1", "price": 450, "status": "available"}],
		"cleaning_config": {"enabled": true, "days": ["Lunes", "Jueves"], "hours": "10:00-12:00", "cost_per_hour": 12.5},
		"wifi_config": {"ssid": "Toledo4", "password": "secreto"},
		"owner_id": "owner-7"
	}`)

	p := DecodeLive("toledo-4", raw)

	assert.Equal(t, "toledo-4", p.ID)
	assert.Equal(t, "Calle de Toledo 4", p.Address)
	require.Len(t, p.Rooms, 1)
	assert.Equal(t, 450.0, p.Rooms[0].Price)
	require.NotNil(t, p.CleaningConfig)
	assert.Equal(t, []string{"Lunes", "Jueves"}, p.CleaningConfig.Days)
	require.NotNil(t, p.WifiConfig)
	assert.Equal(t, "Toledo4", p.WifiConfig.SSID)
	require.NotNil(t, p.OwnerID)
	assert.Equal(t, "owner-7", *p.OwnerID)
}

func TestDecodeLive_CamelCaseKeys(t *testing.T) {
	p := DecodeLive("x", []byte(`{"cleaningConfig": {"enabled": true, "days": ["Martes"]}, "ownerId": "o1"}`))

	require.NotNil(t, p.CleaningConfig)
	assert.True(t, p.CleaningConfig.Enabled)
	require.NotNil(t, p.OwnerID)
	assert.Equal(t, "o1", *p.OwnerID)
}

func TestDecodeLive_Coercions(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantRooms int
		wantAddr  string
	}{
		{"rooms is a string", `{"address":"A","rooms":"oops"}`, 0, "A"},
		{"rooms is an object", `{"address":"A","rooms":{"h1":{}}}`, 0, "A"},
		{"rooms is null", `{"address":"A","rooms":null}`, 0, "A"},
		{"rooms missing", `{"address":"A"}`, 0, "A"},
		{"one bad room skipped", `{"rooms":[{"id":"h1"},"bad",{"id":"h2","price":"cheap"},{"id":"h3"}]}`, 2, ""},
		{"not an object", `[1,2,3]`, 0, ""},
		{"not json", `{{{`, 0, ""},
		{"address wrong type", `{"address": 12}`, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DecodeLive("id-1", []byte(tt.raw))
			assert.Equal(t, "id-1", p.ID)
			assert.NotNil(t, p.Rooms)
			assert.Len(t, p.Rooms, tt.wantRooms)
			assert.Equal(t, tt.wantAddr, p.Address)
		})
	}
}

func TestDecodeLive_MalformedConfigsAreAbsent(t *testing.T) {
	p := DecodeLive("x", []byte(`{"cleaning_config": "weekly", "wifi_config": 5}`))

	assert.Nil(t, p.CleaningConfig)
	assert.Nil(t, p.WifiConfig)
}

func TestDecodeDocuments_PreservesOrder(t *testing.T) {
	docs := []models.PropertyDocument{
		{ID: "b", Data: []byte(`{"address":"B"}`)},
		{ID: "a", Data: []byte(`not json`)},
	}

	props := DecodeDocuments(docs)

	require.Len(t, props, 2)
	assert.Equal(t, "b", props[0].ID)
	assert.Equal(t, "a", props[1].ID)
}
