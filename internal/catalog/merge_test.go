package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomportal/backend/internal/storage/models"
)

func ids(props []models.Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.ID
	}
	return out
}

func TestMerge_Example(t *testing.T) {
	static := []models.Property{
		{ID: "a", Address: "Calle B"},
		{ID: "b", Address: "Calle A"},
	}
	live := []models.Property{
		{ID: "a", Address: "Calle B", Rooms: []models.Room{{ID: "r1", Name: "Habitación 1"}}},
		{ID: "c", Address: "Calle C"},
	}

	merged := Merge(static, live)

	require.Equal(t, []string{"b", "a", "c"}, ids(merged))
	assert.Equal(t, "Calle A", merged[0].Address)
	require.Len(t, merged[1].Rooms, 1)
	assert.Equal(t, "r1", merged[1].Rooms[0].ID)
	assert.Equal(t, "Calle C", merged[2].Address)
}

func TestMerge_LiveReplacesStaticVerbatim(t *testing.T) {
	owner := "owner-1"
	static := []models.Property{{
		ID:             "a",
		Address:        "Calle Mayor 1",
		City:           "Madrid",
		Rooms:          []models.Room{{ID: "r1"}, {ID: "r2"}},
		CleaningConfig: &models.CleaningConfig{Enabled: true, Days: []string{"Lunes"}},
		OwnerID:        &owner,
	}}
	live := []models.Property{{ID: "a", Address: "Calle Mayor 1"}}

	merged := Merge(static, live)

	require.Len(t, merged, 1)
	assert.Equal(t, live[0], merged[0])
	assert.Empty(t, merged[0].City)
	assert.Nil(t, merged[0].CleaningConfig)
	assert.Nil(t, merged[0].OwnerID)
}

func TestMerge_Completeness(t *testing.T) {
	static := []models.Property{
		{ID: "s1", Address: "Zurbano 1"},
		{ID: "both", Address: "Goya 5"},
		{ID: "s2", Address: "Arenal 3"},
	}
	live := []models.Property{
		{ID: "l1", Address: "Princesa 9"},
		{ID: "both", Address: "Goya 5 bis"},
		{ID: "l2"},
	}

	merged := Merge(static, live)

	assert.ElementsMatch(t, []string{"s1", "both", "s2", "l1", "l2"}, ids(merged))
}

func TestMerge_SortsMissingAddressFirstAndKeepsTies(t *testing.T) {
	static := []models.Property{
		{ID: "x", Address: "Calle Sol"},
		{ID: "y", Address: "Calle Luna"},
		{ID: "z", Address: "Calle Luna"},
	}
	live := []models.Property{{ID: "new"}}

	merged := Merge(static, live)

	assert.Equal(t, []string{"new", "y", "z", "x"}, ids(merged))
}

func TestMerge_SpanishCollation(t *testing.T) {
	static := []models.Property{
		{ID: "o", Address: "Calle Oca"},
		{ID: "n-tilde", Address: "Calle Ñandú"},
		{ID: "n", Address: "Calle Nilo"},
		{ID: "a-accent", Address: "Calle Ávila"},
		{ID: "b", Address: "calle Bailén"},
	}

	merged := Merge(static, nil)

	assert.Equal(t, []string{"a-accent", "b", "n", "n-tilde", "o"}, ids(merged))
}

func TestMerge_DuplicateLiveIDLaterWins(t *testing.T) {
	live := []models.Property{
		{ID: "c", Address: "Primera"},
		{ID: "c", Address: "Segunda"},
	}

	merged := Merge(nil, live)

	require.Len(t, merged, 1)
	assert.Equal(t, "Segunda", merged[0].Address)
}

func TestMerge_Idempotent(t *testing.T) {
	static := Static()
	live := []models.Property{
		DecodeLive("alcala-112", []byte(`{"address":"Calle de Alcalá 112, 3ºB","rooms":"broken"}`)),
		DecodeLive("nuevo-1", []byte(`{"address":"Calle de Toledo 4"}`)),
	}

	first := Merge(static, live)
	second := Merge(static, live)

	assert.Equal(t, first, second)
	assert.Equal(t, Static(), static, "inputs must not be modified")
}

func TestMerge_StaticOnlyHasNoConfigs(t *testing.T) {
	merged := Merge(Static(), nil)

	p := Find(merged, "atocha-27")
	require.NotNil(t, p)
	assert.Nil(t, p.CleaningConfig)
	assert.Nil(t, p.WifiConfig)
	assert.Nil(t, Find(merged, "missing"))
}

func TestStatic_ReturnsCopies(t *testing.T) {
	a := Static()
	require.NotEmpty(t, a)
	a[0].Address = "changed"
	a[0].Rooms[0].Name = "changed"

	b := Static()
	assert.NotEqual(t, "changed", b[0].Address)
	assert.NotEqual(t, "changed", b[0].Rooms[0].Name)
}
