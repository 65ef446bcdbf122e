package catalog

import (
	"encoding/json"

	"github.com/roomportal/backend/internal/storage/models"
)

// DecodeLive converts a stored live document into a Property.
//
// Decoding never fails: a document that is not a JSON object yields a
// property carrying only its id, a rooms field that is not a list yields no
// rooms, unreadable rooms are skipped, and malformed cleaning or wifi
// configs are treated as absent. The storage key always wins over any id
// embedded in the document. Both snake_case and camelCase keys are read.
func DecodeLive(id string, raw []byte) models.Property {
	p := models.Property{ID: id, Rooms: []models.Room{}}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return p
	}

	decodeField(fields, &p.Address, "address")
	decodeField(fields, &p.City, "city")

	if rawRooms, ok := lookup(fields, "rooms"); ok {
		p.Rooms = decodeRooms(rawRooms)
	}

	var cleaning models.CleaningConfig
	if decodeField(fields, &cleaning, "cleaning_config", "cleaningConfig") {
		p.CleaningConfig = &cleaning
	}

	var wifi models.WifiConfig
	if decodeField(fields, &wifi, "wifi_config", "wifiConfig") {
		p.WifiConfig = &wifi
	}

	var owner string
	if decodeField(fields, &owner, "owner_id", "ownerId") && owner != "" {
		p.OwnerID = &owner
	}

	return p
}

// DecodeDocuments decodes every stored document, in order.
func DecodeDocuments(docs []models.PropertyDocument) []models.Property {
	props := make([]models.Property, 0, len(docs))
	for _, doc := range docs {
		props = append(props, DecodeLive(doc.ID, doc.Data))
	}
	return props
}

func lookup(fields map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

// decodeField decodes the first present key into dst and reports success.
func decodeField(fields map[string]json.RawMessage, dst any, keys ...string) bool {
	v, ok := lookup(fields, keys...)
	if !ok {
		return false
	}
	return json.Unmarshal(v, dst) == nil
}

func decodeRooms(raw json.RawMessage) []models.Room {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []models.Room{}
	}

	rooms := make([]models.Room, 0, len(items))
	for _, item := range items {
		var room models.Room
		if err := json.Unmarshal(item, &room); err != nil {
			continue
		}
		rooms = append(rooms, room)
	}
	return rooms
}
