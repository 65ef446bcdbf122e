// Package catalog holds the compiled-in property catalog and reconciles it
// with live property documents into the effective property list.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/roomportal/backend/internal/storage/models"
)

//go:embed data/properties.json
var staticJSON []byte

var static []models.Property

func init() {
	if err := json.Unmarshal(staticJSON, &static); err != nil {
		panic(fmt.Sprintf("catalog: invalid embedded properties.json: %v", err))
	}
	for i := range static {
		if static[i].Rooms == nil {
			static[i].Rooms = []models.Room{}
		}
	}
}

// Static returns a copy of the compiled-in catalog in its shipped order.
// Callers may modify the result freely.
func Static() []models.Property {
	out := make([]models.Property, len(static))
	for i, p := range static {
		out[i] = Clone(p)
	}
	return out
}

// Clone returns a deep copy of p.
func Clone(p models.Property) models.Property {
	c := p
	c.Rooms = make([]models.Room, len(p.Rooms))
	for i, r := range p.Rooms {
		c.Rooms[i] = r
		c.Rooms[i].Images = append([]string(nil), r.Images...)
		c.Rooms[i].Features = append([]string(nil), r.Features...)
	}
	if p.CleaningConfig != nil {
		cc := *p.CleaningConfig
		cc.Days = append([]string(nil), p.CleaningConfig.Days...)
		c.CleaningConfig = &cc
	}
	if p.WifiConfig != nil {
		wc := *p.WifiConfig
		c.WifiConfig = &wc
	}
	if p.OwnerID != nil {
		owner := *p.OwnerID
		c.OwnerID = &owner
	}
	return c
}

// Find returns the property with the given id from props, or nil.
func Find(props []models.Property, id string) *models.Property {
	for i := range props {
		if props[i].ID == id {
			return &props[i]
		}
	}
	return nil
}
