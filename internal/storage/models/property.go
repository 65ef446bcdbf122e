// Package models contains the domain models for the application.
package models

import "time"

// Room status values.
const (
	RoomAvailable = "available"
	RoomOccupied  = "occupied"
	RoomReserved  = "reserved"
)

// Property is a building or flat rented out by room.
// Static catalog entries and live documents share this shape and id space.
type Property struct {
	ID             string          `json:"id"`
	Address        string          `json:"address"`
	City           string          `json:"city"`
	Rooms          []Room          `json:"rooms"`
	CleaningConfig *CleaningConfig `json:"cleaning_config,omitempty"`
	WifiConfig     *WifiConfig     `json:"wifi_config,omitempty"`
	OwnerID        *string         `json:"owner_id,omitempty"`
}

// Room is a rentable room inside a property.
type Room struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Status   string   `json:"status"`
	Images   []string `json:"images,omitempty"`
	Features []string `json:"features,omitempty"`
}

// CleaningConfig is the current weekly cleaning arrangement of a property.
// Days hold Spanish weekday names (Lunes..Domingo).
type CleaningConfig struct {
	Enabled      bool     `json:"enabled"`
	Days         []string `json:"days"`
	Hours        string   `json:"hours"` // e.g. "10:00-12:00"
	CostPerHour  float64  `json:"cost_per_hour"`
	CleanerName  string   `json:"cleaner_name,omitempty"`
	CleanerPhone string   `json:"cleaner_phone,omitempty"`
}

// WifiConfig is shown to tenants on their home screen.
type WifiConfig struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
	Notes    string `json:"notes,omitempty"`
}

// Room looks up a room by id.
func (p *Property) Room(id string) *Room {
	for i := range p.Rooms {
		if p.Rooms[i].ID == id {
			return &p.Rooms[i]
		}
	}
	return nil
}

// AvailableRooms counts rooms with status available.
func (p *Property) AvailableRooms() int {
	n := 0
	for _, r := range p.Rooms {
		if r.Status == RoomAvailable {
			n++
		}
	}
	return n
}

// PropertyDocument is a raw live override document as stored.
type PropertyDocument struct {
	ID        string    `json:"id"`
	Data      []byte    `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}
