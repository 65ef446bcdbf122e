// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"net/http"

	"github.com/roomportal/backend/internal/portal"
	"github.com/roomportal/backend/internal/storage"
	"github.com/roomportal/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.Healthy(r.Context())

		status := "healthy"
		code := http.StatusOK
		if !dbConnected {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		writeJSON(w, code, HealthResponse{
			Status:      status,
			Version:     version,
			DBConnected: dbConnected,
		})
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	PropertiesCount   int            `json:"properties_count"`
	LivePropertyDocs  int            `json:"live_property_docs"`
	AvailableRooms    int            `json:"available_rooms"`
	TasksByStatus     map[string]int `json:"tasks_by_status"`
	PendingCandidates int            `json:"pending_candidates"`
	ConnectedClients  int            `json:"connected_clients"`
}

// Status returns a handler that provides system status information.
func Status(db *storage.DB, hub *websocket.Hub, properties *portal.PropertyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		resp := StatusResponse{
			TasksByStatus:    map[string]int{},
			ConnectedClients: hub.ClientCount(),
		}

		if props, err := properties.Effective(ctx); err == nil {
			resp.PropertiesCount = len(props)
			for i := range props {
				resp.AvailableRooms += props[i].AvailableRooms()
			}
		}

		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM property_documents").Scan(&resp.LivePropertyDocs)
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM candidates WHERE status = 'pending_review'").Scan(&resp.PendingCandidates)

		rows, err := db.QueryContext(ctx, "SELECT status, COUNT(*) FROM tasks GROUP BY status")
		if err == nil {
			defer rows.Close()
			for rows.Next() {
				var status string
				var n int
				if rows.Scan(&status, &n) == nil {
					resp.TasksByStatus[status] = n
				}
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
