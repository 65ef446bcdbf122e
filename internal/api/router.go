// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/roomportal/backend/internal/api/handlers"
	"github.com/roomportal/backend/internal/api/middleware"
	"github.com/roomportal/backend/internal/portal"
	"github.com/roomportal/backend/internal/schedule"
	"github.com/roomportal/backend/internal/session"
	"github.com/roomportal/backend/internal/snapshot"
	"github.com/roomportal/backend/internal/storage"
	"github.com/roomportal/backend/internal/websocket"
)

// Services are the dependencies the router wires into handlers.
type Services struct {
	DB         *storage.DB
	Hub        *websocket.Hub
	Publisher  *snapshot.Publisher
	Properties *portal.PropertyService
	Tasks      *portal.TaskService
	Candidates *portal.CandidateService
	Tenant     *portal.TenantService
	Settings   *storage.SettingsRepository
	Calculator *schedule.Calculator
	Scheduler  *schedule.Scheduler // optional

	Version   string
	StaticDir string // optional
	Logger    *zap.Logger
	Now       func() time.Time // defaults to time.Now
}

// Role groups used by the routes below.
var (
	anyRole    = []string{session.RoleAdmin, session.RoleStaff, session.RoleWorker, session.RoleTenant, session.RoleOwner}
	staffOnly  = []string{session.RoleAdmin, session.RoleStaff}
	adminOnly  = []string{session.RoleAdmin}
	backOffice = []string{session.RoleAdmin, session.RoleStaff, session.RoleWorker}
	commenters = []string{session.RoleAdmin, session.RoleStaff, session.RoleWorker, session.RoleTenant}
	tenantOnly = []string{session.RoleTenant}
	ownerOnly  = []string{session.RoleOwner}
)

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(s Services) *mux.Router {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}
	var cleaning handlers.CleaningRefresher
	if s.Scheduler != nil {
		cleaning = s.Scheduler
	}

	r := mux.NewRouter()

	// Session first so request logs carry the user id.
	r.Use(middleware.Session)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.ErrorRecovery(logger))

	api := r.PathPrefix("/api").Subrouter()
	handle := func(path string, h http.HandlerFunc, roles []string, methods ...string) {
		api.Handle(path, middleware.RequireRole(h, roles...)).Methods(methods...)
	}

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(s.DB, s.Version)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(s.DB, s.Hub, s.Properties)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(s.Hub, s.Publisher, logger)).Methods("GET")

	// Property endpoints
	handle("/properties", handlers.ListProperties(s.Properties, logger), backOffice, "GET")
	handle("/properties/export", handlers.ExportProperties(s.Properties, s.Calculator, now, logger), staffOnly, "GET")
	handle("/properties/{id}", handlers.GetProperty(s.Properties, logger), backOffice, "GET")
	handle("/properties/{id}", handlers.PutProperty(s.Properties, logger), staffOnly, "PUT")
	handle("/properties/{id}", handlers.DeleteProperty(s.Properties, logger), staffOnly, "DELETE")
	handle("/properties/{id}/cleaning", handlers.UpdateCleaning(s.Properties, cleaning, logger), backOffice, "PUT")
	handle("/properties/{id}/wifi", handlers.UpdateWifi(s.Properties, logger), staffOnly, "PUT")
	handle("/properties/{id}/next-cleaning", handlers.NextCleaning(s.Properties, now, logger), anyRole, "GET")
	handle("/properties/{id}/cleaning.ics", handlers.CleaningCalendar(s.Properties, s.Calculator, now, logger), anyRole, "GET")
	handle("/owner/properties", handlers.OwnerProperties(s.Properties, logger), ownerOnly, "GET")

	// Task endpoints
	handle("/tasks", handlers.ListTasks(s.Tasks, logger), backOffice, "GET")
	handle("/tasks", handlers.CreateTask(s.Tasks, logger), staffOnly, "POST")
	handle("/tasks/{id}", handlers.GetTask(s.Tasks, logger), backOffice, "GET")
	handle("/tasks/{id}", handlers.UpdateTask(s.Tasks, logger), backOffice, "PUT")
	handle("/tasks/{id}", handlers.DeleteTask(s.Tasks, logger), staffOnly, "DELETE")
	handle("/tasks/{id}/status", handlers.UpdateTaskStatus(s.Tasks, logger), backOffice, "PATCH")
	handle("/tasks/{id}/comments", handlers.AddTaskComment(s.Tasks, logger), commenters, "POST")

	// Candidate endpoints
	handle("/candidates", handlers.ListCandidates(s.Candidates, logger), backOffice, "GET")
	handle("/candidates", handlers.CreateCandidate(s.Candidates, logger), backOffice, "POST")
	handle("/candidates/{id}", handlers.GetCandidate(s.Candidates, logger), backOffice, "GET")
	handle("/candidates/{id}", handlers.UpdateCandidate(s.Candidates, logger), backOffice, "PUT")
	handle("/candidates/{id}", handlers.DeleteCandidate(s.Candidates, logger), staffOnly, "DELETE")
	handle("/candidates/{id}/review", handlers.ReviewCandidate(s.Candidates, logger), staffOnly, "POST")

	// Personal lists
	handle("/me/tasks", handlers.MyTasks(s.Tasks, logger), backOffice, "GET")
	handle("/me/candidates", handlers.MyCandidates(s.Candidates, logger), backOffice, "GET")

	// Tenant endpoints
	handle("/tenant/home", handlers.TenantHome(s.Tenant, now, logger), tenantOnly, "GET")
	handle("/tenant/incidents", handlers.ListIncidents(s.Tasks, logger), tenantOnly, "GET")
	handle("/tenant/incidents", handlers.ReportIncident(s.Tasks, logger), tenantOnly, "POST")

	// Settings endpoints
	handle("/settings", handlers.GetSettings(s.Settings, logger), anyRole, "GET")
	handle("/settings", handlers.UpdateSettings(s.Settings, logger), adminOnly, "PUT")

	// Serve static frontend files
	if s.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.StaticDir)))
	}

	return r
}
