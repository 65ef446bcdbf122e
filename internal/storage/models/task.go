package models

import "time"

// Task priority values.
const (
	PriorityHigh   = "Alta"
	PriorityMedium = "Media"
	PriorityLow    = "Baja"
)

// Task status values.
const (
	TaskPending    = "Pendiente"
	TaskInProgress = "En Curso"
	TaskCompleted  = "Completada"
	TaskBlocked    = "Bloqueada"
)

// CategoryIncident marks tasks raised by tenants.
const CategoryIncident = "Incidencia"

// Task is a unit of work for staff or workers.
// Assignee holds a free-text staff display name, not a user id.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Assignee    string     `json:"assignee"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Category    string     `json:"category"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	BoardID     *string    `json:"board_id,omitempty"`
	TenantID    *string    `json:"tenant_id,omitempty"`
	PropertyID  *string    `json:"property_id,omitempty"`
	Comments    []Comment  `json:"comments"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Comment is an append-only note on a task.
type Comment struct {
	Author    string    `json:"author"`
	Role      string    `json:"role"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskFilter narrows task listings. Zero values mean no filter.
type TaskFilter struct {
	Status     string
	BoardID    string
	TenantID   string
	PropertyID string
}

// IsValidTaskStatus reports whether s is a known task status.
func IsValidTaskStatus(s string) bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskBlocked:
		return true
	}
	return false
}

// IsValidPriority reports whether p is a known priority.
func IsValidPriority(p string) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}
