package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/roomportal/backend/internal/api/middleware"
	"github.com/roomportal/backend/internal/portal"
	"github.com/roomportal/backend/internal/session"
	"github.com/roomportal/backend/internal/storage/models"
)

// UpdateStatusRequest is the body of a task status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// CommentRequest is the body of a new comment.
type CommentRequest struct {
	Body string `json:"body"`
}

// ListTasks returns the tasks visible to the caller, filtered by the
// status, board_id and property_id query parameters.
func ListTasks(tasks *portal.TaskService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := models.TaskFilter{
			Status:     q.Get("status"),
			BoardID:    q.Get("board_id"),
			PropertyID: q.Get("property_id"),
		}

		list, err := tasks.List(r.Context(), session.FromContext(r.Context()), filter)
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// CreateTask adds a task.
func CreateTask(tasks *portal.TaskService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req portal.TaskInput
		if !decodeJSON(w, r, &req) {
			return
		}
		t, err := tasks.Create(r.Context(), session.FromContext(r.Context()), req)
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

// GetTask returns one task.
func GetTask(tasks *portal.TaskService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := tasks.Get(r.Context(), session.FromContext(r.Context()), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// UpdateTask replaces the editable fields of a task.
func UpdateTask(tasks *portal.TaskService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req portal.TaskInput
		if !decodeJSON(w, r, &req) {
			return
		}
		t, err := tasks.Update(r.Context(), session.FromContext(r.Context()), mux.Vars(r)["id"], req)
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// UpdateTaskStatus moves a task to a new status.
func UpdateTaskStatus(tasks *portal.TaskService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateStatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		t, err := tasks.UpdateStatus(r.Context(), session.FromContext(r.Context()), mux.Vars(r)["id"], req.Status)
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// AddTaskComment appends a comment to a task.
func AddTaskComment(tasks *portal.TaskService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CommentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		c, err := tasks.AddComment(r.Context(), session.FromContext(r.Context()), mux.Vars(r)["id"], req.Body)
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

// DeleteTask removes a task.
func DeleteTask(tasks *portal.TaskService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := tasks.Delete(r.Context(), session.FromContext(r.Context()), mux.Vars(r)["id"]); err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// MyTasks returns the tasks assigned to the caller's display name.
func MyTasks(tasks *portal.TaskService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := tasks.Mine(r.Context(), session.FromContext(r.Context()))
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
