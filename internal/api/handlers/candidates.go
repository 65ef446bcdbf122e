package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/roomportal/backend/internal/api/middleware"
	"github.com/roomportal/backend/internal/portal"
	"github.com/roomportal/backend/internal/session"
)

// ListCandidates returns the candidates visible to the caller, optionally
// filtered by the status query parameter.
func ListCandidates(candidates *portal.CandidateService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := candidates.List(r.Context(), session.FromContext(r.Context()), r.URL.Query().Get("status"))
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// CreateCandidate records a new candidate.
func CreateCandidate(candidates *portal.CandidateService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req portal.CandidateInput
		if !decodeJSON(w, r, &req) {
			return
		}
		c, err := candidates.Create(r.Context(), session.FromContext(r.Context()), req)
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

// GetCandidate returns one candidate.
func GetCandidate(candidates *portal.CandidateService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := candidates.Get(r.Context(), session.FromContext(r.Context()), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// UpdateCandidate edits a candidate pending review.
func UpdateCandidate(candidates *portal.CandidateService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req portal.CandidateInput
		if !decodeJSON(w, r, &req) {
			return
		}
		c, err := candidates.Update(r.Context(), session.FromContext(r.Context()), mux.Vars(r)["id"], req)
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// ReviewCandidate approves or rejects a candidate.
func ReviewCandidate(candidates *portal.CandidateService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req portal.ReviewInput
		if !decodeJSON(w, r, &req) {
			return
		}
		c, err := candidates.Review(r.Context(), session.FromContext(r.Context()), mux.Vars(r)["id"], req)
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// DeleteCandidate removes a candidate.
func DeleteCandidate(candidates *portal.CandidateService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := candidates.Delete(r.Context(), session.FromContext(r.Context()), mux.Vars(r)["id"]); err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// MyCandidates returns the caller's visits and submitted candidates.
func MyCandidates(candidates *portal.CandidateService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := candidates.Mine(r.Context(), session.FromContext(r.Context()))
		if err != nil {
			middleware.WriteServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
