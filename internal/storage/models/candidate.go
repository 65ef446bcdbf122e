package models

import "time"

// Candidate status values. Approved and rejected are terminal.
const (
	CandidatePendingReview = "pending_review"
	CandidateApproved      = "approved"
	CandidateRejected      = "rejected"
)

// Candidate is a prospective tenant sourced by a worker or collaborator.
// AssignedTo and SubmittedBy are free-text staff display names.
type Candidate struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	PropertyID  string     `json:"property_id,omitempty"`
	RoomID      string     `json:"room_id,omitempty"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	SubmittedBy string     `json:"submitted_by,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority,omitempty"`
	Source      string     `json:"source,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	VisitAt     *time.Time `json:"visit_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsTerminal returns true once the candidate has been reviewed.
func (c *Candidate) IsTerminal() bool {
	return c.Status == CandidateApproved || c.Status == CandidateRejected
}
