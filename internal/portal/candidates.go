package portal

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/roomportal/backend/internal/matching"
	"github.com/roomportal/backend/internal/session"
	"github.com/roomportal/backend/internal/snapshot"
	"github.com/roomportal/backend/internal/storage"
	"github.com/roomportal/backend/internal/storage/models"
)

// DefaultCandidateSource is recorded when a candidate is entered in the portal.
const DefaultCandidateSource = "portal"

// CandidateInput holds the editable fields of a candidate.
type CandidateInput struct {
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	PropertyID  string     `json:"property_id"`
	RoomID      string     `json:"room_id"`
	AssignedTo  string     `json:"assigned_to"`
	SubmittedBy string     `json:"submitted_by"`
	Priority    string     `json:"priority"`
	Source      string     `json:"source"`
	Notes       string     `json:"notes"`
	VisitAt     *time.Time `json:"visit_at"`
}

// ReviewInput is a staff decision on a pending candidate.
type ReviewInput struct {
	Decision string `json:"decision"` // approved or rejected
	Notes    string `json:"notes"`
}

// CandidateService manages prospective tenants and their visits.
type CandidateService struct {
	repo     *storage.CandidateRepository
	notifier snapshot.Notifier
	logger   *zap.Logger
}

// NewCandidateService creates a candidate service.
func NewCandidateService(repo *storage.CandidateRepository, logger *zap.Logger) *CandidateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CandidateService{repo: repo, logger: logger.Named("candidates")}
}

// SetNotifier sets the notifier told about candidate changes.
func (s *CandidateService) SetNotifier(n snapshot.Notifier) {
	s.notifier = n
}

// Create records a new candidate pending review. SubmittedBy defaults to
// the caller's display name.
func (s *CandidateService) Create(ctx context.Context, sess session.Session, in CandidateInput) (*models.Candidate, error) {
	if !canManageCandidates(sess) {
		return nil, forbidden("creating candidates")
	}

	c := &models.Candidate{Status: models.CandidatePendingReview}
	if strings.TrimSpace(in.SubmittedBy) == "" {
		in.SubmittedBy = sess.DisplayName
	}
	if strings.TrimSpace(in.Source) == "" {
		in.Source = DefaultCandidateSource
	}
	if err := applyCandidateInput(c, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("candidate created", zap.String("candidate_id", c.ID), zap.String("submitted_by", c.SubmittedBy))
	s.changed(ctx)
	return c, nil
}

// List returns the candidates visible to sess, optionally restricted to status.
func (s *CandidateService) List(ctx context.Context, sess session.Session, status string) ([]models.Candidate, error) {
	if !canManageCandidates(sess) {
		return nil, forbidden("listing candidates")
	}
	candidates, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	if sess.IsStaff() {
		return candidates, nil
	}
	return matching.FilterCandidates(candidates, sess.DisplayName), nil
}

// Mine returns the visits assigned to and the candidates submitted by the
// caller's display name.
func (s *CandidateService) Mine(ctx context.Context, sess session.Session) ([]models.Candidate, error) {
	candidates, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	return matching.FilterCandidates(candidates, sess.DisplayName), nil
}

// Get returns a candidate visible to sess.
func (s *CandidateService) Get(ctx context.Context, sess session.Session, id string) (*models.Candidate, error) {
	if !canManageCandidates(sess) {
		return nil, forbidden("viewing candidates")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound("candidate", id)
	}
	if !sess.IsStaff() && len(matching.FilterCandidates([]models.Candidate{*c}, sess.DisplayName)) == 0 {
		return nil, forbidden("viewing this candidate")
	}
	return c, nil
}

// Update edits a candidate that has not been reviewed yet.
func (s *CandidateService) Update(ctx context.Context, sess session.Session, id string, in CandidateInput) (*models.Candidate, error) {
	c, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if c.IsTerminal() {
		return nil, invalidTransition("candidate %s is already %s", id, c.Status)
	}
	if strings.TrimSpace(in.SubmittedBy) == "" {
		in.SubmittedBy = c.SubmittedBy
	}
	if strings.TrimSpace(in.Source) == "" {
		in.Source = c.Source
	}
	if err := applyCandidateInput(c, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, mapStorageErr(err, "candidate", id)
	}

	s.changed(ctx)
	return c, nil
}

// Review approves or rejects a pending candidate. Staff only; the result
// is terminal.
func (s *CandidateService) Review(ctx context.Context, sess session.Session, id string, in ReviewInput) (*models.Candidate, error) {
	if !sess.IsStaff() {
		return nil, forbidden("reviewing candidates")
	}
	decision := strings.ToLower(strings.TrimSpace(in.Decision))
	if decision != models.CandidateApproved && decision != models.CandidateRejected {
		return nil, invalid("decision must be %q or %q", models.CandidateApproved, models.CandidateRejected)
	}

	c, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if c.Status != models.CandidatePendingReview {
		return nil, invalidTransition("candidate %s is %s, not %s", id, c.Status, models.CandidatePendingReview)
	}

	c.Status = decision
	if notes := SanitizeText(in.Notes); notes != "" {
		if c.Notes != "" {
			c.Notes += "\n"
		}
		c.Notes += notes
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, mapStorageErr(err, "candidate", id)
	}

	s.logger.Info("candidate reviewed",
		zap.String("candidate_id", id), zap.String("decision", decision), zap.String("by", sess.UserID))
	s.changed(ctx)
	return c, nil
}

// Delete removes a candidate. Staff only.
func (s *CandidateService) Delete(ctx context.Context, sess session.Session, id string) error {
	if !sess.IsStaff() {
		return forbidden("deleting candidates")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStorageErr(err, "candidate", id)
	}
	s.changed(ctx)
	return nil
}

func (s *CandidateService) changed(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, snapshot.CollectionCandidates); err != nil {
		s.logger.Warn("notifying candidate change", zap.Error(err))
	}
}

func canManageCandidates(sess session.Session) bool {
	return sess.IsStaff() || sess.Role == session.RoleWorker
}

func applyCandidateInput(c *models.Candidate, in CandidateInput) error {
	name := SanitizeText(in.Name)
	if name == "" {
		return invalid("name is required")
	}
	priority := in.Priority
	if priority != "" && !models.IsValidPriority(priority) {
		return invalid("unknown priority %q", priority)
	}

	c.Name = name
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = strings.TrimSpace(in.Phone)
	c.PropertyID = strings.TrimSpace(in.PropertyID)
	c.RoomID = strings.TrimSpace(in.RoomID)
	c.AssignedTo = strings.TrimSpace(in.AssignedTo)
	c.SubmittedBy = strings.TrimSpace(in.SubmittedBy)
	c.Priority = priority
	c.Source = strings.TrimSpace(in.Source)
	c.Notes = SanitizeText(in.Notes)
	c.VisitAt = in.VisitAt
	return nil
}
