package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/roomportal/backend/internal/matching"
	"github.com/roomportal/backend/internal/session"
	"github.com/roomportal/backend/internal/snapshot"
	"github.com/roomportal/backend/internal/storage"
	"github.com/roomportal/backend/internal/storage/models"
)

// TaskInput holds the editable fields of a task.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Assignee    string     `json:"assignee"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Category    string     `json:"category"`
	DueDate     *time.Time `json:"due_date"`
	BoardID     *string    `json:"board_id"`
	TenantID    *string    `json:"tenant_id"`
	PropertyID  *string    `json:"property_id"`
}

// IncidentInput is what a tenant reports.
type IncidentInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TaskService manages tasks and tenant incidents.
type TaskService struct {
	repo     *storage.TaskRepository
	notifier snapshot.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewTaskService creates a task service.
func NewTaskService(repo *storage.TaskRepository, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		repo:   repo,
		logger: logger.Named("tasks"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetNotifier sets the notifier told about task changes.
func (s *TaskService) SetNotifier(n snapshot.Notifier) {
	s.notifier = n
}

// Create adds a task. Only staff may create tasks directly.
func (s *TaskService) Create(ctx context.Context, sess session.Session, in TaskInput) (*models.Task, error) {
	if !sess.IsStaff() {
		return nil, forbidden("creating tasks")
	}

	t := &models.Task{}
	if err := applyTaskInput(t, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("task created", zap.String("task_id", t.ID), zap.String("by", sess.UserID))
	s.changed(ctx)
	return t, nil
}

// List returns the tasks visible to sess. Staff see every task matching
// filter, workers the tasks assigned to their display name and tenants the
// tasks they raised.
func (s *TaskService) List(ctx context.Context, sess session.Session, filter models.TaskFilter) ([]models.Task, error) {
	switch {
	case sess.IsStaff():
		return s.repo.List(ctx, filter)
	case sess.Role == session.RoleWorker:
		tasks, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return matching.FilterTasks(tasks, sess.DisplayName), nil
	case sess.Role == session.RoleTenant:
		return s.repo.ListByTenant(ctx, sess.UserID)
	}
	return nil, forbidden("listing tasks")
}

// Mine returns the tasks assigned to the caller's display name.
func (s *TaskService) Mine(ctx context.Context, sess session.Session) ([]models.Task, error) {
	tasks, err := s.repo.List(ctx, models.TaskFilter{})
	if err != nil {
		return nil, err
	}
	return matching.FilterTasks(tasks, sess.DisplayName), nil
}

// Get returns a task visible to sess.
func (s *TaskService) Get(ctx context.Context, sess session.Session, id string) (*models.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, notFound("task", id)
	}
	if !canSeeTask(sess, t) {
		return nil, forbidden("viewing this task")
	}
	return t, nil
}

// Update replaces the editable fields of a task. Workers may only edit
// tasks assigned to them.
func (s *TaskService) Update(ctx context.Context, sess session.Session, id string, in TaskInput) (*models.Task, error) {
	if sess.Role == session.RoleTenant {
		return nil, forbidden("editing tasks")
	}
	t, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if err := applyTaskInput(t, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, mapStorageErr(err, "task", id)
	}

	s.changed(ctx)
	return t, nil
}

// UpdateStatus moves a task to status.
func (s *TaskService) UpdateStatus(ctx context.Context, sess session.Session, id, status string) (*models.Task, error) {
	if !models.IsValidTaskStatus(status) {
		return nil, invalid("unknown task status %q", status)
	}
	if sess.Role == session.RoleTenant {
		return nil, forbidden("changing task status")
	}
	t, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if t.Status == status {
		return t, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, mapStorageErr(err, "task", id)
	}
	s.logger.Info("task status changed",
		zap.String("task_id", id), zap.String("from", t.Status), zap.String("to", status))
	t.Status = status

	s.changed(ctx)
	return t, nil
}

// AddComment appends a comment by the caller to a task.
func (s *TaskService) AddComment(ctx context.Context, sess session.Session, id, body string) (*models.Comment, error) {
	body = SanitizeText(body)
	if body == "" {
		return nil, invalid("comment body is required")
	}
	if _, err := s.Get(ctx, sess, id); err != nil {
		return nil, err
	}

	author := sess.DisplayName
	if author == "" {
		author = sess.UserID
	}
	c := models.Comment{
		Author:    author,
		Role:      sess.Role,
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.repo.AppendComment(ctx, id, c); err != nil {
		return nil, mapStorageErr(err, "task", id)
	}

	s.changed(ctx)
	return &c, nil
}

// Delete removes a task. Staff only.
func (s *TaskService) Delete(ctx context.Context, sess session.Session, id string) error {
	if !sess.IsStaff() {
		return forbidden("deleting tasks")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStorageErr(err, "task", id)
	}
	s.changed(ctx)
	return nil
}

// ReportIncident records a tenant incident as a high priority task tied to
// the tenant and their property.
func (s *TaskService) ReportIncident(ctx context.Context, sess session.Session, in IncidentInput) (*models.Task, error) {
	if sess.Role != session.RoleTenant || sess.UserID == "" {
		return nil, forbidden("reporting incidents")
	}
	title := SanitizeText(in.Title)
	if title == "" {
		return nil, invalid("title is required")
	}

	tenantID := sess.UserID
	t := &models.Task{
		Title:       title,
		Description: SanitizeText(in.Description),
		Priority:    models.PriorityHigh,
		Status:      models.TaskPending,
		Category:    models.CategoryIncident,
		TenantID:    &tenantID,
	}
	if sess.PropertyID != "" {
		propertyID := sess.PropertyID
		t.PropertyID = &propertyID
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("incident reported", zap.String("task_id", t.ID), zap.String("tenant_id", tenantID))
	s.changed(ctx)
	return t, nil
}

// Incidents lists the incidents raised by the calling tenant.
func (s *TaskService) Incidents(ctx context.Context, sess session.Session) ([]models.Task, error) {
	if sess.Role != session.RoleTenant {
		return nil, forbidden("listing incidents")
	}
	return s.repo.ListByTenant(ctx, sess.UserID)
}

func (s *TaskService) changed(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, snapshot.CollectionTasks); err != nil {
		s.logger.Warn("notifying task change", zap.Error(err))
	}
}

func canSeeTask(sess session.Session, t *models.Task) bool {
	switch {
	case sess.IsStaff():
		return true
	case sess.Role == session.RoleWorker:
		return matching.Match(sess.DisplayName, t.Assignee)
	case sess.Role == session.RoleTenant:
		return sess.UserID != "" && t.TenantID != nil && *t.TenantID == sess.UserID
	}
	return false
}

func applyTaskInput(t *models.Task, in TaskInput) error {
	title := SanitizeText(in.Title)
	if title == "" {
		return invalid("title is required")
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.IsValidPriority(priority) {
		return invalid("unknown priority %q", priority)
	}

	status := in.Status
	if status == "" {
		status = t.Status
	}
	if status == "" {
		status = models.TaskPending
	}
	if !models.IsValidTaskStatus(status) {
		return invalid("unknown task status %q", status)
	}

	t.Title = title
	t.Description = SanitizeText(in.Description)
	t.Assignee = strings.TrimSpace(in.Assignee)
	t.Priority = priority
	t.Status = status
	// Omitted fields keep their stored values.
	if category := strings.TrimSpace(in.Category); category != "" {
		t.Category = category
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.BoardID != nil {
		t.BoardID = in.BoardID
	}
	if in.TenantID != nil {
		t.TenantID = in.TenantID
	}
	if in.PropertyID != nil {
		t.PropertyID = in.PropertyID
	}
	return nil
}

func mapStorageErr(err error, kind, id string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return notFound(kind, id)
	}
	return fmt.Errorf("%s %s: %w", kind, id, err)
}
