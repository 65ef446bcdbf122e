package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/roomportal/backend/internal/storage/models"
)

const taskColumns = `id, title, description, assignee, priority, status, category,
	due_date, board_id, tenant_id, property_id, comments, created_at, updated_at`

// TaskRepository provides data access for tasks and tenant incidents.
type TaskRepository struct {
	BaseRepository
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{BaseRepository: NewBaseRepository(db)}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	var comments string
	if err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Assignee, &t.Priority, &t.Status, &t.Category,
		&t.DueDate, &t.BoardID, &t.TenantID, &t.PropertyID, &comments, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	// A damaged comment log must not hide the task itself.
	if err := json.Unmarshal([]byte(comments), &t.Comments); err != nil || t.Comments == nil {
		t.Comments = []models.Comment{}
	}
	return &t, nil
}

// Create inserts a new task, assigning its id and timestamps.
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	if t.ID == "" {
		t.ID = GenerateID()
	}
	t.CreatedAt = r.Now()
	t.UpdatedAt = t.CreatedAt
	if t.Comments == nil {
		t.Comments = []models.Comment{}
	}

	comments, err := json.Marshal(t.Comments)
	if err != nil {
		return fmt.Errorf("encoding comments: %w", err)
	}

	_, err = r.DB().ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID, t.Title, t.Description, t.Assignee, t.Priority, t.Status, t.Category,
		t.DueDate, t.BoardID, t.TenantID, t.PropertyID, string(comments), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by its ID, or nil if it does not exist.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	t, err := scanTask(r.DB().QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return t, nil
}

// List retrieves tasks matching the filter, newest first.
func (r *TaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	var where []string
	var args []any

	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.BoardID != "" {
		where = append(where, "board_id = ?")
		args = append(args, filter.BoardID)
	}
	if filter.TenantID != "" {
		where = append(where, "tenant_id = ?")
		args = append(args, filter.TenantID)
	}
	if filter.PropertyID != "" {
		where = append(where, "property_id = ?")
		args = append(args, filter.PropertyID)
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, *t)
	}

	return tasks, rows.Err()
}

// Update writes the editable fields of a task. Comments are left untouched.
func (r *TaskRepository) Update(ctx context.Context, t *models.Task) error {
	t.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE tasks SET
			title = ?, description = ?, assignee = ?, priority = ?, status = ?,
			category = ?, due_date = ?, board_id = ?, tenant_id = ?, property_id = ?,
			updated_at = ?
		WHERE id = ?
	`,
		t.Title, t.Description, t.Assignee, t.Priority, t.Status,
		t.Category, t.DueDate, t.BoardID, t.TenantID, t.PropertyID,
		t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus sets the status of a task.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?
	`, status, r.Now(), id)
	if err != nil {
		return fmt.Errorf("updating task status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByTenant retrieves the tasks raised by one tenant, newest first.
func (r *TaskRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.Task, error) {
	if tenantID == "" {
		return []models.Task{}, nil
	}
	return r.List(ctx, models.TaskFilter{TenantID: tenantID})
}

// AppendComment adds a comment to the end of the task's comment log.
func (r *TaskRepository) AppendComment(ctx context.Context, id string, c models.Comment) error {
	return r.DB().TransactionContext(ctx, func(tx *sql.Tx) error {
		var raw string
		err := tx.QueryRowContext(ctx, "SELECT comments FROM tasks WHERE id = ?", id).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("reading comments: %w", err)
		}

		var comments []models.Comment
		if err := json.Unmarshal([]byte(raw), &comments); err != nil {
			comments = nil
		}
		comments = append(comments, c)

		encoded, err := json.Marshal(comments)
		if err != nil {
			return fmt.Errorf("encoding comments: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE tasks SET comments = ?, updated_at = ? WHERE id = ?
		`, string(encoded), r.Now(), id); err != nil {
			return fmt.Errorf("writing comments: %w", err)
		}
		return nil
	})
}

// Delete removes a task by ID.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
