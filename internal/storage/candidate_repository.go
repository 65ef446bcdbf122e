package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roomportal/backend/internal/storage/models"
)

const candidateColumns = `id, name, email, phone, property_id, room_id, assigned_to,
	submitted_by, status, priority, source, notes, visit_at, created_at, updated_at`

// CandidateRepository provides data access for prospective tenants.
type CandidateRepository struct {
	BaseRepository
}

// NewCandidateRepository creates a new candidate repository.
func NewCandidateRepository(db *DB) *CandidateRepository {
	return &CandidateRepository{BaseRepository: NewBaseRepository(db)}
}

func scanCandidate(row rowScanner) (*models.Candidate, error) {
	var c models.Candidate
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.PropertyID, &c.RoomID, &c.AssignedTo,
		&c.SubmittedBy, &c.Status, &c.Priority, &c.Source, &c.Notes, &c.VisitAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new candidate.
func (r *CandidateRepository) Create(ctx context.Context, c *models.Candidate) error {
	if c.ID == "" {
		c.ID = GenerateID()
	}
	c.CreatedAt = r.Now()
	c.UpdatedAt = c.CreatedAt

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO candidates (`+candidateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID, c.Name, c.Email, c.Phone, c.PropertyID, c.RoomID, c.AssignedTo,
		c.SubmittedBy, c.Status, c.Priority, c.Source, c.Notes, c.VisitAt,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting candidate: %w", err)
	}

	return nil
}

// GetByID retrieves a candidate by ID, or nil if it does not exist.
func (r *CandidateRepository) GetByID(ctx context.Context, id string) (*models.Candidate, error) {
	c, err := scanCandidate(r.DB().QueryRowContext(ctx,
		"SELECT "+candidateColumns+" FROM candidates WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying candidate: %w", err)
	}
	return c, nil
}

// List retrieves candidates, optionally restricted to one status, newest first.
func (r *CandidateRepository) List(ctx context.Context, status string) ([]models.Candidate, error) {
	query := "SELECT " + candidateColumns + " FROM candidates"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}

	return candidates, rows.Err()
}

// Update writes the editable fields of a candidate, including status.
func (r *CandidateRepository) Update(ctx context.Context, c *models.Candidate) error {
	c.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE candidates SET
			name = ?, email = ?, phone = ?, property_id = ?, room_id = ?, assigned_to = ?,
			submitted_by = ?, status = ?, priority = ?, source = ?, notes = ?, visit_at = ?,
			updated_at = ?
		WHERE id = ?
	`,
		c.Name, c.Email, c.Phone, c.PropertyID, c.RoomID, c.AssignedTo,
		c.SubmittedBy, c.Status, c.Priority, c.Source, c.Notes, c.VisitAt,
		c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating candidate: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus sets the review status of a candidate.
func (r *CandidateRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE candidates SET status = ?, updated_at = ? WHERE id = ?
	`, status, r.Now(), id)
	if err != nil {
		return fmt.Errorf("updating candidate status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a candidate by ID.
func (r *CandidateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM candidates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting candidate: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
