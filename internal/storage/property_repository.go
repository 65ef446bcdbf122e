package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roomportal/backend/internal/storage/models"
)

// PropertyDocumentRepository stores live property override documents.
// Documents are kept verbatim; decoding and coercion happen in the catalog package.
type PropertyDocumentRepository struct {
	BaseRepository
}

// NewPropertyDocumentRepository creates a new property document repository.
func NewPropertyDocumentRepository(db *DB) *PropertyDocumentRepository {
	return &PropertyDocumentRepository{BaseRepository: NewBaseRepository(db)}
}

// List returns every live document in insertion order.
func (r *PropertyDocumentRepository) List(ctx context.Context) ([]models.PropertyDocument, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, data, updated_at FROM property_documents ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying property documents: %w", err)
	}
	defer rows.Close()

	var docs []models.PropertyDocument
	for rows.Next() {
		var doc models.PropertyDocument
		var data string
		if err := rows.Scan(&doc.ID, &data, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning property document: %w", err)
		}
		doc.Data = []byte(data)
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// Get returns a single live document, or nil if none exists for id.
func (r *PropertyDocumentRepository) Get(ctx context.Context, id string) (*models.PropertyDocument, error) {
	doc := &models.PropertyDocument{}
	var data string

	err := r.DB().QueryRowContext(ctx, `
		SELECT id, data, updated_at FROM property_documents WHERE id = ?
	`, id).Scan(&doc.ID, &data, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying property document: %w", err)
	}

	doc.Data = []byte(data)
	return doc, nil
}

// Put writes the full document for id, replacing any previous one.
func (r *PropertyDocumentRepository) Put(ctx context.Context, id string, data []byte) error {
	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO property_documents (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, id, string(data), r.Now())
	if err != nil {
		return fmt.Errorf("writing property document: %w", err)
	}
	return nil
}

// Delete removes the live document for id. The static entry, if any, becomes effective again.
func (r *PropertyDocumentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM property_documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting property document: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
