package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roomportal/backend/internal/storage/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), DatabaseFile))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, RunMigrations(db, zap.NewNop()))
	return db
}

func strPtr(s string) *string { return &s }

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, RunMigrations(db, zap.NewNop()))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestPropertyDocumentRepository_PutGetListDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPropertyDocumentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "p-2", []byte(`{"address":"Calle B"}`)))
	require.NoError(t, repo.Put(ctx, "p-1", []byte(`{"address":"Calle A"}`)))
	require.NoError(t, repo.Put(ctx, "p-2", []byte(`{"address":"Calle B 2"}`)))

	docs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "p-2", docs[0].ID)
	assert.JSONEq(t, `{"address":"Calle B 2"}`, string(docs[0].Data))
	assert.Equal(t, "p-1", docs[1].ID)

	doc, err := repo.Get(ctx, "p-1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.JSONEq(t, `{"address":"Calle A"}`, string(doc.Data))

	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Delete(ctx, "p-1"))
	assert.ErrorIs(t, repo.Delete(ctx, "p-1"), ErrNotFound)
}

func TestTaskRepository_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	due := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	task := &models.Task{
		Title:      "Cambiar bombilla",
		Assignee:   "Ana García",
		Priority:   models.PriorityMedium,
		Status:     models.TaskPending,
		Category:   "Mantenimiento",
		DueDate:    &due,
		BoardID:    strPtr("board-1"),
		PropertyID: strPtr("p-1"),
	}
	require.NoError(t, repo.Create(ctx, task))
	assert.NotEmpty(t, task.ID)

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Cambiar bombilla", got.Title)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	assert.Nil(t, got.TenantID)
	assert.Equal(t, "board-1", *got.BoardID)
	assert.Empty(t, got.Comments)

	got.Title = "Cambiar bombillas"
	require.NoError(t, repo.Update(ctx, got))
	require.NoError(t, repo.UpdateStatus(ctx, task.ID, models.TaskInProgress))

	require.NoError(t, repo.AppendComment(ctx, task.ID, models.Comment{Author: "Ana", Role: "worker", Body: "uno"}))
	require.NoError(t, repo.AppendComment(ctx, task.ID, models.Comment{Author: "Luis", Role: "staff", Body: "dos"}))

	got, err = repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cambiar bombillas", got.Title)
	assert.Equal(t, models.TaskInProgress, got.Status)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, "uno", got.Comments[0].Body)
	assert.Equal(t, "dos", got.Comments[1].Body)

	list, err := repo.List(ctx, models.TaskFilter{Status: models.TaskInProgress, BoardID: "board-1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = repo.List(ctx, models.TaskFilter{Status: models.TaskCompleted})
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, repo.AppendComment(ctx, "missing", models.Comment{Body: "x"}), ErrNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", models.TaskBlocked), ErrNotFound)

	require.NoError(t, repo.Delete(ctx, task.ID))
	gone, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestTaskRepository_ListByTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Task{Title: "Fuga", Status: models.TaskPending, TenantID: strPtr("t-1")}))
	require.NoError(t, repo.Create(ctx, &models.Task{Title: "Otra", Status: models.TaskPending, TenantID: strPtr("t-2")}))

	list, err := repo.ListByTenant(ctx, "t-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Fuga", list[0].Title)

	none, err := repo.ListByTenant(ctx, "")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestTaskRepository_List_QueryError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	repo := NewTaskRepository(Wrap(sqlDB))
	mock.ExpectQuery(`(?s)SELECT .* FROM tasks WHERE status = \?`).
		WithArgs(models.TaskPending).
		WillReturnError(errors.New("disk I/O error"))

	_, err = repo.List(context.Background(), models.TaskFilter{Status: models.TaskPending})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying tasks")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepository_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCandidateRepository(db)
	ctx := context.Background()

	c := &models.Candidate{
		Name:        "Marta Ruiz",
		PropertyID:  "p-1",
		RoomID:      "r-1",
		AssignedTo:  "Ana García",
		SubmittedBy: "Luis Pérez",
		Status:      models.CandidatePendingReview,
		Source:      "idealista",
	}
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Marta Ruiz", got.Name)
	assert.Nil(t, got.VisitAt)

	got.Status = models.CandidateApproved
	require.NoError(t, repo.Update(ctx, got))

	pending, err := repo.List(ctx, models.CandidatePendingReview)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.CandidateApproved, all[0].Status)

	require.NoError(t, repo.UpdateStatus(ctx, c.ID, models.CandidateRejected))
	rejected, err := repo.List(ctx, models.CandidateRejected)
	require.NoError(t, err)
	assert.Len(t, rejected, 1)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", models.CandidateRejected), ErrNotFound)

	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), ErrNotFound)
}

func TestSettingsRepository_SiteConfig(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	cfg, err := repo.GetSiteConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Room Portal", cfg.CompanyName)
	assert.Equal(t, "Madrid", cfg.DefaultCity)

	require.NoError(t, repo.UpdateSiteConfig(ctx, models.SiteConfig{
		CompanyName:  "Habitaciones Centro",
		ContactPhone: "+34 600 000 000",
	}))

	cfg, err = repo.GetSiteConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Habitaciones Centro", cfg.CompanyName)
	assert.Equal(t, "+34 600 000 000", cfg.ContactPhone)
	assert.Equal(t, "Madrid", cfg.DefaultCity)
}
