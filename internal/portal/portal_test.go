package portal

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roomportal/backend/internal/schedule"
	"github.com/roomportal/backend/internal/session"
	"github.com/roomportal/backend/internal/storage"
)

type recordingNotifier struct {
	mu          sync.Mutex
	collections []string
}

func (n *recordingNotifier) Notify(_ context.Context, collection string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.collections = append(n.collections, collection)
	return nil
}

func (n *recordingNotifier) seen() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.collections...)
}

type services struct {
	db         *storage.DB
	properties *PropertyService
	tasks      *TaskService
	candidates *CandidateService
	tenant     *TenantService
	notifier   *recordingNotifier
}

func setup(t *testing.T) *services {
	t.Helper()
	db, err := storage.NewDB(filepath.Join(t.TempDir(), storage.DatabaseFile))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.RunMigrations(db, zap.NewNop()))

	loc, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	props := NewPropertyService(storage.NewPropertyDocumentRepository(db), schedule.NewCalculatorWithLocation(loc), nil)
	t.Cleanup(props.Close)
	tasks := NewTaskService(storage.NewTaskRepository(db), nil)
	candidates := NewCandidateService(storage.NewCandidateRepository(db), nil)

	n := &recordingNotifier{}
	props.SetNotifier(n)
	tasks.SetNotifier(n)
	candidates.SetNotifier(n)

	return &services{
		db:         db,
		properties: props,
		tasks:      tasks,
		candidates: candidates,
		tenant:     NewTenantService(props, storage.NewSettingsRepository(db)),
		notifier:   n,
	}
}

var (
	ctx    = context.Background()
	staff  = session.Session{UserID: "s-1", DisplayName: "Laura Martín", Role: session.RoleStaff}
	admin  = session.Session{UserID: "a-1", DisplayName: "Admin", Role: session.RoleAdmin}
	worker = session.Session{UserID: "w-1", DisplayName: "Ana García", Role: session.RoleWorker}
	other  = session.Session{UserID: "w-2", DisplayName: "Pedro Gómez", Role: session.RoleWorker}
	tenant = session.Session{UserID: "t-1", DisplayName: "Carla", Role: session.RoleTenant, PropertyID: "alcala-112", RoomID: "alcala-112-h1"}
	owner  = session.Session{UserID: "o-1", Role: session.RoleOwner}
)

func strPtr(s string) *string { return &s }

// 2026-10-16 is a Friday.
func friday(t *testing.T) time.Time {
	loc, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)
	return time.Date(2026, 10, 16, 9, 0, 0, 0, loc)
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "", SanitizeText(""))
	assert.Equal(t, "Hola & adiós", SanitizeText(" <b>Hola</b> & adiós "))
	assert.Equal(t, "Fuga", SanitizeText("Fuga<script>alert(1)</script>"))
	assert.Equal(t, "", SanitizeText("<img src=x onerror=alert(1)>"))
}

func storageDocs(s *services) *storage.PropertyDocumentRepository {
	return storage.NewPropertyDocumentRepository(s.db)
}
