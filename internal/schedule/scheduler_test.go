package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomportal/backend/internal/storage/models"
	"github.com/roomportal/backend/internal/websocket"
)

type fakeSource struct {
	mu    sync.Mutex
	props []models.Property
	err   error
}

func (f *fakeSource) Effective(context.Context) ([]models.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.props, f.err
}

func (f *fakeSource) set(props ...models.Property) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.props = props
}

type recorder struct {
	events []websocket.CleaningScheduledPayload
}

func (r *recorder) BroadcastCleaningScheduled(p websocket.CleaningScheduledPayload) {
	r.events = append(r.events, p)
}

func newTestScheduler(t *testing.T, src PropertySource, now time.Time) (*Scheduler, *recorder) {
	t.Helper()
	rec := &recorder{}
	s := NewScheduler(src, NewCalculatorWithLocation(madrid(t)), rec, nil)
	s.now = func() time.Time { return now }
	return s, rec
}

func property(id string, days ...string) models.Property {
	p := models.Property{ID: id, Address: "Calle " + id}
	if len(days) > 0 {
		p.CleaningConfig = &models.CleaningConfig{Enabled: true, Days: days}
	}
	return p
}

func TestScheduler_AnnouncesNewSchedules(t *testing.T) {
	src := &fakeSource{}
	src.set(property("a", "Lunes"), property("b"))
	s, rec := newTestScheduler(t, src, friday(t, 9))

	n, err := s.Evaluate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, rec.events, 1)
	assert.Equal(t, "a", rec.events[0].PropertyID)
	assert.Equal(t, "Calle a", rec.events[0].Address)
	assert.Nil(t, rec.events[0].PreviousDate)
	require.NotNil(t, rec.events[0].NextDate)
	assert.Equal(t, "2026-10-19", *rec.events[0].NextDate)
}

func TestScheduler_UnchangedIsSilent(t *testing.T) {
	src := &fakeSource{}
	src.set(property("a", "Lunes"))
	s, rec := newTestScheduler(t, src, friday(t, 9))
	require.NoError(t, s.InitializeStates(context.Background()))

	n, err := s.Evaluate(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, rec.events)
}

func TestScheduler_AnnouncesChangeAndRemoval(t *testing.T) {
	src := &fakeSource{}
	src.set(property("a", "Lunes"))
	s, rec := newTestScheduler(t, src, friday(t, 9))
	require.NoError(t, s.InitializeStates(context.Background()))

	src.set(property("a", "Viernes"))
	_, err := s.Evaluate(context.Background())
	require.NoError(t, err)

	src.set(property("a"))
	_, err = s.Evaluate(context.Background())
	require.NoError(t, err)

	require.Len(t, rec.events, 2)
	assert.Equal(t, "2026-10-19", *rec.events[0].PreviousDate)
	assert.Equal(t, "2026-10-16", *rec.events[0].NextDate)
	assert.Equal(t, "2026-10-16", *rec.events[1].PreviousDate)
	assert.Nil(t, rec.events[1].NextDate)
}

func TestScheduler_DateRollsOver(t *testing.T) {
	src := &fakeSource{}
	src.set(property("a", "Viernes"))
	s, rec := newTestScheduler(t, src, friday(t, 9))
	require.NoError(t, s.InitializeStates(context.Background()))

	s.now = func() time.Time { return friday(t, 9).AddDate(0, 0, 1) }
	n, err := s.Evaluate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "2026-10-23", *rec.events[0].NextDate)
}

func TestScheduler_SourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("db down")}
	s, rec := newTestScheduler(t, src, friday(t, 9))

	_, err := s.Evaluate(context.Background())

	assert.Error(t, err)
	assert.Error(t, s.InitializeStates(context.Background()))
	assert.Empty(t, rec.events)
}

func TestScheduler_StartStop(t *testing.T) {
	s, _ := newTestScheduler(t, &fakeSource{}, friday(t, 9))

	require.NoError(t, s.Start())
	s.Stop()
}
