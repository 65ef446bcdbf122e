package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/roomportal/backend/internal/storage/models"
	"github.com/roomportal/backend/internal/websocket"
)

const (
	// DailySpec runs just after midnight so dates roll over with the day.
	DailySpec = "0 5 0 * * *"
	// SweepSpec catches configuration changes made by other instances.
	SweepSpec = "@every 1h"
)

// PropertySource provides the current effective property list.
type PropertySource interface {
	Effective(ctx context.Context) ([]models.Property, error)
}

// Announcer delivers cleaning.scheduled events.
type Announcer interface {
	BroadcastCleaningScheduled(payload websocket.CleaningScheduledPayload)
}

// Scheduler tracks the next cleaning date of every property and announces
// changes to connected clients.
type Scheduler struct {
	cron       *cron.Cron
	properties PropertySource
	calculator *Calculator
	announcer  Announcer
	logger     *zap.Logger
	now        func() time.Time

	// Last announced date per property id; "" means no schedule.
	states   map[string]string
	statesMu sync.Mutex
}

// NewScheduler creates a cleaning scheduler. announcer may be nil.
func NewScheduler(properties PropertySource, calculator *Calculator, announcer Announcer, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds(), cron.WithLocation(calculator.Location())),
		properties: properties,
		calculator: calculator,
		announcer:  announcer,
		logger:     logger.Named("cleaning-scheduler"),
		now:        time.Now,
		states:     make(map[string]string),
	}
}

// Start registers the cron jobs and begins running them.
func (s *Scheduler) Start() error {
	s.logger.Info("starting cleaning scheduler")

	for _, spec := range []string{DailySpec, SweepSpec} {
		if _, err := s.cron.AddFunc(spec, s.run); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("cleaning scheduler started")
	return nil
}

// Stop waits for running jobs and shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping cleaning scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("cleaning scheduler stopped")
}

func (s *Scheduler) run() {
	if _, err := s.Evaluate(context.Background()); err != nil {
		s.logger.Error("evaluating cleaning schedules", zap.Error(err))
	}
}

// InitializeStates records the current next dates without announcing them.
func (s *Scheduler) InitializeStates(ctx context.Context) error {
	props, err := s.properties.Effective(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	s.statesMu.Lock()
	defer s.statesMu.Unlock()
	for i := range props {
		s.states[props[i].ID] = s.dateFor(&props[i], now)
	}
	return nil
}

// Evaluate recomputes every property's next cleaning date and announces
// those that changed since the last evaluation. It returns the number of
// announcements made.
func (s *Scheduler) Evaluate(ctx context.Context) (int, error) {
	props, err := s.properties.Effective(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	var changed []websocket.CleaningScheduledPayload

	s.statesMu.Lock()
	seen := make(map[string]struct{}, len(props))
	for i := range props {
		p := &props[i]
		seen[p.ID] = struct{}{}

		next := s.dateFor(p, now)
		prev, known := s.states[p.ID]
		s.states[p.ID] = next
		if known && prev == next {
			continue
		}
		if !known && next == "" {
			continue
		}

		payload := websocket.CleaningScheduledPayload{
			PropertyID: p.ID,
			Address:    p.Address,
			NextDate:   optional(next),
		}
		if known {
			payload.PreviousDate = optional(prev)
		}
		changed = append(changed, payload)
	}
	for id := range s.states {
		if _, ok := seen[id]; !ok {
			delete(s.states, id)
		}
	}
	s.statesMu.Unlock()

	for _, payload := range changed {
		s.logger.Info("next cleaning changed",
			zap.String("property_id", payload.PropertyID),
			zap.Stringp("previous", payload.PreviousDate),
			zap.Stringp("next", payload.NextDate),
		)
		if s.announcer != nil {
			s.announcer.BroadcastCleaningScheduled(payload)
		}
	}
	return len(changed), nil
}

// ForceEvaluate triggers an evaluation in the background.
// Useful after a cleaning configuration is updated.
func (s *Scheduler) ForceEvaluate() {
	go s.run()
}

func (s *Scheduler) dateFor(p *models.Property, now time.Time) string {
	if next := s.calculator.NextDate(p.CleaningConfig, now); next != nil {
		return *next
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
