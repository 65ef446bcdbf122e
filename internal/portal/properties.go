package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/karlseguin/ccache/v3"
	"go.uber.org/zap"

	"github.com/roomportal/backend/internal/catalog"
	"github.com/roomportal/backend/internal/schedule"
	"github.com/roomportal/backend/internal/snapshot"
	"github.com/roomportal/backend/internal/storage"
	"github.com/roomportal/backend/internal/storage/models"
)

const (
	effectiveKey = "properties:effective"
	// DefaultCacheTTL bounds staleness when another instance writes and the
	// change notification is lost.
	DefaultCacheTTL = 5 * time.Minute
)

// PropertyService serves the merged property view and writes live documents.
type PropertyService struct {
	docs       *storage.PropertyDocumentRepository
	static     func() []models.Property
	cache      *ccache.Cache[[]models.Property]
	ttl        time.Duration
	calculator *schedule.Calculator
	notifier   snapshot.Notifier
	logger     *zap.Logger
}

// NewPropertyService creates a property service over the compiled catalog.
func NewPropertyService(docs *storage.PropertyDocumentRepository, calculator *schedule.Calculator, logger *zap.Logger) *PropertyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PropertyService{
		docs:       docs,
		static:     catalog.Static,
		cache:      ccache.New(ccache.Configure[[]models.Property]().MaxSize(16)),
		ttl:        DefaultCacheTTL,
		calculator: calculator,
		logger:     logger.Named("properties"),
	}
}

// SetNotifier sets the notifier told about property changes.
func (s *PropertyService) SetNotifier(n snapshot.Notifier) {
	s.notifier = n
}

// Close stops the cache's background worker.
func (s *PropertyService) Close() {
	s.cache.Stop()
}

// Effective returns the merged static and live property list sorted by
// address. The result is shared and must not be modified.
func (s *PropertyService) Effective(ctx context.Context) ([]models.Property, error) {
	item, err := s.cache.Fetch(effectiveKey, s.ttl, func() ([]models.Property, error) {
		docs, err := s.docs.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading live properties: %w", err)
		}
		merged := catalog.Merge(s.static(), catalog.DecodeDocuments(docs))
		s.logger.Debug("merged property view", zap.Int("count", len(merged)), zap.Int("live", len(docs)))
		return merged, nil
	})
	if err != nil {
		return nil, err
	}
	return item.Value(), nil
}

// Invalidate drops the cached merged view.
func (s *PropertyService) Invalidate() {
	s.cache.Delete(effectiveKey)
}

// Get returns a copy of the effective property with the given id.
func (s *PropertyService) Get(ctx context.Context, id string) (*models.Property, error) {
	props, err := s.Effective(ctx)
	if err != nil {
		return nil, err
	}
	p := catalog.Find(props, id)
	if p == nil {
		return nil, notFound("property", id)
	}
	clone := catalog.Clone(*p)
	return &clone, nil
}

// List returns a copy of the effective list.
func (s *PropertyService) List(ctx context.Context) ([]models.Property, error) {
	props, err := s.Effective(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Property, len(props))
	for i, p := range props {
		out[i] = catalog.Clone(p)
	}
	return out, nil
}

// ForOwner returns the properties owned by ownerID.
func (s *PropertyService) ForOwner(ctx context.Context, ownerID string) ([]models.Property, error) {
	props, err := s.Effective(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.OwnedBy(props, ownerID), nil
}

// PutLive stores doc as the live document for id. The document replaces
// the static entry entirely; it must be a JSON object.
func (s *PropertyService) PutLive(ctx context.Context, id string, doc json.RawMessage) (*models.Property, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, invalid("property id is required")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil || fields == nil {
		return nil, invalid("property document must be a JSON object")
	}

	if err := s.docs.Put(ctx, id, doc); err != nil {
		return nil, err
	}
	s.changed(ctx, id)

	p := catalog.DecodeLive(id, doc)
	return &p, nil
}

// DeleteLive removes the live document for id, reverting to the static
// entry if there is one.
func (s *PropertyService) DeleteLive(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound("live property", id)
		}
		return err
	}
	s.changed(ctx, id)
	return nil
}

// UpdateCleaning replaces the cleaning configuration of a property. The
// full effective record is written back as its live document.
func (s *PropertyService) UpdateCleaning(ctx context.Context, id string, cfg models.CleaningConfig) (*models.Property, error) {
	if err := ValidateCleaning(&cfg); err != nil {
		return nil, err
	}
	return s.rewrite(ctx, id, func(p *models.Property) {
		p.CleaningConfig = &cfg
	})
}

// UpdateWifi replaces the wifi details of a property.
func (s *PropertyService) UpdateWifi(ctx context.Context, id string, cfg models.WifiConfig) (*models.Property, error) {
	cfg.SSID = strings.TrimSpace(cfg.SSID)
	cfg.Notes = SanitizeText(cfg.Notes)
	if cfg.SSID == "" {
		return nil, invalid("ssid is required")
	}
	return s.rewrite(ctx, id, func(p *models.Property) {
		p.WifiConfig = &cfg
	})
}

func (s *PropertyService) rewrite(ctx context.Context, id string, edit func(p *models.Property)) (*models.Property, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	edit(p)

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding property: %w", err)
	}
	if err := s.docs.Put(ctx, id, data); err != nil {
		return nil, err
	}
	s.changed(ctx, id)
	return p, nil
}

func (s *PropertyService) changed(ctx context.Context, id string) {
	s.Invalidate()
	s.logger.Info("property updated", zap.String("property_id", id))
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, snapshot.CollectionProperties); err != nil {
			s.logger.Warn("notifying property change", zap.Error(err))
		}
	}
}

// ValidateCleaning normalises cfg and rejects unknown weekday names and
// negative amounts.
func ValidateCleaning(cfg *models.CleaningConfig) error {
	days := make([]string, 0, len(cfg.Days))
	seen := make(map[time.Weekday]bool)
	for _, name := range cfg.Days {
		d, ok := schedule.ParseWeekday(name)
		if !ok {
			return invalid("unknown weekday %q", name)
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, schedule.WeekdayNames[d])
		}
	}
	if cfg.Enabled && len(days) == 0 {
		return invalid("an enabled cleaning schedule needs at least one day")
	}
	if cfg.CostPerHour < 0 {
		return invalid("cost_per_hour must not be negative")
	}
	cfg.Days = days
	cfg.Hours = strings.TrimSpace(cfg.Hours)
	cfg.CleanerName = strings.TrimSpace(cfg.CleanerName)
	cfg.CleanerPhone = strings.TrimSpace(cfg.CleanerPhone)
	return nil
}

// NextCleaning describes the upcoming cleaning of a property.
type NextCleaning struct {
	PropertyID string   `json:"property_id"`
	Scheduled  bool     `json:"scheduled"`
	Date       *string  `json:"date"`
	Days       []string `json:"days"`
	Hours      string   `json:"hours,omitempty"`
}

// NextCleaning computes the next cleaning date of property id at now.
func (s *PropertyService) NextCleaning(ctx context.Context, id string, now time.Time) (*NextCleaning, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.nextCleaning(p, now), nil
}

func (s *PropertyService) nextCleaning(p *models.Property, now time.Time) *NextCleaning {
	next := &NextCleaning{PropertyID: p.ID, Days: []string{}}
	if cfg := p.CleaningConfig; cfg != nil {
		next.Hours = cfg.Hours
		if cfg.Enabled && cfg.Days != nil {
			next.Days = cfg.Days
		}
	}
	next.Date = s.calculator.NextDate(p.CleaningConfig, now)
	next.Scheduled = next.Date != nil
	return next
}
