// Package snapshot keeps websocket subscribers up to date with full,
// derived lists of properties, tasks and candidates.
//
// Every write ends in a Notify for the affected collection. The publisher
// then reloads the whole collection and pushes a fresh snapshot to each
// subscriber, rendered for that subscriber's session.
package snapshot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roomportal/backend/internal/matching"
	"github.com/roomportal/backend/internal/session"
	"github.com/roomportal/backend/internal/storage/models"
	"github.com/roomportal/backend/internal/websocket"
)

// Collections that can be subscribed to.
const (
	CollectionProperties = "properties"
	CollectionTasks      = "tasks"
	CollectionCandidates = "candidates"
)

// Collections lists every subscribable collection.
var Collections = []string{CollectionProperties, CollectionTasks, CollectionCandidates}

// IsCollection reports whether name is a subscribable collection.
func IsCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}

// Notifier is told when a collection has changed.
type Notifier interface {
	Notify(ctx context.Context, collection string) error
}

// PropertySource yields the merged property view.
type PropertySource interface {
	Effective(ctx context.Context) ([]models.Property, error)
	Invalidate()
}

// TaskSource lists tasks.
type TaskSource interface {
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
}

// CandidateSource lists candidates.
type CandidateSource interface {
	List(ctx context.Context, status string) ([]models.Candidate, error)
}

// Publisher loads collections and pushes them to websocket subscribers.
type Publisher struct {
	properties PropertySource
	tasks      TaskSource
	candidates CandidateSource
	events     *websocket.EventBroadcaster
	logger     *zap.Logger
}

// NewPublisher creates a snapshot publisher.
func NewPublisher(
	properties PropertySource,
	tasks TaskSource,
	candidates CandidateSource,
	events *websocket.EventBroadcaster,
	logger *zap.Logger,
) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		properties: properties,
		tasks:      tasks,
		candidates: candidates,
		events:     events,
		logger:     logger.Named("snapshot"),
	}
}

// Refresh reloads collection and publishes it to all of its subscribers.
func (p *Publisher) Refresh(ctx context.Context, collection string) error {
	if collection == CollectionProperties {
		p.properties.Invalidate()
	}

	view, err := p.load(ctx, collection)
	if err != nil {
		return err
	}
	p.events.PublishSnapshotPerViewer(collection, view)
	p.logger.Debug("snapshot published", zap.String("collection", collection))
	return nil
}

// SendInitial sends one client the current snapshot of collection.
func (p *Publisher) SendInitial(ctx context.Context, client *websocket.Client, collection string) error {
	view, err := p.load(ctx, collection)
	if err != nil {
		return err
	}
	p.events.SendSnapshot(client, collection, view)
	return nil
}

func (p *Publisher) load(ctx context.Context, collection string) (websocket.ViewFunc, error) {
	switch collection {
	case CollectionProperties:
		props, err := p.properties.Effective(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading properties: %w", err)
		}
		return PropertiesView(props), nil

	case CollectionTasks:
		tasks, err := p.tasks.List(ctx, models.TaskFilter{})
		if err != nil {
			return nil, fmt.Errorf("loading tasks: %w", err)
		}
		return TasksView(tasks), nil

	case CollectionCandidates:
		candidates, err := p.candidates.List(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("loading candidates: %w", err)
		}
		return CandidatesView(candidates), nil
	}
	return nil, fmt.Errorf("unknown collection %q", collection)
}

// PropertiesView shows staff and workers every property, owners the ones
// they own and tenants the one they live in.
func PropertiesView(props []models.Property) websocket.ViewFunc {
	return func(viewer session.Session) (any, int, bool) {
		switch {
		case viewer.IsStaff(), viewer.Role == session.RoleWorker:
			return props, len(props), true
		case viewer.Role == session.RoleOwner:
			owned := OwnedBy(props, viewer.UserID)
			return owned, len(owned), true
		case viewer.Role == session.RoleTenant:
			mine := []models.Property{}
			for _, prop := range props {
				if viewer.PropertyID != "" && prop.ID == viewer.PropertyID {
					mine = append(mine, prop)
				}
			}
			return mine, len(mine), true
		}
		return nil, 0, false
	}
}

// TasksView shows staff every task, workers the tasks assigned to their
// name and tenants the tasks they raised.
func TasksView(tasks []models.Task) websocket.ViewFunc {
	return func(viewer session.Session) (any, int, bool) {
		switch {
		case viewer.IsStaff():
			return tasks, len(tasks), true
		case viewer.Role == session.RoleWorker:
			mine := matching.FilterTasks(tasks, viewer.DisplayName)
			return mine, len(mine), true
		case viewer.Role == session.RoleTenant:
			mine := RaisedBy(tasks, viewer.UserID)
			return mine, len(mine), true
		}
		return nil, 0, false
	}
}

// CandidatesView shows staff every candidate and workers their visits and
// the candidates they submitted.
func CandidatesView(candidates []models.Candidate) websocket.ViewFunc {
	return func(viewer session.Session) (any, int, bool) {
		switch {
		case viewer.IsStaff():
			return candidates, len(candidates), true
		case viewer.Role == session.RoleWorker:
			mine := matching.FilterCandidates(candidates, viewer.DisplayName)
			return mine, len(mine), true
		}
		return nil, 0, false
	}
}

// OwnedBy returns the properties whose owner is ownerID.
func OwnedBy(props []models.Property, ownerID string) []models.Property {
	owned := []models.Property{}
	if ownerID == "" {
		return owned
	}
	for _, p := range props {
		if p.OwnerID != nil && *p.OwnerID == ownerID {
			owned = append(owned, p)
		}
	}
	return owned
}

// RaisedBy returns the tasks raised by tenantID.
func RaisedBy(tasks []models.Task, tenantID string) []models.Task {
	raised := []models.Task{}
	if tenantID == "" {
		return raised
	}
	for _, t := range tasks {
		if t.TenantID != nil && *t.TenantID == tenantID {
			raised = append(raised, t)
		}
	}
	return raised
}
