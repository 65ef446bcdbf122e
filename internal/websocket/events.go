package websocket

import (
	"go.uber.org/zap"

	"github.com/roomportal/backend/internal/session"
)

// EventBroadcaster encodes typed events and hands them to the hub.
type EventBroadcaster struct {
	hub    *Hub
	logger *zap.Logger
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub, logger *zap.Logger) *EventBroadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBroadcaster{hub: hub, logger: logger}
}

// ViewFunc returns the items a viewer may see, or false to send nothing.
type ViewFunc func(viewer session.Session) (items any, count int, ok bool)

// PublishSnapshot sends the same snapshot to every subscriber of collection.
func (b *EventBroadcaster) PublishSnapshot(collection string, items any, count int) {
	data, err := snapshotMessage(collection, items, count)
	if err != nil {
		b.logger.Error("encoding snapshot", zap.String("collection", collection), zap.Error(err))
		return
	}
	b.hub.Publish(collection, data)
}

// PublishSnapshotPerViewer sends each subscriber of collection its own view.
func (b *EventBroadcaster) PublishSnapshotPerViewer(collection string, view ViewFunc) {
	b.hub.PublishRendered(collection, b.renderer(collection, view))
}

// SendSnapshot sends one client its view of collection.
func (b *EventBroadcaster) SendSnapshot(client *Client, collection string, view ViewFunc) {
	b.hub.SendRenderedTo(client, b.renderer(collection, view))
}

func (b *EventBroadcaster) renderer(collection string, view ViewFunc) Renderer {
	return func(c *Client) ([]byte, bool) {
		items, count, ok := view(c.Viewer())
		if !ok {
			return nil, false
		}
		data, err := snapshotMessage(collection, items, count)
		if err != nil {
			b.logger.Error("encoding snapshot", zap.String("collection", collection), zap.Error(err))
			return nil, false
		}
		return data, true
	}
}

func snapshotMessage(collection string, items any, count int) ([]byte, error) {
	return NewMessage(SnapshotType(collection), SnapshotPayload{
		Collection: collection,
		Count:      count,
		Items:      items,
	}).JSON()
}

// BroadcastCleaningScheduled announces a change in a property's next cleaning date.
func (b *EventBroadcaster) BroadcastCleaningScheduled(payload CleaningScheduledPayload) {
	b.broadcast(NewMessage(TypeCleaningScheduled, payload))
}

// BroadcastNotification sends a notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	b.broadcast(NewMessage(TypeNotification, NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}))
}

// Reply sends a response message to a single client.
func (b *EventBroadcaster) Reply(client *Client, msgType MessageType, payload any) {
	data, err := NewMessage(msgType, payload).JSON()
	if err != nil {
		b.logger.Error("encoding websocket reply", zap.String("type", string(msgType)), zap.Error(err))
		return
	}
	b.hub.SendTo(client, data)
}

func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		b.logger.Error("encoding websocket message", zap.String("type", string(msg.Type)), zap.Error(err))
		return
	}
	b.hub.Broadcast(data)
}
