package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypePropertiesSnapshot MessageType = "properties.snapshot"
	TypeTasksSnapshot      MessageType = "tasks.snapshot"
	TypeCandidatesSnapshot MessageType = "candidates.snapshot"
	TypeCleaningScheduled  MessageType = "cleaning.scheduled"
	TypeNotification       MessageType = "notification"

	// Client -> Server command types
	TypeSubscribe   MessageType = "subscribe"
	TypeUnsubscribe MessageType = "unsubscribe"
	TypePing        MessageType = "ping"

	// Server -> Client response types
	TypeSubscribeAck MessageType = "subscribe.ack"
	TypePong         MessageType = "pong"
	TypeError        MessageType = "error"
)

// SnapshotType returns the snapshot message type for a collection.
func SnapshotType(collection string) MessageType {
	return MessageType(collection + ".snapshot")
}

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// ClientMessage is a command sent by a client.
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubscribePayload names the collection of a subscribe or unsubscribe command.
type SubscribePayload struct {
	Collection string `json:"collection"`
}

// SnapshotPayload is a full, point-in-time list of a collection.
// Each snapshot replaces the previous one; there are no partial updates.
type SnapshotPayload struct {
	Collection string `json:"collection"`
	Count      int    `json:"count"`
	Items      any    `json:"items"`
}

// CleaningScheduledPayload is the payload for cleaning.scheduled events.
// NextDate is nil when the property has no active cleaning schedule.
type CleaningScheduledPayload struct {
	PropertyID   string  `json:"property_id"`
	Address      string  `json:"address"`
	PreviousDate *string `json:"previous_date,omitempty"`
	NextDate     *string `json:"next_date"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	OriginalType string `json:"original_type,omitempty"`
}
