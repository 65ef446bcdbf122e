package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/roomportal/backend/internal/session"
	"github.com/roomportal/backend/internal/snapshot"
	ws "github.com/roomportal/backend/internal/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	readLimit  = 65536
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin checks are done by the gateway.
		return true
	},
}

// WebSocketUpgrade returns a handler that upgrades HTTP connections to
// WebSocket. The connection carries the caller's session, which decides
// what each snapshot contains.
func WebSocketUpgrade(hub *ws.Hub, publisher *snapshot.Publisher, logger *zap.Logger) http.HandlerFunc {
	events := ws.NewEventBroadcaster(hub, logger)
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := ws.NewClient(hub, session.FromContext(r.Context()))
		hub.Register(client)

		go writePump(conn, client)
		go readPump(conn, client, hub, &commandHandler{
			client:    client,
			events:    events,
			publisher: publisher,
			logger:    logger,
		})
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func writePump(conn *websocket.Conn, client *ws.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump pumps commands from the WebSocket connection to the handler.
func readPump(conn *websocket.Conn, client *ws.Client, hub *ws.Hub, h *commandHandler) {
	defer func() {
		hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error", zap.Error(err))
			}
			break
		}

		h.handle(context.Background(), message)
	}
}

// commandHandler processes client commands for one connection.
type commandHandler struct {
	client    *ws.Client
	events    *ws.EventBroadcaster
	publisher *snapshot.Publisher
	logger    *zap.Logger
}

func (h *commandHandler) handle(ctx context.Context, message []byte) {
	var msg ws.ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		h.reject("invalid_message", "Message is not valid JSON", "")
		return
	}

	switch msg.Type {
	case ws.TypePing:
		h.events.Reply(h.client, ws.TypePong, nil)

	case ws.TypeSubscribe, ws.TypeUnsubscribe:
		var payload ws.SubscribePayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.reject("invalid_payload", "Payload must name a collection", string(msg.Type))
				return
			}
		}
		if !snapshot.IsCollection(payload.Collection) {
			h.reject("unknown_collection", "Unknown collection: "+payload.Collection, string(msg.Type))
			return
		}

		if msg.Type == ws.TypeUnsubscribe {
			h.client.Unsubscribe(payload.Collection)
			return
		}

		h.client.Subscribe(payload.Collection)
		h.events.Reply(h.client, ws.TypeSubscribeAck, payload)
		if err := h.publisher.SendInitial(ctx, h.client, payload.Collection); err != nil {
			h.logger.Error("sending initial snapshot",
				zap.String("collection", payload.Collection), zap.Error(err))
			h.reject("snapshot_failed", "Could not load "+payload.Collection, string(msg.Type))
		}

	default:
		h.reject("unknown_type", "Unknown message type: "+string(msg.Type), string(msg.Type))
	}
}

func (h *commandHandler) reject(code, message, originalType string) {
	h.events.Reply(h.client, ws.TypeError, ws.ErrorPayload{
		Code:         code,
		Message:      message,
		OriginalType: originalType,
	})
}
