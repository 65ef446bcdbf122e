package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomportal/backend/internal/portal"
	"github.com/roomportal/backend/internal/session"
	"github.com/roomportal/backend/internal/websocket"
)

type wsMessage struct {
	Type    websocket.MessageType `json:"type"`
	Payload json.RawMessage       `json:"payload"`
}

func dial(t *testing.T, srv *httptest.Server, s session.Session) *gorilla.Conn {
	t.Helper()
	header := http.Header{}
	header.Set(session.HeaderUserID, s.UserID)
	header.Set(session.HeaderUserName, s.DisplayName)
	header.Set(session.HeaderUserRole, s.Role)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := gorilla.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *gorilla.Conn, msg string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(gorilla.TextMessage, []byte(msg)))
}

func read(t *testing.T, conn *gorilla.Conn) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

type snapshotPayload struct {
	Collection string            `json:"collection"`
	Count      int               `json:"count"`
	Items      []json.RawMessage `json:"items"`
}

func TestWebSocket_SubscribeAndLiveSnapshots(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	worker := dial(t, srv, workerSession)
	send(t, worker, `{"type":"subscribe","payload":{"collection":"tasks"}}`)

	ack := read(t, worker)
	assert.Equal(t, websocket.TypeSubscribeAck, ack.Type)

	initial := read(t, worker)
	require.Equal(t, websocket.TypeTasksSnapshot, initial.Type)
	var payload snapshotPayload
	require.NoError(t, json.Unmarshal(initial.Payload, &payload))
	assert.Equal(t, 0, payload.Count)

	// Unrelated tasks are filtered out of the worker's snapshot.
	rec := ts.do(t, staffSession, "POST", "/api/tasks", portal.TaskInput{Title: "Llaves", Assignee: "Pedro"})
	require.Equal(t, http.StatusCreated, rec.Code)
	update := read(t, worker)
	require.NoError(t, json.Unmarshal(update.Payload, &payload))
	assert.Equal(t, 0, payload.Count)

	rec = ts.do(t, staffSession, "POST", "/api/tasks", portal.TaskInput{Title: "Pintar", Assignee: "Ana García"})
	require.Equal(t, http.StatusCreated, rec.Code)
	update = read(t, worker)
	require.NoError(t, json.Unmarshal(update.Payload, &payload))
	assert.Equal(t, "tasks", payload.Collection)
	assert.Equal(t, 1, payload.Count)
}

func TestWebSocket_Commands(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	conn := dial(t, srv, staffSession)

	send(t, conn, `{"type":"ping"}`)
	assert.Equal(t, websocket.TypePong, read(t, conn).Type)

	send(t, conn, `{"type":"subscribe","payload":{"collection":"invoices"}}`)
	msg := read(t, conn)
	require.Equal(t, websocket.TypeError, msg.Type)
	var errPayload websocket.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &errPayload))
	assert.Equal(t, "unknown_collection", errPayload.Code)

	send(t, conn, `{"type":"dance"}`)
	assert.Equal(t, websocket.TypeError, read(t, conn).Type)

	send(t, conn, `not json`)
	assert.Equal(t, websocket.TypeError, read(t, conn).Type)
}
