package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/time-guide/backend/internal/model/chat"
	"github.com/zhouzirui/time-guide/backend/internal/service/ai"
)

type echoGuide struct{}

func (echoGuide) Respond(_ context.Context, sessionID, message string, _ *ai.Hooks) (ai.Reply, error) {
	return ai.Reply{SessionID: sessionID, Output: "eco: " + message, Travel: chat.AtEvent(1)}, nil
}

func (echoGuide) Locate(state chat.TravelState) (string, bool) {
	return "Lançamento do Sputnik 1", state.EventID == 1
}

type frame struct {
	Type      string         `json:"type"`
	SessionID string         `json:"sessionId"`
	Data      map[string]any `json:"data"`
}

func dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	r := chi.NewRouter()
	New(echoGuide{}).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func read(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestWebSocketTextRoundTrip(t *testing.T) {
	conn := dial(t, "?sessionId=s1")

	hello := read(t, conn)
	assert.Equal(t, "connected", hello.Type)
	assert.Equal(t, "s1", hello.SessionID)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "text",
		"data": map[string]string{"text": "oi"},
	}))

	reply := read(t, conn)
	assert.Equal(t, "reply", reply.Type)
	assert.Equal(t, "s1", reply.SessionID)
	assert.Equal(t, "eco: oi", reply.Data["output"])
	assert.Equal(t, "Lançamento do Sputnik 1", reply.Data["location"])
}

func TestWebSocketMintsSessionID(t *testing.T) {
	conn := dial(t, "")

	hello := read(t, conn)
	assert.Equal(t, "connected", hello.Type)
	assert.NotEmpty(t, hello.SessionID)
}

func TestWebSocketRejectsBadFrames(t *testing.T) {
	conn := dial(t, "?sessionId=s1")
	read(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "audio"}))
	f := read(t, conn)
	assert.Equal(t, "error", f.Type)
	assert.Contains(t, f.Data["message"], "unsupported message type")

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "text", "data": map[string]string{"text": " "}}))
	f = read(t, conn)
	assert.Equal(t, "error", f.Type)
	assert.Equal(t, ai.ErrMessageRequired.Error(), f.Data["message"])
}
