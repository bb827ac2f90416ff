package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/time-guide/backend/internal/model/chat"
	"github.com/zhouzirui/time-guide/backend/internal/service/ai"
	chatService "github.com/zhouzirui/time-guide/backend/internal/service/chat"
)

type fakeGuide struct {
	reply     ai.Reply
	err       error
	sessionID string
	message   string
}

func (f *fakeGuide) Respond(_ context.Context, sessionID, message string, _ *ai.Hooks) (ai.Reply, error) {
	f.sessionID, f.message = sessionID, message
	if f.err != nil {
		return ai.Reply{SessionID: sessionID}, f.err
	}
	return f.reply, nil
}

func (f *fakeGuide) Locate(state chat.TravelState) (string, bool) {
	if state.EventID == 2 {
		return "Primeiro Homem na Lua", true
	}
	return "", false
}

func setupRouter(guide Guide) (*chi.Mux, *chatService.Service) {
	sessions := chatService.NewService(chatService.Options{})
	r := chi.NewRouter()
	New(guide, sessions).RegisterRoutes(r)
	return r, sessions
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestChatReturnsReply(t *testing.T) {
	guide := &fakeGuide{reply: ai.Reply{SessionID: "s1", Output: "Chegamos!", Travel: chat.AtEvent(2)}}
	r, _ := setupRouter(guide)

	resp := post(r, `{"message":"me leve para a lua","sessionId":"s1"}`)
	require.Equal(t, http.StatusOK, resp.Code)

	var body chatResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "Chegamos!", body.Output)
	assert.Equal(t, "s1", body.SessionID)
	assert.Equal(t, 2, body.Travel.EventID)
	assert.Equal(t, "Primeiro Homem na Lua", body.Location)
	assert.Equal(t, "me leve para a lua", guide.message)
}

func TestChatRejectsBadRequests(t *testing.T) {
	r, _ := setupRouter(&fakeGuide{})

	for name, body := range map[string]string{
		"bad json":        `{"message":`,
		"missing message": `{"sessionId":"s1"}`,
		"blank message":   `{"message":"   "}`,
		"empty body":      ``,
	} {
		t.Run(name, func(t *testing.T) {
			resp := post(r, body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Contains(t, resp.Body.String(), `"error"`)
		})
	}
}

func TestChatHidesInternalErrors(t *testing.T) {
	r, _ := setupRouter(&fakeGuide{err: errors.New("ark: 401 unauthorized")})

	resp := post(r, `{"message":"oi"}`)
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"error":"internal_error"}`, resp.Body.String())
}

func TestChatWithoutGuide(t *testing.T) {
	r, _ := setupRouter(nil)

	resp := post(r, `{"message":"oi"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestGetSessionReturnsTranscript(t *testing.T) {
	r, sessions := setupRouter(&fakeGuide{})
	ctx := context.Background()

	_, err := sessions.AppendTurn(ctx, "s1", chat.RoleUser, "oi")
	require.NoError(t, err)
	require.NoError(t, sessions.SetTravelState(ctx, "s1", chat.AtEvent(3)))

	req := httptest.NewRequest(http.MethodGet, "/sessions/s1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var session chat.Session
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &session))
	assert.Equal(t, "s1", session.ID)
	assert.Equal(t, 3, session.Travel.EventID)
	require.Len(t, session.Transcript, 1)
	assert.Equal(t, "oi", session.Transcript[0].Content)
}
