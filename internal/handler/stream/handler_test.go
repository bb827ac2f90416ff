package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/time-guide/backend/internal/model/chat"
	"github.com/zhouzirui/time-guide/backend/internal/service/ai"
)

type fakeGuide struct {
	err error
}

func (f *fakeGuide) Respond(_ context.Context, sessionID, _ string, hooks *ai.Hooks) (ai.Reply, error) {
	hooks.OnThinking(1)
	hooks.OnToolStart("travel_to_event", `{"eventId":2}`)
	hooks.OnToolEnd("travel_to_event", "Ok, você viajou.", nil)
	if f.err != nil {
		return ai.Reply{SessionID: sessionID}, f.err
	}
	hooks.OnThinking(2)
	return ai.Reply{SessionID: sessionID, Output: "Bem-vindo à Lua!", Travel: chat.AtEvent(2)}, nil
}

func (f *fakeGuide) Locate(state chat.TravelState) (string, bool) {
	return "Primeiro Homem na Lua", state.EventID == 2
}

func eventNames(t *testing.T, body string) []string {
	t.Helper()
	var names []string
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
			names = append(names, name)
		}
	}
	require.NoError(t, scanner.Err())
	return names
}

func serve(guide Guide, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	New(guide).RegisterRoutes(r)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestStreamEmitsProgressEvents(t *testing.T) {
	resp := serve(&fakeGuide{}, "/stream/s1?message=lua")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))
	assert.Equal(t,
		[]string{"start", "thinking", "tool_start", "tool_end", "thinking", "message", "end"},
		eventNames(t, resp.Body.String()),
	)
	assert.Contains(t, resp.Body.String(), `"content":"Bem-vindo à Lua!"`)
	assert.Contains(t, resp.Body.String(), `"location":"Primeiro Homem na Lua"`)
}

func TestStreamReportsFailure(t *testing.T) {
	resp := serve(&fakeGuide{err: errors.New("boom")}, "/stream/s1?message=lua")

	names := eventNames(t, resp.Body.String())
	require.NotEmpty(t, names)
	assert.Equal(t, "error", names[len(names)-1])
	assert.Contains(t, resp.Body.String(), `"error":"internal_error"`)
	assert.NotContains(t, resp.Body.String(), "boom")
}

func TestStreamRequiresMessage(t *testing.T) {
	resp := serve(&fakeGuide{}, "/stream/s1?message=%20")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = serve(nil, "/stream/s1?message=oi")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestStreamErrorsUseFixedCodes(t *testing.T) {
	cases := map[string]error{
		"timeout":    fmt.Errorf("failed to run chat model: Post \"https://ark.example.com/api/v3/chat\": %w", context.DeadlineExceeded),
		"step_limit": fmt.Errorf("session s1: %w", ai.ErrStepLimit),
	}

	for code, err := range cases {
		t.Run(code, func(t *testing.T) {
			resp := serve(&fakeGuide{err: err}, "/stream/s1?message=lua")

			body := resp.Body.String()
			assert.Contains(t, body, `"error":"`+code+`"`)
			assert.NotContains(t, body, "ark.example.com")
			assert.NotContains(t, body, "session s1")
		})
	}
}
