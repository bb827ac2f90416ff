package stream

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/time-guide/backend/internal/model/chat"
	"github.com/zhouzirui/time-guide/backend/internal/service/ai"
	"github.com/zhouzirui/time-guide/backend/pkg/utils"
)

// Guide is the conversation capability streamed to the client.
type Guide interface {
	Respond(ctx context.Context, sessionID, message string, hooks *ai.Hooks) (ai.Reply, error)
	Locate(state chat.TravelState) (string, bool)
}

// Handler manages streaming guide progress via Server-Sent Events
type Handler struct {
	guide Guide
}

// New creates a new stream handler
func New(guide Guide) *Handler {
	return &Handler{guide: guide}
}

// RegisterRoutes mounts the SSE endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

// StreamResponse represents one SSE payload.
type StreamResponse struct {
	SessionID string            `json:"sessionId,omitempty"`
	Step      int               `json:"step,omitempty"`
	Tool      string            `json:"tool,omitempty"`
	Arguments string            `json:"arguments,omitempty"`
	Result    string            `json:"result,omitempty"`
	Content   string            `json:"content,omitempty"`
	Travel    *chat.TravelState `json:"travel,omitempty"`
	Location  string            `json:"location,omitempty"`
	Error     string            `json:"error,omitempty"`
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userMessage := strings.TrimSpace(r.URL.Query().Get("message"))

	if h.guide == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai_unavailable")
		return
	}
	if userMessage == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	sse, err := utils.NewSSEWriter(w)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.HandleStreamRequest(r.Context(), sse, sessionID, userMessage); err != nil {
		log.Printf("[stream] session=%s error handling request: %v", sessionID, err)
	}
}

// HandleStreamRequest runs one turn and mirrors its progress as events:
// start, thinking, tool_start, tool_end, message, end, or error.
func (h *Handler) HandleStreamRequest(ctx context.Context, sse *utils.SSEWriter, sessionID, userMessage string) error {
	send := func(event string, payload StreamResponse) {
		if err := sse.Event(event, payload); err != nil {
			log.Printf("[stream] %v", err)
		}
	}

	send("start", StreamResponse{SessionID: sessionID})

	hooks := &ai.Hooks{
		OnThinking: func(step int) {
			send("thinking", StreamResponse{Step: step})
		},
		OnToolStart: func(name, arguments string) {
			send("tool_start", StreamResponse{Tool: name, Arguments: arguments})
		},
		OnToolEnd: func(name, result string, err error) {
			payload := StreamResponse{Tool: name, Result: result}
			if err != nil {
				payload.Error = err.Error()
			}
			send("tool_end", payload)
		},
	}

	reply, err := h.guide.Respond(ctx, sessionID, userMessage, hooks)
	if err != nil {
		send("error", StreamResponse{SessionID: reply.SessionID, Error: errorCode(err)})
		return err
	}

	travel := reply.Travel
	payload := StreamResponse{
		SessionID: reply.SessionID,
		Content:   reply.Output,
		Travel:    &travel,
	}
	if name, ok := h.guide.Locate(reply.Travel); ok {
		payload.Location = name
	}
	send("message", payload)
	send("end", StreamResponse{SessionID: reply.SessionID})
	return nil
}

// errorCode maps a failed turn to a fixed code for the client.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ai.ErrStepLimit):
		return "step_limit"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal_error"
	}
}
