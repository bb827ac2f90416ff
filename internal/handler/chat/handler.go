package chat

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/time-guide/backend/internal/model/chat"
	"github.com/zhouzirui/time-guide/backend/internal/service/ai"
	chatService "github.com/zhouzirui/time-guide/backend/internal/service/chat"
	"github.com/zhouzirui/time-guide/backend/pkg/utils"
)

// Guide 是处理器依赖的对话能力。
type Guide interface {
	Respond(ctx context.Context, sessionID, message string, hooks *ai.Hooks) (ai.Reply, error)
	Locate(state chat.TravelState) (string, bool)
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	guide    Guide
	sessions *chatService.Service
}

// New 创建聊天处理器。guide 为 nil 时聊天接口返回 503。
func New(guide Guide, sessions *chatService.Service) *Handler {
	return &Handler{guide: guide, sessions: sessions}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/sessions/{sessionID}", h.handleGetSession)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type chatResponse struct {
	Output    string           `json:"output"`
	SessionID string           `json:"sessionId"`
	Travel    chat.TravelState `json:"travel"`
	Location  string           `json:"location,omitempty"`
}

// handleChat 处理一轮对话
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if h.guide == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai_unavailable")
		return
	}

	var payload chatRequest
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, ai.ErrMessageRequired.Error())
		return
	}

	reply, err := h.guide.Respond(r.Context(), payload.SessionID, payload.Message, nil)
	if err != nil {
		if errors.Is(err, ai.ErrMessageRequired) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[chat] session=%s turn failed: %v", reply.SessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	resp := chatResponse{
		Output:    reply.Output,
		SessionID: reply.SessionID,
		Travel:    reply.Travel,
	}
	if name, ok := h.guide.Locate(reply.Travel); ok {
		resp.Location = name
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleGetSession 返回会话记录与当前旅行状态
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.sessions.Get(r.Context(), sessionID)
	switch {
	case errors.Is(err, chatService.ErrSessionIDRequired):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, chatService.ErrSessionExpired):
		utils.RespondError(w, http.StatusGone, "session_expired")
		return
	case err != nil:
		log.Printf("[chat] session=%s lookup failed: %v", sessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	if session.Transcript == nil {
		session.Transcript = []chat.Message{}
	}
	utils.RespondJSON(w, http.StatusOK, session)
}
