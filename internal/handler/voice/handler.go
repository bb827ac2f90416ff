package voice

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/time-guide/backend/internal/service/ai"
	"github.com/zhouzirui/time-guide/backend/pkg/utils"
)

// Companion 生成简短的角色化回复。
type Companion interface {
	Reply(ctx context.Context, persona, message string) (string, error)
}

// Handler 语音演示的无状态聊天接口；语音识别与合成都在浏览器端完成。
type Handler struct {
	companion Companion
}

// New 创建语音聊天处理器
func New(companion Companion) *Handler {
	return &Handler{companion: companion}
}

// RegisterRoutes 注册语音相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/voice/chat", h.handleChat)
}

type chatRequest struct {
	Message string `json:"message"`
	Persona string `json:"persona"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if h.companion == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai_unavailable")
		return
	}

	var payload chatRequest
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	output, err := h.companion.Reply(r.Context(), payload.Persona, payload.Message)
	if errors.Is(err, ai.ErrMessageRequired) {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("[voice] reply failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"output": output})
}
