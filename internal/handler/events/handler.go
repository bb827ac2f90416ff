package events

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/time-guide/backend/internal/service/timelog"
	"github.com/zhouzirui/time-guide/backend/pkg/utils"
)

// Handler 事件日志的只读HTTP处理器
type Handler struct {
	timelog *timelog.Service
}

// New 创建事件处理器
func New(timeline *timelog.Service) *Handler {
	return &Handler{timelog: timeline}
}

// RegisterRoutes 注册事件相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/events", h.handleListEvents)
	r.Get("/events/{eventID}", h.handleGetEvent)
}

// handleListEvents 按查询参数筛选事件
func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	summaries, err := h.timelog.Search(timelog.Filter{
		Location:  query.Get("location"),
		Topic:     query.Get("topic"),
		StartDate: query.Get("startDate"),
		EndDate:   query.Get("endDate"),
	})
	if err != nil {
		var validation *timelog.ValidationError
		if errors.As(err, &validation) {
			utils.RespondError(w, http.StatusBadRequest, validation.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, summaries)
}

// handleGetEvent 返回单个事件详情
func (h *Handler) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "eventID"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "eventId must be an integer")
		return
	}

	e, err := h.timelog.GetByID(id)
	if errors.Is(err, timelog.ErrEventNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, e)
}
