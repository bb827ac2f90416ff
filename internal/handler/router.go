package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/time-guide/backend/internal/handler/chat"
	"github.com/zhouzirui/time-guide/backend/internal/handler/events"
	"github.com/zhouzirui/time-guide/backend/internal/handler/stream"
	"github.com/zhouzirui/time-guide/backend/internal/handler/voice"
	"github.com/zhouzirui/time-guide/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/time-guide/backend/internal/middleware"
	aiService "github.com/zhouzirui/time-guide/backend/internal/service/ai"
	chatService "github.com/zhouzirui/time-guide/backend/internal/service/chat"
	"github.com/zhouzirui/time-guide/backend/internal/service/timelog"
	"github.com/zhouzirui/time-guide/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. guide and companion may be
// nil when no chat model is configured; their routes then answer 503.
func NewRouter(timeline *timelog.Service, sessions *chatService.Service, guide *aiService.Guide, companion *aiService.Voice, limiter *middlewarePkg.RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"ai":       guide != nil,
			"sessions": sessions.Len(),
		})
	})

	// Typed nil pointers must not leak into the handler interfaces.
	var (
		chatGuide   chat.Guide
		streamGuide stream.Guide
		wsGuide     ws.Guide
		voiceReply  voice.Companion
	)
	if guide != nil {
		chatGuide, streamGuide, wsGuide = guide, guide, guide
	}
	if companion != nil {
		voiceReply = companion
	}

	r.Route("/api", func(api chi.Router) {
		if limiter != nil {
			api.Use(limiter.Middleware)
		}

		events.New(timeline).RegisterRoutes(api)
		chat.New(chatGuide, sessions).RegisterRoutes(api)
		stream.New(streamGuide).RegisterRoutes(api)
		ws.New(wsGuide).RegisterRoutes(api)
		voice.New(voiceReply).RegisterRoutes(api)
	})

	return r
}
