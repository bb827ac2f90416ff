package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/time-guide/backend/internal/config"
	"github.com/zhouzirui/time-guide/backend/internal/handler"
	"github.com/zhouzirui/time-guide/backend/internal/middleware"
	"github.com/zhouzirui/time-guide/backend/internal/model/event"
	"github.com/zhouzirui/time-guide/backend/internal/service/ai"
	"github.com/zhouzirui/time-guide/backend/internal/service/chat"
	"github.com/zhouzirui/time-guide/backend/internal/service/timelog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store, err := event.NewMemoryStore(event.Seed())
	if err != nil {
		log.Fatalf("failed to load event log: %v", err)
	}
	timeline := timelog.NewService(store)

	sessions := chat.NewService(chat.Options{
		TTL:           cfg.Session.TTL,
		MaxSessions:   cfg.Session.MaxSessions,
		TombstoneTTL:  cfg.Session.TombstoneTTL,
		SweepInterval: cfg.Session.SweepInterval,
	})
	go sessions.Run(ctx)

	guide, voice := initAI(ctx, cfg.AI, sessions, timeline)

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	go limiter.Run(ctx)

	router := handler.NewRouter(timeline, sessions, guide, voice, limiter)

	startServer(ctx, cfg.Server, router)
}

// initAI builds the guide and the voice companion on separate chat model
// instances, since binding tools mutates a model.
func initAI(ctx context.Context, cfg config.AIConfig, sessions *chat.Service, timeline *timelog.Service) (*ai.Guide, *ai.Voice) {
	if !cfg.Enabled() {
		log.Println("LLM 凭证未配置，跳过 AI 功能初始化")
		return nil, nil
	}

	guideModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		log.Printf("warning: failed to initialize chat model: %v", err)
		return nil, nil
	}
	guide, err := ai.NewGuide(guideModel, sessions, timeline, ai.Options{
		MaxSteps:     cfg.MaxSteps,
		HistoryLimit: cfg.HistoryLimit,
		TurnTimeout:  cfg.TurnTimeout,
	})
	if err != nil {
		log.Printf("warning: failed to initialize guide: %v", err)
		return nil, nil
	}
	log.Printf("AI guide initialized (provider=%s)", cfg.Provider)

	voiceModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		log.Printf("warning: failed to initialize voice chat model: %v", err)
		return guide, nil
	}
	voice, err := ai.NewVoice(ctx, voiceModel, cfg.VoiceMaxTokens)
	if err != nil {
		log.Printf("warning: failed to initialize voice companion: %v", err)
		return guide, nil
	}
	return guide, voice
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Time guide backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
