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

	"github.com/studentbot/backend/internal/auth"
	"github.com/studentbot/backend/internal/config"
	"github.com/studentbot/backend/internal/handler"
	"github.com/studentbot/backend/internal/model/prompt"
	"github.com/studentbot/backend/internal/model/user"
	"github.com/studentbot/backend/internal/notify"
	"github.com/studentbot/backend/internal/service/ai"
	chatservice "github.com/studentbot/backend/internal/service/chat"
	"github.com/studentbot/backend/internal/service/chatflow"
	"github.com/studentbot/backend/internal/service/completion"
	"github.com/studentbot/backend/internal/service/history"
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

	bus := notify.NewBus()
	chatSvc := chatservice.NewService()
	promptStore := prompt.NewMemoryStore(prompt.Seed())
	profileStore := user.NewMemoryStore()

	// The flow controller writes through a remote history service when one is
	// configured, otherwise through the built-in store.
	var flowStore chatflow.Store = chatSvc
	if cfg.History.Enabled() {
		flowStore = history.NewClient(cfg.History.BaseURL)
		log.Printf("using remote history service at %s", cfg.History.BaseURL)
	} else {
		log.Println("no HISTORY_BASE_URL configured, using in-memory history store")
	}

	// Replies come from a remote completion endpoint, or the local Ark model.
	var aiService *ai.Service
	var completer chatflow.Completer
	switch {
	case cfg.Completion.Enabled():
		completer = completion.NewClient(cfg.Completion.BaseURL)
		log.Printf("using remote completion service at %s", cfg.Completion.BaseURL)
	case cfg.AI.Enabled():
		aiService, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without completion functionality - check the Ark model environment variables")
		} else {
			completer = aiService
			log.Println("AI service initialized successfully")
		}
	default:
		log.Println("no completion backend configured, message submission disabled")
	}

	var authClient *auth.Client
	if cfg.Auth.Enabled() {
		authClient = auth.NewClient(cfg.Auth)
		log.Println("identity provider client initialized")
	} else {
		log.Println("AUTH_BASE_URL/AUTH_ANON_KEY not configured, auth routes disabled")
	}

	router := handler.NewRouter(handler.Deps{
		ChatService:        chatSvc,
		FlowStore:          flowStore,
		Completer:          completer,
		AIService:          aiService,
		AuthClient:         authClient,
		Profiles:           profileStore,
		Prompts:            promptStore,
		Bus:                bus,
		CompletionUpstream: cfg.Completion.BaseURL,
		JWTSecret:          cfg.Auth.JWTSecret,
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("StudentBot backend listening on %s", serverCfg.Addr)
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
