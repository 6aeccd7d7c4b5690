package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/studentbot/backend/internal/auth"
	authnHandler "github.com/studentbot/backend/internal/handler/authn"
	chatsHandler "github.com/studentbot/backend/internal/handler/chats"
	completionHandler "github.com/studentbot/backend/internal/handler/completion"
	flowHandler "github.com/studentbot/backend/internal/handler/flow"
	notifyHandler "github.com/studentbot/backend/internal/handler/notify"
	promptsHandler "github.com/studentbot/backend/internal/handler/prompts"
	middlewarePkg "github.com/studentbot/backend/internal/middleware"
	"github.com/studentbot/backend/internal/model/prompt"
	"github.com/studentbot/backend/internal/model/user"
	"github.com/studentbot/backend/internal/notify"
	"github.com/studentbot/backend/internal/service/ai"
	chatservice "github.com/studentbot/backend/internal/service/chat"
	"github.com/studentbot/backend/internal/service/chatflow"
)

// Deps carries everything the router mounts. Optional collaborators may be
// nil and their routes degrade accordingly.
type Deps struct {
	ChatService *chatservice.Service
	FlowStore   chatflow.Store
	Completer   chatflow.Completer
	AIService   *ai.Service
	AuthClient  *auth.Client
	Profiles    user.Store
	Prompts     prompt.Store
	Bus         *notify.Bus

	CompletionUpstream string
	JWTSecret          string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chats := chatsHandler.New(deps.ChatService, deps.Bus)
	completions := completionHandler.New(deps.AIService, deps.CompletionUpstream)
	prompts := promptsHandler.New(deps.Prompts)
	notifications := notifyHandler.New(deps.Bus)

	r.Route("/api", func(api chi.Router) {
		chats.RegisterRoutes(api)
		completions.RegisterRoutes(api)
		prompts.RegisterRoutes(api)
		notifications.RegisterRoutes(api)

		if deps.AuthClient != nil {
			authn := authnHandler.New(deps.AuthClient, deps.Profiles)
			authn.RegisterRoutes(api)

			api.Group(func(protected chi.Router) {
				protected.Use(middlewarePkg.RequireSession(deps.JWTSecret))
				authn.RegisterProtectedRoutes(protected)

				if deps.FlowStore != nil && deps.Completer != nil {
					flows := flowHandler.New(deps.FlowStore, deps.Completer, deps.Bus)
					flows.RegisterRoutes(protected)
				}
			})
		}
	})

	return r
}
