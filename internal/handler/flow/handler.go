// Package flow runs one submit through the chat session controller and
// streams its progress to the browser as Server-Sent Events.
package flow

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studentbot/backend/internal/middleware"
	"github.com/studentbot/backend/internal/notify"
	"github.com/studentbot/backend/internal/service/chatflow"
	"github.com/studentbot/backend/internal/service/completion"
	"github.com/studentbot/backend/pkg/utils"
)

// Handler builds a per-request flow controller around the shared backends.
type Handler struct {
	store     chatflow.Store
	completer chatflow.Completer
	bus       *notify.Bus
}

// New creates the flow handler.
func New(store chatflow.Store, completer chatflow.Completer, bus *notify.Bus) *Handler {
	return &Handler{store: store, completer: completer, bus: bus}
}

// RegisterRoutes mounts the flow routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	// GET so the browser can consume the stream with EventSource, the same
	// shape as a classic SSE chat endpoint.
	r.Get("/flow/{chatID}", h.handleSubmit)
	r.Get("/flow", h.handleSubmit)
}

// StreamEvent is one SSE frame of a submit round trip.
type StreamEvent struct {
	Event    string `json:"event"`
	ChatID   string `json:"chatId,omitempty"`
	Content  string `json:"content,omitempty"`
	Finished bool   `json:"finished,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	message := r.URL.Query().Get("message")
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	flusher, flushOK := w.(http.Flusher)
	if !flushOK {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	chatID := chi.URLParam(r, "chatID")
	controller := chatflow.NewController(h.store, h.completer, h.bus, identity.UserID, chatID)
	controller.Load(r.Context())
	controller.SetInput(message)

	utils.SetupSSEHeaders(w)
	h.send(w, flusher, StreamEvent{Event: "start", ChatID: chatID})

	result, err := controller.Submit(r.Context(), func(delta string) {
		h.send(w, flusher, StreamEvent{Event: "delta", Content: delta})
	})
	if err != nil {
		h.send(w, flusher, StreamEvent{Event: "error", Error: userFacing(err)})
		return
	}

	if result.CreatedChat {
		h.send(w, flusher, StreamEvent{Event: "created", ChatID: result.ChatID, Content: result.UserMessage.Content})
	}
	h.send(w, flusher, StreamEvent{Event: "message", ChatID: result.ChatID, Content: result.Reply.Content})
	h.send(w, flusher, StreamEvent{Event: "end", ChatID: result.ChatID, Finished: true})

	log.Printf("[flow] completed submit for chat=%s user=%s", result.ChatID, identity.UserID)
}

func (h *Handler) send(w http.ResponseWriter, flusher http.Flusher, evt StreamEvent) {
	utils.SendSSEChunk(w, flusher, evt)
}

// userFacing keeps validation errors readable and hides transport internals.
func userFacing(err error) string {
	switch {
	case errors.Is(err, chatflow.ErrEmptyInput),
		errors.Is(err, chatflow.ErrInputTooShort),
		errors.Is(err, chatflow.ErrBusy),
		errors.Is(err, chatflow.ErrUserRequired),
		errors.Is(err, completion.ErrEmptyBody):
		return err.Error()
	default:
		return "failed to send message, please try again"
	}
}
