// Package chats serves the chat-history REST contract: list/create/delete
// chats and fetch/append messages, backed by the in-memory store.
package chats

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studentbot/backend/internal/model/chat"
	"github.com/studentbot/backend/internal/notify"
	"github.com/studentbot/backend/internal/render"
	chatservice "github.com/studentbot/backend/internal/service/chat"
	"github.com/studentbot/backend/pkg/utils"
)

// Handler exposes the history store over HTTP.
type Handler struct {
	chatSvc *chatservice.Service
	bus     *notify.Bus
}

// New creates the chats handler.
func New(chatSvc *chatservice.Service, bus *notify.Bus) *Handler {
	return &Handler{chatSvc: chatSvc, bus: bus}
}

// RegisterRoutes mounts the history routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chats", h.handleListChats)
	r.Post("/chats", h.handleCreateChat)
	r.Delete("/chats/{chatID}", h.handleDeleteChat)
	r.Get("/messages", h.handleListMessages)
	r.Post("/messages", h.handleSaveMessage)
}

func (h *Handler) handleListChats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		utils.RespondError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}

	sessions, err := h.chatSvc.ListChats(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string][]chat.Session{"chats": sessions})
}

func (h *Handler) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ChatID string `json:"chatId"`
		Title  string `json:"title"`
		UserID string `json:"userId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.UserID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if err := h.chatSvc.CreateChat(r.Context(), payload.ChatID, chat.TitleFromMessage(payload.Title), payload.UserID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.bus != nil {
		h.bus.Publish(notify.Event{
			UserID: payload.UserID,
			ChatID: payload.ChatID,
			Title:  chat.TitleFromMessage(payload.Title),
		})
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (h *Handler) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	if err := h.chatSvc.DeleteChat(r.Context(), chatID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chatservice.ErrChatNotFound) {
			status = http.StatusNotFound
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	chatID := r.URL.Query().Get("chat_id")
	if chatID == "" {
		utils.RespondError(w, http.StatusBadRequest, "chat_id query parameter is required")
		return
	}

	messages, err := h.chatSvc.Messages(r.Context(), chatID)
	if err != nil {
		// Unknown chat reads the same as an empty one on this contract.
		messages = []chat.Message{}
	}

	if r.URL.Query().Get("rendered") == "1" {
		utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": renderMessages(messages)})
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string][]chat.Message{"messages": messages})
}

func (h *Handler) handleSaveMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ChatID  string `json:"chat_id"`
		Sender  string `json:"sender"`
		Content string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.chatSvc.SaveMessage(r.Context(), payload.ChatID, payload.Sender, payload.Content); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chatservice.ErrChatNotFound) {
			status = http.StatusNotFound
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

type renderedMessage struct {
	chat.Message
	Segments []render.Segment `json:"segments,omitempty"`
}

// renderMessages applies the presentation helpers to assistant turns only;
// user text is shown verbatim.
func renderMessages(messages []chat.Message) []renderedMessage {
	out := make([]renderedMessage, 0, len(messages))
	for _, msg := range messages {
		rendered := renderedMessage{Message: msg}
		if msg.FromAssistant() {
			rendered.Segments = render.Render(msg.Content)
		}
		out = append(out, rendered)
	}
	return out
}
