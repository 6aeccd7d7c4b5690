package prompts

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studentbot/backend/internal/model/prompt"
	"github.com/studentbot/backend/pkg/utils"
)

// Handler serves the suggested opening questions.
type Handler struct {
	store prompt.Store
}

// New creates the prompts handler.
func New(store prompt.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the prompts route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/prompts", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string][]prompt.Prompt{"prompts": h.store.List()})
}
