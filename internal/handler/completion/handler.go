// Package completion serves POST /api/chat: the reply streams back as raw
// text with no framing, concatenated by the client until end of stream.
package completion

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studentbot/backend/internal/model/chat"
	"github.com/studentbot/backend/internal/service/ai"
	"github.com/studentbot/backend/pkg/utils"
)

// Handler answers completion requests with the local Ark model, or proxies
// them to a remote completion service when no model is configured.
type Handler struct {
	aiSvc       *ai.Service
	upstreamURL string
	httpClient  *http.Client
}

// New creates the completion handler. aiSvc may be nil when proxying.
func New(aiSvc *ai.Service, upstreamURL string) *Handler {
	return &Handler{
		aiSvc:       aiSvc,
		upstreamURL: upstreamURL,
		httpClient:  &http.Client{},
	}
}

// RegisterRoutes mounts the completion route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if h.aiSvc == nil && h.upstreamURL == "" {
		utils.RespondError(w, http.StatusServiceUnavailable, "completion unavailable")
		return
	}

	if h.aiSvc == nil {
		h.proxyChat(w, r)
		return
	}

	var payload struct {
		Messages []chat.TranscriptEntry `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(payload.Messages) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "messages are required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	_, err := h.aiSvc.Complete(r.Context(), payload.Messages, func(delta string) {
		if _, writeErr := io.WriteString(w, delta); writeErr != nil {
			log.Printf("[completion] failed to write chunk: %v", writeErr)
			return
		}
		flusher.Flush()
	})
	if err != nil {
		// Headers are already out; the truncated stream is all we can signal.
		log.Printf("[completion] generation failed: %v", err)
	}
}

// proxyChat forwards the request body to the upstream completion endpoint and
// streams the reply through unchanged.
func (h *Handler) proxyChat(w http.ResponseWriter, r *http.Request) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, h.upstreamURL+"/api/chat", r.Body)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "completion proxy failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, "completion upstream unreachable")
		return
	}
	defer resp.Body.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(resp.StatusCode)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr != nil {
			return
		}
	}
}
