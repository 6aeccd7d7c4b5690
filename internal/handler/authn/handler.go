// Package authn exposes the login/signup/OAuth surface over the external
// identity provider, plus the profile endpoints behind the settings dialog.
package authn

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/studentbot/backend/internal/auth"
	"github.com/studentbot/backend/internal/middleware"
	"github.com/studentbot/backend/internal/model/user"
	"github.com/studentbot/backend/pkg/utils"
)

// Handler wires the identity provider client and the profile store.
type Handler struct {
	authClient *auth.Client
	profiles   user.Store
}

// New creates the auth handler.
func New(authClient *auth.Client, profiles user.Store) *Handler {
	return &Handler{authClient: authClient, profiles: profiles}
}

// RegisterRoutes mounts the public auth routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/signup", h.handleSignup)
	r.Get("/auth/google", h.handleGoogleURL)
	r.Post("/auth/logout", h.handleLogout)
}

// RegisterProtectedRoutes mounts the routes that need a session.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/profile", h.handleGetProfile)
	r.Put("/profile", h.handleUpdateProfile)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Email == "" || payload.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	session, err := h.authClient.SignInWithPassword(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			utils.RespondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		utils.RespondError(w, http.StatusBadGateway, "identity provider unavailable")
		return
	}

	// Ensure a profile exists for returning OAuth users as well.
	if _, ok := h.profiles.FindByID(session.User.ID); !ok {
		h.profiles.Upsert(session.User.Profile())
	}

	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Email == "" || payload.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	fullName := strings.TrimSpace(payload.FirstName + " " + payload.LastName)
	session, err := h.authClient.SignUp(r.Context(), payload.Email, payload.Password, fullName)
	if err != nil {
		if errors.Is(err, auth.ErrSignupRejected) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusBadGateway, "identity provider unavailable")
		return
	}

	if session.User.ID != "" {
		h.profiles.Upsert(user.Profile{
			ID:    session.User.ID,
			Name:  fullName,
			Email: payload.Email,
		})
	}

	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleGoogleURL(w http.ResponseWriter, r *http.Request) {
	redirectTo := r.URL.Query().Get("redirect_to")
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"url": h.authClient.GoogleAuthURL(redirectTo),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		utils.RespondError(w, http.StatusBadRequest, "access token is required")
		return
	}

	if err := h.authClient.SignOut(r.Context(), token); err != nil {
		utils.RespondError(w, http.StatusBadGateway, "sign out failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"redirect": middleware.LoginPath})
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	profile, found := h.profiles.FindByID(identity.UserID)
	if !found {
		profile = user.Profile{ID: identity.UserID, Email: identity.Email, Name: identity.Email}
		h.profiles.Upsert(profile)
	}
	utils.RespondJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, _ := h.profiles.FindByID(identity.UserID)
	profile.ID = identity.UserID
	if payload.Name != "" {
		profile.Name = payload.Name
	}
	if payload.Email != "" {
		profile.Email = payload.Email
	}
	h.profiles.Upsert(profile)

	utils.RespondJSON(w, http.StatusOK, profile)
}
