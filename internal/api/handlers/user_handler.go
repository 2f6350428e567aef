package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/user-directory/internal/services"
	"github.com/isdelr/user-directory/internal/views"
	"github.com/rs/zerolog/log"
)

// Renderer renders an HTML page.
type Renderer interface {
	Render(w http.ResponseWriter, name string, data any) error
}

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service services.UserServiceProvider
	views   Renderer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, renderer Renderer) *UserHandler {
	return &UserHandler{service: service, views: renderer}
}

// UserPayload is the body accepted by create and update requests.
type UserPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// GetAll renders the list of every user.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch users")
		http.Error(w, "Failed to fetch users.", http.StatusInternalServerError)
		return
	}

	if err := h.views.Render(w, views.PageUsers, map[string]any{"Users": users}); err != nil {
		log.Error().Err(err).Msg("Failed to render users page")
		http.Error(w, "Failed to fetch users.", http.StatusInternalServerError)
	}
}

// Create handles new user creation.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(r)
	if err != nil {
		badBody(w, err)
		return
	}

	log.Info().Str("username", payload.Username).Msg("Received create user request")

	user, err := h.service.CreateUser(r.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			log.Warn().Err(err).Str("username", payload.Username).Msg("Rejected create user request")
			http.Error(w, "Username and password are required", http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("username", payload.Username).Msg("Failed to create user")
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	log.Info().Str("username", user.Username).Str("user_id", user.ID).Msg("New user created")
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    user.Summary(),
	})
}

// Get renders a single user, or a "not found" page if there is none.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := usernameParam(r)

	user, err := h.service.GetUser(r.Context(), username)
	if errors.Is(err, services.ErrUserNotFound) {
		h.render(w, views.PageUserNotFound, map[string]any{"Username": username}, "Failed to fetch user")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to fetch user")
		http.Error(w, "Failed to fetch user", http.StatusInternalServerError)
		return
	}

	log.Debug().Str("username", user.Username).Msg("Found user")
	h.render(w, views.PageUserDetail, map[string]any{"User": user}, "Failed to fetch user")
}

// Update handles renaming a user and/or replacing their password.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	currentUsername := usernameParam(r)
	payload, err := decodePayload(r)
	if err != nil {
		badBody(w, err)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), currentUsername, payload.Username, payload.Password)
	switch {
	case errors.Is(err, services.ErrUsernameExists):
		log.Warn().Str("username", currentUsername).Str("new_username", payload.Username).Msg("Username already exists")
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Username already exists"})
		return
	case errors.Is(err, services.ErrInvalidInput):
		log.Warn().Err(err).Str("username", currentUsername).Msg("Rejected update user request")
		http.Error(w, "At least one field (username or password) is required for update", http.StatusBadRequest)
		return
	case errors.Is(err, services.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": fmt.Sprintf("User %s not found", currentUsername)})
		return
	case err != nil:
		log.Error().Err(err).Str("username", currentUsername).Msg("Failed to update user")
		http.Error(w, "Failed to update user", http.StatusInternalServerError)
		return
	}

	log.Info().Str("username", currentUsername).Str("new_username", user.Username).Msg("Updated user")
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("User %s updated successfully", currentUsername),
		"user":    user.Summary(),
	})
}

// UpdatePassword handles replacing only a user's password.
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	username := usernameParam(r)
	payload, err := decodePayload(r)
	if err != nil {
		badBody(w, err)
		return
	}

	_, err = h.service.UpdatePassword(r.Context(), username, payload.Password)
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		log.Warn().Err(err).Str("username", username).Msg("Rejected password update request")
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Password is required for update"})
		return
	case errors.Is(err, services.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": fmt.Sprintf("User %s not found", username)})
		return
	case err != nil:
		log.Error().Err(err).Str("username", username).Msg("Failed to update password")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to update password"})
		return
	}

	log.Info().Str("username", username).Msg("Updated user password")
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Password updated successfully for user %s", username),
	})
}

// Delete handles removing a user.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := usernameParam(r)

	user, err := h.service.DeleteUser(r.Context(), username)
	if errors.Is(err, services.ErrUserNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to delete user")
		http.Error(w, "Failed to delete user", http.StatusInternalServerError)
		return
	}

	log.Info().Str("username", user.Username).Str("user_id", user.ID).Msg("Deleted user")
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("User %s deleted successfully", username),
	})
}

// usernameParam returns the decoded {username} path segment. chi matches on
// the raw path when the request has one, leaving escapes such as %2F intact.
func usernameParam(r *http.Request) string {
	username := chi.URLParam(r, "username")
	if r.URL.RawPath == "" {
		return username
	}
	if decoded, err := url.PathUnescape(username); err == nil {
		return decoded
	}
	return username
}

// badBody answers an unparseable request body like any unexpected failure.
func badBody(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("Failed to decode request body")
	http.Error(w, "Something went wrong. Please try again later.", http.StatusInternalServerError)
}

func (h *UserHandler) render(w http.ResponseWriter, page string, data any, failMsg string) {
	if err := h.views.Render(w, page, data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("Failed to render page")
		http.Error(w, failMsg, http.StatusInternalServerError)
	}
}

// decodePayload reads a JSON or URL-encoded form body. An empty body yields
// an empty payload so field validation can report what is missing.
func decodePayload(r *http.Request) (UserPayload, error) {
	var payload UserPayload

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return payload, err
		}
		payload.Username = r.PostForm.Get("username")
		payload.Password = r.PostForm.Get("password")
		return payload, nil
	}

	if r.Body == nil || r.Body == http.NoBody {
		return payload, nil
	}
	err := json.NewDecoder(r.Body).Decode(&payload)
	if errors.Is(err, io.EOF) {
		return payload, nil
	}
	return payload, err
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
