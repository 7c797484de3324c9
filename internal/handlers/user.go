package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/melo-app/accounts/internal/services"
	"github.com/melo-app/accounts/internal/storage"
)

const maxAvatarBytes = 5 << 20

// UserHandler provides endpoints for the authenticated account.
type UserHandler struct {
	userService *services.UserService
	avatars     *storage.AvatarStore
}

// NewUserHandler constructs a UserHandler. avatars may be nil when no
// object store is configured.
func NewUserHandler(userService *services.UserService, avatars *storage.AvatarStore) *UserHandler {
	return &UserHandler{userService: userService, avatars: avatars}
}

// UserRouter registers user routes on the given router. All routes
// require authentication.
func UserRouter(r chi.Router, userService *services.UserService, avatars *storage.AvatarStore) {
	handler := NewUserHandler(userService, avatars)

	r.Use(RequireAuth(userService))
	r.Patch("/me", handler.PatchMe)
	if avatars != nil {
		r.Put("/me/avatar", handler.UploadAvatar)
		r.Get("/me/avatar", handler.GetAvatar)
		r.Delete("/me/avatar", handler.DeleteAvatar)
	}
}

// PatchMe applies a partial update to the authenticated account. The
// payload shape selects the update variant (email, password change, or
// generic fields).
func (h *UserHandler) PatchMe(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.userService.Patch(r.Context(), user, payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// UploadAvatar stores the request body as the account's avatar image.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	contentType := r.Header.Get("Content-Type")
	body := http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	defer body.Close()

	if err := h.avatars.Put(r.Context(), user.ID, body, r.ContentLength, contentType); err != nil {
		if errors.Is(err, storage.ErrUnsupportedContentType) {
			writeError(w, http.StatusUnsupportedMediaType, "avatar must be an image")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to store avatar")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetAvatar streams the account's avatar image.
func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	reader, err := h.avatars.Get(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusNotFound, "avatar not found")
		return
	}
	defer reader.Close()

	if _, err := io.Copy(w, reader); err != nil {
		// Body may be partially written; nothing sensible left to send.
		return
	}
}

// DeleteAvatar removes the account's avatar image.
func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.avatars.Delete(r.Context(), user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete avatar")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
