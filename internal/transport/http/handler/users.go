package handler

import (
	"context"
	"net/http"

	"github.com/storepulse/api/internal/domain"
	"github.com/storepulse/api/internal/transport/http/middleware"
)

// UserGetter is the slice of the user store this handler needs.
type UserGetter interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// UserHandler serves the authenticated user's own profile.
type UserHandler struct {
	users UserGetter
}

func NewUserHandler(users UserGetter) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.users.Get(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Success: true, User: toUserSummary(u)})
}
