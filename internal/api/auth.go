package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/liquidevz/rangaone/internal/api/auth"
	"github.com/liquidevz/rangaone/internal/api/middleware"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	UserID   int    `json:"user_id"`
}

// HandleLogin обрабатывает вход администратора
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.Username == "" || req.Password == "" {
		h.respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	token, user, err := h.authService.Login(r.Context(), h.storage, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		h.logger.Error("Failed to login", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "Internal server error")

		return
	}

	h.respondSuccess(w, "Login successful", LoginResponse{
		Token:    token,
		Username: user.Username,
		UserID:   user.ID,
	})
}

// HandleMe - проверка "залогинен ли": 401 отдаёт middleware
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	username, _ := middleware.GetUsername(r.Context())

	h.respondSuccess(w, "", map[string]any{
		"authenticated": true,
		"user_id":       userID,
		"username":      username,
	})
}
