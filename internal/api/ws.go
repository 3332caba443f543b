package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/liquidevz/rangaone/internal/api/middleware"
	"github.com/liquidevz/rangaone/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Фронтенд может жить на другом origin, доступ закрыт токеном
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket поднимает сессию экрана на время соединения
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.logger.Warn("WebSocket upgrade failed", slog.Any("error", err))
		return
	}

	s, err := session.New(h.ctx, conn, userID, h.sessionCfg)
	if err != nil {
		h.logger.Error("Failed to create session", slog.Any("error", err))
		conn.Close()

		return
	}

	if err := s.Run(); err != nil {
		h.logger.Warn("Session ended with error", slog.String("session", s.ID()), slog.Any("error", err))
	}
}
