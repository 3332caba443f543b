package api

import (
	"log/slog"
	"net/http"

	"github.com/liquidevz/rangaone/internal/api/middleware"
	"github.com/liquidevz/rangaone/internal/models"
	"github.com/liquidevz/rangaone/internal/storage"
)

// HandleGetLogs возвращает лог активности (page/limit, ?level=)
func (h *Handler) HandleGetLogs(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	page, limit := parsePage(r)

	logs, total, err := h.storage.GetLogs(r.Context(), storage.LogFilter{
		UserID: &userID,
		Level:  r.URL.Query().Get("level"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		h.logger.Error("Failed to get logs", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "Failed to get logs")

		return
	}

	h.respondSuccess(w, "", models.Page[models.ActivityLog]{
		Items: logs,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
