package notify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/liquidevz/rangaone/internal/models"
)

// LogStorage - хранилище лога активности
type LogStorage interface {
	AddLog(ctx context.Context, log models.ActivityLog) error
}

// ActivityLog сохраняет уведомления в лог активности
type ActivityLog struct {
	storage LogStorage
	logger  *slog.Logger
}

// NewActivityLog создает приёмник, пишущий в лог активности
func NewActivityLog(storage LogStorage, logger *slog.Logger) *ActivityLog {
	return &ActivityLog{storage: storage, logger: logger}
}

func (a *ActivityLog) Notify(ctx context.Context, n Notification) {
	entry := models.ActivityLog{
		UserID:  n.UserID,
		Level:   activityLevel(n.Level),
		Action:  n.Action,
		Message: strings.TrimSpace(n.Title + ": " + n.Message),
	}

	// Контекст запроса мог уже завершиться, запись лога от него не зависит
	if err := a.storage.AddLog(context.WithoutCancel(ctx), entry); err != nil {
		a.logger.Error("Failed to write activity log", slog.Any("error", err))
	}
}

func activityLevel(l Level) string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARN"
	default:
		return "INFO"
	}
}
