package notify

import (
	"context"
	"log/slog"
)

// Level - уровень уведомления
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification - короткое уведомление ("toast") для администратора
type Notification struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"` // Машинный ключ: "tip_created", "search_failed", ...
	UserID  *int   `json:"-"`
}

// Notifier доставляет уведомления. Ошибки доставки не возвращаются вызывающему.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Func - адаптер функции к Notifier
type Func func(ctx context.Context, n Notification)

func (f Func) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Nop игнорирует уведомления
type Nop struct{}

func (Nop) Notify(context.Context, Notification) {}

// Multi рассылает уведомление во все приёмники
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, sink := range m {
		if sink != nil {
			sink.Notify(ctx, n)
		}
	}
}

// Success - уведомление об успешной операции
func Success(action, title, message string) Notification {
	return Notification{Level: LevelSuccess, Action: action, Title: title, Message: message}
}

// Error - уведомление об ошибке
func Error(action, title, message string) Notification {
	return Notification{Level: LevelError, Action: action, Title: title, Message: message}
}

// Logger пишет уведомления в slog
type Logger struct {
	L *slog.Logger
}

func (l Logger) Notify(ctx context.Context, n Notification) {
	level := slog.LevelInfo
	switch n.Level {
	case LevelWarning:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	}

	l.L.Log(ctx, level, "🔔 "+n.Title,
		slog.String("action", n.Action),
		slog.String("message", n.Message))
}
