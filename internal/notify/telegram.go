package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender - часть BotAPI, нужная для отправки
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram дублирует уведомления в чат администраторов
type Telegram struct {
	bot      sender
	chatID   int64
	minLevel Level
	logger   *slog.Logger
}

// NewTelegram авторизует бота и создает приёмник
func NewTelegram(token string, chatID int64, logger *slog.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}

	logger.Info("✅ Telegram notifications enabled", slog.String("bot", bot.Self.UserName))

	return &Telegram{bot: bot, chatID: chatID, minLevel: LevelSuccess, logger: logger}, nil
}

// levelRank - порядок уровней для фильтрации
var levelRank = map[Level]int{
	LevelInfo:    0,
	LevelSuccess: 1,
	LevelWarning: 2,
	LevelError:   3,
}

func (t *Telegram) Notify(ctx context.Context, n Notification) {
	if levelRank[n.Level] < levelRank[t.minLevel] {
		return
	}

	msg := tgbotapi.NewMessage(t.chatID, formatHTML(n))
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error("Failed to send telegram notification",
			slog.String("action", n.Action),
			slog.Any("error", err))
	}
}

func formatHTML(n Notification) string {
	icon := "ℹ️"
	switch n.Level {
	case LevelSuccess:
		icon = "✅"
	case LevelWarning:
		icon = "⚠️"
	case LevelError:
		icon = "❌"
	}

	return fmt.Sprintf("%s <b>%s</b>\n%s", icon, html.EscapeString(n.Title), html.EscapeString(n.Message))
}
