package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/liquidevz/rangaone/internal/models"
)

type memoryLog struct {
	entries []models.ActivityLog
	err     error
}

func (m *memoryLog) AddLog(ctx context.Context, log models.ActivityLog) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, log)
	return nil
}

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestMulti_FansOut(t *testing.T) {
	var a, b int
	m := Multi{
		Func(func(context.Context, Notification) { a++ }),
		nil,
		Func(func(context.Context, Notification) { b++ }),
	}

	m.Notify(context.Background(), Success("x", "t", "m"))

	if a != 1 || b != 1 {
		t.Errorf("expected both sinks called once, got %d %d", a, b)
	}
}

func TestActivityLog(t *testing.T) {
	store := &memoryLog{}
	sink := NewActivityLog(store, discard)

	sink.Notify(context.Background(), Error("tip_save_failed", "Failed to save tip", "backend returned 500"))

	if len(store.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(store.entries))
	}

	e := store.entries[0]
	if e.Level != "ERROR" || e.Action != "tip_save_failed" {
		t.Errorf("unexpected entry %+v", e)
	}
	if !strings.Contains(e.Message, "backend returned 500") {
		t.Errorf("expected message to be stored, got %q", e.Message)
	}
}

func TestActivityLog_StorageErrorSwallowed(t *testing.T) {
	sink := NewActivityLog(&memoryLog{err: errors.New("disk full")}, discard)

	// Не должно паниковать и ничего не возвращает
	sink.Notify(context.Background(), Success("a", "b", "c"))
}

func TestTelegram_FiltersByLevel(t *testing.T) {
	bot := &fakeSender{}
	tg := &Telegram{bot: bot, chatID: 42, minLevel: LevelSuccess, logger: discard}

	tg.Notify(context.Background(), Notification{Level: LevelInfo, Title: "noise"})
	tg.Notify(context.Background(), Error("x", "Save <failed>", "oops"))

	if len(bot.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(bot.sent))
	}

	msg := bot.sent[0]
	if msg.ChatID != 42 {
		t.Errorf("expected chat 42, got %d", msg.ChatID)
	}
	if !strings.Contains(msg.Text, "Save &lt;failed&gt;") {
		t.Errorf("expected escaped title, got %q", msg.Text)
	}
}
