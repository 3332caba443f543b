package tips

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/liquidevz/rangaone/internal/models"
	"github.com/liquidevz/rangaone/internal/notify"
)

// Store - операции backend'а, через которые сохраняется тип
type Store interface {
	CreateTip(ctx context.Context, tip models.Tip) (models.Tip, error)
	UpdateTip(ctx context.Context, id string, tip models.Tip) (models.Tip, error)
}

// Pipeline - проверка, преобразование и отправка формы типа
type Pipeline struct {
	store    Store
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewPipeline создает pipeline отправки
func NewPipeline(store Store, notifier notify.Notifier, logger *slog.Logger) *Pipeline {
	return &Pipeline{store: store, notifier: notifier, logger: logger}
}

// Save проверяет форму и отправляет её: update при непустом ID, иначе create.
// Уведомляет об успехе или ошибке; ошибка возвращается вызывающему.
func (p *Pipeline) Save(ctx context.Context, form TipForm) (models.Tip, error) {
	saved, err := p.save(ctx, form)
	if err != nil {
		p.notifier.Notify(ctx, notify.Error("tip_save_failed", "Failed to save tip", UserMessage(err)))
		return models.Tip{}, err
	}

	if form.ID != "" {
		p.notifier.Notify(ctx, notify.Success("tip_updated", "Tip updated",
			fmt.Sprintf("%q has been updated", form.Title)))
	} else {
		p.notifier.Notify(ctx, notify.Success("tip_created", "Tip created",
			fmt.Sprintf("%q has been created", form.Title)))
	}

	return saved, nil
}

// Submit отправляет форму диалога. При успехе диалог сбрасывается,
// при ошибке введённые значения остаются нетронутыми.
func (p *Pipeline) Submit(ctx context.Context, e *Editor) (models.Tip, error) {
	saved, err := p.Save(ctx, e.Form)
	if err != nil {
		return models.Tip{}, err
	}

	e.Reset()

	return saved, nil
}

func (p *Pipeline) save(ctx context.Context, form TipForm) (models.Tip, error) {
	if err := Validate(form); err != nil {
		return models.Tip{}, err
	}

	payload, err := ToPayload(form)
	if err != nil {
		return models.Tip{}, err
	}

	if form.ID != "" {
		updated, err := p.store.UpdateTip(ctx, form.ID, payload)
		if err != nil {
			return models.Tip{}, fmt.Errorf("failed to update tip: %w", err)
		}

		p.logger.Info("Tip updated", slog.String("id", form.ID), slog.String("title", payload.Title))

		return updated, nil
	}

	created, err := p.store.CreateTip(ctx, payload)
	if err != nil {
		return models.Tip{}, fmt.Errorf("failed to create tip: %w", err)
	}

	p.logger.Info("Tip created", slog.String("id", created.ID), slog.String("title", payload.Title))

	return created, nil
}
