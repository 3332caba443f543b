package tips

import (
	"errors"
	"slices"
	"strings"

	"github.com/liquidevz/rangaone/internal/models"
)

var ErrStockRequired = errors.New("stock is required")

// TipForm - плоская форма диалога создания/редактирования типа
type TipForm struct {
	ID                   string `json:"id,omitempty"`
	Title                string `json:"title" validate:"required,min=3,max=200"`
	StockID              string `json:"stockId"`
	Category             string `json:"category" validate:"required,oneof=basic premium social_media"`
	Content              string `json:"content" validate:"required"`
	Description          string `json:"description" validate:"required,max=2000"`
	Status               string `json:"status" validate:"required,oneof=Active Closed"`
	Action               string `json:"action" validate:"required,tipaction"`
	BuyRange             string `json:"buyRange" validate:"required,buyrange"`
	TargetPrice          string `json:"targetPrice" validate:"omitempty,numeric"`
	TargetPercentage     string `json:"targetPercentage"`
	AddMoreAt            string `json:"addMoreAt" validate:"omitempty,numeric"`
	ExitPrice            string `json:"exitPrice" validate:"omitempty,numeric"`
	ExitStatus           string `json:"exitStatus" validate:"omitempty,oneof=Profit Loss"`
	ExitStatusPercentage string `json:"exitStatusPercentage"`
	Horizon              string `json:"horizon" validate:"required,horizon"`
	TipURL               string `json:"tipUrl" validate:"omitempty,url"`
	Confidence           int    `json:"analystConfidence" validate:"required,min=1,max=10"`
}

var tipActions = []models.TipAction{
	models.ActionBuy,
	models.ActionSell,
	models.ActionHold,
	models.ActionPartialProfitBooked,
	models.ActionPartialLossBooked,
	models.ActionExit,
	models.ActionAddMore,
}

var horizons = []string{"Short Term", "Medium Term", "Long Term"}

// needsTarget - действия, для которых обязательна целевая цена
func needsTarget(action string) bool {
	switch models.TipAction(action) {
	case models.ActionBuy, models.ActionSell, models.ActionAddMore:
		return true
	}
	return false
}

// needsExit - закрытый тип или действие выхода требуют цену и статус выхода
func needsExit(status, action string) bool {
	if models.TipStatus(status) == models.TipStatusClosed {
		return true
	}

	switch models.TipAction(action) {
	case models.ActionExit, models.ActionPartialProfitBooked, models.ActionPartialLossBooked:
		return true
	}
	return false
}

func isTipAction(s string) bool {
	return slices.Contains(tipActions, models.TipAction(s))
}

func isHorizon(s string) bool {
	return slices.Contains(horizons, s)
}

const (
	mainContentKey   = "main"
	reportLinkName   = "Analysis Report"
	contentSeparator = "\n\n"
)

// ToPayload преобразует плоскую форму во вложенную структуру backend'а
func ToPayload(f TipForm) (models.Tip, error) {
	if strings.TrimSpace(f.StockID) == "" {
		return models.Tip{}, ErrStockRequired
	}

	tip := models.Tip{
		ID:                   f.ID,
		Title:                strings.TrimSpace(f.Title),
		StockID:              f.StockID,
		Category:             models.TipCategory(f.Category),
		Content:              []models.ContentBlock{{Key: mainContentKey, Value: f.Content}},
		Description:          f.Description,
		Status:               models.TipStatus(f.Status),
		Action:               models.TipAction(f.Action),
		BuyRange:             f.BuyRange,
		TargetPrice:          f.TargetPrice,
		TargetPercentage:     f.TargetPercentage,
		AddMoreAt:            f.AddMoreAt,
		ExitPrice:            f.ExitPrice,
		ExitStatus:           f.ExitStatus,
		ExitStatusPercentage: f.ExitStatusPercentage,
		Horizon:              f.Horizon,
		AnalystConfidence:    f.Confidence,
	}

	if url := strings.TrimSpace(f.TipURL); url != "" {
		tip.DownloadLinks = []models.DownloadLink{{Name: reportLinkName, URL: url}}
	}

	return tip, nil
}

// FromTip заполняет форму из существующего типа (открытие на редактирование)
func FromTip(t models.Tip) TipForm {
	values := make([]string, 0, len(t.Content))
	for _, block := range t.Content {
		values = append(values, block.Value)
	}

	f := TipForm{
		ID:                   t.ID,
		Title:                t.Title,
		StockID:              t.StockID,
		Category:             string(t.Category),
		Content:              strings.Join(values, contentSeparator),
		Description:          t.Description,
		Status:               string(t.Status),
		Action:               string(t.Action),
		BuyRange:             t.BuyRange,
		TargetPrice:          t.TargetPrice,
		TargetPercentage:     t.TargetPercentage,
		AddMoreAt:            t.AddMoreAt,
		ExitPrice:            t.ExitPrice,
		ExitStatus:           t.ExitStatus,
		ExitStatusPercentage: t.ExitStatusPercentage,
		Horizon:              t.Horizon,
		Confidence:           t.AnalystConfidence,
	}

	if f.StockID == "" && t.Stock != nil {
		f.StockID = t.Stock.ID
	}

	if len(t.DownloadLinks) > 0 {
		f.TipURL = t.DownloadLinks[0].URL
	}

	return f
}
