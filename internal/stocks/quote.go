package stocks

import (
	"github.com/shopspring/decimal"

	"github.com/liquidevz/rangaone/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Quote - тикер с производными полями изменения цены.
// Change и ChangePercent вычисляются при отображении и никуда не сохраняются.
type Quote struct {
	models.StockSymbol
	Change        string `json:"change"`
	ChangePercent string `json:"changePercent"`
}

// NewQuote вычисляет изменение цены относительно предыдущей.
// Если цены не разбираются, поля остаются пустыми; процент - только при previous > 0.
func NewQuote(s models.StockSymbol) Quote {
	q := Quote{StockSymbol: s}

	current, err := decimal.NewFromString(s.CurrentPrice)
	if err != nil {
		return q
	}

	previous, err := decimal.NewFromString(s.PreviousPrice)
	if err != nil {
		return q
	}

	delta := current.Sub(previous)
	q.Change = delta.StringFixed(2)

	if previous.IsPositive() {
		q.ChangePercent = delta.Div(previous).Mul(hundred).StringFixed(2)
	}

	return q
}

// NewQuotes конвертирует список тикеров
func NewQuotes(rows []models.StockSymbol) []Quote {
	out := make([]Quote, 0, len(rows))
	for _, s := range rows {
		out = append(out, NewQuote(s))
	}

	return out
}
