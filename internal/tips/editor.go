package tips

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/liquidevz/rangaone/internal/models"
)

var (
	ErrUnknownField   = errors.New("unknown field")
	ErrAutoCalculated = errors.New("field is auto-calculated")
)

// AutoField - пара "цена -> процент", которую можно пересчитывать автоматически
type AutoField string

const (
	AutoTarget AutoField = "target"
	AutoExit   AutoField = "exit"
)

// Editor - состояние диалога типа: выбранная акция, поиск, форма и флаги автопересчёта.
// Не потокобезопасен: владелец вызывает методы из одной горутины.
type Editor struct {
	Selected   *models.StockSymbol  `json:"selected,omitempty"`
	SearchText string               `json:"searchText"`
	Results    []models.StockSymbol `json:"results"`
	Form       TipForm              `json:"form"`
	Auto       map[AutoField]bool   `json:"auto"`
}

// NewEditor создает пустой диалог с включённым автопересчётом
func NewEditor() *Editor {
	e := &Editor{}
	e.Reset()

	return e
}

// Reset сбрасывает всё локальное состояние диалога
func (e *Editor) Reset() {
	e.Selected = nil
	e.SearchText = ""
	e.Results = nil
	e.Form = TipForm{}
	e.Auto = map[AutoField]bool{AutoTarget: true, AutoExit: true}
}

// Open загружает существующий тип для редактирования
func (e *Editor) Open(tip models.Tip, stock *models.StockSymbol) {
	e.Reset()
	e.Form = FromTip(tip)
	e.Selected = stock
}

// SetSearch запоминает строку поиска и последние результаты
func (e *Editor) SetSearch(text string, results []models.StockSymbol) {
	e.SearchText = text
	e.Results = results
}

// SelectStock выбирает акцию и пересчитывает проценты от её текущей цены
func (e *Editor) SelectStock(stock models.StockSymbol) {
	e.Selected = &stock
	e.Form.StockID = stock.ID
	e.Results = nil
	e.SearchText = stock.Symbol

	e.recalc(AutoTarget)
	e.recalc(AutoExit)
}

// SetAutoCalc переключает автопересчёт. Выключение "замораживает" поле для ручного ввода.
func (e *Editor) SetAutoCalc(field AutoField, on bool) error {
	if field != AutoTarget && field != AutoExit {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	e.Auto[field] = on
	if on {
		e.recalc(field)
	}

	return nil
}

// SetField записывает значение поля формы по его JSON-имени
func (e *Editor) SetField(name, value string) error {
	f := &e.Form

	switch name {
	case "title":
		f.Title = value
	case "category":
		f.Category = value
	case "content":
		f.Content = value
	case "description":
		f.Description = value
	case "status":
		f.Status = value
	case "action":
		f.Action = value
	case "buyRange":
		f.BuyRange = strings.TrimSpace(value)
	case "targetPrice":
		f.TargetPrice = strings.TrimSpace(value)
		e.recalc(AutoTarget)
	case "targetPercentage":
		if e.Auto[AutoTarget] {
			return fmt.Errorf("%w: %s", ErrAutoCalculated, name)
		}
		f.TargetPercentage = value
	case "addMoreAt":
		f.AddMoreAt = strings.TrimSpace(value)
	case "exitPrice":
		f.ExitPrice = strings.TrimSpace(value)
		e.recalc(AutoExit)
	case "exitStatus":
		f.ExitStatus = value
	case "exitStatusPercentage":
		if e.Auto[AutoExit] {
			return fmt.Errorf("%w: %s", ErrAutoCalculated, name)
		}
		f.ExitStatusPercentage = value
	case "horizon":
		f.Horizon = value
	case "tipUrl":
		f.TipURL = strings.TrimSpace(value)
	case "analystConfidence":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("confidence must be an integer: %w", err)
		}
		f.Confidence = n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	return nil
}

// recalc пересчитывает процент, если флаг включён и есть опорная цена
func (e *Editor) recalc(field AutoField) {
	if !e.Auto[field] || e.Selected == nil {
		return
	}

	ref := e.Selected.CurrentPrice

	switch field {
	case AutoTarget:
		if pct, ok := Percentage(e.Form.TargetPrice, ref); ok {
			e.Form.TargetPercentage = pct
		}
	case AutoExit:
		if pct, ok := Percentage(e.Form.ExitPrice, ref); ok {
			e.Form.ExitStatusPercentage = pct
		}
	}
}
