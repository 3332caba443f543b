package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/liquidevz/rangaone/internal/notify"
	"github.com/liquidevz/rangaone/internal/tips"
)

// HandleListTips возвращает страницу типов; у типов без вложенной акции она подгружается
func (h *Handler) HandleListTips(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePage(r)

	result, err := h.backend.ListTips(r.Context(), page, limit)
	if err != nil {
		h.respondBackendError(w, err, "Failed to get tips")
		return
	}

	var missing []string
	for _, tip := range result.Items {
		if tip.Stock == nil && tip.StockID != "" {
			missing = append(missing, tip.StockID)
		}
	}

	if len(missing) > 0 {
		found, err := h.stocks.GetMany(r.Context(), missing)
		if err != nil {
			// Список полезен и без названий акций
			h.logger.Warn("Failed to load tip stocks", slog.Any("error", err))
		}

		for i := range result.Items {
			tip := &result.Items[i]
			if stock, ok := found[tip.StockID]; ok && tip.Stock == nil {
				ref := stock.Ref()
				tip.Stock = &ref
			}
		}
	}

	h.respondSuccess(w, "", result)
}

// HandleCreateTip создает тип из формы
func (h *Handler) HandleCreateTip(w http.ResponseWriter, r *http.Request) {
	var form tips.TipForm
	if !h.decode(w, r, &form) {
		return
	}

	form.ID = ""
	h.saveTip(w, r, form, http.StatusCreated, "Tip created")
}

// HandleUpdateTip обновляет тип
func (h *Handler) HandleUpdateTip(w http.ResponseWriter, r *http.Request) {
	var form tips.TipForm
	if !h.decode(w, r, &form) {
		return
	}

	form.ID = mux.Vars(r)["id"]
	h.saveTip(w, r, form, http.StatusOK, "Tip updated")
}

func (h *Handler) saveTip(w http.ResponseWriter, r *http.Request, form tips.TipForm, status int, message string) {
	pipeline := tips.NewPipeline(h.backend, h.userNotifier(r), h.logger)

	saved, err := pipeline.Save(r.Context(), form)
	if err != nil {
		var verrs tips.ValidationErrors

		switch {
		case errors.As(err, &verrs):
			h.respondValidation(w, verrs)
		case errors.Is(err, tips.ErrStockRequired):
			h.respondValidation(w, map[string]string{"stockId": tips.UserMessage(err)})
		default:
			h.respondBackendError(w, err, "Failed to save tip")
		}

		return
	}

	h.respondJSON(w, status, SuccessResponse{Message: message, Data: saved})
}

// HandleDeleteTip удаляет тип
func (h *Handler) HandleDeleteTip(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.backend.DeleteTip(r.Context(), id); err != nil {
		h.notify(r, notify.Error("tip_delete_failed", "Failed to delete tip", err.Error()))
		h.respondBackendError(w, err, "Failed to delete tip")

		return
	}

	h.notify(r, notify.Success("tip_deleted", "Tip deleted", "Tip "+id+" has been deleted"))
	h.respondSuccess(w, "Tip deleted", nil)
}

type CalculateRequest struct {
	Price     string `json:"price"`
	StockID   string `json:"stockId,omitempty"`
	Reference string `json:"reference,omitempty"`
}

type CalculateResponse struct {
	Percentage string `json:"percentage"`
	Reference  string `json:"reference"`
}

// HandleCalculate считает процент от опорной цены: явной или текущей цены акции
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if !h.decode(w, r, &req) {
		return
	}

	reference := req.Reference
	if reference == "" {
		if req.StockID == "" {
			h.respondValidation(w, map[string]string{"stockId": "Please select a stock"})
			return
		}

		stock, err := h.stocks.Get(r.Context(), req.StockID)
		if err != nil {
			h.respondBackendError(w, err, "Failed to get stock")
			return
		}

		reference = stock.CurrentPrice
	}

	pct, ok := tips.Percentage(req.Price, reference)
	if !ok {
		h.respondValidation(w, map[string]string{"price": "Price and a positive reference price are required"})
		return
	}

	h.respondSuccess(w, "", CalculateResponse{Percentage: pct, Reference: reference})
}

