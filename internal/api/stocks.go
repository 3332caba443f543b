package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/liquidevz/rangaone/internal/models"
	"github.com/liquidevz/rangaone/internal/notify"
	"github.com/liquidevz/rangaone/internal/search"
)

// HandleListStocks возвращает страницу справочника
func (h *Handler) HandleListStocks(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePage(r)

	result, err := h.stocks.List(r.Context(), page, limit)
	if err != nil {
		h.respondBackendError(w, err, "Failed to get stocks")
		return
	}

	h.respondSuccess(w, "", result)
}

// HandleQuotes возвращает страницу справочника с изменением цены
func (h *Handler) HandleQuotes(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePage(r)

	quotes, err := h.stocks.Quotes(r.Context(), page, limit)
	if err != nil {
		h.respondBackendError(w, err, "Failed to get quotes")
		return
	}

	h.respondSuccess(w, "", quotes)
}

// HandleSearchStocks ищет тикеры по ?q=; короткие строки дают пустой список
func (h *Handler) HandleSearchStocks(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if len([]rune(term)) < search.MinTermLength {
		h.respondSuccess(w, "", []models.StockSymbol{})
		return
	}

	results, err := h.stocks.Search(r.Context(), term)
	if err != nil {
		h.respondBackendError(w, err, "Failed to search stocks")
		return
	}

	if results == nil {
		results = []models.StockSymbol{}
	}

	h.respondSuccess(w, "", results)
}

// HandleGetStock возвращает детали тикера (через кэш)
func (h *Handler) HandleGetStock(w http.ResponseWriter, r *http.Request) {
	stock, err := h.stocks.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondBackendError(w, err, "Failed to get stock")
		return
	}

	h.respondSuccess(w, "", stock)
}

func validStockInput(in models.StockInput) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(in.Symbol) == "" {
		fields["symbol"] = "Symbol is required"
	}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "Name is required"
	}
	if strings.TrimSpace(in.Exchange) == "" {
		fields["exchange"] = "Exchange is required"
	}

	return fields
}

// HandleCreateStock добавляет тикер
func (h *Handler) HandleCreateStock(w http.ResponseWriter, r *http.Request) {
	var in models.StockInput
	if !h.decode(w, r, &in) {
		return
	}

	if fields := validStockInput(in); len(fields) > 0 {
		h.respondValidation(w, fields)
		return
	}

	stock, err := h.stocks.Create(r.Context(), in)
	if err != nil {
		h.respondBackendError(w, err, "Failed to create stock")
		return
	}

	h.notify(r, notify.Success("stock_created", "Stock created", fmt.Sprintf("%s has been added", stock.Symbol)))
	h.respondCreated(w, "Stock created", stock)
}

// HandleUpdateStock обновляет тикер
func (h *Handler) HandleUpdateStock(w http.ResponseWriter, r *http.Request) {
	var in models.StockInput
	if !h.decode(w, r, &in) {
		return
	}

	if fields := validStockInput(in); len(fields) > 0 {
		h.respondValidation(w, fields)
		return
	}

	stock, err := h.stocks.Update(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		h.respondBackendError(w, err, "Failed to update stock")
		return
	}

	h.notify(r, notify.Success("stock_updated", "Stock updated", fmt.Sprintf("%s has been updated", stock.Symbol)))
	h.respondSuccess(w, "Stock updated", stock)
}

// HandleDeleteStock удаляет тикер
func (h *Handler) HandleDeleteStock(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.stocks.Delete(r.Context(), id); err != nil {
		h.respondBackendError(w, err, "Failed to delete stock")
		return
	}

	h.notify(r, notify.Success("stock_deleted", "Stock deleted", "Stock "+id+" has been deleted"))
	h.respondSuccess(w, "Stock deleted", nil)
}

// HandleRefreshPrices запускает обновление цен на backend'е
func (h *Handler) HandleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	result, err := h.stocks.RefreshPrices(r.Context())
	if err != nil {
		h.notify(r, notify.Error("prices_refresh_failed", "Price refresh failed", err.Error()))
		h.respondBackendError(w, err, "Failed to refresh prices")

		return
	}

	h.notify(r, notify.Success("prices_refreshed", "Prices refreshed",
		fmt.Sprintf("%d updated, %d failed", result.Updated, result.Failed)))
	h.respondSuccess(w, "Prices refreshed", result)
}
