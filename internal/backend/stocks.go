package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/liquidevz/rangaone/internal/models"
)

const stockSymbolsPath = "/api/stock-symbols"

// RefreshResult - итог массового обновления цен
type RefreshResult struct {
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// ListStocks возвращает страницу справочника тикеров
func (c *Client) ListStocks(ctx context.Context, page, limit int) (models.Page[models.StockSymbol], error) {
	var out models.Page[models.StockSymbol]
	err := c.do(ctx, http.MethodGet, stockSymbolsPath, pageQuery(page, limit), nil, &out)

	return out, err
}

// GetStock возвращает тикер по идентификатору
func (c *Client) GetStock(ctx context.Context, id string) (models.StockSymbol, error) {
	var out models.StockSymbol
	err := c.do(ctx, http.MethodGet, stockSymbolsPath+"/"+url.PathEscape(id), nil, nil, &out)

	return out, err
}

// SearchStocks ищет тикеры по символу или названию
func (c *Client) SearchStocks(ctx context.Context, term string) ([]models.StockSymbol, error) {
	var out []models.StockSymbol
	err := c.do(ctx, http.MethodGet, stockSymbolsPath+"/search", url.Values{"keyword": {term}}, nil, &out)

	return out, err
}

// CreateStock создает тикер
func (c *Client) CreateStock(ctx context.Context, in models.StockInput) (models.StockSymbol, error) {
	var out models.StockSymbol
	err := c.do(ctx, http.MethodPost, stockSymbolsPath, nil, in, &out)

	return out, err
}

// UpdateStock обновляет тикер
func (c *Client) UpdateStock(ctx context.Context, id string, in models.StockInput) (models.StockSymbol, error) {
	var out models.StockSymbol
	err := c.do(ctx, http.MethodPut, stockSymbolsPath+"/"+url.PathEscape(id), nil, in, &out)

	return out, err
}

// DeleteStock удаляет тикер
func (c *Client) DeleteStock(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, stockSymbolsPath+"/"+url.PathEscape(id), nil, nil, nil)
}

// RefreshPrices запускает массовое обновление цен на стороне backend'а
func (c *Client) RefreshPrices(ctx context.Context) (RefreshResult, error) {
	var out RefreshResult
	err := c.do(ctx, http.MethodPost, stockSymbolsPath+"/update-prices", nil, nil, &out)

	return out, err
}
