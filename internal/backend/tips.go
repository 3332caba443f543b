package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/liquidevz/rangaone/internal/models"
)

const tipsPath = "/api/tips"

// ListTips возвращает страницу типов
func (c *Client) ListTips(ctx context.Context, page, limit int) (models.Page[models.Tip], error) {
	var out models.Page[models.Tip]
	err := c.do(ctx, http.MethodGet, tipsPath, pageQuery(page, limit), nil, &out)

	return out, err
}

// CreateTip создает тип
func (c *Client) CreateTip(ctx context.Context, tip models.Tip) (models.Tip, error) {
	var out models.Tip
	err := c.do(ctx, http.MethodPost, tipsPath, nil, tip, &out)

	return out, err
}

// UpdateTip обновляет существующий тип
func (c *Client) UpdateTip(ctx context.Context, id string, tip models.Tip) (models.Tip, error) {
	var out models.Tip
	err := c.do(ctx, http.MethodPut, tipsPath+"/"+url.PathEscape(id), nil, tip, &out)

	return out, err
}

// DeleteTip удаляет тип
func (c *Client) DeleteTip(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, tipsPath+"/"+url.PathEscape(id), nil, nil, nil)
}
