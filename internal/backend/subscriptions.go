package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/liquidevz/rangaone/internal/models"
)

const (
	subscriptionsPath = "/api/admin/subscriptions"
	paymentsPath      = "/api/admin/payment-history"
)

// ListSubscriptions возвращает страницу подписок
func (c *Client) ListSubscriptions(ctx context.Context, page, limit int) (models.Page[models.Subscription], error) {
	var out models.Page[models.Subscription]
	err := c.do(ctx, http.MethodGet, subscriptionsPath, pageQuery(page, limit), nil, &out)

	return out, err
}

// UpdateSubscriptionStatus включает или выключает подписку
func (c *Client) UpdateSubscriptionStatus(ctx context.Context, id string, active bool) (models.Subscription, error) {
	var out models.Subscription
	body := map[string]bool{"isActive": active}
	err := c.do(ctx, http.MethodPatch, subscriptionsPath+"/"+url.PathEscape(id), nil, body, &out)

	return out, err
}

// CancelSubscription отменяет подписку
func (c *Client) CancelSubscription(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, subscriptionsPath+"/"+url.PathEscape(id)+"/cancel", nil, nil, nil)
}

// ListPayments возвращает страницу истории платежей
func (c *Client) ListPayments(ctx context.Context, page, limit int) (models.Page[models.PaymentHistory], error) {
	var out models.Page[models.PaymentHistory]
	err := c.do(ctx, http.MethodGet, paymentsPath, pageQuery(page, limit), nil, &out)

	return out, err
}
