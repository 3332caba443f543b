package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/liquidevz/rangaone/internal/notify"
)

// HandleListSubscriptions возвращает страницу подписок
func (h *Handler) HandleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePage(r)

	result, err := h.backend.ListSubscriptions(r.Context(), page, limit)
	if err != nil {
		h.respondBackendError(w, err, "Failed to get subscriptions")
		return
	}

	h.respondSuccess(w, "", result)
}

type SubscriptionStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

// HandleSubscriptionStatus включает/выключает подписку
func (h *Handler) HandleSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	var req SubscriptionStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.IsActive == nil {
		h.respondValidation(w, map[string]string{"isActive": "isActive is required"})
		return
	}

	id := mux.Vars(r)["id"]

	sub, err := h.backend.UpdateSubscriptionStatus(r.Context(), id, *req.IsActive)
	if err != nil {
		h.respondBackendError(w, err, "Failed to update subscription")
		return
	}

	state := "deactivated"
	if sub.IsActive {
		state = "activated"
	}

	h.notify(r, notify.Success("subscription_updated", "Subscription updated", "Subscription "+id+" "+state))
	h.respondSuccess(w, "Subscription updated", sub)
}

// HandleCancelSubscription отменяет подписку
func (h *Handler) HandleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.backend.CancelSubscription(r.Context(), id); err != nil {
		h.respondBackendError(w, err, "Failed to cancel subscription")
		return
	}

	h.notify(r, notify.Success("subscription_cancelled", "Subscription cancelled", "Subscription "+id+" cancelled"))
	h.respondSuccess(w, "Subscription cancelled", nil)
}

// HandleListPayments возвращает страницу истории платежей
func (h *Handler) HandleListPayments(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePage(r)

	result, err := h.backend.ListPayments(r.Context(), page, limit)
	if err != nil {
		h.respondBackendError(w, err, "Failed to get payments")
		return
	}

	h.respondSuccess(w, "", result)
}
