package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/liquidevz/rangaone/internal/api/middleware"
)

// SetupRouter настраивает роутинг для API
func (h *Handler) SetupRouter(webDir string) *mux.Router {
	r := mux.NewRouter()

	// Применяем CORS middleware ко всем маршрутам
	r.Use(middleware.CORS)

	// Публичные маршруты (не требуют аутентификации)
	r.HandleFunc("/api/auth/login", h.HandleLogin).Methods("POST", "OPTIONS")
	r.HandleFunc("/health", h.HandleHealth).Methods("GET")

	// Защищенные маршруты (требуют аутентификации)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(h.authService))

	api.HandleFunc("/auth/me", h.HandleMe).Methods("GET")

	// Stocks
	api.HandleFunc("/stocks", h.HandleListStocks).Methods("GET")
	api.HandleFunc("/stocks", h.HandleCreateStock).Methods("POST")
	api.HandleFunc("/stocks/search", h.HandleSearchStocks).Methods("GET")
	api.HandleFunc("/stocks/quotes", h.HandleQuotes).Methods("GET")
	api.HandleFunc("/stocks/refresh", h.HandleRefreshPrices).Methods("POST")
	api.HandleFunc("/stocks/{id}", h.HandleGetStock).Methods("GET")
	api.HandleFunc("/stocks/{id}", h.HandleUpdateStock).Methods("PUT")
	api.HandleFunc("/stocks/{id}", h.HandleDeleteStock).Methods("DELETE")

	// Tips
	api.HandleFunc("/tips", h.HandleListTips).Methods("GET")
	api.HandleFunc("/tips", h.HandleCreateTip).Methods("POST")
	api.HandleFunc("/tips/calculate", h.HandleCalculate).Methods("POST")
	api.HandleFunc("/tips/{id}", h.HandleUpdateTip).Methods("PUT")
	api.HandleFunc("/tips/{id}", h.HandleDeleteTip).Methods("DELETE")

	// Subscriptions & payments
	api.HandleFunc("/subscriptions", h.HandleListSubscriptions).Methods("GET")
	api.HandleFunc("/subscriptions/{id}/status", h.HandleSubscriptionStatus).Methods("PATCH")
	api.HandleFunc("/subscriptions/{id}/cancel", h.HandleCancelSubscription).Methods("POST")
	api.HandleFunc("/payments", h.HandleListPayments).Methods("GET")

	// Activity Logs
	api.HandleFunc("/logs", h.HandleGetLogs).Methods("GET")

	// Экран дашборда (токен в ?token=)
	api.HandleFunc("/ws", h.HandleWebSocket).Methods("GET")

	// Статические файлы (должны быть в конце)
	if webDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(webDir)))
	}

	return r
}

// HandleHealth возвращает статус здоровья сервиса
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondSuccess(w, "OK", map[string]string{
		"status": "healthy",
	})
}
