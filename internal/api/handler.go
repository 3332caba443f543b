package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/liquidevz/rangaone/internal/api/auth"
	"github.com/liquidevz/rangaone/internal/api/middleware"
	"github.com/liquidevz/rangaone/internal/backend"
	"github.com/liquidevz/rangaone/internal/models"
	"github.com/liquidevz/rangaone/internal/notify"
	"github.com/liquidevz/rangaone/internal/session"
	"github.com/liquidevz/rangaone/internal/storage"
	"github.com/liquidevz/rangaone/internal/tips"
)

// Stocks - справочник тикеров
type Stocks interface {
	session.Stocks
	List(ctx context.Context, page, limit int) (models.Page[models.StockSymbol], error)
	GetMany(ctx context.Context, ids []string) (map[string]models.StockSymbol, error)
	Create(ctx context.Context, in models.StockInput) (models.StockSymbol, error)
	Update(ctx context.Context, id string, in models.StockInput) (models.StockSymbol, error)
	Delete(ctx context.Context, id string) error
	RefreshPrices(ctx context.Context) (backend.RefreshResult, error)
}

// Backend - операции удаленного API, которые хендлеры вызывают напрямую
type Backend interface {
	tips.Store
	ListTips(ctx context.Context, page, limit int) (models.Page[models.Tip], error)
	DeleteTip(ctx context.Context, id string) error
	ListSubscriptions(ctx context.Context, page, limit int) (models.Page[models.Subscription], error)
	UpdateSubscriptionStatus(ctx context.Context, id string, active bool) (models.Subscription, error)
	CancelSubscription(ctx context.Context, id string) error
	ListPayments(ctx context.Context, page, limit int) (models.Page[models.PaymentHistory], error)
}

// Storage - локальная БД администраторов и лога активности
type Storage interface {
	auth.UserStore
	GetLogs(ctx context.Context, filter storage.LogFilter) ([]models.ActivityLog, int, error)
}

// Deps - зависимости хендлеров
type Deps struct {
	Storage  Storage
	Auth     *auth.Service
	Stocks   Stocks
	Backend  Backend
	Notifier notify.Notifier
	// Шаблон настроек WebSocket-сессий; Stocks/Tips/Notifier подставляются из Deps
	Session session.Config
	Logger  *slog.Logger
}

// Handler обрабатывает API запросы
type Handler struct {
	ctx         context.Context
	storage     Storage
	authService *auth.Service
	stocks      Stocks
	backend     Backend
	notifier    notify.Notifier
	sessionCfg  session.Config
	logger      *slog.Logger
}

// New создает хендлеры. ctx ограничивает жизнь WebSocket-сессий.
func New(ctx context.Context, deps Deps) *Handler {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}

	cfg := deps.Session
	cfg.Stocks = deps.Stocks
	cfg.Tips = deps.Backend
	cfg.Notifier = notifier
	cfg.Logger = deps.Logger

	return &Handler{
		ctx:         ctx,
		storage:     deps.Storage,
		authService: deps.Auth,
		stocks:      deps.Stocks,
		backend:     deps.Backend,
		notifier:    notifier,
		sessionCfg:  cfg,
		logger:      deps.Logger,
	}
}

// Helper функции для JSON ответов

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Debug("Failed to write response", slog.Any("error", err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, ErrorResponse{Error: message})
}

func (h *Handler) respondSuccess(w http.ResponseWriter, message string, data any) {
	h.respondJSON(w, http.StatusOK, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

func (h *Handler) respondCreated(w http.ResponseWriter, message string, data any) {
	h.respondJSON(w, http.StatusCreated, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// respondValidation - 422 с ошибками по полям
func (h *Handler) respondValidation(w http.ResponseWriter, fields map[string]string) {
	h.respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:  "Validation failed",
		Fields: fields,
	})
}

// respondBackendError переводит ошибку удаленного API в ответ
func (h *Handler) respondBackendError(w http.ResponseWriter, err error, fallback string) {
	var apiErr *backend.APIError

	switch {
	case errors.Is(err, context.Canceled):
		return
	case errors.Is(err, backend.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "Not found")
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		h.respondError(w, apiErr.Status, msg)
	default:
		h.logger.Error(fallback, slog.Any("error", err))
		h.respondError(w, http.StatusBadGateway, fallback)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	return true
}

// notify отправляет уведомление от имени текущего пользователя
func (h *Handler) notify(r *http.Request, n notify.Notification) {
	if userID, ok := middleware.GetUserID(r.Context()); ok {
		n.UserID = &userID
	}

	h.notifier.Notify(r.Context(), n)
}

// userNotifier - уведомления из pipeline'а с автором запроса
func (h *Handler) userNotifier(r *http.Request) notify.Notifier {
	return notify.Func(func(ctx context.Context, n notify.Notification) {
		if userID, ok := middleware.GetUserID(r.Context()); ok {
			n.UserID = &userID
		}
		h.notifier.Notify(ctx, n)
	})
}

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// parsePage читает page/limit; некорректные значения заменяются на значения по умолчанию
func parsePage(r *http.Request) (page, limit int) {
	page, limit = defaultPage, defaultLimit

	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}

	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = min(l, maxLimit)
	}

	return page, limit
}
