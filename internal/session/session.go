package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/liquidevz/rangaone/internal/models"
	"github.com/liquidevz/rangaone/internal/notify"
	"github.com/liquidevz/rangaone/internal/poller"
	"github.com/liquidevz/rangaone/internal/search"
	"github.com/liquidevz/rangaone/internal/stocks"
	"github.com/liquidevz/rangaone/internal/tips"
	"github.com/liquidevz/rangaone/pkg/debounce"
)

// Conn - часть *websocket.Conn, нужная сессии
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// Stocks - операции справочника тикеров, нужные экрану
type Stocks interface {
	Search(ctx context.Context, term string) ([]models.StockSymbol, error)
	Get(ctx context.Context, id string) (models.StockSymbol, error)
	Remember(stock models.StockSymbol)
	Quotes(ctx context.Context, page, limit int) ([]stocks.Quote, error)
}

// Config - зависимости и настройки сессии
type Config struct {
	Stocks   Stocks
	Tips     tips.Store
	Notifier notify.Notifier
	Logger   *slog.Logger

	QuietPeriod     time.Duration
	RefreshInterval time.Duration
	// Сколько строк справочника показывает экран котировок
	QuotesLimit int

	// Подмена времени в тестах
	Clock     debounce.Clock
	NewTicker func(time.Duration) poller.Ticker
}

const defaultQuotesLimit = 100

// Session - один экран администратора, подключённый по WebSocket.
// Все входящие сообщения, срабатывания debounce и снимки обновления
// обрабатываются последовательно в горутине Run.
type Session struct {
	id     string
	userID int
	conn   Conn
	cfg    Config
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	editor   *tips.Editor
	search   *search.Controller
	refresh  *poller.Loop[stocks.Quote]
	pipeline *tips.Pipeline

	// Очередь событий из чужих горутин; запись никогда не блокируется
	mu     sync.Mutex
	events []func()
	wake   chan struct{}
}

// New создает сессию. Жизнь сессии ограничена ctx и соединением.
func New(ctx context.Context, conn Conn, userID int, cfg Config) (*Session, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Nop{}
	}
	if cfg.QuietPeriod <= 0 {
		cfg.QuietPeriod = search.DefaultQuietPeriod
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = poller.DefaultInterval
	}
	if cfg.QuotesLimit <= 0 {
		cfg.QuotesLimit = defaultQuotesLimit
	}

	id := uuid.NewString()
	logger := cfg.Logger.With(slog.String("session", id), slog.Int("user_id", userID))

	s := &Session{
		id:     id,
		userID: userID,
		conn:   conn,
		cfg:    cfg,
		logger: logger,
		editor: tips.NewEditor(),
		wake:   make(chan struct{}, 1),
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	notifier := notify.Multi{s.userNotifier(cfg.Notifier), notify.Func(s.toast)}

	searchOpts := []search.Option{search.WithQuietPeriod(cfg.QuietPeriod), search.WithLogger(logger)}
	if cfg.Clock != nil {
		searchOpts = append(searchOpts, search.WithClock(cfg.Clock))
	}
	// Ошибки поиска по мере ввода показываются только на экране, без лога активности и Telegram
	s.search = search.New(s.ctx, cfg.Stocks, notify.Func(s.toast), s.onSearchResults, searchOpts...)

	loopOpts := []poller.Option{poller.WithInterval(cfg.RefreshInterval), poller.WithLogger(logger)}
	if cfg.NewTicker != nil {
		loopOpts = append(loopOpts, poller.WithTicker(cfg.NewTicker))
	}
	refresh, err := poller.New[stocks.Quote](s.ctx, s.fetchQuotes, loopOpts...)
	if err != nil {
		s.cancel()
		return nil, fmt.Errorf("failed to create refresh loop: %w", err)
	}
	refresh.OnUpdate(s.onSnapshot)
	s.refresh = refresh

	s.pipeline = tips.NewPipeline(cfg.Tips, notifier, logger)

	return s, nil
}

// ID возвращает идентификатор сессии
func (s *Session) ID() string {
	return s.id
}

// Run обслуживает соединение до его закрытия или отмены ctx.
// Нормальное закрытие клиентом не считается ошибкой.
func (s *Session) Run() error {
	defer s.close()

	s.logger.Info("🔌 Session started")

	inbound := make(chan Message)
	readErr := make(chan error, 1)

	go s.readLoop(inbound, readErr)

	s.sendForm()

	for {
		select {
		case <-s.ctx.Done():
			return nil
		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		case msg := <-inbound:
			s.handle(msg)
		case <-s.wake:
			s.drain()
		}
	}
}

func (s *Session) readLoop(inbound chan<- Message, readErr chan<- error) {
	for {
		var msg Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			readErr <- err
			return
		}

		select {
		case inbound <- msg:
		case <-s.ctx.Done():
			return
		}
	}
}

// close отменяет контекст сессии: ответы на запросы в полёте отбрасываются
func (s *Session) close() {
	s.cancel()
	s.search.Close()
	s.refresh.Stop()

	if err := s.conn.Close(); err != nil {
		s.logger.Debug("Connection close error", slog.Any("error", err))
	}

	s.logger.Info("🔌 Session closed")
}

// post ставит функцию в очередь горутины сессии
func (s *Session) post(fn func()) {
	if s.ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	s.events = append(s.events, fn)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// drain выполняет накопленные события
func (s *Session) drain() {
	s.mu.Lock()
	events := s.events
	s.events = nil
	s.mu.Unlock()

	for _, fn := range events {
		if s.ctx.Err() != nil {
			return
		}
		fn()
	}
}

func (s *Session) send(typ string, data any) {
	if s.ctx.Err() != nil {
		return
	}

	if err := s.conn.WriteJSON(outMessage{Type: typ, Data: data}); err != nil {
		s.logger.Warn("Failed to write message", slog.String("type", typ), slog.Any("error", err))
		s.cancel()
	}
}

func (s *Session) sendError(request string, err error) {
	s.send(MsgError, errorPayload{Request: request, Error: err.Error()})
}

func (s *Session) sendForm() {
	s.send(MsgForm, s.editor)
}

func (s *Session) toast(_ context.Context, n notify.Notification) {
	s.post(func() { s.send(MsgToast, n) })
}

// userNotifier проставляет автора в уведомления для лога активности
func (s *Session) userNotifier(next notify.Notifier) notify.Notifier {
	userID := s.userID

	return notify.Func(func(ctx context.Context, n notify.Notification) {
		n.UserID = &userID
		next.Notify(ctx, n)
	})
}

func (s *Session) fetchQuotes(ctx context.Context) ([]stocks.Quote, error) {
	return s.cfg.Stocks.Quotes(ctx, 1, s.cfg.QuotesLimit)
}

func (s *Session) onSearchResults(r search.Result) {
	s.post(func() {
		// Пока событие ждало в очереди, мог прийти новый ввод или выбор тикера
		if !s.search.Current(r.Seq) {
			return
		}

		s.editor.SetSearch(r.Term, r.Results)

		results := r.Results
		if results == nil {
			results = []models.StockSymbol{}
		}
		s.send(MsgSearchResults, searchResults{Term: r.Term, Results: results})
	})
}

func (s *Session) onSnapshot(snap poller.Snapshot[stocks.Quote]) {
	s.post(func() { s.send(MsgStocks, snap) })
}

// handle обрабатывает одно входящее сообщение
func (s *Session) handle(msg Message) {
	var err error

	switch msg.Type {
	case MsgSearch:
		err = s.handleSearch(msg.Data)
	case MsgSelectStock:
		err = s.handleSelectStock(msg.Data)
	case MsgSetField:
		err = s.handleSetField(msg.Data)
	case MsgSetAutoCalc:
		err = s.handleSetAutoCalc(msg.Data)
	case MsgOpenTip:
		err = s.handleOpenTip(msg.Data)
	case MsgReset:
		s.search.Cancel()
		s.editor.Reset()
		s.sendForm()
	case MsgSubmitTip:
		s.handleSubmit()
	case MsgRefreshStart:
		s.refresh.Start()
		s.send(MsgStocks, s.refresh.Snapshot())
	case MsgRefreshStop:
		s.refresh.Stop()
		s.send(MsgStocks, s.refresh.Snapshot())
	case MsgRefreshInterval:
		err = s.handleRefreshInterval(msg.Data)
	case MsgRefreshNow:
		// Ошибка уже отражена в снимке (connected=false)
		_ = s.refresh.RefreshNow(s.ctx)
	default:
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}

	if err != nil {
		s.logger.Debug("Message rejected", slog.String("type", msg.Type), slog.Any("error", err))
		s.sendError(msg.Type, err)
	}
}

func decode[T any](data json.RawMessage) (T, error) {
	var v T
	if len(data) == 0 {
		return v, errors.New("missing data")
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("invalid data: %w", err)
	}

	return v, nil
}

func (s *Session) handleSearch(data json.RawMessage) error {
	req, err := decode[searchRequest](data)
	if err != nil {
		return err
	}

	s.editor.SearchText = req.Term
	s.search.Input(req.Term)

	return nil
}

func (s *Session) handleSelectStock(data json.RawMessage) error {
	req, err := decode[selectStockRequest](data)
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(s.editor.Results, func(st models.StockSymbol) bool { return st.ID == req.ID })

	var stock models.StockSymbol
	if idx >= 0 {
		stock = s.editor.Results[idx]
		s.cfg.Stocks.Remember(stock)
	} else {
		stock, err = s.cfg.Stocks.Get(s.ctx, req.ID)
		if err != nil {
			return fmt.Errorf("failed to load stock: %w", err)
		}
	}

	s.search.Cancel()
	s.editor.SelectStock(stock)

	s.send(MsgStockSelected, stock)
	s.sendForm()

	return nil
}

func (s *Session) handleSetField(data json.RawMessage) error {
	req, err := decode[setFieldRequest](data)
	if err != nil {
		return err
	}

	if err := s.editor.SetField(req.Name, req.Value); err != nil {
		return err
	}

	s.sendForm()

	return nil
}

func (s *Session) handleSetAutoCalc(data json.RawMessage) error {
	req, err := decode[setAutoCalcRequest](data)
	if err != nil {
		return err
	}

	if err := s.editor.SetAutoCalc(tips.AutoField(req.Field), req.On); err != nil {
		return err
	}

	s.sendForm()

	return nil
}

func (s *Session) handleOpenTip(data json.RawMessage) error {
	tip, err := decode[models.Tip](data)
	if err != nil {
		return err
	}

	var stock *models.StockSymbol
	if tip.StockID != "" {
		st, err := s.cfg.Stocks.Get(s.ctx, tip.StockID)
		if err != nil {
			// Форму можно править и без опорной цены, автопересчёт просто не сработает
			s.logger.Warn("Failed to load tip stock", slog.String("stock_id", tip.StockID), slog.Any("error", err))
		} else {
			stock = &st
		}
	}

	s.search.Cancel()
	s.editor.Open(tip, stock)
	s.sendForm()

	return nil
}

func (s *Session) handleSubmit() {
	saved, err := s.pipeline.Submit(s.ctx, s.editor)

	var verrs tips.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		s.send(MsgValidationErrors, verrs)
	case errors.Is(err, tips.ErrStockRequired):
		s.send(MsgValidationErrors, tips.ValidationErrors{"stockId": tips.UserMessage(err)})
	case err != nil:
		// Тост уже отправлен pipeline'ом, форма не тронута
	default:
		s.search.Cancel()
		s.send(MsgTipSaved, saved)
		s.sendForm()
	}
}

func (s *Session) handleRefreshInterval(data json.RawMessage) error {
	req, err := decode[refreshIntervalRequest](data)
	if err != nil {
		return err
	}

	d, err := poller.ParseInterval(req.Interval)
	if err != nil {
		return err
	}

	if err := s.refresh.SetInterval(d); err != nil {
		return err
	}

	s.send(MsgStocks, s.refresh.Snapshot())

	return nil
}
