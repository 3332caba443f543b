package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/liquidevz/rangaone/internal/models"
	"github.com/liquidevz/rangaone/internal/notify"
	"github.com/liquidevz/rangaone/pkg/debounce"
)

const (
	// MinTermLength - более короткие строки не уходят в сеть
	MinTermLength = 2
	// DefaultQuietPeriod - пауза ввода перед запросом
	DefaultQuietPeriod = 300 * time.Millisecond
)

// Searcher - удалённый поиск тикеров
type Searcher interface {
	Search(ctx context.Context, term string) ([]models.StockSymbol, error)
}

// Result - итог поиска. Results == nil - пустой список.
type Result struct {
	Seq     uint64
	Term    string
	Results []models.StockSymbol
}

// DeliverFunc получает итог поиска. Владелец, обрабатывающий его асинхронно,
// перед применением сверяет Seq через Current.
type DeliverFunc func(Result)

type request struct {
	seq  uint64
	term string
}

// Option настраивает Controller
type Option func(*Controller)

// WithQuietPeriod задаёт паузу ввода
func WithQuietPeriod(d time.Duration) Option {
	return func(c *Controller) { c.quiet = d }
}

// WithClock подменяет часы debounce (для тестов)
func WithClock(clock debounce.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithLogger задаёт логгер
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller - поиск по мере ввода с debounce.
// Результаты устаревших запросов и запросов после Close отбрасываются.
type Controller struct {
	ctx      context.Context
	searcher Searcher
	notifier notify.Notifier
	deliver  DeliverFunc
	quiet    time.Duration
	clock    debounce.Clock
	logger   *slog.Logger

	debouncer *debounce.Debouncer[request]

	mu     sync.Mutex
	latest uint64
}

// New создает контроллер. ctx - время жизни владельца (экрана).
func New(ctx context.Context, searcher Searcher, notifier notify.Notifier, deliver DeliverFunc, opts ...Option) *Controller {
	c := &Controller{
		ctx:      ctx,
		searcher: searcher,
		notifier: notifier,
		deliver:  deliver,
		quiet:    DefaultQuietPeriod,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	var dopts []debounce.Option
	if c.clock != nil {
		dopts = append(dopts, debounce.WithClock(c.clock))
	}

	c.debouncer = debounce.New(c.quiet, c.lookup, dopts...)

	return c
}

// Input принимает текущее значение поля поиска
func (c *Controller) Input(term string) {
	term = strings.TrimSpace(term)

	c.mu.Lock()
	c.latest++
	seq := c.latest
	c.mu.Unlock()

	if utf8.RuneCountInString(term) < MinTermLength {
		c.debouncer.Cancel()
		c.deliver(Result{Seq: seq, Term: term})
		return
	}

	c.debouncer.Trigger(request{seq: seq, term: term})
}

// Cancel отменяет отложенный поиск; ответ на уже отправленный запрос будет отброшен
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.latest++
	c.mu.Unlock()

	c.debouncer.Cancel()
}

// Close останавливает debounce; ответы на уже отправленные запросы игнорируются
// после отмены ctx владельца.
func (c *Controller) Close() {
	c.debouncer.Stop()
}

// Current сообщает, что после запроса seq не было нового ввода или Cancel
func (c *Controller) Current(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return seq == c.latest
}

func (c *Controller) lookup(req request) {
	if c.ctx.Err() != nil {
		return
	}

	results, err := c.searcher.Search(c.ctx, req.term)

	if c.ctx.Err() != nil || !c.Current(req.seq) {
		return
	}

	if err != nil {
		c.logger.Warn("Stock search failed", slog.String("term", req.term), slog.Any("error", err))
		c.notifier.Notify(c.ctx, notify.Error("search_failed", "Search failed", err.Error()))
		c.deliver(Result{Seq: req.seq, Term: req.term})

		return
	}

	c.deliver(Result{Seq: req.seq, Term: req.term, Results: results})
}
