package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// State - состояние цикла обновления
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
)

// DefaultInterval - период обновления по умолчанию
const DefaultInterval = 30 * time.Second

// AllowedIntervals - периоды, которые можно выбрать в UI
var AllowedIntervals = []time.Duration{
	5 * time.Second,
	10 * time.Second,
	30 * time.Second,
	60 * time.Second,
	300 * time.Second,
}

var ErrInvalidInterval = errors.New("invalid refresh interval")

// ValidateInterval проверяет, что период входит в допустимый набор
func ValidateInterval(d time.Duration) error {
	if !slices.Contains(AllowedIntervals, d) {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, d)
	}

	return nil
}

// ParseInterval разбирает строку вида "10s" или "5m" и проверяет её
func ParseInterval(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidInterval, s)
	}

	if err := ValidateInterval(d); err != nil {
		return 0, err
	}

	return d, nil
}

// Ticker - минимальный интерфейс тикера
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func newRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// FetchFunc загружает актуальные строки
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Snapshot - то, что видит экран после очередного тика
type Snapshot[T any] struct {
	State       State     `json:"state"`
	Interval    string    `json:"interval"`
	Rows        []T       `json:"rows"`
	LastUpdate  time.Time `json:"last_update,omitzero"`
	UpdateCount uint64    `json:"update_count"`
	Connected   bool      `json:"connected"`
	Failures    int       `json:"failures"` // Подряд идущие ошибки
	LastError   string    `json:"last_error,omitempty"`
}

// Option настраивает Loop
type Option func(*options)

type options struct {
	interval  time.Duration
	newTicker func(time.Duration) Ticker
	now       func() time.Time
	logger    *slog.Logger
}

// WithInterval задаёт начальный период
func WithInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

// WithTicker подменяет фабрику тикеров (для тестов)
func WithTicker(f func(time.Duration) Ticker) Option {
	return func(o *options) { o.newTicker = f }
}

// WithNow подменяет источник времени
func WithNow(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger задаёт логгер
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Loop - периодическое обновление данных экрана.
// Явная машина состояний stopped/running; в любой момент активен не более чем один тикер.
// Ошибка загрузки не останавливает цикл: старые строки остаются, connected = false.
type Loop[T any] struct {
	parent    context.Context
	fetch     FetchFunc[T]
	newTicker func(time.Duration) Ticker
	now       func() time.Time
	logger    *slog.Logger

	mu          sync.Mutex
	onUpdate    func(Snapshot[T])
	state       State
	interval    time.Duration
	cancel      context.CancelFunc
	ticker      Ticker
	done        chan struct{}
	rows        []T
	lastUpdate  time.Time
	updateCount uint64
	connected   bool
	failures    int
	lastErr     string
}

// New создает остановленный цикл. parent ограничивает время жизни всех загрузок.
func New[T any](parent context.Context, fetch FetchFunc[T], opts ...Option) (*Loop[T], error) {
	o := options{
		interval:  DefaultInterval,
		newTicker: newRealTicker,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := ValidateInterval(o.interval); err != nil {
		return nil, err
	}

	return &Loop[T]{
		parent:    parent,
		fetch:     fetch,
		newTicker: o.newTicker,
		now:       o.now,
		logger:    o.logger,
		state:     StateStopped,
		interval:  o.interval,
		connected: true,
	}, nil
}

// OnUpdate регистрирует наблюдателя, вызываемого после каждой загрузки
func (l *Loop[T]) OnUpdate(fn func(Snapshot[T])) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.onUpdate = fn
}

// Start переводит цикл stopped -> running
func (l *Loop[T]) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == StateRunning {
		return
	}

	l.startLocked()
	l.logger.Debug("Refresh loop started", slog.Duration("interval", l.interval))
}

// Stop переводит цикл running -> stopped и дожидается выхода горутины.
// После возврата новых загрузок не будет.
func (l *Loop[T]) Stop() {
	l.mu.Lock()
	if l.state == StateStopped {
		l.mu.Unlock()
		return
	}

	done := l.stopLocked()
	l.mu.Unlock()

	<-done
	l.logger.Debug("Refresh loop stopped")
}

// SetInterval меняет период. Старый тикер всегда гасится до запуска нового.
func (l *Loop[T]) SetInterval(d time.Duration) error {
	if err := ValidateInterval(d); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.interval = d

	if l.state == StateRunning {
		// Горутина старого тикера выходит по отмене контекста и новых загрузок не начинает
		l.stopLocked()
		l.startLocked()
	}

	return nil
}

// RefreshNow выполняет внеочередную загрузку (ручной reload)
func (l *Loop[T]) RefreshNow(ctx context.Context) error {
	rows, err := l.fetch(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	l.apply(rows, err)

	return err
}

// Snapshot возвращает текущее состояние
func (l *Loop[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.snapshotLocked()
}

// State возвращает текущее состояние машины
func (l *Loop[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.state
}

func (l *Loop[T]) startLocked() {
	ctx, cancel := context.WithCancel(l.parent)
	ticker := l.newTicker(l.interval)
	done := make(chan struct{})

	l.cancel = cancel
	l.ticker = ticker
	l.done = done
	l.state = StateRunning

	go l.run(ctx, ticker, done)
}

func (l *Loop[T]) stopLocked() chan struct{} {
	l.cancel()
	l.ticker.Stop()
	l.cancel = nil
	l.ticker = nil
	l.state = StateStopped

	return l.done
}

func (l *Loop[T]) run(ctx context.Context, ticker Ticker, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if ctx.Err() != nil {
				return
			}

			rows, err := l.fetch(ctx)
			if ctx.Err() != nil {
				return
			}

			l.apply(rows, err)
		}
	}
}

func (l *Loop[T]) apply(rows []T, err error) {
	l.mu.Lock()

	if err != nil {
		l.connected = false
		l.failures++
		l.lastErr = err.Error()

		l.logger.Warn("Refresh failed, keeping previous rows",
			slog.Int("failures", l.failures),
			slog.Any("error", err))
	} else {
		l.rows = rows
		l.lastUpdate = l.now()
		l.updateCount++
		l.connected = true
		l.failures = 0
		l.lastErr = ""
	}

	snap := l.snapshotLocked()
	cb := l.onUpdate
	l.mu.Unlock()

	if cb != nil {
		cb(snap)
	}
}

func (l *Loop[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		State:       l.state,
		Interval:    l.interval.String(),
		Rows:        l.rows,
		LastUpdate:  l.lastUpdate,
		UpdateCount: l.updateCount,
		Connected:   l.connected,
		Failures:    l.failures,
		LastError:   l.lastErr,
	}
}
