package cache

import (
	"context"
	"sync"
	"time"
)

// entry - закэшированное значение и момент записи
type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache хранит последние полученные детали по ключу.
// Принадлежит конкретному компоненту, глобального состояния нет.
type Cache[K comparable, V any] struct {
	items map[K]entry[V]
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
}

// Option настраивает Cache
type Option func(*config)

type config struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL задаёт время жизни записи. Ноль - записи живут, пока жив владелец.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

// WithNow подменяет источник времени (для тестов)
func WithNow(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// New создает пустой кэш
func New[K comparable, V any](opts ...Option) *Cache[K, V] {
	cfg := config{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Cache[K, V]{
		items: make(map[K]entry[V]),
		ttl:   cfg.ttl,
		now:   cfg.now,
	}
}

// Get возвращает значение, если оно есть и не устарело
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || c.expired(e) {
		var zero V
		return zero, false
	}

	return e.value, true
}

// Set записывает значение (например, при явном выборе в UI)
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[V]{value: value, storedAt: c.now()}
}

// GetOrFetch возвращает значение из кэша или вызывает fetch и кэширует результат.
// Ошибки fetch не кэшируются.
func (c *Cache[K, V]) GetOrFetch(ctx context.Context, key K, fetch func(ctx context.Context, key K) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := fetch(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}

	c.Set(key, v)

	return v, nil
}

// Invalidate удаляет запись (после update/delete сущности)
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Purge очищает кэш целиком
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]entry[V])
}

// Len возвращает количество записей, включая устаревшие
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

func (c *Cache[K, V]) expired(e entry[V]) bool {
	return c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl
}
