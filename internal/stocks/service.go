package stocks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/liquidevz/rangaone/internal/backend"
	"github.com/liquidevz/rangaone/internal/cache"
	"github.com/liquidevz/rangaone/internal/models"
)

// Backend - операции backend'а со справочником тикеров
type Backend interface {
	ListStocks(ctx context.Context, page, limit int) (models.Page[models.StockSymbol], error)
	GetStock(ctx context.Context, id string) (models.StockSymbol, error)
	SearchStocks(ctx context.Context, term string) ([]models.StockSymbol, error)
	CreateStock(ctx context.Context, in models.StockInput) (models.StockSymbol, error)
	UpdateStock(ctx context.Context, id string, in models.StockInput) (models.StockSymbol, error)
	DeleteStock(ctx context.Context, id string) error
	RefreshPrices(ctx context.Context) (backend.RefreshResult, error)
}

// maxParallelLookups ограничивает число одновременных запросов деталей
const maxParallelLookups = 8

// Service - справочник тикеров с кэшем деталей по id.
// Кэш сбрасывается по ключу при update/delete и целиком при обновлении цен.
type Service struct {
	backend Backend
	details *cache.Cache[string, models.StockSymbol]
	logger  *slog.Logger
}

// NewService создает сервис. ttl = 0 - записи живут до инвалидации.
func NewService(b Backend, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		backend: b,
		details: cache.New[string, models.StockSymbol](cache.WithTTL(ttl)),
		logger:  logger,
	}
}

// List возвращает страницу справочника
func (s *Service) List(ctx context.Context, page, limit int) (models.Page[models.StockSymbol], error) {
	return s.backend.ListStocks(ctx, page, limit)
}

// Get возвращает детали тикера, обращаясь к backend'у только при промахе кэша
func (s *Service) Get(ctx context.Context, id string) (models.StockSymbol, error) {
	return s.details.GetOrFetch(ctx, id, s.backend.GetStock)
}

// GetMany загружает детали нескольких тикеров параллельно
func (s *Service) GetMany(ctx context.Context, ids []string) (map[string]models.StockSymbol, error) {
	out := make(map[string]models.StockSymbol, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLookups)

	for _, id := range ids {
		if id == "" {
			continue
		}

		g.Go(func() error {
			stock, err := s.Get(gctx, id)
			if err != nil {
				return fmt.Errorf("stock %s: %w", id, err)
			}

			mu.Lock()
			out[id] = stock
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// Remember кладёт выбранный в UI тикер в кэш
func (s *Service) Remember(stock models.StockSymbol) {
	if stock.ID == "" {
		return
	}

	s.details.Set(stock.ID, stock)
}

// Search ищет тикеры по строке
func (s *Service) Search(ctx context.Context, term string) ([]models.StockSymbol, error) {
	return s.backend.SearchStocks(ctx, strings.TrimSpace(term))
}

// Create создает тикер
func (s *Service) Create(ctx context.Context, in models.StockInput) (models.StockSymbol, error) {
	stock, err := s.backend.CreateStock(ctx, in)
	if err != nil {
		return models.StockSymbol{}, err
	}

	s.Remember(stock)

	return stock, nil
}

// Update обновляет тикер и сбрасывает его запись в кэше
func (s *Service) Update(ctx context.Context, id string, in models.StockInput) (models.StockSymbol, error) {
	s.details.Invalidate(id)

	stock, err := s.backend.UpdateStock(ctx, id, in)
	if err != nil {
		return models.StockSymbol{}, err
	}

	s.Remember(stock)

	return stock, nil
}

// Delete удаляет тикер и его запись в кэше
func (s *Service) Delete(ctx context.Context, id string) error {
	s.details.Invalidate(id)

	return s.backend.DeleteStock(ctx, id)
}

// RefreshPrices запускает массовое обновление цен; все закэшированные цены устаревают
func (s *Service) RefreshPrices(ctx context.Context) (backend.RefreshResult, error) {
	result, err := s.backend.RefreshPrices(ctx)
	if err != nil {
		return result, err
	}

	s.details.Purge()

	s.logger.Info("Stock prices refreshed",
		slog.Int("updated", result.Updated),
		slog.Int("failed", result.Failed))

	return result, nil
}

// Quotes загружает страницу справочника вместе с производными полями.
// Используется циклом обновления экрана тикеров.
func (s *Service) Quotes(ctx context.Context, page, limit int) ([]Quote, error) {
	p, err := s.backend.ListStocks(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	return NewQuotes(p.Items), nil
}
