package stocks

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/liquidevz/rangaone/internal/backend"
	"github.com/liquidevz/rangaone/internal/models"
)

type fakeBackend struct {
	mu      sync.Mutex
	stocks  map[string]models.StockSymbol
	getCall map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		stocks: map[string]models.StockSymbol{
			"1": {ID: "1", Symbol: "RELIANCE", CurrentPrice: "150.00", PreviousPrice: "120.00"},
			"2": {ID: "2", Symbol: "TCS", CurrentPrice: "3500", PreviousPrice: "3600"},
		},
		getCall: map[string]int{},
	}
}

func (f *fakeBackend) ListStocks(ctx context.Context, page, limit int) (models.Page[models.StockSymbol], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var items []models.StockSymbol
	for _, s := range f.stocks {
		items = append(items, s)
	}
	return models.Page[models.StockSymbol]{Items: items, Total: len(items), Page: page, Limit: limit}, nil
}

func (f *fakeBackend) GetStock(ctx context.Context, id string) (models.StockSymbol, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getCall[id]++
	s, ok := f.stocks[id]
	if !ok {
		return models.StockSymbol{}, &backend.APIError{Status: 404}
	}
	return s, nil
}

func (f *fakeBackend) SearchStocks(ctx context.Context, term string) ([]models.StockSymbol, error) {
	return nil, nil
}

func (f *fakeBackend) CreateStock(ctx context.Context, in models.StockInput) (models.StockSymbol, error) {
	return models.StockSymbol{ID: "3", Symbol: in.Symbol}, nil
}

func (f *fakeBackend) UpdateStock(ctx context.Context, id string, in models.StockInput) (models.StockSymbol, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.stocks[id]
	s.Name = in.Name
	f.stocks[id] = s
	return s, nil
}

func (f *fakeBackend) DeleteStock(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.stocks, id)
	return nil
}

func (f *fakeBackend) RefreshPrices(ctx context.Context) (backend.RefreshResult, error) {
	return backend.RefreshResult{Updated: len(f.stocks)}, nil
}

func (f *fakeBackend) calls(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCall[id]
}

func newTestService(b Backend) *Service {
	return NewService(b, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGet_UsesCache(t *testing.T) {
	b := newFakeBackend()
	s := newTestService(b)

	for i := 0; i < 3; i++ {
		if _, err := s.Get(context.Background(), "1"); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}

	if n := b.calls("1"); n != 1 {
		t.Errorf("expected 1 backend lookup, got %d", n)
	}
}

func TestUpdate_InvalidatesCache(t *testing.T) {
	b := newFakeBackend()
	s := newTestService(b)

	s.Get(context.Background(), "1")

	if _, err := s.Update(context.Background(), "1", models.StockInput{Name: "Reliance Industries"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := s.Get(context.Background(), "1")
	if got.Name != "Reliance Industries" {
		t.Errorf("expected fresh detail after update, got %+v", got)
	}
}

func TestDelete_InvalidatesCache(t *testing.T) {
	b := newFakeBackend()
	s := newTestService(b)

	s.Get(context.Background(), "2")
	if err := s.Delete(context.Background(), "2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := s.Get(context.Background(), "2"); err == nil {
		t.Error("expected deleted stock not to be served from cache")
	}
}

func TestRemember_SkipsLookup(t *testing.T) {
	b := newFakeBackend()
	s := newTestService(b)

	s.Remember(models.StockSymbol{ID: "9", Symbol: "WIPRO"})

	got, err := s.Get(context.Background(), "9")
	if err != nil || got.Symbol != "WIPRO" {
		t.Errorf("expected remembered stock, got %+v (%v)", got, err)
	}
	if b.calls("9") != 0 {
		t.Error("expected no backend lookup for remembered stock")
	}
}

func TestGetMany(t *testing.T) {
	b := newFakeBackend()
	s := newTestService(b)

	got, err := s.GetMany(context.Background(), []string{"1", "2", "1", ""})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}

	if len(got) != 2 || got["2"].Symbol != "TCS" {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestRefreshPrices_PurgesCache(t *testing.T) {
	b := newFakeBackend()
	s := newTestService(b)

	s.Get(context.Background(), "1")
	if _, err := s.RefreshPrices(context.Background()); err != nil {
		t.Fatalf("RefreshPrices: %v", err)
	}
	s.Get(context.Background(), "1")

	if n := b.calls("1"); n != 2 {
		t.Errorf("expected lookup after purge, got %d calls", n)
	}
}

func TestNewQuote(t *testing.T) {
	tests := []struct {
		name          string
		current, prev string
		change, pct   string
	}{
		{name: "gain", current: "150.00", prev: "120.00", change: "30.00", pct: "25.00"},
		{name: "loss", current: "3500", prev: "3600", change: "-100.00", pct: "-2.78"},
		{name: "zero previous", current: "10", prev: "0", change: "10.00", pct: ""},
		{name: "not a number", current: "n/a", prev: "10", change: "", pct: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuote(models.StockSymbol{CurrentPrice: tt.current, PreviousPrice: tt.prev})
			if q.Change != tt.change || q.ChangePercent != tt.pct {
				t.Errorf("got change=%q pct=%q, want %q %q", q.Change, q.ChangePercent, tt.change, tt.pct)
			}
		})
	}
}
