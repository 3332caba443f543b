package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/liquidevz/rangaone/internal/models"
	"github.com/liquidevz/rangaone/internal/notify"
	"github.com/liquidevz/rangaone/pkg/debounce/debouncetest"
)

type fakeSearcher struct {
	mu    sync.Mutex
	terms []string
	err   error
}

func (f *fakeSearcher) Search(ctx context.Context, term string) ([]models.StockSymbol, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.terms = append(f.terms, term)
	if f.err != nil {
		return nil, f.err
	}
	return []models.StockSymbol{{ID: "1", Symbol: term}}, nil
}

type delivery struct {
	seq     uint64
	term    string
	results []models.StockSymbol
}

type harness struct {
	clock      *debouncetest.Clock
	searcher   *fakeSearcher
	deliveries []delivery
	notices    []notify.Notification
	ctrl       *Controller
}

func newHarness(ctx context.Context) *harness {
	h := &harness{clock: &debouncetest.Clock{}, searcher: &fakeSearcher{}}
	notifier := notify.Func(func(ctx context.Context, n notify.Notification) {
		h.notices = append(h.notices, n)
	})
	h.ctrl = New(ctx, h.searcher, notifier, func(r Result) {
		h.deliveries = append(h.deliveries, delivery{seq: r.Seq, term: r.Term, results: r.Results})
	}, WithClock(h.clock))

	return h
}

func TestShortTermsNeverHitNetwork(t *testing.T) {
	h := newHarness(context.Background())

	for _, term := range []string{"", "R", " R ", "Я"} {
		h.ctrl.Input(term)
	}
	h.clock.Advance(time.Second)

	if len(h.searcher.terms) != 0 {
		t.Errorf("expected no network calls, got %v", h.searcher.terms)
	}
	if len(h.deliveries) != 4 {
		t.Fatalf("expected 4 empty deliveries, got %d", len(h.deliveries))
	}
	for _, d := range h.deliveries {
		if d.results != nil {
			t.Errorf("expected empty results for %q", d.term)
		}
	}
}

func TestRapidTypingFiresOnce(t *testing.T) {
	h := newHarness(context.Background())

	for _, term := range []string{"RE", "REL", "RELI", "RELIANCE"} {
		h.ctrl.Input(term)
		h.clock.Advance(100 * time.Millisecond)
	}
	h.clock.Advance(DefaultQuietPeriod)

	if len(h.searcher.terms) != 1 || h.searcher.terms[0] != "RELIANCE" {
		t.Fatalf("expected one call with final term, got %v", h.searcher.terms)
	}
	if len(h.deliveries) != 1 || h.deliveries[0].results[0].Symbol != "RELIANCE" {
		t.Errorf("unexpected deliveries %+v", h.deliveries)
	}
}

func TestShortTermCancelsPendingLookup(t *testing.T) {
	h := newHarness(context.Background())

	h.ctrl.Input("RE")
	h.ctrl.Input("R")
	h.clock.Advance(time.Second)

	if len(h.searcher.terms) != 0 {
		t.Errorf("expected pending lookup to be cancelled, got %v", h.searcher.terms)
	}
}

func TestSearchErrorClearsResultsAndNotifies(t *testing.T) {
	h := newHarness(context.Background())
	h.searcher.err = errors.New("backend returned 502")

	h.ctrl.Input("TCS")
	h.clock.Advance(time.Second)

	if len(h.deliveries) != 1 || h.deliveries[0].results != nil {
		t.Fatalf("expected cleared results, got %+v", h.deliveries)
	}
	if len(h.notices) != 1 || h.notices[0].Action != "search_failed" {
		t.Errorf("expected search_failed notification, got %+v", h.notices)
	}
}

func TestClosedOwnerDropsResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := newHarness(ctx)

	h.ctrl.Input("INFY")
	cancel()
	h.clock.Advance(time.Second)

	if len(h.searcher.terms) != 0 || len(h.deliveries) != 0 {
		t.Errorf("expected nothing after owner ended, got terms=%v deliveries=%d", h.searcher.terms, len(h.deliveries))
	}
}

func TestClose(t *testing.T) {
	h := newHarness(context.Background())

	h.ctrl.Input("HDFC")
	h.ctrl.Close()
	h.clock.Advance(time.Second)

	if len(h.searcher.terms) != 0 {
		t.Errorf("expected no lookup after close, got %v", h.searcher.terms)
	}
}

func TestCancelDropsInFlightResult(t *testing.T) {
	h := newHarness(context.Background())

	h.ctrl.Input("WIPRO")
	h.ctrl.Cancel()
	h.clock.Advance(time.Second)

	if len(h.searcher.terms) != 0 || len(h.deliveries) != 0 {
		t.Errorf("expected cancelled lookup, got terms=%v deliveries=%d", h.searcher.terms, len(h.deliveries))
	}
}

func TestDeliveredResultGoesStaleAfterNewInput(t *testing.T) {
	h := newHarness(context.Background())

	h.ctrl.Input("INFY")
	h.clock.Advance(time.Second)

	if len(h.deliveries) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(h.deliveries))
	}
	seq := h.deliveries[0].seq
	if !h.ctrl.Current(seq) {
		t.Fatal("fresh result must be current")
	}

	h.ctrl.Cancel()
	if h.ctrl.Current(seq) {
		t.Error("result must be stale after Cancel")
	}

	h.ctrl.Input("TCS")
	if h.ctrl.Current(seq) {
		t.Error("result must be stale after new input")
	}
}
