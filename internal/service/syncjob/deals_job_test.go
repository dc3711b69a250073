package syncjob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/internal/service/dealfeed"
)

type fakeFeed struct {
	pages [][]dealfeed.FeedDeal
}

func (f *fakeFeed) FetchDealsPage(ctx context.Context, pageNumber, pageSize int) ([]dealfeed.FeedDeal, error) {
	if pageNumber >= len(f.pages) {
		return nil, nil
	}
	return f.pages[pageNumber], nil
}

type fakeGameEnsurer struct {
	nextID  uint
	ensured map[string]*domain.Game
	failFor string
}

func (f *fakeGameEnsurer) EnsureByTitle(ctx context.Context, title, catalogID string) (*domain.Game, error) {
	if title == f.failFor {
		return nil, errors.New("ensure failed")
	}
	if f.ensured == nil {
		f.ensured = make(map[string]*domain.Game)
	}
	if game, ok := f.ensured[title]; ok {
		return game, nil
	}
	f.nextID++
	game := &domain.Game{ID: f.nextID, Title: title, CatalogID: catalogID}
	f.ensured[title] = game
	return game, nil
}

type fakeDealStore struct {
	upserts     []domain.Deal
	history     []domain.PriceHistoryEntry
	deactivated int64
}

func (f *fakeDealStore) UpsertDeal(ctx context.Context, deal *domain.Deal) error {
	f.upserts = append(f.upserts, *deal)
	return nil
}

func (f *fakeDealStore) RecordPrice(ctx context.Context, entry *domain.PriceHistoryEntry) error {
	f.history = append(f.history, *entry)
	return nil
}

func (f *fakeDealStore) DeactivateStale(ctx context.Context, fetchedBefore time.Time) (int64, error) {
	return f.deactivated, nil
}

type fakeNotifier struct {
	notified []uint
}

func (f *fakeNotifier) NotifyDeal(ctx context.Context, deal *domain.Deal) (int, error) {
	f.notified = append(f.notified, deal.GameID)
	return 1, nil
}

type fakeBroadcaster struct {
	deals []*domain.Deal
}

func (f *fakeBroadcaster) BroadcastDeal(deal *domain.Deal) {
	f.deals = append(f.deals, deal)
}

func TestDealsJobAppliesFeedPages(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{pages: [][]dealfeed.FeedDeal{
		{
			{ExternalID: "d1", Title: "Hades", Store: "steam", SalePrice: 12.49, NormalPrice: 24.99, SavingsPct: 50, CatalogID: "1145360", URL: "https://example.test/d1"},
			{ExternalID: "d2", Title: "Hades", Store: "epic", SalePrice: 11.99, NormalPrice: 24.99, SavingsPct: 52, URL: "https://example.test/d2"},
		},
		{
			{ExternalID: "d3", Title: "Celeste", Store: "steam", SalePrice: 4.99, NormalPrice: 19.99, SavingsPct: 75, URL: "https://example.test/d3"},
		},
	}}
	games := &fakeGameEnsurer{}
	deals := &fakeDealStore{deactivated: 2}
	notifier := &fakeNotifier{}
	broadcaster := &fakeBroadcaster{}

	job := NewDealsJob(feed, games, deals, notifier, broadcaster, nil, testLogger())
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if err := job.Run(context.Background(), now); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(deals.upserts) != 3 {
		t.Fatalf("upserts = %d, want 3", len(deals.upserts))
	}
	// 같은 게임의 다른 스토어 딜은 별도 레코드
	if deals.upserts[0].GameID != deals.upserts[1].GameID {
		t.Errorf("same title resolved to different games: %d vs %d", deals.upserts[0].GameID, deals.upserts[1].GameID)
	}
	if deals.upserts[0].Store == deals.upserts[1].Store {
		t.Errorf("store distinction lost on upsert")
	}
	for _, deal := range deals.upserts {
		if !deal.Active {
			t.Errorf("upserted deal %s is not active", deal.ExternalID)
		}
		if !deal.FetchedAt.Equal(now) {
			t.Errorf("deal %s fetched_at = %v, want run timestamp", deal.ExternalID, deal.FetchedAt)
		}
	}

	if len(deals.history) != 3 {
		t.Errorf("price history entries = %d, want 3", len(deals.history))
	}
	if len(notifier.notified) != 3 {
		t.Errorf("notifier calls = %d, want 3", len(notifier.notified))
	}
	if len(broadcaster.deals) != 3 {
		t.Errorf("broadcasts = %d, want 3", len(broadcaster.deals))
	}
	for _, deal := range broadcaster.deals {
		if deal.Game == nil {
			t.Errorf("broadcast deal missing game payload")
		}
	}
}

type fakeSalePageSource struct {
	deals map[string][]dealfeed.FeedDeal
	err   error
}

func (f *fakeSalePageSource) FetchSalePage(ctx context.Context, store, pageURL string) ([]dealfeed.FeedDeal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.deals[store], nil
}

func TestDealsJobSupplementsFromSalePages(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{pages: [][]dealfeed.FeedDeal{
		{{ExternalID: "d1", Title: "Hades", Store: "steam", SalePrice: 12.49, NormalPrice: 24.99}},
	}}
	scraper := &fakeSalePageSource{deals: map[string][]dealfeed.FeedDeal{
		"gog": {
			{ExternalID: "g1", Title: "Stardew Valley", Store: "gog", SalePrice: 8.99, NormalPrice: 14.99},
		},
	}}
	games := &fakeGameEnsurer{}
	deals := &fakeDealStore{}

	job := NewDealsJob(feed, games, deals, nil, nil, nil, testLogger())
	job.AttachSalePages(scraper, []SalePage{{Store: "gog", URL: "https://example.test/sale"}})

	if err := job.Run(context.Background(), time.Now().UTC()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(deals.upserts) != 2 {
		t.Fatalf("upserts = %d, want 2 (feed + sale page)", len(deals.upserts))
	}
	if deals.upserts[1].Store != "gog" {
		t.Errorf("sale page deal store = %s, want gog", deals.upserts[1].Store)
	}
}

func TestDealsJobIgnoresSalePageFailure(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{pages: [][]dealfeed.FeedDeal{
		{{ExternalID: "d1", Title: "Hades", Store: "steam", SalePrice: 12.49, NormalPrice: 24.99}},
	}}
	games := &fakeGameEnsurer{}
	deals := &fakeDealStore{}

	job := NewDealsJob(feed, games, deals, nil, nil, nil, testLogger())
	job.AttachSalePages(&fakeSalePageSource{err: errors.New("blocked")},
		[]SalePage{{Store: "gog", URL: "https://example.test/sale"}})

	if err := job.Run(context.Background(), time.Now().UTC()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(deals.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1 (scrape failure must not abort)", len(deals.upserts))
	}
}

func TestDealsJobContinuesPastSingleFailure(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{pages: [][]dealfeed.FeedDeal{
		{
			{ExternalID: "d1", Title: "Broken Title", Store: "steam", SalePrice: 1.0, NormalPrice: 2.0},
			{ExternalID: "d2", Title: "Working Title", Store: "gog", SalePrice: 3.0, NormalPrice: 6.0},
		},
	}}
	games := &fakeGameEnsurer{failFor: "Broken Title"}
	deals := &fakeDealStore{}

	job := NewDealsJob(feed, games, deals, nil, nil, nil, testLogger())
	if err := job.Run(context.Background(), time.Now()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(deals.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1 (failure must not abort the batch)", len(deals.upserts))
	}
	if deals.upserts[0].ExternalID != "d2" {
		t.Errorf("surviving deal = %s, want d2", deals.upserts[0].ExternalID)
	}
}
