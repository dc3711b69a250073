package syncjob

import (
	"context"
	"log/slog"
	"time"

	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/internal/service/cache"
	"github.com/kapu/handheld-deals-go/internal/service/dealfeed"
)

const (
	dealPages    = 3
	dealPageSize = 60
)

// FeedSource: 딜 애그리게이터 조회 인터페이스
type FeedSource interface {
	FetchDealsPage(ctx context.Context, pageNumber, pageSize int) ([]dealfeed.FeedDeal, error)
}

// GameEnsurer: 딜에 대응하는 게임 레코드를 보장하는 인터페이스
type GameEnsurer interface {
	EnsureByTitle(ctx context.Context, title, catalogID string) (*domain.Game, error)
}

// DealStore: 딜/가격 추이 영속화 인터페이스
type DealStore interface {
	UpsertDeal(ctx context.Context, deal *domain.Deal) error
	RecordPrice(ctx context.Context, entry *domain.PriceHistoryEntry) error
	DeactivateStale(ctx context.Context, fetchedBefore time.Time) (int64, error)
}

// SalePageSource: API 피드에 잡히지 않는 스토어 세일 페이지 스크래핑 인터페이스
type SalePageSource interface {
	FetchSalePage(ctx context.Context, store, pageURL string) ([]dealfeed.FeedDeal, error)
}

// SalePage: 스크래핑 대상 세일 페이지
type SalePage struct {
	Store string
	URL   string
}

// Notifier: 목표가 알림 발송 인터페이스
type Notifier interface {
	NotifyDeal(ctx context.Context, deal *domain.Deal) (int, error)
}

// Broadcaster: 라이브 피드 구독자에게 새 딜을 중계하는 인터페이스
type Broadcaster interface {
	BroadcastDeal(deal *domain.Deal)
}

// DealsJob: 애그리게이터에서 현재 딜을 수집해 업서트하고, 가격 추이를 기록하고,
// 목표가 알림과 라이브 피드 중계를 트리거하는 잡.
type DealsJob struct {
	feed        FeedSource
	games       GameEnsurer
	deals       DealStore
	notifier    Notifier
	broadcaster Broadcaster
	cache       *cache.Service
	logger      *slog.Logger

	scraper   SalePageSource
	salePages []SalePage
}

// NewDealsJob: 딜 갱신 잡을 생성한다. notifier/broadcaster/cache는 nil일 수 있다.
func NewDealsJob(feed FeedSource, games GameEnsurer, deals DealStore, notifier Notifier, broadcaster Broadcaster, cacheSvc *cache.Service, logger *slog.Logger) *DealsJob {
	return &DealsJob{
		feed:        feed,
		games:       games,
		deals:       deals,
		notifier:    notifier,
		broadcaster: broadcaster,
		cache:       cacheSvc,
		logger:      logger,
	}
}

// AttachSalePages: 보조 수집원으로 스토어 세일 페이지를 등록한다.
func (j *DealsJob) AttachSalePages(scraper SalePageSource, pages []SalePage) {
	j.scraper = scraper
	j.salePages = pages
}

// Run: 딜 페이지를 수집해 반영한다. 개별 딜의 실패는 배치를 중단시키지 않는다.
func (j *DealsJob) Run(ctx context.Context, now time.Time) error {
	upserted, failures := 0, 0

	for page := 0; page < dealPages; page++ {
		feedDeals, err := j.feed.FetchDealsPage(ctx, page, dealPageSize)
		if err != nil {
			j.logger.Error("deal_page_fetch_failed", slog.Int("page", page), slog.Any("error", err))
			break
		}
		if len(feedDeals) == 0 {
			break
		}

		for _, feedDeal := range feedDeals {
			if err := j.applyDeal(ctx, feedDeal, now); err != nil {
				j.logger.Warn("deal_apply_failed",
					slog.String("title", feedDeal.Title),
					slog.String("store", feedDeal.Store),
					slog.Any("error", err))
				failures++
				continue
			}
			upserted++
		}
	}

	if j.scraper != nil {
		for _, salePage := range j.salePages {
			feedDeals, err := j.scraper.FetchSalePage(ctx, salePage.Store, salePage.URL)
			if err != nil {
				j.logger.Warn("sale_page_scrape_failed",
					slog.String("store", salePage.Store),
					slog.Any("error", err))
				continue
			}
			for _, feedDeal := range feedDeals {
				if err := j.applyDeal(ctx, feedDeal, now); err != nil {
					failures++
					continue
				}
				upserted++
			}
		}
	}

	// 이번 실행에서 내려오지 않은 딜은 종료 처리
	deactivated, err := j.deals.DeactivateStale(ctx, now)
	if err != nil {
		j.logger.Error("deal_deactivation_failed", slog.Any("error", err))
	}

	j.invalidateCaches(ctx)

	j.logger.Info("deal_refresh_completed",
		slog.Int("upserted", upserted),
		slog.Int("failures", failures),
		slog.Int64("deactivated", deactivated),
		slog.Duration("elapsed", time.Since(now)),
	)
	return nil
}

func (j *DealsJob) applyDeal(ctx context.Context, feedDeal dealfeed.FeedDeal, now time.Time) error {
	game, err := j.games.EnsureByTitle(ctx, feedDeal.Title, feedDeal.CatalogID)
	if err != nil {
		return err
	}

	deal := &domain.Deal{
		GameID:      game.ID,
		Store:       feedDeal.Store,
		ExternalID:  feedDeal.ExternalID,
		Price:       feedDeal.SalePrice,
		ListPrice:   feedDeal.NormalPrice,
		DiscountPct: feedDeal.SavingsPct,
		Currency:    "USD",
		URL:         feedDeal.URL,
		FetchedAt:   now,
		Active:      true,
	}
	if err := j.deals.UpsertDeal(ctx, deal); err != nil {
		return err
	}

	if err := j.deals.RecordPrice(ctx, &domain.PriceHistoryEntry{
		GameID:     game.ID,
		Store:      feedDeal.Store,
		Price:      feedDeal.SalePrice,
		RecordedAt: now,
	}); err != nil {
		j.logger.Warn("price_history_record_failed",
			slog.Uint64("game_id", uint64(game.ID)),
			slog.Any("error", err))
	}

	deal.Game = game
	if j.notifier != nil {
		if _, err := j.notifier.NotifyDeal(ctx, deal); err != nil {
			j.logger.Warn("deal_notify_failed", slog.Uint64("deal_id", uint64(deal.ID)), slog.Any("error", err))
		}
	}
	if j.broadcaster != nil {
		j.broadcaster.BroadcastDeal(deal)
	}
	return nil
}

func (j *DealsJob) invalidateCaches(ctx context.Context) {
	if j.cache == nil {
		return
	}
	if err := j.cache.Del(ctx, cache.KeyActiveDeals); err != nil {
		j.logger.Warn("deal_cache_invalidate_failed", slog.Any("error", err))
	}
	if _, err := j.cache.InvalidatePattern(ctx, cache.SearchPattern()); err != nil {
		j.logger.Warn("search_cache_invalidate_failed", slog.Any("error", err))
	}
}
