package dealfeed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/service/cache"
)

// ScraperService: 애그리게이터에 커버리지가 없는 스토어의 세일 페이지를
// 직접 크롤링하는 백업 수집기
type ScraperService struct {
	httpClient *http.Client
	cache      *cache.Service
	logger     *slog.Logger
}

const scraperCacheKeyPrefix = "deals:scraper:"

// NewScraperService: 새로운 ScraperService 인스턴스를 생성한다.
func NewScraperService(cacheSvc *cache.Service, logger *slog.Logger) *ScraperService {
	return &ScraperService{
		httpClient: &http.Client{
			Timeout: constants.StorefrontScraperConfig.RequestTimeout,
		},
		cache:  cacheSvc,
		logger: logger,
	}
}

// FetchSalePage: 스토어 세일 페이지를 크롤링하여 딜 목록을 추출한다. (캐시 우선 확인)
// 페이지 구조: .sale-item 블록 안의 .title, .price, .list-price, a[href]
func (s *ScraperService) FetchSalePage(ctx context.Context, store, pageURL string) ([]FeedDeal, error) {
	cacheKey := scraperCacheKeyPrefix + store
	if s.cache != nil {
		var cached []FeedDeal
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && cached != nil {
			s.logger.Debug("scraper_cache_hit", slog.String("store", store))
			return cached, nil
		}
	}

	s.logger.Info("scraping_sale_page",
		slog.String("store", store),
		slog.String("url", pageURL))

	deals, err := s.scrape(ctx, store, pageURL)
	if err != nil {
		return nil, fmt.Errorf("scraper failed: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, deals, constants.StorefrontScraperConfig.CacheExpiry); err != nil {
			s.logger.Warn("scraper_cache_store_failed", slog.String("store", store), slog.Any("error", err))
		}
	}

	s.logger.Info("scraping_completed",
		slog.String("store", store),
		slog.Int("deals", len(deals)))
	return deals, nil
}

func (s *ScraperService) scrape(ctx context.Context, store, pageURL string) ([]FeedDeal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create scraper request: %w", err)
	}
	req.Header.Set("User-Agent", constants.StorefrontScraperConfig.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("HTML parse failed: %w", err)
	}

	var deals []FeedDeal
	doc.Find(".sale-item").Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find(".title").Text())
		if title == "" {
			return
		}

		salePrice, ok := parsePrice(sel.Find(".price").Text())
		if !ok {
			s.logger.Debug("scraper_price_skipped", slog.String("title", title))
			return
		}
		listPrice, _ := parsePrice(sel.Find(".list-price").Text())

		href, _ := sel.Find("a").First().Attr("href")

		savings := 0
		if listPrice > 0 && salePrice < listPrice {
			savings = int((listPrice-salePrice)/listPrice*100 + 0.5)
		}

		deals = append(deals, FeedDeal{
			Title:       title,
			Store:       store,
			SalePrice:   salePrice,
			NormalPrice: listPrice,
			SavingsPct:  savings,
			URL:         href,
		})
	})

	return deals, nil
}

// parsePrice: "$9.99", "9,99 €" 류의 가격 표기를 파싱한다.
func parsePrice(text string) (float64, bool) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			return r
		default:
			return -1
		}
	}, cleaned)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return 0, false
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}
