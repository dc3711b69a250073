// Package dealfeed: 딜 애그리게이터 API 클라이언트와 스토어 세일 페이지 크롤러.
package dealfeed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/pkg/errors"
)

// FeedDeal: 애그리게이터가 반환하는 딜 한 건
type FeedDeal struct {
	ExternalID  string
	Title       string
	Store       string
	SalePrice   float64
	NormalPrice float64
	SavingsPct  int
	CatalogID   string // 스팀 앱 ID (있을 때만)
	URL         string
}

// Client: 딜 애그리게이터 API 클라이언트
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	logger      *slog.Logger
	rateLimiter *rate.Limiter
}

// NewClient: 애그리게이터 클라이언트를 생성한다. apiKey는 선택적이다.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: constants.APIConfig.DealFeedTimeout},
		baseURL:     constants.APIConfig.DealFeedBaseURL,
		apiKey:      apiKey,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Every(constants.APIConfig.MinCallInterval), 1),
	}
}

// 애그리게이터 응답. 숫자 필드가 문자열로 내려온다.
type feedDealDTO struct {
	DealID      string `json:"dealID"`
	Title       string `json:"title"`
	StoreID     string `json:"storeID"`
	SalePrice   string `json:"salePrice"`
	NormalPrice string `json:"normalPrice"`
	Savings     string `json:"savings"`
	SteamAppID  string `json:"steamAppID"`
}

// 애그리게이터 스토어 ID -> 내부 스토어 이름
var storeNames = map[string]string{
	"1":  "steam",
	"7":  "gog",
	"25": "epic",
	"11": "humble",
}

// FetchDealsPage: 딜 목록 한 페이지를 조회한다.
func (c *Client) FetchDealsPage(ctx context.Context, pageNumber, pageSize int) ([]FeedDeal, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	params := url.Values{}
	params.Set("pageNumber", strconv.Itoa(pageNumber))
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("onSale", "1")
	if c.apiKey != "" {
		params.Set("apiKey", c.apiKey)
	}

	reqURL := c.baseURL + "/api/1.0/deals?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAPIError("fetch_deals", 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.NewAPIError("fetch_deals", resp.StatusCode, fmt.Errorf("body=%s", string(body)))
	}

	var dtos []feedDealDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, errors.NewAPIError("fetch_deals", 0, err)
	}

	deals := make([]FeedDeal, 0, len(dtos))
	for _, dto := range dtos {
		deal, ok := c.convert(dto)
		if !ok {
			continue
		}
		deals = append(deals, deal)
	}

	c.logger.Debug("deals_page_fetched",
		slog.Int("page", pageNumber),
		slog.Int("count", len(deals)),
	)
	return deals, nil
}

func (c *Client) convert(dto feedDealDTO) (FeedDeal, bool) {
	salePrice, err := strconv.ParseFloat(dto.SalePrice, 64)
	if err != nil {
		c.logger.Warn("deal_price_unparseable", slog.String("deal_id", dto.DealID), slog.String("price", dto.SalePrice))
		return FeedDeal{}, false
	}
	normalPrice, _ := strconv.ParseFloat(dto.NormalPrice, 64)
	savings, _ := strconv.ParseFloat(dto.Savings, 64)

	store, ok := storeNames[dto.StoreID]
	if !ok {
		store = "other"
	}

	return FeedDeal{
		ExternalID:  dto.DealID,
		Title:       dto.Title,
		Store:       store,
		SalePrice:   salePrice,
		NormalPrice: normalPrice,
		SavingsPct:  int(savings + 0.5),
		CatalogID:   dto.SteamAppID,
		URL:         c.baseURL + "/redirect?dealID=" + url.QueryEscape(dto.DealID),
	}, true
}
