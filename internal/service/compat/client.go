// Package compat: 커뮤니티 호환성 등급 API 클라이언트 (카탈로그 ID 기준 조회).
package compat

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/pkg/errors"
)

// Summary: 커뮤니티 호환성 요약
type Summary struct {
	Tier       domain.CommunityTier
	Confidence domain.ReviewConfidence
	Reports    int
}

// Client: 호환성 등급 API 클라이언트
type Client struct {
	httpClient  *http.Client
	baseURL     string
	logger      *slog.Logger
	rateLimiter *rate.Limiter
}

// NewClient: 호환성 클라이언트를 생성한다.
func NewClient(logger *slog.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: constants.APIConfig.CompatTimeout},
		baseURL:     constants.APIConfig.CompatBaseURL,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Every(constants.APIConfig.MinCallInterval), 1),
	}
}

type summaryDTO struct {
	Tier       string `json:"tier"`
	Confidence string `json:"confidence"`
	Total      int    `json:"total"`
}

// FetchSummary: 카탈로그 ID로 커뮤니티 호환성 요약을 조회한다.
// 리포트가 아직 없는 게임이면 (nil, nil).
func (c *Client) FetchSummary(ctx context.Context, catalogID string) (*Summary, error) {
	if catalogID == "" {
		return nil, nil
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	reqURL := fmt.Sprintf("%s/reports/summaries/%s.json", c.baseURL, url.PathEscape(catalogID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAPIError("fetch_summary", 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug("compat_no_reports", slog.String("catalog_id", catalogID))
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError("fetch_summary", resp.StatusCode, nil)
	}

	var dto summaryDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, errors.NewAPIError("fetch_summary", 0, err)
	}

	return &Summary{
		Tier:       domain.CommunityTier(dto.Tier),
		Confidence: mapConfidence(dto.Confidence),
		Reports:    dto.Total,
	}, nil
}

// mapConfidence: API 측 신뢰도 표기를 내부 등급으로 변환한다.
func mapConfidence(confidence string) domain.ReviewConfidence {
	switch confidence {
	case "strong", "good":
		return domain.ConfidenceHigh
	case "moderate":
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
