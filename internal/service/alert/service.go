package alert

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/internal/service/cache"
)

// Dispatcher: 알림 발송 인터페이스. 웹훅 외 다른 채널 확장을 위해 분리.
type Dispatcher interface {
	Dispatch(ctx context.Context, alert domain.PriceAlert, deal *domain.Deal) error
}

// Service: 딜 갱신 시 목표가 도달 알림을 찾아 발송한다.
// 발송 기록은 캐시에 남겨 동일 (알림, 딜) 조합의 중복 발송을 막는다.
type Service struct {
	repo       *Repository
	cache      *cache.Service
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewService: 알림 서비스를 생성한다.
func NewService(repo *Repository, cacheSvc *cache.Service, dispatcher Dispatcher, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		cache:      cacheSvc,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// NotifyDeal: 딜 하나에 대해 조건을 만족하는 알림을 전부 발송한다.
// 개별 알림의 발송 실패는 로그만 남기고 나머지 알림 처리를 계속한다.
func (s *Service) NotifyDeal(ctx context.Context, deal *domain.Deal) (int, error) {
	alerts, err := s.repo.MatchingDeal(ctx, deal)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, alert := range alerts {
		fresh, err := s.cache.MarkAlertDispatched(ctx, alert.ID, deal.ID)
		if err != nil {
			s.logger.Warn("alert_dedup_check_failed",
				slog.Uint64("alert_id", uint64(alert.ID)),
				slog.Any("error", err))
			continue
		}
		if !fresh {
			continue
		}

		if err := s.dispatcher.Dispatch(ctx, alert, deal); err != nil {
			s.logger.Error("alert_dispatch_failed",
				slog.Uint64("alert_id", uint64(alert.ID)),
				slog.Uint64("deal_id", uint64(deal.ID)),
				slog.Any("error", err))
			continue
		}

		if err := s.repo.MarkNotified(ctx, alert.ID, time.Now().UTC()); err != nil {
			s.logger.Warn("alert_mark_notified_failed",
				slog.Uint64("alert_id", uint64(alert.ID)),
				slog.Any("error", err))
		}
		sent++
	}

	if sent > 0 {
		s.logger.Info("alerts_sent",
			slog.Uint64("deal_id", uint64(deal.ID)),
			slog.Int("count", sent))
	}
	return sent, nil
}

// WebhookDispatcher: 알림 페이로드를 웹훅 URL로 POST하는 발송기
type WebhookDispatcher struct {
	httpClient *http.Client
	webhookURL string
	baseURL    string // 공개 사이트 기준 URL (딜 링크 구성용)
}

// NewWebhookDispatcher: 웹훅 발송기를 생성한다.
func NewWebhookDispatcher(webhookURL, baseURL string) *WebhookDispatcher {
	return &WebhookDispatcher{
		httpClient: &http.Client{Timeout: constants.RequestTimeout.APIRequest},
		webhookURL: webhookURL,
		baseURL:    baseURL,
	}
}

type webhookPayload struct {
	Contact     string  `json:"contact"`
	GameTitle   string  `json:"game_title"`
	Store       string  `json:"store"`
	Price       float64 `json:"price"`
	TargetPrice float64 `json:"target_price"`
	DealURL     string  `json:"deal_url"`
	SiteURL     string  `json:"site_url"`
}

// Dispatch: 알림을 웹훅으로 발송한다. URL 미설정 시 no-op.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, alert domain.PriceAlert, deal *domain.Deal) error {
	if d.webhookURL == "" {
		return nil
	}

	title := ""
	siteURL := d.baseURL
	if deal.Game != nil {
		title = deal.Game.Title
		siteURL = fmt.Sprintf("%s/games/%s", d.baseURL, deal.Game.Slug)
	}

	body, err := json.Marshal(webhookPayload{
		Contact:     alert.Contact,
		GameTitle:   title,
		Store:       deal.Store,
		Price:       deal.Price,
		TargetPrice: alert.TargetPrice,
		DealURL:     deal.URL,
		SiteURL:     siteURL,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook rejected: status %d", resp.StatusCode)
	}
	return nil
}
