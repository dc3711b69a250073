package server

import (
	"log/slog"
	"time"

	"github.com/kapu/handheld-deals-go/internal/service/alert"
	"github.com/kapu/handheld-deals-go/internal/service/cache"
	"github.com/kapu/handheld-deals-go/internal/service/game"
	"github.com/kapu/handheld-deals-go/internal/service/pricing"
	"github.com/kapu/handheld-deals-go/internal/service/search"
)

// APIHandler: 공개 JSON API 요청을 처리하는 핸들러입니다.
// SSR 페이지와 프론트엔드 스크립트 모두에서 사용됩니다.
// 핸들러 메서드는 도메인별 파일로 분리됨:
//   - api_games.go: 게임 검색 + 상세 + 기기 목록
//   - api_deals.go: 활성 딜 + 가격 추이
//   - api_alerts.go: 가격 알림 구독/해지
//   - api_stats.go: 사이트 통계
type APIHandler struct {
	games     *game.Repository
	deals     *pricing.Repository
	alerts    *alert.Repository
	search    *search.Service
	cache     *cache.Service
	logger    *slog.Logger
	startTime time.Time
}

// NewAPIHandler: 새로운 API 핸들러를 생성합니다.
func NewAPIHandler(
	games *game.Repository,
	deals *pricing.Repository,
	alerts *alert.Repository,
	searchSvc *search.Service,
	cacheSvc *cache.Service,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		games:     games,
		deals:     deals,
		alerts:    alerts,
		search:    searchSvc,
		cache:     cacheSvc,
		logger:    logger,
		startTime: time.Now(),
	}
}
