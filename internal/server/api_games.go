package server

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/internal/estimator"
	"github.com/kapu/handheld-deals-go/internal/service/cache"
	"github.com/kapu/handheld-deals-go/pkg/errors"
)

// Search: 제목 검색 API. ?q= 필수, ?device= 선택.
func (h *APIHandler) Search(c *gin.Context) {
	query := c.Query("q")
	deviceID := c.Query("device")

	results, err := h.search.Search(c.Request.Context(), query, deviceID)
	if err != nil {
		var validationErr *errors.ValidationError
		if stderrors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "invalid_request",
				"field": validationErr.Field,
			})
			return
		}
		h.logger.Error("search_failed", slog.String("query", query), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"query":   query,
		"device":  deviceID,
		"results": results,
	})
}

// gameDetail: 게임 상세 응답 (딜/역대 최저가/기기별 추정치 포함)
type gameDetail struct {
	Game        *domain.Game         `json:"game"`
	Deals       []*domain.Deal       `json:"deals"`
	LowestPrice *float64             `json:"lowest_price,omitempty"`
	Estimates   []estimator.Estimate `json:"estimates,omitempty"` // 레코드 없는 기기 보충용
}

// GetGame: 슬러그로 게임 상세를 조회합니다.
func (h *APIHandler) GetGame(c *gin.Context) {
	slug := c.Param("slug")
	ctx := c.Request.Context()

	cacheKey := cache.GameDetailKey(slug)
	if h.cache != nil {
		var cached gameDetail
		if err := h.cache.Get(ctx, cacheKey, &cached); err == nil && cached.Game != nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	game, err := h.games.FindBySlug(ctx, slug)
	if err != nil {
		h.logger.Error("game_detail_failed", slog.String("slug", slug), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if game == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}

	detail := gameDetail{Game: game}

	if deals, err := h.deals.DealsForGame(ctx, game.ID); err == nil {
		detail.Deals = deals
	}
	if lowest, ok, err := h.deals.LowestRecordedPrice(ctx, game.ID); err == nil && ok {
		detail.LowestPrice = &lowest
	}

	// 성능 레코드가 없는 기기는 추정치로 보충한다
	tier := ""
	if game.CommunityTier != nil {
		tier = string(*game.CommunityTier)
	}
	input := estimator.Input{
		GenreTags:     game.Tags(),
		ReleaseYear:   game.ReleaseYear,
		DeckVerified:  game.IsDeckVerified(),
		CommunityTier: tier,
	}
	for _, est := range estimator.ForAllDevices(input) {
		if _, ok := game.PerformanceFor(est.DeviceID); !ok {
			detail.Estimates = append(detail.Estimates, est)
		}
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, cacheKey, detail, constants.CacheTTL.GameDetail); err != nil {
			h.logger.Warn("game_detail_cache_failed", slog.Any("error", err))
		}
	}

	c.JSON(http.StatusOK, detail)
}

// GetDevices: 지원 기기 목록을 반환합니다.
func (h *APIHandler) GetDevices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"devices": domain.Devices(),
	})
}
