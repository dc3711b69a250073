package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/service/cache"
)

// GetDeals: 활성 딜 목록을 할인율 내림차순으로 반환합니다.
// ?page= 페이징, 첫 페이지는 캐시를 우선 사용한다.
func (h *APIHandler) GetDeals(c *gin.Context) {
	ctx := c.Request.Context()

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	if page < 0 {
		page = 0
	}
	limit := constants.PaginationConfig.ItemsPerPage
	offset := page * limit

	if h.cache != nil && page == 0 {
		if deals, ok := h.cache.GetDeals(ctx, cache.KeyActiveDeals); ok {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "page": 0, "deals": deals})
			return
		}
	}

	deals, err := h.deals.ActiveDeals(ctx, limit, offset)
	if err != nil {
		h.logger.Error("deals_query_failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load deals"})
		return
	}

	if h.cache != nil && page == 0 {
		h.cache.SetDeals(ctx, cache.KeyActiveDeals, deals, constants.CacheTTL.ActiveDeals)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "page": page, "deals": deals})
}

// GetPriceHistory: 게임의 가격 추이를 반환합니다. ?days= 조회 기간 (기본 90일)
func (h *APIHandler) GetPriceHistory(c *gin.Context) {
	slug := c.Param("slug")
	ctx := c.Request.Context()

	days, _ := strconv.Atoi(c.DefaultQuery("days", "90"))
	if days <= 0 || days > 365 {
		days = 90
	}

	game, err := h.games.FindBySlug(ctx, slug)
	if err != nil {
		h.logger.Error("history_game_lookup_failed", slog.String("slug", slug), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if game == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}

	since := time.Now().AddDate(0, 0, -days)
	entries, err := h.deals.HistoryForGame(ctx, game.ID, since)
	if err != nil {
		h.logger.Error("history_query_failed", slog.String("slug", slug), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load price history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"slug":    slug,
		"days":    days,
		"history": entries,
	})
}
