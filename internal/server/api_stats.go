package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/internal/health"
)

// GetStats: 사이트 통계를 반환합니다. (성능 최적화를 위해 병렬 조회)
func (h *APIHandler) GetStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.RequestTimeout.APIRequest)
	defer cancel()

	var (
		reliability map[domain.DataReliability]int
		activeDeals int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reliability, err = h.games.CountByReliability(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		activeDeals, err = h.deals.CountActive(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("stats_query_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}

	totalGames := 0
	for _, count := range reliability {
		totalGames += count
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"games":        totalGames,
		"active_deals": activeDeals,
		"reliability":  reliability,
		"devices":      len(domain.Devices()),
		"version":      health.GetVersion(),
		"uptime":       health.GetUptime(),
	})
}
