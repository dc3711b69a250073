package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/service/syncjob"
)

// TriggerSync: 동기화 잡을 수동으로 실행합니다. POST /admin/api/sync/:job
func (h *AdminHandler) TriggerSync(c *gin.Context) {
	jobName := syncjob.JobName(c.Param("job"))

	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sync scheduler not available"})
		return
	}

	// 수동 트리거는 요청 컨텍스트와 분리해 백그라운드에서 실행한다
	go func() {
		if err := h.scheduler.Trigger(context.Background(), jobName); err != nil {
			h.logger.Warn("manual_sync_failed",
				slog.String("job", string(jobName)),
				slog.Any("error", err))
		}
	}()

	h.logger.Info("manual_sync_triggered", slog.String("job", string(jobName)))
	c.JSON(http.StatusAccepted, gin.H{"status": "ok", "job": string(jobName)})
}

// ListSyncJobs: 등록된 동기화 잡 목록을 반환합니다.
func (h *AdminHandler) ListSyncJobs(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sync scheduler not available"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "jobs": h.scheduler.JobNames()})
}

// GetReliabilityReport: 신뢰도 등급별 게임 분포를 반환합니다.
// 재검증 패스가 얼마나 강등했는지 추적하는 관리자 리포트입니다.
func (h *AdminHandler) GetReliabilityReport(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.RequestTimeout.AdminRequest)
	defer cancel()

	counts, err := h.games.CountByReliability(ctx)
	if err != nil {
		h.logger.Error("reliability_report_failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "reliability": counts})
}
