package server

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kapu/handheld-deals-go/internal/domain"
)

// alertRequest: 가격 알림 구독 요청
type alertRequest struct {
	Slug        string  `json:"slug" binding:"required"`
	TargetPrice float64 `json:"target_price" binding:"required"`
	Contact     string  `json:"contact" binding:"required"`
}

// CreateAlert: 가격 알림 구독을 생성합니다.
func (h *APIHandler) CreateAlert(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.TargetPrice <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_price must be positive"})
		return
	}
	if !strings.Contains(req.Contact, "@") && !strings.HasPrefix(req.Contact, "https://") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contact must be an email or webhook URL"})
		return
	}

	ctx := c.Request.Context()
	game, err := h.games.FindBySlug(ctx, req.Slug)
	if err != nil {
		h.logger.Error("alert_game_lookup_failed", slog.String("slug", req.Slug), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if game == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}

	alert := &domain.PriceAlert{
		GameID:      game.ID,
		TargetPrice: req.TargetPrice,
		Contact:     req.Contact,
	}
	if err := h.alerts.Create(ctx, alert); err != nil {
		h.logger.Error("alert_create_failed", slog.String("slug", req.Slug), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create alert"})
		return
	}

	h.logger.Info("alert_created",
		slog.String("slug", req.Slug),
		slog.Float64("target_price", req.TargetPrice),
	)
	c.JSON(http.StatusCreated, gin.H{"status": "ok", "alert_id": alert.ID})
}

// DeleteAlert: 가격 알림 구독을 해지합니다. 본인 확인을 위해 contact가 일치해야 합니다.
func (h *APIHandler) DeleteAlert(c *gin.Context) {
	alertID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}
	contact := c.Query("contact")
	if contact == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contact is required"})
		return
	}

	err = h.alerts.Deactivate(c.Request.Context(), uint(alertID), contact)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	if err != nil {
		h.logger.Error("alert_delete_failed", slog.Uint64("alert_id", alertID), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete alert"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListAlerts: 수신자의 활성 알림 목록을 반환합니다.
func (h *APIHandler) ListAlerts(c *gin.Context) {
	contact := c.Query("contact")
	if contact == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contact is required"})
		return
	}

	alerts, err := h.alerts.ListForContact(c.Request.Context(), contact)
	if err != nil {
		h.logger.Error("alert_list_failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "alerts": alerts})
}
