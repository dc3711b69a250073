package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// HandleLogin: 관리자 로그인을 처리합니다.
func (h *AdminHandler) HandleLogin(c *gin.Context) {
	ip := c.ClientIP()

	// Rate limit 확인
	allowed, remaining := h.rateLimiter.IsAllowed(ip)
	if !allowed {
		h.logger.Warn("login_rate_limited",
			slog.String("ip", ip),
			slog.Duration("remaining", remaining),
		)
		c.Header("Retry-After", strconv.Itoa(int(remaining.Seconds())))
		c.JSON(429, gin.H{
			"error":       "Too many login attempts",
			"retry_after": remaining.Seconds(),
		})
		return
	}

	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request"})
		return
	}

	if req.Username != h.adminUser {
		h.handleLoginFailure(c, ip, req.Username, "invalid_username")
		return
	}

	// bcrypt 해시 비교
	if err := bcrypt.CompareHashAndPassword([]byte(h.adminPassHash), []byte(req.Password)); err != nil {
		h.handleLoginFailure(c, ip, req.Username, "invalid_password")
		return
	}

	h.rateLimiter.RecordSuccess(ip)

	// 세션 생성 및 HMAC 서명
	session, err := h.sessions.CreateSession(c.Request.Context())
	if err != nil {
		h.logger.Error("session_create_failed", slog.String("ip", ip), slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Session store unavailable"})
		return
	}
	signedSessionID := SignSessionID(session.ID, h.sessionSecret)
	SetSecureCookie(c, sessionCookieName, signedSessionID, 0, h.forceHTTPS) // 0 = 세션 쿠키

	h.logger.Info("admin_logged_in",
		slog.String("username", req.Username),
		slog.String("ip", ip),
	)
	c.JSON(200, gin.H{"status": "ok", "message": "Login successful"})
}

// handleLoginFailure: 로그인 실패 처리
func (h *AdminHandler) handleLoginFailure(c *gin.Context, ip, username, reason string) {
	failCount := h.rateLimiter.RecordFailure(ip)

	h.logger.Warn("login_failed",
		slog.String("username", username),
		slog.String("ip", ip),
		slog.String("reason", reason),
		slog.Int("fail_count", failCount),
	)

	// 점진적 지연: 실패 횟수에 따라 대기
	delay := time.Duration(failCount) * 500 * time.Millisecond
	if delay > 3*time.Second {
		delay = 3 * time.Second
	}
	time.Sleep(delay)

	c.JSON(200, gin.H{"success": false, "error": "Authentication failed"})
}

// HandleLogout: 관리자 로그아웃을 처리합니다.
func (h *AdminHandler) HandleLogout(c *gin.Context) {
	signedSessionID, _ := c.Cookie(sessionCookieName)
	if signedSessionID != "" {
		if sessionID, valid := ValidateSessionSignature(signedSessionID, h.sessionSecret); valid {
			h.sessions.DeleteSession(c.Request.Context(), sessionID)
		}
	}

	ClearSecureCookie(c, sessionCookieName, h.forceHTTPS)
	c.JSON(200, gin.H{"status": "ok", "message": "Logout successful"})
}
