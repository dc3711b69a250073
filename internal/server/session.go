package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const sessionCookieName = "admin_session"

// Session: 관리자 세션
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminAuthMiddleware: 관리자 API 엔드포인트의 세션을 검증합니다.
func AdminAuthMiddleware(sessions *ValkeySessionStore, sessionSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		signedSessionID, err := c.Cookie(sessionCookieName)
		if err != nil || signedSessionID == "" {
			c.JSON(401, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		// HMAC 서명 검증
		sessionID, valid := ValidateSessionSignature(signedSessionID, sessionSecret)
		if !valid {
			c.JSON(401, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		if !sessions.ValidateSession(c.Request.Context(), sessionID) {
			isSecure := c.Request.TLS != nil
			ClearSecureCookie(c, sessionCookieName, isSecure)
			c.JSON(401, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// SignSessionID: 세션 ID에 HMAC 서명을 추가합니다.
func SignSessionID(sessionID, secret string) string {
	if secret == "" {
		return sessionID
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sessionID))
	signature := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return sessionID + "." + signature
}

// ValidateSessionSignature: HMAC 서명을 검증하고 원본 세션 ID를 반환합니다.
func ValidateSessionSignature(fullID, secret string) (string, bool) {
	if secret == "" {
		return fullID, true
	}
	parts := strings.SplitN(fullID, ".", 2)
	if len(parts) != 2 {
		return "", false
	}

	sessionID, providedSig := parts[0], parts[1]
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sessionID))
	expectedSig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(providedSig), []byte(expectedSig)) {
		return "", false
	}
	return sessionID, true
}

// SetSecureCookie: 보안 쿠키 설정
func SetSecureCookie(c *gin.Context, name, value string, maxAge int, forceHTTPS bool) {
	isSecure := c.Request.TLS != nil || forceHTTPS
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, maxAge, "/", "", isSecure, true)
}

// ClearSecureCookie: 쿠키 삭제
func ClearSecureCookie(c *gin.Context, name string, forceHTTPS bool) {
	isSecure := c.Request.TLS != nil || forceHTTPS
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, "", -1, "/", "", isSecure, true)
}
