package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// LoggerMiddleware: slog 기반 HTTP 접속 로깅 미들웨어.
// skipPaths는 다음 형식을 지원합니다:
//   - "/exact/path": 정확히 일치하는 경로 스킵
//   - "*/suffix": 해당 suffix로 끝나는 경로 스킵 (예: "*/ws")
//   - "/prefix*": 해당 prefix로 시작하는 경로 스킵 (예: "/static*")
func LoggerMiddleware(ctx context.Context, logger *slog.Logger, skipPaths ...string) gin.HandlerFunc {
	exactSkip := make(map[string]bool)
	var prefixSkip, suffixSkip []string

	for _, pattern := range skipPaths {
		switch {
		case len(pattern) > 1 && pattern[0] == '*':
			suffixSkip = append(suffixSkip, pattern[1:])
		case len(pattern) > 1 && pattern[len(pattern)-1] == '*':
			prefixSkip = append(prefixSkip, pattern[:len(pattern)-1])
		default:
			exactSkip[pattern] = true
		}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if shouldSkipPath(path, exactSkip, prefixSkip, suffixSkip) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		// WebSocket 업그레이드 등으로 연결이 hijacked 상태면 로깅 스킵
		if c.Writer.Written() && c.Writer.Size() < 0 {
			return
		}

		status := c.Writer.Status()

		// 레벨 결정: 정상 요청은 DEBUG, 4xx는 WARN, 5xx는 ERROR
		level := slog.LevelDebug
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}

		if !logger.Enabled(ctx, level) {
			return
		}

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.String("ip", c.ClientIP()),
			slog.String("ua", truncateUA(c.Request.UserAgent())),
		}

		// 느린 요청(100ms+)만 레이턴시 포함
		if latency >= 100*time.Millisecond {
			attrs = append(attrs, slog.Duration("latency", latency))
		}

		logger.LogAttrs(ctx, level, "HTTP", attrs...)
	}
}

// shouldSkipPath: 경로가 스킵 대상인지 확인합니다.
func shouldSkipPath(path string, exactSkip map[string]bool, prefixSkip, suffixSkip []string) bool {
	if exactSkip[path] {
		return true
	}
	for _, prefix := range prefixSkip {
		if len(path) >= len(prefix) && path[:len(prefix)] == prefix {
			return true
		}
	}
	for _, suffix := range suffixSkip {
		if len(path) >= len(suffix) && path[len(path)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}

// truncateUA: User-Agent를 적절한 길이로 자름 (로그 가독성)
func truncateUA(ua string) string {
	const maxLen = 80
	if len(ua) > maxLen {
		return ua[:maxLen] + "..."
	}
	return ua
}
