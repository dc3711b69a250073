package server

import (
	"log/slog"

	"github.com/kapu/handheld-deals-go/internal/config"
	"github.com/kapu/handheld-deals-go/internal/service/game"
	"github.com/kapu/handheld-deals-go/internal/service/syncjob"
	"github.com/kapu/handheld-deals-go/internal/service/system"
)

// AdminHandler: 관리자 대시보드 요청을 처리하는 핸들러입니다.
// 핸들러 메서드는 도메인별 파일로 분리됨:
//   - admin_auth.go: 로그인/로그아웃
//   - admin_sync.go: 동기화 잡 수동 트리거 + 신뢰도 리포트
//   - admin_stats.go: 시스템 리소스 스트리밍
type AdminHandler struct {
	adminUser     string
	adminPassHash string
	sessionSecret string
	forceHTTPS    bool
	rateLimiter   *LoginRateLimiter
	sessions      *ValkeySessionStore
	scheduler     *syncjob.Scheduler
	games         *game.Repository
	systemStats   *system.Collector
	logger        *slog.Logger
}

// NewAdminHandler: 새로운 관리자 핸들러를 생성합니다.
func NewAdminHandler(
	cfg *config.Config,
	sessions *ValkeySessionStore,
	scheduler *syncjob.Scheduler,
	games *game.Repository,
	systemStats *system.Collector,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		adminUser:     cfg.AdminUsername,
		adminPassHash: cfg.AdminPasswordHash,
		sessionSecret: cfg.SessionSecret,
		forceHTTPS:    cfg.ForceHTTPS,
		rateLimiter:   NewLoginRateLimiter(),
		sessions:      sessions,
		scheduler:     scheduler,
		games:         games,
		systemStats:   systemStats,
		logger:        logger,
	}
}
