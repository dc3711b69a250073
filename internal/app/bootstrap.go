package app

import (
	"context"
	"log/slog"

	"github.com/kapu/handheld-deals-go/internal/config"
	"github.com/kapu/handheld-deals-go/internal/server"
	"github.com/kapu/handheld-deals-go/internal/service/alert"
	"github.com/kapu/handheld-deals-go/internal/service/cache"
	"github.com/kapu/handheld-deals-go/internal/service/game"
	"github.com/kapu/handheld-deals-go/internal/service/pricing"
	"github.com/kapu/handheld-deals-go/internal/service/search"
	"github.com/kapu/handheld-deals-go/internal/service/syncjob"
)

// coreInfrastructure 는 공통 인프라 의존성을 담는다.
type coreInfrastructure struct {
	cacheService *cache.Service
	games        *game.Repository
	deals        *pricing.Repository
	alerts       *alert.Repository
	alertService *alert.Service
	searchSvc    *search.Service
	sessions     *server.ValkeySessionStore
	hub          *server.DealHub
	scheduler    *syncjob.Scheduler
	cleanupCache func()
	cleanupDB    func()
}

// initCoreInfrastructure 는 공통 인프라를 초기화한다.
// 실패 시 이미 열린 리소스를 역순으로 정리하고 에러를 반환한다.
func initCoreInfrastructure(cfg *config.Config, logger *slog.Logger) (*coreInfrastructure, error) {
	cacheService, cleanupCache, err := ProvideCacheService(cfg, logger)
	if err != nil {
		return nil, err
	}

	postgres, cleanupDB, err := ProvidePostgresService(cfg, logger)
	if err != nil {
		cleanupCache()
		return nil, err
	}

	games := game.NewRepository(postgres, logger)
	deals := pricing.NewRepository(postgres, logger)
	alerts := alert.NewRepository(postgres, logger)

	alertService := ProvideAlertService(cfg, alerts, cacheService, logger)
	searchSvc := search.NewService(games, cacheService, logger)
	sessions := server.NewValkeySessionStore(cacheService.GetClient(), logger)
	hub := server.NewDealHub(logger)

	storeFactory := ProvideContentStoreFactory(cfg, logger)
	scheduler := ProvideScheduler(cfg, storeFactory, games, deals, alertService, hub, cacheService, logger)

	return &coreInfrastructure{
		cacheService: cacheService,
		games:        games,
		deals:        deals,
		alerts:       alerts,
		alertService: alertService,
		searchSvc:    searchSvc,
		sessions:     sessions,
		hub:          hub,
		scheduler:    scheduler,
		cleanupCache: cleanupCache,
		cleanupDB:    cleanupDB,
	}, nil
}

// BuildRuntime: 전체 서버 런타임을 조립합니다.
func BuildRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	infra, err := initCoreInfrastructure(cfg, logger)
	if err != nil {
		return nil, err
	}
	cleanup := func() {
		infra.cleanupDB()
		infra.cleanupCache()
	}

	apiHandler, adminHandler, pageHandler, err := ProvideHandlers(
		cfg, infra.games, infra.deals, infra.alerts,
		infra.searchSvc, infra.cacheService, infra.sessions, infra.scheduler, logger)
	if err != nil {
		cleanup()
		return nil, err
	}

	router, err := NewRouter(ctx, cfg, apiHandler, adminHandler, pageHandler, infra.hub, infra.sessions, logger)
	if err != nil {
		cleanup()
		return nil, err
	}

	return &Runtime{
		Config:    cfg,
		Logger:    logger,
		Scheduler: infra.scheduler,
		Server:    NewHTTPServer(cfg, router),
		cleanup:   cleanup,
	}, nil
}
