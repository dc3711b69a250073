// Package app: 애플리케이션 구성요소를 조립하고 런타임 수명주기를 관리한다.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kapu/handheld-deals-go/internal/config"
	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/server"
	"github.com/kapu/handheld-deals-go/internal/service/alert"
	"github.com/kapu/handheld-deals-go/internal/service/cache"
	"github.com/kapu/handheld-deals-go/internal/service/cms"
	"github.com/kapu/handheld-deals-go/internal/service/compat"
	"github.com/kapu/handheld-deals-go/internal/service/database"
	"github.com/kapu/handheld-deals-go/internal/service/dealfeed"
	"github.com/kapu/handheld-deals-go/internal/service/game"
	"github.com/kapu/handheld-deals-go/internal/service/metadata"
	"github.com/kapu/handheld-deals-go/internal/service/pricing"
	"github.com/kapu/handheld-deals-go/internal/service/search"
	"github.com/kapu/handheld-deals-go/internal/service/syncjob"
	"github.com/kapu/handheld-deals-go/internal/service/system"
	"github.com/kapu/handheld-deals-go/internal/util"
)

// ProvideLogger: 설정에 따라 콘솔/파일 로거를 구성합니다.
func ProvideLogger(cfg *config.Config) (*slog.Logger, error) {
	return util.EnableFileLoggingWithLevel(util.LogConfig{
		Dir:        cfg.LogDir,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	}, "server.log", cfg.LogLevel)
}

// ProvideCacheService: Valkey 캐시 서비스를 생성합니다.
func ProvideCacheService(cfg *config.Config, logger *slog.Logger) (*cache.Service, func(), error) {
	svc, err := cache.NewCacheService(cache.Config{
		Address:  cfg.ValkeyAddress,
		Password: cfg.ValkeyPassword,
		DB:       cfg.ValkeyDB,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = svc.Close() }
	return svc, cleanup, nil
}

// ProvidePostgresService: PostgreSQL 연결과 스키마 마이그레이션을 수행합니다.
func ProvidePostgresService(cfg *config.Config, logger *slog.Logger) (*database.PostgresService, func(), error) {
	svc, err := database.NewPostgresService(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := svc.Migrate(); err != nil {
		_ = svc.Close()
		return nil, nil, err
	}
	cleanup := func() { _ = svc.Close() }
	return svc, cleanup, nil
}

// ProvideContentStoreFactory: 실행마다 새 토큰 범위의 CMS 클라이언트를 만드는 팩토리.
// 토큰이 잡 실행 단위로 발급되므로 전역 인증 상태가 남지 않는다.
func ProvideContentStoreFactory(cfg *config.Config, logger *slog.Logger) syncjob.ContentStoreFactory {
	return func(ctx context.Context) syncjob.ContentStore {
		tokens := cms.NewRunTokenSource(ctx, cms.TokenConfig{
			TokenURL:     cfg.CMSTokenURL,
			ClientID:     cfg.CMSClientID,
			ClientSecret: cfg.CMSClientSecret,
			Scopes:       cms.WriteScopes,
		})
		api := cms.NewAPIClient(
			&http.Client{Timeout: constants.APIConfig.CMSTimeout},
			cfg.CMSBaseURL,
			tokens,
			logger,
		)
		return cms.NewClient(api, logger)
	}
}

// ProvideAlertService: 목표가 알림 서비스를 구성합니다.
func ProvideAlertService(cfg *config.Config, repo *alert.Repository, cacheSvc *cache.Service, logger *slog.Logger) *alert.Service {
	dispatcher := alert.NewWebhookDispatcher(cfg.AlertWebhookURL, cfg.BaseURL)
	return alert.NewService(repo, cacheSvc, dispatcher, logger)
}

// ProvideScheduler: 동기화 잡 스케줄러를 조립합니다.
func ProvideScheduler(
	cfg *config.Config,
	storeFactory syncjob.ContentStoreFactory,
	games *game.Repository,
	deals *pricing.Repository,
	alertSvc *alert.Service,
	hub *server.DealHub,
	cacheSvc *cache.Service,
	logger *slog.Logger,
) *syncjob.Scheduler {
	heartbeat := syncjob.NewHeartbeat(cfg.SyncHeartbeatURL, logger)
	scheduler := syncjob.NewScheduler(heartbeat, logger)

	feedClient := dealfeed.NewClient(cfg.DealFeedAPIKey, logger)
	metadataClient := metadata.NewClient(cfg.MetadataAPIKey, logger)
	compatClient := compat.NewClient(logger)

	dealsJob := syncjob.NewDealsJob(feedClient, games, deals, alertSvc, hub, cacheSvc, logger)
	if pages := parseSalePages(cfg.SalePages); len(pages) > 0 {
		dealsJob.AttachSalePages(dealfeed.NewScraperService(cacheSvc, logger), pages)
	}
	scheduler.Register(syncjob.JobDeals, dealsJob,
		constants.SyncConfig.DealRefreshInterval)
	scheduler.Register(syncjob.JobEstimator,
		syncjob.NewEstimatorJob(storeFactory, games, logger),
		constants.SyncConfig.EstimatorInterval)
	scheduler.Register(syncjob.JobStaleness,
		syncjob.NewStalenessJob(storeFactory, games, logger),
		constants.SyncConfig.StalenessInterval)
	scheduler.Register(syncjob.JobMetadata,
		syncjob.NewMetadataJob(metadataClient, games, storeFactory, logger),
		constants.SyncConfig.MetadataInterval)
	scheduler.Register(syncjob.JobCompat,
		syncjob.NewCompatJob(compatClient, games, storeFactory, logger),
		constants.SyncConfig.CompatInterval)

	return scheduler
}

// parseSalePages: "store|url" 항목을 파싱한다. 형식이 잘못된 항목은 버린다.
func parseSalePages(entries []string) []syncjob.SalePage {
	pages := make([]syncjob.SalePage, 0, len(entries))
	for _, entry := range entries {
		store, url, ok := strings.Cut(entry, "|")
		if !ok || store == "" || url == "" {
			continue
		}
		pages = append(pages, syncjob.SalePage{Store: store, URL: url})
	}
	return pages
}

// ProvideHandlers: HTTP 핸들러 묶음을 생성합니다.
func ProvideHandlers(
	cfg *config.Config,
	games *game.Repository,
	deals *pricing.Repository,
	alerts *alert.Repository,
	searchSvc *search.Service,
	cacheSvc *cache.Service,
	sessions *server.ValkeySessionStore,
	scheduler *syncjob.Scheduler,
	logger *slog.Logger,
) (*server.APIHandler, *server.AdminHandler, *server.PageHandler, error) {
	apiHandler := server.NewAPIHandler(games, deals, alerts, searchSvc, cacheSvc, logger)
	adminHandler := server.NewAdminHandler(cfg, sessions, scheduler, games, system.NewCollector(), logger)
	pageHandler, err := server.NewPageHandler(games, deals, searchSvc, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return apiHandler, adminHandler, pageHandler, nil
}
