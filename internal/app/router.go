package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/kapu/handheld-deals-go/internal/assets"
	"github.com/kapu/handheld-deals-go/internal/config"
	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/health"
	"github.com/kapu/handheld-deals-go/internal/server"
)

// NewRouter: 공개 API, SSR 페이지, 관리자 라우트를 모두 등록한 Gin 엔진을 구성합니다.
func NewRouter(
	ctx context.Context,
	cfg *config.Config,
	api *server.APIHandler,
	admin *server.AdminHandler,
	pages *server.PageHandler,
	hub *server.DealHub,
	sessions *server.ValkeySessionStore,
	logger *slog.Logger,
) (*gin.Engine, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	if err := router.SetTrustedProxies(constants.ServerConfig.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies failed: %w", err)
	}

	router.Use(gin.Recovery())
	router.Use(server.LoggerMiddleware(ctx, logger, "/health", "/static*", "*/ws"))
	router.Use(server.SecurityHeadersMiddleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws"})))

	allowOrigins := cfg.AllowedOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = constants.CORSConfig.AllowOrigins
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     constants.CORSConfig.AllowMethods,
		AllowHeaders:     constants.CORSConfig.AllowHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, health.Get())
	})

	// 정적 자산 (임베드)
	staticFS, err := assets.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("static assets unavailable: %w", err)
	}
	router.StaticFS("/static", http.FS(staticFS))

	// SSR 페이지
	router.GET("/", pages.HomePage)
	router.GET("/games/:slug", pages.GamePage)
	router.GET("/search", pages.SearchPage)

	// 공개 JSON API
	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/search", api.Search)
		apiGroup.GET("/games/:slug", api.GetGame)
		apiGroup.GET("/games/:slug/history", api.GetPriceHistory)
		apiGroup.GET("/deals", api.GetDeals)
		apiGroup.GET("/devices", api.GetDevices)
		apiGroup.GET("/stats", api.GetStats)
		apiGroup.POST("/alerts", api.CreateAlert)
		apiGroup.GET("/alerts", api.ListAlerts)
		apiGroup.DELETE("/alerts/:id", api.DeleteAlert)
	}

	// 라이브 딜 피드
	router.GET("/ws", hub.ServeWS)

	// 관리자 라우트 (로그인/로그아웃은 인증 미들웨어 밖)
	adminGroup := router.Group("/admin/api")
	adminGroup.POST("/login", admin.HandleLogin)
	adminGroup.POST("/logout", admin.HandleLogout)

	protected := adminGroup.Group("")
	protected.Use(server.AdminAuthMiddleware(sessions, cfg.SessionSecret))
	{
		protected.GET("/jobs", admin.ListSyncJobs)
		protected.POST("/sync/:job", admin.TriggerSync)
		protected.GET("/reliability", admin.GetReliabilityReport)
		protected.GET("/stats/stream", admin.StreamSystemStats)
	}

	return router, nil
}

// NewHTTPServer: 타임아웃이 설정된 HTTP 서버를 생성한다.
// 업그레이드(하이재킹)된 웹소켓 연결에는 서버 타임아웃이 적용되지 않는다.
func NewHTTPServer(cfg *config.Config, router *gin.Engine) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           server.WrapH2C(router),
		ReadHeaderTimeout: constants.ServerTimeout.ReadHeader,
		ReadTimeout:       constants.ServerTimeout.Read,
		WriteTimeout:      constants.ServerTimeout.Write,
		IdleTimeout:       constants.ServerTimeout.Idle,
		MaxHeaderBytes:    constants.ServerTimeout.MaxHeaderBytes,
	}
}
