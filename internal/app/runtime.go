package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kapu/handheld-deals-go/internal/config"
	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/service/syncjob"
)

// Runtime 는 서버 프로세스의 구성요소를 담는다.
type Runtime struct {
	Config    *config.Config
	Logger    *slog.Logger
	Scheduler *syncjob.Scheduler
	Server    *http.Server

	cleanup func()
}

// Close - 런타임 리소스 정리 (DB, 캐시 연결 해제)
func (r *Runtime) Close() {
	if r != nil && r.cleanup != nil {
		r.cleanup()
	}
}

// Start: 동기화 스케줄러와 HTTP 서버를 기동합니다.
// 서버 에러는 errCh로 전달된다.
func (r *Runtime) Start(ctx context.Context, errCh chan<- error) {
	if r.Config.SyncEnabled {
		r.Scheduler.Start(ctx)
		r.Logger.Info("sync_scheduler_started", "jobs", r.Scheduler.JobNames())
	} else {
		r.Logger.Warn("sync_scheduler_disabled")
	}

	go func() {
		r.Logger.Info("http_server_started", "addr", r.Server.Addr)
		if err := r.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
}

// Shutdown: 스케줄러를 멈추고 HTTP 서버를 정상 종료합니다.
func (r *Runtime) Shutdown(ctx context.Context) {
	if r.Config.SyncEnabled {
		r.Scheduler.Stop()
	}

	if err := r.Server.Shutdown(ctx); err != nil {
		r.Logger.Error("http_server_shutdown_error", "error", err)
	}
}

// Run: 종료 시그널 또는 서버 에러가 발생할 때까지 런타임을 실행합니다.
func (r *Runtime) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	r.Start(ctx, errCh)

	select {
	case sig := <-sigCh:
		r.Logger.Info("shutdown_signal_received", "signal", sig.String())
	case err := <-errCh:
		r.Logger.Error("http_server_error", "error", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.AppTimeout.Shutdown)
	defer shutdownCancel()

	r.Shutdown(shutdownCtx)
	r.Logger.Info("shutdown_complete")
}
