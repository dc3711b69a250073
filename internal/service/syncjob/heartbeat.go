// Package syncjob: 주기 동기화 잡(딜 갱신, 추정 패스, 재검증 패스, 메타데이터/호환성
// 보강)과 스케줄러를 구현한다. 각 잡은 명시적 now를 받는 멱등 실행 단위다.
package syncjob

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kapu/handheld-deals-go/internal/constants"
)

// Heartbeat: 잡 실행 종료 시 모니터링 URL에 핑을 보낸다. URL 미설정 시 no-op.
type Heartbeat struct {
	httpClient *http.Client
	url        string
	logger     *slog.Logger
}

// NewHeartbeat: 하트비트 핑어를 생성한다.
func NewHeartbeat(url string, logger *slog.Logger) *Heartbeat {
	return &Heartbeat{
		httpClient: &http.Client{Timeout: constants.SyncConfig.HeartbeatTimeout},
		url:        url,
		logger:     logger,
	}
}

// Ping: 잡 이름을 쿼리로 붙여 하트비트를 보낸다. 실패해도 잡 결과에 영향을 주지 않는다.
func (h *Heartbeat) Ping(ctx context.Context, job string) {
	if h.url == "" {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?job=%s", h.url, job), http.NoBody)
	if err != nil {
		h.logger.Warn("heartbeat_request_failed", slog.String("job", job), slog.Any("error", err))
		return
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.logger.Warn("heartbeat_ping_failed", slog.String("job", job), slog.Any("error", err))
		return
	}
	_ = resp.Body.Close()
}
