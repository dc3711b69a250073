// Package cms: 헤드리스 CMS REST API 클라이언트.
// 실행 단위로 발급되는 OAuth2 클라이언트 자격증명 토큰을 사용하며
// (전역 토큰 없음), 속도 제한과 서킷 브레이커, 지수 백오프 재시도를 적용한다.
package cms

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"log/slog"

	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/pkg/errors"
)

// Requester: HTTP 요청 수행 및 서킷 브레이커 상태 확인을 위한 인터페이스
type Requester interface {
	DoRequest(ctx context.Context, method, path string, params url.Values, body []byte) ([]byte, error)
	IsCircuitOpen() bool
}

// APIClient: CMS API 요청을 처리하는 클라이언트
// 토큰 소스, 서킷 브레이커, 속도 제한(Rate Limiting) 기능을 포함한다.
type APIClient struct {
	httpClient       *http.Client
	baseURL          string
	tokens           oauth2.TokenSource
	logger           *slog.Logger
	failureCount     int
	failureMu        sync.Mutex
	circuitOpenUntil *time.Time
	circuitMu        sync.RWMutex
	rateLimiter      *rate.Limiter
}

// NewAPIClient: 새로운 CMS API 클라이언트를 생성한다.
// tokens는 해당 실행 범위의 토큰 소스다. (NewRunTokenSource 참조)
func NewAPIClient(httpClient *http.Client, baseURL string, tokens oauth2.TokenSource, logger *slog.Logger) *APIClient {
	return &APIClient{
		httpClient:  httpClient,
		baseURL:     baseURL,
		tokens:      tokens,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Every(constants.APIConfig.MinCallInterval), 1),
	}
}

// DoRequest: CMS API에 요청을 보낸다.
// Rate Limit 준수, 서킷 브레이커 확인, 재시도 로직을 수행한다.
func (c *APIClient) DoRequest(ctx context.Context, method, path string, params url.Values, body []byte) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	if err := c.rejectIfCircuitOpen(); err != nil {
		return nil, err
	}

	token, err := c.tokens.Token()
	if err != nil {
		return nil, errors.NewAuthError(c.baseURL, err)
	}

	maxAttempts := constants.RetryConfig.MaxAttempts
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		respBody, done, err := c.tryRequest(ctx, method, path, params, body, token, attempt, maxAttempts)
		if !done {
			if err != nil {
				lastErr = err
			}
			continue
		}

		if err != nil {
			return nil, err
		}

		c.resetCircuit()
		return respBody, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("cms request failed")
}

func (c *APIClient) rejectIfCircuitOpen() error {
	if !c.IsCircuitOpen() {
		return nil
	}

	c.circuitMu.RLock()
	var remainingMs int64
	if c.circuitOpenUntil != nil {
		remainingMs = time.Until(*c.circuitOpenUntil).Milliseconds()
	}
	c.circuitMu.RUnlock()

	c.logger.Warn("circuit_open", slog.Int64("retry_after_ms", remainingMs))
	return &errors.CircuitOpenError{RetryAfterMs: remainingMs}
}

func (c *APIClient) tryRequest(ctx context.Context, method, path string, params url.Values, body []byte, token *oauth2.Token, attempt, maxAttempts int) ([]byte, bool, error) {
	reqURL := c.buildRequestURL(path, params)
	req, err := c.newRequest(ctx, method, reqURL, body, token)
	if err != nil {
		return nil, true, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.retryAfterNetworkFailure(err, attempt, maxAttempts) {
			return nil, false, fmt.Errorf("HTTP request failed (retrying): %w", err)
		}
		return nil, true, fmt.Errorf("HTTP request failed: %w", err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, false, fmt.Errorf("failed to read response: %w", readErr)
	}

	return c.processResponse(resp.StatusCode, respBody, reqURL, attempt, maxAttempts)
}

func (c *APIClient) buildRequestURL(path string, params url.Values) string {
	reqURL := c.baseURL + path
	if params != nil {
		reqURL += "?" + params.Encode()
	}
	return reqURL
}

func (c *APIClient) newRequest(ctx context.Context, method, url string, body []byte, token *oauth2.Token) (*http.Request, error) {
	var reader io.Reader = http.NoBody
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	token.SetAuthHeader(req)
	return req, nil
}

func (c *APIClient) retryAfterNetworkFailure(err error, attempt, maxAttempts int) bool {
	count := c.incrementFailureCount()
	if count >= constants.CircuitBreakerConfig.FailureThreshold {
		c.openCircuit()
		return false
	}

	if attempt < maxAttempts-1 {
		delay := c.computeDelay(attempt)
		c.logger.Warn("request_retrying",
			slog.Any("error", err),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
		)
		time.Sleep(delay)
		return true
	}

	return false
}

func (c *APIClient) processResponse(status int, body []byte, reqURL string, attempt, maxAttempts int) ([]byte, bool, error) {
	switch {
	case status == 401:
		// 실행 범위 토큰이 만료된 경우. 재시도 없이 호출자에게 넘긴다.
		return nil, true, errors.NewAuthError(reqURL, fmt.Errorf("token rejected: %d", status))
	case status == 429:
		c.logger.Warn("cms_rate_limited", slog.Int("attempt", attempt+1))
		if attempt < maxAttempts-1 {
			time.Sleep(c.computeDelay(attempt))
			return nil, false, nil
		}
		return nil, true, errors.NewAPIError("rate_limited", status, nil)
	case status >= 500:
		return c.handleServerError(status, attempt, maxAttempts)
	case status >= 400:
		return nil, true, errors.NewAPIError("client_error", status, fmt.Errorf("url=%s body=%s", reqURL, string(body)))
	default:
		return body, true, nil
	}
}

func (c *APIClient) handleServerError(status, attempt, maxAttempts int) ([]byte, bool, error) {
	count := c.incrementFailureCount()
	c.logger.Warn("cms_server_error",
		slog.Int("status", status),
		slog.Int("failure_count", count),
	)

	if count >= constants.CircuitBreakerConfig.FailureThreshold {
		c.openCircuit()
		return nil, true, errors.NewAPIError("server_error", status, nil)
	}

	if attempt < maxAttempts-1 {
		time.Sleep(c.computeDelay(attempt))
		return nil, false, errors.NewAPIError("server_error", status, nil)
	}

	return nil, true, errors.NewAPIError("server_error", status, nil)
}

// IsCircuitOpen: 현재 서킷 브레이커가 열려있는지(요청 차단 상태인지) 확인한다.
func (c *APIClient) IsCircuitOpen() bool {
	c.circuitMu.RLock()
	defer c.circuitMu.RUnlock()

	if c.circuitOpenUntil == nil {
		return false
	}
	return !time.Now().After(*c.circuitOpenUntil)
}

func (c *APIClient) openCircuit() {
	c.circuitMu.Lock()
	defer c.circuitMu.Unlock()

	resetTime := time.Now().Add(constants.CircuitBreakerConfig.ResetTimeout)
	c.circuitOpenUntil = &resetTime
	c.failureCount = 0

	c.logger.Error("cms_circuit_opened",
		slog.Duration("reset_timeout", constants.CircuitBreakerConfig.ResetTimeout),
	)
}

func (c *APIClient) resetCircuit() {
	c.circuitMu.Lock()
	defer c.circuitMu.Unlock()

	c.failureCount = 0
	c.circuitOpenUntil = nil
}

func (c *APIClient) incrementFailureCount() int {
	c.failureMu.Lock()
	defer c.failureMu.Unlock()

	c.failureCount++
	return c.failureCount
}

func (c *APIClient) computeDelay(attempt int) time.Duration {
	base := constants.RetryConfig.BaseDelay * time.Duration(math.Pow(2, float64(attempt)))
	jitter := time.Duration(rand.Float64() * float64(constants.RetryConfig.Jitter))
	return base + jitter
}
