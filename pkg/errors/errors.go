// Package errors: 핸드헬드 딜 서비스 전체에서 사용되는 에러 타입들을 정의한다.
// 표준 Go 에러 스타일(Unwrap 지원)을 따른다.
package errors

import "fmt"

// APIError: 외부 API 호출 중 발생한 에러 (CMS, 딜 애그리게이터, 메타데이터 API 등)
type APIError struct {
	Operation  string // 수행 중이던 API 작업
	StatusCode int    // HTTP 상태 코드 (0이면 네트워크 오류)
	Err        error  // 원인 에러
}

func (e APIError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("api error operation=%s status=%d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("api error operation=%s status=%d: %v", e.Operation, e.StatusCode, e.Err)
}

func (e APIError) Unwrap() error { return e.Err }

// NewAPIError: API 에러를 생성한다.
func NewAPIError(operation string, statusCode int, cause error) *APIError {
	return &APIError{
		Operation:  operation,
		StatusCode: statusCode,
		Err:        cause,
	}
}

// AuthError: CMS 토큰 발급/갱신 실패 에러
type AuthError struct {
	Endpoint string
	Err      error
}

func (e AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("auth error endpoint=%s", e.Endpoint)
	}
	return fmt.Sprintf("auth error endpoint=%s: %v", e.Endpoint, e.Err)
}

func (e AuthError) Unwrap() error { return e.Err }

// NewAuthError: 인증 에러를 생성한다.
func NewAuthError(endpoint string, cause error) *AuthError {
	return &AuthError{Endpoint: endpoint, Err: cause}
}

// CacheError: 캐시 작업 중 발생한 에러
type CacheError struct {
	Operation string // get, set, delete 등
	Key       string // 캐시 키
	Err       error  // 원인 에러
}

func (e CacheError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cache error operation=%s key=%s", e.Operation, e.Key)
	}
	return fmt.Sprintf("cache error operation=%s key=%s: %v", e.Operation, e.Key, e.Err)
}

func (e CacheError) Unwrap() error { return e.Err }

// NewCacheError: 캐시 에러를 생성한다.
func NewCacheError(operation, key string, cause error) *CacheError {
	return &CacheError{
		Operation: operation,
		Key:       key,
		Err:       cause,
	}
}

// CircuitOpenError: 서킷 브레이커가 열려있을 때 발생하는 에러
type CircuitOpenError struct {
	RetryAfterMs int64
}

func (e CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open retry_after_ms=%d", e.RetryAfterMs)
}

// ValidationError: 입력 검증 실패 에러
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error field=%s: %s", e.Field, e.Message)
}

// NewValidationError: 검증 에러를 생성한다.
func NewValidationError(message, field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
