package server

import (
	"sync"
	"time"

	"github.com/kapu/handheld-deals-go/internal/constants"
)

// LoginRateLimiter: IP별 관리자 로그인 시도 횟수 제한
type LoginRateLimiter struct {
	attempts    map[string]*attemptInfo
	mu          sync.Mutex
	maxAttempts int
	window      time.Duration
	lockout     time.Duration
}

type attemptInfo struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// NewLoginRateLimiter: 새 Rate Limiter 생성
func NewLoginRateLimiter() *LoginRateLimiter {
	rl := &LoginRateLimiter{
		attempts:    make(map[string]*attemptInfo),
		maxAttempts: constants.LoginRateLimit.MaxAttempts,
		window:      constants.LoginRateLimit.Window,
		lockout:     constants.LoginRateLimit.Lockout,
	}

	// 주기적 정리 고루틴
	go rl.cleanupLoop()

	return rl
}

// IsAllowed: IP의 로그인 시도 허용 여부와 잠금 잔여 시간을 반환합니다.
func (l *LoginRateLimiter) IsAllowed(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, exists := l.attempts[ip]
	now := time.Now()

	if !exists {
		l.attempts[ip] = &attemptInfo{count: 0, firstAttempt: now}
		return true, 0
	}

	if now.Before(info.lockedUntil) {
		return false, info.lockedUntil.Sub(now)
	}

	// 윈도우 만료 시 리셋
	if now.Sub(info.firstAttempt) > l.window {
		info.count = 0
		info.firstAttempt = now
		info.lockedUntil = time.Time{}
	}

	return info.count < l.maxAttempts, 0
}

// RecordFailure: 로그인 실패를 기록하고 누적 횟수를 반환합니다.
func (l *LoginRateLimiter) RecordFailure(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, exists := l.attempts[ip]
	if !exists {
		info = &attemptInfo{count: 0, firstAttempt: time.Now()}
		l.attempts[ip] = info
	}

	info.count++
	if info.count >= l.maxAttempts {
		info.lockedUntil = time.Now().Add(l.lockout)
	}
	return info.count
}

// RecordSuccess: 로그인 성공 시 기록 초기화
func (l *LoginRateLimiter) RecordSuccess(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, ip)
}

func (l *LoginRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.cleanup()
	}
}

func (l *LoginRateLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for ip, info := range l.attempts {
		// 윈도우 + 잠금 시간 모두 지나면 삭제
		if now.Sub(info.firstAttempt) > l.window+l.lockout {
			delete(l.attempts, ip)
		}
	}
}
