package server

import (
	"testing"
)

func TestLoginRateLimiterLockout(t *testing.T) {
	t.Parallel()

	rl := NewLoginRateLimiter()
	const ip = "203.0.113.10"

	for i := 0; i < rl.maxAttempts; i++ {
		allowed, _ := rl.IsAllowed(ip)
		if !allowed {
			t.Fatalf("attempt %d blocked before reaching limit", i+1)
		}
		rl.RecordFailure(ip)
	}

	allowed, remaining := rl.IsAllowed(ip)
	if allowed {
		t.Error("IP allowed after exceeding max attempts")
	}
	if remaining <= 0 {
		t.Errorf("lockout remaining = %v, want > 0", remaining)
	}
}

func TestLoginRateLimiterResetOnSuccess(t *testing.T) {
	t.Parallel()

	rl := NewLoginRateLimiter()
	const ip = "203.0.113.11"

	rl.RecordFailure(ip)
	rl.RecordFailure(ip)
	rl.RecordSuccess(ip)

	allowed, _ := rl.IsAllowed(ip)
	if !allowed {
		t.Error("IP still limited after successful login reset")
	}
}

func TestLoginRateLimiterIsolatesIPs(t *testing.T) {
	t.Parallel()

	rl := NewLoginRateLimiter()

	for i := 0; i < rl.maxAttempts; i++ {
		rl.RecordFailure("203.0.113.20")
	}

	if allowed, _ := rl.IsAllowed("203.0.113.21"); !allowed {
		t.Error("unrelated IP was rate limited")
	}
}
