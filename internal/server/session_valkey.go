package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/valkey-io/valkey-go"

	"github.com/kapu/handheld-deals-go/internal/constants"
)

const sessionKeyPrefix = "session:admin:"

// ValkeySessionStore 는 Valkey 기반 세션 저장소로 서버 재기동 시에도 세션을 유지한다.
type ValkeySessionStore struct {
	client valkey.Client
	logger *slog.Logger
	ttl    time.Duration
}

// NewValkeySessionStore: Valkey 기반 세션 저장소를 생성합니다.
func NewValkeySessionStore(client valkey.Client, logger *slog.Logger) *ValkeySessionStore {
	return &ValkeySessionStore{
		client: client,
		logger: logger,
		ttl:    constants.SessionConfig.ExpiryDuration,
	}
}

// CreateSession: 새 관리자 세션을 생성해 Valkey에 저장합니다.
func (s *ValkeySessionStore) CreateSession(ctx context.Context) (*Session, error) {
	sessionID := generateSessionID()
	now := time.Now()
	session := &Session{
		ID:        sessionID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}

	key := sessionKeyPrefix + sessionID
	cmd := s.client.B().Set().Key(key).Value(string(data)).ExSeconds(int64(s.ttl.Seconds())).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return nil, err
	}

	s.logger.Debug("session_created",
		slog.String("session_id", truncateSessionID(sessionID)),
		slog.Duration("ttl", s.ttl))
	return session, nil
}

// ValidateSession: 세션 존재 여부와 만료를 확인합니다.
func (s *ValkeySessionStore) ValidateSession(ctx context.Context, sessionID string) bool {
	key := sessionKeyPrefix + sessionID

	resp := s.client.Do(ctx, s.client.B().Get().Key(key).Build())
	if valkey.IsValkeyNil(resp.Error()) {
		return false
	}
	if resp.Error() != nil {
		s.logger.Error("session_validate_failed",
			slog.String("session_id", truncateSessionID(sessionID)),
			slog.Any("error", resp.Error()))
		return false
	}

	value, err := resp.ToString()
	if err != nil {
		return false
	}

	var session Session
	if err := json.Unmarshal([]byte(value), &session); err != nil {
		return false
	}

	// Valkey TTL이 있지만 이중 확인
	if time.Now().After(session.ExpiresAt) {
		s.DeleteSession(ctx, sessionID)
		return false
	}
	return true
}

// DeleteSession: 세션을 즉시 삭제합니다. (로그아웃)
func (s *ValkeySessionStore) DeleteSession(ctx context.Context, sessionID string) {
	key := sessionKeyPrefix + sessionID
	if err := s.client.Do(ctx, s.client.B().Del().Key(key).Build()).Error(); err != nil {
		s.logger.Error("session_delete_failed",
			slog.String("session_id", truncateSessionID(sessionID)),
			slog.Any("error", err))
	}
}

func generateSessionID() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// truncateSessionID: 세션 ID 앞 8자리만 반환 (로그 보안)
func truncateSessionID(sessionID string) string {
	if len(sessionID) <= 8 {
		return sessionID
	}
	return sessionID[:8] + "..."
}
