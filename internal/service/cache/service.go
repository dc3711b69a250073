// Package cache: Valkey 기반 캐싱 서비스.
// 딜 목록, 게임 상세, 검색 결과, 리포트 캐싱과 알림 발송 중복 방지에 사용한다.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/pkg/errors"
)

// Service: Valkey 클라이언트를 래핑하여 캐싱 기능을 제공하는 서비스
type Service struct {
	client    valkey.Client
	logger    *slog.Logger
	closeOnce sync.Once
}

// Config: Valkey 연결 설정
type Config struct {
	Address  string
	Password string
	DB       int
}

// NewCacheService: 새로운 Valkey 캐시 서비스 인스턴스를 생성하고 연결을 수립한다.
func NewCacheService(cfg Config, logger *slog.Logger) (*Service, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{cfg.Address},
		Password:          cfg.Password,
		SelectDB:          cfg.DB,
		ConnWriteTimeout:  constants.ValkeyConfig.ConnWriteTimeout,
		BlockingPoolSize:  constants.ValkeyConfig.BlockingPoolSize,
		PipelineMultiplex: constants.ValkeyConfig.PipelineMultiplex,
		Dialer:            net.Dialer{Timeout: constants.ValkeyConfig.DialTimeout},
	})
	if err != nil {
		return nil, errors.NewCacheError("init", "", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ValkeyConfig.ReadyTimeout)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, errors.NewCacheError("ping", "", err)
	}

	logger.Info("cache_connected",
		slog.String("addr", cfg.Address),
		slog.Int("db", cfg.DB),
		slog.Int("pool_size", constants.ValkeyConfig.BlockingPoolSize),
	)

	return &Service{
		client: client,
		logger: logger,
	}, nil
}

// Get: 키에 해당하는 값을 조회하고, 결과를 dest 인터페이스에 언마샬링한다.
// 키가 없으면 에러 없이 dest를 건드리지 않는다.
func (c *Service) Get(ctx context.Context, key string, dest any) error {
	resp := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if valkey.IsValkeyNil(resp.Error()) {
		return nil
	}
	if resp.Error() != nil {
		c.logger.Error("cache_get_failed", slog.String("key", key), slog.Any("error", resp.Error()))
		return errors.NewCacheError("get", key, resp.Error())
	}

	value, err := resp.ToString()
	if err != nil {
		return errors.NewCacheError("get", key, err)
	}

	if dest != nil {
		if err := json.Unmarshal([]byte(value), dest); err != nil {
			c.logger.Error("cache_unmarshal_failed", slog.String("key", key), slog.Any("error", err))
			return errors.NewCacheError("get", key, err)
		}
	}

	return nil
}

// Set: 값을 JSON으로 마샬링하여 키에 저장한다. (TTL 지정 가능)
func (c *Service) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("set", key, err)
	}

	var cmd valkey.Completed
	if ttl > 0 {
		cmd = c.client.B().Set().Key(key).Value(string(jsonData)).ExSeconds(int64(ttl.Seconds())).Build()
	} else {
		cmd = c.client.B().Set().Key(key).Value(string(jsonData)).Build()
	}

	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		c.logger.Error("cache_set_failed", slog.String("key", key), slog.Any("error", err))
		return errors.NewCacheError("set", key, err)
	}

	return nil
}

// MGet 배치 조회 (파이프라이닝 활용)
func (c *Service) MGet(ctx context.Context, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return make(map[string]string), nil
	}

	resp := c.client.Do(ctx, c.client.B().Mget().Key(keys...).Build())
	if resp.Error() != nil {
		c.logger.Error("cache_mget_failed", slog.Int("keys", len(keys)), slog.Any("error", resp.Error()))
		return nil, errors.NewCacheError("mget", fmt.Sprintf("%d keys", len(keys)), resp.Error())
	}

	values, err := resp.AsStrSlice()
	if err != nil {
		return nil, errors.NewCacheError("mget", "", err)
	}

	result := make(map[string]string, len(keys))
	for i, key := range keys {
		if i < len(values) && values[i] != "" {
			result[key] = values[i]
		}
	}

	return result, nil
}

// MSet 배치 저장 (파이프라이닝 활용)
func (c *Service) MSet(ctx context.Context, pairs map[string]any, ttl time.Duration) error {
	if len(pairs) == 0 {
		return nil
	}

	cmds := make([]valkey.Completed, 0, len(pairs))
	for key, value := range pairs {
		jsonData, err := json.Marshal(value)
		if err != nil {
			c.logger.Warn("cache_mset_marshal_failed", slog.String("key", key), slog.Any("error", err))
			continue
		}

		var cmd valkey.Completed
		if ttl > 0 {
			cmd = c.client.B().Set().Key(key).Value(string(jsonData)).ExSeconds(int64(ttl.Seconds())).Build()
		} else {
			cmd = c.client.B().Set().Key(key).Value(string(jsonData)).Build()
		}
		cmds = append(cmds, cmd)
	}

	for _, resp := range c.client.DoMulti(ctx, cmds...) {
		if resp.Error() != nil {
			c.logger.Error("cache_mset_failed", slog.Any("error", resp.Error()))
			return errors.NewCacheError("mset", "", resp.Error())
		}
	}

	return nil
}

// Del: 지정된 키를 삭제한다.
func (c *Service) Del(ctx context.Context, key string) error {
	if err := c.client.Do(ctx, c.client.B().Del().Key(key).Build()).Error(); err != nil {
		c.logger.Error("cache_del_failed", slog.String("key", key), slog.Any("error", err))
		return errors.NewCacheError("del", key, err)
	}
	return nil
}

// DelMany: 여러 키를 한 번에 삭제한다.
func (c *Service) DelMany(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	resp := c.client.Do(ctx, c.client.B().Del().Key(keys...).Build())
	if resp.Error() != nil {
		c.logger.Error("cache_delmany_failed", slog.Int("count", len(keys)), slog.Any("error", resp.Error()))
		return 0, errors.NewCacheError("del", fmt.Sprintf("%d keys", len(keys)), resp.Error())
	}

	deleted, err := resp.AsInt64()
	if err != nil {
		return 0, errors.NewCacheError("del", "", err)
	}

	return deleted, nil
}

// Keys: 주어진 패턴과 일치하는 모든 키를 찾아서 반환한다. (동기화 후 무효화용. 대량 검색 시 부하 주의)
func (c *Service) Keys(ctx context.Context, pattern string) ([]string, error) {
	resp := c.client.Do(ctx, c.client.B().Keys().Pattern(pattern).Build())
	if resp.Error() != nil {
		c.logger.Error("cache_keys_failed", slog.String("pattern", pattern), slog.Any("error", resp.Error()))
		return []string{}, errors.NewCacheError("keys", pattern, resp.Error())
	}

	keys, err := resp.AsStrSlice()
	if err != nil {
		return []string{}, errors.NewCacheError("keys", pattern, err)
	}

	return keys, nil
}

// InvalidatePattern: 패턴과 일치하는 모든 키를 삭제한다. 삭제된 키 수를 반환한다.
func (c *Service) InvalidatePattern(ctx context.Context, pattern string) (int64, error) {
	keys, err := c.Keys(ctx, pattern)
	if err != nil {
		return 0, err
	}
	return c.DelMany(ctx, keys)
}

// Expire: 키의 만료 시간을 설정한다.
func (c *Service) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.client.Do(ctx, c.client.B().Expire().Key(key).Seconds(int64(ttl.Seconds())).Build()).Error(); err != nil {
		c.logger.Error("cache_expire_failed", slog.String("key", key), slog.Any("error", err))
		return errors.NewCacheError("expire", key, err)
	}
	return nil
}

// Exists: 키가 존재하는지 확인한다.
func (c *Service) Exists(ctx context.Context, key string) (bool, error) {
	resp := c.client.Do(ctx, c.client.B().Exists().Key(key).Build())
	if resp.Error() != nil {
		c.logger.Error("cache_exists_failed", slog.String("key", key), slog.Any("error", resp.Error()))
		return false, errors.NewCacheError("exists", key, resp.Error())
	}

	count, err := resp.AsInt64()
	if err != nil {
		return false, errors.NewCacheError("exists", key, err)
	}

	return count > 0, nil
}

// Close: 캐시 스토어 연결을 안전하게 종료한다.
func (c *Service) Close() error {
	c.closeOnce.Do(func() {
		if c.client == nil {
			return
		}
		c.client.Close()
		c.logger.Info("cache_disconnected")
	})
	return nil
}

// IsConnected: 캐시 스토어와 연결되어 있는지(PING 응답 여부) 확인한다.
func (c *Service) IsConnected(ctx context.Context) bool {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error() == nil
}

// WaitUntilReady: 캐시 스토어 연결이 완료될 때까지 대기한다. (타임아웃 적용)
func (c *Service) WaitUntilReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for cache store to be ready")
		case <-ticker.C:
			if c.IsConnected(ctx) {
				return nil
			}
		}
	}
}

// GetDeals: 캐시된 딜 목록을 조회한다.
func (c *Service) GetDeals(ctx context.Context, key string) ([]*domain.Deal, bool) {
	var deals []*domain.Deal
	if err := c.Get(ctx, key, &deals); err != nil {
		c.logger.Debug("cache_miss", slog.String("key", key))
		return nil, false
	}
	if deals == nil {
		return nil, false
	}
	return deals, true
}

// SetDeals: 딜 목록을 캐시에 저장한다. (TTL 적용)
func (c *Service) SetDeals(ctx context.Context, key string, deals []*domain.Deal, ttl time.Duration) {
	if err := c.Set(ctx, key, deals, ttl); err != nil {
		c.logger.Error("cache_set_deals_failed", slog.String("key", key), slog.Any("error", err))
	}
}

// MarkAlertDispatched: 알림 발송 기록을 남긴다. 이미 기록돼 있었으면 false를 반환해
// 중복 발송을 막는다. (SET NX + TTL)
func (c *Service) MarkAlertDispatched(ctx context.Context, alertID uint, dealID uint) (bool, error) {
	key := AlertDispatchedKey(alertID, dealID)
	resp := c.client.Do(ctx, c.client.B().Set().Key(key).Value("1").Nx().
		ExSeconds(int64(constants.CacheTTL.AlertDispatched.Seconds())).Build())
	if valkey.IsValkeyNil(resp.Error()) {
		return false, nil // NX 실패: 이미 발송됨
	}
	if resp.Error() != nil {
		return false, errors.NewCacheError("set", key, resp.Error())
	}
	return true, nil
}

// GetClient: 저수준 Valkey 클라이언트를 반환한다.
func (c *Service) GetClient() valkey.Client {
	return c.client
}
