package syncjob

import (
	"context"
	"log/slog"
	"time"

	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/internal/service/compat"
)

const compatBatchSize = 50

// CompatSource: 커뮤니티 호환성 요약 조회 인터페이스
type CompatSource interface {
	FetchSummary(ctx context.Context, catalogID string) (*compat.Summary, error)
}

// CompatGameLister: 호환성 갱신 대상 게임 조회 인터페이스
type CompatGameLister interface {
	GamesWithCatalogID(ctx context.Context, limit int) ([]domain.Game, error)
	UpdateMetadata(ctx context.Context, gameID uint, fields map[string]any) error
}

// CompatJob: 커뮤니티 호환성 등급을 최신 상태로 갱신하는 잡
type CompatJob struct {
	source       CompatSource
	games        CompatGameLister
	storeFactory ContentStoreFactory
	logger       *slog.Logger
}

// NewCompatJob: 호환성 갱신 잡을 생성한다.
func NewCompatJob(source CompatSource, games CompatGameLister, storeFactory ContentStoreFactory, logger *slog.Logger) *CompatJob {
	return &CompatJob{
		source:       source,
		games:        games,
		storeFactory: storeFactory,
		logger:       logger,
	}
}

// Run: 카탈로그 ID가 있는 게임의 커뮤니티 등급을 갱신한다.
func (j *CompatJob) Run(ctx context.Context, now time.Time) error {
	games, err := j.games.GamesWithCatalogID(ctx, compatBatchSize)
	if err != nil {
		return err
	}

	var store ContentStore
	if j.storeFactory != nil {
		store = j.storeFactory(ctx)
	}

	updated := 0
	for _, game := range games {
		summary, err := j.source.FetchSummary(ctx, game.CatalogID)
		if err != nil {
			j.logger.Warn("compat_lookup_failed",
				slog.String("catalog_id", game.CatalogID),
				slog.Any("error", err))
			continue
		}
		if summary == nil {
			continue
		}
		if game.CommunityTier != nil && *game.CommunityTier == summary.Tier {
			continue
		}

		fields := map[string]any{"community_tier": string(summary.Tier)}
		if err := j.games.UpdateMetadata(ctx, game.ID, fields); err != nil {
			j.logger.Error("compat_update_failed",
				slog.Uint64("game_id", uint64(game.ID)),
				slog.Any("error", err))
			continue
		}
		if store != nil {
			if err := store.UpdateGameMetadata(ctx, game.ID, fields); err != nil {
				j.logger.Warn("compat_cms_update_failed",
					slog.Uint64("game_id", uint64(game.ID)),
					slog.Any("error", err))
			}
		}
		updated++
	}

	j.logger.Info("compat_refresh_completed",
		slog.Int("candidates", len(games)),
		slog.Int("updated", updated),
		slog.Duration("elapsed", time.Since(now)),
	)
	return nil
}
