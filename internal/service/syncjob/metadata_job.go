package syncjob

import (
	"context"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/internal/service/metadata"
)

const metadataBatchSize = 50

// MetadataSource: 게임 메타데이터 조회 인터페이스
type MetadataSource interface {
	SearchGame(ctx context.Context, title string) (*metadata.GameMetadata, error)
}

// MetadataGameLister: 보강 대상 게임 조회 인터페이스
type MetadataGameLister interface {
	GamesMissingMetadata(ctx context.Context, limit int) ([]domain.Game, error)
	UpdateMetadata(ctx context.Context, gameID uint, fields map[string]any) error
}

// MetadataJob: 장르 태그/출시 연도가 비어있는 게임을 메타데이터 API로 보강하는 잡
type MetadataJob struct {
	source       MetadataSource
	games        MetadataGameLister
	storeFactory ContentStoreFactory
	logger       *slog.Logger
}

// NewMetadataJob: 메타데이터 보강 잡을 생성한다.
func NewMetadataJob(source MetadataSource, games MetadataGameLister, storeFactory ContentStoreFactory, logger *slog.Logger) *MetadataJob {
	return &MetadataJob{
		source:       source,
		games:        games,
		storeFactory: storeFactory,
		logger:       logger,
	}
}

// Run: 보강 대상 게임을 조회해 빈 필드만 채운다.
func (j *MetadataJob) Run(ctx context.Context, now time.Time) error {
	games, err := j.games.GamesMissingMetadata(ctx, metadataBatchSize)
	if err != nil {
		return err
	}

	var store ContentStore
	if j.storeFactory != nil {
		store = j.storeFactory(ctx)
	}

	enriched, misses := 0, 0
	for _, game := range games {
		meta, err := j.source.SearchGame(ctx, game.Title)
		if err != nil {
			j.logger.Warn("metadata_lookup_failed",
				slog.String("title", game.Title),
				slog.Any("error", err))
			continue
		}
		if meta == nil {
			misses++
			continue
		}

		fields := make(map[string]any)
		if len(game.GenreTags) == 0 && len(meta.GenreTags) > 0 {
			raw, err := json.Marshal(meta.GenreTags)
			if err == nil {
				fields["genre_tags"] = raw
			}
		}
		if game.ReleaseYear == nil && meta.ReleaseYear != nil {
			fields["release_year"] = *meta.ReleaseYear
		}
		if len(fields) == 0 {
			continue
		}

		if err := j.games.UpdateMetadata(ctx, game.ID, fields); err != nil {
			j.logger.Error("metadata_update_failed",
				slog.Uint64("game_id", uint64(game.ID)),
				slog.Any("error", err))
			continue
		}
		if store != nil {
			if err := store.UpdateGameMetadata(ctx, game.ID, fields); err != nil {
				j.logger.Warn("metadata_cms_update_failed",
					slog.Uint64("game_id", uint64(game.ID)),
					slog.Any("error", err))
			}
		}
		enriched++
	}

	j.logger.Info("metadata_enrich_completed",
		slog.Int("candidates", len(games)),
		slog.Int("enriched", enriched),
		slog.Int("misses", misses),
		slog.Duration("elapsed", time.Since(now)),
	)
	return nil
}
