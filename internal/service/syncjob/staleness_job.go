package syncjob

import (
	"context"
	"log/slog"
	"time"

	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/internal/staleness"
)

// ReliabilityMirror: 강등 결과를 조회용 DB 미러에도 반영하는 인터페이스
type ReliabilityMirror interface {
	UpdateMetadata(ctx context.Context, gameID uint, fields map[string]any) error
}

// StalenessJob: 장기 미검증 데이터를 강등/플래그하는 잡.
// 판정은 staleness 패키지의 순수 함수가, 영속화는 이 잡이 담당한다.
type StalenessJob struct {
	storeFactory ContentStoreFactory
	mirror       ReliabilityMirror
	logger       *slog.Logger
}

// NewStalenessJob: 재검증 패스 잡을 생성한다.
func NewStalenessJob(storeFactory ContentStoreFactory, mirror ReliabilityMirror, logger *slog.Logger) *StalenessJob {
	return &StalenessJob{
		storeFactory: storeFactory,
		mirror:       mirror,
		logger:       logger,
	}
}

// Run: 게임 강등 패스와 리뷰 플래그 패스를 차례로 수행한다.
// 한 레코드의 영속화 실패는 나머지 처리를 막지 않는다.
func (j *StalenessJob) Run(ctx context.Context, now time.Time) error {
	store := j.storeFactory(ctx)

	downgraded, noData := 0, 0
	gameErr := store.ForEachGame(ctx, func(game domain.Game) error {
		decision := staleness.ClassifyGame(&game, now)
		switch decision.Action {
		case staleness.GameActionNoTestData:
			noData++
			j.logger.Debug("game_without_test_data", slog.Uint64("game_id", uint64(game.ID)))
		case staleness.GameActionDowngrade:
			if err := store.UpdateReliability(ctx, game.ID, decision.NewReliability); err != nil {
				j.logger.Error("reliability_downgrade_failed",
					slog.Uint64("game_id", uint64(game.ID)),
					slog.Any("error", err))
				return nil
			}
			if j.mirror != nil {
				if err := j.mirror.UpdateMetadata(ctx, game.ID, map[string]any{
					"data_reliability": string(decision.NewReliability),
				}); err != nil {
					j.logger.Warn("reliability_mirror_failed",
						slog.Uint64("game_id", uint64(game.ID)),
						slog.Any("error", err))
				}
			}
			downgraded++
			j.logger.Info("game_downgraded",
				slog.Uint64("game_id", uint64(game.ID)),
				slog.Int("oldest_age_days", decision.OldestAgeDays),
				slog.Any("stale_devices", decision.StaleDevices))
		}
		return nil
	})

	flagged := 0
	reviewErr := store.ForEachReview(ctx, func(review domain.Review) error {
		decision, ok := staleness.ClassifyReview(&review, now)
		if !ok {
			return nil
		}
		if err := store.UpdateReview(ctx, decision.ReviewID, decision.NewConfidence, decision.AppendedNote); err != nil {
			j.logger.Error("review_flag_failed",
				slog.Uint64("review_id", uint64(decision.ReviewID)),
				slog.Any("error", err))
			return nil
		}
		flagged++
		return nil
	})

	j.logger.Info("staleness_pass_completed",
		slog.Int("games_downgraded", downgraded),
		slog.Int("games_without_test_data", noData),
		slog.Int("reviews_flagged", flagged),
		slog.Duration("elapsed", time.Since(now)),
	)

	if gameErr != nil {
		return gameErr
	}
	return reviewErr
}
