package syncjob

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/internal/estimator"
)

// PerformanceMirror: 추정 결과를 조회용 DB 미러에도 반영하는 인터페이스
type PerformanceMirror interface {
	UpsertPerformance(ctx context.Context, record *domain.DevicePerformanceRecord) error
}

// EstimatorJob: 실측 데이터가 없는 (게임, 기기) 조합에 배터리 추정치를 채워넣는 잡.
// 게임 단위로 병렬 처리하며 개별 실패는 배치를 중단시키지 않는다.
type EstimatorJob struct {
	storeFactory ContentStoreFactory
	mirror       PerformanceMirror
	logger       *slog.Logger
}

// NewEstimatorJob: 추정 패스 잡을 생성한다.
func NewEstimatorJob(storeFactory ContentStoreFactory, mirror PerformanceMirror, logger *slog.Logger) *EstimatorJob {
	return &EstimatorJob{
		storeFactory: storeFactory,
		mirror:       mirror,
		logger:       logger,
	}
}

// Run: 전체 게임을 순회하며 추정이 필요한 기기 레코드를 계산하고 되써넣는다.
func (j *EstimatorJob) Run(ctx context.Context, now time.Time) error {
	store := j.storeFactory(ctx)

	var processed, written, failed atomic.Int64
	workers := pool.New().WithMaxGoroutines(constants.SyncConfig.EstimatorConcurrency)

	err := store.ForEachGame(ctx, func(game domain.Game) error {
		workers.Go(func() {
			processed.Add(1)
			w, f := j.processGame(ctx, store, game)
			written.Add(int64(w))
			failed.Add(int64(f))
		})
		return nil
	})
	workers.Wait()

	j.logger.Info("estimator_pass_completed",
		slog.Int64("games", processed.Load()),
		slog.Int64("estimates_written", written.Load()),
		slog.Int64("failures", failed.Load()),
		slog.Duration("elapsed", time.Since(now)),
	)
	return err
}

// processGame: 한 게임의 세 기기 레코드 중 추정 대상을 채운다. (쓰기 수, 실패 수 반환)
func (j *EstimatorJob) processGame(ctx context.Context, store ContentStore, game domain.Game) (int, int) {
	tier := ""
	if game.CommunityTier != nil {
		tier = string(*game.CommunityTier)
	}
	input := estimator.Input{
		GenreTags:     game.Tags(),
		ReleaseYear:   game.ReleaseYear,
		DeckVerified:  game.IsDeckVerified(),
		CommunityTier: tier,
	}

	written, failed := 0, 0
	for _, est := range estimator.ForAllDevices(input) {
		if existing, ok := game.PerformanceFor(est.DeviceID); ok && !needsEstimate(existing) {
			continue
		}

		record := domain.DevicePerformanceRecord{
			GameID:       game.ID,
			DeviceID:     est.DeviceID,
			Status:       est.Status,
			BatteryHours: &est.BatteryHours,
			Notes:        est.Notes,
			Estimated:    true,
		}

		if err := store.UpdatePerformance(ctx, game.ID, record); err != nil {
			j.logger.Warn("estimate_write_failed",
				slog.Uint64("game_id", uint64(game.ID)),
				slog.String("device", est.DeviceID),
				slog.Any("error", err))
			failed++
			continue
		}

		if j.mirror != nil {
			if err := j.mirror.UpsertPerformance(ctx, &record); err != nil {
				j.logger.Warn("estimate_mirror_failed",
					slog.Uint64("game_id", uint64(game.ID)),
					slog.String("device", est.DeviceID),
					slog.Any("error", err))
			}
		}
		written++
	}
	return written, failed
}

// needsEstimate: 실측 데이터가 있는 레코드는 건드리지 않는다.
func needsEstimate(record *domain.DevicePerformanceRecord) bool {
	if record.Estimated {
		return true
	}
	switch record.Status {
	case domain.PerfUntested, domain.PerfEstimated, "":
		return true
	default:
		return false
	}
}
