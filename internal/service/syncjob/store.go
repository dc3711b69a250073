package syncjob

import (
	"context"

	"github.com/kapu/handheld-deals-go/internal/domain"
)

// ContentStore: 잡이 사용하는 CMS 조작 집합
type ContentStore interface {
	ForEachGame(ctx context.Context, fn func(game domain.Game) error) error
	ForEachReview(ctx context.Context, fn func(review domain.Review) error) error
	UpdatePerformance(ctx context.Context, gameID uint, record domain.DevicePerformanceRecord) error
	UpdateReliability(ctx context.Context, gameID uint, reliability domain.DataReliability) error
	UpdateGameMetadata(ctx context.Context, gameID uint, fields map[string]any) error
	UpdateReview(ctx context.Context, reviewID uint, confidence domain.ReviewConfidence, note string) error
}

// ContentStoreFactory: 실행마다 새 토큰 범위의 CMS 클라이언트를 만든다.
// 토큰이 실행 단위로 발급되므로 전역 인증 상태가 남지 않는다.
type ContentStoreFactory func(ctx context.Context) ContentStore
