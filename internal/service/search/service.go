// Package search: 게임 검색 서비스. 기기 필터와 배터리 추정치를 결합해
// 검색 결과를 구성하고 결과를 캐시한다.
package search

import (
	"context"
	"log/slog"

	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/internal/estimator"
	"github.com/kapu/handheld-deals-go/internal/service/cache"
	"github.com/kapu/handheld-deals-go/internal/util"
	"github.com/kapu/handheld-deals-go/pkg/errors"
)

// GameSearcher: 검색 쿼리를 수행하는 저장소 인터페이스
type GameSearcher interface {
	Search(ctx context.Context, query, deviceID string, limit int) ([]domain.Game, error)
}

// Result: 검색 결과 한 건
type Result struct {
	Slug            string                 `json:"slug"`
	Title           string                 `json:"title"`
	ReleaseYear     *int                   `json:"release_year,omitempty"`
	DataReliability domain.DataReliability `json:"data_reliability"`
	Estimate        *estimator.Estimate    `json:"estimate,omitempty"` // 기기 필터 지정 시
}

// Service: 검색 서비스
type Service struct {
	games  GameSearcher
	cache  *cache.Service
	logger *slog.Logger
}

// NewService: 검색 서비스를 생성한다.
func NewService(games GameSearcher, cacheSvc *cache.Service, logger *slog.Logger) *Service {
	return &Service{
		games:  games,
		cache:  cacheSvc,
		logger: logger,
	}
}

const minQueryLength = 2

// Search: 제목 검색을 수행한다. deviceID가 주어지면 해당 기기에서 플레이 가능한
// 게임으로 제한하고 기기별 배터리 추정치를 함께 반환한다.
func (s *Service) Search(ctx context.Context, query, deviceID string) ([]Result, error) {
	query = util.TrimSpace(query)
	if len([]rune(query)) < minQueryLength {
		return nil, errors.NewValidationError("query too short", "q")
	}
	if deviceID != "" && !domain.IsSupportedDevice(deviceID) {
		return nil, errors.NewValidationError("unsupported device", "device")
	}

	cacheKey := cache.SearchKey(util.Normalize(query), deviceID)
	if s.cache != nil {
		var cached []Result
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && cached != nil {
			s.logger.Debug("search_cache_hit", slog.String("query", query))
			return cached, nil
		}
	}

	games, err := s.games.Search(ctx, query, deviceID, constants.PaginationConfig.MaxPageSize)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(games))
	for i := range games {
		results = append(results, s.toResult(&games[i], deviceID))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, results, constants.CacheTTL.SearchResults); err != nil {
			s.logger.Warn("search_cache_store_failed", slog.Any("error", err))
		}
	}

	return results, nil
}

func (s *Service) toResult(game *domain.Game, deviceID string) Result {
	result := Result{
		Slug:            game.Slug,
		Title:           game.Title,
		ReleaseYear:     game.ReleaseYear,
		DataReliability: game.DataReliability,
	}

	if deviceID != "" {
		tier := ""
		if game.CommunityTier != nil {
			tier = string(*game.CommunityTier)
		}
		if est, ok := estimator.ForDevice(deviceID, estimator.Input{
			GenreTags:     game.Tags(),
			ReleaseYear:   game.ReleaseYear,
			DeckVerified:  game.IsDeckVerified(),
			CommunityTier: tier,
		}); ok {
			result.Estimate = &est
		}
	}

	return result
}
