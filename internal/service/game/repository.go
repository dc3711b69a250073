// Package game: 게임 레코드에 대한 데이터베이스 접근을 담당한다.
// CMS 콘텐츠의 조회용 미러 테이블을 관리하며, 핫패스 검색은 raw SQL을 사용한다.
package game

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/internal/service/database"
	"github.com/kapu/handheld-deals-go/internal/util"
)

// Repository: 게임 정보에 대한 데이터베이스 접근을 담당하는 저장소
type Repository struct {
	db     *sql.DB
	gormDB *gorm.DB
	logger *slog.Logger
}

// NewRepository: 새로운 게임 저장소 인스턴스를 생성합니다.
func NewRepository(postgres *database.PostgresService, logger *slog.Logger) *Repository {
	return &Repository{
		db:     postgres.GetDB(),
		gormDB: postgres.GetGormDB(),
		logger: logger,
	}
}

// UpsertFromCMS: CMS에서 받은 게임 레코드를 슬러그 기준으로 업서트한다.
func (r *Repository) UpsertFromCMS(ctx context.Context, game *domain.Game) error {
	err := r.gormDB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "catalog_id", "genre_tags", "release_year",
			"verified_status", "community_tier", "controller", "data_reliability", "updated_at",
		}),
	}).Omit("Performance").Create(game).Error
	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}
	return nil
}

// UpsertPerformance: 기기별 성능 레코드를 (game_id, device_id) 기준으로 업서트한다.
func (r *Repository) UpsertPerformance(ctx context.Context, record *domain.DevicePerformanceRecord) error {
	err := r.gormDB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "game_id"}, {Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "fps", "battery_hours", "tested_at", "notes", "estimated", "updated_at",
		}),
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert performance record: %w", err)
	}
	return nil
}

// FindBySlug: 슬러그로 게임을 조회합니다. (성능 레코드 포함)
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*domain.Game, error) {
	var game domain.Game
	err := r.gormDB.WithContext(ctx).
		Preload("Performance").
		Where("slug = ?", slug).
		First(&game).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query game by slug: %w", err)
	}
	return &game, nil
}

// FindByCatalogID: 외부 카탈로그 ID로 게임을 조회합니다.
func (r *Repository) FindByCatalogID(ctx context.Context, catalogID string) (*domain.Game, error) {
	if catalogID == "" {
		return nil, nil
	}

	var game domain.Game
	err := r.gormDB.WithContext(ctx).
		Where("catalog_id = ?", catalogID).
		First(&game).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query game by catalog_id: %w", err)
	}
	return &game, nil
}

// EnsureByTitle: 제목으로 게임을 찾고, 없으면 최소 레코드를 생성한다.
// 딜 동기화가 아직 CMS에 없는 게임을 만났을 때 사용한다.
func (r *Repository) EnsureByTitle(ctx context.Context, title, catalogID string) (*domain.Game, error) {
	if catalogID != "" {
		if game, err := r.FindByCatalogID(ctx, catalogID); err != nil {
			return nil, err
		} else if game != nil {
			return game, nil
		}
	}

	slug := util.Slugify(title)
	if game, err := r.FindBySlug(ctx, slug); err != nil {
		return nil, err
	} else if game != nil {
		return game, nil
	}

	game := &domain.Game{
		Title:           title,
		Slug:            slug,
		CatalogID:       catalogID,
		DataReliability: domain.ReliabilityEstimatedAPI,
		VerifiedStatus:  domain.VerifiedStatusUnknown,
	}
	if err := r.gormDB.WithContext(ctx).Create(game).Error; err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	r.logger.Info("game_created_from_deal",
		slog.String("slug", slug),
		slog.String("catalog_id", catalogID),
	)
	return game, nil
}

// Search: 제목 부분 일치로 게임을 검색한다. deviceID가 주어지면 해당 기기에서
// 플레이 가능한(성능 레코드가 poor/untested가 아닌) 게임으로 제한한다.
func (r *Repository) Search(ctx context.Context, query, deviceID string, limit int) ([]domain.Game, error) {
	pattern := "%" + util.TrimSpace(query) + "%"

	var rows *sql.Rows
	var err error
	if deviceID != "" {
		sqlQuery := `
			SELECT DISTINCT g.id, g.title, g.slug, g.catalog_id, g.release_year, g.data_reliability
			FROM games g
			JOIN device_performance_records p ON p.game_id = g.id
			WHERE g.title ILIKE $1
			  AND p.device_id = $2
			  AND p.status NOT IN ('poor', 'untested')
			ORDER BY g.title
			LIMIT $3
		`
		rows, err = r.db.QueryContext(ctx, sqlQuery, pattern, deviceID, limit)
	} else {
		sqlQuery := `
			SELECT g.id, g.title, g.slug, g.catalog_id, g.release_year, g.data_reliability
			FROM games g
			WHERE g.title ILIKE $1
			ORDER BY g.title
			LIMIT $2
		`
		rows, err = r.db.QueryContext(ctx, sqlQuery, pattern, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search games: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var games []domain.Game
	for rows.Next() {
		var game domain.Game
		var releaseYear sql.NullInt64
		if err := rows.Scan(&game.ID, &game.Title, &game.Slug, &game.CatalogID, &releaseYear, &game.DataReliability); err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		if releaseYear.Valid {
			year := int(releaseYear.Int64)
			game.ReleaseYear = &year
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game rows: %w", err)
	}
	return games, nil
}

// GamesMissingMetadata: 장르 태그 또는 출시 연도가 비어있는 게임을 조회한다.
// (메타데이터 보강 잡 대상)
func (r *Repository) GamesMissingMetadata(ctx context.Context, limit int) ([]domain.Game, error) {
	var games []domain.Game
	err := r.gormDB.WithContext(ctx).
		Where("genre_tags IS NULL OR release_year IS NULL").
		Limit(limit).
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query games missing metadata: %w", err)
	}
	return games, nil
}

// GamesWithCatalogID: 카탈로그 ID가 있는 게임을 조회한다. (호환성 갱신 잡 대상)
func (r *Repository) GamesWithCatalogID(ctx context.Context, limit int) ([]domain.Game, error) {
	var games []domain.Game
	err := r.gormDB.WithContext(ctx).
		Where("catalog_id <> ''").
		Limit(limit).
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query games with catalog id: %w", err)
	}
	return games, nil
}

// UpdateMetadata: 보강된 장르 태그와 출시 연도를 저장한다.
func (r *Repository) UpdateMetadata(ctx context.Context, gameID uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.gormDB.WithContext(ctx).
		Model(&domain.Game{}).
		Where("id = ?", gameID).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("failed to update game metadata: %w", err)
	}
	return nil
}

// CountByReliability: 신뢰도 등급별 게임 수를 집계한다. (관리자 리포트용)
func (r *Repository) CountByReliability(ctx context.Context) (map[domain.DataReliability]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT data_reliability, COUNT(*)
		FROM games
		GROUP BY data_reliability
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count games by reliability: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[domain.DataReliability]int)
	for rows.Next() {
		var reliability domain.DataReliability
		var count int
		if err := rows.Scan(&reliability, &count); err != nil {
			return nil, fmt.Errorf("failed to scan reliability count: %w", err)
		}
		counts[reliability] = count
	}
	return counts, rows.Err()
}
