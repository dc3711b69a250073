// Package pricing: 딜과 가격 추이에 대한 데이터베이스 접근을 담당한다.
package pricing

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/internal/service/database"
)

// Repository: 딜/가격 추이 저장소
type Repository struct {
	db     *sql.DB
	gormDB *gorm.DB
	logger *slog.Logger
}

// NewRepository: 새로운 딜 저장소 인스턴스를 생성합니다.
func NewRepository(postgres *database.PostgresService, logger *slog.Logger) *Repository {
	return &Repository{
		db:     postgres.GetDB(),
		gormDB: postgres.GetGormDB(),
		logger: logger,
	}
}

// UpsertDeal: 딜을 (game_id, store) 기준으로 업서트한다.
// 가격이 바뀐 경우 변경 전 가격과 관계없이 최신 값으로 덮어쓴다.
func (r *Repository) UpsertDeal(ctx context.Context, deal *domain.Deal) error {
	err := r.gormDB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "game_id"}, {Name: "store"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"external_id", "price", "list_price", "discount_pct", "currency",
			"url", "fetched_at", "expires_at", "active",
		}),
	}).Omit("Game").Create(deal).Error
	if err != nil {
		return fmt.Errorf("failed to upsert deal: %w", err)
	}
	return nil
}

// RecordPrice: 가격 추이 한 행을 기록한다.
func (r *Repository) RecordPrice(ctx context.Context, entry *domain.PriceHistoryEntry) error {
	if err := r.gormDB.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record price history: %w", err)
	}
	return nil
}

// DeactivateStale: 기준 시각 이전에 마지막으로 수집된 딜을 비활성화한다.
// 동기화 실행에서 더 이상 내려오지 않는 딜은 종료된 것으로 본다.
func (r *Repository) DeactivateStale(ctx context.Context, fetchedBefore time.Time) (int64, error) {
	result := r.gormDB.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("active = ? AND fetched_at < ?", true, fetchedBefore).
		Update("active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to deactivate stale deals: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		r.logger.Info("deals_deactivated", slog.Int64("count", result.RowsAffected))
	}
	return result.RowsAffected, nil
}

// ActiveDeals: 활성 딜을 할인율 내림차순으로 조회한다. (게임 정보 포함)
func (r *Repository) ActiveDeals(ctx context.Context, limit, offset int) ([]*domain.Deal, error) {
	var deals []*domain.Deal
	err := r.gormDB.WithContext(ctx).
		Preload("Game").
		Where("active = ?", true).
		Order("discount_pct DESC, price ASC").
		Limit(limit).
		Offset(offset).
		Find(&deals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query active deals: %w", err)
	}
	return deals, nil
}

// DealsForGame: 특정 게임의 활성 딜을 조회한다.
func (r *Repository) DealsForGame(ctx context.Context, gameID uint) ([]*domain.Deal, error) {
	var deals []*domain.Deal
	err := r.gormDB.WithContext(ctx).
		Where("game_id = ? AND active = ?", gameID, true).
		Order("price ASC").
		Find(&deals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query deals for game: %w", err)
	}
	return deals, nil
}

// HistoryForGame: 특정 게임의 가격 추이를 조회한다. (오래된 것부터)
func (r *Repository) HistoryForGame(ctx context.Context, gameID uint, since time.Time) ([]domain.PriceHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, game_id, store, price, recorded_at
		FROM price_history_entries
		WHERE game_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at ASC
	`, gameID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.PriceHistoryEntry
	for rows.Next() {
		var entry domain.PriceHistoryEntry
		if err := rows.Scan(&entry.ID, &entry.GameID, &entry.Store, &entry.Price, &entry.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price history row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// LowestRecordedPrice: 게임의 역대 최저가를 조회한다. 기록이 없으면 (0, false).
func (r *Repository) LowestRecordedPrice(ctx context.Context, gameID uint) (float64, bool, error) {
	var price sql.NullFloat64
	err := r.db.QueryRowContext(ctx, `
		SELECT MIN(price) FROM price_history_entries WHERE game_id = $1
	`, gameID).Scan(&price)
	if err != nil {
		return 0, false, fmt.Errorf("failed to query lowest price: %w", err)
	}
	if !price.Valid {
		return 0, false, nil
	}
	return price.Float64, true, nil
}

// CountActive: 활성 딜 수를 집계한다. (통계용)
func (r *Repository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.gormDB.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("active = ?", true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active deals: %w", err)
	}
	return count, nil
}
