// Package alert: 가격 알림 구독 관리와 발송을 담당한다.
package alert

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/internal/service/database"
)

// Repository: 가격 알림 저장소
type Repository struct {
	db     *sql.DB
	gormDB *gorm.DB
	logger *slog.Logger
}

// NewRepository: 새로운 알림 저장소 인스턴스를 생성합니다.
func NewRepository(postgres *database.PostgresService, logger *slog.Logger) *Repository {
	return &Repository{
		db:     postgres.GetDB(),
		gormDB: postgres.GetGormDB(),
		logger: logger,
	}
}

// Create: 알림 구독을 생성한다.
func (r *Repository) Create(ctx context.Context, alert *domain.PriceAlert) error {
	alert.Active = true
	if err := r.gormDB.WithContext(ctx).Create(alert).Error; err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

// Deactivate: 알림 구독을 비활성화한다. (구독 해지)
func (r *Repository) Deactivate(ctx context.Context, alertID uint, contact string) error {
	result := r.gormDB.WithContext(ctx).
		Model(&domain.PriceAlert{}).
		Where("id = ? AND contact = ?", alertID, contact).
		Update("active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate alert: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MatchingDeal: 딜 조건(게임, 목표가)을 만족하는 활성 알림을 조회한다.
func (r *Repository) MatchingDeal(ctx context.Context, deal *domain.Deal) ([]domain.PriceAlert, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, game_id, target_price, contact, active, created_at
		FROM price_alerts
		WHERE active = true AND game_id = $1 AND target_price >= $2
	`, deal.GameID, deal.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to query matching alerts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var alerts []domain.PriceAlert
	for rows.Next() {
		var alert domain.PriceAlert
		if err := rows.Scan(&alert.ID, &alert.GameID, &alert.TargetPrice, &alert.Contact, &alert.Active, &alert.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// MarkNotified: 알림 발송 시각을 기록한다.
func (r *Repository) MarkNotified(ctx context.Context, alertID uint, at time.Time) error {
	err := r.gormDB.WithContext(ctx).
		Model(&domain.PriceAlert{}).
		Where("id = ?", alertID).
		Update("notified_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to mark alert notified: %w", err)
	}
	return nil
}

// ListForContact: 특정 수신자의 활성 알림 목록을 조회한다.
func (r *Repository) ListForContact(ctx context.Context, contact string) ([]domain.PriceAlert, error) {
	var alerts []domain.PriceAlert
	err := r.gormDB.WithContext(ctx).
		Where("contact = ? AND active = ?", contact, true).
		Order("created_at DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}
