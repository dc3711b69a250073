package domain

import "time"

// ReviewConfidence: 리뷰 신뢰도 등급
type ReviewConfidence string

const (
	ConfidenceHigh   ReviewConfidence = "high"
	ConfidenceMedium ReviewConfidence = "medium"
	ConfidenceLow    ReviewConfidence = "low"
)

// Review: 큐레이터 리뷰 (기기별 플레이 경험 정리)
type Review struct {
	ID             uint             `json:"id" gorm:"primaryKey"`
	GameID         uint             `json:"game_id" gorm:"index"`
	DeviceID       string           `json:"device_id"`
	Author         string           `json:"author"`
	Confidence     ReviewConfidence `json:"confidence" gorm:"default:medium"`
	Published      bool             `json:"published" gorm:"index"`
	CuratorNote    string           `json:"curator_note"`
	LastVerifiedAt *time.Time       `json:"last_verified_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
