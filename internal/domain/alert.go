package domain

import "time"

// PriceAlert: 목표가 도달 시 알림을 받는 구독
type PriceAlert struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	GameID      uint       `json:"game_id" gorm:"index"`
	TargetPrice float64    `json:"target_price"`
	Contact     string     `json:"contact" gorm:"index"` // 이메일 또는 웹훅 수신자
	Active      bool       `json:"active" gorm:"index;default:true"`
	CreatedAt   time.Time  `json:"created_at"`
	NotifiedAt  *time.Time `json:"notified_at,omitempty"`
}

// Matches: 딜이 이 알림의 목표가 조건을 만족하는지 확인한다.
func (a *PriceAlert) Matches(deal *Deal) bool {
	if !a.Active || deal == nil || !deal.Active {
		return false
	}
	return a.GameID == deal.GameID && deal.Price <= a.TargetPrice
}
