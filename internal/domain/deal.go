package domain

import "time"

// Deal: 스토어별 게임 할인 딜
type Deal struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	GameID      uint       `json:"game_id" gorm:"index:idx_deal_game_store,unique"`
	Store       string     `json:"store" gorm:"index:idx_deal_game_store,unique"` // steam, gog, epic 등
	ExternalID  string     `json:"external_id" gorm:"index"`                      // 애그리게이터 측 딜 ID
	Price       float64    `json:"price"`
	ListPrice   float64    `json:"list_price"`
	DiscountPct int        `json:"discount_pct"`
	Currency    string     `json:"currency" gorm:"default:USD"`
	URL         string     `json:"url"`
	FetchedAt   time.Time  `json:"fetched_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Active      bool       `json:"active" gorm:"index"`
	Game        *Game      `json:"game,omitempty" gorm:"foreignKey:GameID"`
}

// PriceHistoryEntry: 가격 추이 기록 (딜 갱신 시마다 1행)
type PriceHistoryEntry struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	GameID     uint      `json:"game_id" gorm:"index"`
	Store      string    `json:"store"`
	Price      float64   `json:"price"`
	RecordedAt time.Time `json:"recorded_at" gorm:"index"`
}

// IsBetterThan: 동일 게임의 다른 딜보다 유리한지 비교한다. (가격 우선, 동가면 할인율)
func (d *Deal) IsBetterThan(other *Deal) bool {
	if other == nil {
		return true
	}
	if d.Price != other.Price {
		return d.Price < other.Price
	}
	return d.DiscountPct > other.DiscountPct
}
