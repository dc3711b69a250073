package domain

import (
	"time"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
)

// DataReliability: 게임 성능 데이터의 신뢰도 등급
type DataReliability string

const (
	ReliabilityHandTested        DataReliability = "hand_tested"        // 직접 실기 측정
	ReliabilityCommunityVerified DataReliability = "community_verified" // 커뮤니티 검증
	ReliabilityEstimatedAPI      DataReliability = "estimated_api"      // 휴리스틱 추정
	ReliabilityStaleTested       DataReliability = "stale_tested"       // 측정 후 장기 미검증
)

// VerifiedStatus: 공식 호환성 검증 상태 (Steam Deck Verified 프로그램)
type VerifiedStatus string

const (
	VerifiedStatusVerified    VerifiedStatus = "verified"
	VerifiedStatusPlayable    VerifiedStatus = "playable"
	VerifiedStatusUnsupported VerifiedStatus = "unsupported"
	VerifiedStatusUnknown     VerifiedStatus = "unknown"
)

// CommunityTier: 커뮤니티 호환성 등급 (ProtonDB 스타일)
type CommunityTier string

const (
	TierPlatinum CommunityTier = "platinum"
	TierGold     CommunityTier = "gold"
	TierSilver   CommunityTier = "silver"
	TierBronze   CommunityTier = "bronze"
	TierBorked   CommunityTier = "borked"
)

// ControllerSupport: 컨트롤러 지원 수준
type ControllerSupport string

const (
	ControllerFull    ControllerSupport = "full"
	ControllerPartial ControllerSupport = "partial"
	ControllerNone    ControllerSupport = "none"
)

// PerfStatus: 기기별 성능 레코드 상태
type PerfStatus string

const (
	PerfExcellent PerfStatus = "excellent"
	PerfGood      PerfStatus = "good"
	PerfPlayable  PerfStatus = "playable"
	PerfPoor      PerfStatus = "poor"
	PerfUntested  PerfStatus = "untested"
	PerfEstimated PerfStatus = "estimated"
)

// DevicePerformanceRecord: 특정 기기에서의 게임 성능 측정/추정 레코드
type DevicePerformanceRecord struct {
	ID           uint       `json:"-" gorm:"primaryKey"`
	GameID       uint       `json:"-" gorm:"index:idx_perf_game_device,unique"`
	DeviceID     string     `json:"device_id" gorm:"index:idx_perf_game_device,unique"`
	Status       PerfStatus `json:"status"`
	FPS          *int       `json:"fps,omitempty"`
	BatteryHours *float64   `json:"battery_hours,omitempty"`
	TestedAt     *time.Time `json:"tested_at,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Estimated    bool       `json:"estimated"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Game: 게임 콘텐츠 레코드 (CMS/DB 동기화 대상)
type Game struct {
	ID              uint                      `json:"id" gorm:"primaryKey"`
	Title           string                    `json:"title" gorm:"not null"`
	Slug            string                    `json:"slug" gorm:"uniqueIndex;not null"`
	CatalogID       string                    `json:"catalog_id" gorm:"index"` // 외부 카탈로그(스팀 앱) ID
	GenreTags       datatypes.JSON            `json:"genre_tags"`              // ["indie", "roguelike", ...]
	ReleaseYear     *int                      `json:"release_year,omitempty"`
	VerifiedStatus  VerifiedStatus            `json:"verified_status" gorm:"default:unknown"`
	CommunityTier   *CommunityTier            `json:"community_tier,omitempty"`
	Controller      ControllerSupport         `json:"controller_support" gorm:"default:none"`
	DataReliability DataReliability           `json:"data_reliability" gorm:"index;default:estimated_api"`
	Performance     []DevicePerformanceRecord `json:"performance,omitempty" gorm:"foreignKey:GameID"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}

// Tags: JSONB 장르 태그를 문자열 슬라이스로 디코딩한다. 파싱 실패 시 nil.
func (g *Game) Tags() []string {
	if len(g.GenreTags) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(g.GenreTags, &tags); err != nil {
		return nil
	}
	return tags
}

// PerformanceFor: 특정 기기의 성능 레코드를 찾는다.
func (g *Game) PerformanceFor(deviceID string) (*DevicePerformanceRecord, bool) {
	for i := range g.Performance {
		if g.Performance[i].DeviceID == deviceID {
			return &g.Performance[i], true
		}
	}
	return nil, false
}

// IsDeckVerified: Steam Deck 공식 검증 통과 여부
func (g *Game) IsDeckVerified() bool {
	return g.VerifiedStatus == VerifiedStatusVerified
}
