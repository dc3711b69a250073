// Package estimator: 게임의 정적 속성으로부터 기기별 배터리 지속 시간을 추정하는
// 순수 휴리스틱을 구현한다. 모든 입력 필드는 선택적이며, 누락된 필드는 해당 보정
// 단계를 건너뛴다. 에러를 반환하지 않는다.
package estimator

import (
	"fmt"
	"strings"

	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/internal/util"
)

// DrainCategory: 배터리 소모 등급. low = 소모가 적어 오래 가는 게임.
type DrainCategory string

const (
	DrainLow    DrainCategory = "low"
	DrainMedium DrainCategory = "medium"
	DrainHigh   DrainCategory = "high"
)

// Input: 추정에 사용하는 게임 정적 속성. 모든 필드 선택적.
type Input struct {
	GenreTags     []string
	ReleaseYear   *int
	DeckVerified  bool
	CommunityTier string // "platinum" 등. 빈 문자열이면 미적용
}

// Estimate: 단일 기기에 대한 추정 결과
type Estimate struct {
	DeviceID     string            `json:"device_id"`
	Status       domain.PerfStatus `json:"status"`
	BatteryHours float64           `json:"battery_hours"`
	Category     DrainCategory     `json:"category"`
	Estimated    bool              `json:"estimated"`
	Notes        string            `json:"notes"`
}

// genreModifier: 장르 태그별 가감 시간. 우선순위 순서로 스캔하며 첫 매치만 적용한다.
// 가벼운 장르가 위, 무거운 장르가 아래. 누적 적용하지 않는다.
type genreModifier struct {
	Tag   string
	Delta float64
}

var genreTable = []genreModifier{
	{"visual-novel", 2.5},
	{"puzzle", 2.0},
	{"indie", 2.0},
	{"card", 1.5},
	{"platformer", 1.0},
	{"roguelike", 1.0},
	{"turn-based", 0.5},
	{"strategy", 0.5},
	{"rpg", -0.5},
	{"simulation", -0.5},
	{"racing", -1.0},
	{"action", -1.0},
	{"fps", -1.5},
	{"open-world", -1.5},
	{"aaa", -2.0},
}

const (
	oldReleaseCutoff     = 2020 // 미만이면 +0.5
	recentReleaseCutoff  = 2023 // 이상이면 -0.5
	oldReleaseBonus      = 0.5
	recentReleasePenalty = -0.5
	deckVerifiedBonus    = 1.0
	platinumTierBonus    = 0.5
)

// ForDevice: 단일 기기에 대한 배터리 추정치를 계산한다.
// 미지원 기기 ID면 ok=false를 반환한다.
func ForDevice(deviceID string, in Input) (Estimate, bool) {
	device, ok := domain.DeviceByID(deviceID)
	if !ok {
		return Estimate{}, false
	}
	return forDevice(device, in), true
}

// ForAllDevices: 지원하는 모든 기기에 대해 추정치를 일괄 계산한다.
func ForAllDevices(in Input) []Estimate {
	devices := domain.Devices()
	out := make([]Estimate, 0, len(devices))
	for _, d := range devices {
		out = append(out, forDevice(d, in))
	}
	return out
}

func forDevice(device domain.Device, in Input) Estimate {
	profile := device.EstimatorProfile
	hours := profile.BaselineHours

	var trace []string
	trace = append(trace, fmt.Sprintf("baseline %.1fh", profile.BaselineHours))

	tags := normalizeTags(in.GenreTags)

	// 장르 보정: 테이블 순서대로 스캔, 첫 매치만 적용
	if tag, delta, matched := matchGenre(tags); matched {
		hours += delta
		trace = append(trace, fmt.Sprintf("genre %s %+.1fh", tag, delta))
	}

	// 기기별 2차 보정
	if profile.FlatBonus != 0 {
		hours += profile.FlatBonus
		trace = append(trace, fmt.Sprintf("larger battery %+.1fh", profile.FlatBonus))
	}
	if profile.ActionPenalty != 0 && hasAny(tags, "action", "fps") {
		hours += profile.ActionPenalty
		trace = append(trace, fmt.Sprintf("thermal load on action titles %+.1fh", profile.ActionPenalty))
	}

	// 출시 연도 보정
	if in.ReleaseYear != nil {
		switch year := *in.ReleaseYear; {
		case year < oldReleaseCutoff:
			hours += oldReleaseBonus
			trace = append(trace, fmt.Sprintf("pre-%d release %+.1fh", oldReleaseCutoff, oldReleaseBonus))
		case year >= recentReleaseCutoff:
			hours += recentReleasePenalty
			trace = append(trace, fmt.Sprintf("recent release %+.1fh", recentReleasePenalty))
		}
	}

	// 최적화 보정
	if in.DeckVerified && device.HasVerificationProgram {
		hours += deckVerifiedBonus
		trace = append(trace, fmt.Sprintf("deck verified %+.1fh", deckVerifiedBonus))
	}
	if util.Normalize(in.CommunityTier) == string(domain.TierPlatinum) {
		hours += platinumTierBonus
		trace = append(trace, fmt.Sprintf("platinum tier %+.1fh", platinumTierBonus))
	}

	hours = util.ClampFloat(hours, profile.ClampMin, profile.ClampMax)
	hours = util.Round1(hours)

	category := categorize(hours, profile)
	trace = append(trace, fmt.Sprintf("total %.1fh (%s drain)", hours, category))

	return Estimate{
		DeviceID:     device.ID,
		Status:       domain.PerfEstimated,
		BatteryHours: hours,
		Category:     category,
		Estimated:    true,
		Notes:        strings.Join(trace, "; "),
	}
}

func categorize(hours float64, profile domain.EstimatorProfile) DrainCategory {
	switch {
	case hours >= profile.LowDrainMinHours:
		return DrainLow
	case hours >= profile.MediumDrainMinHours:
		return DrainMedium
	default:
		return DrainHigh
	}
}

func matchGenre(tags []string) (string, float64, bool) {
	for _, entry := range genreTable {
		for _, tag := range tags {
			if tag == entry.Tag {
				return entry.Tag, entry.Delta, true
			}
		}
	}
	return "", 0, false
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if norm := util.NormalizeTag(t); norm != "" {
			out = append(out, norm)
		}
	}
	return out
}

func hasAny(tags []string, targets ...string) bool {
	for _, t := range tags {
		for _, target := range targets {
			if t == target {
				return true
			}
		}
	}
	return false
}
