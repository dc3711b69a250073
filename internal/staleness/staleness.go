// Package staleness: 장기 미검증 데이터의 재검증 대상 분류를 구현한다.
// 모든 판정 함수는 명시적인 now를 인자로 받으며 (내부에서 벽시계를 읽지 않음),
// I/O 없이 판정 결과만 반환한다. 영속화는 호출자(동기화 잡)의 몫이다.
package staleness

import (
	"fmt"
	"strings"
	"time"

	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/domain"
)

// GameAction: 게임 레코드에 대한 판정 결과
type GameAction string

const (
	GameActionDowngrade  GameAction = "downgrade"    // hand_tested -> stale_tested 전환 필요
	GameActionFresh      GameAction = "fresh"        // 모든 측정이 임계값 이내
	GameActionNoTestData GameAction = "no_test_data" // 측정 타임스탬프 전무. 보고만 하고 변경 없음
	GameActionSkip       GameAction = "skip"         // hand_tested가 아님. 판정 대상 아님
)

// GameDecision: 게임 단위 판정 결과
type GameDecision struct {
	GameID         uint
	Action         GameAction
	NewReliability domain.DataReliability // downgrade일 때만 유효
	StaleDevices   []string               // 임계값을 넘긴 기기 ID 목록
	OldestAgeDays  int                    // 가장 오래된 측정의 경과 일수
}

// ReviewDecision: 리뷰 단위 판정 결과
type ReviewDecision struct {
	ReviewID      uint
	NewConfidence domain.ReviewConfidence
	AppendedNote  string // 기존 노트 + 자동 플래그 노트
	AgeMonths     int
}

// ClassifyGame: hand_tested 게임의 기기별 측정 타임스탬프를 검사한다.
// 어느 한 기기라도 now-threshold보다 오래됐으면 (OR 조건) 레코드 전체를
// stale_tested로 강등하도록 판정한다.
func ClassifyGame(game *domain.Game, now time.Time) GameDecision {
	decision := GameDecision{GameID: game.ID}

	if game.DataReliability != domain.ReliabilityHandTested {
		decision.Action = GameActionSkip
		return decision
	}

	cutoff := now.Add(-constants.StalenessConfig.Threshold)
	var oldest *time.Time

	for i := range game.Performance {
		rec := &game.Performance[i]
		if rec.TestedAt == nil {
			continue
		}
		if oldest == nil || rec.TestedAt.Before(*oldest) {
			oldest = rec.TestedAt
		}
		if rec.TestedAt.Before(cutoff) {
			decision.StaleDevices = append(decision.StaleDevices, rec.DeviceID)
		}
	}

	if oldest == nil {
		decision.Action = GameActionNoTestData
		return decision
	}

	decision.OldestAgeDays = int(now.Sub(*oldest).Hours() / 24)
	if len(decision.StaleDevices) > 0 {
		decision.Action = GameActionDowngrade
		decision.NewReliability = domain.ReliabilityStaleTested
	} else {
		decision.Action = GameActionFresh
	}
	return decision
}

// ClassifyReview: 게시된 리뷰의 최종 검증 시각을 검사한다. 임계값을 넘긴 리뷰는
// 신뢰도를 한 단계만 강등하고 (high -> medium, medium/low 유지) 타임스탬프가 찍힌
// 자동 노트를 덧붙인다. 노트에 이미 플래그 문구가 있으면 재적용하지 않는다 (멱등).
// 판정이 필요 없으면 ok=false.
func ClassifyReview(review *domain.Review, now time.Time) (ReviewDecision, bool) {
	if !review.Published {
		return ReviewDecision{}, false
	}
	if strings.Contains(review.CuratorNote, constants.StalenessConfig.FlagSentinel) {
		return ReviewDecision{}, false
	}
	if review.LastVerifiedAt == nil {
		return ReviewDecision{}, false
	}

	cutoff := now.Add(-constants.StalenessConfig.Threshold)
	if !review.LastVerifiedAt.Before(cutoff) {
		return ReviewDecision{}, false
	}

	ageMonths := int(now.Sub(*review.LastVerifiedAt).Hours() / (24 * 30))

	confidence := review.Confidence
	if confidence == domain.ConfidenceHigh {
		confidence = domain.ConfidenceMedium
	}

	flagNote := fmt.Sprintf("%s %s: last verified %d months ago]",
		constants.StalenessConfig.FlagSentinel, now.UTC().Format("2006-01-02"), ageMonths)

	note := review.CuratorNote
	if note != "" {
		note += "\n"
	}
	note += flagNote

	return ReviewDecision{
		ReviewID:      review.ID,
		NewConfidence: confidence,
		AppendedNote:  note,
		AgeMonths:     ageMonths,
	}, true
}
