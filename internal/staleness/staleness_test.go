package staleness

import (
	"strings"
	"testing"
	"time"

	"github.com/kapu/handheld-deals-go/internal/domain"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

func handTestedGame(id uint, testedDaysAgo map[string]int) *domain.Game {
	game := &domain.Game{ID: id, DataReliability: domain.ReliabilityHandTested}
	for deviceID, days := range testedDaysAgo {
		game.Performance = append(game.Performance, domain.DevicePerformanceRecord{
			DeviceID: deviceID,
			Status:   domain.PerfGood,
			TestedAt: timePtr(now.AddDate(0, 0, -days)),
		})
	}
	return game
}

func TestClassifyGameORSemantics(t *testing.T) {
	t.Parallel()

	// 기기 하나만 200일 경과해도 (나머지 10일) 레코드 전체가 강등 대상이다.
	game := handTestedGame(1, map[string]int{
		"steam_deck": 200,
		"rog_ally":   10,
		"legion_go":  10,
	})

	decision := ClassifyGame(game, now)

	if decision.Action != GameActionDowngrade {
		t.Fatalf("Action = %s, want downgrade", decision.Action)
	}
	if decision.NewReliability != domain.ReliabilityStaleTested {
		t.Errorf("NewReliability = %s, want stale_tested", decision.NewReliability)
	}
	if len(decision.StaleDevices) != 1 || decision.StaleDevices[0] != "steam_deck" {
		t.Errorf("StaleDevices = %v, want [steam_deck]", decision.StaleDevices)
	}
	if decision.OldestAgeDays != 200 {
		t.Errorf("OldestAgeDays = %d, want 200", decision.OldestAgeDays)
	}
}

func TestClassifyGameFresh(t *testing.T) {
	t.Parallel()

	game := handTestedGame(2, map[string]int{"steam_deck": 30, "rog_ally": 90})

	decision := ClassifyGame(game, now)
	if decision.Action != GameActionFresh {
		t.Errorf("Action = %s, want fresh", decision.Action)
	}
	if decision.OldestAgeDays != 90 {
		t.Errorf("OldestAgeDays = %d, want 90", decision.OldestAgeDays)
	}
}

func TestClassifyGameBoundary(t *testing.T) {
	t.Parallel()

	// 정확히 180일은 '예전'이 아니므로 신선하다. 181일부터 강등.
	exactly := handTestedGame(3, map[string]int{"steam_deck": 180})
	if d := ClassifyGame(exactly, now); d.Action != GameActionFresh {
		t.Errorf("180 days: Action = %s, want fresh", d.Action)
	}

	over := handTestedGame(4, map[string]int{"steam_deck": 181})
	if d := ClassifyGame(over, now); d.Action != GameActionDowngrade {
		t.Errorf("181 days: Action = %s, want downgrade", d.Action)
	}
}

func TestClassifyGameNoTestData(t *testing.T) {
	t.Parallel()

	game := &domain.Game{
		ID:              5,
		DataReliability: domain.ReliabilityHandTested,
		Performance: []domain.DevicePerformanceRecord{
			{DeviceID: "steam_deck", Status: domain.PerfUntested},
		},
	}

	decision := ClassifyGame(game, now)
	if decision.Action != GameActionNoTestData {
		t.Errorf("Action = %s, want no_test_data", decision.Action)
	}
}

func TestClassifyGameSkipsNonHandTested(t *testing.T) {
	t.Parallel()

	for _, reliability := range []domain.DataReliability{
		domain.ReliabilityCommunityVerified,
		domain.ReliabilityEstimatedAPI,
		domain.ReliabilityStaleTested,
	} {
		game := handTestedGame(6, map[string]int{"steam_deck": 400})
		game.DataReliability = reliability

		if d := ClassifyGame(game, now); d.Action != GameActionSkip {
			t.Errorf("%s: Action = %s, want skip", reliability, d.Action)
		}
	}
}

func TestClassifyReviewDowngradesHighOnce(t *testing.T) {
	t.Parallel()

	review := &domain.Review{
		ID:             10,
		Published:      true,
		Confidence:     domain.ConfidenceHigh,
		CuratorNote:    "Runs great on medium settings.",
		LastVerifiedAt: timePtr(now.AddDate(0, 0, -210)),
	}

	decision, ok := ClassifyReview(review, now)
	if !ok {
		t.Fatal("ClassifyReview ok = false, want true")
	}
	if decision.NewConfidence != domain.ConfidenceMedium {
		t.Errorf("NewConfidence = %s, want medium", decision.NewConfidence)
	}
	if decision.AgeMonths != 7 {
		t.Errorf("AgeMonths = %d, want 7", decision.AgeMonths)
	}
	if !strings.HasPrefix(decision.AppendedNote, "Runs great on medium settings.\n") {
		t.Errorf("AppendedNote = %q, must preserve prior note", decision.AppendedNote)
	}
	if !strings.Contains(decision.AppendedNote, "[re-test flagged 2025-06-15: last verified 7 months ago]") {
		t.Errorf("AppendedNote = %q, missing auto note", decision.AppendedNote)
	}

	// 판정 결과를 반영하고 다시 돌리면 멱등: 플래그 문구가 이미 있으므로 스킵된다.
	review.Confidence = decision.NewConfidence
	review.CuratorNote = decision.AppendedNote
	if _, again := ClassifyReview(review, now); again {
		t.Error("second ClassifyReview ok = true, want idempotent skip")
	}
}

func TestClassifyReviewMediumStaysMedium(t *testing.T) {
	t.Parallel()

	review := &domain.Review{
		ID:             11,
		Published:      true,
		Confidence:     domain.ConfidenceMedium,
		LastVerifiedAt: timePtr(now.AddDate(0, 0, -200)),
	}

	decision, ok := ClassifyReview(review, now)
	if !ok {
		t.Fatal("ClassifyReview ok = false, want true")
	}
	if decision.NewConfidence != domain.ConfidenceMedium {
		t.Errorf("NewConfidence = %s, want medium (one step only)", decision.NewConfidence)
	}
}

func TestClassifyReviewSkips(t *testing.T) {
	t.Parallel()

	tests := map[string]*domain.Review{
		"unpublished":  {Published: false, Confidence: domain.ConfidenceHigh, LastVerifiedAt: timePtr(now.AddDate(0, 0, -300))},
		"no_timestamp": {Published: true, Confidence: domain.ConfidenceHigh},
		"recent":       {Published: true, Confidence: domain.ConfidenceHigh, LastVerifiedAt: timePtr(now.AddDate(0, 0, -30))},
		"already_flagged": {
			Published:      true,
			Confidence:     domain.ConfidenceMedium,
			CuratorNote:    "[re-test flagged 2025-01-01: last verified 8 months ago]",
			LastVerifiedAt: timePtr(now.AddDate(0, 0, -400)),
		},
	}

	for name, review := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, ok := ClassifyReview(review, now); ok {
				t.Error("ClassifyReview ok = true, want skip")
			}
		})
	}
}
