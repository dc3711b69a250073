package estimator

import (
	"strings"
	"testing"

	"github.com/kapu/handheld-deals-go/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestEndToEndIndieExample(t *testing.T) {
	t.Parallel()

	// Steam Deck 기준: 4.0 (baseline) + 2.0 (indie) + 0.5 (pre-2020) = 6.5h
	est, ok := ForDevice("steam_deck", Input{
		GenreTags:   []string{"indie"},
		ReleaseYear: intPtr(2018),
	})
	if !ok {
		t.Fatal("ForDevice(steam_deck) ok = false")
	}

	if est.BatteryHours != 6.5 {
		t.Errorf("BatteryHours = %.1f, want 6.5", est.BatteryHours)
	}
	if est.Category != DrainLow {
		t.Errorf("Category = %s, want low", est.Category)
	}
	if !est.Estimated {
		t.Error("Estimated = false, want true")
	}
	if est.Status != domain.PerfEstimated {
		t.Errorf("Status = %s, want estimated", est.Status)
	}
	for _, fragment := range []string{"baseline 4.0h", "genre indie +2.0h", "pre-2020 release +0.5h", "total 6.5h (low drain)"} {
		if !strings.Contains(est.Notes, fragment) {
			t.Errorf("Notes = %q, missing %q", est.Notes, fragment)
		}
	}
}

func TestClampBounds(t *testing.T) {
	t.Parallel()

	lightStack := Input{
		GenreTags:     []string{"visual-novel"},
		ReleaseYear:   intPtr(2015),
		DeckVerified:  true,
		CommunityTier: "platinum",
	}
	heavyStack := Input{
		GenreTags:   []string{"fps", "action", "aaa"},
		ReleaseYear: intPtr(2024),
	}

	for _, device := range domain.Devices() {
		profile := device.EstimatorProfile

		upper, _ := ForDevice(device.ID, lightStack)
		if upper.BatteryHours > profile.ClampMax {
			t.Errorf("%s: light stack %.1fh exceeds clamp max %.1f", device.ID, upper.BatteryHours, profile.ClampMax)
		}

		lower, _ := ForDevice(device.ID, heavyStack)
		if lower.BatteryHours < profile.ClampMin {
			t.Errorf("%s: heavy stack %.1fh below clamp min %.1f", device.ID, lower.BatteryHours, profile.ClampMin)
		}
	}

	// Steam Deck은 모든 보너스 합산 시 상한에 정확히 걸려야 함: 4.0+2.5+0.5+1.0+0.5 = 8.5 -> 8.0
	capped, _ := ForDevice("steam_deck", lightStack)
	if capped.BatteryHours != 8.0 {
		t.Errorf("steam_deck capped = %.1f, want 8.0", capped.BatteryHours)
	}
}

func TestIdempotence(t *testing.T) {
	t.Parallel()

	in := Input{GenreTags: []string{"roguelike", "action"}, ReleaseYear: intPtr(2021), CommunityTier: "gold"}

	first := ForAllDevices(in)
	second := ForAllDevices(in)

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("batch sizes = %d, %d, want 3", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("device %s: repeated run differs: %+v vs %+v", first[i].DeviceID, first[i], second[i])
		}
	}
}

func TestGenreMonotonicity(t *testing.T) {
	t.Parallel()

	// 동일 기기/속성에서 가벼운 장르(puzzle)가 무거운 장르(fps)보다 낮게 나오면 안 된다.
	light, _ := ForDevice("legion_go", Input{GenreTags: []string{"puzzle"}})
	heavy, _ := ForDevice("legion_go", Input{GenreTags: []string{"fps"}})

	if light.BatteryHours < heavy.BatteryHours {
		t.Errorf("puzzle %.1fh < fps %.1fh", light.BatteryHours, heavy.BatteryHours)
	}
}

func TestGenreFirstMatchWins(t *testing.T) {
	t.Parallel()

	// indie가 테이블에서 fps보다 먼저 오므로, 두 태그가 모두 있어도 indie(+2.0)만 적용된다.
	est, _ := ForDevice("steam_deck", Input{GenreTags: []string{"fps", "indie"}})

	if est.BatteryHours != 6.0 {
		t.Errorf("BatteryHours = %.1f, want 6.0 (indie only)", est.BatteryHours)
	}
	if !strings.Contains(est.Notes, "genre indie") {
		t.Errorf("Notes = %q, want indie modifier", est.Notes)
	}
	if strings.Contains(est.Notes, "genre fps") {
		t.Errorf("Notes = %q, fps modifier must not apply", est.Notes)
	}
}

func TestDeviceSecondaryModifiers(t *testing.T) {
	t.Parallel()

	// legion_go는 큰 배터리 플랫 보너스 +0.3
	legion, _ := ForDevice("legion_go", Input{})
	if legion.BatteryHours != 3.3 {
		t.Errorf("legion_go baseline = %.1f, want 3.3", legion.BatteryHours)
	}

	// rog_ally는 action 태그에 -0.5 추가 페널티: 2.5 - 1.0 (action) - 0.5 = 1.0
	ally, _ := ForDevice("rog_ally", Input{GenreTags: []string{"action"}})
	if ally.BatteryHours != 1.0 {
		t.Errorf("rog_ally action = %.1f, want 1.0", ally.BatteryHours)
	}
}

func TestDeckVerifiedOnlyAppliesToSteamDeck(t *testing.T) {
	t.Parallel()

	in := Input{DeckVerified: true}

	deck, _ := ForDevice("steam_deck", in)
	if deck.BatteryHours != 5.0 {
		t.Errorf("steam_deck verified = %.1f, want 5.0", deck.BatteryHours)
	}

	ally, _ := ForDevice("rog_ally", in)
	if ally.BatteryHours != 2.5 {
		t.Errorf("rog_ally verified = %.1f, want 2.5 (no verification program)", ally.BatteryHours)
	}
}

func TestCategoryBoundariesPerDevice(t *testing.T) {
	t.Parallel()

	// 같은 시간이라도 기기별 임계값에 따라 등급이 달라진다.
	tests := map[string]struct {
		hours  float64
		device string
		want   DrainCategory
	}{
		"deck_4.2_medium":   {hours: 4.2, device: "steam_deck", want: DrainMedium},
		"ally_4.2_low":      {hours: 4.2, device: "rog_ally", want: DrainLow},
		"legion_4.2_medium": {hours: 4.2, device: "legion_go", want: DrainMedium},
		"deck_exact_low":    {hours: 5.0, device: "steam_deck", want: DrainLow},
		"deck_high":         {hours: 2.9, device: "steam_deck", want: DrainHigh},
		"legion_exact_low":  {hours: 4.5, device: "legion_go", want: DrainLow},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			device, ok := domain.DeviceByID(tc.device)
			if !ok {
				t.Fatalf("unknown device %s", tc.device)
			}
			if got := categorize(tc.hours, device.EstimatorProfile); got != tc.want {
				t.Errorf("categorize(%.1f, %s) = %s, want %s", tc.hours, tc.device, got, tc.want)
			}
		})
	}
}

func TestMissingInputsFallBackToBaseline(t *testing.T) {
	t.Parallel()

	est, ok := ForDevice("steam_deck", Input{})
	if !ok {
		t.Fatal("ForDevice ok = false")
	}
	if est.BatteryHours != 4.0 {
		t.Errorf("BatteryHours = %.1f, want baseline 4.0", est.BatteryHours)
	}
	if est.Category != DrainMedium {
		t.Errorf("Category = %s, want medium", est.Category)
	}
}

func TestUnknownDevice(t *testing.T) {
	t.Parallel()

	if _, ok := ForDevice("switch_2", Input{}); ok {
		t.Error("ForDevice(switch_2) ok = true, want false")
	}
}

func TestTagNormalization(t *testing.T) {
	t.Parallel()

	// 대문자/공백 표기 태그도 매칭되어야 한다.
	est, _ := ForDevice("steam_deck", Input{GenreTags: []string{"Visual Novel"}})
	if est.BatteryHours != 6.5 {
		t.Errorf("BatteryHours = %.1f, want 6.5 (visual-novel +2.5)", est.BatteryHours)
	}
}
