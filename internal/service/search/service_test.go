package search

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"

	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/pkg/errors"
)

type fakeSearcher struct {
	games []domain.Game
	calls int
}

func (f *fakeSearcher) Search(_ context.Context, _, _ string, _ int) ([]domain.Game, error) {
	f.calls++
	return f.games, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tags(t *testing.T, values ...string) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(values)
	if err != nil {
		t.Fatalf("marshal tags: %v", err)
	}
	return datatypes.JSON(raw)
}

func TestSearchRejectsShortQuery(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeSearcher{}, nil, discardLogger())

	_, err := svc.Search(context.Background(), "a", "")
	if err == nil {
		t.Fatal("error = nil, want validation error")
	}
	var validationErr *errors.ValidationError
	if !stderrors.As(err, &validationErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}

func TestSearchRejectsUnknownDevice(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeSearcher{}, nil, discardLogger())

	if _, err := svc.Search(context.Background(), "hades", "switch_2"); err == nil {
		t.Fatal("error = nil, want validation error")
	}
}

func TestSearchWithDeviceAddsEstimate(t *testing.T) {
	t.Parallel()

	year := 2018
	searcher := &fakeSearcher{games: []domain.Game{{
		Title:           "Hades",
		Slug:            "hades",
		GenreTags:       tags(t, "indie", "roguelike"),
		ReleaseYear:     &year,
		DataReliability: domain.ReliabilityEstimatedAPI,
	}}}
	svc := NewService(searcher, nil, discardLogger())

	results, err := svc.Search(context.Background(), "hades", "steam_deck")
	if err != nil {
		t.Fatalf("Search error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}

	est := results[0].Estimate
	if est == nil {
		t.Fatal("Estimate = nil, want per-device estimate")
	}
	// 4.0 (baseline) + 2.0 (indie) + 0.5 (pre-2020) = 6.5h
	if est.BatteryHours != 6.5 {
		t.Errorf("BatteryHours = %.1f, want 6.5", est.BatteryHours)
	}
}

func TestSearchWithoutDeviceOmitsEstimate(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{games: []domain.Game{{Title: "Hades", Slug: "hades"}}}
	svc := NewService(searcher, nil, discardLogger())

	results, err := svc.Search(context.Background(), "hades", "")
	if err != nil {
		t.Fatalf("Search error = %v", err)
	}
	if results[0].Estimate != nil {
		t.Errorf("Estimate = %+v, want nil", results[0].Estimate)
	}
}
