package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/internal/service/search"
)

type stubSearcher struct {
	games []domain.Game
}

func (s *stubSearcher) Search(ctx context.Context, query, deviceID string, limit int) ([]domain.Game, error) {
	return s.games, nil
}

func newSearchRouter(searcher *stubSearcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	searchSvc := search.NewService(searcher, nil, logger)
	handler := NewAPIHandler(nil, nil, nil, searchSvc, nil, logger)

	router := gin.New()
	router.GET("/api/search", handler.Search)
	router.GET("/api/devices", handler.GetDevices)
	return router
}

func TestSearchEndpointValidation(t *testing.T) {
	t.Parallel()

	router := newSearchRouter(&stubSearcher{})

	tests := map[string]struct {
		url        string
		wantStatus int
	}{
		"query too short":    {url: "/api/search?q=a", wantStatus: http.StatusBadRequest},
		"unknown device":     {url: "/api/search?q=hades&device=switch", wantStatus: http.StatusBadRequest},
		"valid query":        {url: "/api/search?q=hades", wantStatus: http.StatusOK},
		"valid with device":  {url: "/api/search?q=hades&device=steam_deck", wantStatus: http.StatusOK},
		"missing query":      {url: "/api/search", wantStatus: http.StatusBadRequest},
		"whitespace trimmed": {url: "/api/search?q=%20%20h%20", wantStatus: http.StatusBadRequest},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			router.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

func TestSearchEndpointReturnsEstimates(t *testing.T) {
	t.Parallel()

	year := 2015
	router := newSearchRouter(&stubSearcher{games: []domain.Game{
		{
			Title:           "Indie Gem",
			Slug:            "indie-gem",
			GenreTags:       []byte(`["indie"]`),
			ReleaseYear:     &year,
			DataReliability: domain.ReliabilityEstimatedAPI,
		},
	}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/search?q=indie&device=steam_deck", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Results []search.Result `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(body.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(body.Results))
	}
	est := body.Results[0].Estimate
	if est == nil {
		t.Fatal("estimate missing for device-filtered search")
	}
	// indie +2.0, pre-2020 +0.5 on the 4.0h baseline
	if est.BatteryHours != 6.5 {
		t.Errorf("battery hours = %.1f, want 6.5", est.BatteryHours)
	}
}

func TestDevicesEndpoint(t *testing.T) {
	t.Parallel()

	router := newSearchRouter(&stubSearcher{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/devices", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Devices []domain.Device `json:"devices"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(body.Devices) != 3 {
		t.Errorf("devices = %d, want 3", len(body.Devices))
	}
}
