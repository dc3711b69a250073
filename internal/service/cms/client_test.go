package cms

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token", TokenType: "Bearer"})
	api := NewAPIClient(server.Client(), server.URL, tokens, logger)
	return NewClient(api, logger)
}

func TestListGamesPage(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/api/games" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": 1, "title": "Hades", "slug": "hades"}},
			"meta": map[string]any{"total": 1},
		})
	}))

	games, total, err := client.ListGamesPage(context.Background(), 100, 0)
	if err != nil {
		t.Fatalf("ListGamesPage error = %v", err)
	}
	if total != 1 || len(games) != 1 || games[0].Slug != "hades" {
		t.Fatalf("unexpected result: total=%d games=%+v", total, games)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
}

func TestForEachGamePagesThrough(t *testing.T) {
	pages := map[string][]map[string]any{
		"0": {{"id": 1, "slug": "a"}, {"id": 2, "slug": "b"}},
		"2": {{"id": 3, "slug": "c"}},
		"3": {},
	}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("offset")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": pages[offset],
			"meta": map[string]any{"total": 3},
		})
	}))

	var seen []string
	err := client.ForEachGame(context.Background(), func(game domain.Game) error {
		seen = append(seen, game.Slug)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachGame error = %v", err)
	}
	if len(seen) != 3 || seen[0] != "a" || seen[2] != "c" {
		t.Fatalf("seen = %v, want [a b c]", seen)
	}
}

func TestGetGameBySlugNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	game, err := client.GetGameBySlug(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetGameBySlug error = %v", err)
	}
	if game != nil {
		t.Fatalf("game = %+v, want nil", game)
	}
}

func TestUpdateReviewSendsPatch(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))

	err := client.UpdateReview(context.Background(), 12, domain.ConfidenceMedium, "note text")
	if err != nil {
		t.Fatalf("UpdateReview error = %v", err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/api/reviews/12" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
	if gotBody["confidence"] != "medium" || gotBody["curator_note"] != "note text" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestTokenRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, _, err := client.ListGamesPage(context.Background(), 10, 0)
	if err == nil {
		t.Fatal("error = nil, want auth error")
	}
	var authErr *errors.AuthError
	if !stderrors.As(err, &authErr) {
		t.Fatalf("error = %v, want AuthError", err)
	}
}
