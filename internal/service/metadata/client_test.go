package metadata

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchGamePicksExactMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %s", got)
		}
		_, _ = w.Write([]byte(`{"results":[
			{"slug":"hades-ii","name":"Hades II","released":"2024-05-06","genres":[{"slug":"action"}]},
			{"slug":"hades","name":"Hades","released":"2018-12-06","genres":[{"slug":"action"},{"slug":"indie"}],"tags":[{"slug":"roguelike"},{"slug":"indie"}]}
		]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", slog.New(slog.NewTextHandler(io.Discard, nil)))
	client.baseURL = server.URL
	client.httpClient = server.Client()

	meta, err := client.SearchGame(context.Background(), "Hades")
	if err != nil {
		t.Fatalf("SearchGame error = %v", err)
	}
	if meta == nil {
		t.Fatal("meta = nil")
	}
	if meta.Slug != "hades" {
		t.Errorf("Slug = %q, want hades (exact match preferred)", meta.Slug)
	}
	if meta.ReleaseYear == nil || *meta.ReleaseYear != 2018 {
		t.Errorf("ReleaseYear = %v, want 2018", meta.ReleaseYear)
	}
	// 장르와 태그를 합치되 중복 indie는 한 번만
	if len(meta.GenreTags) != 3 {
		t.Errorf("GenreTags = %v, want [action indie roguelike]", meta.GenreTags)
	}
}

func TestSearchGameNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", slog.New(slog.NewTextHandler(io.Discard, nil)))
	client.baseURL = server.URL
	client.httpClient = server.Client()

	meta, err := client.SearchGame(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("SearchGame error = %v", err)
	}
	if meta != nil {
		t.Fatalf("meta = %+v, want nil", meta)
	}
}
