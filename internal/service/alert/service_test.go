package alert

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/kapu/handheld-deals-go/internal/domain"
)

func TestWebhookDispatcherSendsPayload(t *testing.T) {
	var got webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dispatcher := NewWebhookDispatcher(server.URL, "https://deals.example")
	dispatcher.httpClient = server.Client()

	alert := domain.PriceAlert{ID: 1, GameID: 2, TargetPrice: 15.0, Contact: "user@example.com"}
	deal := &domain.Deal{
		ID: 3, GameID: 2, Store: "steam", Price: 9.99, URL: "https://store.example/d",
		Game: &domain.Game{Title: "Hades", Slug: "hades"},
	}

	if err := dispatcher.Dispatch(context.Background(), alert, deal); err != nil {
		t.Fatalf("Dispatch error = %v", err)
	}

	if got.Contact != "user@example.com" || got.GameTitle != "Hades" {
		t.Errorf("payload = %+v", got)
	}
	if got.SiteURL != "https://deals.example/games/hades" {
		t.Errorf("SiteURL = %q", got.SiteURL)
	}
	if got.Price != 9.99 || got.TargetPrice != 15.0 {
		t.Errorf("prices = %v/%v", got.Price, got.TargetPrice)
	}
}

func TestWebhookDispatcherRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	dispatcher := NewWebhookDispatcher(server.URL, "https://deals.example")
	dispatcher.httpClient = server.Client()

	err := dispatcher.Dispatch(context.Background(), domain.PriceAlert{}, &domain.Deal{})
	if err == nil {
		t.Fatal("error = nil, want rejection error")
	}
}

func TestWebhookDispatcherNoURLIsNoop(t *testing.T) {
	dispatcher := NewWebhookDispatcher("", "https://deals.example")
	if err := dispatcher.Dispatch(context.Background(), domain.PriceAlert{}, &domain.Deal{}); err != nil {
		t.Fatalf("Dispatch error = %v, want nil for unset webhook", err)
	}
}
