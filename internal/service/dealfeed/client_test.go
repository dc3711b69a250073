package dealfeed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchDealsPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("pageSize"); got != "60" {
			t.Errorf("pageSize = %s, want 60", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"dealID":"abc123","title":"Hades","storeID":"1","salePrice":"9.99","normalPrice":"24.99","savings":"60.024010","steamAppID":"1145360"},
			{"dealID":"bad","title":"Broken","storeID":"1","salePrice":"not-a-price","normalPrice":"10.00","savings":"0"}
		]`))
	}))
	defer server.Close()

	client := NewClient("", discardLogger())
	client.baseURL = server.URL
	client.httpClient = server.Client()

	deals, err := client.FetchDealsPage(context.Background(), 0, 60)
	if err != nil {
		t.Fatalf("FetchDealsPage error = %v", err)
	}

	if len(deals) != 1 {
		t.Fatalf("len(deals) = %d, want 1 (unparseable price skipped)", len(deals))
	}
	deal := deals[0]
	if deal.Store != "steam" {
		t.Errorf("Store = %q, want steam", deal.Store)
	}
	if deal.SalePrice != 9.99 || deal.NormalPrice != 24.99 {
		t.Errorf("prices = %.2f/%.2f", deal.SalePrice, deal.NormalPrice)
	}
	if deal.SavingsPct != 60 {
		t.Errorf("SavingsPct = %d, want 60", deal.SavingsPct)
	}
	if deal.CatalogID != "1145360" {
		t.Errorf("CatalogID = %q", deal.CatalogID)
	}
}

func TestFetchDealsPageServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient("", discardLogger())
	client.baseURL = server.URL
	client.httpClient = server.Client()

	if _, err := client.FetchDealsPage(context.Background(), 0, 60); err == nil {
		t.Fatal("error = nil, want API error")
	}
}

func TestScraperParsesSalePage(t *testing.T) {
	page := `<html><body>
		<div class="sale-item">
			<a href="https://store.example/hades"><span class="title">Hades</span></a>
			<span class="price">$9.99</span>
			<span class="list-price">$24.99</span>
		</div>
		<div class="sale-item">
			<span class="title">No Price</span>
		</div>
	</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	scraper := NewScraperService(nil, discardLogger())
	scraper.httpClient = server.Client()

	deals, err := scraper.FetchSalePage(context.Background(), "example", server.URL)
	if err != nil {
		t.Fatalf("FetchSalePage error = %v", err)
	}

	if len(deals) != 1 {
		t.Fatalf("len(deals) = %d, want 1", len(deals))
	}
	if deals[0].Title != "Hades" || deals[0].SalePrice != 9.99 {
		t.Errorf("deal = %+v", deals[0])
	}
	if deals[0].SavingsPct != 60 {
		t.Errorf("SavingsPct = %d, want 60", deals[0].SavingsPct)
	}
	if deals[0].URL != "https://store.example/hades" {
		t.Errorf("URL = %q", deals[0].URL)
	}
}

func TestParsePrice(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in   string
		want float64
		ok   bool
	}{
		"dollar":  {in: "$9.99", want: 9.99, ok: true},
		"euro":    {in: "9,99 €", want: 9.99, ok: true},
		"plain":   {in: "19.99", want: 19.99, ok: true},
		"empty":   {in: "", ok: false},
		"garbage": {in: "Free!", ok: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, ok := parsePrice(tc.in)
			if ok != tc.ok || (ok && got != tc.want) {
				t.Errorf("parsePrice(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
			}
		})
	}
}
