package rates

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"wallit/internal/config"

	"github.com/shopspring/decimal"
)

func fetcherConfig(serverURL string, currencies ...string) config.Config {
	return config.Config{
		SupportedCurrencies: currencies,
		CurrenciesURL:       serverURL + "/currencies?api_key={key}",
		HistoricalURL:       serverURL + "/historical?api_key={key}&base={base}&date={date}&symbols={symbols}",
		APIKey:              "test-key",
		MaxKeepalive:        4,
		MaxConnections:      8,
	}
}

func fxServer(t *testing.T, historical http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/currencies", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"fiats":{"CZK":{},"EUR":{},"JPY":{}}}}`)
	})
	mux.HandleFunc("/historical", historical)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func serveRates(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, `{"response":{"date":"2021-03-12","base":"EUR","rates":{"CZK":"26.10","USD":"1.19"}}}`)
}

func TestCurrenciesIntersectsSupportedSet(t *testing.T) {
	server := fxServer(t, serveRates)
	fetcher := NewFetcher(fetcherConfig(server.URL, "CZK", "EUR", "USD"))

	currencies, err := fetcher.Currencies(context.Background())
	if err != nil {
		t.Fatalf("Currencies returned error: %v", err)
	}
	if len(currencies) != 2 {
		t.Fatalf("got %d currencies, want CZK and EUR only", len(currencies))
	}
	for _, code := range []string{"CZK", "EUR"} {
		if _, ok := currencies[code]; !ok {
			t.Errorf("%s missing from the intersection", code)
		}
	}
	if _, ok := currencies["USD"]; ok {
		t.Error("USD is not quoted by the provider and should be absent")
	}
}

func TestCurrenciesNoOverlap(t *testing.T) {
	server := fxServer(t, serveRates)
	fetcher := NewFetcher(fetcherConfig(server.URL, "AUD", "NZD"))

	if _, err := fetcher.Currencies(context.Background()); !errors.Is(err, ErrNoCurrencies) {
		t.Fatalf("got %v, want ErrNoCurrencies", err)
	}
}

func TestFetchDay(t *testing.T) {
	var gotQuery string
	server := fxServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		serveRates(w, r)
	})
	fetcher := NewFetcher(fetcherConfig(server.URL, "CZK", "EUR", "USD"))

	day := time.Date(2021, 3, 12, 0, 0, 0, 0, time.UTC)
	rates, err := fetcher.FetchDay(context.Background(), "EUR", day)
	if err != nil {
		t.Fatalf("FetchDay returned error: %v", err)
	}
	if !rates["CZK"].Equal(decimal.RequireFromString("26.10")) {
		t.Errorf("CZK = %s, want 26.10", rates["CZK"])
	}
	want := "api_key=test-key&base=EUR&date=2021-03-12&symbols=CZK,EUR,USD"
	if gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
}

func TestFetchDayRejectsBadResponses(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"provider error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusInternalServerError)
		},
		"empty rate table": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"response":{"rates":{}}}`)
		},
		"non-positive rate": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"response":{"rates":{"CZK":"0"}}}`)
		},
		"undecodable body": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "not json")
		},
	}
	day := time.Date(2021, 3, 12, 0, 0, 0, 0, time.UTC)
	for name, handler := range cases {
		server := fxServer(t, handler)
		fetcher := NewFetcher(fetcherConfig(server.URL, "CZK", "EUR"))
		if _, err := fetcher.FetchDay(context.Background(), "EUR", day); !errors.Is(err, ErrExternal) {
			t.Errorf("%s: got %v, want ErrExternal", name, err)
		}
	}
}

func TestFetchDayWithoutAPIKey(t *testing.T) {
	server := fxServer(t, serveRates)
	cfg := fetcherConfig(server.URL, "CZK", "EUR")
	cfg.APIKey = ""
	fetcher := NewFetcher(cfg)

	day := time.Date(2021, 3, 12, 0, 0, 0, 0, time.UTC)
	if _, err := fetcher.FetchDay(context.Background(), "EUR", day); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("got %v, want ErrMissingKey", err)
	}
}

func TestFetchRangeCountsFailedDays(t *testing.T) {
	server := fxServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("date") == "2021-03-13" {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		serveRates(w, r)
	})
	fetcher := NewFetcher(fetcherConfig(server.URL, "CZK", "EUR", "USD"))

	start := time.Date(2021, 3, 12, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC)

	var mu sync.Mutex
	published := make(map[string]bool)
	fetched, failed, err := fetcher.FetchRange(context.Background(), "EUR", start, end, func(day DayRates) {
		mu.Lock()
		published[day.Day.Format("2006-01-02")] = true
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("FetchRange returned error: %v", err)
	}
	if len(fetched) != 2 || failed != 1 {
		t.Fatalf("fetched %d failed %d, want 2 fetched and 1 failed", len(fetched), failed)
	}
	if !published["2021-03-12"] || !published["2021-03-14"] {
		t.Errorf("published days = %v, want the two successful days", published)
	}
	if published["2021-03-13"] {
		t.Error("failed day must not be published")
	}
}

func TestFetchRangePublishesBeforeCancellation(t *testing.T) {
	server := fxServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("date") == "2021-03-12" {
			serveRates(w, r)
			return
		}
		// Hold the remaining days open until the caller cancels.
		<-r.Context().Done()
	})
	fetcher := NewFetcher(fetcherConfig(server.URL, "CZK", "EUR", "USD"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	published := make(map[string]bool)
	start := time.Date(2021, 3, 12, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC)
	fetched, failed, err := fetcher.FetchRange(ctx, "EUR", start, end, func(day DayRates) {
		mu.Lock()
		published[day.Day.Format("2006-01-02")] = true
		mu.Unlock()
		cancel()
	})
	if err != nil {
		t.Fatalf("FetchRange returned error: %v", err)
	}
	if !published["2021-03-12"] {
		t.Fatal("the day that landed before cancellation was not published")
	}
	if len(fetched) != 1 || failed != 2 {
		t.Errorf("fetched %d failed %d, want the landed day kept and the rest counted as failed", len(fetched), failed)
	}
}

func TestFetchRangeRejectsInvertedRange(t *testing.T) {
	server := fxServer(t, serveRates)
	fetcher := NewFetcher(fetcherConfig(server.URL, "CZK", "EUR"))

	start := time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 3, 12, 0, 0, 0, 0, time.UTC)
	if _, _, err := fetcher.FetchRange(context.Background(), "EUR", start, end, nil); err == nil {
		t.Fatal("expected an error for an inverted range")
	}
}
