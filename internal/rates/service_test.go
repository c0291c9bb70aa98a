package rates

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"wallit/internal/models"

	"github.com/shopspring/decimal"
)

type stubClient struct {
	calls        int32
	fetchDayFn   func(ctx context.Context, target string, day time.Time) (RateMap, error)
	fetchRangeFn func(ctx context.Context, target string, start, end time.Time, publish func(DayRates)) ([]DayRates, int, error)
	currenciesFn func(ctx context.Context) (map[string]struct{}, error)
}

func (c *stubClient) FetchDay(ctx context.Context, target string, day time.Time) (RateMap, error) {
	atomic.AddInt32(&c.calls, 1)
	return c.fetchDayFn(ctx, target, day)
}

func (c *stubClient) FetchRange(ctx context.Context, target string, start, end time.Time, publish func(DayRates)) ([]DayRates, int, error) {
	return c.fetchRangeFn(ctx, target, start, end, publish)
}

func (c *stubClient) Currencies(ctx context.Context) (map[string]struct{}, error) {
	atomic.AddInt32(&c.calls, 1)
	return c.currenciesFn(ctx)
}

type stubSink struct {
	mu      sync.Mutex
	records []models.ExchangeRate
	err     error
}

func (s *stubSink) Add(ctx context.Context, rates []models.ExchangeRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rates...)
	return s.err
}

func TestRatesForCoalescesConcurrentMisses(t *testing.T) {
	client := &stubClient{
		fetchDayFn: func(ctx context.Context, target string, day time.Time) (RateMap, error) {
			time.Sleep(20 * time.Millisecond)
			return testRates("1.10"), nil
		},
	}
	service := NewService(NewCache(time.Minute), client, nil)
	day := time.Date(2021, 3, 12, 0, 0, 0, 0, time.UTC)

	const waiters = 25
	var wg sync.WaitGroup
	errs := make(chan error, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rates, err := service.RatesFor(context.Background(), "EUR", day)
			if err != nil {
				errs <- err
				return
			}
			if !rates["USD"].Equal(decimal.RequireFromString("1.10")) {
				errs <- errors.New("waiter saw wrong rates")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	if calls := atomic.LoadInt32(&client.calls); calls != 1 {
		t.Fatalf("provider was called %d times, want exactly 1", calls)
	}
}

func TestRatesForDoesNotCacheFailures(t *testing.T) {
	failure := errors.New("provider down")
	client := &stubClient{}
	client.fetchDayFn = func(ctx context.Context, target string, day time.Time) (RateMap, error) {
		if atomic.LoadInt32(&client.calls) == 1 {
			return nil, failure
		}
		return testRates("1.10"), nil
	}
	service := NewService(NewCache(time.Minute), client, nil)
	day := time.Date(2021, 3, 12, 0, 0, 0, 0, time.UTC)

	if _, err := service.RatesFor(context.Background(), "EUR", day); !errors.Is(err, failure) {
		t.Fatalf("got %v, want the provider failure", err)
	}
	rates, err := service.RatesFor(context.Background(), "EUR", day)
	if err != nil {
		t.Fatalf("retry after failure returned error: %v", err)
	}
	if !rates["USD"].Equal(decimal.RequireFromString("1.10")) {
		t.Errorf("got %s, want 1.10", rates["USD"])
	}
	if calls := atomic.LoadInt32(&client.calls); calls != 2 {
		t.Fatalf("provider was called %d times, want 2", calls)
	}
}

func TestRatesForServesCacheWithoutFetching(t *testing.T) {
	client := &stubClient{
		fetchDayFn: func(ctx context.Context, target string, day time.Time) (RateMap, error) {
			return testRates("1.10"), nil
		},
	}
	cache := NewCache(time.Minute)
	service := NewService(cache, client, nil)
	day := time.Date(2021, 3, 12, 0, 0, 0, 0, time.UTC)
	cache.Put("EUR", day, testRates("1.20"))

	rates, err := service.RatesFor(context.Background(), "EUR", day)
	if err != nil {
		t.Fatalf("RatesFor returned error: %v", err)
	}
	if !rates["USD"].Equal(decimal.RequireFromString("1.20")) {
		t.Errorf("got %s, want the cached 1.20", rates["USD"])
	}
	if calls := atomic.LoadInt32(&client.calls); calls != 0 {
		t.Fatalf("provider was called %d times on a warm cache", calls)
	}
}

func TestRatesForPersistsFetchedDays(t *testing.T) {
	client := &stubClient{
		fetchDayFn: func(ctx context.Context, target string, day time.Time) (RateMap, error) {
			return RateMap{
				"USD": decimal.RequireFromString("1.10"),
				"CZK": decimal.RequireFromString("25.50"),
			}, nil
		},
	}
	sink := &stubSink{}
	service := NewService(NewCache(time.Minute), client, sink)
	day := time.Date(2021, 3, 12, 0, 0, 0, 0, time.UTC)

	if _, err := service.RatesFor(context.Background(), "EUR", day); err != nil {
		t.Fatalf("RatesFor returned error: %v", err)
	}
	if len(sink.records) != 2 {
		t.Fatalf("persisted %d records, want 2", len(sink.records))
	}
	for _, record := range sink.records {
		if record.Target != "EUR" || !record.Date.Equal(day) || record.ID == "" {
			t.Errorf("bad persisted record %+v", record)
		}
	}
}

func TestCurrenciesFetchedOnceUntilInvalidated(t *testing.T) {
	client := &stubClient{
		currenciesFn: func(ctx context.Context) (map[string]struct{}, error) {
			return map[string]struct{}{"CZK": {}, "EUR": {}}, nil
		},
	}
	service := NewService(NewCache(time.Minute), client, nil)

	for i := 0; i < 3; i++ {
		currencies, err := service.Currencies(context.Background())
		if err != nil {
			t.Fatalf("Currencies returned error: %v", err)
		}
		if len(currencies) != 2 {
			t.Fatalf("got %d currencies, want 2", len(currencies))
		}
	}
	if calls := atomic.LoadInt32(&client.calls); calls != 1 {
		t.Fatalf("provider was called %d times, want 1", calls)
	}

	service.InvalidateAll()
	if _, err := service.Currencies(context.Background()); err != nil {
		t.Fatalf("Currencies after invalidation returned error: %v", err)
	}
	if calls := atomic.LoadInt32(&client.calls); calls != 2 {
		t.Fatalf("provider was called %d times after invalidation, want 2", calls)
	}
}

func TestDownloadRangePublishesEachDay(t *testing.T) {
	day1 := time.Date(2021, 3, 12, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2021, 3, 13, 0, 0, 0, 0, time.UTC)
	client := &stubClient{
		currenciesFn: func(ctx context.Context) (map[string]struct{}, error) {
			return map[string]struct{}{"USD": {}}, nil
		},
		fetchRangeFn: func(ctx context.Context, target string, start, end time.Time, publish func(DayRates)) ([]DayRates, int, error) {
			fetched := []DayRates{
				{Day: day1, Rates: testRates("1.10")},
				{Day: day2, Rates: testRates("1.12")},
			}
			for _, day := range fetched {
				publish(day)
			}
			return fetched, 1, nil
		},
	}
	cache := NewCache(time.Minute)
	service := NewService(cache, client, nil)

	records, failed, err := service.DownloadRange(context.Background(), "EUR", day1, day2.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("DownloadRange returned error: %v", err)
	}
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
	if _, ok := cache.Get("EUR", day1); !ok {
		t.Error("first day was not published to the cache")
	}
	if _, ok := cache.Get("EUR", day2); !ok {
		t.Error("second day was not published to the cache")
	}
}

func TestDownloadRangeRequiresProviderCurrencies(t *testing.T) {
	client := &stubClient{
		currenciesFn: func(ctx context.Context) (map[string]struct{}, error) {
			return nil, ErrNoCurrencies
		},
		fetchRangeFn: func(ctx context.Context, target string, start, end time.Time, publish func(DayRates)) ([]DayRates, int, error) {
			t.Fatal("no day may be requested when currency discovery fails")
			return nil, 0, nil
		},
	}
	service := NewService(NewCache(time.Minute), client, nil)

	day := time.Date(2021, 3, 12, 0, 0, 0, 0, time.UTC)
	_, _, err := service.DownloadRange(context.Background(), "EUR", day, day)
	if !errors.Is(err, ErrNoCurrencies) {
		t.Fatalf("got %v, want ErrNoCurrencies", err)
	}
}
