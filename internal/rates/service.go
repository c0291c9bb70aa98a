package rates

import (
	"context"
	"log"
	"sync"
	"time"

	"wallit/internal/models"

	"github.com/google/uuid"
)

// Client is the provider surface the service needs; *Fetcher satisfies it
// and tests substitute counting stubs.
type Client interface {
	Currencies(ctx context.Context) (map[string]struct{}, error)
	FetchDay(ctx context.Context, target string, day time.Time) (RateMap, error)
	FetchRange(ctx context.Context, target string, start, end time.Time, publish func(DayRates)) ([]DayRates, int, error)
}

// Sink receives fetched rates for durable storage.
type Sink interface {
	Add(ctx context.Context, rates []models.ExchangeRate) error
}

type flight struct {
	done  chan struct{}
	rates RateMap
	err   error
}

// Service fronts the cache and the fetcher. Concurrent misses for the same
// (target, day) are coalesced into a single outbound request; every waiter
// sees the winner's result, and failures are never cached.
type Service struct {
	cache  *Cache
	client Client
	sink   Sink // optional

	mu         sync.Mutex
	inflight   map[cacheKey]*flight
	currencies map[string]struct{}
}

func NewService(cache *Cache, client Client, sink Sink) *Service {
	return &Service{
		cache:    cache,
		client:   client,
		sink:     sink,
		inflight: make(map[cacheKey]*flight),
	}
}

// RatesFor returns the complete rate map for (target, day), fetching it on
// a miss. The fetch is single-flight per key.
func (s *Service) RatesFor(ctx context.Context, target string, day time.Time) (RateMap, error) {
	if rates, ok := s.cache.Get(target, day); ok {
		return rates, nil
	}

	key := cacheKey{target: target, day: dayKey(day)}
	s.mu.Lock()
	// The winner may have published between the miss and here.
	if rates, ok := s.cache.Get(target, day); ok {
		s.mu.Unlock()
		return rates, nil
	}
	if existing, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		select {
		case <-existing.done:
			return existing.rates, existing.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	current := &flight{done: make(chan struct{})}
	s.inflight[key] = current
	s.mu.Unlock()

	current.rates, current.err = s.client.FetchDay(ctx, target, day)
	if current.err == nil {
		s.cache.Put(target, day, current.rates)
		s.persist(ctx, target, day, current.rates)
	}

	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
	close(current.done)

	return current.rates, current.err
}

// Currencies returns the intersection of provider and configured
// currencies, fetched at most once until invalidated.
func (s *Service) Currencies(ctx context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	cached := s.currencies
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	currencies, err := s.client.Currencies(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.currencies = currencies
	s.mu.Unlock()
	return currencies, nil
}

// DownloadRange fetches every day in [start, end], publishing each
// completed day to the cache immediately, and returns the flattened rate
// records plus the number of days that failed. The provider's currency set
// is checked first; a provider quoting none of the configured currencies
// fails the whole operation before any day is requested.
func (s *Service) DownloadRange(ctx context.Context, target string, start, end time.Time) ([]models.ExchangeRate, int, error) {
	if _, err := s.Currencies(ctx); err != nil {
		return nil, 0, err
	}
	fetched, failed, err := s.client.FetchRange(ctx, target, start, end, func(day DayRates) {
		s.cache.Put(target, day.Day, day.Rates)
	})
	if err != nil {
		return nil, 0, err
	}

	var records []models.ExchangeRate
	for _, day := range fetched {
		records = append(records, rateRecords(target, day.Day, day.Rates)...)
	}
	return records, failed, nil
}

// InvalidateAll drops every cached day and the discovered currency set.
func (s *Service) InvalidateAll() {
	s.cache.InvalidateAll()
	s.mu.Lock()
	s.currencies = nil
	s.mu.Unlock()
}

func (s *Service) persist(ctx context.Context, target string, day time.Time, rates RateMap) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Add(ctx, rateRecords(target, day, rates)); err != nil {
		log.Printf("failed to store exchange rates for %s: %v", dayKey(day), err)
	}
}

func rateRecords(target string, day time.Time, rates RateMap) []models.ExchangeRate {
	records := make([]models.ExchangeRate, 0, len(rates))
	for source, rate := range rates {
		records = append(records, models.ExchangeRate{
			ID:     uuid.NewString(),
			Date:   day,
			Target: target,
			Source: source,
			Rate:   rate,
		})
	}
	return records
}
