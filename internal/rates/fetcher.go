package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"wallit/internal/config"

	"github.com/shopspring/decimal"
)

var (
	// ErrExternal covers provider-side failures: unreachable host,
	// non-success status, undecodable body.
	ErrExternal = errors.New("exchange rate provider request failed")
	// ErrNoCurrencies means the provider serves none of the configured
	// currencies, which makes conversion impossible.
	ErrNoCurrencies = errors.New("no supported currencies available from provider")
	// ErrMissingKey is a configuration defect.
	ErrMissingKey = errors.New("exchange rate API key is not configured")
)

// Fetcher talks to the external FX provider. Historical rates are fetched
// one calendar day per request; FetchRange fans the requests out
// concurrently under the configured connection limits.
type Fetcher struct {
	client        *http.Client
	currenciesURL string
	historicalURL string
	apiKey        string
	symbols       []string
	maxInFlight   int
}

func NewFetcher(cfg config.Config) *Fetcher {
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxKeepalive,
		MaxIdleConnsPerHost: cfg.MaxKeepalive,
		MaxConnsPerHost:     cfg.MaxConnections,
	}
	return &Fetcher{
		// No client timeout: the provider is the authority on liveness,
		// callers bound the work through their context.
		client:        &http.Client{Transport: transport},
		currenciesURL: cfg.CurrenciesURL,
		historicalURL: cfg.HistoricalURL,
		apiKey:        cfg.APIKey,
		symbols:       cfg.SupportedCurrencies,
		maxInFlight:   cfg.MaxConnections,
	}
}

type apiEnvelope struct {
	Response struct {
		Date  string                     `json:"date"`
		Base  string                     `json:"base"`
		Rates map[string]decimal.Decimal `json:"rates"`
		Fiats map[string]json.RawMessage `json:"fiats"`
	} `json:"response"`
}

// Currencies downloads the fiat codes the provider quotes and intersects
// them with the configured supported set.
func (f *Fetcher) Currencies(ctx context.Context) (map[string]struct{}, error) {
	var envelope apiEnvelope
	if err := f.getJSON(ctx, f.buildURL(f.currenciesURL, "", time.Time{}), &envelope); err != nil {
		return nil, err
	}

	available := make(map[string]struct{}, len(f.symbols))
	for _, code := range f.symbols {
		if _, ok := envelope.Response.Fiats[code]; ok {
			available[code] = struct{}{}
		}
	}
	if len(available) == 0 {
		return nil, ErrNoCurrencies
	}
	return available, nil
}

// FetchDay downloads the rate map for a single calendar day.
func (f *Fetcher) FetchDay(ctx context.Context, target string, day time.Time) (RateMap, error) {
	var envelope apiEnvelope
	if err := f.getJSON(ctx, f.buildURL(f.historicalURL, target, day), &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Response.Rates) == 0 {
		return nil, fmt.Errorf("%w: empty rate table for %s", ErrExternal, dayKey(day))
	}

	rates := make(RateMap, len(envelope.Response.Rates))
	for code, rate := range envelope.Response.Rates {
		if rate.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: non-positive rate for %s on %s", ErrExternal, code, dayKey(day))
		}
		rates[code] = rate
	}
	return rates, nil
}

// DayRates is one successfully fetched day.
type DayRates struct {
	Day   time.Time
	Rates RateMap
}

// FetchRange downloads every day in [start, end] concurrently, bounded by
// the in-flight limit. publish, when non-nil, runs for each day as soon as
// it lands, so completed days survive a later cancellation; it must be safe
// for concurrent use. Failed days are counted, not fatal.
func (f *Fetcher) FetchRange(ctx context.Context, target string, start, end time.Time, publish func(DayRates)) ([]DayRates, int, error) {
	if start.After(end) {
		return nil, 0, errors.New("range start is after its end")
	}

	type outcome struct {
		day DayRates
		err error
	}
	days := daysBetween(start, end)
	results := make(chan outcome, len(days))
	semaphore := make(chan struct{}, f.maxInFlight)

	var wg sync.WaitGroup
	for _, day := range days {
		wg.Add(1)
		go func(day time.Time) {
			defer wg.Done()
			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				results <- outcome{err: ctx.Err()}
				return
			}
			rates, err := f.FetchDay(ctx, target, day)
			if err == nil && publish != nil {
				publish(DayRates{Day: day, Rates: rates})
			}
			results <- outcome{day: DayRates{Day: day, Rates: rates}, err: err}
		}(day)
	}
	wg.Wait()
	close(results)

	var fetched []DayRates
	failed := 0
	for result := range results {
		if result.err != nil {
			failed++
			continue
		}
		fetched = append(fetched, result.day)
	}
	return fetched, failed, nil
}

func (f *Fetcher) buildURL(template, target string, day time.Time) string {
	date := ""
	if !day.IsZero() {
		date = dayKey(day)
	}
	replacer := strings.NewReplacer(
		"{key}", f.apiKey,
		"{base}", target,
		"{date}", date,
		"{symbols}", strings.Join(f.symbols, ","),
	)
	return replacer.Replace(template)
}

func (f *Fetcher) getJSON(ctx context.Context, url string, dest any) error {
	if f.apiKey == "" {
		return ErrMissingKey
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExternal, err)
	}
	response, err := f.client.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExternal, err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrExternal, response.StatusCode)
	}
	if err := json.NewDecoder(response.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", ErrExternal, err)
	}
	return nil
}

func daysBetween(start, end time.Time) []time.Time {
	var days []time.Time
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for !day.After(last) {
		days = append(days, day)
		day = day.AddDate(0, 0, 1)
	}
	return days
}
