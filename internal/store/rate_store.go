package store

import (
	"context"

	"wallit/internal/models"
)

type RateStore struct {
	db DB
}

func NewRateStore(db DB) *RateStore {
	return &RateStore{db: db}
}

// Add appends downloaded rates. The (date, source, rate) uniqueness
// constraint makes re-downloads of the same day a no-op.
func (s *RateStore) Add(ctx context.Context, rates []models.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (id, date, target, source, rate)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (date, source, rate) DO NOTHING
	`
	for _, rate := range rates {
		if _, err := s.db.ExecContext(ctx, query, rate.ID, rate.Date, rate.Target, rate.Source, rate.Rate); err != nil {
			return err
		}
	}
	return nil
}

func (s *RateStore) ListByTarget(ctx context.Context, target string) ([]models.ExchangeRate, error) {
	query := `
		SELECT id, date, target, source, rate
		FROM exchange_rates
		WHERE target = $1
		ORDER BY date, source
	`
	var rates []models.ExchangeRate
	if err := s.db.SelectContext(ctx, &rates, query, target); err != nil {
		return nil, err
	}
	return rates, nil
}
