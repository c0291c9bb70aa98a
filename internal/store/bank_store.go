package store

import (
	"context"

	"wallit/internal/models"
)

type BankStore struct {
	db DB
}

func NewBankStore(db DB) *BankStore {
	return &BankStore{db: db}
}

func (s *BankStore) List(ctx context.Context) ([]models.Bank, error) {
	var banks []models.Bank
	err := s.db.SelectContext(ctx, &banks, `
		SELECT id, name, statement_extension
		FROM banks
		ORDER BY name
	`)
	return banks, err
}
