package store

import (
	"context"

	"wallit/internal/models"

	"github.com/shopspring/decimal"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

// AddAll inserts a staged batch. Callers run it inside a single transaction
// so an upload either lands whole or not at all.
func (s *TransactionStore) AddAll(ctx context.Context, tx Execer, transactions []models.Transaction) error {
	query := `
		INSERT INTO transactions (id, info, title, place, base_amount, base_currency, main_amount,
		                          transaction_date, user_id, bank_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	for _, transaction := range transactions {
		_, err := tx.ExecContext(ctx, query,
			transaction.ID, transaction.Info, transaction.Title, transaction.Place,
			transaction.BaseAmount, transaction.BaseCurrency, transaction.MainAmount,
			transaction.TransactionDate, transaction.UserID, transaction.BankID, transaction.CategoryID,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := s.db.SelectContext(ctx, &transactions, `
		SELECT id, info, title, place, base_amount, base_currency, main_amount,
		       transaction_date, creation_date, user_id, bank_id, category_id
		FROM transactions
		WHERE user_id = $1
		ORDER BY transaction_date DESC
	`, userID)
	return transactions, err
}

func (s *TransactionStore) UpdateMainAmount(ctx context.Context, tx Execer, transactionID string, mainAmount decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, `UPDATE transactions SET main_amount = $1 WHERE id = $2`, mainAmount, transactionID)
	return err
}
