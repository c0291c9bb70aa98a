package handlers

import (
	"context"

	"wallit/internal/models"
	"wallit/internal/services"
	"wallit/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash, mainCurrency string) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
}

type BankStore interface {
	List(ctx context.Context) ([]models.Bank, error)
}

type CategoryStore interface {
	Create(ctx context.Context, tx store.Execer, id, name, userID string) error
	ListByUser(ctx context.Context, userID string) ([]models.Category, error)
	Delete(ctx context.Context, tx store.Execer, id, userID string) (bool, error)
}

type TransactionStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)
}

type IngestionService interface {
	Upload(ctx context.Context, userID string, files []services.StatementFile) (services.UploadOutcome, error)
}

type SaldoService interface {
	Monthly(ctx context.Context, userID string) ([]services.SaldoEntry, error)
}

type CurrencyService interface {
	SetMainCurrency(ctx context.Context, userID, currency string) error
}
