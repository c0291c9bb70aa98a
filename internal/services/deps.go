package services

import (
	"context"

	"wallit/internal/models"
	"wallit/internal/store"
	"wallit/internal/websocket"

	"github.com/shopspring/decimal"
)

type UserStore interface {
	GetByID(ctx context.Context, userID string) (models.User, error)
	SetMainCurrency(ctx context.Context, tx store.Execer, userID, currency string) error
}

type TransactionStore interface {
	AddAll(ctx context.Context, tx store.Execer, transactions []models.Transaction) error
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)
	UpdateMainAmount(ctx context.Context, tx store.Execer, transactionID string, mainAmount decimal.Decimal) error
}

type EventHub interface {
	Broadcast(userID string, event websocket.Event)
}
