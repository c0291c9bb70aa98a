package services

import (
	"context"
	"errors"

	"wallit/internal/config"
	"wallit/internal/db"
	"wallit/internal/validator"
	"wallit/internal/websocket"

	"github.com/jmoiron/sqlx"
)

var ErrUnsupportedCurrency = errors.New("currency is not supported")

// CurrencyService switches a user's main currency. Every stored
// transaction is re-converted through the dated rates and persisted
// together with the new currency in one storage transaction.
type CurrencyService struct {
	cfg          config.Config
	converter    *Converter
	txRunner     db.TxRunner
	users        UserStore
	transactions TransactionStore
	hub          EventHub
}

func NewCurrencyService(cfg config.Config, converter *Converter, txRunner db.TxRunner, users UserStore, transactions TransactionStore, hub EventHub) *CurrencyService {
	return &CurrencyService{
		cfg:          cfg,
		converter:    converter,
		txRunner:     txRunner,
		users:        users,
		transactions: transactions,
		hub:          hub,
	}
}

func (s *CurrencyService) SetMainCurrency(ctx context.Context, userID, currency string) error {
	if err := validator.ValidateCurrency(currency); err != nil {
		return ErrUnsupportedCurrency
	}
	if !s.cfg.Supported(currency) {
		return ErrUnsupportedCurrency
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.MainCurrency == currency {
		return nil
	}

	transactions, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	// Conversion may fetch rates, so it happens before the storage
	// transaction opens.
	for index := range transactions {
		converted, err := s.converter.Convert(ctx, transactions[index].BaseAmount, transactions[index].BaseCurrency, currency, transactions[index].TransactionDate)
		if err != nil {
			return err
		}
		transactions[index].MainAmount = converted
	}

	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, transaction := range transactions {
			if err := s.transactions.UpdateMainAmount(ctx, tx, transaction.ID, transaction.MainAmount); err != nil {
				return err
			}
		}
		return s.users.SetMainCurrency(ctx, tx, userID, currency)
	})
	if err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.Broadcast(userID, websocket.Event{Type: websocket.EventCurrencyChanged, Currency: currency})
	}
	return nil
}
