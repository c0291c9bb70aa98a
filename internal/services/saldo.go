package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"wallit/internal/money"

	"github.com/shopspring/decimal"
)

var ErrNoTransactions = errors.New("user has no transactions")

// SaldoEntry is one completed month's summary in the user's main currency.
type SaldoEntry struct {
	Month    string  `json:"month"`
	Incoming float64 `json:"incoming"`
	Outgoing float64 `json:"outgoing"`
	Balance  float64 `json:"balance"`
}

type SaldoService struct {
	transactions TransactionStore
	now          func() time.Time
}

func NewSaldoService(transactions TransactionStore) *SaldoService {
	return &SaldoService{transactions: transactions, now: time.Now}
}

// Monthly sums main amounts per calendar month between the user's first
// and last transaction. The in-progress month is excluded, months with no
// movements are omitted, and all figures are rounded half-to-even to two
// decimals.
func (s *SaldoService) Monthly(ctx context.Context, userID string) ([]SaldoEntry, error) {
	transactions, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, ErrNoTransactions
	}

	currentMonth := s.now().Format("2006-01")
	type sums struct {
		incoming decimal.Decimal
		outgoing decimal.Decimal
	}
	months := make(map[string]sums)
	for _, transaction := range transactions {
		month := transaction.TransactionDate.Format("2006-01")
		if month == currentMonth {
			continue
		}
		total := months[month]
		switch transaction.MainAmount.Sign() {
		case 1:
			total.incoming = total.incoming.Add(transaction.MainAmount)
		case -1:
			total.outgoing = total.outgoing.Add(transaction.MainAmount)
		}
		months[month] = total
	}

	keys := make([]string, 0, len(months))
	for month := range months {
		keys = append(keys, month)
	}
	sort.Strings(keys)

	saldo := make([]SaldoEntry, 0, len(keys))
	for _, month := range keys {
		total := months[month]
		if total.incoming.IsZero() && total.outgoing.IsZero() {
			continue
		}
		saldo = append(saldo, SaldoEntry{
			Month:    month,
			Incoming: money.Round2(total.incoming).InexactFloat64(),
			Outgoing: money.Round2(total.outgoing).InexactFloat64(),
			Balance:  money.Round2(total.incoming.Add(total.outgoing)).InexactFloat64(),
		})
	}
	return saldo, nil
}
