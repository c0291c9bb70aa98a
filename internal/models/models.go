package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	MainCurrency string    `db:"main_currency" json:"main_currency"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Bank struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Extension string `db:"statement_extension" json:"statement_extension"`
}

type Transaction struct {
	ID              string          `db:"id" json:"id"`
	Info            *string         `db:"info" json:"info,omitempty"`
	Title           *string         `db:"title" json:"title,omitempty"`
	Place           *string         `db:"place" json:"place,omitempty"`
	BaseAmount      decimal.Decimal `db:"base_amount" json:"base_amount"`
	BaseCurrency    string          `db:"base_currency" json:"base_currency"`
	MainAmount      decimal.Decimal `db:"main_amount" json:"main_amount"`
	TransactionDate time.Time       `db:"transaction_date" json:"transaction_date"`
	CreationDate    time.Time       `db:"creation_date" json:"creation_date"`
	UserID          string          `db:"user_id" json:"user_id"`
	BankID          *string         `db:"bank_id" json:"bank_id,omitempty"`
	CategoryID      *string         `db:"category_id" json:"category_id,omitempty"`
}

type Category struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	UserID string `db:"user_id" json:"user_id"`
}

// ExchangeRate is one dated quote: rate units of Source buy one unit of
// Target on Date. History is append-only.
type ExchangeRate struct {
	ID     string          `db:"id" json:"id"`
	Date   time.Time       `db:"date" json:"date"`
	Target string          `db:"target" json:"target"`
	Source string          `db:"source" json:"source"`
	Rate   decimal.Decimal `db:"rate" json:"rate"`
}
