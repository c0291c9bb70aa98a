package store

import (
	"context"

	"wallit/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, tx Execer, id, username, email, passwordHash, mainCurrency string) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, main_currency)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.ExecContext(ctx, query, id, username, email, passwordHash, mainCurrency)
	return err
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `
		SELECT id, username, email, password_hash, main_currency, created_at
		FROM users WHERE id = $1
	`, userID)
	return user, err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `
		SELECT id, username, email, password_hash, main_currency, created_at
		FROM users WHERE email = $1
	`, email)
	return user, err
}

func (s *UserStore) SetMainCurrency(ctx context.Context, tx Execer, userID, currency string) error {
	_, err := tx.ExecContext(ctx, `UPDATE users SET main_currency = $1 WHERE id = $2`, currency, userID)
	return err
}
