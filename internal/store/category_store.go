package store

import (
	"context"

	"wallit/internal/models"
)

type CategoryStore struct {
	db DB
}

func NewCategoryStore(db DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) Create(ctx context.Context, tx Execer, id, name, userID string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO categories (id, name, user_id) VALUES ($1, $2, $3)`, id, name, userID)
	return err
}

func (s *CategoryStore) ListByUser(ctx context.Context, userID string) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.SelectContext(ctx, &categories, `
		SELECT id, name, user_id
		FROM categories
		WHERE user_id = $1
		ORDER BY name
	`, userID)
	return categories, err
}

// Delete removes a category owned by userID. Transactions pointing at it
// fall back to uncategorised through the FK's ON DELETE SET NULL.
func (s *CategoryStore) Delete(ctx context.Context, tx Execer, id, userID string) (bool, error) {
	result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
