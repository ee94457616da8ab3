package repository

import (
	"context"

	"eventhub/internal/database"
	"eventhub/internal/models"
)

// UserRepository writes the read-model of users owned by the identity service.
type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Upsert(ctx context.Context, user models.UserSummary) error {
	query := `
		INSERT INTO users (id, username, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, email = EXCLUDED.email`

	_, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.Email)
	return err
}

func (r *UserRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users`)
	return err
}
