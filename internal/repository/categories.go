package repository

import (
	"context"
	"database/sql"
	"errors"

	"eventhub/internal/database"
	"eventhub/internal/models"

	"github.com/google/uuid"
)

type CategoryRepository struct {
	db *database.DB
}

func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var category models.Category
	if err := row.Scan(&category.ID, &category.Name, &category.CreatedAt, &category.UpdatedAt); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM categories
		ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := scanCategory(r.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM categories
		WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrCategoryNotFound
	}
	return category, err
}

// Create inserts a category; the LOWER(name) unique index rejects case-insensitive duplicates.
func (r *CategoryRepository) Create(ctx context.Context, name string) (*models.Category, error) {
	category, err := scanCategory(r.db.QueryRowContext(ctx, `
		INSERT INTO categories (name)
		VALUES ($1)
		RETURNING id, name, created_at, updated_at`, name))
	if isUniqueViolation(err) {
		return nil, models.ErrCategoryExists
	}
	return category, err
}

func (r *CategoryRepository) Update(ctx context.Context, id uuid.UUID, name string) (*models.Category, error) {
	category, err := scanCategory(r.db.QueryRowContext(ctx, `
		UPDATE categories
		SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, created_at, updated_at`, id, name))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, models.ErrCategoryNotFound
	case isUniqueViolation(err):
		return nil, models.ErrCategoryExists
	}
	return category, err
}

// Delete removes a category. Events keep the dangling reference and read back as uncategorized.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
