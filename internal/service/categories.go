package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"eventhub/internal/models"
)

const maxCategoryNameLen = 100

type CategoryService struct {
	categories CategoryStore
}

func NewCategoryService(categories CategoryStore) *CategoryService {
	return &CategoryService{categories: categories}
}

func normalizeCategoryName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "", models.ErrCategoryName
	}
	return name, nil
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, rawID string) (*models.Category, error) {
	id, err := models.ParseID(rawID, models.ErrInvalidCategoryID)
	if err != nil {
		return nil, err
	}

	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (s *CategoryService) Create(ctx context.Context, req *models.CategoryRequest) (*models.Category, error) {
	name, err := normalizeCategoryName(req.Name)
	if err != nil {
		return nil, err
	}

	category, err := s.categories.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, rawID string, req *models.CategoryRequest) (*models.Category, error) {
	id, err := models.ParseID(rawID, models.ErrInvalidCategoryID)
	if err != nil {
		return nil, err
	}

	name, err := normalizeCategoryName(req.Name)
	if err != nil {
		return nil, err
	}

	category, err := s.categories.Update(ctx, id, name)
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// Delete удаляет категорию; события с этой категорией остаются и читаются как Uncategorized
func (s *CategoryService) Delete(ctx context.Context, rawID string) error {
	id, err := models.ParseID(rawID, models.ErrInvalidCategoryID)
	if err != nil {
		return err
	}

	found, err := s.categories.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if !found {
		return models.ErrCategoryNotFound
	}
	return nil
}
