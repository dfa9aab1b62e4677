package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"finance-tracker-backend/internal/apperr"
	"finance-tracker-backend/internal/model"
	"finance-tracker-backend/internal/store"
	"finance-tracker-backend/internal/validate"
)

const duplicateCategory = "Category with this name already exists"

// ListCategories returns the user's categories by name, optionally only
// those of one type. An empty typ means all.
func (s *Service) ListCategories(ctx context.Context, userID uuid.UUID, typ string) ([]model.Category, error) {
	t := model.EntryType(typ)
	if t != "" && !t.Valid() {
		return nil, apperr.Invalid("Type must be INCOME or EXPENSE")
	}
	categories, err := s.store.ListCategories(ctx, userID, t)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

func (s *Service) CreateCategory(ctx context.Context, userID uuid.UUID, in validate.CategoryInput) (model.Category, error) {
	if err := validate.Struct(&in); err != nil {
		return model.Category{}, err
	}
	taken, err := s.store.CategoryNameTaken(ctx, userID, in.Name)
	if err != nil {
		return model.Category{}, fmt.Errorf("checking category name: %w", err)
	}
	if taken {
		return model.Category{}, apperr.Duplicate(duplicateCategory)
	}

	c := model.Category{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      in.Name,
		Type:      in.Type,
		Color:     in.Color,
		Icon:      in.Icon,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return model.Category{}, apperr.Duplicate(duplicateCategory)
		}
		return model.Category{}, fmt.Errorf("creating category: %w", err)
	}
	s.cache.Invalidate(ctx, userID)
	return c, nil
}
