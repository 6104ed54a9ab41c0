package repository

import (
	"context"
	"fmt"

	"compara-mercado/internal/domain"
	"compara-mercado/internal/kvstore"

	"go.uber.org/zap"
)

// ShoppingListRepository defines the interface for shopping list persistence
type ShoppingListRepository interface {
	Load(ctx context.Context) ([]domain.ShoppingListItem, error)
	Save(ctx context.Context, items []domain.ShoppingListItem) error
}

type shoppingListRepository struct {
	store  kvstore.Store
	logger *zap.Logger
}

// NewShoppingListRepository creates a new instance of ShoppingListRepository
func NewShoppingListRepository(store kvstore.Store, logger *zap.Logger) ShoppingListRepository {
	return &shoppingListRepository{store: store, logger: logger}
}

// Load returns the stored list. An absent or unreadable value yields an empty list.
func (r *shoppingListRepository) Load(ctx context.Context) ([]domain.ShoppingListItem, error) {
	var items []domain.ShoppingListItem
	found, err := kvstore.GetJSON(ctx, r.store, kvstore.KeyShoppingList, &items)
	if err != nil {
		if found {
			r.logger.Warn("Stored shopping list is unreadable, starting empty", zap.Error(err))
			return []domain.ShoppingListItem{}, nil
		}
		return nil, fmt.Errorf("failed to load shopping list: %w", err)
	}
	if items == nil {
		items = []domain.ShoppingListItem{}
	}
	return items, nil
}

// Save replaces the stored list
func (r *shoppingListRepository) Save(ctx context.Context, items []domain.ShoppingListItem) error {
	if items == nil {
		items = []domain.ShoppingListItem{}
	}
	return kvstore.SetJSON(ctx, r.store, kvstore.KeyShoppingList, items)
}
