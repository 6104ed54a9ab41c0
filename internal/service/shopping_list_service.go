package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"compara-mercado/internal/domain"
	"compara-mercado/internal/metrics"
	"compara-mercado/internal/repository"
	"compara-mercado/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UnknownProductName labels list items whose product is no longer in the catalog
const UnknownProductName = "Produto desconhecido"

var ErrItemNotFound = errors.New("shopping list item not found")

// ListItemView is a shopping list item resolved against the catalog
type ListItemView struct {
	ID               string           `json:"id"`
	ProductID        string           `json:"productId,omitempty"`
	CustomName       string           `json:"customName,omitempty"`
	Name             string           `json:"name"`
	Brand            string           `json:"brand,omitempty"`
	Image            string           `json:"image,omitempty"`
	Quantity         int              `json:"quantity"`
	Checked          bool             `json:"checked"`
	PreferredStoreID string           `json:"preferredStoreId,omitempty"`
	UnitPrice        *decimal.Decimal `json:"unit_price,omitempty"`
	SupermarketID    string           `json:"supermarketId,omitempty"`
	Subtotal         decimal.Decimal  `json:"subtotal"`
}

// ShoppingListView is the whole list with its estimated total
type ShoppingListView struct {
	Items []ListItemView  `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// ShoppingListService manages the user's shopping list
type ShoppingListService interface {
	Add(ctx context.Context, productID string) (*domain.ShoppingListItem, error)
	AddManual(ctx context.Context, name string) (*domain.ShoppingListItem, error)
	Update(ctx context.Context, itemID string, update domain.ItemUpdate) (*domain.ShoppingListItem, error)
	Remove(ctx context.Context, itemID string) error
	ClearChecked(ctx context.Context) (int, error)
	Items(ctx context.Context) []domain.ShoppingListItem
	Total(ctx context.Context) (decimal.Decimal, error)
	List(ctx context.Context) (*ShoppingListView, error)
}

type shoppingListService struct {
	repo      repository.ShoppingListRepository
	catalog   repository.CatalogRepository
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger

	mu    sync.RWMutex
	items []domain.ShoppingListItem
}

// NewShoppingListService loads the stored list and returns the service
func NewShoppingListService(
	ctx context.Context,
	repo repository.ShoppingListRepository,
	catalog repository.CatalogRepository,
	publisher Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) (ShoppingListService, error) {
	items, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load shopping list: %w", err)
	}

	return &shoppingListService{
		repo:      repo,
		catalog:   catalog,
		publisher: publisherOrNoop(publisher),
		metrics:   m,
		logger:    logger,
		items:     items,
	}, nil
}

// Add puts a catalog product on the list, or bumps its quantity if already present
func (s *shoppingListService) Add(ctx context.Context, productID string) (*domain.ShoppingListItem, error) {
	if _, err := s.catalog.FindProduct(ctx, productID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot()
	var result domain.ShoppingListItem
	merged := false
	for i, item := range next {
		if id, ok := item.ProductID(); ok && id == productID {
			next[i].Quantity++
			result = next[i]
			merged = true
			break
		}
	}
	if !merged {
		result = domain.ShoppingListItem{
			ID:       uuid.NewString(),
			Entry:    domain.CatalogEntry{ProductID: productID},
			Quantity: 1,
		}
		next = append(next, result)
	}

	if err := s.commit(ctx, "add", next); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddManual appends a free-text item. Manual items never merge.
func (s *shoppingListService) AddManual(ctx context.Context, name string) (*domain.ShoppingListItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEmptyItemName
	}

	item := domain.ShoppingListItem{
		ID:       uuid.NewString(),
		Entry:    domain.ManualEntry{Name: name},
		Quantity: 1,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(ctx, "add_manual", append(s.snapshot(), item)); err != nil {
		return nil, err
	}
	return &item, nil
}

// Update merges the given fields into an item
func (s *shoppingListService) Update(ctx context.Context, itemID string, update domain.ItemUpdate) (*domain.ShoppingListItem, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot()
	for i, item := range next {
		if item.ID != itemID {
			continue
		}
		next[i] = update.Apply(item)
		updated := next[i]
		if err := s.commit(ctx, "update", next); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, ErrItemNotFound
}

// Remove deletes an item. Unknown ids are ignored.
func (s *shoppingListService) Remove(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.ShoppingListItem, 0, len(s.items))
	for _, item := range s.items {
		if item.ID != itemID {
			next = append(next, item)
		}
	}
	if len(next) == len(s.items) {
		return nil
	}
	return s.commit(ctx, "remove", next)
}

// ClearChecked removes every checked item and returns how many were removed
func (s *shoppingListService) ClearChecked(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.ShoppingListItem, 0, len(s.items))
	for _, item := range s.items {
		if !item.Checked {
			next = append(next, item)
		}
	}
	removed := len(s.items) - len(next)
	if removed == 0 {
		return 0, nil
	}
	if err := s.commit(ctx, "clear_checked", next); err != nil {
		return 0, err
	}
	return removed, nil
}

// Items returns a copy of the current items
func (s *shoppingListService) Items(ctx context.Context) []domain.ShoppingListItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Total estimates the cost of the list at the best available prices
func (s *shoppingListService) Total(ctx context.Context) (decimal.Decimal, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list products: %w", err)
	}
	return ComputeTotal(s.Items(ctx), products), nil
}

// List returns every item resolved against the catalog, with the total
func (s *shoppingListService) List(ctx context.Context) (*ShoppingListView, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	items := s.Items(ctx)
	byID := indexProducts(products)

	view := &ShoppingListView{Items: make([]ListItemView, 0, len(items)), Total: decimal.Zero}
	for _, item := range items {
		v := ListItemView{
			ID:               item.ID,
			Quantity:         item.Quantity,
			Checked:          item.Checked,
			PreferredStoreID: item.PreferredStoreID,
			Name:             itemName(item, byID),
			Subtotal:         decimal.Zero,
		}
		if name, ok := item.ManualName(); ok {
			v.CustomName = name
		}
		if id, ok := item.ProductID(); ok {
			v.ProductID = id
			if p, found := byID[id]; found {
				v.Brand = p.Brand
				v.Image = p.Image
				if best, ok := p.BestPrice(); ok {
					price := best.CurrentPrice
					v.UnitPrice = &price
					v.SupermarketID = best.SupermarketID
					v.Subtotal = price.Mul(decimal.NewFromInt(int64(item.Quantity)))
				}
			}
		}
		view.Total = view.Total.Add(v.Subtotal)
		view.Items = append(view.Items, v)
	}
	return view, nil
}

// snapshot copies the items. Callers hold the lock.
func (s *shoppingListService) snapshot() []domain.ShoppingListItem {
	out := make([]domain.ShoppingListItem, len(s.items))
	copy(out, s.items)
	return out
}

// commit persists next and swaps it in. Callers hold the write lock.
func (s *shoppingListService) commit(ctx context.Context, op string, next []domain.ShoppingListItem) error {
	if err := s.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("failed to save shopping list: %w", err)
	}
	s.items = next
	s.metrics.ListMutations.WithLabelValues(op).Inc()
	s.publisher.Publish(websocket.EventShoppingListUpdated)
	return nil
}

// ComputeTotal sums best price times quantity over catalog items.
// Manual items and products that cannot be priced contribute nothing.
func ComputeTotal(items []domain.ShoppingListItem, products []domain.ProductWithPrices) decimal.Decimal {
	byID := indexProducts(products)

	total := decimal.Zero
	for _, item := range items {
		id, ok := item.ProductID()
		if !ok {
			continue
		}
		p, found := byID[id]
		if !found {
			continue
		}
		best, ok := p.BestPrice()
		if !ok {
			continue
		}
		total = total.Add(best.CurrentPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func indexProducts(products []domain.ProductWithPrices) map[string]domain.ProductWithPrices {
	byID := make(map[string]domain.ProductWithPrices, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID
}

// itemName is the display name of an item: the manual name, the product name,
// or UnknownProductName
func itemName(item domain.ShoppingListItem, products map[string]domain.ProductWithPrices) string {
	if name, ok := item.ManualName(); ok {
		return name
	}
	if id, ok := item.ProductID(); ok {
		if p, found := products[id]; found {
			return p.Name
		}
	}
	return UnknownProductName
}
