package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"compara-mercado/internal/domain"
	"compara-mercado/internal/kvstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrSupermarketNotFound  = errors.New("supermarket not found")
	ErrConfirmationRequired = errors.New("reset requires explicit confirmation")

	errInvalidSupermarkets = errors.New("invalid supermarket list")
)

// CatalogRepository defines the interface for catalog data access
type CatalogRepository interface {
	ListSupermarkets(ctx context.Context) ([]domain.Supermarket, error)
	FindSupermarket(ctx context.Context, id string) (*domain.Supermarket, error)
	ListProducts(ctx context.Context) ([]domain.ProductWithPrices, error)
	FindProduct(ctx context.Context, id string) (*domain.ProductWithPrices, error)
	UpdateSupermarket(ctx context.Context, id string, update domain.SupermarketUpdate) (bool, error)
	AddSupermarket(ctx context.Context, market domain.NewSupermarket) (*domain.Supermarket, error)
	ResetToDefaults(ctx context.Context, confirm bool) error
	Version() uint64
}

// CatalogOptions configures the catalog repository
type CatalogOptions struct {
	// LoadDelay simulates the latency of fetching products the first time.
	LoadDelay time.Duration
	// Products replaces the built-in mock catalog when set.
	Products []domain.ProductWithPrices
}

type catalogRepository struct {
	store  kvstore.Store
	logger *zap.Logger

	loadDelay time.Duration
	loadOnce  sync.Mutex
	loaded    bool

	mu           sync.RWMutex
	supermarkets []domain.Supermarket
	products     []domain.ProductWithPrices
	version      uint64
}

// NewCatalogRepository creates the catalog. Persisted supermarket overrides are loaded
// from the store; a missing or unreadable value falls back to the built-in list.
func NewCatalogRepository(ctx context.Context, store kvstore.Store, logger *zap.Logger, opts CatalogOptions) (CatalogRepository, error) {
	products := opts.Products
	if products == nil {
		products = DefaultProducts()
	}
	if err := validateProducts(products); err != nil {
		return nil, err
	}

	r := &catalogRepository{
		store:     store,
		logger:    logger,
		loadDelay: opts.LoadDelay,
		products:  cloneProducts(products),
	}

	supermarkets, err := r.loadSupermarkets(ctx)
	if err != nil {
		return nil, err
	}
	r.supermarkets = supermarkets

	return r, nil
}

func (r *catalogRepository) loadSupermarkets(ctx context.Context) ([]domain.Supermarket, error) {
	var saved []domain.Supermarket
	found, err := kvstore.GetJSON(ctx, r.store, kvstore.KeySupermarkets, &saved)
	if err != nil {
		if found {
			r.logger.Warn("Stored supermarkets are unreadable, using defaults", zap.Error(err))
			return DefaultSupermarkets(), nil
		}
		return nil, fmt.Errorf("failed to load supermarkets: %w", err)
	}
	if !found {
		return DefaultSupermarkets(), nil
	}
	if err := validateSupermarkets(saved); err != nil {
		r.logger.Warn("Stored supermarkets are invalid, using defaults", zap.Error(err))
		return DefaultSupermarkets(), nil
	}

	r.logger.Info("Loaded supermarket overrides", zap.Int("count", len(saved)))
	return saved, nil
}

// validateSupermarkets rejects an empty list, entries without id or name, and repeated ids
func validateSupermarkets(supermarkets []domain.Supermarket) error {
	if len(supermarkets) == 0 {
		return errInvalidSupermarkets
	}
	seen := make(map[string]struct{}, len(supermarkets))
	for i, s := range supermarkets {
		if s.ID == "" || strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: entry %d has no id or name", errInvalidSupermarkets, i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", errInvalidSupermarkets, s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// ListSupermarkets returns a copy of the current supermarket list
func (r *catalogRepository) ListSupermarkets(ctx context.Context) ([]domain.Supermarket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Supermarket, len(r.supermarkets))
	copy(out, r.supermarkets)
	return out, nil
}

// FindSupermarket retrieves a supermarket by ID
func (r *catalogRepository) FindSupermarket(ctx context.Context, id string) (*domain.Supermarket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.supermarkets {
		if s.ID == id {
			found := s
			return &found, nil
		}
	}
	return nil, ErrSupermarketNotFound
}

// ListProducts returns a copy of every product with its prices.
// The first call waits for the simulated load delay.
func (r *catalogRepository) ListProducts(ctx context.Context) ([]domain.ProductWithPrices, error) {
	if err := r.awaitLoad(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneProducts(r.products), nil
}

// FindProduct retrieves a product by ID
func (r *catalogRepository) FindProduct(ctx context.Context, id string) (*domain.ProductWithPrices, error) {
	if err := r.awaitLoad(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.ID == id {
			found := p.Clone()
			return &found, nil
		}
	}
	return nil, ErrProductNotFound
}

// UpdateSupermarket merges the update into the matching supermarket and persists
// the collection. Unknown ids are ignored and report false.
func (r *catalogRepository) UpdateSupermarket(ctx context.Context, id string, update domain.SupermarketUpdate) (bool, error) {
	if err := update.Validate(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, s := range r.supermarkets {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.logger.Debug("Supermarket update ignored, id not found", zap.String("supermarket_id", id))
		return false, nil
	}

	next := make([]domain.Supermarket, len(r.supermarkets))
	copy(next, r.supermarkets)
	next[idx] = update.Apply(next[idx])

	if err := r.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// AddSupermarket appends a new supermarket with a fresh id and persists the collection
func (r *catalogRepository) AddSupermarket(ctx context.Context, market domain.NewSupermarket) (*domain.Supermarket, error) {
	if err := market.Validate(); err != nil {
		return nil, err
	}

	created := market.Build(uuid.NewString())

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]domain.Supermarket, len(r.supermarkets), len(r.supermarkets)+1)
	copy(next, r.supermarkets)
	next = append(next, created)

	if err := r.commit(ctx, next); err != nil {
		return nil, err
	}
	return &created, nil
}

// ResetToDefaults discards persisted overrides and restores the built-in supermarkets
func (r *catalogRepository) ResetToDefaults(ctx context.Context, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Delete(ctx, kvstore.KeySupermarkets); err != nil {
		return fmt.Errorf("failed to delete supermarket overrides: %w", err)
	}
	r.supermarkets = DefaultSupermarkets()
	r.version++

	r.logger.Info("Supermarkets reset to defaults")
	return nil
}

// Version increases every time the supermarket list changes
func (r *catalogRepository) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// commit persists next and swaps it in. Callers hold the write lock.
func (r *catalogRepository) commit(ctx context.Context, next []domain.Supermarket) error {
	if err := kvstore.SetJSON(ctx, r.store, kvstore.KeySupermarkets, next); err != nil {
		return fmt.Errorf("failed to persist supermarkets: %w", err)
	}
	r.supermarkets = next
	r.version++
	return nil
}

func (r *catalogRepository) awaitLoad(ctx context.Context) error {
	r.loadOnce.Lock()
	defer r.loadOnce.Unlock()

	if r.loaded {
		return nil
	}
	if r.loadDelay > 0 {
		timer := time.NewTimer(r.loadDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	r.loaded = true
	return nil
}

func cloneProducts(products []domain.ProductWithPrices) []domain.ProductWithPrices {
	out := make([]domain.ProductWithPrices, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}
