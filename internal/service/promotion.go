package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"compara-mercado/internal/domain"
	"compara-mercado/internal/repository"
)

// DerivePromotions builds the promotion list from price records flagged as promotions.
// Records whose supermarket is unknown or whose previous price is missing or not
// positive are skipped. The result is sorted by savings, highest first; equal savings
// keep catalog order.
func DerivePromotions(products []domain.ProductWithPrices, supermarkets []domain.Supermarket) []domain.Promotion {
	byID := make(map[string]domain.Supermarket, len(supermarkets))
	for _, s := range supermarkets {
		byID[s.ID] = s
	}

	promos := []domain.Promotion{}
	for _, p := range products {
		for _, pr := range p.Prices {
			if !pr.IsPromotion || pr.PreviousPrice == nil {
				continue
			}
			market, ok := byID[pr.SupermarketID]
			if !ok {
				continue
			}
			percent, ok := domain.SavingsPercent(pr.CurrentPrice, *pr.PreviousPrice)
			if !ok {
				continue
			}
			promos = append(promos, domain.Promotion{
				ID:             pr.ID,
				Product:        p.Product,
				Supermarket:    market,
				CurrentPrice:   pr.CurrentPrice,
				PreviousPrice:  *pr.PreviousPrice,
				SavingsPercent: percent,
				Unit:           pr.Unit,
			})
		}
	}

	sort.SliceStable(promos, func(i, j int) bool {
		return promos[i].SavingsPercent > promos[j].SavingsPercent
	})
	return promos
}

// PromotionService serves the derived promotion list
type PromotionService interface {
	List(ctx context.Context) ([]domain.Promotion, error)
}

type promotionService struct {
	catalog repository.CatalogRepository

	mu      sync.Mutex
	cached  []domain.Promotion
	version uint64
	valid   bool
}

// NewPromotionService creates a new instance of PromotionService
func NewPromotionService(catalog repository.CatalogRepository) PromotionService {
	return &promotionService{catalog: catalog}
}

// List returns the promotions, recomputing them when the catalog has changed
// since the last call. The returned slice is a copy.
func (s *promotionService) List(ctx context.Context) ([]domain.Promotion, error) {
	version := s.catalog.Version()

	s.mu.Lock()
	if s.valid && s.version == version {
		out := clonePromotions(s.cached)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	supermarkets, err := s.catalog.ListSupermarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list supermarkets: %w", err)
	}
	promos := DerivePromotions(products, supermarkets)

	s.mu.Lock()
	// a concurrent mutation may have bumped the version while deriving
	if s.catalog.Version() == version {
		s.cached = promos
		s.version = version
		s.valid = true
	}
	s.mu.Unlock()

	return clonePromotions(promos), nil
}

func clonePromotions(promos []domain.Promotion) []domain.Promotion {
	out := make([]domain.Promotion, len(promos))
	copy(out, promos)
	return out
}
