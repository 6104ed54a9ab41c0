package service

import (
	"context"
	"errors"
	"fmt"

	"compara-mercado/internal/domain"
	"compara-mercado/internal/metrics"
	"compara-mercado/internal/repository"
	"compara-mercado/internal/websocket"

	"go.uber.org/zap"
)

var ErrNoStorefront = errors.New("supermarket has no storefront link")

// ProductComparison is a product with its prices sorted cheapest first
type ProductComparison struct {
	domain.ProductWithPrices
	BestPrice domain.PriceRecord `json:"best_price"`
}

// CatalogService exposes the catalog views and supermarket administration
type CatalogService interface {
	Supermarkets(ctx context.Context) ([]domain.Supermarket, error)
	Storefront(ctx context.Context, supermarketID string) (string, error)
	Compare(ctx context.Context, f Filters) ([]ProductComparison, error)
	Promotions(ctx context.Context, f Filters) ([]domain.Promotion, error)
	AddSupermarket(ctx context.Context, market domain.NewSupermarket) (*domain.Supermarket, error)
	UpdateSupermarket(ctx context.Context, id string, update domain.SupermarketUpdate) error
	ResetSupermarkets(ctx context.Context, confirm bool) error
}

type catalogService struct {
	catalog    repository.CatalogRepository
	promotions PromotionService
	publisher  Publisher
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	catalog repository.CatalogRepository,
	promotions PromotionService,
	publisher Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		catalog:    catalog,
		promotions: promotions,
		publisher:  publisherOrNoop(publisher),
		metrics:    m,
		logger:     logger,
	}
}

// Supermarkets lists the configured supermarkets
func (s *catalogService) Supermarkets(ctx context.Context) ([]domain.Supermarket, error) {
	return s.catalog.ListSupermarkets(ctx)
}

// Storefront returns the external website of a supermarket
func (s *catalogService) Storefront(ctx context.Context, supermarketID string) (string, error) {
	market, err := s.catalog.FindSupermarket(ctx, supermarketID)
	if err != nil {
		return "", err
	}
	if market.WebsiteURL == "" {
		return "", ErrNoStorefront
	}
	return market.WebsiteURL, nil
}

// Compare returns the filtered price comparison view
func (s *catalogService) Compare(ctx context.Context, f Filters) ([]ProductComparison, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	filtered := FilterProducts(products, f)
	out := make([]ProductComparison, len(filtered))
	for i, p := range filtered {
		out[i] = ProductComparison{ProductWithPrices: p, BestPrice: p.Prices[0]}
	}
	return out, nil
}

// Promotions returns the filtered and sorted promotion view
func (s *catalogService) Promotions(ctx context.Context, f Filters) ([]domain.Promotion, error) {
	promos, err := s.promotions.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterPromotions(promos, f), nil
}

// AddSupermarket registers a new supermarket
func (s *catalogService) AddSupermarket(ctx context.Context, market domain.NewSupermarket) (*domain.Supermarket, error) {
	created, err := s.catalog.AddSupermarket(ctx, market)
	if err != nil {
		return nil, err
	}
	s.changed("add", zap.String("supermarket_id", created.ID))
	return created, nil
}

// UpdateSupermarket edits a supermarket; unknown ids are ignored
func (s *catalogService) UpdateSupermarket(ctx context.Context, id string, update domain.SupermarketUpdate) error {
	if update.IsEmpty() {
		return domain.ErrEmptyUpdate
	}
	updated, err := s.catalog.UpdateSupermarket(ctx, id, update)
	if err != nil {
		return err
	}
	if !updated {
		return nil
	}
	s.changed("update", zap.String("supermarket_id", id))
	return nil
}

// ResetSupermarkets restores the built-in supermarket list
func (s *catalogService) ResetSupermarkets(ctx context.Context, confirm bool) error {
	if err := s.catalog.ResetToDefaults(ctx, confirm); err != nil {
		return err
	}
	s.changed("reset")
	return nil
}

func (s *catalogService) changed(op string, fields ...zap.Field) {
	s.metrics.CatalogMutations.WithLabelValues(op).Inc()
	s.publisher.Publish(websocket.EventSupermarketsUpdated)
	s.logger.Info("Supermarkets changed", append(fields, zap.String("op", op))...)
}
