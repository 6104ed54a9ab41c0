package service

import (
	"context"
	"time"

	"compara-mercado/internal/domain"

	"github.com/shopspring/decimal"
)

// FeaturedPromotions is how many promotions the home screen highlights
const FeaturedPromotions = 4

// QuickSuggestions are the search shortcuts shown on the home screen
var QuickSuggestions = []string{"Leite", "Café", "Arroz", "Feijão", "Açúcar", "Sabão", "Detergente", "Óleo"}

// HomeSummary is the landing screen data
type HomeSummary struct {
	Greeting         string             `json:"greeting"`
	TotalSavings     decimal.Decimal    `json:"total_savings"`
	PromoCount       int                `json:"promo_count"`
	SuperDeal        *domain.Promotion  `json:"super_deal"`
	Featured         []domain.Promotion `json:"featured"`
	QuickSuggestions []string           `json:"quick_suggestions"`
}

// HomeService builds the home summary
type HomeService interface {
	Summary(ctx context.Context, now time.Time) (*HomeSummary, error)
}

type homeService struct {
	promotions PromotionService
}

// NewHomeService creates a new instance of HomeService
func NewHomeService(promotions PromotionService) HomeService {
	return &homeService{promotions: promotions}
}

func (s *homeService) Summary(ctx context.Context, now time.Time) (*HomeSummary, error) {
	promos, err := s.promotions.List(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(promos, now), nil
}

// Summarize computes the home summary from promotions sorted by savings
func Summarize(promos []domain.Promotion, now time.Time) *HomeSummary {
	summary := &HomeSummary{
		Greeting:         Greeting(now),
		TotalSavings:     decimal.Zero,
		PromoCount:       len(promos),
		Featured:         append([]domain.Promotion{}, promos[:min(FeaturedPromotions, len(promos))]...),
		QuickSuggestions: QuickSuggestions,
	}
	for _, p := range promos {
		summary.TotalSavings = summary.TotalSavings.Add(p.Savings())
	}
	if len(promos) > 0 {
		deal := promos[0]
		summary.SuperDeal = &deal
	}
	return summary
}

// Greeting returns the salutation for the hour of now
func Greeting(now time.Time) string {
	switch h := now.Hour(); {
	case h < 12:
		return "Bom dia"
	case h < 18:
		return "Boa tarde"
	default:
		return "Boa noite"
	}
}
