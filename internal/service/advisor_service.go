package service

import (
	"context"
	"fmt"
	"strings"

	"compara-mercado/internal/metrics"
	"compara-mercado/internal/repository"

	"go.uber.org/zap"
)

const (
	EmptyListAdvice     = "Sua lista está vazia! Adicione alguns produtos para receber dicas personalizadas."
	EmptyResponseAdvice = "Mantenha o foco nas ofertas da semana!"
	FallbackAdvice      = "Dica: Comprar itens de marcas próprias costuma gerar uma economia de até 40%."

	// MaxAdviceRunes caps the length of generated advice
	MaxAdviceRunes = 150

	advicePrompt = "Como um consultor especialista em economia doméstica e compras de supermercado, " +
		"analise esta lista de compras: %s. " +
		"Forneça uma dica curta, prática e motivadora em português (máximo 150 caracteres)."
)

// TextGenerator produces text for a prompt
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AdvisorService produces a savings tip for the current shopping list
type AdvisorService interface {
	Advice(ctx context.Context) string
}

type advisorService struct {
	list      ShoppingListService
	catalog   repository.CatalogRepository
	generator TextGenerator
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewAdvisorService creates a new instance of AdvisorService
func NewAdvisorService(
	list ShoppingListService,
	catalog repository.CatalogRepository,
	generator TextGenerator,
	m *metrics.Metrics,
	logger *zap.Logger,
) AdvisorService {
	return &advisorService{
		list:      list,
		catalog:   catalog,
		generator: generator,
		metrics:   m,
		logger:    logger,
	}
}

// Advice always returns a usable message; failures degrade to a fixed tip.
func (s *advisorService) Advice(ctx context.Context) string {
	items := s.list.Items(ctx)
	if len(items) == 0 {
		s.metrics.AdvisorRequests.WithLabelValues("empty_list").Inc()
		return EmptyListAdvice
	}

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return s.fallback(err)
	}
	byID := indexProducts(products)

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = itemName(item, byID)
	}

	text, err := s.generator.Generate(ctx, BuildAdvicePrompt(names))
	if err != nil {
		return s.fallback(err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		s.metrics.AdvisorRequests.WithLabelValues("empty_response").Inc()
		return EmptyResponseAdvice
	}

	s.metrics.AdvisorRequests.WithLabelValues("ai").Inc()
	return truncateRunes(text, MaxAdviceRunes)
}

func (s *advisorService) fallback(err error) string {
	s.logger.Warn("Savings advice unavailable, using fallback tip", zap.Error(err))
	s.metrics.AdvisorRequests.WithLabelValues("fallback").Inc()
	return FallbackAdvice
}

// BuildAdvicePrompt embeds the item names in the advisor prompt
func BuildAdvicePrompt(names []string) string {
	return fmt.Sprintf(advicePrompt, strings.Join(names, ", "))
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n]))
}
