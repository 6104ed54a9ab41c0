package service

import (
	"slices"
	"sort"
	"strings"

	"compara-mercado/internal/domain"
)

// PromotionSort is the order of the promotion view
type PromotionSort string

const (
	SortDiscount PromotionSort = "discount"
	SortPrice    PromotionSort = "price"
)

// ParsePromotionSort maps user input to a sort key. Unknown values sort by discount.
func ParsePromotionSort(s string) PromotionSort {
	if PromotionSort(s) == SortPrice {
		return SortPrice
	}
	return SortDiscount
}

// Filters narrows the product and promotion views
type Filters struct {
	Category       *domain.Category
	Query          string
	SupermarketIDs []string
	Sort           PromotionSort
}

func matchesQuery(p domain.Product, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Brand), q)
}

func matchesCategory(p domain.Product, category *domain.Category) bool {
	return category == nil || p.Category == *category
}

// FilterPromotions applies category and text filters and sorts the result.
// The input slice is not modified.
func FilterPromotions(promos []domain.Promotion, f Filters) []domain.Promotion {
	query := strings.TrimSpace(f.Query)

	out := make([]domain.Promotion, 0, len(promos))
	for _, p := range promos {
		if matchesCategory(p.Product, f.Category) && matchesQuery(p.Product, query) {
			out = append(out, p)
		}
	}

	if ParsePromotionSort(string(f.Sort)) == SortPrice {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CurrentPrice.LessThan(out[j].CurrentPrice)
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].SavingsPercent > out[j].SavingsPercent
		})
	}
	return out
}

// FilterProducts builds the price comparison view. Products without prices are dropped;
// a supermarket selection narrows each product's prices and drops products left empty.
// Prices of each result are sorted cheapest first, so the first record is the best price.
func FilterProducts(products []domain.ProductWithPrices, f Filters) []domain.ProductWithPrices {
	query := strings.TrimSpace(f.Query)

	out := make([]domain.ProductWithPrices, 0, len(products))
	for _, p := range products {
		if !matchesCategory(p.Product, f.Category) || !matchesQuery(p.Product, query) {
			continue
		}

		prices := make([]domain.PriceRecord, 0, len(p.Prices))
		for _, pr := range p.Prices {
			if len(f.SupermarketIDs) == 0 || slices.Contains(f.SupermarketIDs, pr.SupermarketID) {
				prices = append(prices, pr)
			}
		}
		if len(prices) == 0 {
			continue
		}
		sort.SliceStable(prices, func(i, j int) bool {
			return prices[i].CurrentPrice.LessThan(prices[j].CurrentPrice)
		})

		out = append(out, domain.ProductWithPrices{Product: p.Product, Prices: prices})
	}
	return out
}
