package repository

import (
	"compara-mercado/internal/domain"
)

// DefaultSupermarkets returns the built-in partner stores
func DefaultSupermarkets() []domain.Supermarket {
	return []domain.Supermarket{
		{ID: "1", Name: "Carrefour", Logo: "https://picsum.photos/100/100?random=1", Color: "#0058a9", Distance: "1.2 km", WebsiteURL: "https://www.carrefour.com.br"},
		{ID: "2", Name: "Extra", Logo: "https://picsum.photos/100/100?random=2", Color: "#ff0000", Distance: "0.8 km", WebsiteURL: "https://www.clubeextra.com.br"},
		{ID: "3", Name: "Pão de Açúcar", Logo: "https://picsum.photos/100/100?random=3", Color: "#00a859", Distance: "2.5 km", WebsiteURL: "https://www.paodeacucar.com"},
		{ID: "4", Name: "Assaí", Logo: "https://picsum.photos/100/100?random=4", Color: "#f37021", Distance: "3.1 km", WebsiteURL: "https://www.assai.com.br"},
	}
}

// DefaultProducts returns the mock catalog with its price records
func DefaultProducts() []domain.ProductWithPrices {
	price := domain.Price
	prev := domain.PricePtr

	return []domain.ProductWithPrices{
		{
			Product: domain.Product{ID: "p1", Name: "Leite Integral 1L", Brand: "Itambé", Category: domain.CategoryAlimentos, Image: "https://picsum.photos/200/200?random=11"},
			Prices: []domain.PriceRecord{
				{ID: "pr1", ProductID: "p1", SupermarketID: "1", CurrentPrice: price(4.89), PreviousPrice: prev(5.49), IsPromotion: true, Unit: "L"},
				{ID: "pr2", ProductID: "p1", SupermarketID: "2", CurrentPrice: price(5.15), Unit: "L"},
				{ID: "pr3", ProductID: "p1", SupermarketID: "3", CurrentPrice: price(5.50), Unit: "L"},
			},
		},
		{
			Product: domain.Product{ID: "p2", Name: "Café Torrado e Moído 500g", Brand: "Melitta", Category: domain.CategoryAlimentos, Image: "https://picsum.photos/200/200?random=12"},
			Prices: []domain.PriceRecord{
				{ID: "pr4", ProductID: "p2", SupermarketID: "1", CurrentPrice: price(18.90), PreviousPrice: prev(22.90), IsPromotion: true, Unit: "un"},
				{ID: "pr5", ProductID: "p2", SupermarketID: "2", CurrentPrice: price(19.50), Unit: "un"},
				{ID: "pr6", ProductID: "p2", SupermarketID: "4", CurrentPrice: price(17.50), PreviousPrice: prev(19.90), IsPromotion: true, Unit: "un"},
			},
		},
		{
			Product: domain.Product{ID: "p3", Name: "Detergente Líquido 500ml", Brand: "Ypê", Category: domain.CategoryLimpeza, Image: "https://picsum.photos/200/200?random=13"},
			Prices: []domain.PriceRecord{
				{ID: "pr7", ProductID: "p3", SupermarketID: "1", CurrentPrice: price(2.19), Unit: "un"},
				{ID: "pr8", ProductID: "p3", SupermarketID: "2", CurrentPrice: price(1.89), PreviousPrice: prev(2.39), IsPromotion: true, Unit: "un"},
			},
		},
		{
			Product: domain.Product{ID: "p4", Name: "Papel Higiênico 12 rolos", Brand: "Neve", Category: domain.CategoryHigiene, Image: "https://picsum.photos/200/200?random=14"},
			Prices: []domain.PriceRecord{
				{ID: "pr9", ProductID: "p4", SupermarketID: "3", CurrentPrice: price(24.90), PreviousPrice: prev(29.90), IsPromotion: true, Unit: "un"},
				{ID: "pr10", ProductID: "p4", SupermarketID: "4", CurrentPrice: price(21.90), Unit: "un"},
			},
		},
		{
			Product: domain.Product{ID: "p5", Name: "Pão de Forma Tradicional 450g", Brand: "Pullman", Category: domain.CategoryPadaria, Image: "https://picsum.photos/200/200?random=15"},
			Prices: []domain.PriceRecord{
				{ID: "pr11", ProductID: "p5", SupermarketID: "2", CurrentPrice: price(8.50), PreviousPrice: prev(9.90), IsPromotion: true, Unit: "un"},
			},
		},
	}
}

// validateProducts rejects catalogs with more than one price record per product and supermarket
func validateProducts(products []domain.ProductWithPrices) error {
	type pair struct{ product, supermarket string }
	seen := make(map[pair]bool)
	for _, p := range products {
		for _, pr := range p.Prices {
			k := pair{p.ID, pr.SupermarketID}
			if seen[k] {
				return domain.ErrDuplicatePriceRecord
			}
			seen[k] = true
		}
	}
	return nil
}
