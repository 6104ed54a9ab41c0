package domain

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, matching what the web client stores.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product in the catalog
type Product struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Brand    string   `json:"brand"`
	Category Category `json:"category"`
	Image    string   `json:"image"`
}

// PriceRecord is the price of one product at one supermarket
type PriceRecord struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"productId"`
	SupermarketID string           `json:"supermarketId"`
	CurrentPrice  decimal.Decimal  `json:"current_price"`
	PreviousPrice *decimal.Decimal `json:"previous_price,omitempty"`
	IsPromotion   bool             `json:"is_promotion"`
	Unit          string           `json:"unit"`
}

// ProductWithPrices joins a product with its price records
type ProductWithPrices struct {
	Product
	Prices []PriceRecord `json:"prices"`
}

// Clone returns a copy whose price slice can be modified freely.
func (p ProductWithPrices) Clone() ProductWithPrices {
	out := p
	out.Prices = make([]PriceRecord, len(p.Prices))
	copy(out.Prices, p.Prices)
	return out
}

// BestPrice returns the price record with the lowest current price.
// Ties keep the first record in array order.
func (p ProductWithPrices) BestPrice() (PriceRecord, bool) {
	if len(p.Prices) == 0 {
		return PriceRecord{}, false
	}
	best := p.Prices[0]
	for _, pr := range p.Prices[1:] {
		if pr.CurrentPrice.LessThan(best.CurrentPrice) {
			best = pr
		}
	}
	return best, true
}

// Price builds a decimal from a float literal. Used for seed data and tests.
func Price(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// PricePtr is Price for optional fields.
func PricePtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}
