package domain

import (
	"github.com/shopspring/decimal"
)

// Promotion is a discounted price record joined with its product and supermarket.
// It is derived from the catalog and never stored.
type Promotion struct {
	ID             string          `json:"id"`
	Product        Product         `json:"product"`
	Supermarket    Supermarket     `json:"supermarket"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
	PreviousPrice  decimal.Decimal `json:"previous_price"`
	SavingsPercent int64           `json:"savings_percent"`
	Unit           string          `json:"unit"`
}

// Savings returns the absolute discount of the promotion
func (p Promotion) Savings() decimal.Decimal {
	return p.PreviousPrice.Sub(p.CurrentPrice)
}

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.New(5, -1)
)

// SavingsPercent computes round(100 * (1 - current/previous)) with exact halves
// rounded toward positive infinity, so -12.5 becomes -12 and 12.5 becomes 13.
// ok is false when previous is not positive, in which case there is no discount.
func SavingsPercent(current, previous decimal.Decimal) (percent int64, ok bool) {
	if !previous.IsPositive() {
		return 0, false
	}
	ratio := decimal.NewFromInt(1).Sub(current.Div(previous))
	return ratio.Mul(hundred).Add(half).Floor().IntPart(), true
}
