package domain

import "time"

// ComboOffer is a category-scoped bundle promotion: buy at least
// MinimumQuantity units within one category for a fixed ComboPrice total.
type ComboOffer struct {
	ID              string    `json:"id"`
	CategoryID      string    `json:"category_id"`
	Name            string    `json:"name"`
	MinimumQuantity int       `json:"minimum_quantity"`
	ComboPrice      int64     `json:"combo_price"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Valid reports whether the offer is well-formed enough to price against.
// Offers failing this check are treated as absent by the engine, so a
// malformed catalog row can never produce a division by zero or a surcharge.
func (o *ComboOffer) Valid() bool {
	return o.MinimumQuantity >= 1 && o.ComboPrice >= 0 && o.CategoryID != ""
}

// PerUnitComboPrice returns the exact per-unit price of the bundle. Kept as
// a real quotient; discount arithmetic multiplies before dividing so no
// per-unit rounding leaks into totals.
func (o *ComboOffer) PerUnitComboPrice() float64 {
	if o.MinimumQuantity < 1 {
		return 0
	}
	return float64(o.ComboPrice) / float64(o.MinimumQuantity)
}

// BetterThan orders two offers for the same category deterministically:
// highest minimum quantity wins, then lowest combo price, then name. The
// catalog is expected to hold one active offer per category; this tie-break
// keeps pricing stable if it ever does not.
func (o *ComboOffer) BetterThan(other *ComboOffer) bool {
	if other == nil {
		return true
	}
	if o.MinimumQuantity != other.MinimumQuantity {
		return o.MinimumQuantity > other.MinimumQuantity
	}
	if o.ComboPrice != other.ComboPrice {
		return o.ComboPrice < other.ComboPrice
	}
	return o.Name < other.Name
}
