package domain

import "time"

// LineItem is one cart entry: a chosen product variant and quantity, plus the
// combo annotation fields the pricing engine fills in.
//
// Prices are in integer cents. DiscountedUnitPrice is the effective unit
// price before any combo discount; zero means no other discount applies and
// UnitPrice is used.
type LineItem struct {
	ID           string `json:"id,omitempty"`
	ProductID    string `json:"product_id"`
	CategoryID   string `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
	Size         string `json:"size,omitempty"`
	Color        string `json:"color,omitempty"`
	Quantity     int    `json:"quantity"`

	UnitPrice           int64 `json:"unit_price"`
	DiscountedUnitPrice int64 `json:"discounted_unit_price,omitempty"`

	// Annotations set by the pricing engine; never part of the input contract.
	HasComboOffer        bool    `json:"has_combo_offer,omitempty"`
	ComboOfferName       string  `json:"combo_offer_name,omitempty"`
	ComboOfferDiscount   int64   `json:"combo_offer_discount,omitempty"`
	ComboPerUnitPrice    float64 `json:"combo_per_unit_price,omitempty"`
	FinalPriceAfterCombo int64   `json:"final_price_after_combo,omitempty"`
}

// EffectiveUnitPrice returns the discounted unit price, falling back to the
// nominal unit price when no other discount applies.
func (li *LineItem) EffectiveUnitPrice() int64 {
	if li.DiscountedUnitPrice > 0 {
		return li.DiscountedUnitPrice
	}
	return li.UnitPrice
}

// LineItemKey identifies a line item. Items persisted to a server-side cart
// carry an ID; guest cart items are identified by the composite
// (product, size, color). The zero value never matches anything.
type LineItemKey struct {
	persisted string

	productID string
	size      string
	color     string
}

// KeyOf returns the identity key for a line item.
func KeyOf(li *LineItem) LineItemKey {
	if li.ID != "" {
		return LineItemKey{persisted: li.ID}
	}
	return LineItemKey{
		productID: li.ProductID,
		size:      li.Size,
		color:     li.Color,
	}
}

// GuestCart is a server-held snapshot of an unauthenticated shopper's cart.
type GuestCart struct {
	GuestID   string     `json:"guest_id"`
	Items     []LineItem `json:"items"`
	Currency  string     `json:"currency"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// ItemCount returns the total number of units in the cart.
func (c *GuestCart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		if item.Quantity > 0 {
			count += item.Quantity
		}
	}
	return count
}

// CategoryIDs returns the distinct non-empty category IDs present in the
// given items, in order of first occurrence.
func CategoryIDs(items []LineItem) []string {
	seen := make(map[string]bool, len(items))
	var ids []string
	for i := range items {
		id := items[i].CategoryID
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
