package domain

// CategoryGroup is the slice of line items sharing one category, in cart
// order. Groups are ordered by first occurrence of each category.
type CategoryGroup struct {
	CategoryID string
	Items      []LineItem
}

// TotalQuantity sums the quantities in the group. Non-positive quantities
// contribute nothing.
func (g *CategoryGroup) TotalQuantity() int {
	var total int
	for i := range g.Items {
		if g.Items[i].Quantity > 0 {
			total += g.Items[i].Quantity
		}
	}
	return total
}

// CategoryOffer pairs a category with the offer fetched for it. A nil Offer
// means the category has none; the engine treats it the same as an absent
// pair.
type CategoryOffer struct {
	CategoryID string      `json:"category_id"`
	Offer      *ComboOffer `json:"offer,omitempty"`
}

// CategoryDiscountSummary describes the discount applied to one category.
type CategoryDiscountSummary struct {
	CategoryID        string  `json:"category_id"`
	CategoryName      string  `json:"category_name,omitempty"`
	OfferName         string  `json:"offer_name"`
	TotalQuantity     int     `json:"total_quantity"`
	MinimumQuantity   int     `json:"minimum_quantity"`
	PerUnitComboPrice float64 `json:"per_unit_combo_price"`
	TotalDiscount     int64   `json:"total_discount"`
}

// AppliedOfferSummary describes one offer that qualified and was applied.
type AppliedOfferSummary struct {
	CategoryID      string `json:"category_id"`
	OfferName       string `json:"offer_name"`
	MinimumQuantity int    `json:"minimum_quantity"`
	ComboPrice      int64  `json:"combo_price"`
	AppliedQuantity int    `json:"applied_quantity"`
	TotalDiscount   int64  `json:"total_discount"`
}

// PricingResult is the outcome of one pricing pass over a cart snapshot.
type PricingResult struct {
	UpdatedCartItems    []LineItem                `json:"updated_cart_items"`
	ComboOfferDiscounts []CategoryDiscountSummary `json:"combo_offer_discounts"`
	TotalComboDiscount  int64                     `json:"total_combo_discount"`
	AppliedOffers       []AppliedOfferSummary     `json:"applied_offers"`
}

// PotentialSaving projects what a shopper would save by reaching an offer's
// minimum quantity. Advisory only; never affects actual pricing.
type PotentialSaving struct {
	CategoryID            string  `json:"category_id"`
	CategoryName          string  `json:"category_name,omitempty"`
	OfferName             string  `json:"offer_name"`
	MinimumQuantity       int     `json:"minimum_quantity"`
	CurrentQuantity       int     `json:"current_quantity"`
	ItemsNeeded           int     `json:"items_needed"`
	PerUnitComboPrice     float64 `json:"per_unit_combo_price"`
	SavingsPerItem        float64 `json:"savings_per_item"`
	TotalPotentialSavings float64 `json:"total_potential_savings"`
}

// GroupByCategory buckets line items by category. Items with no category are
// excluded; they can never be combo-eligible. Item order within a group and
// group order across categories both follow input order.
func GroupByCategory(items []LineItem) []CategoryGroup {
	index := make(map[string]int, len(items))
	var groups []CategoryGroup

	for i := range items {
		id := items[i].CategoryID
		if id == "" {
			continue
		}
		gi, ok := index[id]
		if !ok {
			gi = len(groups)
			index[id] = gi
			groups = append(groups, CategoryGroup{CategoryID: id})
		}
		groups[gi].Items = append(groups[gi].Items, items[i])
	}

	return groups
}

// ResolveOffers collapses the fetched category/offer pairs into one offer per
// category. Pairs with nil or malformed offers are dropped. If the catalog
// ever returns more than one offer for a category, the tie-break in
// ComboOffer.BetterThan picks the winner deterministically.
func ResolveOffers(offers []CategoryOffer) map[string]*ComboOffer {
	resolved := make(map[string]*ComboOffer, len(offers))
	for _, co := range offers {
		if co.Offer == nil || !co.Offer.Valid() {
			continue
		}
		if co.Offer.BetterThan(resolved[co.CategoryID]) {
			resolved[co.CategoryID] = co.Offer
		}
	}
	return resolved
}

// ApplyComboOffers computes combo discounts for a cart snapshot against the
// given offers. It never mutates its inputs and never fails: missing
// categories, absent offers, and malformed rows all resolve to "no discount".
//
// A category qualifies only when its offer is active and the summed quantity
// meets the offer's minimum. Every item in a qualifying category is
// annotated, including items whose individual discount works out to zero;
// only positive discounts contribute to the total.
func ApplyComboOffers(items []LineItem, offers []CategoryOffer) PricingResult {
	updated := make([]LineItem, len(items))
	copy(updated, items)

	result := PricingResult{
		UpdatedCartItems:    updated,
		ComboOfferDiscounts: []CategoryDiscountSummary{},
		AppliedOffers:       []AppliedOfferSummary{},
	}

	if len(items) == 0 || len(offers) == 0 {
		return result
	}

	resolved := ResolveOffers(offers)
	if len(resolved) == 0 {
		return result
	}

	// Index output slots by item identity so annotated copies land on the
	// right positions regardless of grouping order.
	slots := make(map[LineItemKey]int, len(updated))
	for i := range updated {
		key := KeyOf(&updated[i])
		if _, ok := slots[key]; !ok {
			slots[key] = i
		}
	}

	for _, group := range GroupByCategory(items) {
		offer, ok := resolved[group.CategoryID]
		if !ok {
			continue
		}

		totalQty := group.TotalQuantity()
		if !offer.IsActive || totalQty < offer.MinimumQuantity {
			continue
		}

		perUnit := offer.PerUnitComboPrice()
		var categoryDiscount int64

		for i := range group.Items {
			item := &group.Items[i]
			if item.Quantity <= 0 {
				continue
			}

			qty := int64(item.Quantity)
			originalTotal := item.EffectiveUnitPrice() * qty
			// Multiply before dividing so sub-cent remainders stay out of
			// the per-unit price.
			comboTotal := offer.ComboPrice * qty / int64(offer.MinimumQuantity)

			discount := originalTotal - comboTotal
			if discount < 0 {
				discount = 0
			}

			slot, ok := slots[KeyOf(item)]
			if !ok {
				// Identity not present in the output array; skip without
				// applying a discount rather than failing the pass.
				continue
			}

			annotated := *item
			annotated.HasComboOffer = true
			annotated.ComboOfferName = offer.Name
			annotated.ComboOfferDiscount = discount
			annotated.ComboPerUnitPrice = perUnit
			annotated.FinalPriceAfterCombo = comboTotal
			updated[slot] = annotated

			if discount > 0 {
				categoryDiscount += discount
			}
		}

		result.TotalComboDiscount += categoryDiscount
		result.AppliedOffers = append(result.AppliedOffers, AppliedOfferSummary{
			CategoryID:      group.CategoryID,
			OfferName:       offer.Name,
			MinimumQuantity: offer.MinimumQuantity,
			ComboPrice:      offer.ComboPrice,
			AppliedQuantity: totalQty,
			TotalDiscount:   categoryDiscount,
		})
		result.ComboOfferDiscounts = append(result.ComboOfferDiscounts, CategoryDiscountSummary{
			CategoryID:        group.CategoryID,
			CategoryName:      categoryName(group.Items),
			OfferName:         offer.Name,
			TotalQuantity:     totalQty,
			MinimumQuantity:   offer.MinimumQuantity,
			PerUnitComboPrice: perUnit,
			TotalDiscount:     categoryDiscount,
		})
	}

	return result
}

// PotentialSavings projects savings for categories that have an active offer
// but fall short of its minimum quantity. The average item price is a plain
// mean over the group's line items, not quantity-weighted: each line counts
// once no matter how many units it holds.
func PotentialSavings(items []LineItem, offers []CategoryOffer) []PotentialSaving {
	projections := []PotentialSaving{}
	if len(items) == 0 || len(offers) == 0 {
		return projections
	}

	resolved := ResolveOffers(offers)

	for _, group := range GroupByCategory(items) {
		offer, ok := resolved[group.CategoryID]
		if !ok || !offer.IsActive {
			continue
		}

		totalQty := group.TotalQuantity()
		if totalQty == 0 || totalQty >= offer.MinimumQuantity {
			continue
		}

		var priceSum int64
		for i := range group.Items {
			priceSum += group.Items[i].EffectiveUnitPrice()
		}
		avgItemPrice := float64(priceSum) / float64(len(group.Items))

		perUnit := offer.PerUnitComboPrice()
		savingsPerItem := avgItemPrice - perUnit
		if savingsPerItem < 0 {
			savingsPerItem = 0
		}

		totalPotential := savingsPerItem * float64(offer.MinimumQuantity)
		if totalPotential <= 0 {
			continue
		}

		projections = append(projections, PotentialSaving{
			CategoryID:            group.CategoryID,
			CategoryName:          categoryName(group.Items),
			OfferName:             offer.Name,
			MinimumQuantity:       offer.MinimumQuantity,
			CurrentQuantity:       totalQty,
			ItemsNeeded:           offer.MinimumQuantity - totalQty,
			PerUnitComboPrice:     perUnit,
			SavingsPerItem:        savingsPerItem,
			TotalPotentialSavings: totalPotential,
		})
	}

	return projections
}

// categoryName returns the first non-empty display name in the group.
func categoryName(items []LineItem) string {
	for i := range items {
		if items[i].CategoryName != "" {
			return items[i].CategoryName
		}
	}
	return ""
}
