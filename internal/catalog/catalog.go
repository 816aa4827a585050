// Package catalog abstracts where combo offers come from. The pricing
// service only needs one question answered per category: what is the active
// offer, if any.
package catalog

import (
	"context"

	"github.com/protyayrd/tweestbd-sub001/internal/domain"
)

// Catalog looks up the active combo offer for a category.
//
// A (nil, nil) return means the category has no active offer; that is a
// normal outcome, not an error. Errors are reserved for lookup failures
// (datastore down, downstream unreachable), which the pricing layer treats
// as offer absence so a catalog outage can never block checkout.
type Catalog interface {
	ActiveOffer(ctx context.Context, categoryID string) (*domain.ComboOffer, error)
}
