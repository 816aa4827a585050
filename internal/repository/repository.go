package repository

import (
	"context"

	"github.com/protyayrd/tweestbd-sub001/internal/domain"
)

// OfferFilter narrows and paginates combo offer listings.
type OfferFilter struct {
	CategoryID string
	IsActive   *bool
	Page       int
	PerPage    int
}

// OfferRepository defines persistence operations for combo offers.
type OfferRepository interface {
	// Create inserts a new combo offer.
	Create(ctx context.Context, offer *domain.ComboOffer) error

	// GetByID retrieves a combo offer by its ID.
	GetByID(ctx context.Context, id string) (*domain.ComboOffer, error)

	// GetActiveByCategory retrieves the active offer for a category. When
	// more than one active offer exists, the deterministic tie-break
	// (highest minimum quantity, then lowest combo price, then name) picks
	// the winner.
	GetActiveByCategory(ctx context.Context, categoryID string) (*domain.ComboOffer, error)

	// List returns a filtered, paginated list of offers plus the total count.
	List(ctx context.Context, filter OfferFilter) ([]domain.ComboOffer, int, error)

	// Update persists changes to an existing offer.
	Update(ctx context.Context, offer *domain.ComboOffer) error
}

// GuestCartRepository defines persistence operations for guest cart
// snapshots.
type GuestCartRepository interface {
	// Get retrieves a guest cart by its guest ID.
	Get(ctx context.Context, guestID string) (*domain.GuestCart, error)

	// SaveIfVersion persists the cart only if the stored version still
	// matches expectedVersion, bumping the version on success. Returns
	// false when the cart was modified concurrently.
	SaveIfVersion(ctx context.Context, cart *domain.GuestCart, expectedVersion int) (bool, error)

	// Delete removes a guest cart.
	Delete(ctx context.Context, guestID string) error
}
