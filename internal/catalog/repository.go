package catalog

import (
	"context"
	"errors"

	"github.com/protyayrd/tweestbd-sub001/internal/domain"
	"github.com/protyayrd/tweestbd-sub001/internal/repository"
	apperrors "github.com/protyayrd/tweestbd-sub001/pkg/errors"
)

// RepositoryCatalog serves offers straight from the local offer store. Used
// when the pricing service owns the offer tables.
type RepositoryCatalog struct {
	repo repository.OfferRepository
}

// NewRepositoryCatalog creates a catalog backed by the local offer repository.
func NewRepositoryCatalog(repo repository.OfferRepository) *RepositoryCatalog {
	return &RepositoryCatalog{repo: repo}
}

// ActiveOffer returns the active offer for the category, or (nil, nil) when
// the category has none.
func (c *RepositoryCatalog) ActiveOffer(ctx context.Context, categoryID string) (*domain.ComboOffer, error) {
	offer, err := c.repo.GetActiveByCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return offer, nil
}
