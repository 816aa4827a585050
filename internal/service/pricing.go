package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/protyayrd/tweestbd-sub001/internal/catalog"
	"github.com/protyayrd/tweestbd-sub001/internal/domain"
	"github.com/protyayrd/tweestbd-sub001/internal/event"
	apperrors "github.com/protyayrd/tweestbd-sub001/pkg/errors"
)

// ErrQuoteSuperseded is returned when a newer quote for the same guest
// started while this one was still fetching offers. The older result must
// never overwrite the newer one, so the caller should retry or drop it.
var ErrQuoteSuperseded = apperrors.Conflict("pricing quote superseded by a newer request")

// QuoteResult is the full outcome of a pricing pass: the repriced items,
// per-category discount summaries, and near-miss projections.
type QuoteResult struct {
	UpdatedCartItems    []domain.LineItem                `json:"updated_cart_items"`
	ComboOfferDiscounts []domain.CategoryDiscountSummary `json:"combo_offer_discounts"`
	TotalComboDiscount  int64                            `json:"total_combo_discount"`
	AppliedOffers       []domain.AppliedOfferSummary     `json:"applied_offers"`
	PotentialSavings    []domain.PotentialSaving         `json:"potential_savings"`
}

// PricingService orchestrates combo offer eligibility checks: it fans out
// offer lookups per category, applies the discount engine, and publishes the
// outcome.
type PricingService struct {
	catalog  catalog.Catalog
	producer *event.Producer
	logger   *slog.Logger

	// generations tracks a per-guest quote counter so a slow quote that
	// raced a newer one can be detected and discarded.
	generations sync.Map // string -> *atomic.Uint64
}

// NewPricingService creates a new pricing service.
func NewPricingService(cat catalog.Catalog, producer *event.Producer, logger *slog.Logger) *PricingService {
	return &PricingService{
		catalog:  cat,
		producer: producer,
		logger:   logger,
	}
}

// CheckComboOfferEligibility prices a cart snapshot against the active combo
// offers.
//
// Offer lookups run concurrently, one per distinct category, and every
// lookup settles before pricing starts. A failed lookup degrades to "no
// offer for that category" rather than failing the quote; a catalog outage
// therefore yields original prices, never an error. The only error paths are
// input validation and a superseded quote.
func (s *PricingService) CheckComboOfferEligibility(ctx context.Context, guestID string, items []domain.LineItem) (*QuoteResult, error) {
	for i := range items {
		if items[i].UnitPrice < 0 || items[i].DiscountedUnitPrice < 0 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("item %d: price must not be negative", i))
		}
	}

	var generation uint64
	if guestID != "" {
		generation = s.nextGeneration(guestID)
	}

	categoryIDs := domain.CategoryIDs(items)
	if len(categoryIDs) == 0 {
		return emptyQuoteResult(items), nil
	}

	offers := s.fetchOffers(ctx, categoryIDs)

	if guestID != "" && s.currentGeneration(guestID) != generation {
		s.logger.InfoContext(ctx, "discarding superseded pricing quote",
			slog.String("guest_id", guestID),
		)
		return nil, ErrQuoteSuperseded
	}

	pricing := domain.ApplyComboOffers(items, offers)
	savings := domain.PotentialSavings(items, offers)

	result := &QuoteResult{
		UpdatedCartItems:    pricing.UpdatedCartItems,
		ComboOfferDiscounts: pricing.ComboOfferDiscounts,
		TotalComboDiscount:  pricing.TotalComboDiscount,
		AppliedOffers:       pricing.AppliedOffers,
		PotentialSavings:    savings,
	}

	if guestID != "" && len(pricing.AppliedOffers) > 0 {
		if err := s.producer.PublishComboApplied(ctx, guestID, &pricing); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish pricing.combo_applied event",
				slog.String("guest_id", guestID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "combo offer eligibility checked",
		slog.String("guest_id", guestID),
		slog.Int("categories", len(categoryIDs)),
		slog.Int("applied_offers", len(pricing.AppliedOffers)),
		slog.Int64("total_combo_discount", pricing.TotalComboDiscount),
	)

	return result, nil
}

// ProjectPotentialSavings computes only the near-miss projections for a cart
// snapshot. Used by the storefront to nudge shoppers without repricing.
func (s *PricingService) ProjectPotentialSavings(ctx context.Context, items []domain.LineItem) ([]domain.PotentialSaving, error) {
	categoryIDs := domain.CategoryIDs(items)
	if len(categoryIDs) == 0 {
		return []domain.PotentialSaving{}, nil
	}

	offers := s.fetchOffers(ctx, categoryIDs)
	return domain.PotentialSavings(items, offers), nil
}

// fetchOffers looks up the active offer for every category concurrently.
// Each lookup settles independently; a failure or a missing offer both
// produce an empty slot for that category.
func (s *PricingService) fetchOffers(ctx context.Context, categoryIDs []string) []domain.CategoryOffer {
	offers := make([]domain.CategoryOffer, len(categoryIDs))

	var wg sync.WaitGroup
	for i, id := range categoryIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()

			offer, err := s.catalog.ActiveOffer(ctx, id)
			if err != nil {
				s.logger.DebugContext(ctx, "combo offer lookup failed, pricing without offer",
					slog.String("category_id", id),
					slog.String("error", err.Error()),
				)
				offers[i] = domain.CategoryOffer{CategoryID: id}
				return
			}

			offers[i] = domain.CategoryOffer{CategoryID: id, Offer: offer}
		}(i, id)
	}
	wg.Wait()

	return offers
}

func (s *PricingService) nextGeneration(guestID string) uint64 {
	v, _ := s.generations.LoadOrStore(guestID, new(atomic.Uint64))
	return v.(*atomic.Uint64).Add(1)
}

func (s *PricingService) currentGeneration(guestID string) uint64 {
	v, ok := s.generations.Load(guestID)
	if !ok {
		return 0
	}
	return v.(*atomic.Uint64).Load()
}

func emptyQuoteResult(items []domain.LineItem) *QuoteResult {
	updated := make([]domain.LineItem, len(items))
	copy(updated, items)
	return &QuoteResult{
		UpdatedCartItems:    updated,
		ComboOfferDiscounts: []domain.CategoryDiscountSummary{},
		AppliedOffers:       []domain.AppliedOfferSummary{},
		PotentialSavings:    []domain.PotentialSaving{},
	}
}
