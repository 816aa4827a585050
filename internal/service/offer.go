package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/protyayrd/tweestbd-sub001/internal/domain"
	"github.com/protyayrd/tweestbd-sub001/internal/event"
	"github.com/protyayrd/tweestbd-sub001/internal/repository"
	apperrors "github.com/protyayrd/tweestbd-sub001/pkg/errors"
)

// MaxComboPriceCents is the maximum combo price (1,000,000.00) allowed per
// offer.
const MaxComboPriceCents = 1_000_000_00

// CreateOfferInput holds the parameters for creating a combo offer.
type CreateOfferInput struct {
	CategoryID      string `json:"category_id" validate:"required"`
	Name            string `json:"name" validate:"required"`
	MinimumQuantity int    `json:"minimum_quantity" validate:"required,gte=1"`
	ComboPrice      int64  `json:"combo_price" validate:"gte=0"`
	IsActive        bool   `json:"is_active"`
}

// UpdateOfferInput holds the parameters for updating a combo offer. Nil
// fields are left unchanged.
type UpdateOfferInput struct {
	Name            *string `json:"name"`
	MinimumQuantity *int    `json:"minimum_quantity"`
	ComboPrice      *int64  `json:"combo_price"`
	IsActive        *bool   `json:"is_active"`
}

// OfferService implements the business logic for combo offer management.
type OfferService struct {
	repo     repository.OfferRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewOfferService creates a new combo offer service.
func NewOfferService(repo repository.OfferRepository, producer *event.Producer, logger *slog.Logger) *OfferService {
	return &OfferService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateOffer validates and persists a new combo offer.
func (s *OfferService) CreateOffer(ctx context.Context, input CreateOfferInput) (*domain.ComboOffer, error) {
	if input.CategoryID == "" {
		return nil, apperrors.InvalidInput("category id is required")
	}
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.MinimumQuantity < 1 {
		return nil, apperrors.InvalidInput("minimum quantity must be at least 1")
	}
	if input.ComboPrice < 0 {
		return nil, apperrors.InvalidInput("combo price must not be negative")
	}
	if input.ComboPrice > MaxComboPriceCents {
		return nil, apperrors.InvalidInput(fmt.Sprintf("combo price must not exceed %d cents", MaxComboPriceCents))
	}

	now := time.Now().UTC()
	offer := &domain.ComboOffer{
		ID:              uuid.New().String(),
		CategoryID:      input.CategoryID,
		Name:            input.Name,
		MinimumQuantity: input.MinimumQuantity,
		ComboPrice:      input.ComboPrice,
		IsActive:        input.IsActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}

	if err := s.producer.PublishComboOfferCreated(ctx, offer); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish combo_offer.created event",
			slog.String("offer_id", offer.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "combo offer created",
		slog.String("offer_id", offer.ID),
		slog.String("category_id", offer.CategoryID),
		slog.Int("minimum_quantity", offer.MinimumQuantity),
		slog.Int64("combo_price", offer.ComboPrice),
	)

	return offer, nil
}

// GetOffer retrieves a combo offer by ID.
func (s *OfferService) GetOffer(ctx context.Context, id string) (*domain.ComboOffer, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("offer id is required")
	}
	offer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get offer: %w", err)
	}
	return offer, nil
}

// GetActiveOfferForCategory retrieves the active offer for a category. This
// is the public storefront lookup.
func (s *OfferService) GetActiveOfferForCategory(ctx context.Context, categoryID string) (*domain.ComboOffer, error) {
	if categoryID == "" {
		return nil, apperrors.InvalidInput("category id is required")
	}
	offer, err := s.repo.GetActiveByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("get active offer for category: %w", err)
	}
	return offer, nil
}

// ListOffers returns a filtered, paginated list of offers plus the total
// count.
func (s *OfferService) ListOffers(ctx context.Context, filter repository.OfferFilter) ([]domain.ComboOffer, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 20
	}

	offers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list offers: %w", err)
	}
	if offers == nil {
		offers = []domain.ComboOffer{}
	}
	return offers, total, nil
}

// UpdateOffer applies a partial update to an existing offer.
func (s *OfferService) UpdateOffer(ctx context.Context, id string, input UpdateOfferInput) (*domain.ComboOffer, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("offer id is required")
	}

	offer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get offer for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("name must not be empty")
		}
		offer.Name = *input.Name
	}
	if input.MinimumQuantity != nil {
		if *input.MinimumQuantity < 1 {
			return nil, apperrors.InvalidInput("minimum quantity must be at least 1")
		}
		offer.MinimumQuantity = *input.MinimumQuantity
	}
	if input.ComboPrice != nil {
		if *input.ComboPrice < 0 {
			return nil, apperrors.InvalidInput("combo price must not be negative")
		}
		if *input.ComboPrice > MaxComboPriceCents {
			return nil, apperrors.InvalidInput(fmt.Sprintf("combo price must not exceed %d cents", MaxComboPriceCents))
		}
		offer.ComboPrice = *input.ComboPrice
	}
	if input.IsActive != nil {
		offer.IsActive = *input.IsActive
	}

	offer.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, offer); err != nil {
		return nil, fmt.Errorf("update offer: %w", err)
	}

	if err := s.producer.PublishComboOfferUpdated(ctx, offer); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish combo_offer.updated event",
			slog.String("offer_id", offer.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "combo offer updated",
		slog.String("offer_id", offer.ID),
		slog.Bool("is_active", offer.IsActive),
	)

	return offer, nil
}

// DeactivateOffer marks an offer inactive. Inactive offers never price.
func (s *OfferService) DeactivateOffer(ctx context.Context, id string) (*domain.ComboOffer, error) {
	inactive := false
	return s.UpdateOffer(ctx, id, UpdateOfferInput{IsActive: &inactive})
}

// ActivateOffer marks an offer active.
func (s *OfferService) ActivateOffer(ctx context.Context, id string) (*domain.ComboOffer, error) {
	active := true
	return s.UpdateOffer(ctx, id, UpdateOfferInput{IsActive: &active})
}
