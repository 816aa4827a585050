package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/protyayrd/tweestbd-sub001/internal/domain"
	"github.com/protyayrd/tweestbd-sub001/internal/repository"
	apperrors "github.com/protyayrd/tweestbd-sub001/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single line item.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct line items in a cart.
	MaxItemsPerCart = 50
	// MaxPriceCents is the maximum unit price in cents (100,000.00) per item.
	MaxPriceCents = 100_000_00
)

// LineItemInput holds one line item in a cart replace request.
type LineItemInput struct {
	ID                  string `json:"id"`
	ProductID           string `json:"product_id" validate:"required"`
	CategoryID          string `json:"category_id"`
	CategoryName        string `json:"category_name"`
	Size                string `json:"size"`
	Color               string `json:"color"`
	Quantity            int    `json:"quantity" validate:"required,gte=1"`
	UnitPrice           int64  `json:"unit_price" validate:"gte=0"`
	DiscountedUnitPrice int64  `json:"discounted_unit_price" validate:"gte=0"`
}

// ReplaceCartInput holds the full desired cart state. Guest carts are
// replaced wholesale; the storefront owns the editing UX.
type ReplaceCartInput struct {
	Items    []LineItemInput `json:"items" validate:"dive"`
	Currency string          `json:"currency" validate:"omitempty,len=3"`
}

// CartService implements the business logic for guest cart operations.
type CartService struct {
	repo    repository.GuestCartRepository
	logger  *slog.Logger
	cartTTL time.Duration
}

// NewCartService creates a new guest cart service.
func NewCartService(repo repository.GuestCartRepository, logger *slog.Logger, cartTTL time.Duration) *CartService {
	return &CartService{
		repo:    repo,
		logger:  logger,
		cartTTL: cartTTL,
	}
}

// GetCart retrieves the cart for a guest. If no cart exists, returns an
// empty cart so the storefront never special-cases first visits.
func (s *CartService) GetCart(ctx context.Context, guestID string) (*domain.GuestCart, error) {
	if guestID == "" {
		return nil, apperrors.InvalidInput("guest id is required")
	}

	cart, err := s.repo.Get(ctx, guestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.newEmptyCart(guestID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// ReplaceCart replaces the guest's cart with the given state. Uses
// optimistic locking to prevent lost updates on concurrent modifications.
func (s *CartService) ReplaceCart(ctx context.Context, guestID string, input ReplaceCartInput) (*domain.GuestCart, error) {
	if guestID == "" {
		return nil, apperrors.InvalidInput("guest id is required")
	}
	if len(input.Items) > MaxItemsPerCart {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
	}

	items := make([]domain.LineItem, 0, len(input.Items))
	for i, in := range input.Items {
		if in.ProductID == "" {
			return nil, apperrors.InvalidInput(fmt.Sprintf("item %d: product id is required", i))
		}
		if in.Quantity < 1 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("item %d: quantity must be at least 1", i))
		}
		if in.Quantity > MaxQuantityPerItem {
			return nil, apperrors.InvalidInput(fmt.Sprintf("item %d: quantity must not exceed %d", i, MaxQuantityPerItem))
		}
		if in.UnitPrice < 0 || in.DiscountedUnitPrice < 0 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("item %d: price must not be negative", i))
		}
		if in.UnitPrice > MaxPriceCents {
			return nil, apperrors.InvalidInput(fmt.Sprintf("item %d: price must not exceed %d cents", i, MaxPriceCents))
		}

		items = append(items, domain.LineItem{
			ID:                  in.ID,
			ProductID:           in.ProductID,
			CategoryID:          in.CategoryID,
			CategoryName:        in.CategoryName,
			Size:                in.Size,
			Color:               in.Color,
			Quantity:            in.Quantity,
			UnitPrice:           in.UnitPrice,
			DiscountedUnitPrice: in.DiscountedUnitPrice,
		})
	}

	cart, err := s.repo.Get(ctx, guestID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("get cart for replace: %w", err)
		}
		cart = s.newEmptyCart(guestID)
	}

	expectedVersion := cart.Version

	now := time.Now().UTC()
	cart.Items = items
	if input.Currency != "" {
		cart.Currency = input.Currency
	}
	cart.UpdatedAt = now
	cart.ExpiresAt = now.Add(s.cartTTL)

	ok, err := s.repo.SaveIfVersion(ctx, cart, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	if !ok {
		return nil, apperrors.Conflict("cart was modified concurrently, please retry")
	}

	s.logger.InfoContext(ctx, "guest cart replaced",
		slog.String("guest_id", guestID),
		slog.Int("item_count", cart.ItemCount()),
	)

	return cart, nil
}

// ClearCart removes the guest's cart entirely.
func (s *CartService) ClearCart(ctx context.Context, guestID string) error {
	if guestID == "" {
		return apperrors.InvalidInput("guest id is required")
	}

	if err := s.repo.Delete(ctx, guestID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	s.logger.InfoContext(ctx, "guest cart cleared",
		slog.String("guest_id", guestID),
	)

	return nil
}

func (s *CartService) newEmptyCart(guestID string) *domain.GuestCart {
	now := time.Now().UTC()
	return &domain.GuestCart{
		GuestID:   guestID,
		Items:     []domain.LineItem{},
		Currency:  "BDT",
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.cartTTL),
	}
}
