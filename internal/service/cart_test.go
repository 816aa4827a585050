package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/protyayrd/tweestbd-sub001/internal/domain"
	apperrors "github.com/protyayrd/tweestbd-sub001/pkg/errors"
)

// --- Mock Repository ---

type mockGuestCartRepository struct {
	mock.Mock
}

func (m *mockGuestCartRepository) Get(ctx context.Context, guestID string) (*domain.GuestCart, error) {
	args := m.Called(ctx, guestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GuestCart), args.Error(1)
}

func (m *mockGuestCartRepository) SaveIfVersion(ctx context.Context, cart *domain.GuestCart, expectedVersion int) (bool, error) {
	args := m.Called(ctx, cart, expectedVersion)
	return args.Bool(0), args.Error(1)
}

func (m *mockGuestCartRepository) Delete(ctx context.Context, guestID string) error {
	args := m.Called(ctx, guestID)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestCartService(repo *mockGuestCartRepository) *CartService {
	return NewCartService(repo, newTestLogger(), 7*24*time.Hour)
}

func storedCart(guestID string) *domain.GuestCart {
	now := time.Now().UTC()
	return &domain.GuestCart{
		GuestID: guestID,
		Items: []domain.LineItem{
			{
				ProductID:  "prod-1",
				CategoryID: "cat-tees",
				Size:       "M",
				Color:      "black",
				Quantity:   2,
				UnitPrice:  100000,
			},
		},
		Currency:  "BDT",
		Version:   3,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(7 * 24 * time.Hour),
	}
}

func validReplaceInput() ReplaceCartInput {
	return ReplaceCartInput{
		Items: []LineItemInput{
			{
				ProductID:  "prod-1",
				CategoryID: "cat-tees",
				Size:       "L",
				Color:      "white",
				Quantity:   3,
				UnitPrice:  100000,
			},
		},
		Currency: "BDT",
	}
}

// ---------------------------------------------------------------------------
// GetCart
// ---------------------------------------------------------------------------

func TestCartService_GetCart_Existing(t *testing.T) {
	repo := new(mockGuestCartRepository)
	svc := newTestCartService(repo)

	repo.On("Get", mock.Anything, "guest-1").Return(storedCart("guest-1"), nil)

	cart, err := svc.GetCart(context.Background(), "guest-1")
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Version)
	assert.Len(t, cart.Items, 1)
	repo.AssertExpectations(t)
}

func TestCartService_GetCart_MissingReturnsEmpty(t *testing.T) {
	repo := new(mockGuestCartRepository)
	svc := newTestCartService(repo)

	repo.On("Get", mock.Anything, "guest-new").
		Return(nil, apperrors.NotFound("guest cart", "guest-new"))

	cart, err := svc.GetCart(context.Background(), "guest-new")
	require.NoError(t, err)
	assert.Equal(t, "guest-new", cart.GuestID)
	assert.Equal(t, 0, cart.Version)
	assert.NotNil(t, cart.Items)
	assert.Empty(t, cart.Items)
}

func TestCartService_GetCart_EmptyGuestID(t *testing.T) {
	repo := new(mockGuestCartRepository)
	svc := newTestCartService(repo)

	cart, err := svc.GetCart(context.Background(), "")
	assert.Nil(t, cart)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Get")
}

func TestCartService_GetCart_StoreError(t *testing.T) {
	repo := new(mockGuestCartRepository)
	svc := newTestCartService(repo)

	repo.On("Get", mock.Anything, "guest-1").Return(nil, errors.New("connection refused"))

	cart, err := svc.GetCart(context.Background(), "guest-1")
	assert.Nil(t, cart)
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// ReplaceCart
// ---------------------------------------------------------------------------

func TestCartService_ReplaceCart_Success(t *testing.T) {
	repo := new(mockGuestCartRepository)
	svc := newTestCartService(repo)

	existing := storedCart("guest-1")
	repo.On("Get", mock.Anything, "guest-1").Return(existing, nil)
	repo.On("SaveIfVersion", mock.Anything, mock.MatchedBy(func(c *domain.GuestCart) bool {
		return c.GuestID == "guest-1" &&
			len(c.Items) == 1 &&
			c.Items[0].Quantity == 3 &&
			c.Items[0].Size == "L"
	}), 3).Return(true, nil)

	cart, err := svc.ReplaceCart(context.Background(), "guest-1", validReplaceInput())
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	repo.AssertExpectations(t)
}

func TestCartService_ReplaceCart_NewGuest(t *testing.T) {
	repo := new(mockGuestCartRepository)
	svc := newTestCartService(repo)

	repo.On("Get", mock.Anything, "guest-new").
		Return(nil, apperrors.NotFound("guest cart", "guest-new"))
	repo.On("SaveIfVersion", mock.Anything, mock.Anything, 0).Return(true, nil)

	cart, err := svc.ReplaceCart(context.Background(), "guest-new", validReplaceInput())
	require.NoError(t, err)
	assert.Equal(t, "guest-new", cart.GuestID)
	repo.AssertExpectations(t)
}

func TestCartService_ReplaceCart_ConcurrentModification(t *testing.T) {
	repo := new(mockGuestCartRepository)
	svc := newTestCartService(repo)

	repo.On("Get", mock.Anything, "guest-1").Return(storedCart("guest-1"), nil)
	repo.On("SaveIfVersion", mock.Anything, mock.Anything, 3).Return(false, nil)

	cart, err := svc.ReplaceCart(context.Background(), "guest-1", validReplaceInput())
	assert.Nil(t, cart)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCartService_ReplaceCart_Validation(t *testing.T) {
	repo := new(mockGuestCartRepository)
	svc := newTestCartService(repo)

	cases := []struct {
		name  string
		input ReplaceCartInput
	}{
		{"missing product id", ReplaceCartInput{Items: []LineItemInput{{Quantity: 1, UnitPrice: 100}}, Currency: "BDT"}},
		{"zero quantity", ReplaceCartInput{Items: []LineItemInput{{ProductID: "p", Quantity: 0, UnitPrice: 100}}, Currency: "BDT"}},
		{"excessive quantity", ReplaceCartInput{Items: []LineItemInput{{ProductID: "p", Quantity: MaxQuantityPerItem + 1, UnitPrice: 100}}, Currency: "BDT"}},
		{"negative price", ReplaceCartInput{Items: []LineItemInput{{ProductID: "p", Quantity: 1, UnitPrice: -5}}, Currency: "BDT"}},
		{"excessive price", ReplaceCartInput{Items: []LineItemInput{{ProductID: "p", Quantity: 1, UnitPrice: MaxPriceCents + 1}}, Currency: "BDT"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cart, err := svc.ReplaceCart(context.Background(), "guest-1", tc.input)
			assert.Nil(t, cart)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}

	repo.AssertNotCalled(t, "SaveIfVersion")
}

func TestCartService_ReplaceCart_TooManyItems(t *testing.T) {
	repo := new(mockGuestCartRepository)
	svc := newTestCartService(repo)

	items := make([]LineItemInput, MaxItemsPerCart+1)
	for i := range items {
		items[i] = LineItemInput{ProductID: "p", Quantity: 1, UnitPrice: 100}
	}

	cart, err := svc.ReplaceCart(context.Background(), "guest-1", ReplaceCartInput{Items: items, Currency: "BDT"})
	assert.Nil(t, cart)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// ---------------------------------------------------------------------------
// ClearCart
// ---------------------------------------------------------------------------

func TestCartService_ClearCart_Success(t *testing.T) {
	repo := new(mockGuestCartRepository)
	svc := newTestCartService(repo)

	repo.On("Delete", mock.Anything, "guest-1").Return(nil)

	err := svc.ClearCart(context.Background(), "guest-1")
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCartService_ClearCart_EmptyGuestID(t *testing.T) {
	repo := new(mockGuestCartRepository)
	svc := newTestCartService(repo)

	err := svc.ClearCart(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Delete")
}
