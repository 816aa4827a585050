package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protyayrd/tweestbd-sub001/internal/domain"
	apperrors "github.com/protyayrd/tweestbd-sub001/pkg/errors"
)

func setupTestRedis(t *testing.T) (*GuestCartRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := NewGuestCartRepository(client, 24*time.Hour)
	return repo, mr
}

func sampleGuestCart() *domain.GuestCart {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.GuestCart{
		GuestID: "guest-001",
		Items: []domain.LineItem{
			{
				ID:           "item-1",
				ProductID:    "prod-1",
				CategoryID:   "cat-tees",
				CategoryName: "T-Shirts",
				Size:         "M",
				Color:        "black",
				Quantity:     2,
				UnitPrice:    100000,
			},
		},
		Currency:  "BDT",
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ---------------------------------------------------------------------------
// Get
// ---------------------------------------------------------------------------

func TestGuestCartRepository_Get_Success(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleGuestCart()
	cart.Version = 3
	data, err := json.Marshal(cart)
	require.NoError(t, err)

	require.NoError(t, mr.Set("guest_cart:"+cart.GuestID, string(data)))

	got, err := repo.Get(context.Background(), cart.GuestID)
	require.NoError(t, err)
	assert.Equal(t, cart.GuestID, got.GuestID)
	assert.Equal(t, cart.Currency, got.Currency)
	assert.Equal(t, 3, got.Version)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "prod-1", got.Items[0].ProductID)
	assert.Equal(t, "cat-tees", got.Items[0].CategoryID)
	assert.Equal(t, int64(100000), got.Items[0].UnitPrice)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestGuestCartRepository_Get_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t)

	got, err := repo.Get(context.Background(), "nonexistent-guest")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGuestCartRepository_Get_InvalidJSON(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, mr.Set("guest_cart:guest-bad", "{{not-valid-json"))

	got, err := repo.Get(context.Background(), "guest-bad")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal guest cart")
}

// ---------------------------------------------------------------------------
// SaveIfVersion
// ---------------------------------------------------------------------------

func TestGuestCartRepository_SaveIfVersion_NewCart(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleGuestCart()
	saved, err := repo.SaveIfVersion(context.Background(), cart, 0)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 1, cart.Version)

	assert.True(t, mr.Exists("guest_cart:"+cart.GuestID))
	assert.Greater(t, mr.TTL("guest_cart:"+cart.GuestID), time.Duration(0))

	got, err := repo.Get(context.Background(), cart.GuestID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
}

func TestGuestCartRepository_SaveIfVersion_SequentialSaves(t *testing.T) {
	repo, _ := setupTestRedis(t)

	cart := sampleGuestCart()
	saved, err := repo.SaveIfVersion(context.Background(), cart, 0)
	require.NoError(t, err)
	require.True(t, saved)

	cart.Items[0].Quantity = 3
	saved, err = repo.SaveIfVersion(context.Background(), cart, 1)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 2, cart.Version)

	got, err := repo.Get(context.Background(), cart.GuestID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, 3, got.Items[0].Quantity)
}

func TestGuestCartRepository_SaveIfVersion_StaleVersion(t *testing.T) {
	repo, _ := setupTestRedis(t)

	cart := sampleGuestCart()
	saved, err := repo.SaveIfVersion(context.Background(), cart, 0)
	require.NoError(t, err)
	require.True(t, saved)

	// A second writer holding the old snapshot loses.
	stale := sampleGuestCart()
	stale.Items[0].Quantity = 99
	saved, err = repo.SaveIfVersion(context.Background(), stale, 0)
	require.NoError(t, err)
	assert.False(t, saved)

	got, err := repo.Get(context.Background(), cart.GuestID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestGuestCartRepository_SaveIfVersion_MissingKeyExpectsNonZero(t *testing.T) {
	repo, _ := setupTestRedis(t)

	cart := sampleGuestCart()
	saved, err := repo.SaveIfVersion(context.Background(), cart, 4)
	require.NoError(t, err)
	assert.False(t, saved)
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestGuestCartRepository_Delete_Success(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleGuestCart()
	saved, err := repo.SaveIfVersion(context.Background(), cart, 0)
	require.NoError(t, err)
	require.True(t, saved)

	err = repo.Delete(context.Background(), cart.GuestID)
	require.NoError(t, err)
	assert.False(t, mr.Exists("guest_cart:"+cart.GuestID))
}

func TestGuestCartRepository_Delete_MissingKey(t *testing.T) {
	repo, _ := setupTestRedis(t)

	// Deleting a cart that never existed is not an error.
	err := repo.Delete(context.Background(), "nonexistent-guest")
	assert.NoError(t, err)
}
