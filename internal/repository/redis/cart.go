package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/protyayrd/tweestbd-sub001/internal/domain"
	apperrors "github.com/protyayrd/tweestbd-sub001/pkg/errors"
)

const keyPrefix = "guest_cart:"

var errVersionMismatch = errors.New("cart version mismatch")

// GuestCartRepository implements repository.GuestCartRepository using Redis.
type GuestCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGuestCartRepository creates a new Redis-backed guest cart repository.
// Carts expire after ttl; every successful save refreshes the expiry.
func NewGuestCartRepository(client *redis.Client, ttl time.Duration) *GuestCartRepository {
	return &GuestCartRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a guest cart by guest ID.
func (r *GuestCartRepository) Get(ctx context.Context, guestID string) (*domain.GuestCart, error) {
	key := keyPrefix + guestID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("guest cart", guestID)
		}
		return nil, fmt.Errorf("redis get guest cart: %w", err)
	}

	var cart domain.GuestCart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal guest cart: %w", err)
	}

	return &cart, nil
}

// SaveIfVersion persists the cart only if the stored version still equals
// expectedVersion. A missing key counts as version zero. The check and write
// run under WATCH so a concurrent save aborts the transaction instead of
// being overwritten; both a version mismatch and an aborted transaction
// report (false, nil).
func (r *GuestCartRepository) SaveIfVersion(ctx context.Context, cart *domain.GuestCart, expectedVersion int) (bool, error) {
	key := keyPrefix + cart.GuestID

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == redis.Nil:
			if expectedVersion != 0 {
				return errVersionMismatch
			}
		case err != nil:
			return fmt.Errorf("redis get guest cart: %w", err)
		default:
			var stored domain.GuestCart
			if err := json.Unmarshal(data, &stored); err != nil {
				return fmt.Errorf("unmarshal guest cart: %w", err)
			}
			if stored.Version != expectedVersion {
				return errVersionMismatch
			}
		}

		cart.Version = expectedVersion + 1
		cart.ExpiresAt = time.Now().UTC().Add(r.ttl)

		payload, err := json.Marshal(cart)
		if err != nil {
			return fmt.Errorf("marshal guest cart: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errVersionMismatch), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("redis save guest cart: %w", err)
	}
}

// Delete removes a guest cart.
func (r *GuestCartRepository) Delete(ctx context.Context, guestID string) error {
	key := keyPrefix + guestID

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del guest cart: %w", err)
	}

	return nil
}
