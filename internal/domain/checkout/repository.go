package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vendora/backend/internal/domain/shared"
)

// TemporaryOrderRepository defines the interface for temporary order persistence
type TemporaryOrderRepository interface {
	// FindByID finds a temporary order by its internal ID, items and
	// applied coupons loaded
	FindByID(ctx context.Context, id uuid.UUID) (*TemporaryOrder, error)

	// FindByPaymentOrderID finds a temporary order by the external payment
	// order identifier
	FindByPaymentOrderID(ctx context.Context, paymentOrderID string) (*TemporaryOrder, error)

	// FindByUser lists a user's temporary orders, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]TemporaryOrder, error)

	// CountByUser counts a user's temporary orders
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Save creates a temporary order with its items and applied coupons
	Save(ctx context.Context, order *TemporaryOrder) error

	// Delete removes a temporary order and its children. Deleting a missing
	// order is not an error: cancellation must be idempotent.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteExpired purges orders whose ExpiresAt is before the cutoff and
	// returns the number of orders removed. Called by the background sweeper.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
