package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/vendora/backend/internal/domain/shared"
)

// Repository defines the interface for confirmed order persistence
type Repository interface {
	// FindByID finds an order by ID with items and coupon redemptions loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByPaymentOrderID finds an order by the external payment order id.
	// Used to make promotion idempotent under callback retries.
	FindByPaymentOrderID(ctx context.Context, paymentOrderID string) (*Order, error)

	// FindByUser lists a user's orders, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindByVendor lists orders containing at least one item sold by the vendor
	FindByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindAll lists all orders (admin surface)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// CountByUser counts a user's orders; zero identifies a first-time purchaser
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Save creates or updates an order with its children
	Save(ctx context.Context, order *Order) error

	// NextOrderNumber generates a unique human-facing order number
	NextOrderNumber(ctx context.Context) (string, error)
}
