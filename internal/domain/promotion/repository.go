package promotion

import (
	"context"

	"github.com/google/uuid"

	"github.com/vendora/backend/internal/domain/shared"
)

// CouponRepository defines the interface for coupon persistence
type CouponRepository interface {
	// FindByID finds a coupon by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Coupon, error)

	// FindByCode finds a coupon by its normalized (uppercase) code
	FindByCode(ctx context.Context, code string) (*Coupon, error)

	// FindByVendor finds all coupons owned by a vendor
	FindByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]Coupon, error)

	// CountByVendor counts coupons owned by a vendor
	CountByVendor(ctx context.Context, vendorID uuid.UUID) (int64, error)

	// ExistsByCode checks whether a coupon with the given code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Save creates or updates a coupon
	Save(ctx context.Context, coupon *Coupon) error

	// Delete removes a coupon
	Delete(ctx context.Context, id uuid.UUID) error

	// IncrementTotalUses atomically bumps TotalUses while the global cap
	// allows it. Returns ErrUsageExceeded when the cap is already reached,
	// so the caller can fail the promotion instead of double-charging.
	IncrementTotalUses(ctx context.Context, couponID uuid.UUID) error
}

// CouponUsageRepository defines the interface for the per-user redemption ledger
type CouponUsageRepository interface {
	// GetUsage returns the user's redemption count for a coupon, 0 when no
	// ledger row exists
	GetUsage(ctx context.Context, couponID, userID uuid.UUID) (int, error)

	// RecordUsage upserts the (coupon, user) ledger row, incrementing
	// UsageCount. maxUsesPerUser > 0 caps the increment; when the cap is
	// already reached the call returns ErrUsageExceeded and leaves the row
	// untouched. Safe under concurrent promotion attempts for the same pair:
	// the composite unique key serializes the writers.
	RecordUsage(ctx context.Context, couponID, userID uuid.UUID, maxUsesPerUser int) error

	// SumUsage returns the total redemptions recorded for a coupon across
	// all users, used to reconcile against Coupon.TotalUses
	SumUsage(ctx context.Context, couponID uuid.UUID) (int64, error)
}
