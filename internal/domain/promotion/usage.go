package promotion

import (
	"time"

	"github.com/google/uuid"
)

// CouponUsage is the per-user redemption ledger row for a coupon.
// At most one row exists per (CouponID, UserID) pair; the composite unique
// key is the serialization point for concurrent promotion attempts.
type CouponUsage struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CouponID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_coupon_usages_coupon_user"`
	UserID     uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_coupon_usages_coupon_user"`
	UsageCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewCouponUsage creates a fresh ledger row with a single redemption
func NewCouponUsage(couponID, userID uuid.UUID) *CouponUsage {
	now := time.Now()
	return &CouponUsage{
		ID:         uuid.New(),
		CouponID:   couponID,
		UserID:     userID,
		UsageCount: 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
