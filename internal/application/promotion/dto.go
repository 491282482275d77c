package promotion

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendora/backend/internal/domain/promotion"
)

// CreateCouponRequest contains input for creating a coupon
type CreateCouponRequest struct {
	Name                  string
	Code                  string
	Description           string
	DiscountType          promotion.DiscountType
	DiscountValue         decimal.Decimal
	MinimumAmount         decimal.Decimal
	MaximumDiscountAmount decimal.Decimal
	MaxUses               int
	MaxUsesPerUser        int
	NewUsersOnly          bool
}

// AppliedCouponContext describes a coupon the shopper already holds in the
// current checkout, used for the one-coupon-per-vendor rule
type AppliedCouponContext struct {
	Code      string
	ProductID uuid.UUID
}

// ValidateRequest contains the cart context for an eligibility check
type ValidateRequest struct {
	Code      string
	Amount    decimal.Decimal
	ProductID uuid.UUID
	Applied   []AppliedCouponContext
}

// ValidateResult is the outcome of a successful eligibility check
type ValidateResult struct {
	Coupon   *promotion.Coupon
	Discount decimal.Decimal
}

// CouponResponse represents a coupon in service responses
type CouponResponse struct {
	ID                    uuid.UUID
	Name                  string
	Code                  string
	Description           string
	DiscountType          promotion.DiscountType
	DiscountValue         decimal.Decimal
	MinimumAmount         decimal.Decimal
	MaximumDiscountAmount decimal.Decimal
	VendorID              uuid.UUID
	MaxUses               int
	MaxUsesPerUser        int
	NewUsersOnly          bool
	TotalUses             int
	IsActive              bool
	CreatedAt             time.Time
}

// ToCouponResponse maps a coupon aggregate to its response form
func ToCouponResponse(c *promotion.Coupon) CouponResponse {
	return CouponResponse{
		ID:                    c.ID,
		Name:                  c.Name,
		Code:                  c.Code,
		Description:           c.Description,
		DiscountType:          c.DiscountType,
		DiscountValue:         c.DiscountValue,
		MinimumAmount:         c.MinimumAmount,
		MaximumDiscountAmount: c.MaximumDiscountAmount,
		VendorID:              c.VendorID,
		MaxUses:               c.MaxUses,
		MaxUsesPerUser:        c.Restriction.MaxUsesPerUser,
		NewUsersOnly:          c.Restriction.NewUsersOnly,
		TotalUses:             c.TotalUses,
		IsActive:              c.IsActive,
		CreatedAt:             c.CreatedAt,
	}
}
