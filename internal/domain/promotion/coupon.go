package promotion

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendora/backend/internal/domain/shared"
)

// DiscountType represents how a coupon's discount value is interpreted
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// IsValid checks if the discount type is supported
func (t DiscountType) IsValid() bool {
	return t == DiscountTypePercentage || t == DiscountTypeFixed
}

// Promotion-specific domain errors. These carry the stable codes the HTTP
// layer maps to status codes, so eligibility failures are never anonymous.
var (
	ErrCouponNotFound = shared.NewDomainError("COUPON_NOT_FOUND", "Coupon code does not exist")
	ErrCouponInactive = shared.NewDomainError("COUPON_INACTIVE", "Coupon is not active")
	ErrBelowMinimum   = shared.NewDomainError("BELOW_MINIMUM", "Purchase amount is below the coupon minimum")
	ErrNewUsersOnly   = shared.NewDomainError("NEW_USERS_ONLY", "Coupon is restricted to first-time purchasers")
	ErrUsageExceeded  = shared.NewDomainError("USAGE_EXCEEDED", "Coupon usage limit reached")
	ErrVendorConflict = shared.NewDomainError("VENDOR_CONFLICT", "A coupon from this vendor is already applied")
)

// UserRestriction holds per-user eligibility rules for a coupon
type UserRestriction struct {
	NewUsersOnly   bool
	MaxUsesPerUser int // 0 means unlimited
}

// Coupon is the aggregate root for a vendor-issued discount code.
// The code is globally unique and stored uppercase; lookups normalize the
// submitted code with NormalizeCode before matching.
type Coupon struct {
	shared.BaseEntity
	Name                  string
	Code                  string `gorm:"uniqueIndex"`
	Description           string
	DiscountType          DiscountType
	DiscountValue         decimal.Decimal `gorm:"type:decimal(12,2)"`
	MinimumAmount         decimal.Decimal `gorm:"type:decimal(12,2)"` // zero means no minimum
	MaximumDiscountAmount decimal.Decimal `gorm:"type:decimal(12,2)"` // zero means no cap (percentage type only)
	VendorID              uuid.UUID `gorm:"type:uuid;index"`
	Restriction           UserRestriction `gorm:"embedded;embeddedPrefix:restriction_"`
	TotalUses             int
	MaxUses               int // 0 means unlimited
	IsActive              bool
}

// NormalizeCode uppercases and trims a submitted coupon code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewCoupon creates a new coupon owned by the given vendor
func NewCoupon(vendorID uuid.UUID, name, code string, discountType DiscountType, discountValue decimal.Decimal) (*Coupon, error) {
	if vendorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_COUPON_NAME", "Coupon name cannot be empty")
	}
	normalized := NormalizeCode(code)
	if len(normalized) < 3 || len(normalized) > 30 {
		return nil, shared.NewDomainError("INVALID_COUPON_CODE", "Coupon code must be 3-30 characters")
	}
	if !discountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Discount type must be percentage or fixed")
	}
	if discountValue.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Discount value must be positive")
	}
	if discountType == DiscountTypePercentage && discountValue.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Percentage discount cannot exceed 100")
	}

	return &Coupon{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          name,
		Code:          normalized,
		DiscountType:  discountType,
		DiscountValue: discountValue,
		VendorID:      vendorID,
		IsActive:      true,
	}, nil
}

// SetMinimumAmount sets the minimum purchase amount required to apply the coupon
func (c *Coupon) SetMinimumAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_MINIMUM_AMOUNT", "Minimum amount cannot be negative")
	}
	c.MinimumAmount = amount
	c.Touch()
	return nil
}

// SetMaximumDiscountAmount caps the computed discount for percentage coupons
func (c *Coupon) SetMaximumDiscountAmount(amount decimal.Decimal) error {
	if c.DiscountType != DiscountTypePercentage {
		return shared.NewDomainError("INVALID_DISCOUNT_CAP", "Discount cap applies to percentage coupons only")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT_CAP", "Discount cap cannot be negative")
	}
	c.MaximumDiscountAmount = amount
	c.Touch()
	return nil
}

// SetUsageLimits sets the global and per-user redemption caps (0 = unlimited)
func (c *Coupon) SetUsageLimits(maxUses, maxUsesPerUser int) error {
	if maxUses < 0 || maxUsesPerUser < 0 {
		return shared.NewDomainError("INVALID_USAGE_LIMIT", "Usage limits cannot be negative")
	}
	c.MaxUses = maxUses
	c.Restriction.MaxUsesPerUser = maxUsesPerUser
	c.Touch()
	return nil
}

// RestrictToNewUsers marks the coupon as redeemable by first-time purchasers only
func (c *Coupon) RestrictToNewUsers() {
	c.Restriction.NewUsersOnly = true
	c.Touch()
}

// SetActive toggles the active flag
func (c *Coupon) SetActive(active bool) {
	c.IsActive = active
	c.Touch()
}

// OwnedBy reports whether the given vendor owns this coupon
func (c *Coupon) OwnedBy(vendorID uuid.UUID) bool {
	return c.VendorID == vendorID
}

// GlobalLimitReached reports whether the global redemption cap is exhausted
func (c *Coupon) GlobalLimitReached() bool {
	return c.MaxUses > 0 && c.TotalUses >= c.MaxUses
}

// Discount computes the discount for the given purchase amount.
// The result is always >= 0 and <= amount: percentage discounts are clamped
// to MaximumDiscountAmount when set, fixed discounts to the amount itself.
func (c *Coupon) Discount(amount decimal.Decimal) decimal.Decimal {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountTypePercentage:
		discount = amount.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
		if c.MaximumDiscountAmount.IsPositive() && discount.GreaterThan(c.MaximumDiscountAmount) {
			discount = c.MaximumDiscountAmount
		}
	case DiscountTypeFixed:
		discount = decimal.Min(c.DiscountValue, amount)
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(amount) {
		return amount
	}
	return discount.Round(2)
}
