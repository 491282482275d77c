package promotion

import (
	"context"

	"github.com/google/uuid"

	"github.com/vendora/backend/internal/domain/promotion"
	"github.com/vendora/backend/internal/domain/shared"
)

// OrderHistory is the slice of the order context the eligibility engine
// needs: whether a user has purchased before.
type OrderHistory interface {
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// CouponService handles coupon management and eligibility checks
type CouponService struct {
	coupons promotion.CouponRepository
	usages  promotion.CouponUsageRepository
	orders  OrderHistory
}

// NewCouponService creates a new CouponService
func NewCouponService(coupons promotion.CouponRepository, usages promotion.CouponUsageRepository, orders OrderHistory) *CouponService {
	return &CouponService{
		coupons: coupons,
		usages:  usages,
		orders:  orders,
	}
}

// Create creates a coupon owned by the given vendor
func (s *CouponService) Create(ctx context.Context, vendorID uuid.UUID, req CreateCouponRequest) (*CouponResponse, error) {
	code := promotion.NormalizeCode(req.Code)
	exists, err := s.coupons.ExistsByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrAlreadyExists
	}

	coupon, err := promotion.NewCoupon(vendorID, req.Name, code, req.DiscountType, req.DiscountValue)
	if err != nil {
		return nil, err
	}
	coupon.Description = req.Description

	if req.MinimumAmount.IsPositive() {
		if err := coupon.SetMinimumAmount(req.MinimumAmount); err != nil {
			return nil, err
		}
	}
	if req.MaximumDiscountAmount.IsPositive() {
		if err := coupon.SetMaximumDiscountAmount(req.MaximumDiscountAmount); err != nil {
			return nil, err
		}
	}
	if err := coupon.SetUsageLimits(req.MaxUses, req.MaxUsesPerUser); err != nil {
		return nil, err
	}
	if req.NewUsersOnly {
		coupon.RestrictToNewUsers()
	}

	if err := s.coupons.Save(ctx, coupon); err != nil {
		return nil, err
	}

	resp := ToCouponResponse(coupon)
	return &resp, nil
}

// ListByVendor lists a vendor's coupons with pagination
func (s *CouponService) ListByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]CouponResponse, int64, error) {
	coupons, err := s.coupons.FindByVendor(ctx, vendorID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.coupons.CountByVendor(ctx, vendorID)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CouponResponse, len(coupons))
	for i := range coupons {
		responses[i] = ToCouponResponse(&coupons[i])
	}
	return responses, total, nil
}

// SetStatus toggles a coupon's active flag. Only the owning vendor or an
// admin may change it.
func (s *CouponService) SetStatus(ctx context.Context, actorID uuid.UUID, isAdmin bool, couponID uuid.UUID, active bool) (*CouponResponse, error) {
	coupon, err := s.coupons.FindByID(ctx, couponID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !coupon.OwnedBy(actorID) {
		return nil, shared.ErrForbidden
	}

	coupon.SetActive(active)
	if err := s.coupons.Save(ctx, coupon); err != nil {
		return nil, err
	}

	resp := ToCouponResponse(coupon)
	return &resp, nil
}

// Resolve looks up a coupon by code, case-insensitively.
func (s *CouponService) Resolve(ctx context.Context, code string) (*CouponResponse, error) {
	coupon, err := s.coupons.FindByCode(ctx, promotion.NormalizeCode(code))
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, promotion.ErrCouponNotFound
		}
		return nil, err
	}
	resp := ToCouponResponse(coupon)
	return &resp, nil
}

// Validate runs the full eligibility check for a coupon against a cart
// context and computes the discount. It has no side effects: usage is
// charged only at order promotion.
func (s *CouponService) Validate(ctx context.Context, userID uuid.UUID, req ValidateRequest) (*ValidateResult, error) {
	coupon, err := s.coupons.FindByCode(ctx, promotion.NormalizeCode(req.Code))
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, promotion.ErrCouponNotFound
		}
		return nil, err
	}
	if !coupon.IsActive {
		return nil, promotion.ErrCouponInactive
	}
	if coupon.MinimumAmount.IsPositive() && req.Amount.LessThan(coupon.MinimumAmount) {
		return nil, promotion.ErrBelowMinimum
	}

	if coupon.Restriction.NewUsersOnly {
		orderCount, err := s.orders.CountByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if orderCount > 0 {
			return nil, promotion.ErrNewUsersOnly
		}
	}

	if coupon.GlobalLimitReached() {
		return nil, promotion.ErrUsageExceeded
	}
	if max := coupon.Restriction.MaxUsesPerUser; max > 0 {
		used, err := s.usages.GetUsage(ctx, coupon.ID, userID)
		if err != nil {
			return nil, err
		}
		if used >= max {
			return nil, promotion.ErrUsageExceeded
		}
	}

	if err := s.checkVendorConflict(ctx, coupon, req.ProductID, req.Applied); err != nil {
		return nil, err
	}

	return &ValidateResult{
		Coupon:   coupon,
		Discount: coupon.Discount(req.Amount),
	}, nil
}

// checkVendorConflict enforces at most one coupon per vendor per checkout:
// applying a second coupon from the same vendor on a different line fails.
func (s *CouponService) checkVendorConflict(ctx context.Context, candidate *promotion.Coupon, productID uuid.UUID, applied []AppliedCouponContext) error {
	for _, held := range applied {
		if held.ProductID == productID && promotion.NormalizeCode(held.Code) == candidate.Code {
			continue // re-validating the same application
		}
		existing, err := s.coupons.FindByCode(ctx, promotion.NormalizeCode(held.Code))
		if err != nil {
			if err == shared.ErrNotFound {
				continue // stale client entry, ignored here, rejected at promotion
			}
			return err
		}
		if existing.VendorID == candidate.VendorID && held.ProductID != productID {
			return promotion.ErrVendorConflict
		}
	}
	return nil
}
