package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendora/backend/internal/domain/promotion"
	"github.com/vendora/backend/internal/domain/shared"
)

// GormCouponRepository implements promotion.CouponRepository using GORM
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new GormCouponRepository
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// FindByID finds a coupon by its ID
func (r *GormCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*promotion.Coupon, error) {
	var coupon promotion.Coupon
	if err := dbFromContext(ctx, r.db).WithContext(ctx).First(&coupon, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

// FindByCode finds a coupon by its normalized code
func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*promotion.Coupon, error) {
	var coupon promotion.Coupon
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		First(&coupon, "code = ?", promotion.NormalizeCode(code)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

// FindByVendor finds all coupons owned by a vendor, newest first
func (r *GormCouponRepository) FindByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]promotion.Coupon, error) {
	var coupons []promotion.Coupon
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&coupons).Error
	if err != nil {
		return nil, err
	}
	return coupons, nil
}

// CountByVendor counts coupons owned by a vendor
func (r *GormCouponRepository) CountByVendor(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	var count int64
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&promotion.Coupon{}).
		Where("vendor_id = ?", vendorID).
		Count(&count).Error
	return count, err
}

// ExistsByCode checks whether a coupon with the given code exists
func (r *GormCouponRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&promotion.Coupon{}).
		Where("code = ?", promotion.NormalizeCode(code)).
		Count(&count).Error
	return count > 0, err
}

// Save creates or updates a coupon
func (r *GormCouponRepository) Save(ctx context.Context, coupon *promotion.Coupon) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(coupon).Error
}

// Delete removes a coupon
func (r *GormCouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Delete(&promotion.Coupon{}, "id = ?", id).Error
}

// IncrementTotalUses bumps the global redemption counter with a conditional
// update. max_uses = 0 means unlimited; otherwise the increment only applies
// while total_uses is below the cap. Zero rows affected means a concurrent
// redemption got there first.
func (r *GormCouponRepository) IncrementTotalUses(ctx context.Context, couponID uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&promotion.Coupon{}).
		Where("id = ? AND (max_uses = 0 OR total_uses < max_uses)", couponID).
		UpdateColumn("total_uses", gorm.Expr("total_uses + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return promotion.ErrUsageExceeded
	}
	return nil
}
