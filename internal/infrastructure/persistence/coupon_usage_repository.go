package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vendora/backend/internal/domain/promotion"
)

// GormCouponUsageRepository implements promotion.CouponUsageRepository using GORM
type GormCouponUsageRepository struct {
	db *gorm.DB
}

// NewGormCouponUsageRepository creates a new GormCouponUsageRepository
func NewGormCouponUsageRepository(db *gorm.DB) *GormCouponUsageRepository {
	return &GormCouponUsageRepository{db: db}
}

// GetUsage returns the user's redemption count for a coupon, 0 when no
// ledger row exists
func (r *GormCouponUsageRepository) GetUsage(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	var usage promotion.CouponUsage
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		First(&usage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return usage.UsageCount, nil
}

// RecordUsage charges one redemption against the (coupon, user) ledger row.
// The insert and the increment are a single upsert on the composite unique
// key, so two concurrent promotions for the same pair serialize on the row:
// the first write inserts or increments, the second increments again only if
// the per-user cap still allows it. Zero rows affected means the cap was
// already reached and nothing changed.
func (r *GormCouponUsageRepository) RecordUsage(ctx context.Context, couponID, userID uuid.UUID, maxUsesPerUser int) error {
	usage := promotion.NewCouponUsage(couponID, userID)

	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "coupon_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"updated_at":  time.Now(),
		}),
	}
	if maxUsesPerUser > 0 {
		onConflict.Where = clause.Where{Exprs: []clause.Expression{
			clause.Lt{Column: clause.Column{Name: "usage_count"}, Value: maxUsesPerUser},
		}}
	}

	result := dbFromContext(ctx, r.db).WithContext(ctx).Clauses(onConflict).Create(usage)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return promotion.ErrUsageExceeded
	}
	return nil
}

// SumUsage returns the total redemptions recorded for a coupon across all
// users. Used by reconciliation to check it equals the coupon's total_uses.
func (r *GormCouponUsageRepository) SumUsage(ctx context.Context, couponID uuid.UUID) (int64, error) {
	var total int64
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&promotion.CouponUsage{}).
		Where("coupon_id = ?", couponID).
		Select("COALESCE(SUM(usage_count), 0)").
		Scan(&total).Error
	return total, err
}
