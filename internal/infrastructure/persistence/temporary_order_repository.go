package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendora/backend/internal/domain/checkout"
	"github.com/vendora/backend/internal/domain/shared"
)

// GormTemporaryOrderRepository implements checkout.TemporaryOrderRepository using GORM
type GormTemporaryOrderRepository struct {
	db *gorm.DB
}

// NewGormTemporaryOrderRepository creates a new GormTemporaryOrderRepository
func NewGormTemporaryOrderRepository(db *gorm.DB) *GormTemporaryOrderRepository {
	return &GormTemporaryOrderRepository{db: db}
}

// FindByID finds a temporary order with its items and applied coupons
func (r *GormTemporaryOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*checkout.TemporaryOrder, error) {
	var order checkout.TemporaryOrder
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Items").
		Preload("AppliedCoupons").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByPaymentOrderID finds a temporary order by the external payment order id
func (r *GormTemporaryOrderRepository) FindByPaymentOrderID(ctx context.Context, paymentOrderID string) (*checkout.TemporaryOrder, error) {
	var order checkout.TemporaryOrder
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Items").
		Preload("AppliedCoupons").
		First(&order, "payment_order_id = ?", paymentOrderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByUser lists a user's temporary orders, newest first
func (r *GormTemporaryOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]checkout.TemporaryOrder, error) {
	var orders []checkout.TemporaryOrder
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Items").
		Preload("AppliedCoupons").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// CountByUser counts a user's temporary orders
func (r *GormTemporaryOrderRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&checkout.TemporaryOrder{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// Save creates a temporary order with its items and applied coupons
func (r *GormTemporaryOrderRepository) Save(ctx context.Context, order *checkout.TemporaryOrder) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Create(order).Error
}

// Delete removes a temporary order and its children. Deleting a missing
// order is not an error: cancellation and promotion cleanup are idempotent.
func (r *GormTemporaryOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.deleteByIDs(dbFromContext(ctx, r.db).WithContext(ctx), []uuid.UUID{id})
}

// DeleteExpired purges orders whose expiry is before the cutoff and returns
// how many were removed
func (r *GormTemporaryOrderRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	var ids []uuid.UUID
	err := db.Model(&checkout.TemporaryOrder{}).
		Where("expires_at < ?", cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := r.deleteByIDs(db, ids); err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func (r *GormTemporaryOrderRepository) deleteByIDs(db *gorm.DB, ids []uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("temporary_order_id IN ?", ids).Delete(&checkout.TemporaryOrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("temporary_order_id IN ?", ids).Delete(&checkout.AppliedCoupon{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&checkout.TemporaryOrder{}).Error
	})
}
