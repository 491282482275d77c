package persistence

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendora/backend/internal/domain/order"
	"github.com/vendora/backend/internal/domain/shared"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its items and coupon redemptions
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Items").
		Preload("Coupons").
		First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByPaymentOrderID finds an order by the external payment order id
func (r *GormOrderRepository) FindByPaymentOrderID(ctx context.Context, paymentOrderID string) (*order.Order, error) {
	var o order.Order
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Items").
		Preload("Coupons").
		First(&o, "payment_order_id = ?", paymentOrderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByUser lists a user's orders, newest first
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Items").
		Preload("Coupons").
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

// FindByVendor lists orders containing at least one item sold by the vendor
func (r *GormOrderRepository) FindByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Items").
		Preload("Coupons").
		Where("id IN (?)", dbFromContext(ctx, r.db).
			Model(&order.Item{}).
			Select("order_id").
			Where("vendor_id = ?", vendorID)).
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAll lists all orders, newest first
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Items").
		Preload("Coupons").
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// CountByUser counts a user's orders
func (r *GormOrderRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&order.Order{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// Save creates or updates an order with its children
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(o).Error
}

// NextOrderNumber generates a human-facing order number: date plus a random
// suffix. The column's unique constraint backstops the negligible collision
// chance.
func (r *GormOrderRepository) NextOrderNumber(ctx context.Context) (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	return fmt.Sprintf("VND-%s-%s", time.Now().UTC().Format("20060102"), hex.EncodeToString(suffix)), nil
}
