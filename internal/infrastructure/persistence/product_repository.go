package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendora/backend/internal/domain/catalog"
	"github.com/vendora/backend/internal/domain/shared"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := dbFromContext(ctx, r.db).WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindActive lists active products, newest first
func (r *GormProductRepository) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// FindByVendor lists a vendor's products, including inactive ones
func (r *GormProductRepository) FindByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// CountActive counts active products
func (r *GormProductRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&catalog.Product{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(product).Error
}

// DecrementStock reduces stock with a conditional update so concurrent
// promotions cannot oversell: zero rows affected means the remaining stock
// no longer covers the quantity.
func (r *GormProductRepository) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInsufficientStock
	}
	return nil
}
