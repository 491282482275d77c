package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/vendora/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindActive lists active products for catalog browsing
	FindActive(ctx context.Context, filter shared.Filter) ([]Product, error)

	// FindByVendor lists a vendor's products, including inactive ones
	FindByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]Product, error)

	// CountActive counts active products
	CountActive(ctx context.Context) (int64, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// DecrementStock atomically reduces stock by quantity while enough stock
	// remains. Returns ErrInsufficientStock when the conditional update
	// matches no row, so a promotion races stock changes safely.
	DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error
}
