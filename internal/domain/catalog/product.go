package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendora/backend/internal/domain/shared"
)

// Product represents a vendor-owned catalog product
type Product struct {
	shared.BaseEntity
	VendorID    uuid.UUID `gorm:"type:uuid;index"`
	Name        string
	Description string
	Price       decimal.Decimal `gorm:"type:decimal(12,2)"`
	Stock       int
	IsActive    bool
}

// NewProduct creates a new product owned by the given vendor
func NewProduct(vendorID uuid.UUID, name string, price decimal.Decimal, stock int) (*Product, error) {
	if vendorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}

	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		VendorID:   vendorID,
		Name:       name,
		Price:      price,
		Stock:      stock,
		IsActive:   true,
	}, nil
}

// UpdatePrice sets a new price
func (p *Product) UpdatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	p.Price = price
	p.Touch()
	return nil
}

// UpdateStock sets the absolute stock level
func (p *Product) UpdateStock(stock int) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	p.Stock = stock
	p.Touch()
	return nil
}

// SetActive toggles catalog visibility
func (p *Product) SetActive(active bool) {
	p.IsActive = active
	p.Touch()
}

// OwnedBy reports whether the given vendor owns this product
func (p *Product) OwnedBy(vendorID uuid.UUID) bool {
	return p.VendorID == vendorID
}

// Available reports whether the product can satisfy the requested quantity
func (p *Product) Available(quantity int) bool {
	return p.IsActive && p.Stock >= quantity
}
