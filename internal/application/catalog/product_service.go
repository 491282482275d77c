package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendora/backend/internal/domain/catalog"
	"github.com/vendora/backend/internal/domain/shared"
)

// CreateProductRequest creates a vendor-owned product
type CreateProductRequest struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

// UpdateProductRequest mutates an existing product. Nil fields are left
// unchanged.
type UpdateProductRequest struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	IsActive    *bool
}

// ProductResponse represents a product in service responses
type ProductResponse struct {
	ID          uuid.UUID
	VendorID    uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	IsActive    bool
}

// ToProductResponse converts a domain product to its response form
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		VendorID:    p.VendorID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
	}
}

// ProductService handles catalog browsing and vendor product management
type ProductService struct {
	products catalog.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(products catalog.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// Create adds a product to the vendor's catalog
func (s *ProductService) Create(ctx context.Context, vendorID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(vendorID, req.Name, req.Price, req.Stock)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description
	if err := s.products.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Update mutates a product. Only the owning vendor may change it.
func (s *ProductService) Update(ctx context.Context, vendorID uuid.UUID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.OwnedBy(vendorID) {
		return nil, shared.ErrForbidden
	}

	if req.Name != nil {
		product.Name = *req.Name
		product.Touch()
	}
	if req.Description != nil {
		product.Description = *req.Description
		product.Touch()
	}
	if req.Price != nil {
		if err := product.UpdatePrice(*req.Price); err != nil {
			return nil, err
		}
	}
	if req.Stock != nil {
		if err := product.UpdateStock(*req.Stock); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		product.SetActive(*req.IsActive)
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Get returns one product
func (s *ProductService) Get(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns active products for catalog browsing
func (s *ProductService) List(ctx context.Context, filter shared.Filter) ([]ProductResponse, int64, error) {
	products, err := s.products.FindActive(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.products.CountActive(ctx)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i]))
	}
	return responses, total, nil
}

// ListByVendor returns a vendor's own products, including inactive ones
func (s *ProductService) ListByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]ProductResponse, error) {
	products, err := s.products.FindByVendor(ctx, vendorID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i]))
	}
	return responses, nil
}
