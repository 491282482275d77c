package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogapp "github.com/vendora/backend/internal/application/catalog"
	"github.com/vendora/backend/internal/domain/shared"
	"github.com/vendora/backend/internal/interfaces/http/dto"
)

// ProductHandler handles catalog HTTP requests
type ProductHandler struct {
	BaseHandler
	products *catalogapp.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// CreateProductRequest is the vendor product creation payload
type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description string  `json:"description" binding:"max=2000"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" binding:"min=0"`
}

// UpdateProductRequest mutates a product; absent fields are left unchanged
type UpdateProductRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=255"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	Stock       *int     `json:"stock" binding:"omitempty,min=0"`
	IsActive    *bool    `json:"is_active"`
}

// ProductResponse represents a product on the wire
type ProductResponse struct {
	ID          uuid.UUID `json:"id"`
	VendorID    uuid.UUID `json:"vendor_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"is_active"`
}

func toProductResponse(p catalogapp.ProductResponse) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		VendorID:    p.VendorID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
		IsActive:    p.IsActive,
	}
}

// List godoc
// @Summary      Browse active products
// @Tags         products
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]ProductResponse}
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}
	req.Normalize()

	products, total, err := h.products.List(c.Request.Context(), shared.Filter{Page: req.Page, PageSize: req.PageSize})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, toProductResponse(p))
	}
	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}

// Get godoc
// @Summary      Get one product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.products.Get(c.Request.Context(), uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(*product))
}

// Create godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body CreateProductRequest true "Product details"
// @Success      201 {object} dto.Response{data=ProductResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	product, err := h.products.Create(c.Request.Context(), userID, catalogapp.CreateProductRequest{
		Name:        req.Name,
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price),
		Stock:       req.Stock,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toProductResponse(*product))
}

// Update godoc
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body UpdateProductRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=ProductResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	update := catalogapp.UpdateProductRequest{
		Name:        req.Name,
		Description: req.Description,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	}
	if req.Price != nil {
		update.Price = toDecimalPtr(*req.Price)
	}

	product, err := h.products.Update(c.Request.Context(), userID, uuid.MustParse(idReq.ID), update)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(*product))
}

// ListMine godoc
// @Summary      List the vendor's own products, including inactive ones
// @Tags         products
// @Produce      json
// @Success      200 {object} dto.Response{data=[]ProductResponse}
// @Security     BearerAuth
// @Router       /vendor/products [get]
func (h *ProductHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}
	req.Normalize()

	products, err := h.products.ListByVendor(c.Request.Context(), userID, shared.Filter{Page: req.Page, PageSize: req.PageSize})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, toProductResponse(p))
	}
	h.Success(c, responses)
}
