package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	promotionapp "github.com/vendora/backend/internal/application/promotion"
	"github.com/vendora/backend/internal/domain/identity"
	"github.com/vendora/backend/internal/domain/promotion"
	"github.com/vendora/backend/internal/domain/shared"
	"github.com/vendora/backend/internal/interfaces/http/dto"
	"github.com/vendora/backend/internal/interfaces/http/middleware"
)

// CouponHandler handles coupon management and eligibility HTTP requests
type CouponHandler struct {
	BaseHandler
	coupons *promotionapp.CouponService
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(coupons *promotionapp.CouponService) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

// CreateCouponRequest is the vendor coupon creation payload
type CreateCouponRequest struct {
	Name                  string  `json:"name" binding:"required,max=255"`
	Code                  string  `json:"code" binding:"required,min=3,max=30"`
	Description           string  `json:"description" binding:"max=2000"`
	DiscountType          string  `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue         float64 `json:"discount_value" binding:"required,gt=0"`
	MinimumAmount         float64 `json:"minimum_amount" binding:"min=0"`
	MaximumDiscountAmount float64 `json:"maximum_discount_amount" binding:"min=0"`
	MaxUses               int     `json:"max_uses" binding:"min=0"`
	MaxUsesPerUser        int     `json:"max_uses_per_user" binding:"min=0"`
	NewUsersOnly          bool    `json:"new_users_only"`
}

// SetCouponStatusRequest toggles a coupon's active flag
type SetCouponStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// ApplyCouponRequest checks a coupon against a cart line
type ApplyCouponRequest struct {
	Code      string              `json:"code" binding:"required"`
	ProductID string              `json:"product_id" binding:"required,uuid"`
	Amount    float64             `json:"amount" binding:"required,gt=0"`
	Applied   []AppliedCouponBody `json:"applied" binding:"dive"`
}

// AppliedCouponBody is a coupon already held in the checkout context
type AppliedCouponBody struct {
	Code      string `json:"code" binding:"required"`
	ProductID string `json:"product_id" binding:"required,uuid"`
}

// RemoveCouponRequest detaches a held coupon from the checkout context
type RemoveCouponRequest struct {
	Code      string              `json:"code" binding:"required"`
	ProductID string              `json:"product_id" binding:"required,uuid"`
	Applied   []AppliedCouponBody `json:"applied" binding:"dive"`
}

// RemoveCouponResponse echoes the remaining checkout context
type RemoveCouponResponse struct {
	Code    string              `json:"code"`
	Applied []AppliedCouponBody `json:"applied"`
}

// CouponResponse represents a coupon on the wire
type CouponResponse struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	Code                  string    `json:"code"`
	Description           string    `json:"description"`
	DiscountType          string    `json:"discount_type"`
	DiscountValue         string    `json:"discount_value"`
	MinimumAmount         string    `json:"minimum_amount"`
	MaximumDiscountAmount string    `json:"maximum_discount_amount"`
	VendorID              uuid.UUID `json:"vendor_id"`
	MaxUses               int       `json:"max_uses"`
	MaxUsesPerUser        int       `json:"max_uses_per_user"`
	NewUsersOnly          bool      `json:"new_users_only"`
	TotalUses             int       `json:"total_uses"`
	IsActive              bool      `json:"is_active"`
	CreatedAt             time.Time `json:"created_at"`
}

// ApplyCouponResponse is the outcome of an eligibility check
type ApplyCouponResponse struct {
	Code     string `json:"code"`
	VendorID string `json:"vendor_id"`
	Discount string `json:"discount"`
}

func toCouponResponse(c promotionapp.CouponResponse) CouponResponse {
	return CouponResponse{
		ID:                    c.ID,
		Name:                  c.Name,
		Code:                  c.Code,
		Description:           c.Description,
		DiscountType:          string(c.DiscountType),
		DiscountValue:         c.DiscountValue.StringFixed(2),
		MinimumAmount:         c.MinimumAmount.StringFixed(2),
		MaximumDiscountAmount: c.MaximumDiscountAmount.StringFixed(2),
		VendorID:              c.VendorID,
		MaxUses:               c.MaxUses,
		MaxUsesPerUser:        c.MaxUsesPerUser,
		NewUsersOnly:          c.NewUsersOnly,
		TotalUses:             c.TotalUses,
		IsActive:              c.IsActive,
		CreatedAt:             c.CreatedAt,
	}
}

// Create godoc
// @Summary      Create a coupon
// @Tags         coupons
// @Accept       json
// @Produce      json
// @Param        request body CreateCouponRequest true "Coupon details"
// @Success      201 {object} dto.Response{data=CouponResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /coupons [post]
func (h *CouponHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	coupon, err := h.coupons.Create(c.Request.Context(), userID, promotionapp.CreateCouponRequest{
		Name:                  req.Name,
		Code:                  req.Code,
		Description:           req.Description,
		DiscountType:          promotion.DiscountType(req.DiscountType),
		DiscountValue:         decimal.NewFromFloat(req.DiscountValue),
		MinimumAmount:         decimal.NewFromFloat(req.MinimumAmount),
		MaximumDiscountAmount: decimal.NewFromFloat(req.MaximumDiscountAmount),
		MaxUses:               req.MaxUses,
		MaxUsesPerUser:        req.MaxUsesPerUser,
		NewUsersOnly:          req.NewUsersOnly,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toCouponResponse(*coupon))
}

// ListMine godoc
// @Summary      List the vendor's coupons
// @Tags         coupons
// @Produce      json
// @Success      200 {object} dto.Response{data=[]CouponResponse}
// @Security     BearerAuth
// @Router       /vendor/coupons [get]
func (h *CouponHandler) ListMine(c *gin.Context) {
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

	coupons, total, err := h.coupons.ListByVendor(c.Request.Context(), userID, shared.Filter{Page: req.Page, PageSize: req.PageSize})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]CouponResponse, 0, len(coupons))
	for _, cp := range coupons {
		responses = append(responses, toCouponResponse(cp))
	}
	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}

// SetStatus godoc
// @Summary      Activate or deactivate a coupon
// @Tags         coupons
// @Accept       json
// @Produce      json
// @Param        id path string true "Coupon ID"
// @Param        request body SetCouponStatusRequest true "Status"
// @Success      200 {object} dto.Response{data=CouponResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /coupons/{id}/status [patch]
func (h *CouponHandler) SetStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid coupon ID")
		return
	}

	var req SetCouponStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	isAdmin := middleware.GetJWTRole(c) == identity.RoleAdmin
	coupon, err := h.coupons.SetStatus(c.Request.Context(), userID, isAdmin, uuid.MustParse(idReq.ID), *req.IsActive)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCouponResponse(*coupon))
}

// Apply godoc
// @Summary      Check coupon eligibility for a cart line
// @Description  Runs the full eligibility chain and returns the discount the
// @Description  server would grant. The same chain runs again at checkout
// @Description  and at promotion, so this answer is advisory.
// @Tags         coupons
// @Accept       json
// @Produce      json
// @Param        request body ApplyCouponRequest true "Cart line context"
// @Success      200 {object} dto.Response{data=ApplyCouponResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /coupons/apply [post]
func (h *CouponHandler) Apply(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	applied := make([]promotionapp.AppliedCouponContext, 0, len(req.Applied))
	for _, a := range req.Applied {
		applied = append(applied, promotionapp.AppliedCouponContext{
			Code:      a.Code,
			ProductID: uuid.MustParse(a.ProductID),
		})
	}

	result, err := h.coupons.Validate(c.Request.Context(), userID, promotionapp.ValidateRequest{
		Code:      req.Code,
		Amount:    decimal.NewFromFloat(req.Amount),
		ProductID: uuid.MustParse(req.ProductID),
		Applied:   applied,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ApplyCouponResponse{
		Code:     result.Coupon.Code,
		VendorID: result.Coupon.VendorID.String(),
		Discount: result.Discount.StringFixed(2),
	})
}

// Remove godoc
// @Summary      Detach an applied coupon from the checkout context
// @Description  The checkout context is client-held until staging, so removal
// @Description  resolves the code and returns the context without it. The
// @Description  authoritative recomputation happens when the cart is staged.
// @Tags         coupons
// @Accept       json
// @Produce      json
// @Param        request body RemoveCouponRequest true "Coupon to detach"
// @Success      200 {object} dto.Response{data=RemoveCouponResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /coupons/remove [post]
func (h *CouponHandler) Remove(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req RemoveCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	coupon, err := h.coupons.Resolve(c.Request.Context(), req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	remaining := make([]AppliedCouponBody, 0, len(req.Applied))
	for _, a := range req.Applied {
		if a.ProductID == req.ProductID && promotion.NormalizeCode(a.Code) == coupon.Code {
			continue
		}
		remaining = append(remaining, a)
	}

	h.Success(c, RemoveCouponResponse{
		Code:    coupon.Code,
		Applied: remaining,
	})
}
