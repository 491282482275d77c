package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	checkoutapp "github.com/vendora/backend/internal/application/checkout"
	"github.com/vendora/backend/internal/domain/identity"
	"github.com/vendora/backend/internal/domain/shared"
	"github.com/vendora/backend/internal/interfaces/http/dto"
	"github.com/vendora/backend/internal/interfaces/http/middleware"
)

// TempOrderHandler handles checkout confirmation HTTP requests
type TempOrderHandler struct {
	BaseHandler
	tempOrders *checkoutapp.TempOrderService
}

// NewTempOrderHandler creates a new temporary order handler
func NewTempOrderHandler(tempOrders *checkoutapp.TempOrderService) *TempOrderHandler {
	return &TempOrderHandler{tempOrders: tempOrders}
}

// CheckoutItemRequest is one cart line in the checkout payload
type CheckoutItemRequest struct {
	ProductID string            `json:"product_id" binding:"required,uuid"`
	Variant   map[string]string `json:"variant"`
	Quantity  int               `json:"quantity" binding:"required,gt=0"`
}

// CheckoutCouponRequest names a coupon applied to a specific cart line
type CheckoutCouponRequest struct {
	Code      string `json:"code" binding:"required,max=64"`
	ProductID string `json:"product_id" binding:"required,uuid"`
}

// CheckoutAddressRequest is the shipping address submitted at checkout
type CheckoutAddressRequest struct {
	FullName   string `json:"full_name" binding:"required,max=255"`
	Phone      string `json:"phone" binding:"required,max=32"`
	Line1      string `json:"line1" binding:"required,max=255"`
	Line2      string `json:"line2" binding:"max=255"`
	City       string `json:"city" binding:"required,max=128"`
	State      string `json:"state" binding:"required,max=128"`
	PostalCode string `json:"postal_code" binding:"required,max=16"`
	Country    string `json:"country" binding:"required,max=64"`
}

// CheckoutRequest is the full cart snapshot submitted at checkout confirmation
type CheckoutRequest struct {
	Items   []CheckoutItemRequest   `json:"items" binding:"required,min=1,dive"`
	Coupons []CheckoutCouponRequest `json:"coupons" binding:"omitempty,dive"`
	Address CheckoutAddressRequest  `json:"address" binding:"required"`
}

// TempOrderItemResponse represents a staged order line on the wire
type TempOrderItemResponse struct {
	ProductID uuid.UUID         `json:"product_id"`
	Variant   map[string]string `json:"variant,omitempty"`
	Quantity  int               `json:"quantity"`
	UnitPrice string            `json:"unit_price"`
	Discount  string            `json:"discount"`
	Subtotal  string            `json:"subtotal"`
}

// TempOrderCouponResponse represents a coupon snapshot on the wire
type TempOrderCouponResponse struct {
	ProductID      uuid.UUID `json:"product_id"`
	Code           string    `json:"code"`
	DiscountAmount string    `json:"discount_amount"`
}

// TempOrderResponse represents a staged order on the wire
type TempOrderResponse struct {
	ID             uuid.UUID                 `json:"id"`
	PaymentOrderID string                    `json:"payment_order_id"`
	Items          []TempOrderItemResponse   `json:"items"`
	Coupons        []TempOrderCouponResponse `json:"coupons,omitempty"`
	TotalAmount    string                    `json:"total_amount"`
	CreatedAt      string                    `json:"created_at"`
	ExpiresAt      string                    `json:"expires_at"`
}

func toTempOrderResponse(o checkoutapp.TempOrderResponse) TempOrderResponse {
	resp := TempOrderResponse{
		ID:             o.ID,
		PaymentOrderID: o.PaymentOrderID,
		TotalAmount:    o.TotalAmount.StringFixed(2),
		CreatedAt:      o.CreatedAt.UTC().Format(timeFormat),
		ExpiresAt:      o.ExpiresAt.UTC().Format(timeFormat),
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, TempOrderItemResponse{
			ProductID: item.ProductID,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Discount:  item.Discount.StringFixed(2),
			Subtotal:  item.Subtotal.StringFixed(2),
		})
	}
	for _, applied := range o.Coupons {
		resp.Coupons = append(resp.Coupons, TempOrderCouponResponse{
			ProductID:      applied.ProductID,
			Code:           applied.Code,
			DiscountAmount: applied.DiscountAmount.StringFixed(2),
		})
	}
	return resp
}

func (r CheckoutRequest) toService() checkoutapp.CreateRequest {
	req := checkoutapp.CreateRequest{
		Address: checkoutapp.AddressRequest{
			FullName:   r.Address.FullName,
			Phone:      r.Address.Phone,
			Line1:      r.Address.Line1,
			Line2:      r.Address.Line2,
			City:       r.Address.City,
			State:      r.Address.State,
			PostalCode: r.Address.PostalCode,
			Country:    r.Address.Country,
		},
	}
	for _, item := range r.Items {
		req.Items = append(req.Items, checkoutapp.ItemRequest{
			ProductID: uuid.MustParse(item.ProductID),
			Variant:   item.Variant,
			Quantity:  item.Quantity,
		})
	}
	for _, coupon := range r.Coupons {
		req.Coupons = append(req.Coupons, checkoutapp.CouponRequest{
			Code:      coupon.Code,
			ProductID: uuid.MustParse(coupon.ProductID),
		})
	}
	return req
}

// Create godoc
// @Summary      Stage an order for payment
// @Description  Validates the cart snapshot, prices it, applies coupons and
// @Description  opens a payment order. The staged order expires after 24 hours.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body CheckoutRequest true "Cart snapshot"
// @Success      201 {object} dto.Response{data=TempOrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /checkout [post]
func (h *TempOrderHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	staged, err := h.tempOrders.Create(c.Request.Context(), userID, req.toService())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTempOrderResponse(*staged))
}

// List godoc
// @Summary      List my staged orders
// @Tags         checkout
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]TempOrderResponse}
// @Security     BearerAuth
// @Router       /checkout [get]
func (h *TempOrderHandler) List(c *gin.Context) {
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

	staged, total, err := h.tempOrders.List(c.Request.Context(), userID, shared.Filter{Page: req.Page, PageSize: req.PageSize})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]TempOrderResponse, 0, len(staged))
	for _, o := range staged {
		responses = append(responses, toTempOrderResponse(o))
	}
	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}

// Get godoc
// @Summary      Get one staged order
// @Tags         checkout
// @Produce      json
// @Param        id path string true "Staged order ID"
// @Success      200 {object} dto.Response{data=TempOrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      410 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /checkout/{id} [get]
func (h *TempOrderHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid staged order ID")
		return
	}

	staged, err := h.tempOrders.Get(c.Request.Context(), userID, uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTempOrderResponse(*staged))
}

// Cancel godoc
// @Summary      Abandon a staged order
// @Description  Deletes the staged order and releases its payment order. No
// @Description  stock or coupon usage is touched; nothing was charged yet.
// @Tags         checkout
// @Produce      json
// @Param        id path string true "Staged order ID"
// @Success      204 "No Content"
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /checkout/{id} [delete]
func (h *TempOrderHandler) Cancel(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid staged order ID")
		return
	}

	isAdmin := middleware.GetJWTRole(c) == identity.RoleAdmin
	if err := h.tempOrders.Cancel(c.Request.Context(), userID, isAdmin, uuid.MustParse(req.ID)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
