package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	orderapp "github.com/vendora/backend/internal/application/order"
	"github.com/vendora/backend/internal/domain/identity"
	"github.com/vendora/backend/internal/domain/order"
	"github.com/vendora/backend/internal/domain/shared"
	"github.com/vendora/backend/internal/interfaces/http/dto"
	"github.com/vendora/backend/internal/interfaces/http/middleware"
)

// OrderHandler handles confirmed order HTTP requests
type OrderHandler struct {
	BaseHandler
	orders *orderapp.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *orderapp.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// UpdateOrderStatusRequest drives the fulfillment state machine
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=SHIPPED DELIVERED CANCELLED"`
}

// OrderItemResponse represents a confirmed order line on the wire
type OrderItemResponse struct {
	ProductID uuid.UUID         `json:"product_id"`
	VendorID  uuid.UUID         `json:"vendor_id"`
	Variant   map[string]string `json:"variant,omitempty"`
	Quantity  int               `json:"quantity"`
	UnitPrice string            `json:"unit_price"`
	Discount  string            `json:"discount"`
}

// OrderCouponResponse represents a redeemed coupon on the wire
type OrderCouponResponse struct {
	CouponID       uuid.UUID `json:"coupon_id"`
	ProductID      uuid.UUID `json:"product_id"`
	Code           string    `json:"code"`
	DiscountAmount string    `json:"discount_amount"`
}

// OrderResponse represents a confirmed order on the wire
type OrderResponse struct {
	ID             uuid.UUID             `json:"id"`
	OrderNumber    string                `json:"order_number"`
	PaymentOrderID string                `json:"payment_order_id"`
	PaymentID      string                `json:"payment_id"`
	UserID         uuid.UUID             `json:"user_id"`
	Items          []OrderItemResponse   `json:"items"`
	Coupons        []OrderCouponResponse `json:"coupons,omitempty"`
	TotalAmount    string                `json:"total_amount"`
	DiscountAmount string                `json:"discount_amount"`
	Status         string                `json:"status"`
	CreatedAt      string                `json:"created_at"`
	ShippedAt      *string               `json:"shipped_at,omitempty"`
	DeliveredAt    *string               `json:"delivered_at,omitempty"`
	CancelledAt    *string               `json:"cancelled_at,omitempty"`
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(timeFormat)
	return &formatted
}

func toOrderResponse(o orderapp.OrderResponse) OrderResponse {
	resp := OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		PaymentOrderID: o.PaymentOrderID,
		PaymentID:      o.PaymentID,
		UserID:         o.UserID,
		TotalAmount:    o.TotalAmount.StringFixed(2),
		DiscountAmount: o.DiscountAmount.StringFixed(2),
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt.UTC().Format(timeFormat),
		ShippedAt:      formatTimePtr(o.ShippedAt),
		DeliveredAt:    formatTimePtr(o.DeliveredAt),
		CancelledAt:    formatTimePtr(o.CancelledAt),
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID: item.ProductID,
			VendorID:  item.VendorID,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Discount:  item.Discount.StringFixed(2),
		})
	}
	for _, c := range o.Coupons {
		resp.Coupons = append(resp.Coupons, OrderCouponResponse{
			CouponID:       c.CouponID,
			ProductID:      c.ProductID,
			Code:           c.Code,
			DiscountAmount: c.DiscountAmount.StringFixed(2),
		})
	}
	return resp
}

// Get godoc
// @Summary      Get one order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=OrderResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	isAdmin := middleware.GetJWTRole(c) == identity.RoleAdmin
	o, err := h.orders.Get(c.Request.Context(), userID, isAdmin, uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(*o))
}

// List godoc
// @Summary      List my orders
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]OrderResponse}
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
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

	orders, total, err := h.orders.ListByUser(c.Request.Context(), userID, shared.Filter{Page: req.Page, PageSize: req.PageSize})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toOrderResponses(orders), total, req.Page, req.PageSize)
}

// ListVendor godoc
// @Summary      List orders containing my products
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]OrderResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /vendor/orders [get]
func (h *OrderHandler) ListVendor(c *gin.Context) {
	vendorID, err := getUserID(c)
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

	orders, err := h.orders.ListByVendor(c.Request.Context(), vendorID, shared.Filter{Page: req.Page, PageSize: req.PageSize})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponses(orders))
}

// ListAll godoc
// @Summary      List every order
// @Tags         admin
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]OrderResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *OrderHandler) ListAll(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}
	req.Normalize()

	orders, err := h.orders.ListAll(c.Request.Context(), shared.Filter{Page: req.Page, PageSize: req.PageSize})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponses(orders))
}

// UpdateStatus godoc
// @Summary      Transition an order's fulfillment status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body UpdateOrderStatusRequest true "Target status"
// @Success      200 {object} dto.Response{data=OrderResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	isAdmin := middleware.GetJWTRole(c) == identity.RoleAdmin
	o, err := h.orders.UpdateStatus(c.Request.Context(), userID, isAdmin, uuid.MustParse(idReq.ID), order.Status(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(*o))
}

func toOrderResponses(orders []orderapp.OrderResponse) []OrderResponse {
	responses := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		responses = append(responses, toOrderResponse(o))
	}
	return responses
}
