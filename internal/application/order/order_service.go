package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendora/backend/internal/domain/order"
	"github.com/vendora/backend/internal/domain/shared"
)

// ItemResponse represents a confirmed order line in service responses
type ItemResponse struct {
	ProductID uuid.UUID
	VendorID  uuid.UUID
	Variant   map[string]string
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
}

// CouponResponse represents a redeemed coupon on a confirmed order
type CouponResponse struct {
	CouponID       uuid.UUID
	ProductID      uuid.UUID
	Code           string
	DiscountAmount decimal.Decimal
}

// OrderResponse represents a confirmed order in service responses
type OrderResponse struct {
	ID             uuid.UUID
	OrderNumber    string
	PaymentOrderID string
	PaymentID      string
	UserID         uuid.UUID
	Items          []ItemResponse
	Coupons        []CouponResponse
	TotalAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	Status         order.Status
	CreatedAt      time.Time
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
}

// ToOrderResponse converts a domain order to its response form
func ToOrderResponse(o *order.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		PaymentOrderID: o.PaymentOrderID,
		PaymentID:      o.PaymentID,
		UserID:         o.UserID,
		TotalAmount:    o.TotalAmount,
		DiscountAmount: o.DiscountAmount,
		Status:         o.Status,
		CreatedAt:      o.CreatedAt,
		ShippedAt:      o.ShippedAt,
		DeliveredAt:    o.DeliveredAt,
		CancelledAt:    o.CancelledAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, ItemResponse{
			ProductID: item.ProductID,
			VendorID:  item.VendorID,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
		})
	}
	for _, c := range o.Coupons {
		resp.Coupons = append(resp.Coupons, CouponResponse{
			CouponID:       c.CouponID,
			ProductID:      c.ProductID,
			Code:           c.Code,
			DiscountAmount: c.DiscountAmount,
		})
	}
	return resp
}

// Service handles confirmed order reads and fulfillment transitions
type Service struct {
	orders order.Repository
}

// NewService creates a new order service
func NewService(orders order.Repository) *Service {
	return &Service{orders: orders}
}

// Get returns one order. Customers see their own; admins see any.
func (s *Service) Get(ctx context.Context, actorID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !o.OwnedBy(actorID) {
		return nil, shared.ErrForbidden
	}
	return ToOrderResponse(o), nil
}

// ListByUser returns the caller's order history, newest first
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]OrderResponse, int64, error) {
	orders, err := s.orders.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orders.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return toResponses(orders), total, nil
}

// ListByVendor returns orders containing the vendor's items
func (s *Service) ListByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]OrderResponse, error) {
	orders, err := s.orders.FindByVendor(ctx, vendorID, filter)
	if err != nil {
		return nil, err
	}
	return toResponses(orders), nil
}

// ListAll returns every order, admin surface only
func (s *Service) ListAll(ctx context.Context, filter shared.Filter) ([]OrderResponse, error) {
	orders, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toResponses(orders), nil
}

// UpdateStatus drives the fulfillment state machine. Vendors with items on
// the order and admins may transition it.
func (s *Service) UpdateStatus(ctx context.Context, actorID uuid.UUID, isAdmin bool, orderID uuid.UUID, target order.Status) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !hasVendorItems(o, actorID) {
		return nil, shared.ErrForbidden
	}

	switch target {
	case order.StatusShipped:
		err = o.Ship()
	case order.StatusDelivered:
		err = o.Deliver()
	case order.StatusCancelled:
		err = o.Cancel("cancelled by " + actorRole(isAdmin))
	default:
		err = shared.NewDomainError("INVALID_STATUS", "Unknown target status")
	}
	if err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	return ToOrderResponse(o), nil
}

func hasVendorItems(o *order.Order, vendorID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.VendorID == vendorID {
			return true
		}
	}
	return false
}

func actorRole(isAdmin bool) string {
	if isAdmin {
		return "admin"
	}
	return "vendor"
}

func toResponses(orders []order.Order) []OrderResponse {
	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, *ToOrderResponse(&orders[i]))
	}
	return responses
}
