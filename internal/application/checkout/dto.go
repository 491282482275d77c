package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendora/backend/internal/domain/checkout"
)

// ItemRequest is one cart line in a checkout confirmation
type ItemRequest struct {
	ProductID uuid.UUID
	Variant   map[string]string
	Quantity  int
}

// CouponRequest names a coupon the shopper applied to a specific cart line
type CouponRequest struct {
	Code      string
	ProductID uuid.UUID
}

// AddressRequest carries the shipping address submitted at checkout
type AddressRequest struct {
	FullName   string
	Phone      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

func (a AddressRequest) toDomain() checkout.ShippingAddress {
	return checkout.ShippingAddress{
		FullName:   a.FullName,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// CreateRequest is the full cart snapshot submitted at checkout confirmation
type CreateRequest struct {
	Items   []ItemRequest
	Coupons []CouponRequest
	Address AddressRequest
}

// PromoteRequest is the verified-payment callback payload
type PromoteRequest struct {
	PaymentOrderID string
	PaymentID      string
	Signature      string
}

// ItemResponse represents a temporary order line in service responses
type ItemResponse struct {
	ProductID uuid.UUID
	Variant   map[string]string
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Subtotal  decimal.Decimal
}

// AppliedCouponResponse represents a coupon snapshot on a temporary order
type AppliedCouponResponse struct {
	ProductID      uuid.UUID
	Code           string
	DiscountAmount decimal.Decimal
}

// TempOrderResponse represents a temporary order in service responses
type TempOrderResponse struct {
	ID             uuid.UUID
	PaymentOrderID string
	UserID         uuid.UUID
	Items          []ItemResponse
	Coupons        []AppliedCouponResponse
	TotalAmount    decimal.Decimal
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// ToTempOrderResponse converts a domain temporary order to its response form
func ToTempOrderResponse(o *checkout.TemporaryOrder) *TempOrderResponse {
	resp := &TempOrderResponse{
		ID:             o.ID,
		PaymentOrderID: o.PaymentOrderID,
		UserID:         o.UserID,
		TotalAmount:    o.TotalAmount,
		CreatedAt:      o.CreatedAt,
		ExpiresAt:      o.ExpiresAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, ItemResponse{
			ProductID: item.ProductID,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			Subtotal:  item.Subtotal(),
		})
	}
	for _, applied := range o.AppliedCoupons {
		resp.Coupons = append(resp.Coupons, AppliedCouponResponse{
			ProductID:      applied.ProductID,
			Code:           applied.Code,
			DiscountAmount: applied.DiscountAmount,
		})
	}
	return resp
}
