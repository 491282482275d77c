package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendora/backend/internal/domain/checkout"
	"github.com/vendora/backend/internal/domain/shared"
)

// Status represents the status of a confirmed order
type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is a valid order Status
func (s Status) IsValid() bool {
	switch s {
	case StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusConfirmed:
		return target == StatusShipped || target == StatusCancelled
	case StatusShipped:
		return target == StatusDelivered
	case StatusDelivered, StatusCancelled:
		return false // terminal
	}
	return false
}

// Item is a confirmed order line item
type Item struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;index"`
	ProductID uuid.UUID `gorm:"type:uuid"`
	VendorID  uuid.UUID `gorm:"type:uuid;index"`
	Variant   checkout.VariantSelection `gorm:"type:text"`
	Quantity  int
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2)"`
	Discount  decimal.Decimal `gorm:"type:decimal(12,2)"`
	CreatedAt time.Time
}

// TableName sets the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// CouponRedemption is the durable record of a coupon charged at promotion
type CouponRedemption struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;index"`
	CouponID       uuid.UUID `gorm:"type:uuid;index"`
	ProductID      uuid.UUID `gorm:"type:uuid"`
	Code           string
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2)"`
	CreatedAt      time.Time
}

// TableName sets the table name for GORM
func (CouponRedemption) TableName() string {
	return "order_coupon_redemptions"
}

// Order is the durable record a temporary order is promoted into once
// payment is verified. PaymentOrderID is unique, which makes promotion
// idempotent under callback retries.
type Order struct {
	shared.BaseEntity
	OrderNumber    string    `gorm:"uniqueIndex"`
	PaymentOrderID string    `gorm:"uniqueIndex"`
	PaymentID      string
	UserID         uuid.UUID `gorm:"type:uuid;index"`
	Items          []Item                   `gorm:"foreignKey:OrderID"`
	Coupons        []CouponRedemption       `gorm:"foreignKey:OrderID"`
	Address        checkout.ShippingAddress `gorm:"embedded;embeddedPrefix:address_"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2)"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status         Status
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
	CancelReason   string
}

// FromSnapshot builds a confirmed order from a promoted temporary order.
// Coupon IDs are resolved by the caller since the snapshot stores only codes.
func FromSnapshot(temp *checkout.TemporaryOrder, orderNumber, paymentID string, vendorByProduct map[uuid.UUID]uuid.UUID, couponIDByCode map[string]uuid.UUID) (*Order, error) {
	if !temp.HasItems() {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Cannot promote an order without items")
	}
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}

	base := shared.NewBaseEntity()
	o := &Order{
		BaseEntity:     base,
		OrderNumber:    orderNumber,
		PaymentOrderID: temp.PaymentOrderID,
		PaymentID:      paymentID,
		UserID:         temp.UserID,
		Address:        temp.Address,
		TotalAmount:    temp.TotalAmount,
		Status:         StatusConfirmed,
	}

	discountTotal := decimal.Zero
	for _, item := range temp.Items {
		o.Items = append(o.Items, Item{
			ID:        uuid.New(),
			OrderID:   base.ID,
			ProductID: item.ProductID,
			VendorID:  vendorByProduct[item.ProductID],
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			CreatedAt: base.CreatedAt,
		})
		discountTotal = discountTotal.Add(item.Discount)
	}
	for _, applied := range temp.AppliedCoupons {
		o.Coupons = append(o.Coupons, CouponRedemption{
			ID:             uuid.New(),
			OrderID:        base.ID,
			CouponID:       couponIDByCode[applied.Code],
			ProductID:      applied.ProductID,
			Code:           applied.Code,
			DiscountAmount: applied.DiscountAmount,
			CreatedAt:      base.CreatedAt,
		})
	}
	o.DiscountAmount = discountTotal

	return o, nil
}

// Ship transitions the order to SHIPPED
func (o *Order) Ship() error {
	if !o.Status.CanTransitionTo(StatusShipped) {
		return shared.ErrInvalidState
	}
	now := time.Now()
	o.Status = StatusShipped
	o.ShippedAt = &now
	o.Touch()
	return nil
}

// Deliver transitions the order to DELIVERED
func (o *Order) Deliver() error {
	if !o.Status.CanTransitionTo(StatusDelivered) {
		return shared.ErrInvalidState
	}
	now := time.Now()
	o.Status = StatusDelivered
	o.DeliveredAt = &now
	o.Touch()
	return nil
}

// Cancel transitions the order to CANCELLED with a reason
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return shared.ErrInvalidState
	}
	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.Touch()
	return nil
}

// OwnedBy reports whether the given user placed this order
func (o *Order) OwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}
