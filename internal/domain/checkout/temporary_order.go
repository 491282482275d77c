package checkout

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendora/backend/internal/domain/shared"
)

// TTL is how long a temporary order stays promotable after creation
const TTL = 24 * time.Hour

// Checkout-specific domain errors
var (
	ErrOrderExpired  = shared.NewDomainError("ORDER_EXPIRED", "Temporary order has expired")
	ErrStaleSnapshot = shared.NewDomainError("STALE_SNAPSHOT", "Cart snapshot no longer matches current stock or coupon state")
)

// VariantSelection is the buyer's chosen option values for a product,
// e.g. {"size": "M", "color": "black"}. Stored as a JSON column.
type VariantSelection map[string]string

// Value implements driver.Valuer for database serialization
func (v VariantSelection) Value() (driver.Value, error) {
	if len(v) == 0 {
		return nil, nil
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner for database deserialization
func (v *VariantSelection) Scan(src interface{}) error {
	if src == nil {
		*v = nil
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	default:
		return fmt.Errorf("unsupported variant selection type %T", src)
	}
}

// ShippingAddress is an embedded snapshot of the delivery address at
// checkout time, not a live reference to the user's address book.
type ShippingAddress struct {
	FullName   string
	Phone      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Validate checks the minimum address fields required for delivery and
// enforces the column widths the address is persisted with, so oversize
// input fails here instead of surfacing as a driver error.
func (a ShippingAddress) Validate() error {
	if a.FullName == "" || a.Line1 == "" || a.City == "" || a.PostalCode == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Shipping address is incomplete")
	}
	limits := []struct {
		value string
		max   int
	}{
		{a.FullName, 255},
		{a.Phone, 32},
		{a.Line1, 255},
		{a.Line2, 255},
		{a.City, 128},
		{a.State, 128},
		{a.PostalCode, 20},
		{a.Country, 64},
	}
	for _, f := range limits {
		if len(f.value) > f.max {
			return shared.NewDomainError("INVALID_ADDRESS", "Shipping address field is too long")
		}
	}
	return nil
}

// TemporaryOrderItem is a line item snapshot inside a temporary order
type TemporaryOrderItem struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	TemporaryOrderID uuid.UUID `gorm:"type:uuid;index"`
	ProductID        uuid.UUID `gorm:"type:uuid"`
	Variant          VariantSelection `gorm:"type:text"`
	Quantity         int
	UnitPrice        decimal.Decimal `gorm:"type:decimal(12,2)"`
	Discount         decimal.Decimal `gorm:"type:decimal(12,2)"`
	CreatedAt        time.Time
}

// TableName sets the table name for GORM
func (TemporaryOrderItem) TableName() string {
	return "temporary_order_items"
}

// Subtotal returns quantity * unit price minus the line discount
func (i TemporaryOrderItem) Subtotal() decimal.Decimal {
	gross := i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
	return gross.Sub(i.Discount)
}

// AppliedCoupon is the snapshot of a coupon applied to a line at checkout
// time; it is re-validated against live coupon state during promotion.
type AppliedCoupon struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	TemporaryOrderID uuid.UUID `gorm:"type:uuid;index"`
	ProductID        uuid.UUID `gorm:"type:uuid"`
	Code             string
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(12,2)"`
	Variant          VariantSelection `gorm:"type:text"`
	CreatedAt        time.Time
}

// TableName sets the table name for GORM
func (AppliedCoupon) TableName() string {
	return "temporary_order_coupons"
}

// TemporaryOrder is a reserved, not-yet-confirmed purchase snapshot keyed by
// the external payment order id. It exists from checkout confirmation until
// promotion, cancellation, or TTL expiry.
type TemporaryOrder struct {
	shared.BaseEntity
	PaymentOrderID string    `gorm:"uniqueIndex"`
	UserID         uuid.UUID `gorm:"type:uuid;index"`
	Items          []TemporaryOrderItem `gorm:"foreignKey:TemporaryOrderID"`
	Address        ShippingAddress      `gorm:"embedded;embeddedPrefix:address_"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2)"`
	AppliedCoupons []AppliedCoupon `gorm:"foreignKey:TemporaryOrderID"`
	ExpiresAt      time.Time `gorm:"index"`
}

// NewTemporaryOrder creates a temporary order snapshot for the given user,
// keyed by the external payment order id.
func NewTemporaryOrder(userID uuid.UUID, paymentOrderID string, address ShippingAddress) (*TemporaryOrder, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if paymentOrderID == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_ORDER", "Payment order ID cannot be empty")
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}

	base := shared.NewBaseEntity()
	return &TemporaryOrder{
		BaseEntity:     base,
		PaymentOrderID: paymentOrderID,
		UserID:         userID,
		Address:        address,
		TotalAmount:    decimal.Zero,
		ExpiresAt:      base.CreatedAt.Add(TTL),
	}, nil
}

// AddItem appends a line item snapshot and updates the running total
func (o *TemporaryOrder) AddItem(productID uuid.UUID, variant VariantSelection, quantity int, unitPrice, discount decimal.Decimal) (*TemporaryOrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	lineGross := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	if discount.GreaterThan(lineGross) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the line amount")
	}

	item := TemporaryOrderItem{
		ID:               uuid.New(),
		TemporaryOrderID: o.ID,
		ProductID:        productID,
		Variant:          variant,
		Quantity:         quantity,
		UnitPrice:        unitPrice,
		Discount:         discount,
		CreatedAt:        time.Now(),
	}
	o.Items = append(o.Items, item)
	o.TotalAmount = o.TotalAmount.Add(item.Subtotal())
	o.Touch()
	return &o.Items[len(o.Items)-1], nil
}

// ApplyCoupon records a coupon snapshot against a line item. At most one
// coupon may target a given product line.
func (o *TemporaryOrder) ApplyCoupon(productID uuid.UUID, code string, discountAmount decimal.Decimal, variant VariantSelection) error {
	if code == "" {
		return shared.NewDomainError("INVALID_COUPON_CODE", "Coupon code cannot be empty")
	}
	for _, applied := range o.AppliedCoupons {
		if applied.ProductID == productID {
			return shared.NewDomainError("COUPON_ALREADY_APPLIED", "A coupon is already applied to this item")
		}
	}
	o.AppliedCoupons = append(o.AppliedCoupons, AppliedCoupon{
		ID:               uuid.New(),
		TemporaryOrderID: o.ID,
		ProductID:        productID,
		Code:             code,
		DiscountAmount:   discountAmount,
		Variant:          variant,
		CreatedAt:        time.Now(),
	})
	o.Touch()
	return nil
}

// HasItems reports whether the snapshot contains at least one line item
func (o *TemporaryOrder) HasItems() bool {
	return len(o.Items) > 0
}

// OwnedBy reports whether the given user owns this temporary order
func (o *TemporaryOrder) OwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}

// Expired reports whether the order has passed its TTL at the given instant
func (o *TemporaryOrder) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// ItemTotal recomputes the total from line items; used to verify the stored
// TotalAmount was not tampered with by a stale client cache.
func (o *TemporaryOrder) ItemTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// IsExpiredErr reports whether an error is the expiry domain error
func IsExpiredErr(err error) bool {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == ErrOrderExpired.Code
	}
	return false
}
