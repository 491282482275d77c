package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	promotionapp "github.com/vendora/backend/internal/application/promotion"
	"github.com/vendora/backend/internal/domain/catalog"
	"github.com/vendora/backend/internal/domain/checkout"
	"github.com/vendora/backend/internal/domain/shared"
	"github.com/vendora/backend/internal/domain/shared/valueobject"
)

// CouponValidator runs the eligibility engine for one coupon in a cart
// context. Satisfied by the promotion application service.
type CouponValidator interface {
	Validate(ctx context.Context, userID uuid.UUID, req promotionapp.ValidateRequest) (*promotionapp.ValidateResult, error)
}

// TempOrderService stages checkout snapshots between payment-order creation
// and the verified-payment callback. Prices and discounts are always
// recomputed server-side; the client's cart totals are never trusted.
type TempOrderService struct {
	products catalog.ProductRepository
	temps    checkout.TemporaryOrderRepository
	coupons  CouponValidator
	gateway  checkout.PaymentGateway
}

// NewTempOrderService creates a new temporary order service
func NewTempOrderService(
	products catalog.ProductRepository,
	temps checkout.TemporaryOrderRepository,
	coupons CouponValidator,
	gateway checkout.PaymentGateway,
) *TempOrderService {
	return &TempOrderService{
		products: products,
		temps:    temps,
		coupons:  coupons,
		gateway:  gateway,
	}
}

// Create prices the submitted cart, re-runs coupon eligibility, opens a
// payment order with the gateway and stores the snapshot under it.
func (s *TempOrderService) Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*TempOrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_CART", "Checkout requires at least one item")
	}

	type pricedLine struct {
		request  ItemRequest
		price    decimal.Decimal
		discount decimal.Decimal
	}

	lines := make([]pricedLine, 0, len(req.Items))
	lineByProduct := make(map[uuid.UUID]*pricedLine, len(req.Items))
	for i := range req.Items {
		item := req.Items[i]
		if item.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
		}
		if _, ok := lineByProduct[item.ProductID]; ok {
			return nil, shared.NewDomainError("DUPLICATE_ITEM", "Each product may appear on one cart line")
		}
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("load product %s: %w", item.ProductID, err)
		}
		if !product.Available(item.Quantity) {
			return nil, shared.ErrInsufficientStock
		}
		lines = append(lines, pricedLine{request: item, price: product.Price})
		lineByProduct[item.ProductID] = &lines[len(lines)-1]
	}

	applied := make([]promotionapp.AppliedCouponContext, 0, len(req.Coupons))
	for _, c := range req.Coupons {
		applied = append(applied, promotionapp.AppliedCouponContext{Code: c.Code, ProductID: c.ProductID})
	}
	couponDiscounts := make(map[uuid.UUID]decimal.Decimal, len(req.Coupons))
	for i, c := range req.Coupons {
		line, ok := lineByProduct[c.ProductID]
		if !ok {
			return nil, shared.NewDomainError("INVALID_COUPON_TARGET", "Coupon targets a product not in the cart")
		}
		amount := line.price.Mul(decimal.NewFromInt(int64(line.request.Quantity)))
		others := append(append([]promotionapp.AppliedCouponContext{}, applied[:i]...), applied[i+1:]...)
		result, err := s.coupons.Validate(ctx, userID, promotionapp.ValidateRequest{
			Code:      c.Code,
			Amount:    amount,
			ProductID: c.ProductID,
			Applied:   others,
		})
		if err != nil {
			return nil, err
		}
		line.discount = result.Discount
		couponDiscounts[c.ProductID] = result.Discount
	}

	total := decimal.Zero
	for _, line := range lines {
		gross := line.price.Mul(decimal.NewFromInt(int64(line.request.Quantity)))
		total = total.Add(gross.Sub(line.discount))
	}

	receipt := "rcpt_" + uuid.NewString()
	paymentOrderID, err := s.gateway.CreateOrder(ctx, valueobject.NewMoneyINR(total), receipt)
	if err != nil {
		return nil, fmt.Errorf("create payment order: %w", err)
	}

	temp, err := checkout.NewTemporaryOrder(userID, paymentOrderID, req.Address.toDomain())
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if _, err := temp.AddItem(line.request.ProductID, line.request.Variant, line.request.Quantity, line.price, line.discount); err != nil {
			return nil, err
		}
	}
	for _, c := range req.Coupons {
		line := lineByProduct[c.ProductID]
		if err := temp.ApplyCoupon(c.ProductID, c.Code, couponDiscounts[c.ProductID], line.request.Variant); err != nil {
			return nil, err
		}
	}

	if err := s.temps.Save(ctx, temp); err != nil {
		return nil, fmt.Errorf("save temporary order: %w", err)
	}
	return ToTempOrderResponse(temp), nil
}

// List returns the caller's temporary orders, newest first
func (s *TempOrderService) List(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]TempOrderResponse, int64, error) {
	orders, err := s.temps.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.temps.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]TempOrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, *ToTempOrderResponse(&orders[i]))
	}
	return responses, total, nil
}

// Get returns one temporary order, owner-only. A snapshot past its TTL is
// reported expired even when the sweeper has not purged the row yet.
func (s *TempOrderService) Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*TempOrderResponse, error) {
	temp, err := s.temps.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, checkout.ErrOrderExpired
		}
		return nil, err
	}
	if !temp.OwnedBy(userID) {
		return nil, shared.ErrForbidden
	}
	if temp.Expired(time.Now()) {
		return nil, checkout.ErrOrderExpired
	}
	return ToTempOrderResponse(temp), nil
}

// Cancel deletes a temporary order. Cancelling a missing or already-cancelled
// order succeeds so abandoned-payment callbacks can retry freely. Admins may
// cancel any order; everyone else only their own.
func (s *TempOrderService) Cancel(ctx context.Context, actorID uuid.UUID, isAdmin bool, id uuid.UUID) error {
	temp, err := s.temps.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if !isAdmin && !temp.OwnedBy(actorID) {
		return shared.ErrForbidden
	}
	return s.temps.Delete(ctx, temp.ID)
}
