package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	promotionapp "github.com/vendora/backend/internal/application/promotion"
	"github.com/vendora/backend/internal/domain/checkout"
	"github.com/vendora/backend/internal/domain/order"
	"github.com/vendora/backend/internal/domain/promotion"
	"github.com/vendora/backend/internal/domain/shared"
)

type promotionFixture struct {
	temps     *MockTempOrderRepository
	orders    *MockOrderRepository
	products  *MockProductRepository
	coupons   *MockCouponRepository
	usages    *MockCouponUsageRepository
	validator *MockCouponValidator
	gateway   *MockPaymentGateway
	service   *PromotionService
}

func newPromotionFixture() *promotionFixture {
	f := &promotionFixture{
		temps:     new(MockTempOrderRepository),
		orders:    new(MockOrderRepository),
		products:  new(MockProductRepository),
		coupons:   new(MockCouponRepository),
		usages:    new(MockCouponUsageRepository),
		validator: new(MockCouponValidator),
		gateway:   new(MockPaymentGateway),
	}
	f.service = NewPromotionService(stubTxManager{}, f.temps, f.orders, f.products, f.coupons, f.usages, f.validator, f.gateway)
	return f
}

func promoteReq() PromoteRequest {
	return PromoteRequest{PaymentOrderID: "order_abc123", PaymentID: "pay_xyz789", Signature: "sig"}
}

func snapshotWithCoupon(t *testing.T, userID uuid.UUID, product *catalogProduct, coupon *promotion.Coupon, discount decimal.Decimal) *checkout.TemporaryOrder {
	t.Helper()
	temp, err := checkout.NewTemporaryOrder(userID, "order_abc123", validAddress().toDomain())
	require.NoError(t, err)
	_, err = temp.AddItem(product.id, nil, 2, product.price, discount)
	require.NoError(t, err)
	if coupon != nil {
		require.NoError(t, temp.ApplyCoupon(product.id, coupon.Code, discount, nil))
	}
	return temp
}

// catalogProduct keeps the ids a fixture needs without a full aggregate
type catalogProduct struct {
	id       uuid.UUID
	vendorID uuid.UUID
	price    decimal.Decimal
}

func (f *promotionFixture) expectProduct(t *testing.T, p *catalogProduct, stock int) {
	t.Helper()
	product := newTestProduct(t, 0, stock)
	product.ID = p.id
	product.VendorID = p.vendorID
	product.Price = p.price
	f.products.On("FindByID", mock.Anything, p.id).Return(product, nil)
}

func TestPromotionServicePromote(t *testing.T) {
	userID := uuid.New()
	product := &catalogProduct{id: uuid.New(), vendorID: uuid.New(), price: decimal.NewFromInt(1500)}

	newCoupon := func(t *testing.T) *promotion.Coupon {
		t.Helper()
		coupon, err := promotion.NewCoupon(product.vendorID, "Save 20", "SAVE20", promotion.DiscountTypePercentage, decimal.NewFromInt(20))
		require.NoError(t, err)
		require.NoError(t, coupon.SetMaximumDiscountAmount(decimal.NewFromInt(500)))
		require.NoError(t, coupon.SetUsageLimits(0, 1))
		return coupon
	}

	t.Run("promotes snapshot into durable order and deletes it", func(t *testing.T) {
		coupon := newCoupon(t)
		temp := snapshotWithCoupon(t, userID, product, coupon, decimal.NewFromInt(500))
		f := newPromotionFixture()

		f.gateway.On("VerifySignature", "order_abc123", "pay_xyz789", "sig").Return(nil)
		f.orders.On("FindByPaymentOrderID", mock.Anything, "order_abc123").Return(nil, shared.ErrNotFound)
		f.temps.On("FindByPaymentOrderID", mock.Anything, "order_abc123").Return(temp, nil)
		f.expectProduct(t, product, 10)
		f.products.On("DecrementStock", mock.Anything, product.id, 2).Return(nil)
		f.validator.On("Validate", mock.Anything, userID, mock.Anything).
			Return(&promotionapp.ValidateResult{Coupon: coupon, Discount: decimal.NewFromInt(500)}, nil)
		f.usages.On("RecordUsage", mock.Anything, coupon.ID, userID, 1).Return(nil)
		f.coupons.On("IncrementTotalUses", mock.Anything, coupon.ID).Return(nil)
		f.orders.On("NextOrderNumber", mock.Anything).Return("VND-20260828-0001", nil)
		f.orders.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
		f.temps.On("Delete", mock.Anything, temp.ID).Return(nil)

		result, err := f.service.Promote(context.Background(), promoteReq())
		require.NoError(t, err)
		assert.False(t, result.Replayed)
		assert.Equal(t, order.StatusConfirmed, result.Order.Status)
		assert.Equal(t, "pay_xyz789", result.Order.PaymentID)
		assert.Equal(t, product.vendorID, result.Order.Items[0].VendorID)
		assert.Equal(t, coupon.ID, result.Order.Coupons[0].CouponID)
		f.temps.AssertExpectations(t)
		f.usages.AssertExpectations(t)
	})

	t.Run("replayed callback returns existing order untouched", func(t *testing.T) {
		f := newPromotionFixture()
		existing := &order.Order{PaymentOrderID: "order_abc123", Status: order.StatusConfirmed}

		f.gateway.On("VerifySignature", "order_abc123", "pay_xyz789", "sig").Return(nil)
		f.orders.On("FindByPaymentOrderID", mock.Anything, "order_abc123").Return(existing, nil)

		result, err := f.service.Promote(context.Background(), promoteReq())
		require.NoError(t, err)
		assert.True(t, result.Replayed)
		assert.Same(t, existing, result.Order)
		f.temps.AssertNotCalled(t, "FindByPaymentOrderID", mock.Anything, mock.Anything)
		f.usages.AssertNotCalled(t, "RecordUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad signature never touches state", func(t *testing.T) {
		f := newPromotionFixture()
		f.gateway.On("VerifySignature", "order_abc123", "pay_xyz789", "sig").Return(shared.ErrUnauthorized)

		_, err := f.service.Promote(context.Background(), promoteReq())
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
		f.orders.AssertNotCalled(t, "FindByPaymentOrderID", mock.Anything, mock.Anything)
	})

	t.Run("missing snapshot with no durable order means expired", func(t *testing.T) {
		f := newPromotionFixture()
		f.gateway.On("VerifySignature", "order_abc123", "pay_xyz789", "sig").Return(nil)
		f.orders.On("FindByPaymentOrderID", mock.Anything, "order_abc123").Return(nil, shared.ErrNotFound)
		f.temps.On("FindByPaymentOrderID", mock.Anything, "order_abc123").Return(nil, shared.ErrNotFound)

		_, err := f.service.Promote(context.Background(), promoteReq())
		assert.ErrorIs(t, err, checkout.ErrOrderExpired)
	})

	t.Run("snapshot past TTL means expired even before the sweep", func(t *testing.T) {
		temp := snapshotWithCoupon(t, userID, product, nil, decimal.Zero)
		temp.ExpiresAt = time.Now().Add(-time.Minute)
		f := newPromotionFixture()

		f.gateway.On("VerifySignature", "order_abc123", "pay_xyz789", "sig").Return(nil)
		f.orders.On("FindByPaymentOrderID", mock.Anything, "order_abc123").Return(nil, shared.ErrNotFound)
		f.temps.On("FindByPaymentOrderID", mock.Anything, "order_abc123").Return(temp, nil)

		_, err := f.service.Promote(context.Background(), promoteReq())
		assert.ErrorIs(t, err, checkout.ErrOrderExpired)
	})

	t.Run("stock shortfall rolls back as stale snapshot", func(t *testing.T) {
		temp := snapshotWithCoupon(t, userID, product, nil, decimal.Zero)
		f := newPromotionFixture()

		f.gateway.On("VerifySignature", "order_abc123", "pay_xyz789", "sig").Return(nil)
		f.orders.On("FindByPaymentOrderID", mock.Anything, "order_abc123").Return(nil, shared.ErrNotFound)
		f.temps.On("FindByPaymentOrderID", mock.Anything, "order_abc123").Return(temp, nil)
		f.expectProduct(t, product, 1)
		f.products.On("DecrementStock", mock.Anything, product.id, 2).Return(shared.ErrInsufficientStock)

		_, err := f.service.Promote(context.Background(), promoteReq())
		assert.ErrorIs(t, err, checkout.ErrStaleSnapshot)
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.temps.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("coupon gone stale since apply rolls back as stale snapshot", func(t *testing.T) {
		coupon := newCoupon(t)
		temp := snapshotWithCoupon(t, userID, product, coupon, decimal.NewFromInt(500))
		f := newPromotionFixture()

		f.gateway.On("VerifySignature", "order_abc123", "pay_xyz789", "sig").Return(nil)
		f.orders.On("FindByPaymentOrderID", mock.Anything, "order_abc123").Return(nil, shared.ErrNotFound)
		f.temps.On("FindByPaymentOrderID", mock.Anything, "order_abc123").Return(temp, nil)
		f.expectProduct(t, product, 10)
		f.products.On("DecrementStock", mock.Anything, product.id, 2).Return(nil)
		f.validator.On("Validate", mock.Anything, userID, mock.Anything).Return(nil, promotion.ErrCouponInactive)

		_, err := f.service.Promote(context.Background(), promoteReq())
		assert.ErrorIs(t, err, checkout.ErrStaleSnapshot)
		f.usages.AssertNotCalled(t, "RecordUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("drifted discount rolls back as stale snapshot", func(t *testing.T) {
		coupon := newCoupon(t)
		temp := snapshotWithCoupon(t, userID, product, coupon, decimal.NewFromInt(500))
		f := newPromotionFixture()

		f.gateway.On("VerifySignature", "order_abc123", "pay_xyz789", "sig").Return(nil)
		f.orders.On("FindByPaymentOrderID", mock.Anything, "order_abc123").Return(nil, shared.ErrNotFound)
		f.temps.On("FindByPaymentOrderID", mock.Anything, "order_abc123").Return(temp, nil)
		f.expectProduct(t, product, 10)
		f.products.On("DecrementStock", mock.Anything, product.id, 2).Return(nil)
		f.validator.On("Validate", mock.Anything, userID, mock.Anything).
			Return(&promotionapp.ValidateResult{Coupon: coupon, Discount: decimal.NewFromInt(300)}, nil)

		_, err := f.service.Promote(context.Background(), promoteReq())
		assert.ErrorIs(t, err, checkout.ErrStaleSnapshot)
	})

	t.Run("ledger cap loss surfaces usage exceeded", func(t *testing.T) {
		// Two promotions race the same single-use coupon; the loser's
		// conditional ledger write matches no row and the whole
		// transaction rolls back.
		coupon := newCoupon(t)
		temp := snapshotWithCoupon(t, userID, product, coupon, decimal.NewFromInt(500))
		f := newPromotionFixture()

		f.gateway.On("VerifySignature", "order_abc123", "pay_xyz789", "sig").Return(nil)
		f.orders.On("FindByPaymentOrderID", mock.Anything, "order_abc123").Return(nil, shared.ErrNotFound)
		f.temps.On("FindByPaymentOrderID", mock.Anything, "order_abc123").Return(temp, nil)
		f.expectProduct(t, product, 10)
		f.products.On("DecrementStock", mock.Anything, product.id, 2).Return(nil)
		f.validator.On("Validate", mock.Anything, userID, mock.Anything).
			Return(&promotionapp.ValidateResult{Coupon: coupon, Discount: decimal.NewFromInt(500)}, nil)
		f.usages.On("RecordUsage", mock.Anything, coupon.ID, userID, 1).Return(promotion.ErrUsageExceeded)

		_, err := f.service.Promote(context.Background(), promoteReq())
		assert.ErrorIs(t, err, promotion.ErrUsageExceeded)
		f.coupons.AssertNotCalled(t, "IncrementTotalUses", mock.Anything, mock.Anything)
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestPromotionServiceReplay(t *testing.T) {
	t.Run("returns the durable order without the temp snapshot", func(t *testing.T) {
		f := newPromotionFixture()
		existing := &order.Order{OrderNumber: "VND-20260828-0001", PaymentOrderID: "order_abc123"}

		f.gateway.On("VerifySignature", "order_abc123", "pay_xyz789", "sig").Return(nil)
		f.orders.On("FindByPaymentOrderID", mock.Anything, "order_abc123").Return(existing, nil)

		result, err := f.service.Replay(context.Background(), promoteReq())
		require.NoError(t, err)
		assert.True(t, result.Replayed)
		assert.Equal(t, "VND-20260828-0001", result.Order.OrderNumber)
		f.temps.AssertNotCalled(t, "FindByPaymentOrderID", mock.Anything, mock.Anything)
	})

	t.Run("bad signature is unauthorized", func(t *testing.T) {
		f := newPromotionFixture()
		f.gateway.On("VerifySignature", "order_abc123", "pay_xyz789", "sig").Return(shared.ErrUnauthorized)

		_, err := f.service.Replay(context.Background(), promoteReq())
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
		f.orders.AssertNotCalled(t, "FindByPaymentOrderID", mock.Anything, mock.Anything)
	})

	t.Run("propagates not found when nothing was promoted yet", func(t *testing.T) {
		f := newPromotionFixture()
		f.gateway.On("VerifySignature", "order_abc123", "pay_xyz789", "sig").Return(nil)
		f.orders.On("FindByPaymentOrderID", mock.Anything, "order_abc123").Return(nil, shared.ErrNotFound)

		_, err := f.service.Replay(context.Background(), promoteReq())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
