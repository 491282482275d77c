package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	promotionapp "github.com/vendora/backend/internal/application/promotion"
	"github.com/vendora/backend/internal/domain/catalog"
	"github.com/vendora/backend/internal/domain/checkout"
	"github.com/vendora/backend/internal/domain/order"
	"github.com/vendora/backend/internal/domain/promotion"
	"github.com/vendora/backend/internal/domain/shared"
	"github.com/vendora/backend/internal/domain/shared/valueobject"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, vendorID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

type MockTempOrderRepository struct {
	mock.Mock
}

func (m *MockTempOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*checkout.TemporaryOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.TemporaryOrder), args.Error(1)
}

func (m *MockTempOrderRepository) FindByPaymentOrderID(ctx context.Context, paymentOrderID string) (*checkout.TemporaryOrder, error) {
	args := m.Called(ctx, paymentOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.TemporaryOrder), args.Error(1)
}

func (m *MockTempOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]checkout.TemporaryOrder, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]checkout.TemporaryOrder), args.Error(1)
}

func (m *MockTempOrderRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTempOrderRepository) Save(ctx context.Context, order *checkout.TemporaryOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockTempOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTempOrderRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByPaymentOrderID(ctx context.Context, paymentOrderID string) (*order.Order, error) {
	args := m.Called(ctx, paymentOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, vendorID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) NextOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*promotion.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotion.Coupon), args.Error(1)
}

func (m *MockCouponRepository) FindByCode(ctx context.Context, code string) (*promotion.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotion.Coupon), args.Error(1)
}

func (m *MockCouponRepository) FindByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]promotion.Coupon, error) {
	args := m.Called(ctx, vendorID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]promotion.Coupon), args.Error(1)
}

func (m *MockCouponRepository) CountByVendor(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	args := m.Called(ctx, vendorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCouponRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockCouponRepository) Save(ctx context.Context, coupon *promotion.Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *MockCouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCouponRepository) IncrementTotalUses(ctx context.Context, couponID uuid.UUID) error {
	args := m.Called(ctx, couponID)
	return args.Error(0)
}

type MockCouponUsageRepository struct {
	mock.Mock
}

func (m *MockCouponUsageRepository) GetUsage(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, couponID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockCouponUsageRepository) RecordUsage(ctx context.Context, couponID, userID uuid.UUID, maxUsesPerUser int) error {
	args := m.Called(ctx, couponID, userID, maxUsesPerUser)
	return args.Error(0)
}

func (m *MockCouponUsageRepository) SumUsage(ctx context.Context, couponID uuid.UUID) (int64, error) {
	args := m.Called(ctx, couponID)
	return args.Get(0).(int64), args.Error(1)
}

type MockCouponValidator struct {
	mock.Mock
}

func (m *MockCouponValidator) Validate(ctx context.Context, userID uuid.UUID, req promotionapp.ValidateRequest) (*promotionapp.ValidateResult, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotionapp.ValidateResult), args.Error(1)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateOrder(ctx context.Context, amount valueobject.Money, receipt string) (string, error) {
	args := m.Called(ctx, amount, receipt)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) VerifySignature(paymentOrderID, paymentID, signature string) error {
	args := m.Called(paymentOrderID, paymentID, signature)
	return args.Error(0)
}

// stubTxManager runs the function inline; rollback semantics are covered by
// the gorm transaction manager's own tests.
type stubTxManager struct{}

func (stubTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
