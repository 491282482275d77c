package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/vendora/backend/internal/domain/catalog"
	"github.com/vendora/backend/internal/domain/checkout"
	"github.com/vendora/backend/internal/domain/identity"
	"github.com/vendora/backend/internal/domain/order"
	"github.com/vendora/backend/internal/domain/promotion"
	"github.com/vendora/backend/internal/domain/shared"
	"github.com/vendora/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestRouter returns an engine with a stub auth middleware that plants
// the given identity in the request context.
func setupTestRouter(userID uuid.UUID, role identity.Role) *gin.Engine {
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, userID.String())
		c.Set(middleware.JWTRoleKey, string(role))
		c.Next()
	})
	return engine
}

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

func (m *MockTempOrderRepository) Save(ctx context.Context, o *checkout.TemporaryOrder) error {
	args := m.Called(ctx, o)
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

// recordingDeduper implements CallbackDeduper in memory
type recordingDeduper struct {
	seen      map[string]bool
	forgotten []string
}

func newRecordingDeduper() *recordingDeduper {
	return &recordingDeduper{seen: make(map[string]bool)}
}

func (d *recordingDeduper) MarkSeen(_ context.Context, paymentOrderID string, _ time.Duration) (bool, error) {
	if d.seen[paymentOrderID] {
		return false, nil
	}
	d.seen[paymentOrderID] = true
	return true, nil
}

func (d *recordingDeduper) Forget(_ context.Context, paymentOrderID string) error {
	delete(d.seen, paymentOrderID)
	d.forgotten = append(d.forgotten, paymentOrderID)
	return nil
}
