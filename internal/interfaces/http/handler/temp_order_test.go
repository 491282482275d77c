package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	checkoutapp "github.com/vendora/backend/internal/application/checkout"
	promotionapp "github.com/vendora/backend/internal/application/promotion"
	"github.com/vendora/backend/internal/domain/catalog"
	"github.com/vendora/backend/internal/domain/identity"
	"github.com/vendora/backend/internal/infrastructure/config"
	"github.com/vendora/backend/internal/infrastructure/payment"
)

var testPaymentConfig = config.PaymentConfig{KeyID: "key_test", Secret: "gateway-secret"}

type checkoutFixture struct {
	products *MockProductRepository
	temps    *MockTempOrderRepository
	coupons  *MockCouponRepository
	usages   *MockCouponUsageRepository
	orders   *MockOrderRepository
	gateway  *payment.HMACGateway
	handler  *TempOrderHandler
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		products: new(MockProductRepository),
		temps:    new(MockTempOrderRepository),
		coupons:  new(MockCouponRepository),
		usages:   new(MockCouponUsageRepository),
		orders:   new(MockOrderRepository),
		gateway:  payment.NewHMACGateway(testPaymentConfig, zap.NewNop()),
	}
	validator := promotionapp.NewCouponService(f.coupons, f.usages, f.orders)
	service := checkoutapp.NewTempOrderService(f.products, f.temps, validator, f.gateway)
	f.handler = NewTempOrderHandler(service)
	return f
}

func checkoutAddress() CheckoutAddressRequest {
	return CheckoutAddressRequest{
		FullName:   "Asha Rao",
		Phone:      "9876543210",
		Line1:      "12 MG Road",
		City:       "Bengaluru",
		State:      "Karnataka",
		PostalCode: "560001",
		Country:    "IN",
	}
}

func newStockedProduct(t *testing.T, id uuid.UUID, price int64, stock int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(uuid.New(), "Ceramic Mug", decimal.NewFromInt(price), stock)
	require.NoError(t, err)
	product.ID = id
	return product
}

func postCheckout(engine http.Handler, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestTempOrderHandlerCreate(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()

	newEngine := func(f *checkoutFixture) *gin.Engine {
		engine := setupTestRouter(userID, identity.RoleCustomer)
		engine.POST("/checkout", f.handler.Create)
		return engine
	}

	t.Run("stages cart and opens payment order", func(t *testing.T) {
		f := newCheckoutFixture()
		f.products.On("FindByID", mock.Anything, productID).Return(newStockedProduct(t, productID, 500, 5), nil)
		f.temps.On("Save", mock.Anything, mock.AnythingOfType("*checkout.TemporaryOrder")).Return(nil)

		w := postCheckout(newEngine(f), CheckoutRequest{
			Items: []CheckoutItemRequest{
				{ProductID: productID.String(), Variant: map[string]string{"size": "M"}, Quantity: 2},
			},
			Address: checkoutAddress(),
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w)
		assert.True(t, env.Success)

		var resp TempOrderResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Contains(t, resp.PaymentOrderID, "order_")
		assert.Equal(t, "1000.00", resp.TotalAmount)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, 2, resp.Items[0].Quantity)
		assert.Equal(t, "500.00", resp.Items[0].UnitPrice)
		f.temps.AssertExpectations(t)
	})

	t.Run("accepts full country names", func(t *testing.T) {
		f := newCheckoutFixture()
		f.products.On("FindByID", mock.Anything, productID).Return(newStockedProduct(t, productID, 500, 5), nil)
		f.temps.On("Save", mock.Anything, mock.AnythingOfType("*checkout.TemporaryOrder")).Return(nil)

		address := checkoutAddress()
		address.Country = "India"

		w := postCheckout(newEngine(f), CheckoutRequest{
			Items: []CheckoutItemRequest{
				{ProductID: productID.String(), Quantity: 1},
			},
			Address: address,
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		f.temps.AssertExpectations(t)
	})

	t.Run("insufficient stock maps to 422", func(t *testing.T) {
		f := newCheckoutFixture()
		f.products.On("FindByID", mock.Anything, productID).Return(newStockedProduct(t, productID, 500, 1), nil)

		w := postCheckout(newEngine(f), CheckoutRequest{
			Items: []CheckoutItemRequest{
				{ProductID: productID.String(), Quantity: 3},
			},
			Address: checkoutAddress(),
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decodeEnvelope(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INSUFFICIENT_STOCK", env.Error.Code)
		f.temps.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("empty cart fails binding", func(t *testing.T) {
		f := newCheckoutFixture()

		w := postCheckout(newEngine(f), CheckoutRequest{
			Items:   []CheckoutItemRequest{},
			Address: checkoutAddress(),
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("missing address fails binding", func(t *testing.T) {
		f := newCheckoutFixture()

		w := postCheckout(newEngine(f), map[string]any{
			"items": []map[string]any{
				{"product_id": productID.String(), "quantity": 1},
			},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTempOrderHandlerCancel(t *testing.T) {
	userID := uuid.New()

	t.Run("owner cancels their staged order", func(t *testing.T) {
		f := newCheckoutFixture()
		engine := setupTestRouter(userID, identity.RoleCustomer)
		engine.DELETE("/checkout/:id", f.handler.Cancel)

		temp := stagedOrder(t, userID)
		f.temps.On("FindByID", mock.Anything, temp.ID).Return(temp, nil)
		f.temps.On("Delete", mock.Anything, temp.ID).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/checkout/"+temp.ID.String(), nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		f.temps.AssertExpectations(t)
	})

	t.Run("stranger gets 403", func(t *testing.T) {
		f := newCheckoutFixture()
		engine := setupTestRouter(uuid.New(), identity.RoleCustomer)
		engine.DELETE("/checkout/:id", f.handler.Cancel)

		temp := stagedOrder(t, userID)
		f.temps.On("FindByID", mock.Anything, temp.ID).Return(temp, nil)

		req := httptest.NewRequest(http.MethodDelete, "/checkout/"+temp.ID.String(), nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		f.temps.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
