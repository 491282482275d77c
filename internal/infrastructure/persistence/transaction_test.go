package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/backend/internal/domain/catalog"
	"github.com/vendora/backend/internal/domain/promotion"
)

func TestGormTransactionManager_CommitsOnSuccess(t *testing.T) {
	db := setupTestDB(t)
	tm := NewGormTransactionManager(db)
	products := NewGormProductRepository(db)
	usages := NewGormCouponUsageRepository(db)
	ctx := context.Background()

	product := seedProduct(t, products, 5)
	couponID := uuid.New()
	userID := uuid.New()

	err := tm.Transaction(ctx, func(ctx context.Context) error {
		if err := products.DecrementStock(ctx, product.ID, 2); err != nil {
			return err
		}
		return usages.RecordUsage(ctx, couponID, userID, 1)
	})
	require.NoError(t, err)

	reloaded, err := products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Stock)

	count, err := usages.GetUsage(ctx, couponID, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGormTransactionManager_RollsBackEveryWrite(t *testing.T) {
	db := setupTestDB(t)
	tm := NewGormTransactionManager(db)
	products := NewGormProductRepository(db)
	usages := NewGormCouponUsageRepository(db)
	ctx := context.Background()

	product := seedProduct(t, products, 5)
	couponID := uuid.New()
	userID := uuid.New()

	boom := errors.New("charge failed")
	err := tm.Transaction(ctx, func(ctx context.Context) error {
		if err := products.DecrementStock(ctx, product.ID, 2); err != nil {
			return err
		}
		if err := usages.RecordUsage(ctx, couponID, userID, 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Stock and the usage ledger revert together.
	reloaded, err := products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.Stock)

	count, err := usages.GetUsage(ctx, couponID, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestGormTransactionManager_ReposOutsideTransactionUseBaseDB(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	product, err := catalog.NewProduct(uuid.New(), "Desk lamp", decimal.NewFromInt(1200), 4)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, product))

	found, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)
}

func TestGormTransactionManager_ConditionalErrorsAbortTransaction(t *testing.T) {
	db := setupTestDB(t)
	tm := NewGormTransactionManager(db)
	products := NewGormProductRepository(db)
	coupons := NewGormCouponRepository(db)
	ctx := context.Background()

	product := seedProduct(t, products, 1)
	coupon := mustCoupon(t, "ONESHOT")
	require.NoError(t, coupon.SetUsageLimits(1, 1))
	coupon.TotalUses = 1
	require.NoError(t, coupons.Save(ctx, coupon))

	err := tm.Transaction(ctx, func(ctx context.Context) error {
		if err := products.DecrementStock(ctx, product.ID, 1); err != nil {
			return err
		}
		return coupons.IncrementTotalUses(ctx, coupon.ID)
	})
	assert.ErrorIs(t, err, promotion.ErrUsageExceeded)

	// The stock write inside the failed transaction is undone.
	reloaded, err := products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Stock)
}
