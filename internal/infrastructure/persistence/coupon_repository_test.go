package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/backend/internal/domain/promotion"
	"github.com/vendora/backend/internal/domain/shared"
)

func mustCoupon(t *testing.T, code string) *promotion.Coupon {
	t.Helper()
	coupon, err := promotion.NewCoupon(uuid.New(), "Test coupon", code,
		promotion.DiscountTypePercentage, decimal.NewFromInt(20))
	require.NoError(t, err)
	return coupon
}

func TestCouponRepository_FindByCode_NormalizesInput(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCouponRepository(db)
	ctx := context.Background()

	coupon := mustCoupon(t, "save20")
	require.NoError(t, repo.Save(ctx, coupon))

	// Stored uppercase, so a lowercase lookup with padding still matches.
	found, err := repo.FindByCode(ctx, "  save20 ")
	require.NoError(t, err)
	assert.Equal(t, coupon.ID, found.ID)
	assert.Equal(t, "SAVE20", found.Code)

	_, err = repo.FindByCode(ctx, "NOSUCH")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCouponRepository_ExistsByCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCouponRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, mustCoupon(t, "FLAT50")))

	exists, err := repo.ExistsByCode(ctx, "flat50")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByCode(ctx, "OTHER")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCouponRepository_IncrementTotalUses_StopsAtGlobalCap(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCouponRepository(db)
	ctx := context.Background()

	coupon := mustCoupon(t, "CAPPED")
	require.NoError(t, coupon.SetUsageLimits(2, 0))
	require.NoError(t, repo.Save(ctx, coupon))

	require.NoError(t, repo.IncrementTotalUses(ctx, coupon.ID))
	require.NoError(t, repo.IncrementTotalUses(ctx, coupon.ID))

	err := repo.IncrementTotalUses(ctx, coupon.ID)
	assert.ErrorIs(t, err, promotion.ErrUsageExceeded)

	reloaded, err := repo.FindByID(ctx, coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.TotalUses)
}

func TestCouponRepository_IncrementTotalUses_UnlimitedWhenCapZero(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCouponRepository(db)
	ctx := context.Background()

	coupon := mustCoupon(t, "OPEN")
	require.NoError(t, repo.Save(ctx, coupon))

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.IncrementTotalUses(ctx, coupon.ID))
	}

	reloaded, err := repo.FindByID(ctx, coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.TotalUses)
}

func TestCouponRepository_FindByVendor_PagesNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCouponRepository(db)
	ctx := context.Background()

	vendorID := uuid.New()
	for _, code := range []string{"VND1", "VND2", "VND3"} {
		coupon, err := promotion.NewCoupon(vendorID, "Vendor coupon", code,
			promotion.DiscountTypeFixed, decimal.NewFromInt(50))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, coupon))
	}
	require.NoError(t, repo.Save(ctx, mustCoupon(t, "OTHERVENDOR")))

	coupons, err := repo.FindByVendor(ctx, vendorID, shared.Filter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, coupons, 2)

	count, err := repo.CountByVendor(ctx, vendorID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
