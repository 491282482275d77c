package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/backend/internal/domain/promotion"
)

func TestCouponUsageRepository_RecordUsage_InsertsFirstRedemption(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCouponUsageRepository(db)
	ctx := context.Background()

	couponID := uuid.New()
	userID := uuid.New()

	err := repo.RecordUsage(ctx, couponID, userID, 3)
	require.NoError(t, err)

	count, err := repo.GetUsage(ctx, couponID, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCouponUsageRepository_RecordUsage_IncrementsUpToCap(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCouponUsageRepository(db)
	ctx := context.Background()

	couponID := uuid.New()
	userID := uuid.New()

	require.NoError(t, repo.RecordUsage(ctx, couponID, userID, 2))
	require.NoError(t, repo.RecordUsage(ctx, couponID, userID, 2))

	// Third attempt hits the per-user cap and must leave the row untouched.
	err := repo.RecordUsage(ctx, couponID, userID, 2)
	assert.ErrorIs(t, err, promotion.ErrUsageExceeded)

	count, err := repo.GetUsage(ctx, couponID, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCouponUsageRepository_RecordUsage_UnlimitedWhenCapZero(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCouponUsageRepository(db)
	ctx := context.Background()

	couponID := uuid.New()
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.RecordUsage(ctx, couponID, userID, 0))
	}

	count, err := repo.GetUsage(ctx, couponID, userID)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestCouponUsageRepository_RecordUsage_SeparateLedgerPerUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCouponUsageRepository(db)
	ctx := context.Background()

	couponID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	require.NoError(t, repo.RecordUsage(ctx, couponID, first, 1))

	// The cap is per user, so a different user still gets their redemption.
	require.NoError(t, repo.RecordUsage(ctx, couponID, second, 1))

	err := repo.RecordUsage(ctx, couponID, first, 1)
	assert.ErrorIs(t, err, promotion.ErrUsageExceeded)
}

func TestCouponUsageRepository_GetUsage_ZeroWithoutRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCouponUsageRepository(db)

	count, err := repo.GetUsage(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCouponUsageRepository_SumUsage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCouponUsageRepository(db)
	ctx := context.Background()

	couponID := uuid.New()
	require.NoError(t, repo.RecordUsage(ctx, couponID, uuid.New(), 0))
	require.NoError(t, repo.RecordUsage(ctx, couponID, uuid.New(), 0))

	other := uuid.New()
	require.NoError(t, repo.RecordUsage(ctx, couponID, other, 0))
	require.NoError(t, repo.RecordUsage(ctx, couponID, other, 0))

	total, err := repo.SumUsage(ctx, couponID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	empty, err := repo.SumUsage(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty)
}
