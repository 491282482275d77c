package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendora/backend/internal/domain/catalog"
	"github.com/vendora/backend/internal/domain/checkout"
	"github.com/vendora/backend/internal/domain/identity"
	"github.com/vendora/backend/internal/domain/order"
	"github.com/vendora/backend/internal/domain/promotion"
)

// setupTestDB opens an in-memory sqlite database with the full schema.
// The conditional-write semantics under test (ON CONFLICT upserts, guarded
// UPDATEs) behave the same on sqlite and postgres.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&identity.User{},
		&catalog.Product{},
		&promotion.Coupon{},
		&promotion.CouponUsage{},
		&checkout.TemporaryOrder{},
		&checkout.TemporaryOrderItem{},
		&checkout.AppliedCoupon{},
		&order.Order{},
		&order.Item{},
		&order.CouponRedemption{},
	)
	require.NoError(t, err)
	return db
}
