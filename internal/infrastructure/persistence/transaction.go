package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// GormTransactionManager implements shared.TransactionManager. The open
// transaction rides the context so repositories inside the closure join it
// without any code change.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new transaction manager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// Transaction runs fn inside a database transaction. Returning an error from
// fn rolls everything back.
func (m *GormTransactionManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFromContext returns the transaction bound to ctx, or fallback when no
// transaction is open
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}
