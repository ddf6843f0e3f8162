package transaction

import (
	"context"

	"gorm.io/gorm"
)

type TransactionContextKey struct{}

// WithTx stores a session or transaction handle in ctx for repositories to pick up.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, TransactionContextKey{}, tx)
}

// Database hands repositories the handle bound to the current request.
type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db}
}

// GetTx returns the session or transaction stored in ctx, falling back to the pool.
func (t *Database) GetTx(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TransactionContextKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return t.db.WithContext(ctx)
}

// Session pins one pooled connection for the duration of fn. Statements issued
// through GetTx inside fn run on that connection and commit individually. The
// connection goes back to the pool when fn returns, whatever the outcome.
func (t *Database) Session(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(TransactionContextKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		return fn(WithTx(ctx, conn))
	})
}

// Transaction runs fn inside a database transaction on the current session.
func (t *Database) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.GetTx(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}
