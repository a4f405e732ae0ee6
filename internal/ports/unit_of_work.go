package ports

import "context"

// Tx is an opaque transaction handle. Infrastructure picks the concrete type
// (*gorm.DB for the SQLite adapters).
type Tx any

// UnitOfWork is a callback-style transaction boundary: an error from fn rolls
// back, nil commits. Calls nested inside an open transaction join it.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

func WithTxContext(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func TxFromContext(ctx context.Context) Tx {
	if ctx == nil {
		return nil
	}
	return ctx.Value(txKey{})
}

// InTx reports whether ctx carries an open transaction.
func InTx(ctx context.Context) bool {
	return TxFromContext(ctx) != nil
}
