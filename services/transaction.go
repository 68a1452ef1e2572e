package services

import (
	"context"

	"github.com/upb/schoolms-api/repositories"
)

// WithTransaction executes fn inside txMgr.InTransaction.
// fn receives the transaction-bearing context; repositories must be called with it.
// A panic in fn rolls the transaction back and is re-raised.
func WithTransaction(ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return txMgr.InTransaction(ctx, func(txCtx context.Context, tx repositories.Transaction) error {
		defer func() {
			if p := recover(); p != nil {
				_ = tx.Rollback()
				panic(p)
			}
		}()
		return fn(txCtx, tx)
	})
}

// WithTransactionResult is WithTransaction for functions that produce a value.
// The zero value is returned when the transaction fails.
func WithTransactionResult[T any](ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context, tx repositories.Transaction) (T, error)) (T, error) {
	var result T
	err := WithTransaction(ctx, txMgr, func(txCtx context.Context, tx repositories.Transaction) error {
		out, err := fn(txCtx, tx)
		if err != nil {
			return err
		}
		result = out
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
