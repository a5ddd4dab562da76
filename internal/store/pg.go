package store

import (
	"context"
	"errors"

	apperrors "github.com/dkoval/shoply/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// withTx runs fn inside a transaction, rolling back on error.
func withTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return apperrors.ErrTransactionBegin
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return apperrors.ErrTransactionRollback
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.ErrTransactionCommit
	}
	return nil
}
