package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TxRunner executes a function inside a single database transaction.
// Services use it to commit a mutation and its audit record atomically.
type TxRunner struct {
	db *sqlx.DB
}

// NewTxRunner creates a new instance of TxRunner.
func NewTxRunner(db *sqlx.DB) *TxRunner {
	return &TxRunner{db: db}
}

// Transact begins a transaction, runs fn with it and commits. Any error
// from fn rolls the transaction back and is returned unchanged so callers
// keep their typed errors.
func (t *TxRunner) Transact(ctx context.Context, fn func(ex sqlx.ExtContext) error) error {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback transaction: %v: %w", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// clampRange normalizes skip/limit pagination values.
func clampRange(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	return skip, limit
}
