package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Querier is the statement surface shared by pgx.Tx and *pgxpool.Pool.
// Storage operations that must run inside a transaction take a Querier
// bound to that transaction as an explicit argument; operations without
// one are transaction-free single statements.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner is satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TransactionError is an infrastructure failure inside a unit of work:
// begin, commit or rollback went wrong. It is fatal to the request.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// Runner owns begin/commit/rollback around a multi-statement unit of work.
type Runner struct {
	DB     TxBeginner
	Logger *zap.Logger
}

// WithinTx runs fn inside a single transaction. Any error from fn rolls the
// transaction back before propagating, so no partial write set is ever
// visible. Rollback failures are logged and surfaced as TransactionError,
// never swallowed.
func (r *Runner) WithinTx(ctx context.Context, fn func(tx Querier) error) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return &TransactionError{Op: "begin", Err: err}
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			r.Logger.Error("rollback failed",
				zap.NamedError("cause", err),
				zap.Error(rbErr),
			)
			return &TransactionError{Op: "rollback", Err: rbErr}
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return &TransactionError{Op: "commit", Err: err}
	}
	return nil
}
