// Package store provides abstractions and implementations for data persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openride/carpool-api/internal/platform/logger"
)

// PostgreSQL error codes signalling that a transaction lost to a concurrent
// one and may be retried on a fresh attempt.
const (
	serializationFailureCode = "40001"
	deadlockDetectedCode     = "40P01"
)

// Bounded retry policy for conflicting transactions. After maxTxAttempts the
// conflict is surfaced as ErrConcurrencyConflict instead of blocking further.
const (
	maxTxAttempts  = 3
	txRetryBackoff = 25 * time.Millisecond
)

// TxFn is a function that executes within a database transaction.
// The transaction is committed if the function returns nil, or rolled back
// if it returns an error, so domain-rule failures never leave partial
// updates behind.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// TxRunner abstracts transactional execution so services can be exercised
// without a live database. The production implementation wraps a *sql.DB;
// tests substitute in-memory fakes.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn TxFn) error
}

// sqlTxRunner implements TxRunner on top of a live database connection.
type sqlTxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a TxRunner backed by the given database connection.
func NewTxRunner(db *sql.DB) TxRunner {
	return &sqlTxRunner{db: db}
}

func (r *sqlTxRunner) RunInTransaction(ctx context.Context, fn TxFn) error {
	return RunInTransaction(ctx, r.db, fn)
}

// RunInTransaction executes the given function within a database transaction.
// If the function returns an error, the transaction is rolled back; otherwise
// it is committed.
//
// Transactions that fail with a serialization failure or deadlock are retried
// a bounded number of times with a short backoff; once the attempts are
// exhausted the error is surfaced wrapped in ErrConcurrencyConflict so
// callers can distinguish retryable contention from their own mistakes.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx)

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = runInTransactionOnce(ctx, db, fn, log)
		if err == nil || !isRetryableTxError(err) {
			return err
		}

		log.Warn("transaction lost to concurrent transaction, retrying",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		if attempt < maxTxAttempts {
			select {
			case <-time.After(time.Duration(attempt) * txRetryBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
}

// runInTransactionOnce performs a single begin/execute/commit cycle,
// handling rollbacks on error and on panic.
func runInTransactionOnce(
	ctx context.Context,
	db *sql.DB,
	fn TxFn,
	log *slog.Logger,
) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if txErr := tx.Rollback(); txErr != nil {
				log.Error("failed to roll back transaction after panic",
					slog.String("error", txErr.Error()),
					slog.Any("panic", p))
			} else {
				log.Error("rolled back transaction after panic",
					slog.Any("panic", p))
			}
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rollbackErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf(
				"error rolling back transaction: %v (original error: %w)",
				rollbackErr,
				err,
			)
		}
		log.Debug("rolled back transaction due to error",
			slog.String("error", err.Error()))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// isRetryableTxError reports whether the error is a transient transaction
// conflict worth retrying: a PostgreSQL serialization failure or deadlock.
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == serializationFailureCode || pgErr.Code == deadlockDetectedCode
}
