package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/spicon/registration/internal/application/port"
	"github.com/spicon/registration/internal/domain/entity"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const txKey contextKey = "tx"

// DB wraps sql.DB and implements TransactionManager. Every statement run
// through it carries a per-operation timeout so a wedged database surfaces
// as entity.ErrStoreUnavailable instead of hanging the request.
type DB struct {
	*sql.DB
	logger    *zap.Logger
	opTimeout time.Duration
}

// NewDB creates a new database wrapper. A zero opTimeout disables the
// per-operation deadline.
func NewDB(sqlDB *sql.DB, opTimeout time.Duration, logger *zap.Logger) *DB {
	return &DB{
		DB:        sqlDB,
		logger:    logger,
		opTimeout: opTimeout,
	}
}

// WithTransaction implements port.TransactionManager.
// Executes the provided function within a database transaction; nested
// calls reuse the outer transaction.
func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx := extractTx(ctx); tx != nil {
		return fn(ctx)
	}

	ctx, cancel := db.withDeadline(ctx)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.logger.Error("Failed to begin transaction", zap.Error(err))
		return MapErr(fmt.Errorf("begin transaction: %w", err))
	}

	txCtx := context.WithValue(ctx, txKey, tx)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			db.logger.Error("Transaction panicked, rolled back", zap.Any("panic", p))
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
		return MapErr(err)
	}

	if err := tx.Commit(); err != nil {
		db.logger.Error("Failed to commit transaction", zap.Error(err))
		return MapErr(fmt.Errorf("commit transaction: %w", err))
	}

	return nil
}

// withDeadline applies the per-operation timeout unless the caller already
// set a tighter one
func (db *DB) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.opTimeout <= 0 {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < db.opTimeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, db.opTimeout)
}

// MapErr converts deadline and connection failures into the
// store-unavailable sentinel; domain sentinels pass through untouched.
// Repositories use it on every statement error.
func MapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, entity.ErrNotFound),
		errors.Is(err, entity.ErrConflict),
		errors.Is(err, entity.ErrValidation):
		return err
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, sql.ErrConnDone),
		isBusy(err):
		return fmt.Errorf("%w: %v", entity.ErrStoreUnavailable, err)
	default:
		return err
	}
}

// isBusy reports whether the driver gave up waiting for the write lock
func isBusy(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
}

// extractTx retrieves transaction from context if present
func extractTx(ctx context.Context) *sql.Tx {
	if tx, ok := ctx.Value(txKey).(*sql.Tx); ok {
		return tx
	}
	return nil
}

// Executor returns the open transaction from the context, or the pool
// when none is open. Repositories route every statement through it so
// they transparently join a WithTransaction scope.
func (db *DB) Executor(ctx context.Context) Executor {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return db.DB
}

// Executor interface covers both *sql.DB and *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Verify interface compliance
var _ port.TransactionManager = (*DB)(nil)
