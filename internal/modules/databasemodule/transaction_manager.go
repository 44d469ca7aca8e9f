package databasemodule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
)

// TransactionManager hands out units of work on a single database handle.
type TransactionManager struct {
	db  *gorm.DB
	log hclog.Logger
	mu  sync.RWMutex
}

// TransactionContext wraps a transaction for safe handling
type TransactionContext struct {
	tx      *gorm.DB
	started time.Time
	id      string
	log     hclog.Logger
}

// NewTransactionManager creates a new transaction manager. A nil logger
// discards output.
func NewTransactionManager(db *gorm.DB, log hclog.Logger) *TransactionManager {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &TransactionManager{
		db:  db,
		log: log,
	}
}

// DB returns the handle transactions are started on.
func (tm *TransactionManager) DB() *gorm.DB {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.db
}

// BeginTransaction starts a new database transaction
func (tm *TransactionManager) BeginTransaction(ctx context.Context) (*TransactionContext, error) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	tx := tm.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	txCtx := &TransactionContext{
		tx:      tx,
		started: time.Now(),
		id:      "tx_" + uuid.NewString(),
		log:     tm.log,
	}

	tm.log.Debug("started transaction", "id", txCtx.id)
	return txCtx, nil
}

// Commit commits the transaction
func (tc *TransactionContext) Commit() error {
	if tc.tx == nil {
		return fmt.Errorf("transaction context is nil")
	}

	if err := tc.tx.Commit().Error; err != nil {
		tc.log.Error("failed to commit transaction", "id", tc.id, "error", err)
		tc.tx = nil
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	tc.log.Debug("committed transaction", "id", tc.id, "duration", time.Since(tc.started))
	tc.tx = nil
	return nil
}

// Rollback rolls back the transaction
func (tc *TransactionContext) Rollback() error {
	if tc.tx == nil {
		return fmt.Errorf("transaction context is nil")
	}

	if err := tc.tx.Rollback().Error; err != nil {
		tc.log.Error("failed to rollback transaction", "id", tc.id, "error", err)
		tc.tx = nil
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	tc.log.Debug("rolled back transaction", "id", tc.id, "duration", time.Since(tc.started))
	tc.tx = nil
	return nil
}

// DB returns the transaction database instance
func (tc *TransactionContext) DB() *gorm.DB {
	return tc.tx
}

// ID returns the transaction ID
func (tc *TransactionContext) ID() string {
	return tc.id
}

// IsActive checks if the transaction is still active
func (tc *TransactionContext) IsActive() bool {
	return tc.tx != nil
}

// WithTransaction runs fn inside a transaction. The transaction commits when
// fn returns nil and rolls back when fn fails or panics; a panic is re-raised
// after the rollback.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) (err error) {
	txCtx, err := tm.BeginTransaction(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			if txCtx.IsActive() {
				txCtx.Rollback()
			}
			panic(r)
		}
	}()

	if err := fn(txCtx.DB()); err != nil {
		if rollbackErr := txCtx.Rollback(); rollbackErr != nil {
			tm.log.Error("failed to rollback transaction after error", "id", txCtx.ID(), "error", rollbackErr)
		}
		return err
	}

	return txCtx.Commit()
}

// Stats reports connection pool usage.
func (tm *TransactionManager) Stats() map[string]interface{} {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	stats := make(map[string]interface{})
	if sqlDB, err := tm.db.DB(); err == nil {
		dbStats := sqlDB.Stats()
		stats["open_connections"] = dbStats.OpenConnections
		stats["in_use"] = dbStats.InUse
		stats["idle"] = dbStats.Idle
	}
	return stats
}
