package orm

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Storm is the main entry point for all ORM operations.
// It owns the connection, the current executor (DB or TX) and the
// middleware applied to every repository it creates.
type Storm struct {
	db         *sqlx.DB
	executor   DBExecutor
	middleware []QueryMiddleware
}

func NewStorm(db *sqlx.DB, middleware ...QueryMiddleware) *Storm {
	return &Storm{
		db:         db,
		executor:   db,
		middleware: middleware,
	}
}

func newStormWithExecutor(parent *Storm, executor DBExecutor) *Storm {
	return &Storm{
		db:         parent.db,
		executor:   executor,
		middleware: parent.middleware,
	}
}

// Use appends middleware for repositories registered afterwards.
func (s *Storm) Use(middleware ...QueryMiddleware) {
	s.middleware = append(s.middleware, middleware...)
}

// WithTransaction executes fn within a database transaction.
// Nested calls reuse the outer transaction.
func (s *Storm) WithTransaction(ctx context.Context, fn func(*Storm) error) (err error) {
	if s.InTransaction() {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(newStormWithExecutor(s, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// InTransaction reports whether the executor is a transaction.
func (s *Storm) InTransaction() bool {
	_, ok := s.executor.(*sqlx.Tx)
	return ok
}

// GetExecutor returns the current database executor
func (s *Storm) GetExecutor() DBExecutor {
	return s.executor
}

// GetDB returns the underlying database connection
func (s *Storm) GetDB() *sqlx.DB {
	return s.db
}

// Register creates a repository for T bound to the storm executor and middleware.
func Register[T any](s *Storm) (*Repository[T], error) {
	return NewRepository[T](s.executor, s.middleware...)
}
