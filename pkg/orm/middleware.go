package orm

import (
	"context"
	"time"
)

// OperationType represents different types of database operations
type OperationType string

const (
	OpCreate OperationType = "create"
	OpUpdate OperationType = "update"
	OpDelete OperationType = "delete"
	OpFind   OperationType = "find"
	OpCount  OperationType = "count"
)

// MiddlewareContext contains information passed to middleware
type MiddlewareContext struct {
	Operation OperationType
	TableName string
	Record    interface{}
	Query     string
	Args      []interface{}
	StartTime time.Time
	Duration  time.Duration
	Context   context.Context
	Metadata  map[string]interface{}
}

// QueryMiddlewareFunc executes (or continues executing) a statement.
type QueryMiddlewareFunc func(ctx *MiddlewareContext) error

// QueryMiddleware wraps statement execution.
type QueryMiddleware func(next QueryMiddlewareFunc) QueryMiddlewareFunc

// middlewareManager manages database middleware
type middlewareManager struct {
	middleware []QueryMiddleware
}

func newMiddlewareManager(middleware ...QueryMiddleware) *middlewareManager {
	mm := &middlewareManager{middleware: make([]QueryMiddleware, 0, len(middleware))}
	mm.middleware = append(mm.middleware, middleware...)
	return mm
}

func (mm *middlewareManager) AddMiddleware(middleware QueryMiddleware) {
	mm.middleware = append(mm.middleware, middleware)
}

func (mm *middlewareManager) ExecuteMiddleware(ctx *MiddlewareContext, finalFunc QueryMiddlewareFunc) error {
	handler := finalFunc

	for i := len(mm.middleware) - 1; i >= 0; i-- {
		handler = mm.middleware[i](handler)
	}

	return handler(ctx)
}

// LogFunc receives a message and alternating key/value pairs.
type LogFunc func(msg string, keysAndValues ...interface{})

// LoggingMiddleware logs every statement with its duration.
func LoggingMiddleware(debug, failure LogFunc) QueryMiddleware {
	return func(next QueryMiddlewareFunc) QueryMiddlewareFunc {
		return func(ctx *MiddlewareContext) error {
			err := next(ctx)

			if err != nil {
				failure("query failed",
					"operation", ctx.Operation,
					"table", ctx.TableName,
					"query", ctx.Query,
					"duration", ctx.Duration,
					"error", err)
				return err
			}

			debug("query executed",
				"operation", ctx.Operation,
				"table", ctx.TableName,
				"query", ctx.Query,
				"duration", ctx.Duration)
			return nil
		}
	}
}

// MetricsCollector receives per-statement measurements.
type MetricsCollector interface {
	RecordOperation(operation, table string, duration time.Duration, failed bool)
}

// MetricsMiddleware collects operation metrics
func MetricsMiddleware(collector MetricsCollector) QueryMiddleware {
	return func(next QueryMiddlewareFunc) QueryMiddlewareFunc {
		return func(ctx *MiddlewareContext) error {
			err := next(ctx)
			collector.RecordOperation(string(ctx.Operation), ctx.TableName, ctx.Duration, err != nil)
			return err
		}
	}
}
