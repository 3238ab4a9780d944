package orm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCollector struct {
	calls []string
}

func (c *recordingCollector) RecordOperation(operation, table string, duration time.Duration, failed bool) {
	c.calls = append(c.calls, fmt.Sprintf("%s:%s:%t", operation, table, failed))
}

func TestMiddlewareOrder(t *testing.T) {
	var order []string
	trace := func(name string) QueryMiddleware {
		return func(next QueryMiddlewareFunc) QueryMiddlewareFunc {
			return func(ctx *MiddlewareContext) error {
				order = append(order, name+":before")
				err := next(ctx)
				order = append(order, name+":after")
				return err
			}
		}
	}

	mm := newMiddlewareManager(trace("outer"), trace("inner"))
	err := mm.ExecuteMiddleware(&MiddlewareContext{}, func(ctx *MiddlewareContext) error {
		order = append(order, "exec")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer:before", "inner:before", "exec", "inner:after", "outer:after"}, order)
}

func TestLoggingAndMetricsMiddleware(t *testing.T) {
	db, mock := newMockDB(t)

	var debugMsgs, failureMsgs []string
	logFn := func(dst *[]string) LogFunc {
		return func(msg string, keysAndValues ...interface{}) {
			*dst = append(*dst, msg)
		}
	}
	collector := &recordingCollector{}

	repo := newTestRepository[testTask](t, db,
		LoggingMiddleware(logFn(&debugMsgs), logFn(&failureMsgs)),
		MetricsMiddleware(collector),
	)

	mock.ExpectExec(`DELETE FROM tasks`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM tasks`).WillReturnError(errors.New("boom"))

	require.NoError(t, repo.Delete(context.Background(), int64(1)))
	require.Error(t, repo.Delete(context.Background(), int64(2)))

	assert.Equal(t, []string{"query executed"}, debugMsgs)
	assert.Equal(t, []string{"query failed"}, failureMsgs)
	assert.Equal(t, []string{"delete:tasks:false", "delete:tasks:true"}, collector.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMiddlewareSeesDuration(t *testing.T) {
	db, mock := newMockDB(t)

	var seen *MiddlewareContext
	capture := func(next QueryMiddlewareFunc) QueryMiddlewareFunc {
		return func(ctx *MiddlewareContext) error {
			err := next(ctx)
			seen = ctx
			return err
		}
	}

	repo := newTestRepository[testProject](t, db, capture)

	mock.ExpectQuery(`SELECT COUNT`).
		WillDelayFor(5 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	_, err := repo.Query(context.Background()).Count()
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, OpCount, seen.Operation)
	assert.Equal(t, "projects", seen.TableName)
	assert.GreaterOrEqual(t, seen.Duration, 5*time.Millisecond)
}
