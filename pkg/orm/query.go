package orm

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
)

// Query provides a fluent interface for building queries
type Query[T any] struct {
	repo        *Repository[T]
	ctx         context.Context
	whereClause []squirrel.Sqlizer
	orderBy     []string
	limit       *uint64
	offset      *uint64
}

// Query starts a query over the repository table.
func (r *Repository[T]) Query(ctx context.Context) *Query[T] {
	return &Query[T]{repo: r, ctx: ctx}
}

// Where adds conditions, all of which must hold.
func (q *Query[T]) Where(conditions ...Condition) *Query[T] {
	for _, c := range conditions {
		if c.condition != nil {
			q.whereClause = append(q.whereClause, c.condition)
		}
	}
	return q
}

// OrderBy adds ORDER BY expressions such as "name ASC".
func (q *Query[T]) OrderBy(expressions ...string) *Query[T] {
	q.orderBy = append(q.orderBy, expressions...)
	return q
}

func (q *Query[T]) Limit(limit uint64) *Query[T] {
	q.limit = &limit
	return q
}

func (q *Query[T]) Offset(offset uint64) *Query[T] {
	q.offset = &offset
	return q
}

func (q *Query[T]) buildSelect() squirrel.SelectBuilder {
	query := squirrel.Select(q.repo.Columns()...).
		From(q.repo.TableName()).
		PlaceholderFormat(squirrel.Dollar)

	for _, cond := range q.whereClause {
		query = query.Where(cond)
	}
	if len(q.orderBy) > 0 {
		query = query.OrderBy(q.orderBy...)
	}
	if q.limit != nil {
		query = query.Limit(*q.limit)
	}
	if q.offset != nil {
		query = query.Offset(*q.offset)
	}
	return query
}

// Find executes the query and returns all matching records
func (q *Query[T]) Find() ([]T, error) {
	table := q.repo.TableName()
	sqlQuery, args, err := q.buildSelect().ToSql()
	if err != nil {
		return nil, &Error{Op: string(OpFind), Table: table, Err: fmt.Errorf("failed to build query: %w", err)}
	}

	var records []T
	err = q.repo.run(q.ctx, OpFind, nil, sqlQuery, args, func(ctx context.Context) error {
		return q.repo.db.SelectContext(ctx, &records, sqlQuery, args...)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// First returns the first matching record or ErrNotFound.
func (q *Query[T]) First() (*T, error) {
	q.Limit(1)
	table := q.repo.TableName()
	sqlQuery, args, err := q.buildSelect().ToSql()
	if err != nil {
		return nil, &Error{Op: string(OpFind), Table: table, Err: fmt.Errorf("failed to build query: %w", err)}
	}

	var record T
	err = q.repo.run(q.ctx, OpFind, nil, sqlQuery, args, func(ctx context.Context) error {
		return q.repo.db.GetContext(ctx, &record, sqlQuery, args...)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Count returns the number of matching records, ignoring limit and offset.
func (q *Query[T]) Count() (int64, error) {
	table := q.repo.TableName()
	query := squirrel.Select("COUNT(*)").
		From(table).
		PlaceholderFormat(squirrel.Dollar)
	for _, cond := range q.whereClause {
		query = query.Where(cond)
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return 0, &Error{Op: string(OpCount), Table: table, Err: fmt.Errorf("failed to build count query: %w", err)}
	}

	var count int64
	err = q.repo.run(q.ctx, OpCount, nil, sqlQuery, args, func(ctx context.Context) error {
		return q.repo.db.GetContext(ctx, &count, sqlQuery, args...)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists reports whether at least one record matches.
func (q *Query[T]) Exists() (bool, error) {
	count, err := q.Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes all matching records and returns the affected row count.
func (q *Query[T]) Delete() (int64, error) {
	table := q.repo.TableName()
	query := squirrel.Delete(table).PlaceholderFormat(squirrel.Dollar)
	for _, cond := range q.whereClause {
		query = query.Where(cond)
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return 0, &Error{Op: string(OpDelete), Table: table, Err: fmt.Errorf("failed to build delete query: %w", err)}
	}

	var affected int64
	err = q.repo.run(q.ctx, OpDelete, nil, sqlQuery, args, func(ctx context.Context) error {
		result, err := q.repo.db.ExecContext(ctx, sqlQuery, args...)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// Update sets columns on all matching records and returns the affected row count.
func (q *Query[T]) Update(set map[string]interface{}) (int64, error) {
	table := q.repo.TableName()
	if len(set) == 0 {
		return 0, nil
	}
	for name := range set {
		if _, ok := q.repo.metadata.Column(name); !ok {
			return 0, &Error{Op: string(OpUpdate), Table: table, Column: name, Err: fmt.Errorf("unknown column")}
		}
	}

	query := squirrel.Update(table).SetMap(set).PlaceholderFormat(squirrel.Dollar)
	for _, cond := range q.whereClause {
		query = query.Where(cond)
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return 0, &Error{Op: string(OpUpdate), Table: table, Err: fmt.Errorf("failed to build update query: %w", err)}
	}

	var affected int64
	err = q.repo.run(q.ctx, OpUpdate, nil, sqlQuery, args, func(ctx context.Context) error {
		result, err := q.repo.db.ExecContext(ctx, sqlQuery, args...)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}
