package orm

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
)

// Repository provides CRUD access to the table backing T.
type Repository[T any] struct {
	db                DBExecutor
	metadata          *ModelMetadata
	middlewareManager *middlewareManager
	now               func() time.Time
}

// NewRepository parses the tags of T and binds the repository to db.
func NewRepository[T any](db DBExecutor, middleware ...QueryMiddleware) (*Repository[T], error) {
	metadata, err := MetadataFor[T]()
	if err != nil {
		return nil, err
	}

	return &Repository[T]{
		db:                db,
		metadata:          metadata,
		middlewareManager: newMiddlewareManager(middleware...),
		now:               time.Now,
	}, nil
}

func (r *Repository[T]) Metadata() *ModelMetadata {
	return r.metadata
}

func (r *Repository[T]) TableName() string {
	return r.metadata.TableName
}

// Columns returns the selectable column names.
func (r *Repository[T]) Columns() []string {
	return r.metadata.ColumnNames()
}

func (r *Repository[T]) AddMiddleware(middleware QueryMiddleware) {
	r.middlewareManager.AddMiddleware(middleware)
}

// SetClock replaces the time source used for auto_now columns.
func (r *Repository[T]) SetClock(now func() time.Time) {
	r.now = now
}

// Now returns the current time from the repository clock, in UTC.
func (r *Repository[T]) Now() time.Time {
	return r.now().UTC()
}

// WithExecutor returns a copy of the repository bound to exec, typically a transaction.
func (r *Repository[T]) WithExecutor(exec DBExecutor) *Repository[T] {
	clone := *r
	clone.db = exec
	return &clone
}

func (r *Repository[T]) run(ctx context.Context, op OperationType, record interface{}, query string, args []interface{}, exec func(context.Context) error) error {
	mctx := &MiddlewareContext{
		Operation: op,
		TableName: r.metadata.TableName,
		Record:    record,
		Query:     query,
		Args:      args,
		StartTime: time.Now(),
		Context:   ctx,
		Metadata:  make(map[string]interface{}),
	}

	err := r.middlewareManager.ExecuteMiddleware(mctx, func(mc *MiddlewareContext) error {
		start := time.Now()
		err := exec(mc.Context)
		mc.Duration = time.Since(start)
		return err
	})

	return ParsePostgreSQLError(err, string(op), r.metadata.TableName)
}

func (r *Repository[T]) fieldValue(record *T, col *ColumnMetadata) reflect.Value {
	return reflect.ValueOf(record).Elem().Field(col.FieldIndex)
}

// stampCreate fills auto_now_add and auto_now columns.
func (r *Repository[T]) stampCreate(record *T) {
	now := r.Now()
	for _, col := range r.metadata.Columns {
		if col.AutoNow || (col.AutoNowAdd && r.fieldValue(record, col).IsZero()) {
			r.fieldValue(record, col).Set(reflect.ValueOf(now))
		}
	}
}

func (r *Repository[T]) stampUpdate(record *T) {
	now := r.Now()
	for _, col := range r.metadata.Columns {
		if col.AutoNow {
			r.fieldValue(record, col).Set(reflect.ValueOf(now))
		}
	}
}

// insertColumns omits a zero primary key so the database assigns it.
func (r *Repository[T]) insertColumns(record *T) []*ColumnMetadata {
	cols := make([]*ColumnMetadata, 0, len(r.metadata.Columns))
	for _, col := range r.metadata.Columns {
		if col.PrimaryKey && r.fieldValue(record, col).IsZero() {
			continue
		}
		cols = append(cols, col)
	}
	return cols
}

func (r *Repository[T]) returning() string {
	return "RETURNING " + strings.Join(r.metadata.ColumnNames(), ", ")
}

// Create inserts record and scans the stored row (including generated keys) back into it.
func (r *Repository[T]) Create(ctx context.Context, record *T) error {
	if record == nil {
		return &Error{Op: string(OpCreate), Table: r.metadata.TableName, Err: ErrInvalidStruct}
	}

	r.stampCreate(record)

	cols := r.insertColumns(record)
	names := make([]string, len(cols))
	values := make([]interface{}, len(cols))
	for i, col := range cols {
		names[i] = col.Name
		values[i] = r.fieldValue(record, col).Interface()
	}

	query, args, err := squirrel.Insert(r.metadata.TableName).
		Columns(names...).
		Values(values...).
		Suffix(r.returning()).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return &Error{Op: string(OpCreate), Table: r.metadata.TableName, Err: fmt.Errorf("failed to build insert: %w", err)}
	}

	return r.run(ctx, OpCreate, record, query, args, func(ctx context.Context) error {
		return r.db.QueryRowxContext(ctx, query, args...).StructScan(record)
	})
}

// CreateMany inserts all records with one statement.
func (r *Repository[T]) CreateMany(ctx context.Context, records []*T) error {
	if len(records) == 0 {
		return nil
	}

	for _, record := range records {
		r.stampCreate(record)
	}

	var cols []*ColumnMetadata
	for _, col := range r.metadata.Columns {
		if col.PrimaryKey {
			continue
		}
		cols = append(cols, col)
	}

	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}

	builder := squirrel.Insert(r.metadata.TableName).
		Columns(names...).
		Suffix(r.returning()).
		PlaceholderFormat(squirrel.Dollar)

	for _, record := range records {
		values := make([]interface{}, len(cols))
		for i, col := range cols {
			values[i] = r.fieldValue(record, col).Interface()
		}
		builder = builder.Values(values...)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return &Error{Op: string(OpCreate), Table: r.metadata.TableName, Err: fmt.Errorf("failed to build insert: %w", err)}
	}

	return r.run(ctx, OpCreate, records, query, args, func(ctx context.Context) error {
		rows, err := r.db.QueryxContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		i := 0
		for rows.Next() {
			if i >= len(records) {
				return fmt.Errorf("insert returned more rows than records")
			}
			if err := rows.StructScan(records[i]); err != nil {
				return err
			}
			i++
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if i != len(records) {
			return fmt.Errorf("insert returned %d rows for %d records", i, len(records))
		}
		return nil
	})
}

// FindByID loads the record with the given primary key.
func (r *Repository[T]) FindByID(ctx context.Context, id interface{}) (*T, error) {
	pk := r.metadata.PrimaryKey.Name
	return r.Query(ctx).Where(Condition{squirrel.Eq{pk: id}}).First()
}

// Update saves every column except the primary key and auto_now_add columns.
func (r *Repository[T]) Update(ctx context.Context, record *T) error {
	var columns []string
	for _, col := range r.metadata.Columns {
		if col.PrimaryKey || col.AutoNowAdd {
			continue
		}
		columns = append(columns, col.Name)
	}
	return r.update(ctx, record, columns)
}

// UpdateColumns saves only the named columns; auto_now columns are always refreshed.
func (r *Repository[T]) UpdateColumns(ctx context.Context, record *T, columns ...string) error {
	seen := make(map[string]bool, len(columns))
	var names []string
	for _, name := range columns {
		col, ok := r.metadata.Column(name)
		if !ok {
			return &Error{Op: string(OpUpdate), Table: r.metadata.TableName, Column: name, Err: fmt.Errorf("unknown column")}
		}
		if col.PrimaryKey || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	for _, col := range r.metadata.Columns {
		if col.AutoNow && !seen[col.Name] {
			names = append(names, col.Name)
		}
	}

	return r.update(ctx, record, names)
}

func (r *Repository[T]) update(ctx context.Context, record *T, columns []string) error {
	if record == nil {
		return &Error{Op: string(OpUpdate), Table: r.metadata.TableName, Err: ErrInvalidStruct}
	}
	if len(columns) == 0 {
		return nil
	}

	r.stampUpdate(record)

	pk := r.metadata.PrimaryKey
	builder := squirrel.Update(r.metadata.TableName).PlaceholderFormat(squirrel.Dollar)
	for _, name := range columns {
		col, _ := r.metadata.Column(name)
		builder = builder.Set(name, r.fieldValue(record, col).Interface())
	}

	query, args, err := builder.
		Where(squirrel.Eq{pk.Name: r.fieldValue(record, pk).Interface()}).
		Suffix(r.returning()).
		ToSql()
	if err != nil {
		return &Error{Op: string(OpUpdate), Table: r.metadata.TableName, Err: fmt.Errorf("failed to build update: %w", err)}
	}

	return r.run(ctx, OpUpdate, record, query, args, func(ctx context.Context) error {
		return r.db.QueryRowxContext(ctx, query, args...).StructScan(record)
	})
}

// Delete removes the row with the given primary key.
func (r *Repository[T]) Delete(ctx context.Context, id interface{}) error {
	n, err := r.Query(ctx).Where(Condition{squirrel.Eq{r.metadata.PrimaryKey.Name: id}}).Delete()
	if err != nil {
		return err
	}
	if n == 0 {
		return &Error{Op: string(OpDelete), Table: r.metadata.TableName, Err: ErrNotFound}
	}
	return nil
}

// DeleteRecord removes record by its primary key.
func (r *Repository[T]) DeleteRecord(ctx context.Context, record *T) error {
	if record == nil {
		return &Error{Op: string(OpDelete), Table: r.metadata.TableName, Err: ErrInvalidStruct}
	}
	return r.Delete(ctx, r.fieldValue(record, r.metadata.PrimaryKey).Interface())
}

// GetOrCreate returns the first row matching cond, or inserts build() when none exists.
// The boolean reports whether a row was created.
func (r *Repository[T]) GetOrCreate(ctx context.Context, cond Condition, build func() *T) (*T, bool, error) {
	existing, err := r.Query(ctx).Where(cond).OrderBy(r.metadata.PrimaryKey.Name + " ASC").First()
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	record := build()
	if err := r.Create(ctx, record); err != nil {
		return nil, false, err
	}
	return record, true, nil
}
