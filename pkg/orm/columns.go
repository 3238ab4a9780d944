package orm

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
)

// Column represents a type-safe database column reference
type Column[T any] struct {
	Name  string
	Table string
}

// String returns the full column reference for SQL
func (c Column[T]) String() string {
	if c.Table != "" {
		return fmt.Sprintf("%s.%s", c.Table, c.Name)
	}
	return c.Name
}

func (c Column[T]) Eq(value T) Condition {
	return Condition{squirrel.Eq{c.String(): value}}
}

func (c Column[T]) NotEq(value T) Condition {
	return Condition{squirrel.NotEq{c.String(): value}}
}

// In creates an IN condition. An empty list matches nothing.
func (c Column[T]) In(values ...T) Condition {
	interfaces := make([]interface{}, len(values))
	for i, v := range values {
		interfaces[i] = v
	}
	return Condition{squirrel.Eq{c.String(): interfaces}}
}

func (c Column[T]) NotIn(values ...T) Condition {
	interfaces := make([]interface{}, len(values))
	for i, v := range values {
		interfaces[i] = v
	}
	return Condition{squirrel.NotEq{c.String(): interfaces}}
}

func (c Column[T]) IsNull() Condition {
	return Condition{squirrel.Eq{c.String(): nil}}
}

func (c Column[T]) IsNotNull() Condition {
	return Condition{squirrel.NotEq{c.String(): nil}}
}

func (c Column[T]) Asc() string {
	return c.String() + " ASC"
}

func (c Column[T]) Desc() string {
	return c.String() + " DESC"
}

// ComparableColumn provides comparison operations for comparable types
type ComparableColumn[T Comparable] struct {
	Column[T]
}

// Comparable types that support comparison operators
type Comparable interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 |
		~string |
		time.Time
}

func (c ComparableColumn[T]) Gt(value T) Condition {
	return Condition{squirrel.Gt{c.String(): value}}
}

func (c ComparableColumn[T]) Gte(value T) Condition {
	return Condition{squirrel.GtOrEq{c.String(): value}}
}

func (c ComparableColumn[T]) Lt(value T) Condition {
	return Condition{squirrel.Lt{c.String(): value}}
}

func (c ComparableColumn[T]) Lte(value T) Condition {
	return Condition{squirrel.LtOrEq{c.String(): value}}
}

// Between is inclusive on the lower bound and exclusive on the upper bound.
func (c ComparableColumn[T]) Between(min, max T) Condition {
	return Condition{squirrel.And{
		squirrel.GtOrEq{c.String(): min},
		squirrel.Lt{c.String(): max},
	}}
}

// StringColumn provides string-specific operations
type StringColumn struct {
	Column[string]
}

func (c StringColumn) Like(pattern string) Condition {
	return Condition{squirrel.Like{c.String(): pattern}}
}

// ILike creates a case-insensitive LIKE condition (PostgreSQL)
func (c StringColumn) ILike(pattern string) Condition {
	return Condition{squirrel.ILike{c.String(): pattern}}
}

func (c StringColumn) StartsWith(prefix string) Condition {
	return c.Like(EscapeLike(prefix) + "%")
}

func (c StringColumn) Contains(substring string) Condition {
	return c.Like("%" + EscapeLike(substring) + "%")
}

// IContains matches the substring case-insensitively.
func (c StringColumn) IContains(substring string) Condition {
	return c.ILike("%" + EscapeLike(substring) + "%")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so user input matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// NumericColumn provides numeric-specific operations
type NumericColumn[T Numeric] struct {
	ComparableColumn[T]
}

// Numeric types for mathematical operations
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// TimeColumn provides time-specific operations
type TimeColumn struct {
	ComparableColumn[time.Time]
}

func (c TimeColumn) After(t time.Time) Condition {
	return c.Gt(t)
}

func (c TimeColumn) Before(t time.Time) Condition {
	return c.Lt(t)
}

func (c TimeColumn) Since(t time.Time) Condition {
	return c.Gte(t)
}

// Today matches the calendar day containing now.
func (c TimeColumn) Today(now time.Time) Condition {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return c.Between(start, start.AddDate(0, 0, 1))
}

// LastNDays matches from midnight n-1 days before now through the end of today.
func (c TimeColumn) LastNDays(now time.Time, days int) Condition {
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return c.Between(end.AddDate(0, 0, -days), end)
}

func (c TimeColumn) ThisMonth(now time.Time) Condition {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return c.Between(start, start.AddDate(0, 1, 0))
}

func (c TimeColumn) ThisYear(now time.Time) Condition {
	start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	return c.Between(start, start.AddDate(1, 0, 0))
}

// BoolColumn provides boolean-specific operations
type BoolColumn struct {
	Column[bool]
}

func (c BoolColumn) IsTrue() Condition {
	return c.Eq(true)
}

func (c BoolColumn) IsFalse() Condition {
	return c.Eq(false)
}

// Condition wraps squirrel conditions for type safety
type Condition struct {
	condition squirrel.Sqlizer
}

// Expr builds a condition from a raw SQL fragment with ? placeholders.
func Expr(sql string, args ...interface{}) Condition {
	return Condition{squirrel.Expr(sql, args...)}
}

func (c Condition) And(other Condition) Condition {
	return Condition{squirrel.And{c.condition, other.condition}}
}

func (c Condition) Or(other Condition) Condition {
	return Condition{squirrel.Or{c.condition, other.condition}}
}

func (c Condition) Not() Condition {
	return Condition{squirrel.Expr("NOT (?)", c.condition)}
}

// ToSqlizer returns the underlying squirrel condition
func (c Condition) ToSqlizer() squirrel.Sqlizer {
	return c.condition
}

func And(conditions ...Condition) Condition {
	sqlizers := make(squirrel.And, len(conditions))
	for i, c := range conditions {
		sqlizers[i] = c.condition
	}
	return Condition{sqlizers}
}

func Or(conditions ...Condition) Condition {
	sqlizers := make(squirrel.Or, len(conditions))
	for i, c := range conditions {
		sqlizers[i] = c.condition
	}
	return Condition{sqlizers}
}

func Not(condition Condition) Condition {
	return condition.Not()
}
