package orm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Common errors
var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidStruct   = errors.New("invalid struct type")
	ErrNoPrimaryKey    = errors.New("no primary key defined")
	ErrDuplicateKey    = errors.New("duplicate key violation")
	ErrForeignKey      = errors.New("foreign key violation")
	ErrRestricted      = errors.New("delete restricted by referencing rows")
	ErrCheckConstraint = errors.New("check constraint violation")
	ErrNotNull         = errors.New("not null constraint violation")
	ErrTimeout         = errors.New("operation timeout")
	ErrCanceled        = errors.New("operation canceled")
)

// PostgreSQL SQLSTATE codes for integrity violations.
const (
	codeNotNull    = "23502"
	codeForeignKey = "23503"
	codeUnique     = "23505"
	codeCheck      = "23514"
	codeRestrict   = "23001"
)

// Error provides detailed error information
type Error struct {
	Op         string // Operation that failed
	Table      string // Table involved
	Err        error  // Underlying error
	Constraint string // Constraint name (if applicable)
	Column     string // Column name (if applicable)
	Detail     string // Server detail message (if applicable)
}

func (e *Error) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("orm: %s", e.Op))

	if e.Table != "" {
		parts = append(parts, fmt.Sprintf("table=%s", e.Table))
	}

	if e.Column != "" {
		parts = append(parts, fmt.Sprintf("column=%s", e.Column))
	}

	if e.Constraint != "" {
		parts = append(parts, fmt.Sprintf("constraint=%s", e.Constraint))
	}

	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// restrictedError reports a delete blocked by a foreign key. It matches both
// ErrRestricted and ErrForeignKey.
type restrictedError struct{}

func (restrictedError) Error() string { return ErrRestricted.Error() }

func (restrictedError) Is(target error) bool {
	return target == ErrRestricted || target == ErrForeignKey
}

// ParsePostgreSQLError converts PostgreSQL errors to ORM errors
func ParsePostgreSQLError(err error, op, table string) error {
	if err == nil {
		return nil
	}

	var ormErr *Error
	if errors.As(err, &ormErr) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Op: op, Table: table, Err: ErrNotFound}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Op: op, Table: table, Err: ErrTimeout}
	}

	if errors.Is(err, context.Canceled) {
		return &Error{Op: op, Table: table, Err: ErrCanceled}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fromPQError(pqErr, op, table)
	}

	return fromMessage(err, op, table)
}

func fromPQError(pqErr *pq.Error, op, table string) error {
	e := &Error{
		Op:         op,
		Table:      table,
		Constraint: pqErr.Constraint,
		Column:     pqErr.Column,
		Detail:     pqErr.Detail,
	}

	switch string(pqErr.Code) {
	case codeUnique:
		e.Err = ErrDuplicateKey
	case codeForeignKey:
		if op == "delete" {
			e.Err = restrictedError{}
		} else {
			e.Err = ErrForeignKey
		}
	case codeRestrict:
		e.Err = restrictedError{}
	case codeNotNull:
		e.Err = ErrNotNull
	case codeCheck:
		e.Err = ErrCheckConstraint
	default:
		e.Err = pqErr
	}

	return e
}

// fromMessage handles drivers or wrappers that only expose the message text.
func fromMessage(err error, op, table string) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "duplicate key value violates unique constraint"):
		return &Error{Op: op, Table: table, Err: ErrDuplicateKey, Constraint: extractConstraintName(errStr)}
	case strings.Contains(errStr, "violates foreign key constraint"):
		if op == "delete" {
			return &Error{Op: op, Table: table, Err: restrictedError{}, Constraint: extractConstraintName(errStr)}
		}
		return &Error{Op: op, Table: table, Err: ErrForeignKey, Constraint: extractConstraintName(errStr)}
	case strings.Contains(errStr, "violates not-null constraint"):
		return &Error{Op: op, Table: table, Err: ErrNotNull, Column: extractColumnName(errStr)}
	case strings.Contains(errStr, "violates check constraint"):
		return &Error{Op: op, Table: table, Err: ErrCheckConstraint, Constraint: extractConstraintName(errStr)}
	}

	return &Error{Op: op, Table: table, Err: err}
}

func extractConstraintName(errStr string) string {
	idx := strings.Index(errStr, "constraint \"")
	if idx == -1 {
		return ""
	}
	start := idx + len("constraint \"")
	end := strings.Index(errStr[start:], "\"")
	if end == -1 {
		return ""
	}
	return errStr[start : start+end]
}

func extractColumnName(errStr string) string {
	columnIdx := strings.Index(errStr, "column \"")
	if columnIdx == -1 {
		return ""
	}
	start := columnIdx + len("column \"")
	end := strings.Index(errStr[start:], "\"")
	if end == -1 {
		return ""
	}
	return errStr[start : start+end]
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}

	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// For returns the messages recorded against field.
func (e ValidationErrors) For(field string) []string {
	var out []string
	for _, err := range e {
		if err.Field == field {
			out = append(out, err.Message)
		}
	}
	return out
}

// IsConstraintError checks if an error is a constraint violation
func IsConstraintError(err error) bool {
	return errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrForeignKey) ||
		errors.Is(err, ErrCheckConstraint) ||
		errors.Is(err, ErrNotNull)
}

// GetConstraintName extracts the constraint name from an error
func GetConstraintName(err error) string {
	var ormErr *Error
	if errors.As(err, &ormErr) {
		return ormErr.Constraint
	}
	return ""
}
