package orm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestParsePostgreSQLError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		op   string
		want error
	}{
		{"no rows", sql.ErrNoRows, "find", ErrNotFound},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), "find", ErrTimeout},
		{"canceled", context.Canceled, "find", ErrCanceled},
		{"unique", &pq.Error{Code: "23505"}, "create", ErrDuplicateKey},
		{"fk on insert", &pq.Error{Code: "23503"}, "create", ErrForeignKey},
		{"fk on delete", &pq.Error{Code: "23503"}, "delete", ErrRestricted},
		{"restrict", &pq.Error{Code: "23001"}, "delete", ErrRestricted},
		{"not null", &pq.Error{Code: "23502"}, "update", ErrNotNull},
		{"check", &pq.Error{Code: "23514"}, "update", ErrCheckConstraint},
		{"message fallback", errors.New(`ERROR: update or delete on table "stages" violates foreign key constraint "tasks_stage_id_fkey"`), "delete", ErrRestricted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParsePostgreSQLError(tt.err, tt.op, "stages")
			assert.ErrorIs(t, err, tt.want)

			var ormErr *Error
			assert.True(t, errors.As(err, &ormErr))
			assert.Equal(t, tt.op, ormErr.Op)
		})
	}

	assert.NoError(t, ParsePostgreSQLError(nil, "find", "stages"))
}

func TestErrorFormatting(t *testing.T) {
	err := &Error{Op: "delete", Table: "stages", Constraint: "tasks_stage_id_fkey", Err: restrictedError{}}
	assert.Equal(t, "orm: delete: table=stages: constraint=tasks_stage_id_fkey: delete restricted by referencing rows", err.Error())
	assert.True(t, IsConstraintError(err))
	assert.Equal(t, "tasks_stage_id_fkey", GetConstraintName(fmt.Errorf("outer: %w", err)))
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "name", Message: "This field is required."},
		{Field: "order_no", Message: "Ensure this value is greater than or equal to 0."},
		{Field: "name", Message: "Ensure this value has at most 50 characters."},
	}

	assert.Len(t, errs.For("name"), 2)
	assert.Empty(t, errs.For("missing"))
	assert.Contains(t, errs.Error(), "order_no")
}
