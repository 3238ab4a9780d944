package orm

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

type testProject struct {
	ID          int64     `db:"id" dbdef:"type:bigserial;primary_key"`
	Name        string    `db:"name" dbdef:"type:varchar(255);not_null"`
	Description string    `db:"description" dbdef:"type:text;not_null;default:''"`
	CreatedAt   time.Time `db:"created_at" dbdef:"type:timestamptz;not_null;default:now();auto_now_add"`

	_ struct{} `dbdef:"table:projects"`
}

type testTask struct {
	ID         int64     `db:"id" dbdef:"type:bigserial;primary_key"`
	Title      string    `db:"title" dbdef:"type:varchar(255);not_null"`
	ProjectID  int64     `db:"project_id" dbdef:"type:bigint;not_null;foreign_key:projects.id;on_delete:CASCADE"`
	AssigneeID *int64    `db:"assignee_id" dbdef:"type:bigint;foreign_key:users.id;on_delete:SET NULL"`
	CreatedAt  time.Time `db:"created_at" dbdef:"type:timestamptz;not_null;default:now();auto_now_add"`
	UpdatedAt  time.Time `db:"updated_at" dbdef:"type:timestamptz;not_null;default:now();auto_now"`

	_ struct{} `dbdef:"table:tasks"`
}

var projectColumns = []string{"id", "name", "description", "created_at"}

var taskColumns = []string{"id", "title", "project_id", "assignee_id", "created_at", "updated_at"}

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "postgres"), mock
}

func newTestRepository[T any](t *testing.T, db DBExecutor, middleware ...QueryMiddleware) *Repository[T] {
	t.Helper()

	repo, err := NewRepository[T](db, middleware...)
	require.NoError(t, err)
	repo.SetClock(func() time.Time { return fixedNow })
	return repo
}
