package seed

import (
	"context"
	"database/sql"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/taskboard/internal/models"
)

var (
	projectColumns = []string{"id", "name", "description", "created_at"}
	stageColumns   = []string{"id", "name", "order_no"}
	taskColumns    = []string{"id", "title", "description", "project_id", "assignee_id", "stage_id", "created_at", "updated_at"}
	userColumns    = []string{"id", "username", "email", "password_hash", "is_staff", "is_superuser", "is_active", "date_joined", "last_login"}
	studentColumns = []string{"id", "first_name", "last_name", "nickname"}

	seededAt = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
)

func newSeeder(t *testing.T) (*Seeder, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	storm, err := models.NewStorm(sqlx.NewDb(db, "postgres"))
	require.NoError(t, err)

	return NewSeeder(storm, rand.New(rand.NewPCG(1, 2))), mock
}

func TestFixturesIdempotent(t *testing.T) {
	seeder, mock := newSeeder(t)
	ctx := context.Background()

	// First run against an empty database with one user.
	mock.ExpectQuery(`SELECT .* FROM projects WHERE projects.name = \$1 ORDER BY id ASC LIMIT 1`).
		WithArgs(ProjectName).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO projects`).
		WithArgs(ProjectName, ProjectDescription, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(projectColumns).AddRow(1, ProjectName, ProjectDescription, seededAt))

	mock.ExpectQuery(`SELECT .* FROM stages WHERE stages.name = \$1`).
		WithArgs(TodoStage).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO stages \(name,order_no\)`).
		WithArgs(TodoStage, int32(1)).
		WillReturnRows(sqlmock.NewRows(stageColumns).AddRow(1, TodoStage, 1))

	mock.ExpectQuery(`SELECT .* FROM stages WHERE stages.name = \$1`).
		WithArgs(InProgressStage).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO stages \(name,order_no\)`).
		WithArgs(InProgressStage, int32(2)).
		WillReturnRows(sqlmock.NewRows(stageColumns).AddRow(2, InProgressStage, 2))

	mock.ExpectQuery(`SELECT .* FROM tasks WHERE tasks.title = \$1`).
		WithArgs(TaskTitle).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO tasks \(title,description,project_id,assignee_id,stage_id,created_at,updated_at\)`).
		WithArgs(TaskTitle, "", int64(1), nil, int64(1), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(taskColumns).AddRow(1, TaskTitle, "", 1, nil, 1, seededAt, seededAt))

	mock.ExpectQuery(`SELECT .* FROM users ORDER BY users.id ASC LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(5, "admin", "", "hash", true, true, true, seededAt, nil))
	mock.ExpectQuery(`UPDATE tasks SET assignee_id = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(int64(5), sqlmock.AnyArg(), int64(1)).
		WillReturnRows(sqlmock.NewRows(taskColumns).AddRow(1, TaskTitle, "", 1, 5, 1, seededAt, seededAt))

	first, err := seeder.Fixtures(ctx)
	require.NoError(t, err)
	assert.Len(t, first.Created, 4)
	assert.True(t, first.AssigneeChanged)
	require.NotNil(t, first.Task.AssigneeID)
	assert.Equal(t, int64(5), *first.Task.AssigneeID)

	// Second run finds everything in place and writes nothing.
	mock.ExpectQuery(`SELECT .* FROM projects`).WithArgs(ProjectName).
		WillReturnRows(sqlmock.NewRows(projectColumns).AddRow(1, ProjectName, ProjectDescription, seededAt))
	mock.ExpectQuery(`SELECT .* FROM stages`).WithArgs(TodoStage).
		WillReturnRows(sqlmock.NewRows(stageColumns).AddRow(1, TodoStage, 1))
	mock.ExpectQuery(`SELECT .* FROM stages`).WithArgs(InProgressStage).
		WillReturnRows(sqlmock.NewRows(stageColumns).AddRow(2, InProgressStage, 2))
	mock.ExpectQuery(`SELECT .* FROM tasks`).WithArgs(TaskTitle).
		WillReturnRows(sqlmock.NewRows(taskColumns).AddRow(1, TaskTitle, "", 1, 5, 1, seededAt, seededAt))

	second, err := seeder.Fixtures(ctx)
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.False(t, second.AssigneeChanged)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFixturesWithoutUsers(t *testing.T) {
	seeder, mock := newSeeder(t)

	mock.ExpectQuery(`SELECT .* FROM projects`).
		WillReturnRows(sqlmock.NewRows(projectColumns).AddRow(1, ProjectName, ProjectDescription, seededAt))
	mock.ExpectQuery(`SELECT .* FROM stages`).
		WillReturnRows(sqlmock.NewRows(stageColumns).AddRow(1, TodoStage, 1))
	mock.ExpectQuery(`SELECT .* FROM stages`).
		WillReturnRows(sqlmock.NewRows(stageColumns).AddRow(2, InProgressStage, 2))
	mock.ExpectQuery(`SELECT .* FROM tasks`).
		WillReturnRows(sqlmock.NewRows(taskColumns).AddRow(1, TaskTitle, "", 1, nil, 1, seededAt, seededAt))
	mock.ExpectQuery(`SELECT .* FROM users`).WillReturnError(sql.ErrNoRows)

	res, err := seeder.Fixtures(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res.Task.AssigneeID)
	assert.False(t, res.AssigneeChanged)

	require.NoError(t, mock.ExpectationsWereMet())
}

func expectStudentInsert(mock sqlmock.Sqlmock, n, firstID int) {
	rows := sqlmock.NewRows(studentColumns)
	for i := 0; i < n; i++ {
		rows.AddRow(firstID+i, "First", "Last", "Nick")
	}
	mock.ExpectQuery(`INSERT INTO students \(first_name,last_name,nickname\) VALUES .* RETURNING id, first_name, last_name, nickname`).
		WillReturnRows(rows)
}

func TestSamplesAreNotIdempotent(t *testing.T) {
	seeder, mock := newSeeder(t)
	ctx := context.Background()

	expectStudentInsert(mock, DefaultSamples, 1)
	expectStudentInsert(mock, DefaultSamples, 101)

	var total int
	for run := 0; run < 2; run++ {
		students, err := seeder.Samples(ctx, DefaultSamples)
		require.NoError(t, err)
		total += len(students)
	}

	assert.Equal(t, 200, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSamplesDrawFromNameLists(t *testing.T) {
	assert.Len(t, firstNames, 50)
	assert.Len(t, lastNames, 49)
	assert.Len(t, nicknames, 50)

	rng := rand.New(rand.NewPCG(7, 7))
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		name := pick(rng, firstNames)
		assert.Contains(t, firstNames, name)
		seen[name] = true
	}
	assert.Greater(t, len(seen), 25)
}

func TestSamplesZero(t *testing.T) {
	seeder, mock := newSeeder(t)

	students, err := seeder.Samples(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, students)
	require.NoError(t, mock.ExpectationsWereMet())
}
