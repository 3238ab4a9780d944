package orm

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	taskTitle     = StringColumn{Column[string]{Name: "title"}}
	taskProjectID = NumericColumn[int64]{ComparableColumn[int64]{Column[int64]{Name: "project_id"}}}
)

func TestQueryFind(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newTestRepository[testTask](t, db)

	mock.ExpectQuery(`SELECT id, title, project_id, assignee_id, created_at, updated_at FROM tasks WHERE title ILIKE \$1 AND project_id IN \(\$2,\$3\) ORDER BY id DESC LIMIT 10 OFFSET 20`).
		WithArgs(`%50\%%`, int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(1, "50% done", 1, nil, fixedNow, fixedNow).
			AddRow(2, "at 50%", 2, 4, fixedNow, fixedNow))

	tasks, err := repo.Query(context.Background()).
		Where(taskTitle.IContains("50%"), taskProjectID.In(1, 2)).
		OrderBy("id DESC").
		Limit(10).
		Offset(20).
		Find()
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Nil(t, tasks[0].AssigneeID)
	require.NotNil(t, tasks[1].AssigneeID)
	assert.Equal(t, int64(4), *tasks[1].AssigneeID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryCountAndExists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newTestRepository[testTask](t, db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tasks WHERE project_id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.Query(context.Background()).Where(taskProjectID.Eq(3)).Limit(1).Count()
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tasks WHERE assignee_id IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := repo.Query(context.Background()).
		Where(Column[*int64]{Name: "assignee_id"}.IsNull()).
		Exists()
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryBulkUpdateAndDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newTestRepository[testTask](t, db)

	t.Run("update", func(t *testing.T) {
		mock.ExpectExec(`UPDATE tasks SET assignee_id = \$1 WHERE assignee_id IS NULL`).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.Query(context.Background()).
			Where(Column[*int64]{Name: "assignee_id"}.IsNull()).
			Update(map[string]interface{}{"assignee_id": int64(1)})
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update unknown column", func(t *testing.T) {
		_, err := repo.Query(context.Background()).Update(map[string]interface{}{"bogus": 1})
		require.Error(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM tasks WHERE project_id = \$1`).
			WithArgs(int64(8)).
			WillReturnResult(sqlmock.NewResult(0, 2))

		n, err := repo.Query(context.Background()).Where(taskProjectID.Eq(8)).Delete()
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
