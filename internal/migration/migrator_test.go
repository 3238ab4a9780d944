package migration

import (
	"context"
	"errors"
	"testing"

	"ariga.io/atlas/sql/schema"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paramsQuery = `SELECT current_setting\('server_version_num'\)`

func addTables(names ...string) []schema.Change {
	changes := make([]schema.Change, len(names))
	for i, name := range names {
		changes[i] = &schema.AddTable{T: schema.NewTable(name).AddColumns(schema.NewIntColumn("id", "bigint"))}
	}
	return changes
}

func expectDriver(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(paramsQuery).
		WillReturnRows(sqlmock.NewRows([]string{"server_version_num", "default_table_access_method", "crdb_version"}).
			AddRow("150000", "heap", nil))
}

func TestApply(t *testing.T) {
	t.Run("commits every change in one transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		expectDriver(mock)
		mock.ExpectExec(`CREATE TABLE "alpha"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`CREATE TABLE "beta"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		m := NewMigrator(db, nil)
		err = m.Apply(context.Background(), &Plan{Changes: addTables("alpha", "beta")}, false)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failing statement rolls back earlier ones", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		expectDriver(mock)
		mock.ExpectExec(`CREATE TABLE "alpha"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`CREATE TABLE "beta"`).WillReturnError(errors.New("relation already exists"))
		mock.ExpectRollback()

		m := NewMigrator(db, nil)
		err = m.Apply(context.Background(), &Plan{Changes: addTables("alpha", "beta")}, false)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "relation already exists")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("destructive plan is refused before touching the database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		plan := &Plan{
			Changes:     []schema.Change{&schema.DropTable{T: schema.NewTable("legacy")}},
			Destructive: []string{"Drop table legacy"},
		}
		err = NewMigrator(db, nil).Apply(context.Background(), plan, false)

		assert.ErrorIs(t, err, ErrDestructive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty plan is a no-op", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, NewMigrator(db, nil).Apply(context.Background(), &Plan{}, false))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
