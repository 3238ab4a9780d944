package models

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/eleven-am/taskboard/pkg/orm"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataOrderAndRules(t *testing.T) {
	all, err := Metadata()
	require.NoError(t, err)

	var tables []string
	for _, m := range all {
		tables = append(tables, m.TableName)
	}
	assert.Equal(t, []string{"users", "projects", "stages", "tasks", "students"}, tables)

	task := all[3]
	rules := map[string]string{}
	for _, col := range task.Columns {
		if col.ForeignKey != nil {
			rules[col.Name] = col.ForeignKey.Table + ":" + col.ForeignKey.OnDelete
		}
	}
	assert.Equal(t, map[string]string{
		"project_id":  "projects:CASCADE",
		"assignee_id": "users:SET NULL",
		"stage_id":    "stages:RESTRICT",
	}, rules)

	stage := all[2]
	name, _ := stage.Column("name")
	assert.True(t, name.Unique)
	assert.Equal(t, 50, name.Size)
	orderNo, _ := stage.Column("order_no")
	assert.Equal(t, "order_no >= 0", orderNo.Check)
}

func TestDisplayStrings(t *testing.T) {
	assert.Equal(t, "AI System", Project{Name: "AI System"}.String())
	assert.Equal(t, "To Do", Stage{Name: "To Do"}.String())
	assert.Equal(t, "Setup", Task{Title: "Setup"}.String())
	assert.Equal(t, "admin", User{Username: "admin"}.String())
	assert.Equal(t, "Ava Smith (Ace)", Student{FirstName: "Ava", LastName: "Smith", Nickname: "Ace"}.String())
}

func TestColumnReferences(t *testing.T) {
	sql, args, err := Tasks.StageID.Eq(3).ToSqlizer().ToSql()
	require.NoError(t, err)
	assert.Equal(t, "tasks.stage_id = ?", sql)
	assert.Equal(t, []interface{}{int64(3)}, args)

	sql, _, err = Tasks.AssigneeID.IsNull().ToSqlizer().ToSql()
	require.NoError(t, err)
	assert.Equal(t, "tasks.assignee_id IS NULL", sql)
}

func TestStormTransactionRebindsRepositories(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	storm, err := NewStorm(sqlx.NewDb(db, "postgres"))
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM stages WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnError(errors.New(`pq: update or delete on table "stages" violates foreign key constraint "tasks_stage_id_fkey" on table "tasks"`))
	mock.ExpectRollback()

	err = storm.WithTransaction(context.Background(), func(tx *Storm) error {
		assert.True(t, tx.InTransaction())
		return tx.Stages.Delete(context.Background(), int64(1))
	})
	assert.ErrorIs(t, err, orm.ErrRestricted)
	assert.Equal(t, "tasks_stage_id_fkey", orm.GetConstraintName(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
