package models

// Column references used to build type-safe conditions, e.g. Tasks.StageID.Eq(id).

import (
	"time"

	"github.com/eleven-am/taskboard/pkg/orm"
)

func idColumn(table string) orm.NumericColumn[int64] {
	return int64Column(table, "id")
}

func int64Column(table, name string) orm.NumericColumn[int64] {
	return orm.NumericColumn[int64]{ComparableColumn: orm.ComparableColumn[int64]{Column: orm.Column[int64]{Name: name, Table: table}}}
}

func stringColumn(table, name string) orm.StringColumn {
	return orm.StringColumn{Column: orm.Column[string]{Name: name, Table: table}}
}

func timeColumn(table, name string) orm.TimeColumn {
	return orm.TimeColumn{ComparableColumn: orm.ComparableColumn[time.Time]{Column: orm.Column[time.Time]{Name: name, Table: table}}}
}

func boolColumn(table, name string) orm.BoolColumn {
	return orm.BoolColumn{Column: orm.Column[bool]{Name: name, Table: table}}
}

var Projects = struct {
	ID          orm.NumericColumn[int64]
	Name        orm.StringColumn
	Description orm.StringColumn
	CreatedAt   orm.TimeColumn
}{
	ID:          idColumn("projects"),
	Name:        stringColumn("projects", "name"),
	Description: stringColumn("projects", "description"),
	CreatedAt:   timeColumn("projects", "created_at"),
}

var Stages = struct {
	ID      orm.NumericColumn[int64]
	Name    orm.StringColumn
	OrderNo orm.NumericColumn[int32]
}{
	ID:      idColumn("stages"),
	Name:    stringColumn("stages", "name"),
	OrderNo: orm.NumericColumn[int32]{ComparableColumn: orm.ComparableColumn[int32]{Column: orm.Column[int32]{Name: "order_no", Table: "stages"}}},
}

var Tasks = struct {
	ID          orm.NumericColumn[int64]
	Title       orm.StringColumn
	Description orm.StringColumn
	ProjectID   orm.NumericColumn[int64]
	AssigneeID  orm.Column[*int64]
	StageID     orm.NumericColumn[int64]
	CreatedAt   orm.TimeColumn
	UpdatedAt   orm.TimeColumn
}{
	ID:          idColumn("tasks"),
	Title:       stringColumn("tasks", "title"),
	Description: stringColumn("tasks", "description"),
	ProjectID:   int64Column("tasks", "project_id"),
	AssigneeID:  orm.Column[*int64]{Name: "assignee_id", Table: "tasks"},
	StageID:     int64Column("tasks", "stage_id"),
	CreatedAt:   timeColumn("tasks", "created_at"),
	UpdatedAt:   timeColumn("tasks", "updated_at"),
}

var Users = struct {
	ID         orm.NumericColumn[int64]
	Username   orm.StringColumn
	Email      orm.StringColumn
	IsStaff    orm.BoolColumn
	IsActive   orm.BoolColumn
	DateJoined orm.TimeColumn
}{
	ID:         idColumn("users"),
	Username:   stringColumn("users", "username"),
	Email:      stringColumn("users", "email"),
	IsStaff:    boolColumn("users", "is_staff"),
	IsActive:   boolColumn("users", "is_active"),
	DateJoined: timeColumn("users", "date_joined"),
}

var Students = struct {
	ID        orm.NumericColumn[int64]
	FirstName orm.StringColumn
	LastName  orm.StringColumn
	Nickname  orm.StringColumn
}{
	ID:        idColumn("students"),
	FirstName: stringColumn("students", "first_name"),
	LastName:  stringColumn("students", "last_name"),
	Nickname:  stringColumn("students", "nickname"),
}
