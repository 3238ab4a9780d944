package models

import (
	"fmt"
	"time"
)

// Project groups tasks. Deleting a project deletes its tasks.
type Project struct {
	ID          int64     `db:"id" dbdef:"type:bigserial;primary_key"`
	Name        string    `db:"name" dbdef:"type:varchar(255);not_null"`
	Description string    `db:"description" dbdef:"type:text;not_null;default:''"`
	CreatedAt   time.Time `db:"created_at" dbdef:"type:timestamptz;not_null;default:now();auto_now_add"`

	_ struct{} `dbdef:"table:projects"`
}

func (p Project) String() string {
	return p.Name
}

// Stage is a workflow step. Stages referenced by tasks cannot be deleted.
type Stage struct {
	ID      int64  `db:"id" dbdef:"type:bigserial;primary_key"`
	Name    string `db:"name" dbdef:"type:varchar(50);not_null;unique"`
	OrderNo int32  `db:"order_no" dbdef:"type:integer;not_null;check:order_no >= 0"`

	_ struct{} `dbdef:"table:stages"`
}

func (s Stage) String() string {
	return s.Name
}

// Task belongs to exactly one project and one stage; the assignee is optional.
type Task struct {
	ID          int64     `db:"id" dbdef:"type:bigserial;primary_key"`
	Title       string    `db:"title" dbdef:"type:varchar(255);not_null"`
	Description string    `db:"description" dbdef:"type:text;not_null;default:''"`
	ProjectID   int64     `db:"project_id" dbdef:"type:bigint;not_null;foreign_key:projects.id;on_delete:CASCADE"`
	AssigneeID  *int64    `db:"assignee_id" dbdef:"type:bigint;foreign_key:users.id;on_delete:SET NULL"`
	StageID     int64     `db:"stage_id" dbdef:"type:bigint;not_null;foreign_key:stages.id;on_delete:RESTRICT"`
	CreatedAt   time.Time `db:"created_at" dbdef:"type:timestamptz;not_null;default:now();auto_now_add"`
	UpdatedAt   time.Time `db:"updated_at" dbdef:"type:timestamptz;not_null;default:now();auto_now"`

	_ struct{} `dbdef:"table:tasks"`
}

func (t Task) String() string {
	return t.Title
}

// User is a login account for the admin.
type User struct {
	ID           int64      `db:"id" dbdef:"type:bigserial;primary_key"`
	Username     string     `db:"username" dbdef:"type:varchar(150);not_null;unique"`
	Email        string     `db:"email" dbdef:"type:varchar(254);not_null;default:''"`
	PasswordHash string     `db:"password_hash" dbdef:"type:varchar(255);not_null"`
	IsStaff      bool       `db:"is_staff" dbdef:"type:boolean;not_null;default:false"`
	IsSuperuser  bool       `db:"is_superuser" dbdef:"type:boolean;not_null;default:false"`
	IsActive     bool       `db:"is_active" dbdef:"type:boolean;not_null;default:true"`
	DateJoined   time.Time  `db:"date_joined" dbdef:"type:timestamptz;not_null;default:now();auto_now_add"`
	LastLogin    *time.Time `db:"last_login" dbdef:"type:timestamptz"`

	_ struct{} `dbdef:"table:users"`
}

func (u User) String() string {
	return u.Username
}

// Student is a sample record filled by the seed command.
type Student struct {
	ID        int64  `db:"id" dbdef:"type:bigserial;primary_key"`
	FirstName string `db:"first_name" dbdef:"type:varchar(50);not_null"`
	LastName  string `db:"last_name" dbdef:"type:varchar(50);not_null"`
	Nickname  string `db:"nickname" dbdef:"type:varchar(50);not_null"`

	_ struct{} `dbdef:"table:students"`
}

func (s Student) String() string {
	return fmt.Sprintf("%s %s (%s)", s.FirstName, s.LastName, s.Nickname)
}
