package admin

import (
	"github.com/eleven-am/taskboard/internal/models"
	"github.com/eleven-am/taskboard/pkg/orm"
)

func registerModels(s *Site) error {
	if err := Register(s, func(st *models.Storm) *orm.Repository[models.User] { return st.Users }, ModelOptions{
		Slug:     "user",
		Name:     "user",
		Plural:   "users",
		Ordering: []string{"username"},
		hidden:   true,
	}); err != nil {
		return err
	}

	if err := Register(s, func(st *models.Storm) *orm.Repository[models.Project] { return st.Projects }, ModelOptions{
		Slug:         "project",
		Name:         "project",
		Plural:       "projects",
		ListDisplay:  []string{"name", "created_at"},
		ListFilter:   []string{"created_at"},
		SearchFields: []string{"name", "description"},
		Ordering:     []string{"-id"},
	}); err != nil {
		return err
	}

	if err := Register(s, func(st *models.Storm) *orm.Repository[models.Stage] { return st.Stages }, ModelOptions{
		Slug:          "stage",
		Name:          "stage",
		Plural:        "stages",
		ListDisplay:   []string{"name", "order_no"},
		ListEditable:  []string{"order_no"},
		Ordering:      []string{"order_no"},
		ModelOrdering: []string{"order_no"},
	}); err != nil {
		return err
	}

	return Register(s, func(st *models.Storm) *orm.Repository[models.Task] { return st.Tasks }, ModelOptions{
		Slug:         "task",
		Name:         "task",
		Plural:       "tasks",
		ListDisplay:  []string{"title", "project", "stage", "assignee", "created_at"},
		ListFilter:   []string{"stage", "project", "created_at"},
		SearchFields: []string{"title", "description"},
		ListEditable: []string{"stage"},
		Ordering:     []string{"-id"},
	})
}
