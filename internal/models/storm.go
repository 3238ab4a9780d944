package models

import (
	"context"

	"github.com/eleven-am/taskboard/pkg/orm"
	"github.com/jmoiron/sqlx"
)

// Storm holds one repository per model, all bound to the same executor.
type Storm struct {
	*orm.Storm

	Projects *orm.Repository[Project]
	Stages   *orm.Repository[Stage]
	Tasks    *orm.Repository[Task]
	Users    *orm.Repository[User]
	Students *orm.Repository[Student]
}

func NewStorm(db *sqlx.DB, middleware ...orm.QueryMiddleware) (*Storm, error) {
	return bind(orm.NewStorm(db, middleware...))
}

func bind(core *orm.Storm) (*Storm, error) {
	s := &Storm{Storm: core}
	var err error

	if s.Projects, err = orm.Register[Project](core); err != nil {
		return nil, err
	}
	if s.Stages, err = orm.Register[Stage](core); err != nil {
		return nil, err
	}
	if s.Tasks, err = orm.Register[Task](core); err != nil {
		return nil, err
	}
	if s.Users, err = orm.Register[User](core); err != nil {
		return nil, err
	}
	if s.Students, err = orm.Register[Student](core); err != nil {
		return nil, err
	}

	return s, nil
}

// WithTransaction runs fn with every repository bound to one transaction.
func (s *Storm) WithTransaction(ctx context.Context, fn func(*Storm) error) error {
	return s.Storm.WithTransaction(ctx, func(tx *orm.Storm) error {
		txStorm, err := bind(tx)
		if err != nil {
			return err
		}
		return fn(txStorm)
	})
}

// Metadata returns the model metadata in creation order: referenced tables first.
func Metadata() ([]*orm.ModelMetadata, error) {
	var all []*orm.ModelMetadata
	for _, get := range []func() (*orm.ModelMetadata, error){
		orm.MetadataFor[User],
		orm.MetadataFor[Project],
		orm.MetadataFor[Stage],
		orm.MetadataFor[Task],
		orm.MetadataFor[Student],
	} {
		meta, err := get()
		if err != nil {
			return nil, err
		}
		all = append(all, meta)
	}
	return all, nil
}
