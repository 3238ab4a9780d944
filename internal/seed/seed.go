package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/eleven-am/taskboard/internal/logger"
	"github.com/eleven-am/taskboard/internal/metrics"
	"github.com/eleven-am/taskboard/internal/models"
	"github.com/eleven-am/taskboard/pkg/orm"
)

const (
	ProjectName        = "AI System"
	ProjectDescription = "Build some agentic AI"
	TodoStage          = "To Do"
	InProgressStage    = "In Progress"
	TaskTitle          = "Setup a django project for developers"

	DefaultSamples = 100
)

// FixtureResult reports what Fixtures created or changed.
type FixtureResult struct {
	Project         *models.Project
	Todo            *models.Stage
	InProgress      *models.Stage
	Task            *models.Task
	Created         []string
	AssigneeChanged bool
}

type Seeder struct {
	storm *models.Storm
	rng   *rand.Rand
}

// NewSeeder uses rng for sample data; nil seeds from the runtime source.
func NewSeeder(storm *models.Storm, rng *rand.Rand) *Seeder {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Seeder{storm: storm, rng: rng}
}

// Fixtures creates the reference project, stages and task if they are missing,
// then assigns the task to the first user when it has no assignee.
// Running it again changes nothing.
func (s *Seeder) Fixtures(ctx context.Context) (*FixtureResult, error) {
	log := logger.Seed()
	res := &FixtureResult{}

	var created bool
	var err error

	res.Project, created, err = s.storm.Projects.GetOrCreate(ctx,
		models.Projects.Name.Eq(ProjectName),
		func() *models.Project {
			return &models.Project{Name: ProjectName, Description: ProjectDescription}
		})
	if err != nil {
		return nil, fmt.Errorf("failed to seed project: %w", err)
	}
	res.track(created, "project "+ProjectName)

	res.Todo, created, err = s.stage(ctx, TodoStage, 1)
	if err != nil {
		return nil, err
	}
	res.track(created, "stage "+TodoStage)

	res.InProgress, created, err = s.stage(ctx, InProgressStage, 2)
	if err != nil {
		return nil, err
	}
	res.track(created, "stage "+InProgressStage)

	res.Task, created, err = s.storm.Tasks.GetOrCreate(ctx,
		models.Tasks.Title.Eq(TaskTitle),
		func() *models.Task {
			return &models.Task{Title: TaskTitle, ProjectID: res.Project.ID, StageID: res.Todo.ID}
		})
	if err != nil {
		return nil, fmt.Errorf("failed to seed task: %w", err)
	}
	res.track(created, "task "+TaskTitle)

	if res.Task.AssigneeID == nil {
		user, err := s.storm.Users.Query(ctx).OrderBy(models.Users.ID.Asc()).First()
		switch {
		case errors.Is(err, orm.ErrNotFound):
			log.Info("no users yet, task left unassigned")
		case err != nil:
			return nil, fmt.Errorf("failed to find first user: %w", err)
		default:
			res.Task.AssigneeID = &user.ID
			if err := s.storm.Tasks.UpdateColumns(ctx, res.Task, "assignee_id"); err != nil {
				return nil, fmt.Errorf("failed to assign task: %w", err)
			}
			res.AssigneeChanged = true
			log.Info("task assigned", "task", res.Task.ID, "user", user.Username)
		}
	}

	log.Info("fixtures seeded", "created", len(res.Created))
	return res, nil
}

func (s *Seeder) stage(ctx context.Context, name string, orderNo int32) (*models.Stage, bool, error) {
	stage, created, err := s.storm.Stages.GetOrCreate(ctx,
		models.Stages.Name.Eq(name),
		func() *models.Stage {
			return &models.Stage{Name: name, OrderNo: orderNo}
		})
	if err != nil {
		return nil, false, fmt.Errorf("failed to seed stage %q: %w", name, err)
	}
	return stage, created, nil
}

func (r *FixtureResult) track(created bool, what string) {
	if created {
		r.Created = append(r.Created, what)
	}
}

// Samples inserts n random students. It is not idempotent: every call adds n rows.
func (s *Seeder) Samples(ctx context.Context, n int) ([]*models.Student, error) {
	if n <= 0 {
		return nil, nil
	}

	students := make([]*models.Student, n)
	for i := range students {
		students[i] = &models.Student{
			FirstName: pick(s.rng, firstNames),
			LastName:  pick(s.rng, lastNames),
			Nickname:  pick(s.rng, nicknames),
		}
	}

	if err := s.storm.Students.CreateMany(ctx, students); err != nil {
		return nil, fmt.Errorf("failed to insert students: %w", err)
	}

	metrics.AddSeededRows(s.storm.Students.TableName(), n)
	logger.Seed().Info("sample students inserted", "count", n)
	return students, nil
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.IntN(len(values))]
}
