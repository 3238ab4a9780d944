package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"

	"github.com/eleven-am/taskboard/internal/logger"
	"github.com/eleven-am/taskboard/pkg/orm"
)

// ErrDestructive is returned when a plan drops data and destructive changes are not allowed.
var ErrDestructive = errors.New("migration contains destructive changes")

// Plan is the set of changes needed to bring the database up to the models.
type Plan struct {
	Changes     []schema.Change
	Statements  []string
	Destructive []string
}

// Empty reports whether the database already matches the models.
func (p *Plan) Empty() bool {
	return len(p.Changes) == 0
}

// DB is a connection that can both inspect the schema and open the
// transaction a plan is applied in. *sql.DB satisfies it.
type DB interface {
	schema.ExecQuerier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type Migrator struct {
	db         DB
	schemaName string
	models     []*orm.ModelMetadata
}

func NewMigrator(db DB, models []*orm.ModelMetadata) *Migrator {
	return &Migrator{
		db:         db,
		schemaName: DefaultSchema,
		models:     models,
	}
}

func (m *Migrator) tableNames() []string {
	names := make([]string, len(m.models))
	for i, meta := range m.models {
		names[i] = meta.TableName
	}
	return names
}

// Plan inspects the managed tables and diffs them against the models.
// Tables the models do not describe are never touched.
func (m *Migrator) Plan(ctx context.Context) (*Plan, error) {
	log := logger.Migration()

	drv, err := postgres.Open(m.db)
	if err != nil {
		return nil, fmt.Errorf("failed to create atlas driver: %w", err)
	}

	target, err := Build(m.schemaName, m.models)
	if err != nil {
		return nil, fmt.Errorf("failed to build target schema: %w", err)
	}

	current, err := drv.InspectSchema(ctx, m.schemaName, &schema.InspectOptions{Tables: m.tableNames()})
	if err != nil {
		return nil, fmt.Errorf("failed to inspect current schema: %w", err)
	}

	changes, err := drv.SchemaDiff(current, target)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate diff: %w", err)
	}

	plan := &Plan{Changes: changes}
	if plan.Empty() {
		log.Info("schema is up to date")
		return plan, nil
	}

	plan.Statements, err = GenerateSQL(ctx, drv, changes)
	if err != nil {
		return nil, err
	}
	_, plan.Destructive = CountDestructiveChanges(changes)

	log.Info("migration planned",
		"changes", len(changes),
		"statements", len(plan.Statements),
		"destructive", len(plan.Destructive))

	return plan, nil
}

// Apply executes plan. Destructive plans require allowDestructive.
func (m *Migrator) Apply(ctx context.Context, plan *Plan, allowDestructive bool) error {
	if plan.Empty() {
		return nil
	}
	if len(plan.Destructive) > 0 && !allowDestructive {
		return fmt.Errorf("%w: %v", ErrDestructive, plan.Destructive)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}

	if err := applyChanges(ctx, tx, plan.Changes); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback migration: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	logger.Migration().Info("migration applied", "changes", len(plan.Changes))
	return nil
}

// applyChanges runs the changes on tx; PostgreSQL DDL is transactional, so a
// failing statement leaves the schema untouched once tx is rolled back.
func applyChanges(ctx context.Context, tx *sql.Tx, changes []schema.Change) error {
	drv, err := postgres.Open(tx)
	if err != nil {
		return fmt.Errorf("failed to create atlas driver: %w", err)
	}

	for _, change := range changes {
		logger.Migration().Debug("applying change", "change", DescribeChange(change))
	}

	if err := drv.ApplyChanges(ctx, changes); err != nil {
		return fmt.Errorf("failed to apply migration: %w", err)
	}
	return nil
}

// GenerateSQL renders the statements atlas would run for changes.
func GenerateSQL(ctx context.Context, driver migrate.Driver, changes []schema.Change) ([]string, error) {
	plan, err := driver.PlanChanges(ctx, "taskboard", changes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan: %w", err)
	}

	statements := make([]string, len(plan.Changes))
	for i, change := range plan.Changes {
		statements[i] = change.Cmd
		if change.Comment != "" {
			statements[i] = fmt.Sprintf("-- %s\n%s", change.Comment, change.Cmd)
		}
	}

	return statements, nil
}
