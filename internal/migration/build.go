package migration

import (
	"fmt"
	"strings"

	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"

	"github.com/eleven-am/taskboard/pkg/orm"
)

// DefaultSchema is the PostgreSQL schema the models live in.
const DefaultSchema = "public"

// Build converts model metadata into the desired atlas schema. Models must be
// ordered so that referenced tables come first.
func Build(name string, models []*orm.ModelMetadata) (*schema.Schema, error) {
	s := schema.New(name)
	tables := make(map[string]*schema.Table, len(models))

	for _, meta := range models {
		t, err := buildTable(meta)
		if err != nil {
			return nil, err
		}
		s.AddTables(t)
		tables[meta.TableName] = t
	}

	for _, meta := range models {
		if err := addForeignKeys(tables, meta); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func buildTable(meta *orm.ModelMetadata) (*schema.Table, error) {
	t := schema.NewTable(meta.TableName)

	for _, col := range meta.Columns {
		typ, err := postgres.ParseType(col.DBType)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: unsupported type %q: %w", meta.TableName, col.Name, col.DBType, err)
		}

		c := schema.NewColumn(col.Name).SetType(typ).SetNull(col.Nullable())
		if col.Default != "" {
			c.SetDefault(defaultExpr(col.Default))
		}
		t.AddColumns(c)

		if col.PrimaryKey {
			t.SetPrimaryKey(schema.NewPrimaryKey(c))
		}
		if col.Unique {
			t.AddIndexes(schema.NewUniqueIndex(fmt.Sprintf("%s_%s_key", meta.TableName, col.Name)).AddColumns(c))
		}
		if col.Check != "" {
			t.AddChecks(schema.NewCheck().
				SetName(fmt.Sprintf("%s_%s_check", meta.TableName, col.Name)).
				SetExpr(col.Check))
		}
	}

	return t, nil
}

func addForeignKeys(tables map[string]*schema.Table, meta *orm.ModelMetadata) error {
	t := tables[meta.TableName]

	for _, col := range meta.Columns {
		if col.ForeignKey == nil {
			continue
		}

		ref, ok := tables[col.ForeignKey.Table]
		if !ok {
			return fmt.Errorf("%s.%s references unknown table %s", meta.TableName, col.Name, col.ForeignKey.Table)
		}
		refCol, ok := ref.Column(col.ForeignKey.Column)
		if !ok {
			return fmt.Errorf("%s.%s references unknown column %s.%s", meta.TableName, col.Name, col.ForeignKey.Table, col.ForeignKey.Column)
		}
		c, _ := t.Column(col.Name)

		onDelete := schema.NoAction
		if col.ForeignKey.OnDelete != "" {
			onDelete = schema.ReferenceOption(col.ForeignKey.OnDelete)
		}

		t.AddForeignKeys(schema.NewForeignKey(fmt.Sprintf("%s_%s_fkey", meta.TableName, col.Name)).
			AddColumns(c).
			SetRefTable(ref).
			AddRefColumns(refCol).
			SetOnDelete(onDelete))
	}

	return nil
}

// defaultExpr keeps function calls raw and everything else as a literal.
func defaultExpr(value string) schema.Expr {
	if strings.HasSuffix(value, ")") {
		return &schema.RawExpr{X: value}
	}
	return &schema.Literal{V: value}
}
