package migration

import (
	"encoding/json"
	"fmt"
	"strings"

	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"gopkg.in/yaml.v3"
)

// ExportFormat selects the output of Export.
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
	ExportFormatYAML     ExportFormat = "yaml"
)

// TableDoc is the exported description of one table.
type TableDoc struct {
	Name        string          `json:"name" yaml:"name"`
	Columns     []ColumnDoc     `json:"columns" yaml:"columns"`
	ForeignKeys []ForeignKeyDoc `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty"`
	Checks      []string        `json:"checks,omitempty" yaml:"checks,omitempty"`
}

type ColumnDoc struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	Nullable   bool   `json:"nullable" yaml:"nullable"`
	Default    string `json:"default,omitempty" yaml:"default,omitempty"`
	PrimaryKey bool   `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	Unique     bool   `json:"unique,omitempty" yaml:"unique,omitempty"`
}

type ForeignKeyDoc struct {
	Column    string `json:"column" yaml:"column"`
	RefTable  string `json:"ref_table" yaml:"ref_table"`
	RefColumn string `json:"ref_column" yaml:"ref_column"`
	OnDelete  string `json:"on_delete" yaml:"on_delete"`
}

// Describe flattens the schema into table descriptions, in table order.
func Describe(s *schema.Schema) ([]TableDoc, error) {
	docs := make([]TableDoc, 0, len(s.Tables))
	for _, t := range s.Tables {
		doc := TableDoc{Name: t.Name}

		unique := make(map[string]bool)
		for _, idx := range t.Indexes {
			if idx.Unique && len(idx.Parts) == 1 && idx.Parts[0].C != nil {
				unique[idx.Parts[0].C.Name] = true
			}
		}
		pk := make(map[string]bool)
		if t.PrimaryKey != nil {
			for _, part := range t.PrimaryKey.Parts {
				if part.C != nil {
					pk[part.C.Name] = true
				}
			}
		}

		for _, c := range t.Columns {
			typ, err := postgres.FormatType(c.Type.Type)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.Name, c.Name, err)
			}
			doc.Columns = append(doc.Columns, ColumnDoc{
				Name:       c.Name,
				Type:       typ,
				Nullable:   c.Type.Null,
				Default:    exprString(c.Default),
				PrimaryKey: pk[c.Name],
				Unique:     unique[c.Name],
			})
		}

		for _, fk := range t.ForeignKeys {
			if len(fk.Columns) != 1 || len(fk.RefColumns) != 1 || fk.RefTable == nil {
				continue
			}
			doc.ForeignKeys = append(doc.ForeignKeys, ForeignKeyDoc{
				Column:    fk.Columns[0].Name,
				RefTable:  fk.RefTable.Name,
				RefColumn: fk.RefColumns[0].Name,
				OnDelete:  string(fk.OnDelete),
			})
		}

		for _, attr := range t.Attrs {
			if chk, ok := attr.(*schema.Check); ok {
				doc.Checks = append(doc.Checks, chk.Expr)
			}
		}

		docs = append(docs, doc)
	}
	return docs, nil
}

// Export renders the schema in the requested format.
func Export(s *schema.Schema, format ExportFormat) ([]byte, error) {
	docs, err := Describe(s)
	if err != nil {
		return nil, err
	}

	switch format {
	case ExportFormatJSON:
		return json.MarshalIndent(docs, "", "  ")
	case ExportFormatYAML:
		return yaml.Marshal(docs)
	case ExportFormatMarkdown, "":
		return exportMarkdown(s.Name, docs), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

func exportMarkdown(name string, docs []TableDoc) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Schema: %s\n\n", name)
	for _, t := range docs {
		fmt.Fprintf(&b, "## %s\n\n", t.Name)
		b.WriteString("| Column | Type | Nullable | Default | Key |\n")
		b.WriteString("|--------|------|----------|---------|-----|\n")
		for _, c := range t.Columns {
			nullable := "NO"
			if c.Nullable {
				nullable = "YES"
			}
			key := ""
			switch {
			case c.PrimaryKey:
				key = "PK"
			case c.Unique:
				key = "UNIQUE"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", c.Name, c.Type, nullable, c.Default, key)
		}
		b.WriteString("\n")

		if len(t.ForeignKeys) > 0 {
			b.WriteString("Foreign keys:\n\n")
			for _, fk := range t.ForeignKeys {
				fmt.Fprintf(&b, "- %s -> %s.%s ON DELETE %s\n", fk.Column, fk.RefTable, fk.RefColumn, fk.OnDelete)
			}
			b.WriteString("\n")
		}
		if len(t.Checks) > 0 {
			b.WriteString("Checks:\n\n")
			for _, chk := range t.Checks {
				fmt.Fprintf(&b, "- `%s`\n", chk)
			}
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}

func exprString(e schema.Expr) string {
	switch x := e.(type) {
	case *schema.RawExpr:
		return x.X
	case *schema.Literal:
		return x.V
	default:
		return ""
	}
}
