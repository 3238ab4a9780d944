package orm

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ForeignKeyRef describes a column referencing another table.
type ForeignKeyRef struct {
	Table    string
	Column   string
	OnDelete string // CASCADE, RESTRICT, SET NULL, NO ACTION
}

// ColumnMetadata is the parsed form of one `db` + `dbdef` tagged field.
type ColumnMetadata struct {
	Name       string
	FieldName  string
	FieldIndex int
	GoType     reflect.Type
	DBType     string
	Size       int // declared varchar size, 0 when unbounded
	PrimaryKey bool
	NotNull    bool
	Unique     bool
	Default    string
	Check      string
	AutoNowAdd bool // set once on insert
	AutoNow    bool // set on insert and on every update
	ForeignKey *ForeignKeyRef
}

// Nullable reports whether the column accepts NULL.
func (c *ColumnMetadata) Nullable() bool {
	return !c.NotNull && !c.PrimaryKey
}

// ModelMetadata describes the table a struct maps to.
type ModelMetadata struct {
	TableName  string
	StructName string
	Type       reflect.Type
	Columns    []*ColumnMetadata
	PrimaryKey *ColumnMetadata

	byName map[string]*ColumnMetadata
}

// Column looks up a column by name.
func (m *ModelMetadata) Column(name string) (*ColumnMetadata, bool) {
	c, ok := m.byName[name]
	return c, ok
}

// ColumnNames returns the column names in declaration order.
func (m *ModelMetadata) ColumnNames() []string {
	names := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = c.Name
	}
	return names
}

var (
	metadataCache sync.Map // reflect.Type -> *ModelMetadata
	sizePattern   = regexp.MustCompile(`^varchar\((\d+)\)$`)
	timeType      = reflect.TypeOf(time.Time{})
)

// MetadataFor returns the cached metadata of the model type T.
func MetadataFor[T any]() (*ModelMetadata, error) {
	var zero T
	return MetadataOf(reflect.TypeOf(zero))
}

// MetadataOf parses (once) the struct tags of t.
func MetadataOf(t reflect.Type) (*ModelMetadata, error) {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStruct, t)
	}

	if cached, ok := metadataCache.Load(t); ok {
		return cached.(*ModelMetadata), nil
	}

	meta, err := parseModel(t)
	if err != nil {
		return nil, err
	}

	actual, _ := metadataCache.LoadOrStore(t, meta)
	return actual.(*ModelMetadata), nil
}

func parseModel(t reflect.Type) (*ModelMetadata, error) {
	meta := &ModelMetadata{
		StructName: t.Name(),
		Type:       t,
		byName:     make(map[string]*ColumnMetadata),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Name == "_" {
			attrs := ParseDBDefTag(field.Tag.Get("dbdef"))
			if name, ok := attrs["table"]; ok {
				meta.TableName = name
			}
			continue
		}

		dbName := field.Tag.Get("db")
		if dbName == "" || dbName == "-" || !field.IsExported() {
			continue
		}

		col, err := parseColumn(field, i, dbName)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name(), field.Name, err)
		}

		if col.PrimaryKey {
			if meta.PrimaryKey != nil {
				return nil, fmt.Errorf("%s: composite primary keys are not supported", t.Name())
			}
			meta.PrimaryKey = col
		}

		meta.Columns = append(meta.Columns, col)
		meta.byName[col.Name] = col
	}

	if meta.TableName == "" {
		meta.TableName = deriveTableName(t.Name())
	}

	if meta.PrimaryKey == nil {
		return nil, fmt.Errorf("%s: %w", t.Name(), ErrNoPrimaryKey)
	}

	return meta, nil
}

func parseColumn(field reflect.StructField, index int, dbName string) (*ColumnMetadata, error) {
	attrs := ParseDBDefTag(field.Tag.Get("dbdef"))

	col := &ColumnMetadata{
		Name:       dbName,
		FieldName:  field.Name,
		FieldIndex: index,
		GoType:     field.Type,
		DBType:     strings.ToLower(attrs["type"]),
	}

	for key, value := range attrs {
		switch key {
		case "type":
		case "primary_key":
			col.PrimaryKey = true
		case "not_null":
			col.NotNull = true
		case "unique":
			col.Unique = true
		case "default":
			col.Default = value
		case "check":
			col.Check = value
		case "auto_now_add":
			col.AutoNowAdd = true
		case "auto_now":
			col.AutoNow = true
		case "foreign_key", "fk":
			parts := strings.SplitN(value, ".", 2)
			if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
				return nil, fmt.Errorf("invalid foreign key %q, expected table.column", value)
			}
			if col.ForeignKey == nil {
				col.ForeignKey = &ForeignKeyRef{}
			}
			col.ForeignKey.Table, col.ForeignKey.Column = parts[0], parts[1]
		case "on_delete":
			if col.ForeignKey == nil {
				col.ForeignKey = &ForeignKeyRef{}
			}
			col.ForeignKey.OnDelete = strings.ToUpper(value)
		default:
			return nil, fmt.Errorf("unknown dbdef attribute %q", key)
		}
	}

	if col.DBType == "" {
		return nil, fmt.Errorf("missing dbdef type")
	}

	if col.ForeignKey != nil {
		if col.ForeignKey.Table == "" {
			return nil, fmt.Errorf("on_delete without foreign_key")
		}
		if err := validateOnDelete(col.ForeignKey.OnDelete); err != nil {
			return nil, err
		}
		if col.ForeignKey.OnDelete == "SET NULL" && col.NotNull {
			return nil, fmt.Errorf("on_delete SET NULL requires a nullable column")
		}
	}

	if (col.AutoNow || col.AutoNowAdd) && field.Type != timeType {
		return nil, fmt.Errorf("auto_now/auto_now_add require a time.Time field, got %s", field.Type)
	}

	if m := sizePattern.FindStringSubmatch(col.DBType); m != nil {
		col.Size, _ = strconv.Atoi(m[1])
	}

	return col, nil
}

func validateOnDelete(action string) error {
	switch action {
	case "", "CASCADE", "RESTRICT", "SET NULL", "NO ACTION":
		return nil
	}
	return fmt.Errorf("invalid on_delete action %q", action)
}

// ParseDBDefTag parses a dbdef tag string into a map of attributes
// Format: "type:varchar(50);not_null;unique;default:''"
// Returns: map[string]string{"type": "varchar(50)", "not_null": "", "unique": "", "default": "''"}
func ParseDBDefTag(tagValue string) map[string]string {
	attributes := make(map[string]string)

	if tagValue == "" {
		return attributes
	}

	for _, part := range strings.Split(tagValue, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if kv := strings.SplitN(part, ":", 2); len(kv) == 2 {
			attributes[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		} else {
			attributes[part] = ""
		}
	}

	return attributes
}

// deriveTableName turns StructName into struct_names.
func deriveTableName(structName string) string {
	var b strings.Builder
	for i, r := range structName {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	name := b.String()
	if strings.HasSuffix(name, "s") {
		return name + "es"
	}
	return name + "s"
}
