package admin

import (
	"strconv"
	"strings"

	"github.com/eleven-am/taskboard/pkg/orm"
)

// ModelOptions declares how a model appears in the admin.
type ModelOptions struct {
	Slug   string // URL segment, e.g. "task"
	Name   string // singular display name
	Plural string

	ListDisplay  []string // field names shown as changelist columns
	ListFilter   []string // field names offered as facets
	SearchFields []string // text fields matched by ?q=
	ListEditable []string // fields editable directly on the changelist
	Ordering     []string // default ordering, "-" prefix for descending

	// ModelOrdering is the model's own order. Changelists of other models
	// sorting by a foreign key to this one follow it; without it they sort
	// by the key value.
	ModelOrdering []string

	hidden bool // lookup-only, not routed or listed on the index
}

type FieldKind int

const (
	KindText FieldKind = iota
	KindTextArea
	KindInteger
	KindBoolean
	KindForeignKey
	KindDateTime
)

// Field is one model column as the admin sees it.
type Field struct {
	Name         string // form and query parameter name
	Column       *orm.ColumnMetadata
	Label        string
	Kind         FieldKind
	Required     bool
	MaxLength    int
	NonNegative  bool
	Editable     bool
	RelatedTable string
}

// fieldsFromMetadata derives admin fields from the ORM tags. Foreign key
// columns drop their _id suffix; auto timestamps are read-only.
func fieldsFromMetadata(meta *orm.ModelMetadata) []Field {
	var fields []Field
	for _, col := range meta.Columns {
		if col.PrimaryKey {
			continue
		}

		f := Field{
			Name:      col.Name,
			Column:    col,
			Editable:  !col.AutoNow && !col.AutoNowAdd,
			MaxLength: col.Size,
		}

		switch {
		case col.ForeignKey != nil:
			f.Kind = KindForeignKey
			f.Name = strings.TrimSuffix(col.Name, "_id")
			f.RelatedTable = col.ForeignKey.Table
		case strings.HasPrefix(col.DBType, "timestamp"):
			f.Kind = KindDateTime
		case col.DBType == "text":
			f.Kind = KindTextArea
		case col.DBType == "integer" || col.DBType == "bigint" || col.DBType == "smallint":
			f.Kind = KindInteger
			f.NonNegative = strings.Contains(col.Check, col.Name+" >= 0")
		case col.DBType == "boolean":
			f.Kind = KindBoolean
		default:
			f.Kind = KindText
		}

		f.Label = label(f.Name)
		f.Required = col.NotNull && col.Default == "" && f.Kind != KindBoolean
		fields = append(fields, f)
	}
	return fields
}

// label turns order_no into "Order no".
func label(name string) string {
	words := strings.ReplaceAll(name, "_", " ")
	if words == "" {
		return words
	}
	return strings.ToUpper(words[:1]) + words[1:]
}

// URL is the changelist path of the model.
func (o *ModelOptions) URL() string {
	return Prefix + o.Slug + "/"
}

func (o *ModelOptions) AddURL() string {
	return o.URL() + "add/"
}

func (o *ModelOptions) ChangeURL(id int64) string {
	return o.URL() + strconv.FormatInt(id, 10) + "/change/"
}

func (o *ModelOptions) DeleteURL(id int64) string {
	return o.URL() + strconv.FormatInt(id, 10) + "/delete/"
}

// Input names the HTML control used for the field.
func (f Field) Input() string {
	switch f.Kind {
	case KindForeignKey:
		return "select"
	case KindTextArea:
		return "textarea"
	case KindBoolean:
		return "checkbox"
	case KindInteger:
		return "number"
	}
	return "text"
}
