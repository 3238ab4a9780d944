package admin

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"github.com/eleven-am/taskboard/internal/models"
	"github.com/eleven-am/taskboard/pkg/orm"
)

// ModelAdmin is a registered model. The generic implementation lives in modelAdmin.
type ModelAdmin interface {
	Options() *ModelOptions
	Metadata() *orm.ModelMetadata
	Fields() []Field
	Field(name string) (Field, bool)

	changelist(ctx context.Context, params ChangelistParams, edits *bulkState) (*Changelist, error)
	bulkEdit(ctx context.Context, form map[string][]string) (*bulkState, error)
	object(ctx context.Context, id int64) (*Object, error)
	blank() *Object
	apply(ctx context.Context, obj *Object, form map[string][]string) orm.ValidationErrors
	save(ctx context.Context, obj *Object) (orm.ValidationErrors, error)
	deletePreview(ctx context.Context, obj *Object) (*DeletePreview, error)
	remove(ctx context.Context, id int64) error

	source
}

// source answers foreign key questions about a table.
type source interface {
	Metadata() *orm.ModelMetadata
	labels(ctx context.Context, ids []int64) (map[int64]string, error)
	choices(ctx context.Context) ([]Choice, error)
	exists(ctx context.Context, id int64) (bool, error)
	referencing(ctx context.Context, column string, id int64) ([]Choice, error)
}

// Choice is a related row offered in a select or listed on a delete page.
type Choice struct {
	ID    int64
	Label string
}

// Object is a record being viewed or edited through a form.
type Object struct {
	ID     int64
	Label  string
	Values map[string]string // form values keyed by field name
	Errors orm.ValidationErrors

	record interface{}
}

type modelAdmin[T any] struct {
	opts   ModelOptions
	meta   *orm.ModelMetadata
	fields []Field
	byName map[string]Field
	repo   func(*models.Storm) *orm.Repository[T]
	site   *Site
}

func newModelAdmin[T any](site *Site, repo func(*models.Storm) *orm.Repository[T], opts ModelOptions) (*modelAdmin[T], error) {
	meta, err := orm.MetadataFor[T]()
	if err != nil {
		return nil, err
	}

	m := &modelAdmin[T]{
		opts:   opts,
		meta:   meta,
		fields: fieldsFromMetadata(meta),
		byName: make(map[string]Field),
		repo:   repo,
		site:   site,
	}
	for _, f := range m.fields {
		m.byName[f.Name] = f
	}

	for _, group := range [][]string{opts.ListDisplay, opts.ListFilter, opts.SearchFields, opts.ListEditable} {
		for _, name := range group {
			if _, ok := m.byName[name]; !ok {
				return nil, fmt.Errorf("%s: unknown field %q", opts.Slug, name)
			}
		}
	}
	for _, name := range opts.ListEditable {
		if !m.byName[name].Editable {
			return nil, fmt.Errorf("%s: field %q is not editable", opts.Slug, name)
		}
	}

	return m, nil
}

func (m *modelAdmin[T]) Options() *ModelOptions        { return &m.opts }
func (m *modelAdmin[T]) Metadata() *orm.ModelMetadata { return m.meta }
func (m *modelAdmin[T]) Fields() []Field              { return m.fields }

func (m *modelAdmin[T]) Field(name string) (Field, bool) {
	f, ok := m.byName[name]
	return f, ok
}

func (m *modelAdmin[T]) repository() *orm.Repository[T] {
	return m.repo(m.site.storm)
}

func (m *modelAdmin[T]) idColumn() orm.Column[int64] {
	return orm.Column[int64]{Name: m.meta.PrimaryKey.Name, Table: m.meta.TableName}
}

func (m *modelAdmin[T]) defaultOrder() []string {
	var out []string
	for _, o := range m.opts.Ordering {
		name, dir := o, "ASC"
		if len(o) > 0 && o[0] == '-' {
			name, dir = o[1:], "DESC"
		}
		col := name
		if f, ok := m.byName[name]; ok {
			col = f.Column.Name
		}
		out = append(out, m.meta.TableName+"."+col+" "+dir)
	}
	return out
}

func (m *modelAdmin[T]) labels(ctx context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	records, err := m.repository().Query(ctx).Where(m.idColumn().In(ids...)).Find()
	if err != nil {
		return nil, err
	}
	for i := range records {
		out[m.id(&records[i])] = displayString(&records[i])
	}
	return out, nil
}

func (m *modelAdmin[T]) choices(ctx context.Context) ([]Choice, error) {
	records, err := m.repository().Query(ctx).OrderBy(m.defaultOrder()...).Find()
	if err != nil {
		return nil, err
	}
	return m.toChoices(records), nil
}

func (m *modelAdmin[T]) exists(ctx context.Context, id int64) (bool, error) {
	return m.repository().Query(ctx).Where(m.idColumn().Eq(id)).Exists()
}

func (m *modelAdmin[T]) referencing(ctx context.Context, column string, id int64) ([]Choice, error) {
	records, err := m.repository().Query(ctx).
		Where(orm.Column[int64]{Name: column, Table: m.meta.TableName}.Eq(id)).
		OrderBy(m.defaultOrder()...).
		Find()
	if err != nil {
		return nil, err
	}
	return m.toChoices(records), nil
}

func (m *modelAdmin[T]) toChoices(records []T) []Choice {
	out := make([]Choice, len(records))
	for i := range records {
		out[i] = Choice{ID: m.id(&records[i]), Label: displayString(&records[i])}
	}
	return out
}

func (m *modelAdmin[T]) id(rec *T) int64 {
	return reflect.ValueOf(rec).Elem().Field(m.meta.PrimaryKey.FieldIndex).Int()
}

func (m *modelAdmin[T]) fieldValue(rec *T, f Field) reflect.Value {
	return reflect.ValueOf(rec).Elem().Field(f.Column.FieldIndex)
}

// formValue renders a field as it appears in an input.
func (m *modelAdmin[T]) formValue(rec *T, f Field) string {
	v := m.fieldValue(rec, f)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Bool:
		if v.Bool() {
			return "on"
		}
		return ""
	}
	return fmt.Sprint(v.Interface())
}

// setValue stores a cleaned value, converting to the struct field type.
func (m *modelAdmin[T]) setValue(rec *T, f Field, value interface{}) {
	fv := m.fieldValue(rec, f)
	if value == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return
	}

	rv := reflect.ValueOf(value)
	if fv.Kind() == reflect.Ptr {
		p := reflect.New(fv.Type().Elem())
		p.Elem().Set(rv.Convert(fv.Type().Elem()))
		fv.Set(p)
		return
	}
	fv.Set(rv.Convert(fv.Type()))
}

func (m *modelAdmin[T]) toObject(rec *T) *Object {
	obj := &Object{
		ID:     m.id(rec),
		Label:  displayString(rec),
		Values: make(map[string]string, len(m.fields)),
		record: rec,
	}
	for _, f := range m.fields {
		obj.Values[f.Name] = m.formValue(rec, f)
	}
	return obj
}

func (m *modelAdmin[T]) object(ctx context.Context, id int64) (*Object, error) {
	rec, err := m.repository().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.toObject(rec), nil
}

func (m *modelAdmin[T]) blank() *Object {
	obj := m.toObject(new(T))
	for _, f := range m.fields {
		if f.Kind == KindBoolean && f.Column.Default == "true" {
			obj.Values[f.Name] = "on"
		}
	}
	return obj
}

func (m *modelAdmin[T]) remove(ctx context.Context, id int64) error {
	return m.repository().Delete(ctx, id)
}

func displayString(rec interface{}) string {
	if s, ok := rec.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(rec)
}
