package orm

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataFor(t *testing.T) {
	meta, err := MetadataFor[testTask]()
	require.NoError(t, err)

	assert.Equal(t, "tasks", meta.TableName)
	assert.Equal(t, "testTask", meta.StructName)
	assert.Equal(t, taskColumns, meta.ColumnNames())
	assert.Equal(t, "id", meta.PrimaryKey.Name)

	project, ok := meta.Column("project_id")
	require.True(t, ok)
	require.NotNil(t, project.ForeignKey)
	assert.Equal(t, ForeignKeyRef{Table: "projects", Column: "id", OnDelete: "CASCADE"}, *project.ForeignKey)
	assert.False(t, project.Nullable())

	assignee, ok := meta.Column("assignee_id")
	require.True(t, ok)
	assert.Equal(t, "SET NULL", assignee.ForeignKey.OnDelete)
	assert.True(t, assignee.Nullable())

	updated, _ := meta.Column("updated_at")
	assert.True(t, updated.AutoNow)
	created, _ := meta.Column("created_at")
	assert.True(t, created.AutoNowAdd)
	assert.Equal(t, "now()", created.Default)

	again, err := MetadataFor[*testTask]()
	require.NoError(t, err)
	assert.Same(t, meta, again)
}

func TestMetadataVarcharSize(t *testing.T) {
	meta, err := MetadataFor[testProject]()
	require.NoError(t, err)

	name, _ := meta.Column("name")
	assert.Equal(t, 255, name.Size)
	description, _ := meta.Column("description")
	assert.Equal(t, 0, description.Size)
	assert.Equal(t, "''", description.Default)
}

type badSetNull struct {
	ID    int64 `db:"id" dbdef:"type:bigserial;primary_key"`
	Owner int64 `db:"owner_id" dbdef:"type:bigint;not_null;foreign_key:users.id;on_delete:SET NULL"`
}

type badAutoNow struct {
	ID      int64  `db:"id" dbdef:"type:bigserial;primary_key"`
	Touched string `db:"touched" dbdef:"type:text;auto_now"`
}

type badAttribute struct {
	ID int64 `db:"id" dbdef:"type:bigserial;primary_key;indexed"`
}

type noPrimaryKey struct {
	Name string `db:"name" dbdef:"type:text"`
}

type missingType struct {
	ID int64 `db:"id" dbdef:"primary_key"`
}

type badOnDelete struct {
	ID    int64 `db:"id" dbdef:"type:bigserial;primary_key"`
	Owner int64 `db:"owner_id" dbdef:"type:bigint;foreign_key:users.id;on_delete:EXPLODE"`
}

func TestMetadataRejectsInvalidModels(t *testing.T) {
	tests := []struct {
		name    string
		typ     reflect.Type
		wantErr string
	}{
		{"set null on not null column", reflect.TypeOf(badSetNull{}), "requires a nullable column"},
		{"auto_now on string", reflect.TypeOf(badAutoNow{}), "require a time.Time field"},
		{"unknown attribute", reflect.TypeOf(badAttribute{}), `unknown dbdef attribute "indexed"`},
		{"no primary key", reflect.TypeOf(noPrimaryKey{}), "no primary key"},
		{"missing type", reflect.TypeOf(missingType{}), "missing dbdef type"},
		{"bad on_delete", reflect.TypeOf(badOnDelete{}), "invalid on_delete"},
		{"not a struct", reflect.TypeOf(time.Duration(0)), "invalid struct"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MetadataOf(tt.typ)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDeriveTableName(t *testing.T) {
	assert.Equal(t, "no_primary_keys", deriveTableName("NoPrimaryKey"))
	assert.Equal(t, "classes", deriveTableName("Class"))
}

func TestParseDBDefTag(t *testing.T) {
	attrs := ParseDBDefTag("type:varchar(50); not_null ;unique;check:order_no >= 0")
	assert.Equal(t, map[string]string{
		"type":     "varchar(50)",
		"not_null": "",
		"unique":   "",
		"check":    "order_no >= 0",
	}, attrs)
	assert.Empty(t, ParseDBDefTag(""))
}
