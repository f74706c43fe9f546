package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := New(
		Column{Name: "id", Type: TypeInt32, IsKeyColumn: true, IsAutoGenerated: true, IsCreated: true, IsSaved: true},
		Column{Name: "name", Type: TypeText, IsCreated: true, IsSaved: true},
		Column{Name: "payload", Type: TypeBlob, IsCreated: true, IsSaved: true},
		Column{Name: "size", Type: TypeInt32},
	)
	require.NoError(t, err)
	return s
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New(Column{Name: "a"}, Column{Name: "a"})
	assert.Error(t, err)

	_, err = New(Column{Name: ""})
	assert.Error(t, err)
}

func TestDescribeIsOrderedCopy(t *testing.T) {
	s := testSchema(t)

	cols := s.Describe()
	require.Len(t, cols, 4)
	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, "size", cols[3].Name)

	cols[0].Name = "mutated"
	assert.Equal(t, "id", s.Describe()[0].Name)
}

func TestColumnsByRole(t *testing.T) {
	s := testSchema(t)

	assert.Equal(t, []string{"id", "name", "payload"}, s.Columns(Created))
	assert.Equal(t, []string{"id", "name", "payload"}, s.Columns(Saved))
	assert.Equal(t, []string{"id"}, s.Columns(Keys))
	assert.Equal(t, []string{"name", "payload"}, s.Columns(Insertable))
	assert.Equal(t, []string{"name", "payload"}, s.Columns(Updatable))
}

func TestEnumerate(t *testing.T) {
	s := testSchema(t)

	assert.Equal(t, []string{"name", "payload", "size"}, s.Enumerate(false))
	assert.Equal(t, []string{"id", "name", "payload", "size"}, s.Enumerate(true))
}

func TestTypeOf(t *testing.T) {
	s := testSchema(t)

	typ, ok := s.TypeOf("payload")
	assert.True(t, ok)
	assert.Equal(t, TypeBlob, typ)

	_, ok = s.TypeOf("missing")
	assert.False(t, ok)
}

func TestTableDefinition(t *testing.T) {
	s := testSchema(t)
	table := NewTable("files", s).WithPrimaryKey("id").WithUnique("name", "payload")

	assert.True(t, table.HasOptions())
	assert.Equal(t, "PRIMARY KEY (id),UNIQUE (name,payload)", table.Options())

	def, err := table.Definition(func(typ Type) string { return strings.ToUpper(typ.String()) }, nil)
	require.NoError(t, err)
	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS files (id INT32, name TEXT, payload BLOB, PRIMARY KEY (id), UNIQUE (name,payload))",
		def)
}

func TestTableDefinitionUnknownConstraintColumn(t *testing.T) {
	table := NewTable("files", testSchema(t)).WithUnique("nope")

	_, err := table.Definition(func(Type) string { return "X" }, nil)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}
