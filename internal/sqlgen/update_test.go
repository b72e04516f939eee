package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ormlite/internal/schema"
)

func TestUpdate_IdentityKey(t *testing.T) {
	shape, values := bind(t, Student{StudentId: 7, StudentName: "Ann", Age: 21, ClassName: "3B"})

	stmt, err := Update(shape, values)
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE Student SET StudentName=@StudentName, Age=@Age, Birthday=@Birthday, Nickname=@Nickname WHERE StudentId=@StudentId",
		stmt.Text)
	assert.Equal(t, []string{"StudentName", "Age", "Birthday", "Nickname", "StudentId"}, stmt.Names())

	v, ok := stmt.Lookup("StudentId")
	require.True(t, ok)
	assert.Equal(t, 7, v)

	v, ok = stmt.Lookup("Nickname")
	require.True(t, ok)
	assert.Nil(t, v, "absent values are bound as NULL on update")
}

func TestUpdate_NonIdentityKeyBoundOnce(t *testing.T) {
	shape, values := bind(t, Tag{Label: "golang", Code: "GO"})

	stmt, err := Update(shape, values)
	require.NoError(t, err)

	assert.Equal(t, "UPDATE Tag SET Label=@Label, Code=@Code WHERE Code=@Code", stmt.Text)
	assert.Equal(t, []string{"Label", "Code"}, stmt.Names())
}

func TestUpdate_NoPrimaryKey(t *testing.T) {
	type Note struct {
		Body string
	}
	shape, values := bind(t, Note{Body: "x"})

	_, err := Update(shape, values)
	require.Error(t, err)
	assert.True(t, schema.IsMetadataMissing(err))

	var missing *schema.MetadataMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, schema.MarkerPrimaryKey, missing.Marker)

	_, err = Delete(shape, values)
	assert.True(t, schema.IsMetadataMissing(err))
}

func TestDelete(t *testing.T) {
	shape, values := bind(t, Student{StudentId: 3, StudentName: "Ann"})

	stmt, err := Delete(shape, values)
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM Student WHERE StudentId=@StudentId", stmt.Text)
	assert.Equal(t, []Binding{{Name: "StudentId", Value: 3}}, stmt.Bindings)
}

func TestRecordValues(t *testing.T) {
	shape, err := schema.New("Tag",
		schema.Field{Name: "Label", Type: stringType},
		schema.Field{Name: "Code", Type: stringType, PrimaryKey: true},
	)
	require.NoError(t, err)

	stmt, err := Update(shape, schema.Record{"Code": "GO"})
	require.NoError(t, err)
	assert.Equal(t, []Binding{{Name: "Label", Value: nil}, {Name: "Code", Value: "GO"}}, stmt.Bindings)

	stmt, err = InsertParams(shape, schema.Record{"Code": "GO"}, false)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO Tag (Code) VALUES (@Code)", stmt.Text)
}
