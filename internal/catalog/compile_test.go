package catalog

import (
	"reflect"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ormlite/internal/schema"
)

func compileShape(t *testing.T, src, path string) (*schema.Shape, error) {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return CompileShape(v.LookupPath(cue.ParsePath(path)))
}

func TestCompileShapeBasic(t *testing.T) {
	shape, err := compileShape(t, `
		shape: Student: {
			fields: [
				{name: "StudentId", type: "int", identity: true, primary_key: true},
				{name: "StudentName", type: "string", rules: [
					{kind: "required", display: "Student name"},
					{kind: "strlen", display: "Student name", min: 2, max: 20},
				]},
				{name: "Age", type: "int", nullable: true, rules: [{kind: "range", min: 1, max: 120}]},
				{name: "Zip", type: "string", rules: [{kind: "length", length: 5}]},
				{name: "Phone", type: "string", rules: [{kind: "pattern", display: "phone, mobile", pattern: "^[0-9]{3},[0-9]+$"}]},
				{name: "Email", type: "string", rules: [{kind: "email"}]},
				{name: "Enrolled", type: "time"},
				{name: "Key", type: "uuid"},
				{name: "Photo", type: "bytes", nullable: true},
				{name: "Score", type: "float"},
				{name: "Active", type: "bool"},
				{name: "Note", type: "string", excluded: true},
			]
		}
	`, "shape.Student")
	require.NoError(t, err)

	assert.Equal(t, "Student", shape.Name)
	assert.Equal(t, []string{"StudentId", "StudentName", "Age", "Zip", "Phone", "Email",
		"Enrolled", "Key", "Photo", "Score", "Active", "Note"}, shape.Columns())

	id, err := shape.IdentityColumn()
	require.NoError(t, err)
	assert.Equal(t, "StudentId", id)
	assert.Equal(t, map[string]struct{}{"Note": {}}, shape.ExcludedColumns())

	name, _ := shape.Field("StudentName")
	assert.Equal(t, []schema.Rule{
		{Kind: schema.RuleRequired, Display: "Student name"},
		{Kind: schema.RuleLengthRange, Display: "Student name", Min: 2, Max: 20},
	}, name.Rules)

	age, _ := shape.Field("Age")
	assert.Equal(t, reflect.PointerTo(reflect.TypeOf(int64(0))), age.Type)
	assert.Equal(t, schema.Rule{Kind: schema.RuleRange, Display: "Age", Min: 1, Max: 120}, age.Rules[0])

	zip, _ := shape.Field("Zip")
	assert.Equal(t, 5, zip.Rules[0].Length)

	phone, _ := shape.Field("Phone")
	assert.Equal(t, "phone, mobile", phone.Rules[0].Display)
	assert.Equal(t, "^[0-9]{3},[0-9]+$", phone.Rules[0].Pattern)

	enrolled, _ := shape.Field("Enrolled")
	assert.True(t, enrolled.Temporal())

	key, _ := shape.Field("Key")
	assert.Equal(t, schema.UUIDType, key.Type)

	photo, _ := shape.Field("Photo")
	assert.Equal(t, schema.BytesType, photo.Type, "bytes are nullable without a pointer")
}

func TestCompileShapeErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"missing fields", `shape: X: {}`, "fields"},
		{"empty fields", `shape: X: {fields: []}`, "fields"},
		{"missing name", `shape: X: {fields: [{type: "int"}]}`, "name"},
		{"missing type", `shape: X: {fields: [{name: "A"}]}`, "type"},
		{"unknown type", `shape: X: {fields: [{name: "A", type: "decimal"}]}`, "type"},
		{"unknown rule", `shape: X: {fields: [{name: "A", type: "string", rules: [{kind: "upper"}]}]}`, "rules"},
		{"range without max", `shape: X: {fields: [{name: "A", type: "int", rules: [{kind: "range", min: 1}]}]}`, "max"},
		{"inverted range", `shape: X: {fields: [{name: "A", type: "int", rules: [{kind: "range", min: 5, max: 1}]}]}`, "rules"},
		{"bad pattern", `shape: X: {fields: [{name: "A", type: "string", rules: [{kind: "pattern", pattern: "("}]}]}`, "shape"},
		{"duplicate field", `shape: X: {fields: [{name: "A", type: "int"}, {name: "A", type: "int"}]}`, "shape"},
		{"bad identifier", `shape: X: {fields: [{name: "drop table", type: "int"}]}`, "shape"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileShape(t, tt.src, "shape.X")
			require.Error(t, err)
			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCompileShapeWrongValueType(t *testing.T) {
	_, err := compileShape(t, `shape: X: {fields: [{name: 5, type: "int"}]}`, "shape.X")
	require.Error(t, err)
}

func TestCompileString(t *testing.T) {
	cat, err := CompileString(`
		shape: Tag: fields: [{name: "Code", type: "string", primary_key: true}]
		shape: Course: fields: [{name: "Id", type: "int", identity: true}]
	`)
	require.NoError(t, err)

	assert.Equal(t, []string{"Course", "Tag"}, cat.Names())
	tag, ok := cat.Shape("Tag")
	require.True(t, ok)
	pk, err := tag.PrimaryKeyColumn()
	require.NoError(t, err)
	assert.Equal(t, "Code", pk)

	_, ok = cat.Shape("Missing")
	assert.False(t, ok)
}

func TestCompileStringErrors(t *testing.T) {
	_, err := CompileString(`other: 1`)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeGeneric, le.Code)

	_, err = CompileString(`shape: X: {fields: [{name: "A", type: "decimal"}]}`)
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeFieldType, le.Code)
	assert.Contains(t, le.Message, "shape.X")

	_, err = CompileString(`shape: {`)
	assert.Error(t, err)
}

func TestTypeNames(t *testing.T) {
	assert.Equal(t, []string{"bool", "bytes", "float", "int", "string", "time", "uuid"}, TypeNames())
}
