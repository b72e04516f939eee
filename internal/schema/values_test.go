package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBind_StructValues(t *testing.T) {
	note := "hello"
	st := &Student{StudentId: 7, StudentName: "Ann", Note: &note, ClassName: "3B"}

	shape, vals, err := Bind(st)
	require.NoError(t, err)
	assert.Equal(t, "Student", shape.Name)

	assert.Equal(t, 7, vals.Value("StudentId"))
	assert.Equal(t, "Ann", vals.Value("StudentName"))
	assert.Equal(t, "hello", vals.Value("Note"))
	assert.Equal(t, "3B", vals.Value("ClassName"))
	assert.Nil(t, vals.Value("Missing"))

	st.Note = nil
	assert.Nil(t, vals.Value("Note"))
}

func TestBind_Errors(t *testing.T) {
	var nilStudent *Student
	_, _, err := Bind(nilStudent)
	assert.Error(t, err)

	_, _, err = Bind("text")
	assert.Error(t, err)
}

func TestRecordValues(t *testing.T) {
	n := 3
	var nilPtr *int
	r := Record{
		"Plain":   "x",
		"Pointer": &n,
		"NilPtr":  nilPtr,
		"Nil":     nil,
		"Bytes":   []byte(nil),
	}

	assert.Equal(t, "x", r.Value("Plain"))
	assert.Equal(t, 3, r.Value("Pointer"))
	assert.Nil(t, r.Value("NilPtr"))
	assert.Nil(t, r.Value("Nil"))
	assert.Nil(t, r.Value("Bytes"))
	assert.Nil(t, r.Value("Absent"))
}
