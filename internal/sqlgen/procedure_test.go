package sqlgen

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ormlite/internal/schema"
)

var stringType = reflect.TypeOf("")

func TestProcedureCall(t *testing.T) {
	shape, values := bind(t, Tag{Label: "golang", Code: "GO"})

	tests := []struct {
		name string
		opts ProcedureOptions
		want []string
	}{
		{"insert", ProcedureOptions{}, []string{"Label", "Code"}},
		{"insert ignores include flag", ProcedureOptions{IncludePrimaryKey: true}, []string{"Label", "Code"}},
		{"update drops key", ProcedureOptions{Update: true}, []string{"Label"}},
		{"update keeps key", ProcedureOptions{Update: true, IncludePrimaryKey: true}, []string{"Label", "Code"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, err := ProcedureCall(shape, values, "SaveTag", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, "SaveTag", call.Name)

			var names []string
			for _, b := range call.Bindings {
				names = append(names, b.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestProcedureCall_SkipsIdentityAndExcluded(t *testing.T) {
	shape, values := bind(t, Student{StudentId: 4, StudentName: "Ann", ClassName: "3B"})

	call, err := ProcedureCall(shape, values, "SaveStudent", ProcedureOptions{})
	require.NoError(t, err)

	for _, b := range call.Bindings {
		assert.NotEqual(t, "StudentId", b.Name)
		assert.NotEqual(t, "ClassName", b.Name)
	}
	require.Len(t, call.Bindings, 4)
	assert.Nil(t, call.Bindings[3].Value, "absent nickname is passed as NULL")
}

func TestProcedureCall_Errors(t *testing.T) {
	shape, values := bind(t, Tag{Code: "GO"})

	_, err := ProcedureCall(shape, values, "Save Tag; DROP", ProcedureOptions{})
	var invalid *schema.InvalidShapeError
	assert.ErrorAs(t, err, &invalid)

	type Note struct{ Body string }
	noKey, noKeyValues := bind(t, Note{Body: "x"})
	_, err = ProcedureCall(noKey, noKeyValues, "SaveNote", ProcedureOptions{Update: true})
	assert.True(t, schema.IsMetadataMissing(err))

	_, err = ProcedureCall(noKey, noKeyValues, "SaveNote", ProcedureOptions{})
	assert.NoError(t, err)
}
