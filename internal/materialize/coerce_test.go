package materialize_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ormlite/internal/materialize"
	"github.com/roach88/ormlite/internal/schema"
)

func TestCoerce(t *testing.T) {
	shape, err := schema.New("Student",
		schema.Field{Name: "Id", Type: reflect.TypeOf(int64(0)), Identity: true},
		schema.Field{Name: "Age", Type: reflect.PointerTo(reflect.TypeOf(int64(0)))},
		schema.Field{Name: "Enrolled", Type: schema.TimeType},
		schema.Field{Name: "Name", Type: reflect.TypeOf("")},
	)
	require.NoError(t, err)

	rec, err := materialize.Coerce(shape, map[string]any{
		"Age":      20,
		"Enrolled": "2024-09-01",
		"Name":     nil,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(20), rec.Value("Age"))
	assert.Equal(t, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), rec.Value("Enrolled"))
	assert.Nil(t, rec.Value("Name"))
	assert.Nil(t, rec.Value("Id"))
}

func TestCoerce_Errors(t *testing.T) {
	shape, err := schema.New("Student", schema.Field{Name: "Age", Type: reflect.TypeOf(int64(0))})
	require.NoError(t, err)

	_, err = materialize.Coerce(shape, map[string]any{"Nope": 1})
	assert.ErrorContains(t, err, "has no field Nope")

	_, err = materialize.Coerce(shape, map[string]any{"Age": "old"})
	assert.True(t, materialize.IsConversionError(err))
}
