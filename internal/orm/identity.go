package orm

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/roach88/ormlite/internal/materialize"
	"github.com/roach88/ormlite/internal/schema"
)

var int64Type = reflect.TypeOf(int64(0))

// identity converts the scalar an identity-returning insert produced.
func identity(shape *schema.Shape, raw any) (int64, error) {
	var (
		id  int64
		err error
	)
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			err = fmt.Errorf("%d overflows int64", v)
		}
		id = int64(v)
	case float64:
		if v != math.Trunc(v) {
			err = fmt.Errorf("%g is not an integer", v)
		}
		id = int64(v)
	case []byte:
		id, err = strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
	case string:
		id, err = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		err = fmt.Errorf("unsupported identity type")
	}
	if err != nil {
		col, _ := shape.IdentityColumn()
		return 0, &materialize.ConversionError{
			Shape:  shape.Name,
			Field:  col,
			Column: col,
			Type:   int64Type,
			Value:  raw,
			Err:    err,
		}
	}
	return id, nil
}
