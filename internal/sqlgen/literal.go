package sqlgen

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeLayout is how inline statements render time values, always in UTC.
const TimeLayout = "2006-01-02 15:04:05.999999999"

// Literal renders v as an inline SQL literal.
func Literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quote(val)
	case time.Time:
		return quote(val.UTC().Format(TimeLayout))
	case uuid.UUID:
		return quote(val.String())
	case []byte:
		return "X'" + hex.EncodeToString(val) + "'"
	case bool:
		if val {
			return "1"
		}
		return "0"
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case fmt.Stringer:
		return quote(val.String())
	default:
		return literalKind(reflect.ValueOf(val))
	}
}

// literalKind renders named types by their underlying kind.
func literalKind(rv reflect.Value) string {
	switch rv.Kind() {
	case reflect.String:
		return quote(rv.String())
	case reflect.Bool:
		if rv.Bool() {
			return "1"
		}
		return "0"
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return "X'" + hex.EncodeToString(rv.Bytes()) + "'"
		}
	}
	return fmt.Sprint(rv.Interface())
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
