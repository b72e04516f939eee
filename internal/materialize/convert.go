package materialize

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/ormlite/internal/schema"
)

// timeLayouts are tried in order when a text column lands in a time field.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// assign converts value to field's type and stores it. A nil value resets
// the field to its zero value.
func assign(field reflect.Value, value any) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return assign(field.Elem(), value)
	}

	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			field.Set(reflect.Zero(field.Type()))
			return nil
		}
		v = v.Elem()
		value = v.Interface()
	}

	switch field.Type() {
	case schema.TimeType:
		t, err := toTime(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(t))
		return nil
	case schema.UUIDType:
		id, err := toUUID(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(id))
		return nil
	case schema.BytesType:
		switch b := value.(type) {
		case []byte:
			field.SetBytes(append([]byte(nil), b...))
		case string:
			field.SetBytes([]byte(b))
		default:
			return fmt.Errorf("want bytes")
		}
		return nil
	}

	if v.Type().AssignableTo(field.Type()) {
		field.Set(v)
		return nil
	}

	// Driver text often arrives as []byte.
	if b, ok := value.([]byte); ok {
		value = string(b)
	}

	switch field.Kind() {
	case reflect.String:
		switch s := value.(type) {
		case string:
			field.SetString(s)
		case time.Time:
			field.SetString(s.Format(time.RFC3339Nano))
		default:
			field.SetString(fmt.Sprint(value))
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt64(value)
		if err != nil {
			return err
		}
		if field.OverflowInt(n) {
			return fmt.Errorf("%d overflows %s", n, field.Type())
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toInt64(value)
		if err != nil {
			return err
		}
		if n < 0 || field.OverflowUint(uint64(n)) {
			return fmt.Errorf("%d overflows %s", n, field.Type())
		}
		field.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(value)
		if err != nil {
			return err
		}
		if field.OverflowFloat(f) {
			return fmt.Errorf("%g overflows %s", f, field.Type())
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := toBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		if v.Type().ConvertibleTo(field.Type()) {
			field.Set(v.Convert(field.Type()))
			return nil
		}
		return fmt.Errorf("unsupported target type")
	}
	return nil
}

func toInt64(value any) (int64, error) {
	switch n := value.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint, uint8, uint16, uint32, uint64:
		u := reflect.ValueOf(n).Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", u)
		}
		return int64(u), nil
	case float32, float64:
		f := reflect.ValueOf(n).Float()
		if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
			return 0, fmt.Errorf("%g is not an integer", f)
		}
		return int64(f), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	default:
		return 0, fmt.Errorf("want integer")
	}
}

func toFloat64(value any) (float64, error) {
	switch n := value.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case int, int8, int16, int32, int64:
		return float64(reflect.ValueOf(n).Int()), nil
	case uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(n).Uint()), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("want number")
	}
}

func toBool(value any) (bool, error) {
	switch b := value.(type) {
	case bool:
		return b, nil
	case int, int8, int16, int32, int64:
		return reflect.ValueOf(b).Int() != 0, nil
	case uint, uint8, uint16, uint32, uint64:
		return reflect.ValueOf(b).Uint() != 0, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(b))
	default:
		return false, fmt.Errorf("want boolean")
	}
}

func toTime(value any) (time.Time, error) {
	switch t := value.(type) {
	case time.Time:
		return t, nil
	case int64:
		return time.Unix(t, 0).UTC(), nil
	case []byte:
		return parseTime(string(t))
	case string:
		return parseTime(t)
	default:
		return time.Time{}, fmt.Errorf("want time")
	}
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

func toUUID(value any) (uuid.UUID, error) {
	switch id := value.(type) {
	case uuid.UUID:
		return id, nil
	case string:
		return uuid.Parse(id)
	case []byte:
		if len(id) == 16 {
			return uuid.FromBytes(id)
		}
		return uuid.ParseBytes(id)
	default:
		return uuid.Nil, fmt.Errorf("want uuid")
	}
}
