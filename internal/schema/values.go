package schema

import (
	"fmt"
	"reflect"
)

// Values exposes the field values of one entity instance.
// Value returns nil when the field is absent (nil pointer, nil interface or
// missing key); pointers are dereferenced.
type Values interface {
	Value(field string) any
}

// Record is a map-backed instance for shapes without a Go type.
type Record map[string]any

// Value implements Values.
func (r Record) Value(field string) any {
	return deref(reflect.ValueOf(r[field]))
}

type structValues struct {
	shape *Shape
	v     reflect.Value
}

func (s structValues) Value(field string) any {
	f, ok := s.shape.Field(field)
	if !ok || f.Index == nil {
		return nil
	}
	return deref(s.v.FieldByIndex(f.Index))
}

// Bind describes the struct behind v and returns its shape together with a
// view of its current field values.
func Bind(v any) (*Shape, Values, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, nil, fmt.Errorf("schema: cannot bind nil %T", v)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("schema: cannot bind %T: not a struct", v)
	}
	shape, err := DescribeType(rv.Type())
	if err != nil {
		return nil, nil, err
	}
	return shape, structValues{shape: shape, v: rv}, nil
}

func deref(v reflect.Value) any {
	for v.IsValid() {
		switch v.Kind() {
		case reflect.Ptr, reflect.Interface:
			if v.IsNil() {
				return nil
			}
			v = v.Elem()
		case reflect.Map, reflect.Slice:
			if v.IsNil() {
				return nil
			}
			return v.Interface()
		default:
			return v.Interface()
		}
	}
	return nil
}
