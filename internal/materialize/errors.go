package materialize

import (
	"errors"
	"fmt"
	"reflect"
)

// ConversionError reports a column value that the target field's type cannot
// represent.
type ConversionError struct {
	Shape  string
	Field  string
	Column string
	Type   reflect.Type
	Value  any
	Err    error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("materialize %s.%s: cannot convert column %s value %v (%T) to %s",
		e.Shape, e.Field, e.Column, e.Value, e.Value, e.Type)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

// IsConversionError reports whether err is (or wraps) a ConversionError.
func IsConversionError(err error) bool {
	var ce *ConversionError
	return errors.As(err, &ce)
}
