package validate

import (
	"github.com/roach88/ormlite/internal/schema"
)

// Success is returned by Entity when every rule passes.
const Success = "SUCCESS"

// Entity evaluates the shape's rules against values and returns Success or
// the message of the first failing rule.
func Entity(shape *schema.Shape, values schema.Values) string {
	for _, f := range shape.Fields {
		if len(f.Rules) == 0 {
			continue
		}
		v := values.Value(f.Name)
		for _, rule := range f.Rules {
			if r := Check(rule, v); !r.Valid {
				return r.Message
			}
		}
	}
	return Success
}

// Err is Entity returning a *ValidationError instead of a message, or nil.
func Err(shape *schema.Shape, values schema.Values) error {
	if msg := Entity(shape, values); msg != Success {
		return &ValidationError{Entity: shape.Name, Message: msg}
	}
	return nil
}

// Struct validates a struct value or pointer to struct.
func Struct(v any) error {
	shape, values, err := schema.Bind(v)
	if err != nil {
		return err
	}
	return Err(shape, values)
}
