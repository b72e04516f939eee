package materialize

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/roach88/ormlite/internal/schema"
)

// Coerce converts loosely typed values, such as those decoded from YAML or
// JSON, into a schema.Record whose values carry the shape's declared types.
// Keys must name fields of shape; nil values stay absent.
func Coerce(shape *schema.Shape, raw map[string]any) (schema.Record, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rec := make(schema.Record, len(raw))
	for _, k := range keys {
		f, ok := shape.Field(k)
		if !ok {
			return nil, fmt.Errorf("shape %s has no field %s", shape.Name, k)
		}
		v := raw[k]
		if v == nil {
			rec[k] = nil
			continue
		}
		target := reflect.New(f.Type).Elem()
		if err := assign(target, v); err != nil {
			return nil, &ConversionError{
				Shape:  shape.Name,
				Field:  f.Name,
				Column: k,
				Type:   f.Type,
				Value:  v,
				Err:    err,
			}
		}
		rec[k] = target.Interface()
	}
	return rec, nil
}
