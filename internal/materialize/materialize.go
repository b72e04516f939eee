package materialize

import (
	"reflect"
	"strings"

	"github.com/roach88/ormlite/internal/schema"
)

// columnIndex maps lowercase column names to their position. The first
// column wins when a name repeats.
func columnIndex(cur Cursor) map[string]int {
	n := cur.FieldCount()
	idx := make(map[string]int, n)
	for i := 0; i < n; i++ {
		name := strings.ToLower(cur.FieldName(i))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

type binding struct {
	field  schema.Field
	column int
}

// match pairs each field of shape with the column carrying its name.
func match(shape *schema.Shape, cols map[string]int) []binding {
	var out []binding
	for _, f := range shape.Fields {
		if i, ok := cols[strings.ToLower(f.Name)]; ok {
			out = append(out, binding{field: f, column: i})
		}
	}
	return out
}

// Into reads every remaining row of cur into a new T. T must be a struct
// type. The cursor is closed before Into returns.
func Into[T any](cur Cursor) (out []T, err error) {
	defer func() {
		if cerr := cur.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	shape, err := schema.Of[T]()
	if err != nil {
		return nil, err
	}
	pairs := match(shape, columnIndex(cur))

	for cur.Next() {
		var item T
		rv := reflect.ValueOf(&item).Elem()
		for _, p := range pairs {
			raw := cur.Value(p.column)
			if err := assign(rv.FieldByIndex(p.field.Index), raw); err != nil {
				return nil, &ConversionError{
					Shape:  shape.Name,
					Field:  p.field.Name,
					Column: cur.FieldName(p.column),
					Type:   p.field.Type,
					Value:  raw,
					Err:    err,
				}
			}
		}
		out = append(out, item)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Records reads every remaining row of cur as a schema.Record keyed by the
// shape's field names, converting each value to the declared field type.
// Fields without a column are absent from the record; NULL columns are
// stored as nil. The cursor is closed before Records returns.
func Records(shape *schema.Shape, cur Cursor) (out []schema.Record, err error) {
	defer func() {
		if cerr := cur.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	pairs := match(shape, columnIndex(cur))
	for cur.Next() {
		rec := make(schema.Record, len(pairs))
		for _, p := range pairs {
			raw := cur.Value(p.column)
			if raw == nil {
				rec[p.field.Name] = nil
				continue
			}
			target := reflect.New(p.field.Type).Elem()
			if err := assign(target, raw); err != nil {
				return nil, &ConversionError{
					Shape:  shape.Name,
					Field:  p.field.Name,
					Column: cur.FieldName(p.column),
					Type:   p.field.Type,
					Value:  raw,
					Err:    err,
				}
			}
			rec[p.field.Name] = target.Interface()
		}
		out = append(out, rec)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
