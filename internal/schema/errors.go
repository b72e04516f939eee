package schema

import (
	"errors"
	"fmt"
)

// Marker names a per-field metadata marker.
type Marker string

const (
	MarkerPrimaryKey Marker = "primary key"
	MarkerIdentity   Marker = "identity"
)

// MetadataMissingError reports that an operation needs a marker the shape
// does not declare. It is a schema-definition defect, not a data problem.
type MetadataMissingError struct {
	Shape  string
	Marker Marker
}

func (e *MetadataMissingError) Error() string {
	return fmt.Sprintf("metadata missing: shape %s declares no %s field", e.Shape, e.Marker)
}

// IsMetadataMissing reports whether err is (or wraps) a MetadataMissingError.
func IsMetadataMissing(err error) bool {
	var me *MetadataMissingError
	return errors.As(err, &me)
}

// InvalidShapeError reports a shape that cannot be used for persistence,
// e.g. a name that is not a valid SQL identifier or a malformed tag.
type InvalidShapeError struct {
	Shape  string
	Field  string
	Reason string
}

func (e *InvalidShapeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid shape %s: field %s: %s", e.Shape, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid shape %s: %s", e.Shape, e.Reason)
}
