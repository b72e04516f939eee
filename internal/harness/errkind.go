package harness

import (
	"errors"

	"github.com/roach88/ormlite/internal/materialize"
	"github.com/roach88/ormlite/internal/schema"
	"github.com/roach88/ormlite/internal/store"
	"github.com/roach88/ormlite/internal/validate"
)

// Error kinds reported in traces and matched by expect.error.
const (
	KindValidation        = "validation"
	KindMetadataMissing   = "metadata_missing"
	KindConversion        = "conversion"
	KindProcedureNotFound = "procedure_not_found"
	KindExecution         = "execution"
	KindUnknownShape      = "unknown_shape"
)

// ErrUnknownShape is reported for steps naming a shape no catalog declares.
var ErrUnknownShape = errors.New("unknown shape")

func knownErrorKind(kind string) bool {
	switch kind {
	case KindValidation, KindMetadataMissing, KindConversion, KindProcedureNotFound, KindExecution, KindUnknownShape:
		return true
	}
	return false
}

// errorKind classifies err. Anything not raised by ormlite itself is
// attributed to the executor.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownShape):
		return KindUnknownShape
	case validate.IsValidationError(err):
		return KindValidation
	case schema.IsMetadataMissing(err):
		return KindMetadataMissing
	case materialize.IsConversionError(err):
		return KindConversion
	case store.IsProcedureNotFound(err):
		return KindProcedureNotFound
	default:
		return KindExecution
	}
}
