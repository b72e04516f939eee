// Package schema extracts persistence metadata from entity shapes.
//
// A Shape is the ordered list of fields of an entity type together with the
// markers attached to each field:
//   - primary key (orm:"pk")
//   - identity, assigned by the backend (orm:"identity")
//   - non-persisted (orm:"-")
//   - validation rules (validate:"required(Name);range(Age,1,120)")
//
// Shapes are built from Go structs with Describe/Of, or declared directly
// (see internal/catalog) for entities that have no Go type. Both paths yield
// the same Shape value, so the statement builder, the validation chain and
// the materializer never care where the metadata came from.
//
// Table and column names are the shape and field names verbatim. There is no
// separate mapping table.
//
// Describe caches per reflect.Type. The cache has no observable effect other
// than skipping repeated tag parsing.
package schema
