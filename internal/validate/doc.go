// Package validate runs the declarative validation chain over an entity
// instance before any statement is built.
//
// Rules are plain metadata (schema.Rule). Check evaluates one rule against
// one value and returns a Result; nothing is mutated. Entity walks the
// shape's fields in declaration order, and each field's rules in declaration
// order, and stops at the first failure.
//
// Behavior notes:
//   - Every rule other than Required first fails exactly like Required when
//     the value is empty (absent, or blank after trimming).
//   - Range passes when the parsed integer lies within [min, max]. A value
//     that does not parse as an integer fails with the range message.
//   - Pattern reports a mismatch as a failure.
//   - String lengths count runes of the NFC-normalized, trimmed value.
package validate
