// Package materialize turns row cursors into populated entity instances.
//
// Column names are read once per cursor and matched to field names without
// regard to case. Fields with no matching column keep their zero value;
// columns with no matching field are ignored. Values are converted to the
// declared field type, and a value that cannot be represented yields a
// *ConversionError. The cursor is closed on every return path.
package materialize
