// Package catalog declares entity shapes in CUE for entities that have no Go
// type.
//
// A catalog is a directory of .cue files. Each entry under the top-level
// shape struct becomes one schema.Shape, named after its label:
//
//	shape: Student: {
//		fields: [
//			{name: "StudentId", type: "int", identity: true, primary_key: true},
//			{name: "StudentName", type: "string", rules: [{kind: "required", display: "Student name"}]},
//			{name: "Age", type: "int", nullable: true, rules: [{kind: "range", display: "Age", min: 1, max: 120}]},
//			{name: "Note", type: "string", excluded: true},
//		]
//	}
//
// Field types: string, int, float, bool, time, uuid, bytes. A nullable
// field is held behind a pointer, so it can be absent.
//
// Rule kinds and their parameters:
//
//	required  display
//	range     display, min, max
//	length    display, length
//	strlen    display, min, max
//	email     display
//	pattern   display, pattern
//
// display defaults to the field name.
package catalog
