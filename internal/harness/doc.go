// Package harness runs ormlite scenarios against a fresh SQLite database.
//
// A scenario names one or more shape catalogs, prepares the database, then
// runs a list of steps through the full write pipeline (validate, build,
// execute) or through a materializing query. Each step is recorded in a
// trace; the trace can be compared against a golden file.
//
// # Scenario Format
//
//	name: student_crud
//	description: "Insert, update and read back a student"
//	specs:
//	  - specs            # catalog directories, relative to the scenario file
//	setup:
//	  - sql: CREATE TABLE Student (StudentId INTEGER PRIMARY KEY, StudentName TEXT)
//	  - procedure: SaveStudent
//	    body: INSERT INTO Student (StudentName) VALUES (@StudentName)
//	steps:
//	  - shape: Student
//	    op: insert
//	    return_identity: true
//	    values: { StudentName: Ann }
//	    expect: { result: 1 }
//	  - shape: Student
//	    op: insert
//	    values: { StudentName: "" }
//	    expect: { error: validation, message: "must not be empty" }
//	  - shape: Student
//	    query: SELECT * FROM Student
//	    expect:
//	      rows:
//	        - { StudentName: Ann }
//	assertions:
//	  - type: row_count
//	    table: Student
//	    count: 1
//	  - type: final_state
//	    table: Student
//	    where: { StudentId: 1 }
//	    expect: { StudentName: Ann }
//
// # Error Kinds
//
// expect.error matches the kind of error a step produced: validation,
// metadata_missing, conversion, procedure_not_found, unknown_shape or
// execution.
//
// # Assertion Types
//
//   - row_count: a table holds exactly count rows
//   - final_state: exactly one row matches where, and it has the expected values
//   - op_count: exactly count steps ran op (failed steps included)
package harness
