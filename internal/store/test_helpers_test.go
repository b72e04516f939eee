package store

import (
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

const studentDDL = `
CREATE TABLE Student (
	StudentId   INTEGER PRIMARY KEY AUTOINCREMENT,
	StudentName TEXT NOT NULL,
	Age         INTEGER,
	Email       TEXT UNIQUE,
	Enrolled    DATETIME
)`

// createStudentTable creates the entity table used across store tests.
func createStudentTable(t *testing.T, s *Store) {
	t.Helper()
	if _, err := s.DB().Exec(studentDDL); err != nil {
		t.Fatalf("create Student: %v", err)
	}
}
