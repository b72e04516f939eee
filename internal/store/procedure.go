package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/ormlite/internal/schema"
	"github.com/roach88/ormlite/internal/sqlgen"
)

// ProcedureDef is a registered procedure body.
type ProcedureDef struct {
	Name      string `json:"name"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ProcedureNotFoundError reports a call to a procedure that was never
// registered.
type ProcedureNotFoundError struct {
	Name string
}

func (e *ProcedureNotFoundError) Error() string {
	return fmt.Sprintf("procedure %s is not registered", e.Name)
}

// IsProcedureNotFound reports whether err is (or wraps) a ProcedureNotFoundError.
func IsProcedureNotFound(err error) bool {
	var pe *ProcedureNotFoundError
	return errors.As(err, &pe)
}

// RegisterProcedure stores body under name, replacing any previous body.
// Names are matched without regard to case.
func (s *Store) RegisterProcedure(ctx context.Context, name, body string) error {
	if !schema.ValidIdentifier(name) {
		return fmt.Errorf("register procedure: %q is not a valid identifier", name)
	}
	if len(splitStatements(body)) == 0 {
		return fmt.Errorf("register procedure %s: empty body", name)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ormlite_procedures (name, body)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`, name, body)
	if err != nil {
		return fmt.Errorf("register procedure %s: %w", name, err)
	}
	return nil
}

// DropProcedure removes a registered procedure. Dropping an unknown name
// yields *ProcedureNotFoundError.
func (s *Store) DropProcedure(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ormlite_procedures WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("drop procedure %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &ProcedureNotFoundError{Name: name}
	}
	return nil
}

// Procedure returns the registered procedure called name.
func (s *Store) Procedure(ctx context.Context, name string) (ProcedureDef, error) {
	var p ProcedureDef
	err := s.db.QueryRowContext(ctx, `
		SELECT name, body, created_at, updated_at
		FROM ormlite_procedures
		WHERE name = ?
	`, name).Scan(&p.Name, &p.Body, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ProcedureDef{}, &ProcedureNotFoundError{Name: name}
	}
	if err != nil {
		return ProcedureDef{}, fmt.Errorf("read procedure %s: %w", name, err)
	}
	return p, nil
}

// Procedures lists registered procedures ordered by name.
//
// Returns an empty slice (not nil) if none are registered.
func (s *Store) Procedures(ctx context.Context) ([]ProcedureDef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, body, created_at, updated_at
		FROM ormlite_procedures
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query procedures: %w", err)
	}
	defer rows.Close()

	procs := []ProcedureDef{}
	for rows.Next() {
		var p ProcedureDef
		if err := rows.Scan(&p.Name, &p.Body, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan procedure: %w", err)
		}
		procs = append(procs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate procedures: %w", err)
	}
	return procs, nil
}

// ExecuteProcedure runs the registered body of name in one transaction and
// returns the total number of affected rows. Each statement receives only
// the bindings it references.
func (s *Store) ExecuteProcedure(ctx context.Context, name string, bindings []sqlgen.Binding) (int64, error) {
	def, err := s.Procedure(ctx, name)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("procedure %s: begin: %w", name, err)
	}
	defer tx.Rollback()

	var total int64
	for _, stmt := range splitStatements(def.Body) {
		a, err := args(stmt, bindings)
		if err != nil {
			return 0, fmt.Errorf("procedure %s: %w", name, err)
		}
		res, err := tx.ExecContext(ctx, stmt, a...)
		if err != nil {
			return 0, fmt.Errorf("procedure %s: %w", name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("procedure %s: rows affected: %w", name, err)
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("procedure %s: commit: %w", name, err)
	}
	return total, nil
}

// splitStatements splits body on ';' outside quotes and comments and drops
// blank statements.
func splitStatements(body string) []string {
	var (
		out   []string
		start int
	)
	flush := func(end int) {
		if stmt := strings.TrimSpace(body[start:end]); stmt != "" && !onlyComments(stmt) {
			out = append(out, stmt)
		}
	}
	for i := 0; i < len(body); i++ {
		switch c := body[i]; {
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(body, i, c)
		case c == '-' && i+1 < len(body) && body[i+1] == '-':
			for i += 2; i < len(body) && body[i] != '\n'; i++ {
			}
		case c == ';':
			flush(i)
			start = i + 1
		}
	}
	if start < len(body) {
		flush(len(body))
	}
	return out
}

func onlyComments(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return false
		}
	}
	return true
}
