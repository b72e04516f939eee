package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ormlite/internal/orm"
)

// Scenario is one end-to-end ormlite test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists catalog directories. Relative paths are resolved against
	// the scenario file's directory by LoadScenario.
	Specs []string `yaml:"specs"`

	// Setup prepares the database before any step runs.
	Setup []SetupStep `yaml:"setup,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final database state and trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// SetupStep either runs raw SQL or registers a procedure.
type SetupStep struct {
	SQL       string `yaml:"sql,omitempty"`
	Procedure string `yaml:"procedure,omitempty"`
	Body      string `yaml:"body,omitempty"`
}

// Step is a write (Op) or a read (Query) against one shape.
type Step struct {
	Shape string `yaml:"shape"`

	// Op is a write operation name, e.g. insert or update-procedure.
	Op string `yaml:"op,omitempty"`

	// Query is caller-written SQL whose rows are materialized as records.
	Query string `yaml:"query,omitempty"`

	Values map[string]any `yaml:"values,omitempty"`

	ReturnIdentity    bool   `yaml:"return_identity,omitempty"`
	Procedure         string `yaml:"procedure,omitempty"`
	IncludePrimaryKey bool   `yaml:"include_primary_key,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the expected outcome of a step.
type Expect struct {
	// Error is the expected error kind; empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Message must appear in the error text.
	Message string `yaml:"message,omitempty"`

	// Result is the expected affected-row count or identity.
	Result *int64 `yaml:"result,omitempty"`

	// Rows are matched one-to-one, in order, against the query's records.
	// Each expected row is a subset match.
	Rows []map[string]any `yaml:"rows,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type is one of row_count, final_state, op_count.
	Type string `yaml:"type"`

	Table  string         `yaml:"table,omitempty"`
	Where  map[string]any `yaml:"where,omitempty"`
	Expect map[string]any `yaml:"expect,omitempty"`
	Op     string         `yaml:"op,omitempty"`
	Count  int            `yaml:"count"`
}

// Assertion type constants.
const (
	AssertRowCount   = "row_count"
	AssertFinalState = "final_state"
	AssertOpCount    = "op_count"
)

// OpQuery labels query steps in the trace.
const OpQuery = "query"

// LoadScenario reads and parses a scenario YAML file. Relative spec paths
// are resolved against the file's directory.
//
// Unknown fields are rejected, so typos such as "step:" fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML, resolving relative spec paths against
// basePath when it is non-empty.
func ParseScenario(data []byte, basePath string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec directory not found: %s", specPath)
		}
	}

	for i, step := range s.Setup {
		switch {
		case step.SQL != "" && step.Procedure != "":
			return fmt.Errorf("setup[%d]: sql and procedure are mutually exclusive", i)
		case step.SQL == "" && step.Procedure == "":
			return fmt.Errorf("setup[%d]: sql or procedure is required", i)
		case step.Procedure != "" && step.Body == "":
			return fmt.Errorf("setup[%d]: procedure %s needs a body", i, step.Procedure)
		}
	}

	for i, step := range s.Steps {
		if step.Shape == "" {
			return fmt.Errorf("steps[%d]: shape is required", i)
		}
		switch {
		case step.Op != "" && step.Query != "":
			return fmt.Errorf("steps[%d]: op and query are mutually exclusive", i)
		case step.Op == "" && step.Query == "":
			return fmt.Errorf("steps[%d]: op or query is required", i)
		case step.Op != "":
			op, err := orm.ParseOp(step.Op)
			if err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
			if op.IsProcedure() && step.Procedure == "" {
				return fmt.Errorf("steps[%d]: op %s needs a procedure name", i, op)
			}
		}
		if step.Expect != nil && step.Expect.Error != "" && !knownErrorKind(step.Expect.Error) {
			return fmt.Errorf("steps[%d]: unknown error kind %q", i, step.Expect.Error)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertRowCount, AssertFinalState:
			if a.Table == "" {
				return fmt.Errorf("assertions[%d]: %s requires table", i, a.Type)
			}
		case AssertOpCount:
			if a.Op == "" {
				return fmt.Errorf("assertions[%d]: op_count requires op", i)
			}
		default:
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
	}
	return nil
}
