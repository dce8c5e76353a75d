package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a consistency scenario: requests to make and what the
// store must look like once they have settled.
type Scenario struct {
	// Name uniquely identifies this scenario. Used as the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// StrictTransactions runs the engine with every course read-modify-write
	// inside a transaction.
	StrictTransactions bool `yaml:"strict_transactions,omitempty"`

	// Steps are executed in order through the request surface.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// ProgressMatch selects a progress record by its (course, assignee) pair.
// The first match in creation order is used.
type ProgressMatch struct {
	Course   string `yaml:"course"`
	Assignee string `yaml:"assignee"`
}

// Step is one request.
type Step struct {
	// Op is the request to make, e.g. "create_course".
	Op string `yaml:"op"`

	// ID is the record id. Optional on create_* (generated when empty).
	ID string `yaml:"id,omitempty"`

	// Match selects the progress record for update_progress and
	// delete_progress when ID is empty.
	Match *ProgressMatch `yaml:"match,omitempty"`

	// Name is the user name (user ops).
	Name string `yaml:"name,omitempty"`

	// Assignees and AssignToEveryone describe the course (course ops).
	Assignees        []string `yaml:"assignees,omitempty"`
	AssignToEveryone bool     `yaml:"assign_to_everyone,omitempty"`

	// Course, Assignee and Status describe the progress record (progress ops).
	Course   string `yaml:"course,omitempty"`
	Assignee string `yaml:"assignee,omitempty"`
	Status   string `yaml:"status,omitempty"`

	// ExpectError, when set, requires the request to fail with an error
	// containing this text.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Course and Assignee select records (course_assignees, progress_count)
	// or give expected values (progress).
	Course   string `yaml:"course,omitempty"`
	Assignee string `yaml:"assignee,omitempty"`

	// Assignees is the expected assignee list (course_assignees).
	Assignees []string `yaml:"assignees,omitempty"`

	// Count is the expected number of records (progress_count).
	Count *int `yaml:"count,omitempty"`

	// ID or Match selects the progress record (progress).
	ID    string         `yaml:"id,omitempty"`
	Match *ProgressMatch `yaml:"match,omitempty"`

	// Status is the expected progress status (progress).
	Status string `yaml:"status,omitempty"`
}

// Step operations.
const (
	OpCreateUser     = "create_user"
	OpUpdateUser     = "update_user"
	OpDeleteUser     = "delete_user"
	OpCreateCourse   = "create_course"
	OpUpdateCourse   = "update_course"
	OpDeleteCourse   = "delete_course"
	OpCreateProgress = "create_progress"
	OpUpdateProgress = "update_progress"
	OpDeleteProgress = "delete_progress"
)

// Assertion type constants.
const (
	AssertCourseAssignees = "course_assignees"
	AssertProgressCount   = "progress_count"
	AssertProgress        = "progress"
	AssertAuditClean      = "audit_clean"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML from memory.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single step based on its op.
func validateStep(index int, s *Step) error {
	switch s.Op {
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	case OpCreateUser, OpCreateCourse:
	case OpUpdateUser, OpDeleteUser, OpUpdateCourse, OpDeleteCourse:
		if s.ID == "" {
			return fmt.Errorf("steps[%d]: id is required for %s", index, s.Op)
		}
	case OpCreateProgress:
	case OpUpdateProgress, OpDeleteProgress:
		if s.ID == "" && s.Match == nil {
			return fmt.Errorf("steps[%d]: id or match is required for %s", index, s.Op)
		}
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertCourseAssignees:
		if a.Course == "" {
			return fmt.Errorf("assertions[%d]: course is required for course_assignees", index)
		}
	case AssertProgressCount:
		if a.Course == "" && a.Assignee == "" {
			return fmt.Errorf("assertions[%d]: course or assignee is required for progress_count", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for progress_count", index)
		}
	case AssertProgress:
		if a.ID == "" && a.Match == nil {
			return fmt.Errorf("assertions[%d]: id or match is required for progress", index)
		}
	case AssertAuditClean:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
