// Package schema validates records against CUE definitions before they are
// persisted. A rejected record surfaces as a *ValidationError, the store's
// validation-error outcome for create and save.
package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/coursesync/internal/record"
)

//go:embed schema.cue
var schemaCUE string

// ValidationError describes why a record was rejected.
type ValidationError struct {
	Family  record.Family
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s record: %s: %s", e.Family, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s record: %s", e.Family, e.Message)
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validator checks records against the embedded schema.
//
// Thread-safety: a cue.Context is not safe for concurrent use, so all
// evaluation is serialised through mu.
type Validator struct {
	mu          sync.Mutex
	ctx         *cue.Context
	definitions map[record.Family]cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	defs := map[record.Family]string{
		record.FamilyCourses:  "#Course",
		record.FamilyUsers:    "#User",
		record.FamilyProgress: "#Progress",
	}
	v := &Validator{ctx: ctx, definitions: make(map[record.Family]cue.Value, len(defs))}
	for family, name := range defs {
		def := root.LookupPath(cue.ParsePath(name))
		if !def.Exists() {
			return nil, fmt.Errorf("compile schema: definition %s not found", name)
		}
		v.definitions[family] = def
	}
	return v, nil
}

// ValidateCourse checks a course record.
func (v *Validator) ValidateCourse(c record.Course) error {
	assignees := c.Assignees
	if assignees == nil {
		assignees = []string{}
	}
	return v.validate(record.FamilyCourses, map[string]any{
		"id":                 c.ID,
		"assignees":          assignees,
		"assign_to_everyone": c.AssignToEveryone,
	})
}

// ValidateUser checks a user record.
func (v *Validator) ValidateUser(u record.User) error {
	return v.validate(record.FamilyUsers, map[string]any{
		"id":   u.ID,
		"name": u.Name,
	})
}

// ValidateProgress checks a progress record.
func (v *Validator) ValidateProgress(p record.Progress) error {
	return v.validate(record.FamilyProgress, map[string]any{
		"id":       p.ID,
		"course":   p.Course,
		"assignee": p.Assignee,
		"status":   p.Status,
	})
}

func (v *Validator) validate(family record.Family, fields map[string]any) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	def, ok := v.definitions[family]
	if !ok {
		return &ValidationError{Family: family, Message: "unknown record family"}
	}

	value := v.ctx.Encode(fields)
	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return toValidationError(family, err)
	}
	return nil
}

// toValidationError reduces a CUE error list to its first entry.
func toValidationError(family record.Family, err error) *ValidationError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Family: family, Message: err.Error()}
	}
	first := errs[0]
	format, args := first.Msg()
	return &ValidationError{
		Family:  family,
		Field:   fieldPath(first.Path()),
		Message: fmt.Sprintf(format, args...),
	}
}

// fieldPath joins a CUE error path, dropping the leading definition selectors.
func fieldPath(path []string) string {
	for len(path) > 0 && strings.HasPrefix(path[0], "#") {
		path = path[1:]
	}
	return strings.Join(path, ".")
}
