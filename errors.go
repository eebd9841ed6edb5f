package graphbundle

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Standard sentinel errors. Every typed error below matches exactly one of
// them through errors.Is.
var (
	// ErrNotFound is returned when a graph record does not exist.
	ErrNotFound = errors.New("graphbundle: record not found")

	// ErrUnknownType is returned when an entity type symbol is not registered.
	ErrUnknownType = errors.New("graphbundle: unknown entity type")

	// ErrStructural is returned when a bundle or graph record is malformed
	// beyond what validation can report, e.g. a relation that is not a list.
	ErrStructural = errors.New("graphbundle: malformed structure")

	// ErrValidation is matched by validation failures carrying an error tree.
	ErrValidation = errors.New("graphbundle: validation failed")

	// ErrIntegrity is returned by persistence sinks on uniqueness or other
	// constraint violations detected at write time.
	ErrIntegrity = errors.New("graphbundle: integrity violation")

	// ErrPathNotFound is returned when a bundle path addresses nothing.
	ErrPathNotFound = errors.New("graphbundle: path not found")

	// ErrPathType is returned when a bundle path addresses a relation where a
	// property was expected, or the other way around.
	ErrPathType = errors.New("graphbundle: path type mismatch")
)

// NotFoundError represents an error when a graph record is not found.
type NotFoundError struct {
	id string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("graphbundle: record %q not found", e.id)
}

// Is reports whether the target error matches NotFoundError.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// ID returns the id that was searched for.
func (e *NotFoundError) ID() string {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given record id.
func NewNotFoundError(id string) *NotFoundError {
	return &NotFoundError{id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// UnknownTypeError is returned when a type symbol has no registered schema.
type UnknownTypeError struct {
	Type EntityType
}

// Error returns the error string.
func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("graphbundle: unknown entity type %q", string(e.Type))
}

// Is reports whether the target error matches UnknownTypeError.
func (e *UnknownTypeError) Is(err error) bool {
	return err == ErrUnknownType
}

// NewUnknownTypeError returns a new UnknownTypeError.
func NewUnknownTypeError(t EntityType) *UnknownTypeError {
	return &UnknownTypeError{Type: t}
}

// IsUnknownType returns true if the error is an UnknownTypeError.
func IsUnknownType(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownTypeError
	return errors.As(err, &e) || errors.Is(err, ErrUnknownType)
}

// StructuralError reports a malformed bundle or record. Path locates the
// offending position using the bundle path grammar, when known.
type StructuralError struct {
	Path    string
	Message string
	Cause   error
}

// Error returns the error string.
func (e *StructuralError) Error() string {
	var b strings.Builder
	b.WriteString("graphbundle: malformed structure")
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *StructuralError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for StructuralError.
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

// NewStructuralError returns a new StructuralError.
func NewStructuralError(path, message string, cause error) *StructuralError {
	return &StructuralError{Path: path, Message: message, Cause: cause}
}

// IsStructural returns true if the error is a StructuralError.
func IsStructural(err error) bool {
	if err == nil {
		return false
	}
	var e *StructuralError
	return errors.As(err, &e) || errors.Is(err, ErrStructural)
}

// IntegrityError is a constraint violation surfaced by a persistence sink.
// Fields maps each offending property to the value that collided.
type IntegrityError struct {
	Type   EntityType
	Fields map[string]string
	Cause  error
}

// Error returns the error string.
func (e *IntegrityError) Error() string {
	var b strings.Builder
	b.WriteString("graphbundle: integrity violation")
	if e.Type != "" {
		b.WriteString(" on ")
		b.WriteString(string(e.Type))
	}
	if len(e.Fields) > 0 {
		b.WriteString(" (")
		for i, k := range slices.Sorted(maps.Keys(e.Fields)) {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%q", k, e.Fields[k])
		}
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *IntegrityError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for IntegrityError.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

// NewIntegrityError returns a new IntegrityError.
func NewIntegrityError(t EntityType, fields map[string]string, cause error) *IntegrityError {
	return &IntegrityError{Type: t, Fields: fields, Cause: cause}
}

// IsIntegrityError returns true if the error is an IntegrityError.
func IsIntegrityError(err error) bool {
	if err == nil {
		return false
	}
	var e *IntegrityError
	return errors.As(err, &e) || errors.Is(err, ErrIntegrity)
}
