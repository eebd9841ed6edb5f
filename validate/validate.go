// Package validate checks bundles against a schema registry and turns
// valid bundles into records ready for persistence.
//
// Validation never stops at the first problem. Every property and every
// child bundle is checked and the messages are collected in a
// bundle.ErrorSet with the same shape as the input, so a caller can
// report every failure in one response:
//
//	rec, err := validate.New(reg).Validate(b)
//	var verr *validate.ValidationError
//	if errors.As(err, &verr) {
//		out, _ := json.Marshal(verr.Errors)
//		// {"errors":{...},"relations":{...}}
//	}
//
// Only structural problems and unknown entity types abort the walk.
package validate

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/text/unicode/norm"

	"github.com/syssam/graphbundle"
	"github.com/syssam/graphbundle/bundle"
	"github.com/syssam/graphbundle/schema"
	"github.com/syssam/graphbundle/schema/edge"
	"github.com/syssam/graphbundle/schema/field"
)

// Validation messages.
const (
	MsgMissing         = "missing mandatory field"
	MsgUnknownProperty = "unknown property"
	MsgUnknownRelation = "unknown relation"
	MsgTooMany         = "expected at most one item"
)

// Validator validates bundles against a registry. It holds no mutable
// state and is safe for concurrent use.
type Validator struct {
	registry *schema.Registry
	logger   *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// New returns a validator for the given registry.
func New(reg *schema.Registry, opts ...Option) *Validator {
	v := &Validator{registry: reg, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks b and returns the flattened record on success. A
// failed validation returns a *ValidationError holding the complete error
// tree; any other error is fatal.
func (v *Validator) Validate(b *bundle.Bundle) (*Record, error) {
	rec, errs, err := v.check(b)
	if err != nil {
		return nil, err
	}
	if !errs.IsEmpty() {
		v.logger.LogAttrs(context.Background(), slog.LevelDebug, "validation failed",
			slog.String("type", string(b.Type())), slog.Int("errors", errs.Count()))
		return nil, &ValidationError{Type: b.Type(), Errors: errs}
	}
	return rec, nil
}

// Errors returns the error tree for b without building a record. An empty
// tree means b is valid.
func (v *Validator) Errors(b *bundle.Bundle) (*bundle.ErrorSet, error) {
	_, errs, err := v.check(b)
	return errs, err
}

func (v *Validator) check(b *bundle.Bundle) (*Record, *bundle.ErrorSet, error) {
	if b == nil {
		return nil, nil, graphbundle.NewStructuralError("", "nil bundle", nil)
	}
	return v.walk("", b)
}

func (v *Validator) walk(path string, b *bundle.Bundle) (*Record, *bundle.ErrorSet, error) {
	typ, err := v.registry.Lookup(b.Type())
	if err != nil {
		if path != "" {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, nil, err
	}
	errs := bundle.NewErrorSet()
	rec := &Record{Type: typ.Name, ID: b.ID(), Data: make(map[string]any)}

	for _, f := range typ.Fields {
		raw, ok := b.DataValue(f.Name)
		if !ok || isBlank(f, raw) {
			if f.Mandatory() {
				errs.AddError(f.Name, MsgMissing)
			}
			continue
		}
		val, nerr := bundle.Normalize(raw)
		if nerr != nil {
			val = raw
		}
		if msgs := f.Check(val); len(msgs) > 0 {
			for _, m := range msgs {
				errs.AddError(f.Name, m)
			}
			continue
		}
		rec.Data[f.Name] = canonical(f, val)
		if f.Unique {
			rec.Unique = append(rec.Unique, f.Name)
		}
	}
	for _, k := range b.DataKeys() {
		if _, ok := typ.Field(k); !ok {
			errs.AddError(k, MsgUnknownProperty)
		}
	}

	for _, name := range b.RelationNames() {
		e, ok := typ.Edge(name)
		if !ok {
			errs.AddError(name, MsgUnknownRelation)
			continue
		}
		children := b.Relation(name)
		if e.Unique && len(children) > 1 {
			errs.AddError(name, MsgTooMany)
		}
		for i, child := range children {
			childPath := fmt.Sprintf("%s[%d]", name, i)
			if path != "" {
				childPath = path + "/" + childPath
			}
			crec, cerrs, err := v.walk(childPath, child)
			if err != nil {
				return nil, nil, err
			}
			errs.AddRelation(name, cerrs)
			if child.Type() != e.Type {
				errs.AddError(name, fmt.Sprintf("relation must target %s, got %s", e.Type, child.Type()))
			}
			rec.Relations = append(rec.Relations, target(e, crec))
		}
	}
	return rec, errs, nil
}

func target(e *edge.Descriptor, rec *Record) RelationTarget {
	return RelationTarget{
		Name:      e.Name,
		Label:     e.EdgeLabel(),
		Direction: e.Direction,
		Dependent: e.Dependent,
		Record:    rec,
	}
}

// isBlank reports whether a present value counts as missing: an empty
// list on a strings field.
func isBlank(f *field.Descriptor, v any) bool {
	if f.Kind != field.KindStrings {
		return false
	}
	l, ok := v.([]any)
	return ok && len(l) == 0
}

// canonical returns the stored form of a checked value. Strings are NFC
// normalized, strings fields are always lists and integral floats on int
// fields become int64.
func canonical(f *field.Descriptor, v any) any {
	switch f.Kind {
	case field.KindStrings:
		items, _ := field.AsStrings(v)
		out := make([]any, len(items))
		for i, s := range items {
			out[i] = norm.NFC.String(s)
		}
		return out
	case field.KindInt:
		if n, ok := v.(float64); ok {
			return int64(n)
		}
		return v
	}
	if s, ok := v.(string); ok {
		return norm.NFC.String(s)
	}
	return v
}

// ValidationError is returned when a bundle fails validation. Errors is
// the complete, non-empty error tree.
type ValidationError struct {
	Type   graphbundle.EntityType
	Errors *bundle.ErrorSet
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	n := e.Errors.Count()
	noun := "errors"
	if n == 1 {
		noun = "error"
	}
	return fmt.Sprintf("graphbundle: validation failed for %s (%d %s)", e.Type, n, noun)
}

// Is reports whether the target matches the sentinel error for ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == graphbundle.ErrValidation
}

// Messages returns every message in the tree prefixed with its path.
func (e *ValidationError) Messages() []string {
	return e.Errors.Messages()
}
