package field

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"unicode/utf8"
)

// Kind is the value kind of a field.
type Kind uint8

// Field kinds.
const (
	KindInvalid Kind = iota
	KindString
	KindText
	KindInt
	KindFloat
	KindBool
	KindEnum
	KindDate
	KindStrings
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindString:  "string",
	KindText:    "text",
	KindInt:     "int",
	KindFloat:   "float",
	KindBool:    "bool",
	KindEnum:    "enum",
	KindDate:    "date",
	KindStrings: "strings",
}

// String returns the kind name as used in YAML schemas.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind returns the kind with the given name.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s && Kind(k) != KindInvalid {
			return Kind(k), true
		}
	}
	return KindInvalid, false
}

// ValueKind returns the kind of bundle value the field accepts, in the
// vocabulary of bundle.Kind: "string", "number", "boolean" or "list".
func (k Kind) ValueKind() string {
	switch k {
	case KindInt, KindFloat:
		return "number"
	case KindBool:
		return "boolean"
	case KindStrings:
		return "list"
	default:
		return "string"
	}
}

// Descriptor holds the declaration of a field.
type Descriptor struct {
	Name       string
	Kind       Kind
	Optional   bool
	Unique     bool
	Enums      []string
	Validators []func(any) error
	Comment    string
	// Err is the first builder error, if any.
	Err error
}

// Mandatory reports whether the field must be present on every record.
func (d *Descriptor) Mandatory() bool { return !d.Optional }

func (d *Descriptor) addError(err error) {
	if d.Err == nil {
		d.Err = fmt.Errorf("field %q: %w", d.Name, err)
	}
}

// String returns a builder for a single-line string field.
func String(name string) *stringBuilder {
	return &stringBuilder{&Descriptor{Name: name, Kind: KindString}}
}

// Text returns a builder for a free-text field.
func Text(name string) *stringBuilder {
	return &stringBuilder{&Descriptor{Name: name, Kind: KindText}}
}

// Date returns a builder for a partial ISO 8601 date field.
func Date(name string) *stringBuilder {
	return &stringBuilder{&Descriptor{Name: name, Kind: KindDate}}
}

// Strings returns a builder for a multivalued string field.
func Strings(name string) *stringBuilder {
	return &stringBuilder{&Descriptor{Name: name, Kind: KindStrings}}
}

// stringBuilder is the builder for string, text, date and strings fields.
type stringBuilder struct {
	desc *Descriptor
}

// Optional marks the field as not mandatory.
func (b *stringBuilder) Optional() *stringBuilder {
	b.desc.Optional = true
	return b
}

// Unique requires the value to be unique among records of the same type.
func (b *stringBuilder) Unique() *stringBuilder {
	b.desc.Unique = true
	return b
}

// Comment sets the field comment.
func (b *stringBuilder) Comment(c string) *stringBuilder {
	b.desc.Comment = c
	return b
}

// NotEmpty rejects empty strings.
func (b *stringBuilder) NotEmpty() *stringBuilder {
	return b.Validate(func(s string) error {
		if s == "" {
			return errors.New("must not be empty")
		}
		return nil
	})
}

// MinLen sets the minimum length in characters.
func (b *stringBuilder) MinLen(n int) *stringBuilder {
	if n < 0 {
		b.desc.addError(fmt.Errorf("min length must not be negative, got %d", n))
		return b
	}
	return b.Validate(func(s string) error {
		if utf8.RuneCountInString(s) < n {
			return fmt.Errorf("must be at least %d characters", n)
		}
		return nil
	})
}

// MaxLen sets the maximum length in characters.
func (b *stringBuilder) MaxLen(n int) *stringBuilder {
	if n < 0 {
		b.desc.addError(fmt.Errorf("max length must not be negative, got %d", n))
		return b
	}
	return b.Validate(func(s string) error {
		if utf8.RuneCountInString(s) > n {
			return fmt.Errorf("must be at most %d characters", n)
		}
		return nil
	})
}

// Match requires the value to match re.
func (b *stringBuilder) Match(re *regexp.Regexp) *stringBuilder {
	if re == nil {
		b.desc.addError(errors.New("match requires a regexp"))
		return b
	}
	return b.Validate(func(s string) error {
		if !re.MatchString(s) {
			return fmt.Errorf("must match pattern %s", re)
		}
		return nil
	})
}

// Validate adds a custom validator. Its error text becomes the validation
// message.
func (b *stringBuilder) Validate(fn func(string) error) *stringBuilder {
	b.desc.Validators = append(b.desc.Validators, func(v any) error {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		return fn(s)
	})
	return b
}

// Descriptor implements the schema.Field interface.
func (b *stringBuilder) Descriptor() *Descriptor { return b.desc }

// Int returns a builder for an integer field.
func Int(name string) *numberBuilder[int64] {
	return &numberBuilder[int64]{&Descriptor{Name: name, Kind: KindInt}}
}

// Float returns a builder for a floating point field.
func Float(name string) *numberBuilder[float64] {
	return &numberBuilder[float64]{&Descriptor{Name: name, Kind: KindFloat}}
}

// numberBuilder is the builder for numeric fields.
type numberBuilder[T int64 | float64] struct {
	desc *Descriptor
}

// Optional marks the field as not mandatory.
func (b *numberBuilder[T]) Optional() *numberBuilder[T] {
	b.desc.Optional = true
	return b
}

// Unique requires the value to be unique among records of the same type.
func (b *numberBuilder[T]) Unique() *numberBuilder[T] {
	b.desc.Unique = true
	return b
}

// Comment sets the field comment.
func (b *numberBuilder[T]) Comment(c string) *numberBuilder[T] {
	b.desc.Comment = c
	return b
}

// Min sets the minimum value.
func (b *numberBuilder[T]) Min(m T) *numberBuilder[T] {
	return b.Validate(func(v T) error {
		if v < m {
			return fmt.Errorf("must be at least %v", m)
		}
		return nil
	})
}

// Max sets the maximum value.
func (b *numberBuilder[T]) Max(m T) *numberBuilder[T] {
	return b.Validate(func(v T) error {
		if v > m {
			return fmt.Errorf("must be at most %v", m)
		}
		return nil
	})
}

// Range sets the inclusive bounds of the value.
func (b *numberBuilder[T]) Range(lo, hi T) *numberBuilder[T] {
	if lo > hi {
		b.desc.addError(fmt.Errorf("range bounds are inverted: %v > %v", lo, hi))
		return b
	}
	return b.Validate(func(v T) error {
		if v < lo || v > hi {
			return fmt.Errorf("must be between %v and %v", lo, hi)
		}
		return nil
	})
}

// Validate adds a custom validator.
func (b *numberBuilder[T]) Validate(fn func(T) error) *numberBuilder[T] {
	b.desc.Validators = append(b.desc.Validators, func(v any) error {
		switch n := v.(type) {
		case int64:
			return fn(T(n))
		case float64:
			return fn(T(n))
		}
		return nil
	})
	return b
}

// Descriptor implements the schema.Field interface.
func (b *numberBuilder[T]) Descriptor() *Descriptor { return b.desc }

// Bool returns a builder for a boolean field.
func Bool(name string) *boolBuilder {
	return &boolBuilder{&Descriptor{Name: name, Kind: KindBool}}
}

// boolBuilder is the builder for boolean fields.
type boolBuilder struct {
	desc *Descriptor
}

// Optional marks the field as not mandatory.
func (b *boolBuilder) Optional() *boolBuilder {
	b.desc.Optional = true
	return b
}

// Comment sets the field comment.
func (b *boolBuilder) Comment(c string) *boolBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the schema.Field interface.
func (b *boolBuilder) Descriptor() *Descriptor { return b.desc }

// Enum returns a builder for a string field restricted to a value set.
func Enum(name string) *enumBuilder {
	return &enumBuilder{&Descriptor{Name: name, Kind: KindEnum}}
}

// enumBuilder is the builder for enum fields.
type enumBuilder struct {
	desc *Descriptor
}

// Values appends allowed values.
func (b *enumBuilder) Values(values ...string) *enumBuilder {
	for _, v := range values {
		if v == "" {
			b.desc.addError(errors.New("enum values must not be empty"))
			continue
		}
		if slices.Contains(b.desc.Enums, v) {
			b.desc.addError(fmt.Errorf("duplicate enum value %q", v))
			continue
		}
		b.desc.Enums = append(b.desc.Enums, v)
	}
	return b
}

// Optional marks the field as not mandatory.
func (b *enumBuilder) Optional() *enumBuilder {
	b.desc.Optional = true
	return b
}

// Comment sets the field comment.
func (b *enumBuilder) Comment(c string) *enumBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the schema.Field interface.
func (b *enumBuilder) Descriptor() *Descriptor {
	if len(b.desc.Enums) == 0 {
		b.desc.addError(errors.New("enum requires at least one value"))
	}
	return b.desc
}
