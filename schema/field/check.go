package field

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/syssam/graphbundle/bundle"
)

// MsgIntRange is reported for integral values that do not fit an int64.
const MsgIntRange = "value out of range for int"

var dateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// Check validates a normalized bundle value against the field declaration
// and returns the validation messages. An empty result means the value is
// acceptable. Presence is not checked here.
func (d *Descriptor) Check(v any) []string {
	switch d.Kind {
	case KindString, KindText:
		s, ok := v.(string)
		if !ok {
			return []string{mismatch("string", v)}
		}
		return d.run(s)
	case KindDate:
		s, ok := v.(string)
		if !ok {
			return []string{mismatch("string", v)}
		}
		if !isDate(s) {
			return []string{fmt.Sprintf("invalid date %q: expected YYYY, YYYY-MM or YYYY-MM-DD", s)}
		}
		return d.run(s)
	case KindEnum:
		s, ok := v.(string)
		if !ok {
			return []string{mismatch("string", v)}
		}
		if !slices.Contains(d.Enums, s) {
			return []string{fmt.Sprintf("invalid value %q: must be one of [%s]", s, strings.Join(d.Enums, ", "))}
		}
		return nil
	case KindInt:
		switch n := v.(type) {
		case int64:
			return d.run(n)
		case float64:
			if n != math.Trunc(n) || math.IsInf(n, 0) {
				return []string{fmt.Sprintf("expected integer value, got %v", n)}
			}
			if n < math.MinInt64 || n >= -math.MinInt64 {
				return []string{MsgIntRange}
			}
			return d.run(int64(n))
		default:
			return []string{mismatch("number", v)}
		}
	case KindFloat:
		switch n := v.(type) {
		case int64:
			return d.run(float64(n))
		case float64:
			return d.run(n)
		default:
			return []string{mismatch("number", v)}
		}
	case KindBool:
		if _, ok := v.(bool); !ok {
			return []string{mismatch("boolean", v)}
		}
		return nil
	case KindStrings:
		items, ok := AsStrings(v)
		if !ok {
			if l, isList := v.([]any); isList {
				return []string{fmt.Sprintf("expected string items, got %s", bundle.Kind(firstNonString(l)))}
			}
			return []string{mismatch("list", v)}
		}
		var msgs []string
		for _, s := range items {
			msgs = append(msgs, d.run(s)...)
		}
		return msgs
	default:
		return []string{fmt.Sprintf("unsupported field kind %s", d.Kind)}
	}
}

// AsStrings returns the items of a strings value. A single string is
// accepted as a one-item list.
func AsStrings(v any) ([]string, bool) {
	switch v := v.(type) {
	case string:
		return []string{v}, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func (d *Descriptor) run(v any) []string {
	var msgs []string
	for _, fn := range d.Validators {
		if err := fn(v); err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	return msgs
}

func mismatch(want string, v any) string {
	return fmt.Sprintf("expected %s value, got %s", want, bundle.Kind(v))
}

func firstNonString(l []any) any {
	for _, item := range l {
		if _, ok := item.(string); !ok {
			return item
		}
	}
	return l[0]
}

func isDate(s string) bool {
	for _, layout := range dateLayouts {
		if len(s) != len(layout) {
			continue
		}
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
