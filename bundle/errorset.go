package bundle

import (
	"bytes"
	"encoding/json"
)

// ErrorSet is a validation error tree with the same shape as the bundle it
// was produced from. Errors maps property (or unknown relation) names to
// messages; Relations maps relation names to one child ErrorSet per child
// bundle, in the same order, whether or not the child has errors.
//
// An ErrorSet is built during a single validation pass and must not be
// modified once handed to a caller.
type ErrorSet struct {
	Errors    map[string][]string    `json:"errors"`
	Relations map[string][]*ErrorSet `json:"relations"`
}

// NewErrorSet returns an empty error set.
func NewErrorSet() *ErrorSet {
	return &ErrorSet{
		Errors:    make(map[string][]string),
		Relations: make(map[string][]*ErrorSet),
	}
}

// AddError appends a message under the given key.
func (s *ErrorSet) AddError(key, message string) {
	if s.Errors == nil {
		s.Errors = make(map[string][]string)
	}
	s.Errors[key] = append(s.Errors[key], message)
}

// AddRelation appends a child error set under the given relation.
func (s *ErrorSet) AddRelation(name string, child *ErrorSet) {
	if s.Relations == nil {
		s.Relations = make(map[string][]*ErrorSet)
	}
	if child == nil {
		child = NewErrorSet()
	}
	s.Relations[name] = append(s.Relations[name], child)
}

// IsEmpty reports whether the tree holds no messages at any level. It is
// the only success predicate for validation.
func (s *ErrorSet) IsEmpty() bool {
	if s == nil {
		return true
	}
	for _, msgs := range s.Errors {
		if len(msgs) > 0 {
			return false
		}
	}
	for _, children := range s.Relations {
		for _, child := range children {
			if !child.IsEmpty() {
				return false
			}
		}
	}
	return true
}

// Count returns the total number of messages in the tree.
func (s *ErrorSet) Count() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, msgs := range s.Errors {
		n += len(msgs)
	}
	for _, children := range s.Relations {
		for _, child := range children {
			n += child.Count()
		}
	}
	return n
}

// Child returns the error set for the i-th child of a relation, or nil.
func (s *ErrorSet) Child(relation string, i int) *ErrorSet {
	if s == nil {
		return nil
	}
	children := s.Relations[relation]
	if i < 0 || i >= len(children) {
		return nil
	}
	return children[i]
}

// Messages flattens the tree into "path: message" lines in a stable order,
// using the bundle path grammar for positions.
func (s *ErrorSet) Messages() []string {
	var out []string
	s.collect("", &out)
	return out
}

func (s *ErrorSet) collect(prefix string, out *[]string) {
	if s == nil {
		return
	}
	for _, k := range sortedKeys(s.Errors) {
		for _, msg := range s.Errors[k] {
			*out = append(*out, joinPath(prefix, k)+": "+msg)
		}
	}
	for _, name := range sortedKeys(s.Relations) {
		for i, child := range s.Relations[name] {
			child.collect(joinPath(prefix, indexed(name, i)), out)
		}
	}
}

// MarshalJSON renders {"errors": {...}, "relations": {...}} recursively.
// Both keys are always present and nil children render as empty sets, so
// the output keeps index alignment with the validated bundle.
func (s *ErrorSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ErrorSet) writeJSON(buf *bytes.Buffer) error {
	buf.WriteString(`{"errors":{`)
	var errs map[string][]string
	var rels map[string][]*ErrorSet
	if s != nil {
		errs, rels = s.Errors, s.Relations
	}
	for i, k := range sortedKeys(errs) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(buf, k); err != nil {
			return err
		}
		msgs := errs[k]
		if msgs == nil {
			msgs = []string{}
		}
		enc, err := json.Marshal(msgs)
		if err != nil {
			return err
		}
		buf.Write(enc)
	}
	buf.WriteString(`},"relations":{`)
	for i, name := range sortedKeys(rels) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(buf, name); err != nil {
			return err
		}
		buf.WriteByte('[')
		for j, child := range rels[name] {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := child.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	}
	buf.WriteString(`}}`)
	return nil
}

// UnmarshalJSON decodes the wire shape produced by MarshalJSON.
func (s *ErrorSet) UnmarshalJSON(data []byte) error {
	var raw struct {
		Errors    map[string][]string    `json:"errors"`
		Relations map[string][]*ErrorSet `json:"relations"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Errors = raw.Errors
	if s.Errors == nil {
		s.Errors = make(map[string][]string)
	}
	s.Relations = raw.Relations
	if s.Relations == nil {
		s.Relations = make(map[string][]*ErrorSet)
	}
	for _, children := range s.Relations {
		for i, child := range children {
			if child == nil {
				children[i] = NewErrorSet()
			}
		}
	}
	return nil
}

func writeKey(buf *bytes.Buffer, k string) error {
	enc, err := json.Marshal(k)
	if err != nil {
		return err
	}
	buf.Write(enc)
	buf.WriteByte(':')
	return nil
}
