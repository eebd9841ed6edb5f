package bundle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/graphbundle"
)

// Segment is one step of a Path: a property name, or a relation name with
// the index of a child in that relation.
type Segment struct {
	Name    string
	Index   int
	Indexed bool
}

// String renders the segment in path grammar.
func (s Segment) String() string {
	if s.Indexed {
		return indexed(s.Name, s.Index)
	}
	return s.Name
}

// Path addresses a property or a child bundle, e.g.
// "describes[0]/hasDate[1]/startDate".
type Path []Segment

// String renders the path in path grammar.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, "/")
}

// ParsePath parses a "/"-separated path where each segment is either a
// property name or relationName[index], index being a non-negative integer.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, &PathSyntaxError{Path: s, Message: "empty path"}
	}
	parts := strings.Split(s, "/")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, &PathSyntaxError{Path: s, Message: err.Error()}
		}
		p = append(p, seg)
	}
	return p, nil
}

func parseSegment(part string) (Segment, error) {
	if part == "" {
		return Segment{}, fmt.Errorf("empty segment")
	}
	open := strings.IndexByte(part, '[')
	if open < 0 {
		if strings.ContainsAny(part, "]") {
			return Segment{}, fmt.Errorf("unexpected ']' in %q", part)
		}
		return Segment{Name: part}, nil
	}
	if open == 0 {
		return Segment{}, fmt.Errorf("missing relation name in %q", part)
	}
	if !strings.HasSuffix(part, "]") {
		return Segment{}, fmt.Errorf("unterminated index in %q", part)
	}
	digits := part[open+1 : len(part)-1]
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return Segment{}, fmt.Errorf("index in %q must be a non-negative integer", part)
	}
	idx, err := strconv.Atoi(digits)
	if err != nil {
		return Segment{}, fmt.Errorf("index in %q is out of range", part)
	}
	return Segment{Name: part[:open], Index: idx, Indexed: true}, nil
}

// PathSyntaxError reports a malformed path. It matches
// graphbundle.ErrPathNotFound: a malformed path addresses nothing.
type PathSyntaxError struct {
	Path    string
	Message string
}

// Error returns the error string.
func (e *PathSyntaxError) Error() string {
	return fmt.Sprintf("graphbundle: invalid path %q: %s", e.Path, e.Message)
}

// Is reports whether the target is graphbundle.ErrPathNotFound.
func (e *PathSyntaxError) Is(target error) bool {
	return target == graphbundle.ErrPathNotFound
}

// PathNotFoundError is returned when a path segment is absent.
type PathNotFoundError struct {
	Path    string
	Segment string
}

// Error returns the error string.
func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("graphbundle: path %q not found at %q", e.Path, e.Segment)
}

// Is reports whether the target is graphbundle.ErrPathNotFound.
func (e *PathNotFoundError) Is(target error) bool {
	return target == graphbundle.ErrPathNotFound
}

// PathTypeError is returned when a segment addresses a relation where a
// property was expected, or the other way around.
type PathTypeError struct {
	Path    string
	Segment string
	Message string
}

// Error returns the error string.
func (e *PathTypeError) Error() string {
	return fmt.Sprintf("graphbundle: path %q at %q: %s", e.Path, e.Segment, e.Message)
}

// Is reports whether the target is graphbundle.ErrPathType.
func (e *PathTypeError) Is(target error) bool {
	return target == graphbundle.ErrPathType
}

// Get resolves a path to a property value or, when the last segment is
// indexed, to a child *Bundle.
func (b *Bundle) Get(path string) (any, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	parent, err := b.parentOf(p)
	if err != nil {
		return nil, err
	}
	last := p[len(p)-1]
	if last.Indexed {
		return parent.child(p, last)
	}
	return parent.property(p, last)
}

// GetBundle resolves a path whose last segment is indexed to a child bundle.
func (b *Bundle) GetBundle(path string) (*Bundle, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	parent, err := b.parentOf(p)
	if err != nil {
		return nil, err
	}
	last := p[len(p)-1]
	if !last.Indexed {
		if _, ok := parent.data.values[last.Name]; ok {
			return nil, &PathTypeError{Path: p.String(), Segment: last.String(), Message: "addresses a property, not a bundle"}
		}
		if _, ok := parent.rels.children[last.Name]; ok {
			return nil, &PathTypeError{Path: p.String(), Segment: last.String(), Message: "relation must be addressed with an index"}
		}
		return nil, &PathNotFoundError{Path: p.String(), Segment: last.String()}
	}
	return parent.child(p, last)
}

// Set returns a copy of the tree with the property at path set to value.
// Every intermediate segment must exist; the property itself may be new.
func (b *Bundle) Set(path string, value any) (*Bundle, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	last := p[len(p)-1]
	if last.Indexed {
		return nil, &PathTypeError{Path: p.String(), Segment: last.String(), Message: "addresses a bundle, not a property"}
	}
	return b.update(p, p[:len(p)-1], func(parent *Bundle) (*Bundle, error) {
		if _, ok := parent.rels.children[last.Name]; ok {
			return nil, &PathTypeError{Path: p.String(), Segment: last.String(), Message: "addresses a relation, not a property"}
		}
		return parent.WithDataValue(last.Name, value), nil
	})
}

// SetBundle returns a copy of the tree with the child at path replaced.
// The relation must already exist; an index equal to its length appends.
func (b *Bundle) SetBundle(path string, child *Bundle) (*Bundle, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	last := p[len(p)-1]
	if !last.Indexed {
		return nil, &PathTypeError{Path: p.String(), Segment: last.String(), Message: "addresses a property, not a bundle"}
	}
	if child == nil {
		return nil, &PathTypeError{Path: p.String(), Segment: last.String(), Message: "bundle must not be nil"}
	}
	return b.update(p, p[:len(p)-1], func(parent *Bundle) (*Bundle, error) {
		children, ok := parent.rels.children[last.Name]
		if !ok {
			if _, isProp := parent.data.values[last.Name]; isProp {
				return nil, &PathTypeError{Path: p.String(), Segment: last.String(), Message: "addresses a property, not a relation"}
			}
			return nil, &PathNotFoundError{Path: p.String(), Segment: last.String()}
		}
		if last.Index > len(children) {
			return nil, &PathNotFoundError{Path: p.String(), Segment: last.String()}
		}
		c := parent.clone()
		updated := c.rels.children[last.Name]
		if last.Index == len(updated) {
			updated = append(updated, child)
		} else {
			updated[last.Index] = child
		}
		c.rels.set(last.Name, updated)
		return c, nil
	})
}

// update rebuilds the spine along rest, applying fn to the bundle it ends at.
func (b *Bundle) update(full, rest Path, fn func(*Bundle) (*Bundle, error)) (*Bundle, error) {
	if len(rest) == 0 {
		return fn(b)
	}
	seg := rest[0]
	if !seg.Indexed {
		return nil, b.unindexedError(full, seg)
	}
	child, err := b.child(full, seg)
	if err != nil {
		return nil, err
	}
	updated, err := child.update(full, rest[1:], fn)
	if err != nil {
		return nil, err
	}
	c := b.clone()
	c.rels.children[seg.Name][seg.Index] = updated
	return c, nil
}

// parentOf walks every segment but the last, which must all be indexed.
func (b *Bundle) parentOf(p Path) (*Bundle, error) {
	cur := b
	for _, seg := range p[:len(p)-1] {
		if !seg.Indexed {
			return nil, cur.unindexedError(p, seg)
		}
		next, err := cur.child(p, seg)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func (b *Bundle) unindexedError(p Path, seg Segment) error {
	if _, ok := b.rels.children[seg.Name]; ok {
		return &PathTypeError{Path: p.String(), Segment: seg.String(), Message: "relation must be addressed with an index"}
	}
	if _, ok := b.data.values[seg.Name]; ok {
		return &PathTypeError{Path: p.String(), Segment: seg.String(), Message: "property has no children"}
	}
	return &PathNotFoundError{Path: p.String(), Segment: seg.String()}
}

func (b *Bundle) child(p Path, seg Segment) (*Bundle, error) {
	children, ok := b.rels.children[seg.Name]
	if !ok {
		if _, isProp := b.data.values[seg.Name]; isProp {
			return nil, &PathTypeError{Path: p.String(), Segment: seg.String(), Message: "addresses a property, not a relation"}
		}
		return nil, &PathNotFoundError{Path: p.String(), Segment: seg.String()}
	}
	if seg.Index >= len(children) {
		return nil, &PathNotFoundError{Path: p.String(), Segment: seg.String()}
	}
	return children[seg.Index], nil
}

func (b *Bundle) property(p Path, seg Segment) (any, error) {
	if v, ok := b.data.values[seg.Name]; ok {
		return copyValue(v), nil
	}
	if _, ok := b.rels.children[seg.Name]; ok {
		return nil, &PathTypeError{Path: p.String(), Segment: seg.String(), Message: "addresses a relation, not a property"}
	}
	return nil, &PathNotFoundError{Path: p.String(), Segment: seg.String()}
}

func indexed(name string, i int) string {
	return name + "[" + strconv.Itoa(i) + "]"
}

func joinPath(prefix, seg string) string {
	if prefix == "" {
		return seg
	}
	return prefix + "/" + seg
}
