package bundle

import (
	"fmt"

	"github.com/syssam/graphbundle"
)

// Field is one key/value pair of an Object.
type Field struct {
	Key   string
	Value any
}

// Object is an ordered, codec-neutral object. Encoders render a bundle
// from its Object form and decoders build bundles from one, so that every
// encoding shares the same structural rules and key order.
//
// Values are normalized primitives, []any, or nested Objects.
type Object []Field

// Get returns the value for key and whether it is present.
func (o Object) Get(key string) (any, bool) {
	for _, f := range o {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Bundle keys of the external encoding.
const (
	KeyID        = "id"
	KeyType      = "type"
	KeyData      = "data"
	KeyRelations = "relations"
)

// Object returns the codec-neutral form of the bundle:
// {id?, type, data: {...}, relations: {name: [...]}}.
func (b *Bundle) Object() Object {
	obj := make(Object, 0, 4)
	if b.id != "" {
		obj = append(obj, Field{KeyID, b.id})
	}
	obj = append(obj, Field{KeyType, string(b.typ)})
	data := make(Object, 0, len(b.data.keys))
	for _, k := range b.data.keys {
		data = append(data, Field{k, copyValue(b.data.values[k])})
	}
	obj = append(obj, Field{KeyData, data})
	rels := make(Object, 0, len(b.rels.names))
	for _, name := range b.rels.names {
		children := b.rels.children[name]
		items := make([]any, len(children))
		for i, child := range children {
			items[i] = child.Object()
		}
		rels = append(rels, Field{name, items})
	}
	return append(obj, Field{KeyRelations, rels})
}

// FromObject builds a bundle from its codec-neutral form. Shape problems
// (missing type, relations that are not lists of objects, unsupported
// data values) are reported as *graphbundle.StructuralError.
func FromObject(obj Object) (*Bundle, error) {
	return fromObject("", obj)
}

func fromObject(path string, obj Object) (*Bundle, error) {
	b := &Bundle{}
	var typeSeen bool
	for _, f := range obj {
		switch f.Key {
		case KeyID:
			switch id := f.Value.(type) {
			case nil:
			case string:
				b.id = id
			default:
				// Numeric ids from loosely typed fixtures are accepted.
				n, err := Normalize(id)
				if err != nil || Kind(n) != "number" {
					return nil, structural(path, "id must be a string, got %s", Kind(f.Value))
				}
				b.id = fmt.Sprint(n)
			}
		case KeyType:
			t, ok := f.Value.(string)
			if !ok || t == "" {
				return nil, structural(path, "type must be a non-empty string")
			}
			b.typ = graphbundle.EntityType(t)
			typeSeen = true
		case KeyData:
			if f.Value == nil {
				continue
			}
			data, ok := AsObject(f.Value)
			if !ok {
				return nil, structural(path, "data must be an object, got %s", Kind(f.Value))
			}
			for _, p := range data {
				if p.Value == nil {
					continue
				}
				v, err := Normalize(p.Value)
				if err != nil {
					return nil, structural(joinPath(path, p.Key), "%v", err)
				}
				b.data.set(p.Key, v)
			}
		case KeyRelations:
			if f.Value == nil {
				continue
			}
			rels, ok := AsObject(f.Value)
			if !ok {
				return nil, structural(path, "relations must be an object, got %s", Kind(f.Value))
			}
			for _, r := range rels {
				items, ok := r.Value.([]any)
				if !ok {
					return nil, structural(joinPath(path, r.Key), "relation must be a list, got %s", Kind(r.Value))
				}
				children := make([]*Bundle, 0, len(items))
				for i, item := range items {
					childPath := joinPath(path, indexed(r.Key, i))
					childObj, ok := AsObject(item)
					if !ok {
						return nil, structural(childPath, "relation item must be an object, got %s", Kind(item))
					}
					child, err := fromObject(childPath, childObj)
					if err != nil {
						return nil, err
					}
					children = append(children, child)
				}
				b.rels.set(r.Key, children)
			}
		default:
			return nil, structural(path, "unexpected key %q", f.Key)
		}
	}
	if !typeSeen {
		return nil, structural(path, "type is required")
	}
	return b, nil
}

// AsObject converts ordered objects and plain string-keyed maps into an
// Object. Map keys are taken in sorted order.
func AsObject(v any) (Object, bool) {
	switch v := v.(type) {
	case Object:
		return v, true
	case map[string]any:
		obj := make(Object, 0, len(v))
		for _, k := range sortedKeys(v) {
			obj = append(obj, Field{k, v[k]})
		}
		return obj, true
	default:
		return nil, false
	}
}

func structural(path, format string, args ...any) error {
	return graphbundle.NewStructuralError(path, fmt.Sprintf(format, args...), nil)
}
