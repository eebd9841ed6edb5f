package bundle

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/syssam/graphbundle"
)

// MarshalYAML implements yaml.Marshaler, keeping key order.
func (b *Bundle) MarshalYAML() (any, error) {
	n, err := yamlNode(b.Object())
	if err != nil {
		return nil, graphbundle.NewStructuralError("", "cannot encode bundle", err)
	}
	return n, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *Bundle) UnmarshalYAML(node *yaml.Node) error {
	decoded, err := fromYAMLNode(node)
	if err != nil {
		return err
	}
	*b = *decoded
	return nil
}

// DecodeYAML reads one YAML bundle from r.
func DecodeYAML(r io.Reader) (*Bundle, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(r).Decode(&node); err != nil {
		return nil, graphbundle.NewStructuralError("", "invalid YAML", err)
	}
	return fromYAMLNode(&node)
}

// DecodeYAMLAll reads every document of a multi-document YAML stream, as
// used by fixture files. Each document is a single bundle or a list of them.
func DecodeYAMLAll(r io.Reader) ([]*Bundle, error) {
	dec := yaml.NewDecoder(r)
	var out []*Bundle
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, graphbundle.NewStructuralError("", "invalid YAML", err)
		}
		v, err := yamlValue(&node)
		if err != nil {
			return nil, graphbundle.NewStructuralError("", "invalid YAML", err)
		}
		items, isList := v.([]any)
		if !isList {
			items = []any{v}
		}
		for i, item := range items {
			obj, ok := AsObject(item)
			if !ok {
				return nil, structural(indexed("document", len(out)+i), "bundle must be an object, got %s", Kind(item))
			}
			b, err := FromObject(obj)
			if err != nil {
				return nil, err
			}
			out = append(out, b)
		}
	}
}

func fromYAMLNode(node *yaml.Node) (*Bundle, error) {
	v, err := yamlValue(node)
	if err != nil {
		return nil, graphbundle.NewStructuralError("", "invalid YAML", err)
	}
	obj, ok := AsObject(v)
	if !ok {
		return nil, structural("", "bundle must be an object, got %s", Kind(v))
	}
	return FromObject(obj)
}

// yamlValue converts a node into Objects, []any and scalars.
func yamlValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return yamlValue(node.Content[0])
	case yaml.AliasNode:
		return yamlValue(node.Alias)
	case yaml.MappingNode:
		obj := make(Object, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			k, v := node.Content[i], node.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: object keys must be scalars", k.Line)
			}
			val, err := yamlValue(v)
			if err != nil {
				return nil, err
			}
			obj = append(obj, Field{k.Value, val})
		}
		return obj, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))
		for _, c := range node.Content {
			val, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		return items, nil
	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", node.Line)
	}
}

func yamlNode(v any) (*yaml.Node, error) {
	switch v := v.(type) {
	case Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range v {
			key := &yaml.Node{}
			if err := key.Encode(f.Key); err != nil {
				return nil, err
			}
			val, err := yamlNode(f.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Key, err)
			}
			n.Content = append(n.Content, key, val)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v {
			c, err := yamlNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	case string, bool, int64, float64:
		n := &yaml.Node{}
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("%w: %T", errUnsupported, v)
	}
}
