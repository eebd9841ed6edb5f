package codec

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/syssam/graphbundle/bundle"
)

// JSON is the canonical interchange format.
type JSON struct {
	// Indent, when set, pretty-prints output with the given indent.
	Indent string
}

func (JSON) Name() string { return "json" }
func (JSON) Extensions() []string { return []string{"json"} }
func (JSON) ContentType() string { return "application/json" }

func (c JSON) Marshal(b *bundle.Bundle) ([]byte, error) {
	out, err := b.MarshalJSON()
	if err != nil || c.Indent == "" {
		return out, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, out, "", c.Indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (JSON) Unmarshal(data []byte) (*bundle.Bundle, error) {
	return bundle.DecodeJSON(bytes.NewReader(data))
}

// YAML is used for hand-written fixtures.
type YAML struct{}

func (YAML) Name() string { return "yaml" }
func (YAML) Extensions() []string { return []string{"yaml", "yml"} }
func (YAML) ContentType() string { return "application/yaml" }

func (YAML) Marshal(b *bundle.Bundle) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (YAML) Unmarshal(data []byte) (*bundle.Bundle, error) {
	return bundle.DecodeYAML(bytes.NewReader(data))
}
