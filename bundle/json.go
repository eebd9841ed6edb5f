package bundle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/syssam/graphbundle"
)

// MarshalJSON encodes the bundle as {"id", "type", "data", "relations"},
// keeping property and relation insertion order. "id" is omitted for
// transient bundles.
func (b *Bundle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSONValue(&buf, b.Object()); err != nil {
		return nil, graphbundle.NewStructuralError("", "cannot encode bundle", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a bundle, preserving key order.
func (b *Bundle) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	decoded, err := decodeJSON(dec)
	if err != nil {
		return err
	}
	*b = *decoded
	return nil
}

// DecodeJSON reads one JSON bundle from r.
func DecodeJSON(r io.Reader) (*Bundle, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return decodeJSON(dec)
}

func decodeJSON(dec *json.Decoder) (*Bundle, error) {
	v, err := readJSONValue(dec)
	if err != nil {
		return nil, graphbundle.NewStructuralError("", "invalid JSON", err)
	}
	obj, ok := v.(Object)
	if !ok {
		return nil, graphbundle.NewStructuralError("", fmt.Sprintf("bundle must be an object, got %s", Kind(v)), nil)
	}
	return FromObject(obj)
}

// readJSONValue reads the next value keeping object key order.
func readJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := Object{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", kt)
				}
				v, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj = append(obj, Field{key, v})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			items := []any{}
			for dec.More() {
				v, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return items, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	default:
		// string, bool, json.Number or nil
		return t, nil
	}
}

var errUnsupported = errors.New("unsupported value")

func writeJSONValue(buf *bytes.Buffer, v any) error {
	switch v := v.(type) {
	case Object:
		buf.WriteByte('{')
		for i, f := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(buf, f.Key); err != nil {
				return err
			}
			if err := writeJSONValue(buf, f.Value); err != nil {
				return fmt.Errorf("%s: %w", f.Key, err)
			}
		}
		buf.WriteByte('}')
		return nil
	case []any:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case string, bool, int64, float64:
		enc, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(enc)
		return nil
	default:
		return fmt.Errorf("%w: %T", errUnsupported, v)
	}
}
