package codec

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/syssam/graphbundle"
	"github.com/syssam/graphbundle/bundle"
)

// MsgPack is a compact binary encoding. Maps are written in bundle key
// order and read back in stream order.
type MsgPack struct{}

func (MsgPack) Name() string { return "msgpack" }
func (MsgPack) Extensions() []string { return []string{"msgpack", "mpk"} }
func (MsgPack) ContentType() string { return "application/msgpack" }

func (MsgPack) Marshal(b *bundle.Bundle) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encodeMsgPack(enc, b.Object()); err != nil {
		return nil, graphbundle.NewStructuralError("", "cannot encode bundle", err)
	}
	return buf.Bytes(), nil
}

func (MsgPack) Unmarshal(data []byte) (*bundle.Bundle, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	v, err := decodeMsgPack(dec)
	if err != nil {
		return nil, graphbundle.NewStructuralError("", "invalid msgpack", err)
	}
	obj, ok := v.(bundle.Object)
	if !ok {
		return nil, graphbundle.NewStructuralError("", fmt.Sprintf("bundle must be an object, got %s", bundle.Kind(v)), nil)
	}
	return bundle.FromObject(obj)
}

func encodeMsgPack(enc *msgpack.Encoder, v any) error {
	switch v := v.(type) {
	case bundle.Object:
		if err := enc.EncodeMapLen(len(v)); err != nil {
			return err
		}
		for _, f := range v {
			if err := enc.EncodeString(f.Key); err != nil {
				return err
			}
			if err := encodeMsgPack(enc, f.Value); err != nil {
				return fmt.Errorf("%s: %w", f.Key, err)
			}
		}
		return nil
	case []any:
		if err := enc.EncodeArrayLen(len(v)); err != nil {
			return err
		}
		for _, item := range v {
			if err := encodeMsgPack(enc, item); err != nil {
				return err
			}
		}
		return nil
	case string:
		return enc.EncodeString(v)
	case int64:
		return enc.EncodeInt(v)
	case float64:
		return enc.EncodeFloat64(v)
	case bool:
		return enc.EncodeBool(v)
	default:
		return fmt.Errorf("unsupported value %T", v)
	}
}

func decodeMsgPack(dec *msgpack.Decoder) (any, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case msgpcode.IsFixedMap(code), code == msgpcode.Map16, code == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		obj := make(bundle.Object, 0, max(n, 0))
		for range n {
			key, err := dec.DecodeString()
			if err != nil {
				return nil, err
			}
			val, err := decodeMsgPack(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, bundle.Field{Key: key, Value: val})
		}
		return obj, nil
	case msgpcode.IsFixedArray(code), code == msgpcode.Array16, code == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, max(n, 0))
		for range n {
			val, err := decodeMsgPack(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		return items, nil
	default:
		return dec.DecodeInterfaceLoose()
	}
}
