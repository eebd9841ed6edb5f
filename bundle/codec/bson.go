package codec

import (
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syssam/graphbundle"
	"github.com/syssam/graphbundle/bundle"
)

// BSON encodes bundles as BSON documents, for document stores.
type BSON struct{}

func (BSON) Name() string { return "bson" }
func (BSON) Extensions() []string { return []string{"bson"} }
func (BSON) ContentType() string { return "application/bson" }

func (BSON) Marshal(b *bundle.Bundle) ([]byte, error) {
	doc, err := toBSON(b.Object())
	if err != nil {
		return nil, graphbundle.NewStructuralError("", "cannot encode bundle", err)
	}
	return bson.Marshal(doc)
}

func (BSON) Unmarshal(data []byte) (*bundle.Bundle, error) {
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, graphbundle.NewStructuralError("", "invalid BSON", err)
	}
	v, err := fromBSON(doc)
	if err != nil {
		return nil, graphbundle.NewStructuralError("", "invalid BSON", err)
	}
	return bundle.FromObject(v.(bundle.Object))
}

func toBSON(v any) (any, error) {
	switch v := v.(type) {
	case bundle.Object:
		d := make(bson.D, 0, len(v))
		for _, f := range v {
			val, err := toBSON(f.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Key, err)
			}
			d = append(d, bson.E{Key: f.Key, Value: val})
		}
		return d, nil
	case []any:
		a := make(bson.A, 0, len(v))
		for _, item := range v {
			val, err := toBSON(item)
			if err != nil {
				return nil, err
			}
			a = append(a, val)
		}
		return a, nil
	case string, int64, float64, bool:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
}

// fromBSON maps decoded BSON values onto bundle.Object, []any and
// primitives. Embedded documents decode as bson.D when the root is a D;
// bson.M is accepted too, in sorted key order.
func fromBSON(v any) (any, error) {
	switch v := v.(type) {
	case bson.D:
		obj := make(bundle.Object, 0, len(v))
		for _, e := range v {
			val, err := fromBSON(e.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.Key, err)
			}
			obj = append(obj, bundle.Field{Key: e.Key, Value: val})
		}
		return obj, nil
	case bson.M:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		d := make(bson.D, 0, len(v))
		for _, k := range keys {
			d = append(d, bson.E{Key: k, Value: v[k]})
		}
		return fromBSON(d)
	case bson.A:
		items := make([]any, 0, len(v))
		for _, item := range v {
			val, err := fromBSON(item)
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		return items, nil
	case primitive.DateTime:
		return v.Time().UTC(), nil
	default:
		return v, nil
	}
}
