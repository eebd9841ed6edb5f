// Package batch loads values by key in bounded batches and puts the
// results back in key order.
//
// A store that can fetch many records with one statement wraps that
// statement in a Func:
//
//	nodes, errs := batch.Load(ctx, ids, 500, fetch, func(n *graph.Node) string { return n.ID })
//
// Load removes duplicate keys before fetching, so fetch sees every key at
// most once, and the result still has one entry per requested key.
package batch

import (
	"context"
	"errors"
	"slices"
)

// ErrNotFound is set for a key that no batch returned a value for.
var ErrNotFound = errors.New("batch: key not found")

// KeyFunc extracts the key of a value.
type KeyFunc[K comparable, V any] func(V) K

// Func loads the values of keys. The values may come back in any order and
// missing keys are simply absent.
type Func[K comparable, V any] func(ctx context.Context, keys []K) ([]V, error)

// Load fetches keys in batches of at most size through fn. The returned
// slices have the length of keys; errs[i] is ErrNotFound when keys[i] was
// not found. A failing batch stops the load and its error is returned.
func Load[K comparable, V any](ctx context.Context, keys []K, size int, fn Func[K, V], keyFn KeyFunc[K, V]) ([]V, []error, error) {
	if size <= 0 {
		size = len(keys)
	}
	var values []V
	for chunk := range slices.Chunk(Dedup(keys), max(size, 1)) {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		vs, err := fn(ctx, chunk)
		if err != nil {
			return nil, nil, err
		}
		values = append(values, vs...)
	}
	ordered, errs := OrderByKeys(keys, values, keyFn)
	return ordered, errs, nil
}

// OrderByKeys reorders values to match the order of keys. A key may repeat;
// each occurrence gets the same value. Missing values are zero with
// ErrNotFound in the matching position of errs.
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// Dedup returns keys without repeats, in first-seen order.
func Dedup[K comparable](keys []K) []K {
	seen := make(map[K]struct{}, len(keys))
	out := make([]K, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// FirstMissing returns the first key whose error is ErrNotFound.
func FirstMissing[K comparable](keys []K, errs []error) (K, bool) {
	for i, err := range errs {
		if errors.Is(err, ErrNotFound) {
			return keys[i], true
		}
	}
	var zero K
	return zero, false
}
