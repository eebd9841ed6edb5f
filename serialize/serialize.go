// Package serialize turns graph records into bundles.
//
// A Serializer walks a record and the relations its schema declares,
// depth first, producing a finite tree even when the graph is cyclic: the
// walk carries its depth and never goes beyond Config.MaxDepth. Relations
// are considered in schema order and dropped, in this order, when
//
//  1. the dependent-only policy excludes them,
//  2. they are declared WhenNotLite and the record is below the root in
//     lite mode,
//  3. they are declared IfBelowDepth(n) and the record is at depth n or
//     deeper, or
//  4. following them would exceed the maximum depth.
//
// A dropped relation, like a relation without edges, is absent from the
// bundle rather than present with an empty list.
package serialize

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/graphbundle"
	"github.com/syssam/graphbundle/bundle"
	"github.com/syssam/graphbundle/graph"
	"github.com/syssam/graphbundle/schema"
	"github.com/syssam/graphbundle/schema/edge"
)

// Serializer converts graph records to bundles. It is safe for concurrent
// use.
type Serializer struct {
	reader   graph.Reader
	registry *schema.Registry
	config   Config
	logger   *slog.Logger
	workers  int
	stats    *WalkStats
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithConfig sets the serialization policy.
func WithConfig(c Config) Option {
	return func(s *Serializer) {
		s.config = c
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Serializer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkers sets how many roots ToBundles serializes at once. It
// defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Serializer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New returns a serializer reading from r and interpreting records with
// reg.
func New(r graph.Reader, reg *schema.Registry, opts ...Option) *Serializer {
	s := &Serializer{
		reader:   r,
		registry: reg,
		logger:   slog.New(slog.DiscardHandler),
		workers:  runtime.GOMAXPROCS(0),
		stats:    &WalkStats{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the serialization policy.
func (s *Serializer) Config() Config { return s.config }

// With returns a serializer sharing s's reader, registry, logger and
// statistics, using c as its policy.
func (s *Serializer) With(c Config) *Serializer {
	d := *s
	d.config = c
	return &d
}

// Stats returns the traversal statistics.
func (s *Serializer) Stats() *WalkStats { return s.stats }

// ToBundle serializes n as the root of a bundle.
func (s *Serializer) ToBundle(ctx context.Context, n *graph.Node) (*bundle.Bundle, error) {
	w := &walker{Serializer: s, fingerprint: s.config.Fingerprint()}
	return w.walk(ctx, n, 0)
}

// ByID reads the record with the given id and serializes it.
func (s *Serializer) ByID(ctx context.Context, id string) (*bundle.Bundle, error) {
	n, err := s.reader.Node(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.ToBundle(ctx, n)
}

// ByIDs reads the records with the given ids, in one batch when the
// reader supports it, and serializes them with ToBundles.
func (s *Serializer) ByIDs(ctx context.Context, ids []string) ([]*bundle.Bundle, error) {
	nodes, err := graph.Nodes(ctx, s.reader, ids)
	if err != nil {
		return nil, err
	}
	return s.ToBundles(ctx, nodes)
}

// ToBundles serializes several roots concurrently. The result is in input
// order; the first error cancels the remaining work.
func (s *Serializer) ToBundles(ctx context.Context, nodes []*graph.Node) ([]*bundle.Bundle, error) {
	out := make([]*bundle.Bundle, len(nodes))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)
	for i, n := range nodes {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			b, err := s.ToBundle(ctx, n)
			if err != nil {
				return err
			}
			out[i] = b
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// walker holds the state of one ToBundle call.
type walker struct {
	*Serializer
	fingerprint string
}

func (w *walker) walk(ctx context.Context, n *graph.Node, depth int) (*bundle.Bundle, error) {
	if n == nil {
		return nil, graphbundle.NewStructuralError("", "nil node", nil)
	}
	typ, err := w.registry.Lookup(n.Type)
	if err != nil {
		return nil, err
	}
	cache := w.config.Cache()
	key := graphbundle.CacheKey{RecordID: n.ID, Fingerprint: w.fingerprint, Depth: depth}
	if cache != nil && n.ID != "" {
		if b, ok := cache.Get(ctx, key); ok {
			w.stats.CacheHits.Add(1)
			w.logger.DebugContext(ctx, "cache hit", "id", n.ID, "depth", depth)
			return b, nil
		}
		w.stats.CacheMisses.Add(1)
	}
	w.stats.Visited.Add(1)

	b := bundle.New(n.Type).WithID(n.ID)
	for _, f := range typ.Fields {
		v, ok := n.Properties[f.Name]
		if !ok || v == nil {
			continue
		}
		if depth == 0 || !w.config.LiteMode() || f.Mandatory() || w.config.includes(f.Name) {
			b = b.WithDataValue(f.Name, v)
		}
	}

	if n.ID != "" {
		for _, e := range typ.Edges {
			if !w.follow(ctx, n, e, depth) {
				continue
			}
			related, err := w.reader.Related(ctx, n.ID, e.EdgeLabel(), e.Direction)
			if err != nil {
				return nil, err
			}
			children := make([]*bundle.Bundle, 0, len(related))
			for _, r := range related {
				child, err := w.walk(ctx, r, depth+1)
				if err != nil {
					return nil, err
				}
				children = append(children, child)
			}
			if len(children) > 0 {
				b = b.WithRelation(e.Name, children...)
			}
		}
	}

	if cache != nil && n.ID != "" {
		cache.Set(ctx, key, b)
	}
	return b, nil
}

// follow applies the relation policies to e on a record at depth.
func (w *walker) follow(ctx context.Context, n *graph.Node, e *edge.Descriptor, depth int) bool {
	switch {
	case w.config.DependentOnly() && !e.Dependent,
		!w.config.DependentOnly() && e.DependentOnly,
		w.config.LiteMode() && depth > 0 && e.WhenNotLite,
		e.BelowDepth > 0 && depth >= e.BelowDepth:
		w.stats.Skipped.Add(1)
		return false
	case depth+1 > w.config.MaxDepth():
		w.stats.PrunedByDepth.Add(1)
		w.logger.DebugContext(ctx, "relation pruned by depth", "id", n.ID, "relation", e.Name, "depth", depth)
		return false
	}
	return true
}
