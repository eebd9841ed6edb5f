package sqlgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/graphbundle"
	"github.com/syssam/graphbundle/bundle"
	"github.com/syssam/graphbundle/dialect"
	"github.com/syssam/graphbundle/dialect/sql"
	"github.com/syssam/graphbundle/graph"
	"github.com/syssam/graphbundle/internal/batch"
	"github.com/syssam/graphbundle/validate"
)

// maxBatch bounds the ids of one IN list, below the 999 host parameters
// older sqlite builds accept.
const maxBatch = 500

// Store is a graph kept in three SQL tables: gb_nodes holds one row per
// node with its properties encoded as MessagePack, gb_edges holds labelled
// edges ordered by insertion, and gb_unique indexes the unique properties
// of every node by entity type.
type Store struct {
	driver dialect.Driver
	logger *slog.Logger
}

var (
	_ graph.ReadWriter  = (*Store)(nil)
	_ graph.BatchReader = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for save and migration events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore returns a store writing through drv. Call Migrate once before
// first use.
func NewStore(drv dialect.Driver, opts ...Option) *Store {
	s := &Store{
		driver: drv,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Driver returns the underlying driver.
func (s *Store) Driver() dialect.Driver { return s.driver }

// Migrate creates the store tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations(s.driver.Dialect()) {
		if err := s.driver.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("sqlgraph: migrate: %w", err)
		}
	}
	s.logger.InfoContext(ctx, "graph tables ready", "dialect", s.driver.Dialect())
	return nil
}

func migrations(name string) []string {
	blob := "BLOB"
	switch name {
	case dialect.Postgres:
		blob = "BYTEA"
	case dialect.MySQL:
		blob = "LONGBLOB"
	}
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS gb_nodes (id VARCHAR(64) NOT NULL PRIMARY KEY, entity_type VARCHAR(128) NOT NULL, data " + blob + " NOT NULL)",
		"CREATE TABLE IF NOT EXISTS gb_unique (entity_type VARCHAR(128) NOT NULL, property VARCHAR(128) NOT NULL, value_text VARCHAR(255) NOT NULL, node_id VARCHAR(64) NOT NULL, PRIMARY KEY (entity_type, property, value_text))",
	}
	if name == dialect.MySQL {
		return append(stmts,
			"CREATE TABLE IF NOT EXISTS gb_edges (source_id VARCHAR(64) NOT NULL, label VARCHAR(128) NOT NULL, target_id VARCHAR(64) NOT NULL, seq BIGINT NOT NULL, PRIMARY KEY (source_id, label, target_id), INDEX gb_edges_target (target_id, label))",
		)
	}
	return append(stmts,
		"CREATE TABLE IF NOT EXISTS gb_edges (source_id VARCHAR(64) NOT NULL, label VARCHAR(128) NOT NULL, target_id VARCHAR(64) NOT NULL, seq BIGINT NOT NULL, PRIMARY KEY (source_id, label, target_id))",
		"CREATE INDEX IF NOT EXISTS gb_edges_target ON gb_edges (target_id, label)",
	)
}

// Node implements graph.Reader.
func (s *Store) Node(ctx context.Context, id string) (*graph.Node, error) {
	nodes, err := queryNodes(ctx, s.driver, "SELECT id, entity_type, data FROM gb_nodes WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, graphbundle.NewNotFoundError(id)
	}
	return nodes[0], nil
}

// Nodes implements graph.BatchReader. Ids are fetched with IN lists of
// bounded size.
func (s *Store) Nodes(ctx context.Context, ids []string) ([]*graph.Node, error) {
	fetch := func(ctx context.Context, keys []string) ([]*graph.Node, error) {
		args := make([]any, len(keys))
		for i, k := range keys {
			args[i] = k
		}
		query := "SELECT id, entity_type, data FROM gb_nodes WHERE id IN (" +
			strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ") + ")"
		return queryNodes(ctx, s.driver, query, args...)
	}
	nodes, errs, err := batch.Load(ctx, ids, maxBatch, fetch, func(n *graph.Node) string { return n.ID })
	if err != nil {
		return nil, err
	}
	if id, ok := batch.FirstMissing(ids, errs); ok {
		return nil, graphbundle.NewNotFoundError(id)
	}
	return nodes, nil
}

// Related implements graph.Reader.
func (s *Store) Related(ctx context.Context, id, label string, dir graphbundle.Direction) ([]*graph.Node, error) {
	near, far := edgeColumns(dir)
	query := "SELECT n.id, n.entity_type, n.data FROM gb_edges e JOIN gb_nodes n ON n.id = e." + far +
		" WHERE e." + near + " = ? AND e.label = ? ORDER BY e.seq"
	nodes, err := queryNodes(ctx, s.driver, query, id, label)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		if err := mustExist(ctx, s.driver, id); err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

// PutNode implements graph.Writer.
func (s *Store) PutNode(ctx context.Context, n *graph.Node) error {
	if n == nil || n.ID == "" || n.Type == "" {
		return errors.New("sqlgraph: node id and type are required")
	}
	return putNode(ctx, s.driver, n)
}

// AddEdge implements graph.Writer.
func (s *Store) AddEdge(ctx context.Context, e graph.Edge) error {
	if e.Label == "" {
		return errors.New("sqlgraph: edge label is required")
	}
	return s.tx(ctx, func(tx dialect.Tx) error {
		return addEdge(ctx, tx, e)
	})
}

// RemoveNode implements graph.Writer.
func (s *Store) RemoveNode(ctx context.Context, id string) error {
	return s.tx(ctx, func(tx dialect.Tx) error {
		if err := mustExist(ctx, tx, id); err != nil {
			return err
		}
		return removeNode(ctx, tx, id)
	})
}

// Save stores a validated record and its dependent children in one
// transaction and returns the id of the root. It follows the semantics of
// graph.Memory.Save. A unique property that collides with another node of
// the same type fails with a *graphbundle.IntegrityError naming that
// property.
func (s *Store) Save(ctx context.Context, rec *validate.Record) (string, error) {
	var id string
	err := s.tx(ctx, func(tx dialect.Tx) (err error) {
		id, err = s.save(ctx, tx, rec)
		return err
	})
	if err != nil {
		s.logger.DebugContext(ctx, "save rolled back", "type", rec.Type, "error", err)
		return "", err
	}
	s.logger.DebugContext(ctx, "record saved", "type", rec.Type, "id", id)
	return id, nil
}

func (s *Store) save(ctx context.Context, tx dialect.Tx, rec *validate.Record) (string, error) {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	if err := putNode(ctx, tx, &graph.Node{ID: id, Type: rec.Type, Properties: rec.Data}); err != nil {
		return "", err
	}
	if err := putUnique(ctx, tx, id, rec); err != nil {
		return "", err
	}

	replaced := make(map[string]bool)
	for _, t := range rec.Relations {
		if replaced[t.Name] {
			continue
		}
		replaced[t.Name] = true
		if err := detach(ctx, tx, id, t); err != nil {
			return "", err
		}
	}
	for _, t := range rec.Relations {
		childID := t.Record.ID
		if t.Dependent {
			var err error
			if childID, err = s.save(ctx, tx, t.Record); err != nil {
				return "", err
			}
		} else if childID == "" {
			return "", fmt.Errorf("sqlgraph: relation %q of %s: target has no id", t.Name, rec.Type)
		}
		if err := addEdge(ctx, tx, graph.Orient(id, t.Label, childID, t.Direction)); err != nil {
			return "", err
		}
	}
	return id, nil
}

// tx runs fn in a transaction, rolling back when fn fails.
func (s *Store) tx(ctx context.Context, fn func(dialect.Tx) error) error {
	tx, err := s.driver.Tx(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return rollback(tx, err)
	}
	return tx.Commit()
}

func rollback(tx dialect.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		err = fmt.Errorf("%w: %v", err, rerr)
	}
	return err
}

func putNode(ctx context.Context, ex dialect.ExecQuerier, n *graph.Node) error {
	props := n.Properties
	if props == nil {
		props = map[string]any{}
	}
	data, err := msgpack.Marshal(props)
	if err != nil {
		return fmt.Errorf("sqlgraph: encode %s: %w", n.ID, err)
	}
	c, err := count(ctx, ex, "SELECT COUNT(*) FROM gb_nodes WHERE id = ?", n.ID)
	if err != nil {
		return err
	}
	if c > 0 {
		return ex.Exec(ctx, "UPDATE gb_nodes SET entity_type = ?, data = ? WHERE id = ?", []any{string(n.Type), data, n.ID}, nil)
	}
	return ex.Exec(ctx, "INSERT INTO gb_nodes (id, entity_type, data) VALUES (?, ?, ?)", []any{n.ID, string(n.Type), data}, nil)
}

// putUnique replaces the unique index rows of id. Rows are inserted one
// property at a time so a collision names the property that caused it.
func putUnique(ctx context.Context, ex dialect.ExecQuerier, id string, rec *validate.Record) error {
	if err := ex.Exec(ctx, "DELETE FROM gb_unique WHERE node_id = ?", []any{id}, nil); err != nil {
		return err
	}
	values := rec.UniqueValues()
	for _, name := range slices.Sorted(maps.Keys(values)) {
		v := values[name]
		err := ex.Exec(ctx, "INSERT INTO gb_unique (entity_type, property, value_text, node_id) VALUES (?, ?, ?, ?)",
			[]any{string(rec.Type), name, v, id}, nil)
		if err != nil {
			return AsIntegrityError(err, rec.Type, map[string]string{name: v})
		}
	}
	return nil
}

// detach removes the edges of one relation of id. Children of a dependent
// relation are deleted with their edges.
func detach(ctx context.Context, ex dialect.ExecQuerier, id string, t validate.RelationTarget) error {
	near, far := edgeColumns(t.Direction)
	others, err := queryStrings(ctx, ex, "SELECT "+far+" FROM gb_edges WHERE "+near+" = ? AND label = ?", id, t.Label)
	if err != nil {
		return err
	}
	if err := ex.Exec(ctx, "DELETE FROM gb_edges WHERE "+near+" = ? AND label = ?", []any{id, t.Label}, nil); err != nil {
		return err
	}
	if !t.Dependent {
		return nil
	}
	for _, o := range others {
		if err := removeNode(ctx, ex, o); err != nil {
			return err
		}
	}
	return nil
}

func addEdge(ctx context.Context, ex dialect.ExecQuerier, e graph.Edge) error {
	for _, id := range []string{e.Source, e.Target} {
		if err := mustExist(ctx, ex, id); err != nil {
			return err
		}
	}
	c, err := count(ctx, ex, "SELECT COUNT(*) FROM gb_edges WHERE source_id = ? AND label = ? AND target_id = ?", e.Source, e.Label, e.Target)
	if err != nil || c > 0 {
		return err
	}
	seq, err := count(ctx, ex, "SELECT COALESCE(MAX(seq), 0) FROM gb_edges")
	if err != nil {
		return err
	}
	return ex.Exec(ctx, "INSERT INTO gb_edges (source_id, label, target_id, seq) VALUES (?, ?, ?, ?)",
		[]any{e.Source, e.Label, e.Target, seq + 1}, nil)
}

func removeNode(ctx context.Context, ex dialect.ExecQuerier, id string) error {
	stmts := []struct {
		query string
		args  []any
	}{
		{"DELETE FROM gb_edges WHERE source_id = ? OR target_id = ?", []any{id, id}},
		{"DELETE FROM gb_unique WHERE node_id = ?", []any{id}},
		{"DELETE FROM gb_nodes WHERE id = ?", []any{id}},
	}
	for _, st := range stmts {
		if err := ex.Exec(ctx, st.query, st.args, nil); err != nil {
			return err
		}
	}
	return nil
}

func mustExist(ctx context.Context, ex dialect.ExecQuerier, id string) error {
	c, err := count(ctx, ex, "SELECT COUNT(*) FROM gb_nodes WHERE id = ?", id)
	if err != nil {
		return err
	}
	if c == 0 {
		return graphbundle.NewNotFoundError(id)
	}
	return nil
}

// edgeColumns returns the column holding the declaring node and the
// column holding the related node for dir.
func edgeColumns(dir graphbundle.Direction) (near, far string) {
	if dir == graphbundle.Incoming {
		return "target_id", "source_id"
	}
	return "source_id", "target_id"
}

func count(ctx context.Context, ex dialect.ExecQuerier, query string, args ...any) (int64, error) {
	var rows sql.Rows
	if err := ex.Query(ctx, query, args, &rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}

func queryStrings(ctx context.Context, ex dialect.ExecQuerier, query string, args ...any) ([]string, error) {
	var rows sql.Rows
	if err := ex.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func queryNodes(ctx context.Context, ex dialect.ExecQuerier, query string, args ...any) ([]*graph.Node, error) {
	var rows sql.Rows
	if err := ex.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*graph.Node
	for rows.Next() {
		var (
			id, typ string
			data    []byte
		)
		if err := rows.Scan(&id, &typ, &data); err != nil {
			return nil, err
		}
		n, err := decodeNode(id, typ, data)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// decodeNode rebuilds a node from its stored row. MessagePack keeps the
// integer and float kinds apart; Normalize folds the sized integer types
// it decodes to back into int64.
func decodeNode(id, typ string, data []byte) (*graph.Node, error) {
	var raw map[string]any
	if err := msgpack.Unmarshal(data, &raw); err != nil {
		return nil, graphbundle.NewStructuralError(id, "undecodable node data", err)
	}
	props := make(map[string]any, len(raw))
	for k, v := range raw {
		nv, err := bundle.Normalize(v)
		if err != nil {
			return nil, graphbundle.NewStructuralError(id+"/"+k, "invalid stored value", err)
		}
		props[k] = nv
	}
	return &graph.Node{ID: id, Type: graphbundle.EntityType(typ), Properties: props}, nil
}
