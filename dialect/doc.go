// Package dialect defines the database driver abstraction used by the SQL
// graph store.
//
// # Supported Dialects
//
//   - Postgres: PostgreSQL (github.com/lib/pq)
//   - MySQL: MySQL/MariaDB (github.com/go-sql-driver/mysql)
//   - SQLite: SQLite (modernc.org/sqlite)
//
// Statements are written with "?" placeholders; drivers rebind them to
// the dialect's form, so "id = ?" becomes "id = $1" on Postgres:
//
//	dialect.Rebind(dialect.Postgres, "SELECT data FROM gb_nodes WHERE id = ?")
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// Tx extends ExecQuerier with Commit and Rollback. The implementation over
// database/sql lives in dialect/sql; the graph store in
// dialect/sql/sqlgraph.
package dialect
