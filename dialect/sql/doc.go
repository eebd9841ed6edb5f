// Package sql implements dialect.Driver over database/sql.
//
// Statements passed to Exec and Query use "?" placeholders and are
// rebound for the target dialect:
//
//	drv, err := sql.Open(dialect.SQLite, "file:archive.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var rows sql.Rows
//	err = drv.Query(ctx, "SELECT id FROM gb_nodes WHERE entity_type = ?", []any{"Country"}, &rows)
//
// # Statistics and Debugging
//
// StatsDriver counts statements and transactions and reports slow
// statements; DebugDriver logs every statement:
//
//	stats := sql.NewStatsDriver(drv, sql.WithSlowThreshold(200*time.Millisecond), sql.WithSlowQueryLog(logger))
//	store := sqlgraph.NewStore(sql.NewDebugDriver(stats))
//	fmt.Println(stats.Stats())
package sql
