package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"github.com/syssam/graphbundle/dialect"
	"github.com/syssam/graphbundle/dialect/sql"
	"github.com/syssam/graphbundle/dialect/sql/sqlgraph"
	"github.com/syssam/graphbundle/schema"
	"github.com/syssam/graphbundle/schema/archival"
)

// env holds the global flags and the resources built from them.
type env struct {
	dialect    string
	dsn        string
	schemaPath string
	debug      bool

	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	cmd := &cobra.Command{
		Use:           "bundlectl",
		Short:         "Convert archival records between a graph store and bundle files",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if e.log != nil {
				return nil
			}
			l, err := newLogger(e.debug)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			e.log = l
			return nil
		},
	}
	f := cmd.PersistentFlags()
	f.StringVar(&e.dialect, "dialect", dialect.SQLite, "database dialect: sqlite, postgres or mysql")
	f.StringVar(&e.dsn, "dsn", "graphbundle.db", "data source name of the graph store")
	f.StringVar(&e.schemaPath, "schema", "", "YAML schema file extending the archival model")
	f.BoolVar(&e.debug, "debug", false, "verbose logging, including SQL statements")
	cmd.AddCommand(
		newImportCmd(e),
		newSerializeCmd(e),
		newValidateCmd(e),
		newGetCmd(e),
		newConvertCmd(e),
	)
	return cmd
}

// newLogger builds a development logger in debug mode and a production
// logger that only reports warnings otherwise.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		z := zap.NewDevelopmentConfig()
		z.OutputPaths = []string{"stderr"}
		return z.Build()
	}
	z := zap.NewProductionConfig()
	z.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return z.Build()
}

// slog returns the logger handed to library packages.
func (e *env) slog() *slog.Logger {
	return slog.New(zapslog.NewHandler(e.log.Core(), zapslog.WithCaller(true)))
}

func (e *env) registry() (*schema.Registry, error) {
	if e.schemaPath == "" {
		return archival.Registry()
	}
	return schema.LoadFile(e.schemaPath, archival.Definitions()...)
}

// openStore connects to the graph store and creates its tables. The
// returned function closes the connection.
func (e *env) openStore(ctx context.Context) (*sqlgraph.Store, func(), error) {
	drv, err := sql.Open(e.dialect, e.dsn)
	if err != nil {
		return nil, nil, err
	}
	if e.dialect == dialect.SQLite {
		drv.DB().SetMaxOpenConns(1)
	}
	stats := sql.NewStatsDriver(drv, sql.WithSlowQueryLog(e.slog()))
	var d dialect.Driver = stats
	if e.debug {
		sugar := e.log.Sugar()
		d = sql.NewDebugDriver(stats, sql.DebugWithLog(func(_ context.Context, v ...any) {
			sugar.Debug(v...)
		}))
	}
	s := sqlgraph.NewStore(d, sqlgraph.WithLogger(e.slog()))
	if err := s.Migrate(ctx); err != nil {
		drv.Close()
		return nil, nil, err
	}
	closeFn := func() {
		e.log.Debug("sql statistics", zap.Stringer("stats", stats.Stats()))
		if err := drv.Close(); err != nil {
			e.log.Warn("closing store", zap.Error(err))
		}
	}
	return s, closeFn, nil
}
