package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/syssam/graphbundle/dialect"
)

// Stats is a snapshot of the statements seen by a StatsDriver.
type Stats struct {
	Queries   int64
	Execs     int64
	Errors    int64
	Slow      int64
	Commits   int64
	Rollbacks int64
	Duration  time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf("queries=%d execs=%d errors=%d slow=%d commits=%d rollbacks=%d duration=%s",
		s.Queries, s.Execs, s.Errors, s.Slow, s.Commits, s.Rollbacks, s.Duration)
}

// SlowQueryHook is called for every statement slower than the threshold.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// StatsDriver wraps a driver and counts its statements and transactions.
// A failed save shows up as a rollback.
type StatsDriver struct {
	dialect.Driver
	threshold time.Duration
	onSlow    SlowQueryHook

	queries, execs, errs, slow atomic.Int64
	commits, rollbacks, nanos  atomic.Int64
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a statement counts as
// slow. Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.threshold = d
	}
}

// WithSlowQueryHook sets a callback for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.onSlow = hook
	}
}

// WithSlowQueryLog logs slow statements to l, or to the default logger if
// l is nil.
func WithSlowQueryLog(l *slog.Logger) StatsOption {
	if l == nil {
		l = slog.Default()
	}
	return WithSlowQueryHook(func(ctx context.Context, query string, args []any, duration time.Duration) {
		l.WarnContext(ctx, "slow statement", "duration", duration, "query", query, "args", args)
	})
}

// NewStatsDriver wraps drv with statement counting.
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{Driver: drv, threshold: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats returns the counters collected so far.
func (d *StatsDriver) Stats() Stats {
	return Stats{
		Queries:   d.queries.Load(),
		Execs:     d.execs.Load(),
		Errors:    d.errs.Load(),
		Slow:      d.slow.Load(),
		Commits:   d.commits.Load(),
		Rollbacks: d.rollbacks.Load(),
		Duration:  time.Duration(d.nanos.Load()),
	}
}

// Query executes a query and counts it.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, &d.queries, query, args, func() error {
		return d.Driver.Query(ctx, query, args, v)
	})
}

// Exec executes a statement and counts it.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, &d.execs, query, args, func() error {
		return d.Driver.Exec(ctx, query, args, v)
	})
}

// Tx starts a transaction whose statements are counted too.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		d.errs.Add(1)
		return nil, err
	}
	return &statsTx{Tx: tx, driver: d}, nil
}

func (d *StatsDriver) observe(ctx context.Context, counter *atomic.Int64, query string, args any, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	counter.Add(1)
	d.nanos.Add(int64(elapsed))
	if err != nil {
		d.errs.Add(1)
	}
	if elapsed > d.threshold {
		d.slow.Add(1)
		if d.onSlow != nil {
			argv, _ := args.([]any)
			d.onSlow(ctx, query, argv, elapsed)
		}
	}
	return err
}

type statsTx struct {
	dialect.Tx
	driver *StatsDriver
}

func (tx *statsTx) Query(ctx context.Context, query string, args, v any) error {
	return tx.driver.observe(ctx, &tx.driver.queries, query, args, func() error {
		return tx.Tx.Query(ctx, query, args, v)
	})
}

func (tx *statsTx) Exec(ctx context.Context, query string, args, v any) error {
	return tx.driver.observe(ctx, &tx.driver.execs, query, args, func() error {
		return tx.Tx.Exec(ctx, query, args, v)
	})
}

func (tx *statsTx) Commit() error {
	err := tx.Tx.Commit()
	if err != nil {
		tx.driver.errs.Add(1)
		return err
	}
	tx.driver.commits.Add(1)
	return nil
}

func (tx *statsTx) Rollback() error {
	tx.driver.rollbacks.Add(1)
	return tx.Tx.Rollback()
}

// DebugDriver wraps a driver with statement logging.
type DebugDriver struct {
	dialect.Driver
	log func(context.Context, ...any)
}

// DebugOption configures the DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLog sets the log function.
func DebugWithLog(logFunc func(context.Context, ...any)) DebugOption {
	return func(d *DebugDriver) {
		d.log = logFunc
	}
}

// NewDebugDriver wraps drv with statement logging. It logs to the default
// slog logger at debug level unless DebugWithLog is given.
func NewDebugDriver(drv dialect.Driver, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{
		Driver: drv,
		log: func(ctx context.Context, v ...any) {
			slog.DebugContext(ctx, fmt.Sprint(v...))
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Query logs and executes a query.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.log(ctx, fmt.Sprintf("query: %s args: %v", query, args))
	return d.Driver.Query(ctx, query, args, v)
}

// Exec logs and executes a statement.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.log(ctx, fmt.Sprintf("exec: %s args: %v", query, args))
	return d.Driver.Exec(ctx, query, args, v)
}

// Tx starts a transaction with statement logging.
func (d *DebugDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	d.log(ctx, "begin transaction")
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &debugTx{Tx: tx, log: d.log, ctx: ctx}, nil
}

type debugTx struct {
	dialect.Tx
	log func(context.Context, ...any)
	ctx context.Context
}

func (tx *debugTx) Query(ctx context.Context, query string, args, v any) error {
	tx.log(ctx, fmt.Sprintf("tx query: %s args: %v", query, args))
	return tx.Tx.Query(ctx, query, args, v)
}

func (tx *debugTx) Exec(ctx context.Context, query string, args, v any) error {
	tx.log(ctx, fmt.Sprintf("tx exec: %s args: %v", query, args))
	return tx.Tx.Exec(ctx, query, args, v)
}

func (tx *debugTx) Commit() error {
	tx.log(tx.ctx, "commit transaction")
	return tx.Tx.Commit()
}

func (tx *debugTx) Rollback() error {
	tx.log(tx.ctx, "rollback transaction")
	return tx.Tx.Rollback()
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Tx     = (*statsTx)(nil)
	_ dialect.Driver = (*DebugDriver)(nil)
	_ dialect.Tx     = (*debugTx)(nil)
)
