// Command bundlectl moves archival records between a SQL-backed graph and
// bundle files.
//
//	bundlectl import fonds.yaml
//	bundlectl serialize --lite --max-depth 2 <id>
//	bundlectl validate --schema extra.yaml --watch unit.json
//	bundlectl get unit.json 'describes[0]/name'
//	bundlectl convert unit.json unit.msgpack
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
