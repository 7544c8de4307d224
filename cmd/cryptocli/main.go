// cryptocli - command-line client for CoinGecko market data.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/seenimoa/cryptocli/internal/cli"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli.Build = cli.BuildInfo{Version: version, Commit: commit, Date: date}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
