// Package cli implements the cryptocli command tree.
//
// Every invocation loads one Config, builds one logger and one API client in
// the root command's PersistentPreRunE, and hands them to the subcommand.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/seenimoa/cryptocli/internal/config"
	"github.com/seenimoa/cryptocli/internal/infra"
	"github.com/seenimoa/cryptocli/internal/providers/coingecko"
)

// BuildInfo identifies the binary. It is set from main via -ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Build is reported by `version` and `status`.
var Build = BuildInfo{Version: "dev", Commit: "unknown", Date: "unknown"}

// app is the state shared by one command tree.
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	clientOpts []infra.ClientOption

	cfg   *config.Config
	log   *zap.Logger
	gecko *coingecko.Provider
}

// Execute runs the command line args and returns the process exit code.
// Errors are printed to stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, args, stdout, stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer, opts ...infra.ClientOption) int {
	a := &app{stdout: stdout, stderr: stderr, clientOpts: opts}

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if a.log != nil {
		_ = a.log.Sync()
	}
	if err == nil {
		return ExitOK
	}

	msg, code := render(err)
	fmt.Fprintln(stderr, msg)
	return code
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cryptocli",
		Short: "Crypto market data from the CoinGecko API",
		Long: `cryptocli queries the CoinGecko public API for current coin prices.

Settings come from flags, CRYPTOCLI_* environment variables, and an optional
config file (~/.cryptocli/config.yaml or /etc/cryptocli/config.yaml).
The API key may also be given in COINGECKO_API_KEY.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.String("api-base", config.DefaultAPIBase, "CoinGecko API base URL")
	pf.Float64("connect-timeout", config.DefaultConnectTimeout, "connect timeout (s)")
	pf.Float64("read-timeout", config.DefaultReadTimeout, "read timeout (s)")
	pf.String("db", config.DefaultDBPath, "local database path (reserved)")
	pf.Bool("verbose", false, "add request debug info to errors and log at debug level (alias --v)")
	pf.String("user-agent", config.DefaultUserAgent, "HTTP User-Agent to send (alias --ua)")
	pf.String("api-key", "", "CoinGecko demo API key (env: COINGECKO_API_KEY)")
	pf.String("config", "", "config file path (default: ~/.cryptocli/config.yaml)")
	pf.String("log-level", "", "log level override (debug, info, warn, error)")
	root.SetGlobalNormalizationFunc(normalizeFlagName)

	root.AddCommand(
		a.priceCmd(),
		a.historyCmd(),
		a.trendingCmd(),
		a.statusCmd(),
		a.versionCmd(),
	)
	return root
}

// normalizeFlagName maps flag aliases to their canonical names.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "v":
		name = "verbose"
	case "ua":
		name = "user-agent"
	}
	return pflag.NormalizedName(name)
}

// setup loads the configuration and builds the logger and API client.
// Nothing here touches the network.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return usageError(err)
	}

	log, err := infra.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Verbose, a.stderr)
	if err != nil {
		return usageError(err)
	}
	log.Debug("config loaded", zap.String("command", cmd.Name()), zap.Object("config", cfg))

	a.cfg = cfg
	a.log = log
	a.gecko = coingecko.New(infra.NewClient(cfg, log, a.clientOpts...), log)
	return nil
}
