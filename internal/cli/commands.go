package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seenimoa/cryptocli/internal/config"
	"github.com/seenimoa/cryptocli/internal/provider"
)

const rule = "═══════════════════════════════════════"

// --- Price Command ---

func (a *app) priceCmd() *cobra.Command {
	var opts PriceOptions
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Show current prices for one or more coins",
		Example: `  cryptocli price --coins bitcoin
  cryptocli price --coins bitcoin,ethereum --vs usd,eur --mcap --change`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunPrice(cmd.Context(), a.cfg, a.gecko, opts, a.stdout)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Coins, "coins", "", `CSV of CoinGecko ids (max 10), e.g. "bitcoin,ethereum"`)
	f.StringVar(&opts.VS, "vs", "usd", `CSV of vs currencies (max 10), e.g. "usd,eur"`)
	f.BoolVar(&opts.MarketCap, "mcap", false, "add market cap")
	f.BoolVar(&opts.Volume, "vol", false, "add 24h volume")
	f.BoolVar(&opts.Change, "change", false, "add 24h change")
	f.BoolVar(&opts.Updated, "updated", false, "add last updated timestamp")
	_ = cmd.MarkFlagRequired("coins")
	return cmd
}

// --- History / Trending Commands ---

func (a *app) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Get historical data for a coin",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.stdout, "history: not yet implemented")
		},
	}
}

func (a *app) trendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trending",
		Short: "Get trending news from the crypto world",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.stdout, "trending: not yet implemented")
		},
	}
}

// --- Version Command ---

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// version works even when the configuration does not load.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "cryptocli %s\n", Build.Version)
			fmt.Fprintf(a.stdout, "  commit:  %s\n", Build.Commit)
			fmt.Fprintf(a.stdout, "  built:   %s\n", Build.Date)
		},
	}
}

// --- Status Command ---

func (a *app) statusCmd() *cobra.Command {
	var ping bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, API key status and connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStatus(cmd.Context(), ping)
		},
	}
	cmd.Flags().BoolVar(&ping, "ping", false, "check connectivity with the API /ping endpoint")
	return cmd
}

func (a *app) runStatus(ctx context.Context, ping bool) error {
	w := a.stdout
	cfg := a.cfg
	info := a.gecko.Info()

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "  cryptocli - Status")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  Version:         %s (%s)\n", Build.Version, Build.Commit)
	fmt.Fprintf(w, "  Provider:        %s (%s)\n", info.Name, info.Website)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  Configuration:")
	fmt.Fprintf(w, "    API Base:        %s\n", cfg.APIBase)
	fmt.Fprintf(w, "    Connect Timeout: %s\n", cfg.ConnectTimeout)
	fmt.Fprintf(w, "    Read Timeout:    %s\n", cfg.ReadTimeout)
	fmt.Fprintf(w, "    User-Agent:      %s\n", cfg.UserAgent)
	fmt.Fprintf(w, "    Database:        %s\n", cfg.DBPath)
	fmt.Fprintf(w, "    Verbose:         %t\n", cfg.Verbose)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  API Keys:")
	k := config.CheckAPIKey(cfg)
	status := "❌ not set"
	if k.IsSet {
		status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
	}
	fmt.Fprintf(w, "    %-25s %s\n", k.Name+":", status)

	var pingErr error
	if ping {
		fmt.Fprintln(w)
		if pingErr = a.gecko.Ping(ctx); pingErr != nil {
			fmt.Fprintf(w, "  Ping:            ❌ %s\n", pingErr)
		} else {
			fmt.Fprintln(w, "  Ping:            ✅ ok")
		}
	}
	fmt.Fprintln(w, rule)

	if pingErr != nil {
		msg := "ping failed: " + pingErr.Error()
		if fe, ok := provider.AsFetchError(pingErr); ok && cfg.Verbose {
			msg += fe.Debug.Suffix()
		}
		return &ExitError{Code: ExitFailure, Message: msg}
	}
	return nil
}
