package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/seenimoa/cryptocli/internal/config"
	"github.com/seenimoa/cryptocli/internal/provider"
	"github.com/seenimoa/cryptocli/pkg/models"
	"github.com/seenimoa/cryptocli/pkg/utils"
)

//go:generate mockgen -source=price.go -destination=mocks/mock_fetcher.go -package=mocks

// PriceFetcher fetches current prices. Failures are *provider.FetchError.
type PriceFetcher interface {
	SimplePrice(ctx context.Context, params models.PriceParams) (*provider.FetchResult, error)
}

// PriceOptions are the raw `price` command flags.
type PriceOptions struct {
	Coins     string // CSV coin ids
	VS        string // CSV quote currencies
	MarketCap bool
	Volume    bool
	Change    bool
	Updated   bool
}

// Messages for classified HTTP failures.
const (
	msgInputError   = "input error. check coin ids and vs currencies"
	msgRateLimit    = "rate limit. try again later"
	msgUnavailable  = "service unavailable. try again later"
	msgUnknownCoinF = "unknown coin id '%s'"
	msgHTTPErrorF   = "http error (%d)"
)

// RunPrice validates opts, fetches prices and writes them to out as indented
// JSON. It returns nil or an *ExitError.
func RunPrice(ctx context.Context, cfg *config.Config, fetcher PriceFetcher, opts PriceOptions, out io.Writer) error {
	ids, err := utils.ParseCoinIDs(opts.Coins)
	if err != nil {
		return &ExitError{Code: ExitUsage, Param: "--coins", Message: err.Error()}
	}
	currencies, err := utils.ParseVsCurrencies(opts.VS)
	if err != nil {
		return &ExitError{Code: ExitUsage, Param: "--vs", Message: err.Error()}
	}

	res, err := fetcher.SimplePrice(ctx, models.PriceParams{
		IDs:                  ids,
		Currencies:           currencies,
		IncludeMarketCap:     opts.MarketCap,
		Include24hrVol:       opts.Volume,
		Include24hrChange:    opts.Change,
		IncludeLastUpdatedAt: opts.Updated,
	})
	if err != nil {
		return fetchFailure(err, ids, cfg.Verbose)
	}

	body, err := json.MarshalIndent(res.Data, "", "  ")
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("encode result: %v", err)}
	}
	if _, err := fmt.Fprintln(out, string(body)); err != nil {
		return &ExitError{Code: ExitFailure, Message: err.Error()}
	}
	return nil
}

// fetchFailure turns a fetch error into the message and exit code shown to
// the user.
func fetchFailure(err error, ids []string, verbose bool) *ExitError {
	fe, ok := provider.AsFetchError(err)
	if !ok {
		return &ExitError{Code: ExitFailure, Message: err.Error()}
	}

	ee := &ExitError{Code: ExitFailure, Message: fe.Message}
	if status, ok := fe.HTTPStatus(); ok {
		switch provider.Classify(status) {
		case provider.CategoryInput:
			ee.Code = ExitUsage
			ee.Message = msgInputError
			if len(ids) == 1 && status == 404 {
				ee.Message = fmt.Sprintf(msgUnknownCoinF, ids[0])
			}
		case provider.CategoryRate:
			ee.Message = msgRateLimit
		case provider.CategoryServer:
			ee.Message = msgUnavailable
		default:
			ee.Message = fmt.Sprintf(msgHTTPErrorF, status)
		}
	}

	if verbose {
		ee.Message += fe.Debug.Suffix()
	}
	return ee
}
