package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/seenimoa/cryptocli/internal/cli/mocks"
	"github.com/seenimoa/cryptocli/internal/config"
	"github.com/seenimoa/cryptocli/internal/provider"
	"github.com/seenimoa/cryptocli/pkg/models"
)

var testDebug = provider.DebugInfo{
	RequestID: "0123456789abcdef0123456789abcdef",
	Elapsed:   42 * time.Millisecond,
	Excerpt:   `{"error":   "coin not found"}`,
}

func requireExitError(t *testing.T, err error) *ExitError {
	t.Helper()
	require.Error(t, err)
	var ee *ExitError
	require.True(t, errors.As(err, &ee), "expected *ExitError, got %T: %v", err, err)
	return ee
}

func TestRunPriceSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockPriceFetcher(ctrl)

	fetcher.EXPECT().
		SimplePrice(gomock.Any(), models.PriceParams{
			IDs:               []string{"bitcoin", "ethereum"},
			Currencies:        []string{"usd", "eur"},
			IncludeMarketCap:  true,
			Include24hrChange: true,
		}).
		Return(&provider.FetchResult{
			Data: models.SimplePrice{
				"bitcoin":  {"usd": json.Number("50000"), "eur": json.Number("46000.5")},
				"ethereum": {"usd": json.Number("3000")},
			},
		}, nil)

	var out bytes.Buffer
	err := RunPrice(context.Background(), &config.Config{}, fetcher, PriceOptions{
		Coins:     " Bitcoin, ethereum ,bitcoin",
		VS:        "USD,eur",
		MarketCap: true,
		Change:    true,
	}, &out)
	require.NoError(t, err)

	want := `{
  "bitcoin": {
    "eur": 46000.5,
    "usd": 50000
  },
  "ethereum": {
    "usd": 3000
  }
}
`
	assert.Equal(t, want, out.String())
}

func TestRunPriceInvalidParams(t *testing.T) {
	tests := []struct {
		name      string
		opts      PriceOptions
		wantParam string
		wantMsg   string
	}{
		{
			name:      "bad coin id",
			opts:      PriceOptions{Coins: "bitcoin,b@d", VS: "usd"},
			wantParam: "--coins",
			wantMsg:   `invalid id "b@d". use lowercase letters, digits, and hyphens`,
		},
		{
			name:      "no coins",
			opts:      PriceOptions{Coins: " , ", VS: "usd"},
			wantParam: "--coins",
			wantMsg:   "coin ids cannot be empty",
		},
		{
			name:      "too many coins",
			opts:      PriceOptions{Coins: "a,b,c,d,e,f,g,h,i,j,k", VS: "usd"},
			wantParam: "--coins",
			wantMsg:   "coin ids must be ≤ 10",
		},
		{
			name:      "bad vs currency",
			opts:      PriceOptions{Coins: "bitcoin", VS: "usd,$"},
			wantParam: "--vs",
			wantMsg:   `invalid vs currency "$". use lowercase codes like 'usd','eur','btc'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No EXPECT: the fetcher must not be called.
			fetcher := mocks.NewMockPriceFetcher(gomock.NewController(t))

			var out bytes.Buffer
			err := RunPrice(context.Background(), &config.Config{}, fetcher, tt.opts, &out)
			ee := requireExitError(t, err)
			assert.Equal(t, ExitUsage, ee.Code)
			assert.Equal(t, tt.wantParam, ee.Param)
			assert.Equal(t, tt.wantMsg, ee.Message)
			assert.Equal(t, "invalid value for '"+tt.wantParam+"': "+tt.wantMsg, ee.Error())
			assert.Empty(t, out.String())
		})
	}
}

func TestRunPriceFetchFailures(t *testing.T) {
	tests := []struct {
		name     string
		coins    string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"single id not found", "bitcoin", &provider.FetchError{Message: "Unknown coin ID or endpoint path", Status: 404}, ExitUsage, "unknown coin id 'bitcoin'"},
		{"several ids not found", "bitcoin,ethereum", &provider.FetchError{Message: "x", Status: 404}, ExitUsage, "input error. check coin ids and vs currencies"},
		{"bad request", "bitcoin", &provider.FetchError{Message: "x", Status: 400}, ExitUsage, "input error. check coin ids and vs currencies"},
		{"unprocessable", "bitcoin", &provider.FetchError{Message: "x", Status: 422}, ExitUsage, "input error. check coin ids and vs currencies"},
		{"rate limited", "bitcoin", &provider.FetchError{Message: "x", Status: 429}, ExitFailure, "rate limit. try again later"},
		{"server error", "bitcoin", &provider.FetchError{Message: "x", Status: 503}, ExitFailure, "service unavailable. try again later"},
		{"auth", "bitcoin", &provider.FetchError{Message: "Auth/plan error: check API key/plan", Status: 401}, ExitFailure, "http error (401)"},
		{"unmapped status", "bitcoin", &provider.FetchError{Message: "HTTP error 418", Status: 418}, ExitFailure, "http error (418)"},
		{"no status", "bitcoin", &provider.FetchError{Message: "Connection timed out (check network)"}, ExitFailure, "Connection timed out (check network)"},
		{"foreign error", "bitcoin", errors.New("boom"), ExitFailure, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := mocks.NewMockPriceFetcher(gomock.NewController(t))
			fetcher.EXPECT().SimplePrice(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			var out bytes.Buffer
			err := RunPrice(context.Background(), &config.Config{}, fetcher, PriceOptions{Coins: tt.coins, VS: "usd"}, &out)
			ee := requireExitError(t, err)
			assert.Equal(t, tt.wantCode, ee.Code)
			assert.Equal(t, tt.wantMsg, ee.Message)
			assert.Empty(t, ee.Param)
			assert.Empty(t, out.String())
		})
	}
}

func TestRunPriceVerboseAddsDebugSuffix(t *testing.T) {
	for _, status := range []int{0, 404, 429, 503} {
		fe := &provider.FetchError{Message: "Reading timed out (slow server or large response)", Status: status, Debug: testDebug}

		quiet := fetchFailure(fe, []string{"bitcoin"}, false)
		loud := fetchFailure(fe, []string{"bitcoin"}, true)

		assert.Equal(t, quiet.Code, loud.Code, "verbose must not change the exit code")
		assert.Equal(t,
			quiet.Message+` rid=0123456789abcdef01234567 42ms resp='{"error": "coin not found"}'`,
			loud.Message)
	}
}

func TestRunPriceVerboseWithoutDebug(t *testing.T) {
	fetcher := mocks.NewMockPriceFetcher(gomock.NewController(t))
	fetcher.EXPECT().SimplePrice(gomock.Any(), gomock.Any()).
		Return(nil, &provider.FetchError{Message: "Connection error (DNS/TLS/socket)"})

	err := RunPrice(context.Background(), &config.Config{Verbose: true}, fetcher,
		PriceOptions{Coins: "bitcoin", VS: "usd"}, &bytes.Buffer{})
	ee := requireExitError(t, err)
	assert.Equal(t, "Connection error (DNS/TLS/socket)", ee.Message)
}

func TestRender(t *testing.T) {
	msg, code := render(&ExitError{Code: ExitUsage, Param: "--coins", Message: "coin ids cannot be empty"})
	assert.Equal(t, "Error: invalid value for '--coins': coin ids cannot be empty", msg)
	assert.Equal(t, ExitUsage, code)

	msg, code = render(&ExitError{Code: ExitUsage, Message: "unknown coin id 'x'"})
	assert.Equal(t, "Error: unknown coin id 'x'", msg)
	assert.Equal(t, ExitUsage, code)

	msg, code = render(&ExitError{Code: ExitFailure, Message: "rate limit. try again later"})
	assert.Equal(t, "rate limit. try again later", msg)
	assert.Equal(t, ExitFailure, code)

	msg, code = render(errors.New(`unknown flag: --nope`))
	assert.True(t, strings.HasPrefix(msg, "Error: unknown flag"))
	assert.Equal(t, ExitUsage, code)
}
