// Package coingecko implements the CoinGecko market data provider.
// It covers the public /simple/price endpoint and /ping.
//
// A demo API key is optional and is sent in the x-cg-demo-api-key header.
// Docs: https://docs.coingecko.com/reference/simple-price
package coingecko

import (
	"context"
	"errors"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seenimoa/cryptocli/internal/config"
	"github.com/seenimoa/cryptocli/internal/infra"
	"github.com/seenimoa/cryptocli/internal/provider"
)

const (
	providerName    = "coingecko"
	simplePricePath = "/simple/price"
	pingPath        = "/ping"
	requestIDHeader = "X-Request-Id"
)

var _ provider.Provider = (*Provider)(nil)

// Provider implements provider.Provider for CoinGecko.
type Provider struct {
	client *resty.Client
	log    *zap.Logger
	newID  func() string
}

// New creates a CoinGecko provider on top of a client from infra.NewClient.
func New(client *resty.Client, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		client: client,
		log:    log.Named(providerName),
		newID:  uuid.NewString,
	}
}

// Info returns provider metadata.
func (p *Provider) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		Description: "CoinGecko - spot prices, market cap and volume for 10K+ coins",
		Website:     "https://www.coingecko.com/en/api",
		Credentials: []provider.ProviderCredential{
			{
				Name:        "api_key",
				Description: "CoinGecko demo API key (" + infra.APIKeyHeader + " header)",
				Required:    false,
				EnvVars:     config.APIKeyEnvVars,
			},
		},
	}
}

// Ping checks connectivity and credentials against /ping.
func (p *Provider) Ping(ctx context.Context) error {
	_, _, err := p.get(ctx, pingPath, nil)
	return err
}

// get sends one GET and turns transport and status failures into
// *provider.FetchError. The returned DebugInfo is filled best-effort.
func (p *Provider) get(ctx context.Context, path string, query map[string]string) (*resty.Response, provider.DebugInfo, error) {
	sentID := p.newID()
	start := time.Now()

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, sentID).
		SetQueryParams(query).
		Get(path)

	debug := provider.DebugInfo{RequestID: sentID, Elapsed: time.Since(start)}
	if resp != nil && resp.RawResponse != nil {
		debug.RequestID = responseRequestID(resp, sentID)
		debug.Excerpt = excerpt(resp.Body(), resp.Header().Get("Content-Type"))
	}

	if err != nil {
		fe := transportError(err, debug)
		p.log.Debug("request failed",
			zap.String("path", path),
			zap.String("request_id", debug.RequestID),
			zap.Duration("elapsed", debug.Elapsed),
			zap.Error(err))
		return nil, debug, fe
	}

	p.log.Debug("response received",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
		zap.String("request_id", debug.RequestID),
		zap.Duration("elapsed", debug.Elapsed),
		zap.Int("bytes", len(resp.Body())))

	if fe := statusError(resp.StatusCode(), debug); fe != nil {
		return nil, debug, fe
	}
	return resp, debug, nil
}

// responseRequestID prefers an id the server assigned over the one sent.
func responseRequestID(resp *resty.Response, sent string) string {
	for _, h := range []string{requestIDHeader, "CF-Ray"} {
		if v := resp.Header().Get(h); v != "" {
			return v
		}
	}
	return sent
}

// transportError maps a failure with no HTTP response to its message.
func transportError(err error, debug provider.DebugInfo) *provider.FetchError {
	var msg string
	switch {
	case errors.Is(err, context.Canceled):
		msg = MsgCanceled
	case infra.IsConnectTimeout(err):
		msg = MsgConnectTimeout
	case infra.IsTimeout(err):
		msg = MsgReadTimeout
	default:
		msg = MsgConnection
	}
	return &provider.FetchError{Message: msg, Cause: err, Debug: debug}
}
