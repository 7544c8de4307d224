package infra

import (
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/seenimoa/cryptocli/internal/config"
)

// APIKeyHeader carries the CoinGecko demo API key.
const APIKeyHeader = "x-cg-demo-api-key"

type clientOptions struct {
	transport http.RoundTripper
	policy    RetryPolicy
}

// ClientOption customizes NewClient.
type ClientOption func(*clientOptions)

// WithTransport replaces the base transport that requests are sent through.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) { o.transport = rt }
}

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(o *clientOptions) { o.policy = p }
}

// NewClient builds the API client for cfg. Requests carry the API key (when
// set), User-Agent and Accept headers. Retries apply only to URLs under the
// API base host; every other URL goes straight to the base transport.
// No network I/O happens here.
func NewClient(cfg *config.Config, log *zap.Logger, opts ...ClientOption) *resty.Client {
	if log == nil {
		log = zap.NewNop()
	}
	o := clientOptions{policy: DefaultRetryPolicy()}
	for _, opt := range opts {
		opt(&o)
	}

	base := o.transport
	if base == nil {
		base = NewTransport(cfg.ConnectTimeout, cfg.ReadTimeout)
	}

	router := NewRouter(base)
	if prefix := HostPrefix(cfg.APIBase); prefix != "" {
		router.Mount(prefix, NewRetryTransport(base, o.policy, log))
	}

	c := resty.NewWithClient(&http.Client{Transport: router}).
		SetBaseURL(cfg.APIBase).
		SetLogger(log.Sugar()).
		SetHeaders(map[string]string{
			"User-Agent":      cfg.UserAgent,
			"Accept":          "application/json",
			"Accept-Encoding": "gzip, br",
		})
	if cfg.APIKey != "" {
		c.SetHeader(APIKeyHeader, cfg.APIKey)
	}
	c.OnAfterResponse(DecompressMiddleware(log))
	return c
}
