package infra

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy controls automatic retries of idempotent requests.
type RetryPolicy struct {
	MaxRetries      int           // retries after the first attempt
	BackoffFactor   time.Duration // wait before retry n is BackoffFactor * 2^n
	MaxBackoff      time.Duration // cap for backoff and Retry-After waits
	StatusForcelist []int         // response statuses that trigger a retry
	AllowedMethods  []string      // only these methods are retried
}

// DefaultRetryPolicy returns the policy used for the market data API:
// 3 retries, waiting 0.5s, 1s and 2s, on connect errors and on
// 429/500/502/503/504, for read-only methods.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		BackoffFactor:   500 * time.Millisecond,
		MaxBackoff:      30 * time.Second,
		StatusForcelist: []int{429, 500, 502, 503, 504},
		AllowedMethods:  []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	}
}

// Backoff returns the wait before retry number n (0-based):
// BackoffFactor * 2^n, capped at MaxBackoff.
func (p RetryPolicy) Backoff(n int) time.Duration {
	if n < 0 {
		n = 0
	}
	if n > 30 {
		return p.cap(p.MaxBackoff)
	}
	return p.cap(p.BackoffFactor * time.Duration(1<<n))
}

func (p RetryPolicy) cap(d time.Duration) time.Duration {
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

func (p RetryPolicy) allowsMethod(method string) bool {
	return slices.Contains(p.AllowedMethods, strings.ToUpper(method))
}

func (p RetryPolicy) retryStatus(status int) bool {
	return slices.Contains(p.StatusForcelist, status)
}

// RetryTransport retries requests through Base according to Policy.
// Connect-phase failures and forcelisted statuses are retried; when retries
// run out, the last response or error is returned unchanged.
type RetryTransport struct {
	Base   http.RoundTripper
	Policy RetryPolicy
	Log    *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryTransport wraps base with policy.
func NewRetryTransport(base http.RoundTripper, policy RetryPolicy, log *zap.Logger) *RetryTransport {
	if log == nil {
		log = zap.NewNop()
	}
	return &RetryTransport{Base: base, Policy: policy, Log: log, sleep: sleepCtx}
}

// RoundTrip implements http.RoundTripper.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.Policy.allowsMethod(req.Method) {
		return t.Base.RoundTrip(req)
	}

	for attempt := 0; ; attempt++ {
		r, err := rewind(req)
		if err != nil {
			return nil, err
		}

		resp, err := t.Base.RoundTrip(r)
		wait, retry := t.shouldRetry(resp, err, attempt)
		if !retry {
			return resp, err
		}

		fields := []zap.Field{
			zap.String("url", req.URL.Redacted()),
			zap.Int("retry", attempt+1),
			zap.Duration("wait", wait),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		} else {
			fields = append(fields, zap.Int("status", resp.StatusCode))
			drain(resp)
		}
		t.Log.Debug("retrying request", fields...)

		if err := t.sleep(req.Context(), wait); err != nil {
			return nil, err
		}
	}
}

func (t *RetryTransport) shouldRetry(resp *http.Response, err error, attempt int) (time.Duration, bool) {
	if attempt >= t.Policy.MaxRetries {
		return 0, false
	}
	if err != nil {
		return t.Policy.Backoff(attempt), IsConnectError(err)
	}
	if !t.Policy.retryStatus(resp.StatusCode) {
		return 0, false
	}
	wait := t.Policy.Backoff(attempt)
	if ra, ok := retryAfter(resp); ok && ra > wait {
		wait = t.Policy.cap(ra)
	}
	return wait, true
}

// rewind returns a copy of req with a fresh body, so it can be sent again.
func rewind(req *http.Request) (*http.Request, error) {
	r := req.Clone(req.Context())
	if req.Body != nil && req.Body != http.NoBody && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		r.Body = body
	}
	return r, nil
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(resp *http.Response) (time.Duration, bool) {
	v := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsConnectError reports whether err happened while establishing the
// connection (DNS, dial, proxy connect, TLS handshake timeout), before any
// part of the request reached the server.
func IsConnectError(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && (opErr.Op == "dial" || opErr.Op == "proxyconnect") {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return strings.Contains(err.Error(), "TLS handshake timeout")
}

// IsTimeout reports whether err is a timeout of any phase. The whole chain
// is checked since *url.Error only looks at its direct cause.
func IsTimeout(err error) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if t, ok := e.(interface{ Timeout() bool }); ok && t.Timeout() {
			return true
		}
	}
	return false
}

// IsConnectTimeout reports whether err is a connect-phase timeout.
func IsConnectTimeout(err error) bool {
	return IsConnectError(err) && IsTimeout(err)
}
