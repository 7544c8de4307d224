// Package provider holds the provider-neutral result and failure types shared
// by market data fetchers and the commands that consume them.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/cryptocli/pkg/models"
)

// Debug field limits used when rendering a DebugInfo.
const (
	RequestIDMaxLen = 24
	ExcerptMaxLen   = 80
)

// ProviderCredential describes a credential a provider accepts.
type ProviderCredential struct {
	Name        string   `json:"name"`        // e.g., "api_key"
	Description string   `json:"description"` // e.g., "CoinGecko demo API key"
	Required    bool     `json:"required"`
	EnvVars     []string `json:"env_vars"` // checked in order, e.g., "COINGECKO_API_KEY"
}

// ProviderInfo holds metadata about a market data provider.
type ProviderInfo struct {
	Name        string               `json:"name"`        // e.g., "coingecko"
	Description string               `json:"description"` // human-readable description
	Website     string               `json:"website"`
	Credentials []ProviderCredential `json:"credentials"`
}

// Provider is implemented by every market data provider.
type Provider interface {
	// Info returns metadata about this provider.
	Info() ProviderInfo

	// Ping verifies connectivity and credentials. Failures are *FetchError.
	Ping(ctx context.Context) error
}

// DebugInfo is best-effort diagnostic metadata about one fetch.
// Any field may be zero, meaning it was not available.
type DebugInfo struct {
	RequestID string        `json:"request_id,omitempty"`
	Elapsed   time.Duration `json:"elapsed,omitempty"`
	Excerpt   string        `json:"resp_excerpt,omitempty"` // whitespace-collapsed body
}

// Suffix renders the debug bundle for appending to an error message:
// " rid=<id> <n>ms resp='<excerpt>'", with only the fields that are set.
// It returns "" when nothing is set.
func (d DebugInfo) Suffix() string {
	var parts []string

	if rid := strings.TrimSpace(d.RequestID); rid != "" {
		parts = append(parts, "rid="+truncate(rid, RequestIDMaxLen))
	}
	if d.Elapsed > 0 {
		parts = append(parts, fmt.Sprintf("%dms", d.Elapsed.Milliseconds()))
	}
	if excerpt := truncate(strings.Join(strings.Fields(d.Excerpt), " "), ExcerptMaxLen); excerpt != "" {
		parts = append(parts, "resp='"+excerpt+"'")
	}

	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// FetchResult is a decoded /simple/price payload plus its debug bundle.
type FetchResult struct {
	Data  models.SimplePrice `json:"data"`
	Debug DebugInfo          `json:"debug"`
}

// FetchError is the single failure type returned by fetchers. Transport and
// decode failures leave Status at zero; HTTP failures keep the response
// status so callers can classify it.
type FetchError struct {
	Message string
	Status  int
	Cause   error
	Debug   DebugInfo
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the response status, if the failure had one.
func (e *FetchError) HTTPStatus() (int, bool) {
	return e.Status, e.Status != 0
}

// AsFetchError unwraps err into a *FetchError.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
