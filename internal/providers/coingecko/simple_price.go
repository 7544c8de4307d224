package coingecko

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/seenimoa/cryptocli/internal/provider"
	"github.com/seenimoa/cryptocli/pkg/models"
	"github.com/seenimoa/cryptocli/pkg/utils"
)

// User-facing failure messages.
const (
	MsgConnectTimeout = "Connection timed out (check network)"
	MsgReadTimeout    = "Reading timed out (slow server or large response)"
	MsgConnection     = "Connection error (DNS/TLS/socket)"
	MsgCanceled       = "Request cancelled"
	MsgBadRequest     = "Bad request (check params)"
	MsgAuth           = "Auth/plan error: check API key/plan"
	MsgNotFound       = "Unknown coin ID or endpoint path"
	MsgRateLimited    = "Too many requests for the API rate limit"
	MsgServer         = "Server error at provider, try again later"
	MsgEmptyBody      = "API response is empty (expected JSON)"
	MsgBadJSON        = "JSON but could not be parsed"
)

// SimplePrice fetches current prices for params.IDs quoted in
// params.Currencies, with the optional market fields switched on by the
// Include* flags.
func (p *Provider) SimplePrice(ctx context.Context, params models.PriceParams) (*provider.FetchResult, error) {
	query := map[string]string{
		"ids":                     strings.Join(params.IDs, ","),
		"vs_currencies":           strings.Join(params.Currencies, ","),
		"include_market_cap":      utils.BoolString(params.IncludeMarketCap),
		"include_24hr_vol":        utils.BoolString(params.Include24hrVol),
		"include_24hr_change":     utils.BoolString(params.Include24hrChange),
		"include_last_updated_at": utils.BoolString(params.IncludeLastUpdatedAt),
	}

	resp, debug, err := p.get(ctx, simplePricePath, query)
	if err != nil {
		return nil, err
	}

	data, err := decodeSimplePrice(resp, debug)
	if err != nil {
		return nil, err
	}
	return &provider.FetchResult{Data: data, Debug: debug}, nil
}

// statusError maps a non-2xx status to a FetchError that keeps the status.
func statusError(status int, debug provider.DebugInfo) *provider.FetchError {
	if status >= 200 && status <= 299 {
		return nil
	}

	var msg string
	switch {
	case status == http.StatusBadRequest:
		msg = MsgBadRequest
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		msg = MsgAuth
	case status == http.StatusNotFound:
		msg = MsgNotFound
	case status == http.StatusTooManyRequests:
		msg = MsgRateLimited
	case status >= 500 && status <= 599:
		msg = MsgServer
	default:
		msg = fmt.Sprintf("HTTP error %d", status)
	}

	return &provider.FetchError{
		Message: msg,
		Status:  status,
		Cause:   fmt.Errorf("unexpected status %d %s", status, http.StatusText(status)),
		Debug:   debug,
	}
}

// decodeSimplePrice decodes a 2xx body. Numbers stay json.Number so they
// print exactly as received.
func decodeSimplePrice(resp *resty.Response, debug provider.DebugInfo) (models.SimplePrice, error) {
	body := resp.Body()

	var data models.SimplePrice
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	err := dec.Decode(&data)
	if err == nil {
		if _, tail := dec.Token(); tail != io.EOF {
			err = errors.New("invalid data after top-level value")
		}
	}
	if err == nil {
		return data, nil
	}

	fe := &provider.FetchError{Cause: err, Debug: debug}
	contentType := resp.Header().Get("Content-Type")
	switch {
	case len(bytes.TrimSpace(body)) == 0:
		fe.Message = MsgEmptyBody
	case isJSONContentType(contentType):
		fe.Message = MsgBadJSON
	default:
		fe.Message = fmt.Sprintf("API returned non-JSON content (Content-Type: %s)", contentType)
	}
	return nil, fe
}

func isJSONContentType(ct string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "application/json")
}
