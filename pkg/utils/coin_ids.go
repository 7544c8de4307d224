package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxListSize is the most coin ids or vs currencies accepted in one request.
const MaxListSize = 10

var (
	coinIDPattern   = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	vsCurrencyRegex = regexp.MustCompile(`^[a-z]{2,}$`)
)

// ValidationError is returned when a CSV list fails normalization.
// Token is empty for list-level failures (empty or too long).
type ValidationError struct {
	Token  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// listSpec describes one kind of CSV list.
type listSpec struct {
	noun    string // "coin ids", "vs currencies"
	pattern *regexp.Regexp
	invalid func(token string) string
}

var coinIDList = listSpec{
	noun:    "coin ids",
	pattern: coinIDPattern,
	invalid: func(token string) string {
		return fmt.Sprintf("invalid id %q. use lowercase letters, digits, and hyphens", token)
	},
}

var vsCurrencyList = listSpec{
	noun:    "vs currencies",
	pattern: vsCurrencyRegex,
	invalid: func(token string) string {
		return fmt.Sprintf("invalid vs currency %q. use lowercase codes like 'usd','eur','btc'", token)
	},
}

// ParseCoinIDs normalizes a comma-separated list of CoinGecko coin ids.
// Tokens are trimmed and lowercased; empty tokens and repeats are dropped,
// keeping the position of the first occurrence.
func ParseCoinIDs(csv string) ([]string, error) {
	return parseList(csv, coinIDList)
}

// ParseVsCurrencies normalizes a comma-separated list of quote currencies.
func ParseVsCurrencies(csv string) ([]string, error) {
	return parseList(csv, vsCurrencyList)
}

func parseList(csv string, spec listSpec) ([]string, error) {
	var result []string
	seen := make(map[string]struct{})

	for _, raw := range strings.Split(csv, ",") {
		token := strings.ToLower(strings.TrimSpace(raw))
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		if !spec.pattern.MatchString(token) {
			return nil, &ValidationError{Token: token, Reason: spec.invalid(token)}
		}
		seen[token] = struct{}{}
		result = append(result, token)
	}

	if len(result) == 0 {
		return nil, &ValidationError{Reason: spec.noun + " cannot be empty"}
	}
	if len(result) > MaxListSize {
		return nil, &ValidationError{Reason: fmt.Sprintf("%s must be ≤ %d", spec.noun, MaxListSize)}
	}
	return result, nil
}

// BoolString returns "true" or "false" for use in query strings.
func BoolString(flag bool) string {
	if flag {
		return "true"
	}
	return "false"
}
