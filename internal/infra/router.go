// Package infra provides the shared HTTP and logging infrastructure used by
// market data providers: the API client factory, host-scoped retries,
// per-phase timeouts, response decoding middleware, and logger setup.
package infra

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Router is an http.RoundTripper that dispatches each request to the
// transport mounted on the longest matching URL prefix, falling back to a
// default transport when nothing matches.
type Router struct {
	mounts   []mount
	fallback http.RoundTripper
}

type mount struct {
	prefix string // lowercased, e.g. "https://api.coingecko.com/"
	rt     http.RoundTripper
}

// NewRouter creates a router. A nil fallback uses http.DefaultTransport.
func NewRouter(fallback http.RoundTripper) *Router {
	if fallback == nil {
		fallback = http.DefaultTransport
	}
	return &Router{fallback: fallback}
}

// Mount routes every URL starting with prefix to rt. Mounting the same
// prefix again replaces the earlier transport.
func (r *Router) Mount(prefix string, rt http.RoundTripper) {
	prefix = strings.ToLower(prefix)
	for i := range r.mounts {
		if r.mounts[i].prefix == prefix {
			r.mounts[i].rt = rt
			return
		}
	}
	r.mounts = append(r.mounts, mount{prefix: prefix, rt: rt})
	sort.SliceStable(r.mounts, func(i, j int) bool {
		return len(r.mounts[i].prefix) > len(r.mounts[j].prefix)
	})
}

// Match returns the transport that serves u.
func (r *Router) Match(u *url.URL) http.RoundTripper {
	s := strings.ToLower(u.String())
	for _, m := range r.mounts {
		if strings.HasPrefix(s, m.prefix) {
			return m.rt
		}
	}
	return r.fallback
}

// RoundTrip implements http.RoundTripper.
func (r *Router) RoundTrip(req *http.Request) (*http.Response, error) {
	return r.Match(req.URL).RoundTrip(req)
}

// CloseIdleConnections forwards to every transport that supports it.
func (r *Router) CloseIdleConnections() {
	type closeIdler interface{ CloseIdleConnections() }
	if c, ok := r.fallback.(closeIdler); ok {
		c.CloseIdleConnections()
	}
	for _, m := range r.mounts {
		if c, ok := m.rt.(closeIdler); ok {
			c.CloseIdleConnections()
		}
	}
}

// HostPrefix returns the "<scheme>://<host>/" mount prefix for rawURL, or ""
// if rawURL has no scheme or host.
func HostPrefix(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host + "/")
}
