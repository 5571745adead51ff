// Package metadata stages client IP and User-Agent into the request context.
// The party service reads them when stamping forensic fields onto security
// audit events; nothing else should inspect raw headers.
package metadata

import (
	"net/http"
	"net/netip"
	"strings"

	"pactum/pkg/requestcontext"
)

// maxForwardedLength caps the X-Forwarded-For and X-Real-IP values we are
// willing to parse. Longer values are treated as hostile and ignored.
const maxForwardedLength = 500

// Config holds configuration for the metadata middleware.
type Config struct {
	// TrustedProxies lists CIDR prefixes allowed to assert forwarded-for
	// headers. Empty means forwarded headers are never believed.
	TrustedProxies []netip.Prefix
}

// DefaultConfig trusts no proxies.
func DefaultConfig() *Config {
	return &Config{}
}

// Middleware resolves the effective client IP under the proxy trust policy.
type Middleware struct {
	config *Config
}

// NewMiddleware creates the middleware; a nil config means no trusted proxies.
func NewMiddleware(cfg *Config) *Middleware {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Middleware{config: cfg}
}

// Handler stages the client IP and User-Agent into the context.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(
			r.Context(),
			m.clientIP(r),
			r.Header.Get("User-Agent"),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP resolves the client address. Forwarded headers only count when the
// direct peer is a trusted proxy; everything else falls back to RemoteAddr.
func (m *Middleware) clientIP(r *http.Request) string {
	peer := stripPort(r.RemoteAddr)
	if peer == "" {
		return "unknown"
	}
	if !m.trusted(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && len(xff) <= maxForwardedLength {
		// First hop in the chain is the original client.
		first := xff
		if before, _, ok := strings.Cut(xff, ","); ok {
			first = before
		}
		first = strings.TrimSpace(first)
		if _, err := netip.ParseAddr(first); err == nil {
			return first
		}
		return peer
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" && len(xri) <= maxForwardedLength {
		return strings.TrimSpace(xri)
	}

	return peer
}

// trusted reports whether the peer address sits inside a trusted prefix.
func (m *Middleware) trusted(ip string) bool {
	if len(m.config.TrustedProxies) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, prefix := range m.config.TrustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// stripPort drops the port from a RemoteAddr value, handling the bracketed
// IPv6 form.
func stripPort(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}

	if strings.HasPrefix(remoteAddr, "[") {
		if idx := strings.LastIndex(remoteAddr, "]:"); idx != -1 {
			return remoteAddr[1:idx]
		}
		return strings.Trim(strings.Split(remoteAddr, "]:")[0], "[]")
	}

	if idx := strings.LastIndex(remoteAddr, ":"); idx != -1 {
		return remoteAddr[:idx]
	}
	return remoteAddr
}
