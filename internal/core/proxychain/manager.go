package proxychain

import (
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/logger"

	"go.uber.org/zap"
)

// Manager selects and memoizes an HTTP transport per raw proxy descriptor,
// so a chain reuses the same connection pool across requests, with the
// same pooling parameters as non-chained transports.
//
// Descriptors without a comma keep the standard single-proxy behavior of
// net/http; a comma marks an ordered multi-hop chain dialed end to end.
type Manager struct {
	mu         sync.Mutex
	transports map[string]http.RoundTripper
	logger     *zap.Logger
}

// NewManager creates an empty transport manager.
func NewManager() *Manager {
	return &Manager{
		transports: make(map[string]http.RoundTripper),
		logger:     logger.Named("proxychain"),
	}
}

// TransportFor returns the transport for the given proxy descriptor.
// An empty descriptor yields the default direct transport. Malformed
// descriptors fail here, before any connection attempt.
func (m *Manager) TransportFor(raw string) (http.RoundTripper, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return http.DefaultTransport, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.transports[raw]; ok {
		return t, nil
	}

	t, err := m.build(raw)
	if err != nil {
		return nil, err
	}
	m.transports[raw] = t
	return t, nil
}

func (m *Manager) build(raw string) (http.RoundTripper, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()

	if !strings.Contains(raw, ",") {
		p, err := ParseProxy(raw)
		if err != nil {
			return nil, err
		}

		// net/http speaks http and socks5 proxies natively; socks4 and
		// remote-DNS variants go through the chain dialer.
		if p.Scheme == SchemeHTTP || (p.Scheme == SchemeSOCKS5 && !p.RemoteDNS) {
			u, err := url.Parse(strings.TrimSpace(raw))
			if err != nil {
				return nil, err
			}
			base.Proxy = http.ProxyURL(u)
			m.logger.Debug("Built single-hop proxy transport", zap.String("proxy", p.Address()))
			return base, nil
		}

		chain := Chain{p}
		base.Proxy = nil
		base.DialContext = chain.DialContext
		m.logger.Debug("Built single-hop dialer transport", zap.String("proxy", p.Address()))
		return base, nil
	}

	chain, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	base.Proxy = nil
	base.DialContext = chain.DialContext
	m.logger.Debug("Built proxy chain transport", zap.Int("hops", len(chain)))
	return base, nil
}
