package proxychain

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrMalformedProxy is returned when a proxy descriptor cannot be parsed.
// Parsing happens before any connection attempt, so a bad descriptor never
// costs a dial.
var ErrMalformedProxy = errors.New("malformed proxy descriptor")

// Scheme identifies the protocol spoken to a single proxy hop.
type Scheme string

const (
	// SchemeHTTP tunnels through the hop with an HTTP CONNECT request.
	SchemeHTTP Scheme = "http"
	// SchemeSOCKS4 uses the SOCKS4 (or SOCKS4a with remote DNS) handshake.
	SchemeSOCKS4 Scheme = "socks4"
	// SchemeSOCKS5 uses the SOCKS5 handshake.
	SchemeSOCKS5 Scheme = "socks5"
)

// Proxy describes one hop of a chain: scheme, endpoint and credentials.
// An "h" suffix on the scheme (socks4h, socks5h) requests remote DNS
// resolution, i.e. the hop resolves the next hostname itself.
type Proxy struct {
	Scheme    Scheme
	Host      string
	Port      string
	Username  string
	Password  string
	RemoteDNS bool
}

// Address returns the host:port endpoint of the hop.
func (p Proxy) Address() string {
	return net.JoinHostPort(p.Host, p.Port)
}

// Chain is an ordered list of proxy hops traversed by one connection.
type Chain []Proxy

// ParseProxy parses a single proxy descriptor of the form
// scheme://[user:pass@]host:port.
func ParseProxy(raw string) (Proxy, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Proxy{}, fmt.Errorf("%w: %q: %v", ErrMalformedProxy, raw, err)
	}

	var p Proxy
	switch strings.ToLower(u.Scheme) {
	case "http":
		p.Scheme = SchemeHTTP
	case "socks4":
		p.Scheme = SchemeSOCKS4
	case "socks4h":
		p.Scheme = SchemeSOCKS4
		p.RemoteDNS = true
	case "socks5":
		p.Scheme = SchemeSOCKS5
	case "socks5h":
		p.Scheme = SchemeSOCKS5
		p.RemoteDNS = true
	default:
		return Proxy{}, fmt.Errorf("%w: unsupported scheme %q", ErrMalformedProxy, u.Scheme)
	}

	p.Host = u.Hostname()
	p.Port = u.Port()
	if p.Host == "" || p.Port == "" {
		return Proxy{}, fmt.Errorf("%w: %q: host and port are required", ErrMalformedProxy, raw)
	}

	if u.User != nil {
		p.Username = u.User.Username()
		p.Password, _ = u.User.Password()
	}

	return p, nil
}

// Parse parses a comma-joined proxy chain descriptor into its ordered hops.
// Blank segments are skipped; an all-blank descriptor is malformed.
func Parse(raw string) (Chain, error) {
	var chain Chain
	for _, segment := range strings.Split(raw, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		p, err := ParseProxy(segment)
		if err != nil {
			return nil, err
		}
		chain = append(chain, p)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: %q: no hops", ErrMalformedProxy, raw)
	}
	return chain, nil
}
