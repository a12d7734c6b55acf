package proxychain

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/net/proxy"
)

// DialContext establishes one end-to-end connection through every hop of
// the chain in order: a TCP dial to the first hop, then each subsequent
// hop tunneled through the live connection of the previous one, ending
// with the target address. The returned net.Conn is a plain duplex socket
// usable by net/http.
func (c Chain) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if network != "tcp" {
		return nil, fmt.Errorf("proxy chain supports tcp only, got %q", network)
	}
	if len(c) == 0 {
		return nil, fmt.Errorf("%w: empty chain", ErrMalformedProxy)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c[0].Address())
	if err != nil {
		return nil, fmt.Errorf("proxy chain hop 0 (%s): %w", c[0].Address(), err)
	}

	for i, hop := range c {
		target := addr
		if i+1 < len(c) {
			target = c[i+1].Address()
		}

		tunneled, err := hop.tunnel(ctx, conn, target)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("proxy chain hop %d (%s): %w", i, hop.Address(), err)
		}
		conn = tunneled
	}

	return conn, nil
}

// tunnel negotiates a connection to target through an already-established
// stream to this hop.
func (p Proxy) tunnel(ctx context.Context, conn net.Conn, target string) (net.Conn, error) {
	switch p.Scheme {
	case SchemeHTTP:
		return p.tunnelHTTP(conn, target)
	case SchemeSOCKS4:
		return p.tunnelSOCKS4(ctx, conn, target)
	case SchemeSOCKS5:
		return p.tunnelSOCKS5(ctx, conn, target)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrMalformedProxy, p.Scheme)
	}
}

// tunnelHTTP issues a CONNECT request over the stream and expects a 200.
func (p Proxy) tunnelHTTP(conn net.Conn, target string) (net.Conn, error) {
	connectReq := fmt.Sprintf("CONNECT %s HTTP/1.1\r\nHost: %s\r\n", target, target)
	if p.Username != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(p.Username + ":" + p.Password))
		connectReq += "Proxy-Authorization: Basic " + credentials + "\r\n"
	}
	connectReq += "\r\n"

	if _, err := conn.Write([]byte(connectReq)); err != nil {
		return nil, fmt.Errorf("failed to send CONNECT request: %w", err)
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read CONNECT response: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CONNECT to %s failed with status: %d", target, resp.StatusCode)
	}

	return conn, nil
}

// onceConnDialer hands an already-established connection to the x/net
// SOCKS5 negotiator instead of dialing a new one.
type onceConnDialer struct {
	conn net.Conn
}

func (d onceConnDialer) Dial(network, addr string) (net.Conn, error) {
	return d.conn, nil
}

// tunnelSOCKS5 negotiates SOCKS5 over the stream. The x/net dialer always
// forwards the target hostname to the proxy, so socks5 and socks5h behave
// identically here.
func (p Proxy) tunnelSOCKS5(_ context.Context, conn net.Conn, target string) (net.Conn, error) {
	var auth *proxy.Auth
	if p.Username != "" {
		auth = &proxy.Auth{User: p.Username, Password: p.Password}
	}

	sd, err := proxy.SOCKS5("tcp", p.Address(), auth, onceConnDialer{conn: conn})
	if err != nil {
		return nil, fmt.Errorf("socks5 setup failed: %w", err)
	}

	return sd.Dial("tcp", target)
}

// tunnelSOCKS4 performs the SOCKS4 CONNECT handshake, or SOCKS4a when the
// hop resolves DNS remotely.
func (p Proxy) tunnelSOCKS4(ctx context.Context, conn net.Conn, target string) (net.Conn, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return nil, fmt.Errorf("invalid target %q: %w", target, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return nil, fmt.Errorf("invalid target port %q", portStr)
	}

	ip := net.ParseIP(host)
	remoteName := ""
	if ip == nil {
		if p.RemoteDNS {
			// SOCKS4a: sentinel 0.0.0.x address plus the hostname.
			ip = net.IPv4(0, 0, 0, 1)
			remoteName = host
		} else {
			addrs, err := net.DefaultResolver.LookupIP(ctx, "ip4", host)
			if err != nil || len(addrs) == 0 {
				return nil, fmt.Errorf("failed to resolve %q for socks4: %w", host, err)
			}
			ip = addrs[0]
		}
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("socks4 requires an IPv4 target, got %q", host)
	}

	req := []byte{4, 1, byte(port >> 8), byte(port)}
	req = append(req, ip4...)
	req = append(req, []byte(p.Username)...)
	req = append(req, 0)
	if remoteName != "" {
		req = append(req, []byte(remoteName)...)
		req = append(req, 0)
	}

	if _, err := conn.Write(req); err != nil {
		return nil, fmt.Errorf("failed to send socks4 request: %w", err)
	}

	resp := make([]byte, 8)
	if _, err := io.ReadFull(conn, resp); err != nil {
		return nil, fmt.Errorf("failed to read socks4 response: %w", err)
	}
	if resp[1] != 0x5A {
		return nil, fmt.Errorf("socks4 request rejected with code 0x%02X", resp[1])
	}

	return conn, nil
}
