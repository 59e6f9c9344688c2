package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"time"
)

const maxRedirects = 5

// blockedPrefixes are address ranges a fetched document may not come from.
// Loopback, private, link-local and unspecified addresses are checked with
// the netip predicates; these cover what the predicates do not.
var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("100.64.0.0/10"), // carrier-grade NAT
	netip.MustParsePrefix("192.0.0.0/24"),  // IETF protocol assignments
	netip.MustParsePrefix("198.18.0.0/15"), // benchmarking
}

// blockedAddr reports whether addr must not be dialed.
func blockedAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast() {
		return true
	}
	for _, p := range blockedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// resolvePublic resolves host and returns its addresses, failing when any
// of them is blocked so that a mixed answer cannot be raced.
func resolvePublic(ctx context.Context, host string) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		if blockedAddr(addr) {
			return nil, fmt.Errorf("blocked request to non-public address %s", addr)
		}
		return []netip.Addr{addr}, nil
	}
	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no addresses found for host %s", host)
	}
	for _, addr := range addrs {
		if blockedAddr(addr) {
			return nil, fmt.Errorf("blocked request to %s: resolves to non-public address %s", host, addr.Unmap())
		}
	}
	return addrs, nil
}

// newFetchClient returns the client used for documents given by URL. Unless
// private addresses are allowed, it dials only vetted addresses and checks
// every redirect target the same way.
func newFetchClient(timeout time.Duration, allowPrivate bool) *http.Client {
	dialer := &net.Dialer{Timeout: timeout}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	client := &http.Client{Timeout: timeout, Transport: transport}
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
			return fmt.Errorf("redirect to unsupported url scheme %q", req.URL.Scheme)
		}
		return nil
	}
	if allowPrivate {
		return client
	}

	transport.Proxy = nil
	transport.DialContext = func(ctx context.Context, network, address string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(address)
		if err != nil {
			return nil, err
		}
		addrs, err := resolvePublic(ctx, host)
		if err != nil {
			return nil, err
		}
		return dialer.DialContext(ctx, network, net.JoinHostPort(addrs[0].String(), port))
	}
	return client
}
