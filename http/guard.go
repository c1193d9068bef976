package http

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"net/url"
	"strconv"
	"strings"

	"github.com/fwojciec/pageinfo"
)

// blockedPrefixes lists special-purpose ranges not covered by the netip
// classification methods used in IsBlockedAddr.
var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("64:ff9b::/96"),
	netip.MustParsePrefix("100::/64"),
	netip.MustParsePrefix("2001:db8::/32"),
}

// internalSuffixes are host name suffixes that never name public hosts.
var internalSuffixes = []string{
	".localhost",
	".local",
	".internal",
}

// IsBlockedAddr reports whether addr is loopback, private, link-local
// (including 169.254.169.254), multicast, unspecified, or in another
// reserved range. IPv4-mapped IPv6 addresses are classified as IPv4.
func IsBlockedAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsValid() {
		return true
	}
	if addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() {
		return true
	}
	for _, p := range blockedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// IsInternalHost reports whether host is localhost or carries an
// internal-only suffix.
func IsInternalHost(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "localhost" {
		return true
	}
	for _, suffix := range internalSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// Guard validates request targets before any connection is made.
type Guard struct {
	Resolver pageinfo.Resolver

	// Blocked classifies resolved addresses. Defaults to IsBlockedAddr.
	Blocked func(netip.Addr) bool
}

// NewGuard returns a Guard using the system resolver.
func NewGuard() *Guard {
	return &Guard{
		Resolver: net.DefaultResolver,
		Blocked:  IsBlockedAddr,
	}
}

// Target is a validated destination. Connections for the request must be
// made to Addrs only; the host name is never resolved again.
type Target struct {
	Host  string
	Port  uint16
	Addrs []netip.Addr
}

// AddrPorts returns the dialable endpoints of t in resolution order.
func (t *Target) AddrPorts() []netip.AddrPort {
	out := make([]netip.AddrPort, len(t.Addrs))
	for i, a := range t.Addrs {
		out[i] = netip.AddrPortFrom(a, t.Port)
	}
	return out
}

// Check validates u and resolves its host exactly once. When blockPrivate
// is set, internal host names and any blocked candidate address fail with
// EBLOCKED.
func (g *Guard) Check(ctx context.Context, u *url.URL, blockPrivate bool) (*Target, error) {
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, pageinfo.Errorf(pageinfo.EBLOCKED, "scheme %q is not allowed", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return nil, pageinfo.Errorf(pageinfo.EINVALID, "URL %q has no host", u.String())
	}

	port, err := targetPort(u, scheme)
	if err != nil {
		return nil, err
	}

	if blockPrivate && IsInternalHost(host) {
		return nil, pageinfo.Errorf(pageinfo.EBLOCKED, "host %q is internal", host)
	}

	addrs, err := g.resolve(ctx, host)
	if err != nil {
		return nil, err
	}

	if blockPrivate {
		blocked := g.Blocked
		if blocked == nil {
			blocked = IsBlockedAddr
		}
		for _, addr := range addrs {
			if blocked(addr) {
				return nil, pageinfo.Errorf(pageinfo.EBLOCKED, "host %q resolves to blocked address %s", host, addr)
			}
		}
	}

	return &Target{Host: host, Port: port, Addrs: addrs}, nil
}

func (g *Guard) resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{addr.Unmap()}, nil
	}

	resolver := g.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	addrs, err := resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, pageinfo.Errorf(pageinfo.ETIMEOUT, "timed out resolving %q", host)
		case ctx.Err() != nil:
			return nil, ctx.Err()
		}
		return nil, pageinfo.Errorf(pageinfo.ETRANSPORT, "failed to resolve %q: %v", host, err)
	}
	if len(addrs) == 0 {
		return nil, pageinfo.Errorf(pageinfo.ETRANSPORT, "no addresses found for %q", host)
	}

	out := make([]netip.Addr, len(addrs))
	for i, a := range addrs {
		out[i] = a.Unmap()
	}
	return out, nil
}

func targetPort(u *url.URL, scheme string) (uint16, error) {
	p := u.Port()
	if p == "" {
		if scheme == "https" {
			return 443, nil
		}
		return 80, nil
	}
	n, err := strconv.ParseUint(p, 10, 16)
	if err != nil || n == 0 {
		return 0, pageinfo.Errorf(pageinfo.EINVALID, "invalid port %q", p)
	}
	return uint16(n), nil
}
