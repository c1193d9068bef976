package mock

import (
	"context"
	"net/netip"

	"github.com/fwojciec/pageinfo"
)

var _ pageinfo.Resolver = (*Resolver)(nil)

// Resolver is a mock implementation of pageinfo.Resolver.
type Resolver struct {
	LookupNetIPFn func(ctx context.Context, network, host string) ([]netip.Addr, error)
}

func (r *Resolver) LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error) {
	return r.LookupNetIPFn(ctx, network, host)
}
