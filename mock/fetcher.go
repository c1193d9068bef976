package mock

import (
	"context"

	"github.com/fwojciec/pageinfo"
)

var _ pageinfo.HTTPFetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of pageinfo.HTTPFetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string, opts pageinfo.FetchOptions) (*pageinfo.HTTPInfo, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string, opts pageinfo.FetchOptions) (*pageinfo.HTTPInfo, error) {
	return f.FetchFn(ctx, url, opts)
}
