package pageinfo

import (
	"context"
	"net/netip"
	"time"
)

// Header is a single HTTP header name/value pair.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FetchOptions configures a single fetch.
type FetchOptions struct {
	// Timeout bounds the whole operation: connect, every redirect hop and
	// the full body read.
	Timeout time.Duration

	// MaxBodySize caps the response body in bytes, both after content
	// decoding and after transcoding to UTF-8.
	MaxBodySize int64

	UserAgent string

	// MaxRedirects caps the number of redirect hops followed.
	MaxRedirects int

	// FollowRedirects, when false, returns the first 3xx response as-is.
	FollowRedirects bool

	// BlockPrivateIPs rejects targets resolving to loopback, private,
	// link-local and otherwise internal addresses.
	BlockPrivateIPs bool

	// AllowInsecure skips TLS certificate verification. Only for testing
	// against known self-signed services.
	AllowInsecure bool

	// Headers are sent with every request, including redirect hops.
	// Credential headers are dropped once a redirect leaves the original host.
	Headers []Header
}

// DefaultFetchOptions returns the default fetch configuration.
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		Timeout:         DefaultTimeout,
		MaxBodySize:     DefaultMaxBodySize,
		UserAgent:       "pageinfo/" + Version + " (+https://github.com/fwojciec/pageinfo)",
		MaxRedirects:    DefaultMaxRedirects,
		FollowRedirects: true,
		BlockPrivateIPs: true,
	}
}

// HTTPInfo describes a completed HTTP transfer.
type HTTPInfo struct {
	// URL is the final URL after redirects.
	URL        string   `json:"url"`
	StatusCode int      `json:"statusCode"`
	Headers    []Header `json:"headers"`

	// ContentType is the media type without parameters.
	ContentType   string `json:"contentType,omitempty"`
	RedirectCount int    `json:"redirectCount"`

	// Body is the decoded body, transcoded to UTF-8.
	Body string `json:"body"`
}

// HTTPFetcher retrieves documents over HTTP.
type HTTPFetcher interface {
	// Fetch retrieves url under the given options. Errors carry one of the
	// codes EINVALID, EBLOCKED, ETOOLARGE, ETIMEOUT, EREDIRECT, ETRANSPORT,
	// or are a *StatusError for non-success responses. Nothing is retried.
	Fetch(ctx context.Context, url string, opts FetchOptions) (*HTTPInfo, error)
}

// Resolver resolves host names. *net.Resolver satisfies it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// WebpageInfo combines the HTTP transfer with the metadata of its body.
type WebpageInfo struct {
	HTTP HTTPInfo `json:"http"`
	HTML HTMLInfo `json:"html"`
}
