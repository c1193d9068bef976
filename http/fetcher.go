// Package http implements pageinfo.HTTPFetcher with an SSRF guard and a
// bounded, decoded body read.
package http

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/pageinfo"
)

// DefaultDialTimeout bounds each TCP connection attempt.
const DefaultDialTimeout = 10 * time.Second

const acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// credentialHeaders are not forwarded to a redirect target on another host.
var credentialHeaders = []string{"Authorization", "Proxy-Authorization", "Cookie", "WWW-Authenticate"}

// Ensure Fetcher implements pageinfo.HTTPFetcher at compile time.
var _ pageinfo.HTTPFetcher = (*Fetcher)(nil)

// Fetcher retrieves documents over HTTP. Each request hop is validated by
// a Guard and connects only to the addresses the Guard resolved.
type Fetcher struct {
	guard       *Guard
	dialTimeout time.Duration
	limiter     *HostLimiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithResolver sets the resolver used to look up target hosts.
// Defaults to net.DefaultResolver.
func WithResolver(r pageinfo.Resolver) Option {
	return func(f *Fetcher) {
		f.guard.Resolver = r
	}
}

// WithDialTimeout bounds each connection attempt.
// Defaults to DefaultDialTimeout (10s).
func WithDialTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.dialTimeout = d
	}
}

// WithBlockedFunc replaces the address classifier used when private
// addresses are blocked. Defaults to IsBlockedAddr.
func WithBlockedFunc(fn func(netip.Addr) bool) Option {
	return func(f *Fetcher) {
		f.guard.Blocked = fn
	}
}

// WithHostLimiter paces every request hop, redirects included, through l.
// By default requests are not paced.
func WithHostLimiter(l *HostLimiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// NewFetcher creates a new Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		guard:       NewGuard(),
		dialTimeout: DefaultDialTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves rawURL. The timeout in opts covers resolution, every
// redirect hop and the full body read. Non-2xx responses yield a
// *pageinfo.StatusError, except a 3xx when redirects are not followed.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts pageinfo.FetchOptions) (*pageinfo.HTTPInfo, error) {
	opts = withDefaults(opts)

	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return nil, pageinfo.Errorf(pageinfo.EINVALID, "invalid URL %q", rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	origin := u.Hostname()
	var redirects int
	for {
		target, err := f.guard.Check(ctx, u, opts.BlockPrivateIPs)
		if err != nil {
			return nil, err
		}

		if f.limiter != nil {
			if err := f.limiter.Wait(ctx, target.Host); err != nil {
				if errors.Is(ctx.Err(), context.Canceled) {
					return nil, ctx.Err()
				}
				// The limiter refuses waits that would outlast the deadline.
				return nil, pageinfo.Errorf(pageinfo.ETIMEOUT, "timed out waiting to request %s", target.Host)
			}
		}

		resp, err := f.do(ctx, u, target, opts)
		if err != nil {
			return nil, classify(ctx, err, "request to %s failed", u.Redacted())
		}

		if !opts.FollowRedirects || !isRedirect(resp.StatusCode) {
			defer resp.Body.Close()
			return f.read(ctx, u, resp, redirects, opts)
		}

		location := resp.Header.Get("Location")
		drain(resp.Body)
		if location == "" {
			return nil, &pageinfo.StatusError{URL: u.String(), StatusCode: resp.StatusCode}
		}
		if redirects >= opts.MaxRedirects {
			return nil, pageinfo.Errorf(pageinfo.EREDIRECT, "stopped after %d redirects", redirects)
		}

		next, err := u.Parse(location)
		if err != nil {
			return nil, pageinfo.Errorf(pageinfo.EINVALID, "invalid redirect location %q", location)
		}
		u = next
		redirects++
		if !strings.EqualFold(u.Hostname(), origin) {
			opts.Headers = withoutCredentials(opts.Headers)
		}
	}
}

// do sends a single request over a transport pinned to target.
func (f *Fetcher) do(ctx context.Context, u *url.URL, target *Target, opts pageinfo.FetchOptions) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Encoding", AcceptEncoding)
	for _, h := range opts.Headers {
		req.Header.Set(h.Name, h.Value)
	}

	client := &http.Client{
		Transport: f.transport(target, opts.AllowInsecure),
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return client.Do(req)
}

func (f *Fetcher) transport(target *Target, insecure bool) *http.Transport {
	dialer := &net.Dialer{Timeout: f.dialTimeout}
	return &http.Transport{
		DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
			var errs []error
			for _, ap := range target.AddrPorts() {
				conn, err := dialer.DialContext(ctx, network, ap.String())
				if err == nil {
					return conn, nil
				}
				errs = append(errs, err)
			}
			return nil, errors.Join(errs...)
		},
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: insecure,
			MinVersion:         tls.VersionTLS12,
		},
		ForceAttemptHTTP2:  true,
		DisableCompression: true,
		DisableKeepAlives:  true,
	}
}

func (f *Fetcher) read(ctx context.Context, u *url.URL, resp *http.Response, redirects int, opts pageinfo.FetchOptions) (*pageinfo.HTTPInfo, error) {
	status := resp.StatusCode
	if (status < 200 || status > 299) && !(isRedirect(status) && !opts.FollowRedirects) {
		return nil, &pageinfo.StatusError{URL: u.String(), StatusCode: status}
	}

	contentEncoding := resp.Header.Get("Content-Encoding")
	if resp.ContentLength > opts.MaxBodySize && isIdentity(contentEncoding) {
		return nil, pageinfo.Errorf(pageinfo.ETOOLARGE, "response body exceeds %d bytes", opts.MaxBodySize)
	}

	body, closers, err := decodeBody(resp.Body, contentEncoding)
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	if err != nil {
		return nil, err
	}

	raw, err := readLimited(body, opts.MaxBodySize)
	if err != nil {
		if pageinfo.ErrorCode(err) == pageinfo.ETOOLARGE {
			return nil, err
		}
		return nil, classify(ctx, err, "failed to read body from %s", u.Redacted())
	}

	contentType := resp.Header.Get("Content-Type")
	text := toUTF8(raw, contentType)
	if int64(len(text)) > opts.MaxBodySize {
		return nil, pageinfo.Errorf(pageinfo.ETOOLARGE, "transcoded body exceeds %d bytes", opts.MaxBodySize)
	}

	return &pageinfo.HTTPInfo{
		URL:           u.String(),
		StatusCode:    status,
		Headers:       headerList(resp.Header),
		ContentType:   mediaType(contentType),
		RedirectCount: redirects,
		Body:          text,
	}, nil
}

func withDefaults(opts pageinfo.FetchOptions) pageinfo.FetchOptions {
	defaults := pageinfo.DefaultFetchOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = defaults.MaxBodySize
	}
	if opts.MaxRedirects < 0 {
		opts.MaxRedirects = 0
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.UserAgent
	}
	return opts
}

// classify maps a transport failure to ETIMEOUT when the aggregate
// deadline has passed, returns the caller's cancellation unchanged, and
// reports anything else as ETRANSPORT.
func classify(ctx context.Context, err error, format string, args ...any) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return pageinfo.Errorf(pageinfo.ETIMEOUT, "timed out: "+format, args...)
	case ctx.Err() != nil:
		return ctx.Err()
	}
	return pageinfo.Errorf(pageinfo.ETRANSPORT, format+": %v", append(args, err)...)
}

// withoutCredentials returns headers minus credentialHeaders.
func withoutCredentials(headers []pageinfo.Header) []pageinfo.Header {
	var out []pageinfo.Header
	for _, h := range headers {
		if !slices.ContainsFunc(credentialHeaders, func(name string) bool {
			return strings.EqualFold(name, h.Name)
		}) {
			out = append(out, h)
		}
	}
	return out
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func isIdentity(contentEncoding string) bool {
	ce := strings.ToLower(strings.TrimSpace(contentEncoding))
	return ce == "" || ce == "identity"
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
		return strings.ToLower(strings.TrimSpace(mt))
	}
	return mt
}

// headerList flattens h sorted by canonical name, keeping value order.
func headerList(h http.Header) []pageinfo.Header {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []pageinfo.Header
	for _, name := range names {
		for _, v := range h[name] {
			out = append(out, pageinfo.Header{Name: name, Value: v})
		}
	}
	return out
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}
