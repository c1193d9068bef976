// Package webpage combines fetching and extraction into the two public
// entry points: parsing HTML already at hand, and fetching then parsing a URL.
package webpage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/fwojciec/pageinfo"
)

// Client runs the fetch and extraction stages. Both collaborators must be
// safe for concurrent use; Client adds no state of its own.
type Client struct {
	Fetcher   pageinfo.HTTPFetcher
	Extractor pageinfo.Extractor
}

// NewClient creates a new Client.
func NewClient(fetcher pageinfo.HTTPFetcher, extractor pageinfo.Extractor) *Client {
	return &Client{
		Fetcher:   fetcher,
		Extractor: extractor,
	}
}

// Parse extracts metadata from html. baseURL is optional.
func (c *Client) Parse(html string, baseURL string) (*pageinfo.HTMLInfo, error) {
	return c.Extractor.Extract(html, baseURL)
}

// ParseReader reads a document from r and extracts its metadata. Documents
// larger than pageinfo.DefaultMaxBodySize fail with ETOOLARGE.
func (c *Client) ParseReader(r io.Reader, baseURL string) (*pageinfo.HTMLInfo, error) {
	body, err := io.ReadAll(io.LimitReader(r, pageinfo.DefaultMaxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > pageinfo.DefaultMaxBodySize {
		return nil, pageinfo.Errorf(pageinfo.ETOOLARGE, "document exceeds %d bytes", pageinfo.DefaultMaxBodySize)
	}
	return c.Parse(string(body), baseURL)
}

// ParseFile reads the document at path and extracts its metadata.
func (c *Client) ParseFile(path string, baseURL string) (*pageinfo.HTMLInfo, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, pageinfo.Errorf(pageinfo.ENOTFOUND, "file not found: %s", path)
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	return c.ParseReader(f, baseURL)
}

// Fetch retrieves url and extracts metadata from the response body, using
// the final URL after redirects as the base for link resolution. The first
// error from either stage is returned.
func (c *Client) Fetch(ctx context.Context, url string, opts pageinfo.FetchOptions) (*pageinfo.WebpageInfo, error) {
	resp, err := c.Fetcher.Fetch(ctx, url, opts)
	if err != nil {
		return nil, err
	}

	if !IsMarkup(resp.ContentType) {
		return nil, pageinfo.Errorf(pageinfo.EINVALID, "unsupported content type %q for %s", resp.ContentType, resp.URL)
	}

	info, err := c.Extractor.Extract(resp.Body, resp.URL)
	if err != nil {
		return nil, err
	}

	return &pageinfo.WebpageInfo{
		HTTP: *resp,
		HTML: *info,
	}, nil
}

// IsMarkup reports whether contentType may hold an HTML document. An
// absent content type is accepted.
func IsMarkup(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "html") || strings.Contains(ct, "xml")
}
