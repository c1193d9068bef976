package webpage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/pageinfo"
	"github.com/fwojciec/pageinfo/goquery"
	"github.com/fwojciec/pageinfo/mock"
	"github.com/fwojciec/pageinfo/webpage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head><title>My Page</title><meta property="og:title" content="OpenGraph Title"></head><body><a href="/about">About</a></body></html>`

func newClient(fetchFn func(ctx context.Context, url string, opts pageinfo.FetchOptions) (*pageinfo.HTTPInfo, error)) *webpage.Client {
	return webpage.NewClient(&mock.Fetcher{FetchFn: fetchFn}, goquery.NewExtractor())
}

func TestClient_Parse(t *testing.T) {
	t.Parallel()

	client := newClient(nil)

	info, err := client.Parse(samplePage, "https://example.com/")

	require.NoError(t, err)
	assert.Equal(t, "My Page", info.Title)
	assert.Equal(t, "OpenGraph Title", info.OpenGraph.Title)
	require.Len(t, info.Links, 1)
	assert.Equal(t, "https://example.com/about", info.Links[0].URL)
}

func TestClient_ParseReader(t *testing.T) {
	t.Parallel()

	t.Run("parses document from reader", func(t *testing.T) {
		t.Parallel()

		info, err := newClient(nil).ParseReader(strings.NewReader(samplePage), "")

		require.NoError(t, err)
		assert.Equal(t, "My Page", info.Title)
		require.Len(t, info.Links, 1)
		assert.Equal(t, "/about", info.Links[0].URL)
	})

	t.Run("rejects oversized documents", func(t *testing.T) {
		t.Parallel()

		big := strings.NewReader(strings.Repeat("a", int(pageinfo.DefaultMaxBodySize)+1))

		_, err := newClient(nil).ParseReader(big, "")

		assert.Equal(t, pageinfo.ETOOLARGE, pageinfo.ErrorCode(err))
	})
}

func TestClient_ParseFile(t *testing.T) {
	t.Parallel()

	t.Run("parses file contents", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "page.html")
		require.NoError(t, os.WriteFile(path, []byte(samplePage), 0o600))

		info, err := newClient(nil).ParseFile(path, "https://example.com/")

		require.NoError(t, err)
		assert.Equal(t, "My Page", info.Title)
	})

	t.Run("returns ENOTFOUND for missing file", func(t *testing.T) {
		t.Parallel()

		_, err := newClient(nil).ParseFile(filepath.Join(t.TempDir(), "missing.html"), "")

		assert.Equal(t, pageinfo.ENOTFOUND, pageinfo.ErrorCode(err))
	})
}

func TestClient_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("combines transfer and metadata", func(t *testing.T) {
		t.Parallel()

		var gotOpts pageinfo.FetchOptions
		client := newClient(func(_ context.Context, url string, opts pageinfo.FetchOptions) (*pageinfo.HTTPInfo, error) {
			gotOpts = opts
			return &pageinfo.HTTPInfo{
				URL:           "https://example.com/final/",
				StatusCode:    200,
				ContentType:   "text/html",
				RedirectCount: 1,
				Body:          `<title>Final</title><a href="next">Next</a>`,
			}, nil
		})
		opts := pageinfo.DefaultFetchOptions()
		opts.MaxRedirects = 2

		info, err := client.Fetch(context.Background(), "https://example.com/start", opts)

		require.NoError(t, err)
		assert.Equal(t, 2, gotOpts.MaxRedirects)
		assert.Equal(t, 200, info.HTTP.StatusCode)
		assert.Equal(t, 1, info.HTTP.RedirectCount)
		assert.Equal(t, "Final", info.HTML.Title)
		require.Len(t, info.HTML.Links, 1)
		assert.Equal(t, "https://example.com/final/next", info.HTML.Links[0].URL)
	})

	t.Run("returns fetch errors unchanged", func(t *testing.T) {
		t.Parallel()

		blocked := pageinfo.Errorf(pageinfo.EBLOCKED, "host %q is internal", "metadata.google.internal")
		client := newClient(func(_ context.Context, _ string, _ pageinfo.FetchOptions) (*pageinfo.HTTPInfo, error) {
			return nil, blocked
		})

		_, err := client.Fetch(context.Background(), "http://metadata.google.internal/", pageinfo.DefaultFetchOptions())

		assert.Same(t, blocked, err)
	})

	t.Run("rejects non-markup content", func(t *testing.T) {
		t.Parallel()

		client := newClient(func(_ context.Context, url string, _ pageinfo.FetchOptions) (*pageinfo.HTTPInfo, error) {
			return &pageinfo.HTTPInfo{URL: url, StatusCode: 200, ContentType: "image/png", Body: "\x89PNG"}, nil
		})

		_, err := client.Fetch(context.Background(), "https://example.com/logo.png", pageinfo.DefaultFetchOptions())

		assert.Equal(t, pageinfo.EINVALID, pageinfo.ErrorCode(err))
	})

	t.Run("returns extraction errors", func(t *testing.T) {
		t.Parallel()

		parseErr := pageinfo.Errorf(pageinfo.EPARSE, "failed to parse HTML")
		client := webpage.NewClient(
			&mock.Fetcher{FetchFn: func(_ context.Context, url string, _ pageinfo.FetchOptions) (*pageinfo.HTTPInfo, error) {
				return &pageinfo.HTTPInfo{URL: url, StatusCode: 200, ContentType: "text/html"}, nil
			}},
			&mock.Extractor{ExtractFn: func(_ string, _ string) (*pageinfo.HTMLInfo, error) {
				return nil, parseErr
			}},
		)

		_, err := client.Fetch(context.Background(), "https://example.com/", pageinfo.DefaultFetchOptions())

		assert.True(t, errors.Is(err, parseErr))
	})
}

func TestIsMarkup(t *testing.T) {
	t.Parallel()

	assert.True(t, webpage.IsMarkup(""))
	assert.True(t, webpage.IsMarkup("text/html"))
	assert.True(t, webpage.IsMarkup("application/xhtml+xml"))
	assert.True(t, webpage.IsMarkup("TEXT/XML"))
	assert.False(t, webpage.IsMarkup("application/json"))
	assert.False(t, webpage.IsMarkup("image/png"))
}
