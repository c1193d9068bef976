package goquery_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/pageinfo"
	"github.com/fwojciec/pageinfo/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title, OpenGraph title and resolved link", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title>My Page</title><meta property="og:title" content="OpenGraph Title"></head><body><a href="/about">About</a></body></html>`

		info, err := goquery.NewExtractor().Extract(html, "https://example.com/")

		require.NoError(t, err)
		assert.Equal(t, "My Page", info.Title)
		assert.Equal(t, "OpenGraph Title", info.OpenGraph.Title)
		require.Len(t, info.Links, 1)
		assert.Equal(t, "https://example.com/about", info.Links[0].URL)
		assert.Equal(t, "About", info.Links[0].Text)
	})

	t.Run("extracts document level metadata", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html lang="en">
<head>
	<title>  Test Page  </title>
	<meta name="description" content="A test page">
	<meta name="description" content="A second description">
	<meta property="og:type" content="article">
	<link rel="canonical" href="https://example.com/test">
	<link rel="alternate" type="text/html" href="/other-language">
	<link rel="alternate" type="application/rss+xml" href="/feed.xml">
</head>
<body><p>Hello World</p></body>
</html>`

		info, err := goquery.NewExtractor().Extract(html, "https://example.com/")

		require.NoError(t, err)
		assert.Equal(t, "Test Page", info.Title)
		assert.Equal(t, "A test page", info.Description)
		assert.Equal(t, "en", info.Language)
		assert.Equal(t, "https://example.com/test", info.CanonicalURL)
		assert.Equal(t, "/feed.xml", info.FeedURL)
		assert.Equal(t, "article", info.OpenGraph.Type)
		assert.Equal(t, "Hello World", info.TextContent)
	})

	t.Run("absent values stay empty without error", func(t *testing.T) {
		t.Parallel()

		info, err := goquery.NewExtractor().Extract("<p>just text", "")

		require.NoError(t, err)
		assert.Empty(t, info.Title)
		assert.Empty(t, info.Description)
		assert.Empty(t, info.Language)
		assert.Empty(t, info.CanonicalURL)
		assert.Empty(t, info.FeedURL)
		assert.Empty(t, info.Links)
		assert.Empty(t, info.SchemaOrg)
		assert.True(t, info.OpenGraph.IsEmpty())
		assert.Equal(t, "just text", info.TextContent)
	})

	t.Run("meta mapping keeps the last duplicate and records charset", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
<meta charset="utf-8">
<meta name="robots" content="index">
<meta name="robots" content="noindex">
<meta http-equiv="refresh" content="30">
<meta name="empty">
</head></html>`

		info, err := goquery.NewExtractor().Extract(html, "")

		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"charset": "utf-8",
			"robots":  "noindex",
			"refresh": "30",
		}, info.Meta)
	})

	t.Run("tolerates malformed markup", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title>Broken</title><body><div><p>unclosed <b>tags<a href="x">link`

		info, err := goquery.NewExtractor().Extract(html, "https://example.com/dir/page")

		require.NoError(t, err)
		require.Len(t, info.Links, 1)
		assert.Equal(t, "https://example.com/dir/x", info.Links[0].URL)
	})

	t.Run("info does not alias the input", func(t *testing.T) {
		t.Parallel()

		buf := []byte(`<html><head><title>Owned</title></head></html>`)
		info, err := goquery.NewExtractor().Extract(string(buf), "")
		require.NoError(t, err)

		for i := range buf {
			buf[i] = 'x'
		}

		assert.Equal(t, "Owned", info.Title)
	})
}

func TestExtractor_Links(t *testing.T) {
	t.Parallel()

	t.Run("resolves path and scheme relative hrefs", func(t *testing.T) {
		t.Parallel()

		html := `<body>
<a href="/about">About</a>
<a href="team">Team</a>
<a href="//cdn.example.org/x.js">CDN</a>
<a href="https://other.example/">Other</a>
</body>`

		info, err := goquery.NewExtractor().Extract(html, "https://example.com/company/")

		require.NoError(t, err)
		require.Len(t, info.Links, 4)
		assert.Equal(t, "https://example.com/about", info.Links[0].URL)
		assert.Equal(t, "https://example.com/company/team", info.Links[1].URL)
		assert.Equal(t, "https://cdn.example.org/x.js", info.Links[2].URL)
		assert.Equal(t, "https://other.example/", info.Links[3].URL)
	})

	t.Run("keeps raw href without a base", func(t *testing.T) {
		t.Parallel()

		info, err := goquery.NewExtractor().Extract(`<a href="/about">About</a>`, "")

		require.NoError(t, err)
		require.Len(t, info.Links, 1)
		assert.Equal(t, "/about", info.Links[0].URL)
	})

	t.Run("keeps raw href when it cannot be parsed", func(t *testing.T) {
		t.Parallel()

		info, err := goquery.NewExtractor().Extract(`<a href="http://[::1">Bad</a>`, "https://example.com/")

		require.NoError(t, err)
		require.Len(t, info.Links, 1)
		assert.Equal(t, "http://[::1", info.Links[0].URL)
	})

	t.Run("ignores relative base URL", func(t *testing.T) {
		t.Parallel()

		info, err := goquery.NewExtractor().Extract(`<a href="/about">About</a>`, "/not/absolute")

		require.NoError(t, err)
		require.Len(t, info.Links, 1)
		assert.Equal(t, "/about", info.Links[0].URL)
	})

	t.Run("skips empty and javascript hrefs and captures rel", func(t *testing.T) {
		t.Parallel()

		html := `<body>
<a href="">Empty</a>
<a href="JavaScript:void(0)">JS</a>
<a href="/next" rel="next">Next</a>
</body>`

		info, err := goquery.NewExtractor().Extract(html, "https://example.com/")

		require.NoError(t, err)
		require.Len(t, info.Links, 1)
		assert.Equal(t, pageinfo.Link{URL: "https://example.com/next", Text: "Next", Rel: "next"}, info.Links[0])
	})

	t.Run("keeps duplicate links", func(t *testing.T) {
		t.Parallel()

		html := `<a href="/a">One</a><a href="/a">Two</a>`

		info, err := goquery.NewExtractor().Extract(html, "https://example.com/")

		require.NoError(t, err)
		require.Len(t, info.Links, 2)
		assert.Equal(t, "One", info.Links[0].Text)
		assert.Equal(t, "Two", info.Links[1].Text)
	})

	t.Run("stops at the link cap in document order", func(t *testing.T) {
		t.Parallel()

		var b strings.Builder
		b.WriteString("<html><body>")
		for i := 0; i < pageinfo.MaxLinks+50; i++ {
			fmt.Fprintf(&b, `<a href="/p/%d">%d</a>`, i, i)
		}
		b.WriteString("</body></html>")

		info, err := goquery.NewExtractor().Extract(b.String(), "https://example.com/")

		require.NoError(t, err)
		require.Len(t, info.Links, pageinfo.MaxLinks)
		assert.Equal(t, "https://example.com/p/0", info.Links[0].URL)
		last := pageinfo.MaxLinks - 1
		assert.Equal(t, fmt.Sprintf("https://example.com/p/%d", last), info.Links[last].URL)
	})
}

func TestExtractor_OpenGraph(t *testing.T) {
	t.Parallel()

	t.Run("maps scalar properties and locale alternates", func(t *testing.T) {
		t.Parallel()

		html := `<head>
<meta property="og:type" content="video.movie">
<meta property="og:title" content="The Rock">
<meta property="og:description" content="A movie">
<meta property="og:url" content="https://example.com/rock">
<meta property="og:site_name" content="IMDb">
<meta property="og:locale" content="en_US">
<meta property="og:locale:alternate" content="fr_FR">
<meta property="og:locale:alternate" content="es_ES">
<meta property="og:determiner" content="the">
</head>`

		info, err := goquery.NewExtractor().Extract(html, "")

		require.NoError(t, err)
		og := info.OpenGraph
		assert.Equal(t, "video.movie", og.Type)
		assert.Equal(t, "The Rock", og.Title)
		assert.Equal(t, "A movie", og.Description)
		assert.Equal(t, "https://example.com/rock", og.URL)
		assert.Equal(t, "IMDb", og.SiteName)
		assert.Equal(t, "en_US", og.Locale)
		assert.Equal(t, []string{"fr_FR", "es_ES"}, og.LocaleAlternates)
		assert.Equal(t, map[string]string{"determiner": "the"}, og.Properties)
	})

	t.Run("attaches modifiers to the most recent media item", func(t *testing.T) {
		t.Parallel()

		html := `<head>
<meta property="og:image" content="https://example.com/1.png">
<meta property="og:image:secure_url" content="https://secure.example.com/1.png">
<meta property="og:image:width" content="100">
<meta property="og:image:type" content="image/png">
<meta property="og:image:url" content="https://example.com/2.png">
<meta property="og:image:width" content="200">
<meta property="og:image:height" content="150">
<meta property="og:image:alt" content="Second">
<meta property="og:image:user_generated" content="true">
<meta property="og:video" content="https://example.com/v.mp4">
<meta property="og:video:width" content="640">
<meta property="og:audio" content="https://example.com/a.mp3">
<meta property="og:audio:type" content="audio/mpeg">
</head>`

		info, err := goquery.NewExtractor().Extract(html, "")

		require.NoError(t, err)
		og := info.OpenGraph
		require.Len(t, og.Images, 2)
		assert.Equal(t, pageinfo.OpenGraphMedia{
			URL:       "https://example.com/1.png",
			SecureURL: "https://secure.example.com/1.png",
			Width:     100,
			MIMEType:  "image/png",
		}, og.Images[0])
		assert.Equal(t, pageinfo.OpenGraphMedia{
			URL:        "https://example.com/2.png",
			Width:      200,
			Height:     150,
			Alt:        "Second",
			Properties: map[string]string{"user_generated": "true"},
		}, og.Images[1])
		require.Len(t, og.Videos, 1)
		assert.Equal(t, 640, og.Videos[0].Width)
		require.Len(t, og.Audios, 1)
		assert.Equal(t, "audio/mpeg", og.Audios[0].MIMEType)
	})

	t.Run("discards modifiers preceding any media item", func(t *testing.T) {
		t.Parallel()

		html := `<head>
<meta property="og:image:width" content="300">
<meta property="og:image:alt" content="orphan">
<meta property="og:video:height" content="480">
<meta property="og:image" content="https://example.com/1.png">
</head>`

		info, err := goquery.NewExtractor().Extract(html, "")

		require.NoError(t, err)
		require.Len(t, info.OpenGraph.Images, 1)
		assert.Equal(t, pageinfo.OpenGraphMedia{URL: "https://example.com/1.png"}, info.OpenGraph.Images[0])
		assert.Empty(t, info.OpenGraph.Videos)
	})

	t.Run("ignores unparsable dimensions", func(t *testing.T) {
		t.Parallel()

		html := `<meta property="og:image" content="a.png"><meta property="og:image:width" content="wide"><meta property="og:image:height" content="-5">`

		info, err := goquery.NewExtractor().Extract(html, "")

		require.NoError(t, err)
		require.Len(t, info.OpenGraph.Images, 1)
		assert.Zero(t, info.OpenGraph.Images[0].Width)
		assert.Zero(t, info.OpenGraph.Images[0].Height)
	})

	t.Run("stops opening media items at the cap", func(t *testing.T) {
		t.Parallel()

		var b strings.Builder
		b.WriteString("<head>")
		for i := 0; i < pageinfo.MaxMediaItems+5; i++ {
			fmt.Fprintf(&b, `<meta property="og:image" content="https://example.com/%d.png">`, i)
			fmt.Fprintf(&b, `<meta property="og:image:width" content="%d">`, i+1)
		}
		b.WriteString("</head>")

		info, err := goquery.NewExtractor().Extract(b.String(), "")

		require.NoError(t, err)
		images := info.OpenGraph.Images
		require.Len(t, images, pageinfo.MaxMediaItems)
		last := images[pageinfo.MaxMediaItems-1]
		assert.Equal(t, fmt.Sprintf("https://example.com/%d.png", pageinfo.MaxMediaItems-1), last.URL)
		// Modifiers of refused items must not overwrite the last accepted one.
		assert.Equal(t, pageinfo.MaxMediaItems, last.Width)
	})
}

func TestExtractor_SchemaOrg(t *testing.T) {
	t.Parallel()

	t.Run("extracts a single object", func(t *testing.T) {
		t.Parallel()

		html := `<script type="application/ld+json">{"@type": "Article", "headline": "Test Article"}</script>`

		info, err := goquery.NewExtractor().Extract(html, "")

		require.NoError(t, err)
		require.Len(t, info.SchemaOrg, 1)
		assert.Equal(t, "Article", info.SchemaOrg[0].Type)
		headline, ok := info.SchemaOrg[0].GetString("headline")
		assert.True(t, ok)
		assert.Equal(t, "Test Article", headline)
	})

	t.Run("expands graph preserving order", func(t *testing.T) {
		t.Parallel()

		html := `<script type="application/ld+json">
{"@context": "https://schema.org", "@graph": [
	{"@type": "Organization", "name": "Example"},
	{"@type": "WebSite", "url": "https://example.org"},
	{"@type": "WebPage"}
]}
</script>`

		info, err := goquery.NewExtractor().Extract(html, "")

		require.NoError(t, err)
		require.Len(t, info.SchemaOrg, 3)
		assert.Equal(t, "Organization", info.SchemaOrg[0].Type)
		assert.Equal(t, "WebSite", info.SchemaOrg[1].Type)
		assert.Equal(t, "WebPage", info.SchemaOrg[2].Type)
	})

	t.Run("skips invalid scripts without affecting others", func(t *testing.T) {
		t.Parallel()

		html := `
<script type="application/ld+json">{not json</script>
<script type="application/ld+json">[{"@type": "Product"}, "junk", {"name": "untyped"}]</script>
<script type="text/javascript">{"@type": "Ignored"}</script>`

		info, err := goquery.NewExtractor().Extract(html, "")

		require.NoError(t, err)
		require.Len(t, info.SchemaOrg, 2)
		assert.Equal(t, "Product", info.SchemaOrg[0].Type)
		assert.Empty(t, info.SchemaOrg[1].Type)
		name, ok := info.SchemaOrg[1].GetString("name")
		assert.True(t, ok)
		assert.Equal(t, "untyped", name)
	})

	t.Run("applies the item cap across scripts", func(t *testing.T) {
		t.Parallel()

		var items []string
		for i := 0; i < 60; i++ {
			items = append(items, fmt.Sprintf(`{"@type": "Thing", "position": %d}`, i))
		}
		script := `<script type="application/ld+json">[` + strings.Join(items, ",") + `]</script>`
		html := script + script + script

		info, err := goquery.NewExtractor().Extract(html, "")

		require.NoError(t, err)
		require.Len(t, info.SchemaOrg, pageinfo.MaxSchemaOrgItems)
		pos, ok := info.SchemaOrg[pageinfo.MaxSchemaOrgItems-1].GetInt("position")
		assert.True(t, ok)
		assert.Equal(t, int64(pageinfo.MaxSchemaOrgItems-1-60), pos)
	})
}

func TestExtractor_Text(t *testing.T) {
	t.Parallel()

	t.Run("excludes scripts and styles", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<p>Visible text</p>
<script>console.log('hidden');</script>
<style>.hidden { display: none; }</style>
<noscript>Enable JS</noscript>
<p>More   visible</p>
</body></html>`

		info, err := goquery.NewExtractor().Extract(html, "")

		require.NoError(t, err)
		assert.Equal(t, "Visible text More visible", info.TextContent)
	})

	t.Run("ignores head content", func(t *testing.T) {
		t.Parallel()

		info, err := goquery.NewExtractor().Extract(`<html><head><title>T</title></head><body>B</body></html>`, "")

		require.NoError(t, err)
		assert.Equal(t, "B", info.TextContent)
	})

	t.Run("truncates to the text cap", func(t *testing.T) {
		t.Parallel()

		word := strings.Repeat("a", 998)
		var b strings.Builder
		b.WriteString("<body>")
		for i := 0; i < 1100; i++ {
			b.WriteString("<p>" + word + "</p>")
		}
		b.WriteString("</body>")

		info, err := goquery.NewExtractor().Extract(b.String(), "")

		require.NoError(t, err)
		assert.Len(t, info.TextContent, pageinfo.MaxTextLength)
		assert.True(t, strings.HasPrefix(info.TextContent, word+" "+word))
	})

	t.Run("omits the separator when the next character does not fit", func(t *testing.T) {
		t.Parallel()

		head := strings.Repeat("a", pageinfo.MaxTextLength-2)
		html := "<body><p>" + head + "</p><p>é</p></body>"

		info, err := goquery.NewExtractor().Extract(html, "")

		require.NoError(t, err)
		assert.Equal(t, head, info.TextContent)
	})

	t.Run("does not split multi-byte characters at the cap", func(t *testing.T) {
		t.Parallel()

		var b strings.Builder
		b.WriteString("<body><p>")
		for b.Len() < pageinfo.MaxTextLength+100 {
			b.WriteString("é")
		}
		b.WriteString("</p></body>")

		info, err := goquery.NewExtractor().Extract(b.String(), "")

		require.NoError(t, err)
		assert.LessOrEqual(t, len(info.TextContent), pageinfo.MaxTextLength)
		assert.True(t, strings.HasSuffix(info.TextContent, "é"))
	})
}

func TestDefaultSelectors(t *testing.T) {
	t.Parallel()

	t.Run("concurrent first use converges on one instance", func(t *testing.T) {
		t.Parallel()

		var wg sync.WaitGroup
		results := make([]*goquery.Selectors, 16)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = goquery.DefaultSelectors()
			}(i)
		}
		wg.Wait()

		for _, s := range results {
			assert.Same(t, results[0], s)
		}
	})

	t.Run("extractors share the selector set", func(t *testing.T) {
		t.Parallel()

		var wg sync.WaitGroup
		extractor := goquery.NewExtractor()
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				info, err := extractor.Extract(fmt.Sprintf("<title>page %d</title>", i), "")
				assert.NoError(t, err)
				assert.Equal(t, fmt.Sprintf("page %d", i), info.Title)
			}(i)
		}
		wg.Wait()
	})
}
