package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pageinfo"
)

// feedTypes lists the link types accepted as a document feed.
var feedTypes = map[string]struct{}{
	"application/atom+xml": {},
	"application/rss+xml":  {},
	"application/json":     {},
	"application/xml":      {},
	"text/xml":             {},
}

// Ensure Extractor implements pageinfo.Extractor at compile time.
var _ pageinfo.Extractor = (*Extractor)(nil)

// Extractor extracts pageinfo.HTMLInfo from HTML. It holds no mutable state
// and may be shared across goroutines.
type Extractor struct {
	selectors *Selectors
}

// NewExtractor creates an Extractor backed by the shared DefaultSelectors.
func NewExtractor() *Extractor {
	return &Extractor{selectors: DefaultSelectors()}
}

// Extract parses html and returns its metadata. baseURL may be empty; an
// unparsable or relative base is ignored.
func (e *Extractor) Extract(html string, baseURL string) (*pageinfo.HTMLInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, pageinfo.Errorf(pageinfo.EPARSE, "failed to parse HTML: %v", err)
	}
	return e.ExtractDocument(doc, parseBase(baseURL)), nil
}

// ExtractDocument runs every extraction pass over an already parsed
// document. Passes are independent; each records what it can find.
func (e *Extractor) ExtractDocument(doc *goquery.Document, base *url.URL) *pageinfo.HTMLInfo {
	info := &pageinfo.HTMLInfo{
		Meta: make(map[string]string),
	}

	info.Title = e.title(doc)
	info.Language = e.language(doc)
	info.CanonicalURL = e.canonical(doc)
	info.FeedURL = e.feed(doc)
	e.meta(doc, info)
	info.SchemaOrg = e.schemaOrg(doc)
	info.Links = e.links(doc, base)
	info.TextContent = e.text(doc)

	return info
}

func (e *Extractor) title(doc *goquery.Document) string {
	return strings.TrimSpace(doc.FindMatcher(e.selectors.Title()).Text())
}

func (e *Extractor) language(doc *goquery.Document) string {
	lang, _ := doc.FindMatcher(e.selectors.HTML()).Attr("lang")
	return strings.TrimSpace(lang)
}

func (e *Extractor) canonical(doc *goquery.Document) string {
	href, _ := doc.FindMatcher(e.selectors.Canonical()).Attr("href")
	return strings.TrimSpace(href)
}

func (e *Extractor) feed(doc *goquery.Document) string {
	var feed string
	doc.FindMatcher(e.selectors.Alternate()).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		typ, _ := sel.Attr("type")
		if _, ok := feedTypes[strings.ToLower(strings.TrimSpace(typ))]; !ok {
			return true
		}
		href, _ := sel.Attr("href")
		feed = strings.TrimSpace(href)
		return false
	})
	return feed
}

// meta records every meta tag, the first description, and OpenGraph
// properties in document order.
func (e *Extractor) meta(doc *goquery.Document, info *pageinfo.HTMLInfo) {
	var og openGraphBuilder

	doc.FindMatcher(e.selectors.Meta()).Each(func(_ int, sel *goquery.Selection) {
		content, ok := sel.Attr("content")
		if !ok {
			if charset, ok := sel.Attr("charset"); ok {
				info.Meta["charset"] = strings.TrimSpace(charset)
			}
			return
		}
		content = strings.TrimSpace(content)

		key := metaKey(sel)
		if key == "" {
			return
		}
		info.Meta[key] = content

		if property, ok := strings.CutPrefix(key, "og:"); ok {
			og.add(property, content)
		}
		if info.Description == "" && strings.EqualFold(key, "description") {
			info.Description = content
		}
	})

	info.OpenGraph = og.og
}

func metaKey(sel *goquery.Selection) string {
	for _, attr := range [...]string{"property", "name", "http-equiv"} {
		if v, ok := sel.Attr(attr); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// schemaOrg collects JSON-LD items across all scripts until the cap.
// A script that fails to parse contributes nothing.
func (e *Extractor) schemaOrg(doc *goquery.Document) []pageinfo.SchemaOrg {
	var items []pageinfo.SchemaOrg
	doc.FindMatcher(e.selectors.JSONLD()).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		items = pageinfo.AppendSchemaOrg(items, []byte(sel.Text()), pageinfo.MaxSchemaOrgItems)
		return len(items) < pageinfo.MaxSchemaOrgItems
	})
	return items
}

// links records anchors in document order until the cap. Duplicates are kept.
func (e *Extractor) links(doc *goquery.Document, base *url.URL) []pageinfo.Link {
	var links []pageinfo.Link
	doc.FindMatcher(e.selectors.Anchor()).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || isJavaScriptLink(href) {
			return true
		}

		rel, _ := sel.Attr("rel")
		links = append(links, pageinfo.Link{
			URL:  resolveURL(base, href),
			Text: strings.TrimSpace(sel.Text()),
			Rel:  strings.TrimSpace(rel),
		})
		return len(links) < pageinfo.MaxLinks
	})
	return links
}

func (e *Extractor) text(doc *goquery.Document) string {
	root := doc.FindMatcher(e.selectors.Body())
	if root.Length() == 0 {
		root = doc.Selection
	}
	return visibleText(root.Get(0), pageinfo.MaxTextLength)
}

// parseBase returns the base URL for link resolution, or nil if s is not
// an absolute URL.
func parseBase(s string) *url.URL {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil
	}
	return u
}

// resolveURL resolves href against base. The raw href is returned when
// there is no base or href does not parse.
func resolveURL(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func isJavaScriptLink(href string) bool {
	return len(href) >= len("javascript:") && strings.EqualFold(href[:len("javascript:")], "javascript:")
}
