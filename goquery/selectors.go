// Package goquery implements pageinfo.Extractor on top of goquery and
// pre-compiled cascadia selectors.
package goquery

import (
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Selectors holds the compiled queries used during extraction.
// A Selectors value is never modified after construction and is safe for
// concurrent use by any number of extractions.
type Selectors struct {
	title     goquery.Matcher
	html      goquery.Matcher
	body      goquery.Matcher
	meta      goquery.Matcher
	canonical goquery.Matcher
	alternate goquery.Matcher
	anchor    goquery.Matcher
	jsonLD    goquery.Matcher
}

var defaultSelectors = sync.OnceValue(newSelectors)

// DefaultSelectors returns the process-wide selector set, compiling it on
// first use. Concurrent first callers all observe the same instance.
func DefaultSelectors() *Selectors {
	return defaultSelectors()
}

func newSelectors() *Selectors {
	return &Selectors{
		title:     goquery.SingleMatcher(cascadia.MustCompile("title")),
		html:      goquery.SingleMatcher(cascadia.MustCompile("html")),
		body:      goquery.SingleMatcher(cascadia.MustCompile("body")),
		meta:      cascadia.MustCompile("meta"),
		canonical: goquery.SingleMatcher(cascadia.MustCompile(`link[rel~="canonical"]`)),
		alternate: cascadia.MustCompile(`link[rel~="alternate"]`),
		anchor:    cascadia.MustCompile("a[href]"),
		jsonLD:    cascadia.MustCompile(`script[type="application/ld+json"]`),
	}
}

// Title matches the first <title> element.
func (s *Selectors) Title() goquery.Matcher { return s.title }

// HTML matches the root <html> element.
func (s *Selectors) HTML() goquery.Matcher { return s.html }

// Body matches the <body> element.
func (s *Selectors) Body() goquery.Matcher { return s.body }

// Meta matches every <meta> element.
func (s *Selectors) Meta() goquery.Matcher { return s.meta }

// Canonical matches the first <link rel="canonical">.
func (s *Selectors) Canonical() goquery.Matcher { return s.canonical }

// Alternate matches every <link rel="alternate">.
func (s *Selectors) Alternate() goquery.Matcher { return s.alternate }

// Anchor matches every <a> carrying an href.
func (s *Selectors) Anchor() goquery.Matcher { return s.anchor }

// JSONLD matches every <script type="application/ld+json">.
func (s *Selectors) JSONLD() goquery.Matcher { return s.jsonLD }
