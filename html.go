package pageinfo

// HTMLInfo is the metadata extracted from a single HTML document.
// It owns all of its data and outlives the parsed document it came from.
// Empty string fields mean the value was absent from the document.
type HTMLInfo struct {
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	Language     string `json:"language,omitempty"`
	CanonicalURL string `json:"canonicalUrl,omitempty"`
	FeedURL      string `json:"feedUrl,omitempty"`

	// TextContent is the visible body text with whitespace collapsed,
	// truncated to MaxTextLength bytes.
	TextContent string `json:"textContent"`

	// Meta maps meta tag keys (property, name or http-equiv) to content.
	// Later duplicates overwrite earlier ones.
	Meta map[string]string `json:"meta"`

	OpenGraph OpenGraph   `json:"opengraph"`
	SchemaOrg []SchemaOrg `json:"schemaOrg"`
	Links     []Link      `json:"links"`
}

// Link is an anchor found in the document.
type Link struct {
	// URL is resolved against the base URL when possible, otherwise the raw href.
	URL  string `json:"url"`
	Text string `json:"text,omitempty"`
	Rel  string `json:"rel,omitempty"`
}

// Extractor extracts metadata from HTML documents.
type Extractor interface {
	// Extract parses html and returns its metadata. Relative links are
	// resolved against baseURL when it is a valid absolute URL; pass an
	// empty string when no base is known.
	// Malformed markup is tolerated; only a document that cannot be
	// tokenized at all yields an EPARSE error.
	Extract(html string, baseURL string) (*HTMLInfo, error)
}
