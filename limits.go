package pageinfo

import "time"

// Resource limits applied by every bounded accumulation. Reaching a limit is
// never an error: the affected collection or string simply stops growing.
const (
	// MaxLinks caps HTMLInfo.Links.
	MaxLinks = 10_000

	// MaxSchemaOrgItems caps HTMLInfo.SchemaOrg across all JSON-LD scripts.
	MaxSchemaOrgItems = 100

	// MaxTextLength caps HTMLInfo.TextContent, in bytes.
	MaxTextLength = 1_000_000

	// MaxMediaItems caps each OpenGraph media list (images, videos, audios).
	MaxMediaItems = 100
)

// Fetch defaults.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxBodySize  = 10 * 1024 * 1024
	DefaultMaxRedirects = 10
)
