package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/pageinfo"
)

// Ensure LoggingExtractor implements pageinfo.Extractor.
var _ pageinfo.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with debug logging.
type LoggingExtractor struct {
	next   pageinfo.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next pageinfo.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs result sizes.
func (e *LoggingExtractor) Extract(html string, baseURL string) (info *pageinfo.HTMLInfo, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"base_url", baseURL,
			"bytes", len(html),
			"duration", time.Since(begin),
		}
		if info != nil {
			attrs = append(attrs,
				"links", len(info.Links),
				"schema_items", len(info.SchemaOrg),
				"text_bytes", len(info.TextContent),
			)
		}
		if err != nil {
			attrs = append(attrs, "err", err)
		}
		e.logger.Debug("extract", attrs...)
	}(time.Now())
	return e.next.Extract(html, baseURL)
}
