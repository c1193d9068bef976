// Package slog provides logging decorators for pageinfo services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pageinfo"
)

// Ensure LoggingFetcher implements pageinfo.HTTPFetcher.
var _ pageinfo.HTTPFetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps an HTTPFetcher with logging.
type LoggingFetcher struct {
	next   pageinfo.HTTPFetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next pageinfo.HTTPFetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the transfer.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string, opts pageinfo.FetchOptions) (info *pageinfo.HTTPInfo, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", url,
			"duration", time.Since(begin),
		}
		if info != nil {
			attrs = append(attrs,
				"final_url", info.URL,
				"status", info.StatusCode,
				"redirects", info.RedirectCount,
				"bytes", len(info.Body),
			)
		}
		if err != nil {
			attrs = append(attrs, "code", pageinfo.ErrorCode(err), "err", err)
		}
		f.logger.Info("fetch", attrs...)
	}(time.Now())
	return f.next.Fetch(ctx, url, opts)
}
