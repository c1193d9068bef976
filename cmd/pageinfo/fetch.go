package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/pageinfo"
	"github.com/fwojciec/pageinfo/webpage"
	"golang.org/x/sync/errgroup"
)

// fetchResult is one entry of the fetch command output.
type fetchResult struct {
	URL        string                `json:"url"`
	Info       *pageinfo.WebpageInfo `json:"info,omitempty"`
	SnapshotID string                `json:"snapshotId,omitempty"`
	Error      *resultError          `json:"error,omitempty"`
}

type resultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Options converts the command flags to fetch options.
func (c *FetchCmd) Options() (pageinfo.FetchOptions, error) {
	opts := pageinfo.DefaultFetchOptions()
	opts.Timeout = c.Timeout
	opts.MaxBodySize = c.MaxBodySize
	opts.MaxRedirects = c.MaxRedirects
	opts.FollowRedirects = !c.NoFollow
	opts.BlockPrivateIPs = !c.AllowPrivateIPs
	opts.AllowInsecure = c.Insecure
	if c.UserAgent != "" {
		opts.UserAgent = c.UserAgent
	}

	for _, h := range c.Header {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return pageinfo.FetchOptions{}, pageinfo.Errorf(pageinfo.EINVALID, "invalid header %q, expected Name:Value", h)
		}
		opts.Headers = append(opts.Headers, pageinfo.Header{Name: name, Value: strings.TrimSpace(value)})
	}

	return opts, nil
}

// Run executes the fetch command. Every URL is reported; the command fails
// if any of them did.
func (c *FetchCmd) Run(deps *Dependencies) error {
	opts, err := c.Options()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pageinfo.ErrorMessage(err))
		return err
	}

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	client := webpage.NewClient(deps.Fetcher, deps.Extractor)
	results := make([]fetchResult, len(c.URLs))

	g, gctx := errgroup.WithContext(deps.Ctx)
	g.SetLimit(concurrency)
	for i, url := range c.URLs {
		g.Go(func() error {
			results[i] = c.fetchOne(gctx, deps, client, url, opts)
			return nil
		})
	}
	_ = g.Wait()

	if err := writeJSON(deps, results); err != nil {
		return err
	}

	var failed int
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d fetches failed", failed, len(results))
	}
	return nil
}

func (c *FetchCmd) fetchOne(ctx context.Context, deps *Dependencies, client *webpage.Client, url string, opts pageinfo.FetchOptions) fetchResult {
	result := fetchResult{URL: url}

	info, err := client.Fetch(ctx, url, opts)
	if err != nil {
		result.Error = newResultError(err)
		return result
	}

	if c.Save && deps.Snapshots != nil {
		snapshot := pageinfo.NewSnapshot(url, info)
		if err := deps.Snapshots.CreateSnapshot(ctx, snapshot); err != nil {
			result.Error = newResultError(err)
			return result
		}
		result.SnapshotID = snapshot.ID
	}

	if !c.IncludeBody {
		info.HTTP.Body = ""
	}
	result.Info = info
	return result
}

func newResultError(err error) *resultError {
	code := pageinfo.ErrorCode(err)
	msg := pageinfo.ErrorMessage(err)
	if code == pageinfo.EINTERNAL {
		msg = err.Error()
	}
	return &resultError{Code: code, Message: msg}
}
