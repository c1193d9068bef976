package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/pageinfo"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Fetcher   pageinfo.HTTPFetcher
	Extractor pageinfo.Extractor
	Snapshots pageinfo.SnapshotService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool   `short:"v" env:"PAGEINFO_VERBOSE" help:"Log requests to stderr"`
	DB      string `name:"db" env:"PAGEINFO_DB" help:"Snapshot database path"`

	Parse   ParseCmd   `cmd:"" help:"Extract metadata from an HTML file or stdin"`
	Fetch   FetchCmd   `cmd:"" help:"Fetch URLs and extract their metadata"`
	History HistoryCmd `cmd:"" help:"List saved snapshots"`
	Version VersionCmd `cmd:"" help:"Print the version"`
}

// ParseCmd is the "parse" subcommand.
type ParseCmd struct {
	File string `arg:"" optional:"" default:"-" help:"HTML file, or - for stdin"`
	Base string `help:"Base URL for resolving relative links"`
}

// FetchCmd is the "fetch" subcommand.
type FetchCmd struct {
	URLs []string `arg:"" name:"url" help:"URLs to fetch"`

	Timeout         time.Duration `default:"30s" env:"PAGEINFO_TIMEOUT" help:"Limit for the whole fetch, redirects and body included"`
	MaxBodySize     int64         `default:"10485760" env:"PAGEINFO_MAX_BODY_SIZE" help:"Maximum decoded body size in bytes"`
	UserAgent       string        `env:"PAGEINFO_USER_AGENT" help:"User-Agent header"`
	MaxRedirects    int           `default:"10" help:"Maximum redirects to follow"`
	NoFollow        bool          `help:"Return redirect responses instead of following them"`
	AllowPrivateIPs bool          `env:"PAGEINFO_ALLOW_PRIVATE_IPS" help:"Allow loopback, private and link-local targets"`
	Insecure        bool          `help:"Skip TLS certificate verification"`
	Header          []string      `short:"H" help:"Extra request header as Name:Value (repeatable)"`
	Concurrency     int           `short:"c" default:"4" help:"Concurrent fetch limit"`
	Rate            float64       `default:"0" help:"Requests per second per host, 0 for unlimited"`
	IncludeBody     bool          `help:"Include the response body in output"`
	Save            bool          `help:"Store results in the snapshot database"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	URL   string `arg:"" optional:"" help:"Only show snapshots of this URL"`
	Limit int    `short:"n" default:"20" help:"Maximum snapshots to list"`
}

// VersionCmd is the "version" subcommand.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run(deps *Dependencies) error {
	_, err := io.WriteString(deps.Stdout, "pageinfo "+pageinfo.Version+"\n")
	return err
}
