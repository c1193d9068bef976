package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pageinfo"
	"github.com/fwojciec/pageinfo/goquery"
	pageinfohttp "github.com/fwojciec/pageinfo/http"
	pislog "github.com/fwojciec/pageinfo/slog"
	"github.com/fwojciec/pageinfo/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path used when --db is not given. Set before calling Run().
	DBPath string

	// SQLite database, opened only by commands that need it.
	DB *sqlite.DB

	// Overrides for end-to-end testing. Nil fields are wired from the
	// command line.
	Fetcher   pageinfo.HTTPFetcher
	Snapshots pageinfo.SnapshotService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pageinfo"),
		kong.Description("Extract titles, OpenGraph, Schema.org data and links from web pages."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pageinfo --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger = newLogger(cli.Verbose, stderr)
	deps.Extractor = pislog.NewLoggingExtractor(goquery.NewExtractor(), deps.Logger)

	deps.Fetcher = m.Fetcher
	if deps.Fetcher == nil {
		var opts []pageinfohttp.Option
		if cli.Fetch.Rate > 0 {
			opts = append(opts, pageinfohttp.WithHostLimiter(pageinfohttp.NewHostLimiter(cli.Fetch.Rate)))
		}
		deps.Fetcher = pageinfohttp.NewFetcher(opts...)
	}
	deps.Fetcher = pislog.NewLoggingFetcher(deps.Fetcher, deps.Logger)

	command := kongCtx.Selected().Name
	if command == "history" || (command == "fetch" && cli.Fetch.Save) {
		snapshots, err := m.openSnapshots(ctx, cli.DB, stderr)
		if err != nil {
			return err
		}
		defer m.Close()
		deps.Snapshots = pislog.NewLoggingSnapshotService(snapshots, deps.Logger)
	}

	return kongCtx.Run(deps)
}

func (m *Main) openSnapshots(ctx context.Context, path string, stderr io.Writer) (pageinfo.SnapshotService, error) {
	if m.Snapshots != nil {
		return m.Snapshots, nil
	}
	if path == "" {
		path = m.DBPath
	}

	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(ctx); err != nil {
		fmt.Fprintf(stderr, "Hint: Set PAGEINFO_DB or --db to use a different database path\n")
		return nil, fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	return sqlite.NewSnapshotService(m.DB), nil
}

func newLogger(verbose bool, stderr io.Writer) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func defaultDBPath() string {
	if path := os.Getenv("PAGEINFO_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "pageinfo.db"
	}
	dir := filepath.Join(home, ".pageinfo")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "pageinfo.db")
}
