package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/artdex"
	"github.com/fwojciec/artdex/badger"
	"github.com/fwojciec/artdex/firecrawl"
	"github.com/fwojciec/artdex/fs"
	"github.com/fwojciec/artdex/gemini"
	"github.com/fwojciec/artdex/goquery"
	"github.com/fwojciec/artdex/htmltomarkdown"
	artdexhttp "github.com/fwojciec/artdex/http"
	"github.com/fwojciec/artdex/rod"
	"github.com/fwojciec/artdex/scrape"
	artdexslog "github.com/fwojciec/artdex/slog"
	"github.com/fwojciec/artdex/sqlite"
	"github.com/fwojciec/artdex/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Cache path. Set before calling Run().
	CachePath string

	// Cache store opened by Run. Exposed for end-to-end testing.
	Cache artdex.CacheStore
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		CachePath: defaultCachePath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Cache != nil {
		return m.Cache.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("artdex"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'artdex --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	// Open the cache store
	if cli.Cache != "" {
		m.CachePath = cli.Cache
	}
	if err := m.openCache(cli.Backend, stderr); err != nil {
		return err
	}
	defer m.Close()
	deps.Cache = m.Cache

	var logger *slog.Logger
	if cli.Verbose {
		logger = slog.New(slog.NewTextHandler(stderr, nil))
		deps.Cache = artdexslog.NewLoggingCacheStore(m.Cache, logger)
	}

	// Wire command-specific dependencies based on command
	if cmd == "scrape" {
		var fetcher artdex.Fetcher
		if cli.Scrape.Render {
			f, err := rod.NewFetcher(rod.WithScrollPasses(cli.Scrape.ScrollPasses))
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			fetcher = f
		} else {
			fetcher = artdexhttp.NewFetcher()
		}
		if logger != nil {
			fetcher = artdexslog.NewLoggingFetcher(fetcher, logger)
		}
		defer fetcher.Close()

		extractor, err := m.openExtractor(ctx, cli, fetcher, stderr)
		if err != nil {
			return err
		}
		if logger != nil {
			extractor = artdexslog.NewLoggingExtractor(extractor, logger)
		}

		validator := &artdex.Validator{}
		if cli.Scrape.KnownTitles != "" {
			data, err := os.ReadFile(cli.Scrape.KnownTitles)
			if err != nil {
				return fmt.Errorf("failed to read known titles file: %w", err)
			}
			titles, err := artdex.ParseKnownTitles(data)
			if err != nil {
				return fmt.Errorf("failed to parse known titles file: %w", err)
			}
			validator.KnownTitles = titles
		}

		deps.Pipeline = &scrape.Pipeline{
			Cache:       deps.Cache,
			Fetcher:     fetcher,
			Parser:      goquery.NewParser(goquery.WithTitleFallback(trafilatura.NewExtractor())),
			Extractor:   extractor,
			Validator:   validator,
			Limiter:     scrape.NewLimiter(cli.Scrape.Rate),
			Concurrency: cli.Scrape.Concurrency,
		}
		deps.Discoverer = newDiscoverer(deps.Cache, fetcher, logger)
		deps.Reports = fs.NewWriter(cli.Scrape.ReportDir)
	}

	if cmd == "preview" {
		fetcher := artdex.Fetcher(artdexhttp.NewFetcher())
		if logger != nil {
			fetcher = artdexslog.NewLoggingFetcher(fetcher, logger)
		}
		defer fetcher.Close()

		deps.Discoverer = newDiscoverer(deps.Cache, fetcher, logger)
	}

	if cmd == "report" {
		deps.Reports = fs.NewWriter(cli.Report.Dir)
		// The token count on the summary line is advisory. A missing
		// tokenizer vocabulary must not fail an otherwise local command.
		if tc, err := gemini.NewTokenCounter(tokenizerModel); err == nil {
			deps.Tokens = tc
		}
	}

	if cmd == "images" {
		deps.Images = fs.NewDownloader(cli.Images.Dir,
			fs.WithDownloadConcurrency(cli.Images.Concurrency))
	}

	return kongCtx.Run(deps)
}

// tokenizerModel names the model whose local tokenizer vocabulary
// sizes catalog output. It matches the extraction model.
const tokenizerModel = "gemini-2.5-flash"

// openCache opens the cache store named by backend at m.CachePath.
func (m *Main) openCache(backend string, stderr io.Writer) error {
	if backend == "badger" {
		store, err := badger.Open(badger.Config{Path: m.CachePath})
		if err != nil {
			fmt.Fprintf(stderr, "Hint: Set ARTDEX_DB or --cache to use a different cache path\n")
			return fmt.Errorf("failed to open badger cache at %q: %w", m.CachePath, err)
		}
		m.Cache = store
		return nil
	}

	db := sqlite.NewDB(m.CachePath)
	if err := db.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set ARTDEX_DB or --cache to use a different cache path\n")
		return fmt.Errorf("failed to open cache at %q: %w", m.CachePath, err)
	}
	m.Cache = sqlite.NewCacheService(db)
	return nil
}

// openExtractor builds the remote extraction backend selected by the
// scrape flags. Both backends authenticate from the environment.
func (m *Main) openExtractor(ctx context.Context, cli *CLI, fetcher artdex.Fetcher, stderr io.Writer) (artdex.Extractor, error) {
	if cli.Scrape.Extractor == "gemini" {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}

		return gemini.NewExtractor(client, fetcher, trafilatura.NewExtractor(), htmltomarkdown.NewConverter()), nil
	}

	apiKey := os.Getenv("FIRECRAWL_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "FIRECRAWL_API_KEY environment variable not set. Get an API key at https://www.firecrawl.dev/app/api-keys")
		return nil, fmt.Errorf("FIRECRAWL_API_KEY not set. Get a key at https://www.firecrawl.dev/app/api-keys")
	}
	return firecrawl.NewClient(apiKey)
}

// newDiscoverer wires URL discovery: sitemap index first, homepage link
// scan as the fallback, results cached with the default TTL.
func newDiscoverer(cache artdex.CacheStore, fetcher artdex.Fetcher, logger *slog.Logger) *scrape.Discoverer {
	index := artdex.SiteIndex(artdexhttp.NewSiteIndex(nil))
	if logger != nil {
		index = artdexslog.NewLoggingSiteIndex(index, logger)
	}
	return &scrape.Discoverer{
		Index:   index,
		Scanner: goquery.NewScanner(fetcher),
		Cache:   cache,
	}
}

func defaultCachePath() string {
	if path := os.Getenv("ARTDEX_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "artdex.db"
	}
	dir := filepath.Join(home, ".artdex")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "artdex.db")
}
