// Package main is the kioku CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/kioku/internal/cli"
	"github.com/hyperjump/kioku/internal/config"
	"github.com/hyperjump/kioku/internal/extract"
	"github.com/hyperjump/kioku/internal/llm"
	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/internal/qa"
	"github.com/hyperjump/kioku/internal/server"
	"github.com/hyperjump/kioku/internal/summarize"
	"github.com/hyperjump/kioku/internal/watcher"
	"github.com/hyperjump/kioku/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kioku/config.yaml"

// loadConfig loads config from path. When path is the default and the current
// directory holds a config.yaml, that file wins so a checkout can run with its
// own settings. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			local := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(local); err == nil {
				path = local
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// loadEnv reads .env from the working directory and from beside the config
// file. Variables already set in the environment are kept.
func loadEnv(configPath string) {
	_ = godotenv.Load()
	if configPath != "" {
		if p := filepath.Join(filepath.Dir(configPath), ".env"); fileExists(p) {
			_ = godotenv.Load(p)
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch command := os.Args[1]; command {
	case "server":
		runServer(os.Args[2:])
	case "ingest":
		runIngest(os.Args[2:])
	case "ask":
		runAsk(os.Args[2:])
	case "search":
		runSearch(os.Args[2:])
	case "sources":
		runSources(os.Args[2:])
	case "summarize":
		runSummarize(os.Args[2:])
	case "status":
		runStatus(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("kioku version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// setup loads config and .env and builds the logger.
func setup(configPath string, debug bool) (*config.Config, string, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	loadEnv(resolved)
	logger, err := utils.NewLogger(cfg.Debug || debug)
	if err != nil {
		fatalf("Failed to create logger: %v", err)
	}
	return cfg, resolved, logger
}

func parseFormat(s string) cli.Format {
	f, err := cli.ParseFormat(s)
	if err != nil {
		fatalf("%v", err)
	}
	return f
}

// reorderArgs moves flags that follow the positional arguments to the front,
// because flag.Parse stops at the first non-flag argument.
func reorderArgs(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			return append(reordered, args[:i]...)
		}
	}
	return args
}

// joinArgs joins positional arguments so multi-word input works with or without quotes.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runServer(args []string) {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args)

	cfg, resolved, logger := setup(*configPath, *debug)
	defer logger.Sync()
	logger.Info("config loaded", zap.String("config_path", resolved), zap.Bool("debug", cfg.Debug || *debug))

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if n, err := components.Indexer.SyncKeywordIndex(ctx); err != nil {
		logger.Warn("keyword index sync failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("keyword index synced", zap.Int("sources", n))
	}

	if len(cfg.Watch.Directories) > 0 {
		exts := cfg.Watch.Extensions
		w := watcher.New(cfg.Watch, func(ctx context.Context, path string) {
			if _, err := components.Indexer.IngestFile(ctx, path, exts); err != nil {
				logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
			}
		}, watcher.WithLogger(logger))
		if err := w.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
		go w.Sync(ctx)
	}

	srv := server.NewServer(components.Deps(), cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

func runIngest(args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	text := fs.String("text", "", "ingest this text instead of files")
	title := fs.String("title", "", "title for --text input")
	format := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(reorderArgs(args))

	out := parseFormat(*format)
	if *text == "" && fs.NArg() < 1 {
		fatalf("Usage: kioku ingest [flags] <file-or-directory>...\n       kioku ingest --text \"...\" [--title T]")
	}

	cfg, _, logger := setup(*configPath, false)
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fatalf("Failed to initialize: %v", err)
	}
	defer components.Close()
	ctx := context.Background()

	if *text != "" {
		src, err := components.Indexer.IngestText(ctx, models.SourceInput{Title: *title, Content: *text})
		if err != nil {
			fatalf("Ingest failed: %v", err)
		}
		_ = cli.WriteSource(os.Stdout, src, out)
		return
	}
	for _, path := range fs.Args() {
		info, err := os.Stat(path)
		if err != nil {
			fatalf("Failed to stat path: %v", err)
		}
		if info.IsDir() {
			n, err := components.Indexer.IngestDirectory(ctx, path, cfg.Watch.Extensions)
			if err != nil {
				fatalf("Ingesting directory failed: %v", err)
			}
			fmt.Printf("Ingested %d file(s) from %s\n", n, path)
			continue
		}
		src, err := components.Indexer.IngestFile(ctx, path, nil)
		if err != nil {
			fatalf("Ingest failed: %v", err)
		}
		_ = cli.WriteSource(os.Stdout, src, out)
	}
}

func runAsk(args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = open the local store directly)")
	format := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(reorderArgs(args))

	out := parseFormat(*format)
	question := joinArgs(fs.Args())
	if question == "" {
		fatalf("Usage: kioku ask [flags] <question>")
	}
	ctx := context.Background()

	var answer *qa.Answer
	var err error
	if *serverURL != "" {
		answer, err = newAPIClient(*serverURL).Ask(ctx, question)
	} else {
		cfg, _, logger := setup(*configPath, false)
		defer logger.Sync()
		components, initErr := initializeComponents(cfg, logger)
		if initErr != nil {
			fatalf("Failed to initialize: %v", initErr)
		}
		defer components.Close()
		answer, err = components.Answerer.Answer(ctx, question)
	}
	if err != nil {
		fatalf("Ask failed: %v", err)
	}
	_ = cli.WriteAnswer(os.Stdout, answer, out)
}

func runSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = open the local store directly)")
	topK := fs.Int("top-k", 3, "number of chunks to return (max 50)")
	format := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(reorderArgs(args))

	out := parseFormat(*format)
	req := models.SearchRequest{Query: joinArgs(fs.Args()), TopK: *topK}
	if err := req.Validate(); err != nil {
		fatalf("Usage: kioku search [flags] <query>")
	}
	ctx := context.Background()

	var res *models.SearchResponse
	if *serverURL != "" {
		var err error
		if res, err = newAPIClient(*serverURL).Search(ctx, req); err != nil {
			fatalf("Search failed: %v", err)
		}
	} else {
		cfg, _, logger := setup(*configPath, false)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fatalf("Failed to initialize: %v", err)
		}
		defer components.Close()
		matches, err := components.Store.Matches(ctx, req.Query, req.TopK)
		if err != nil {
			fatalf("Search failed: %v", err)
		}
		res = &models.SearchResponse{Query: req.Query, Matches: matches}
	}
	_ = cli.WriteMatches(os.Stdout, res, out)
}

func runSources(args []string) {
	fs := flag.NewFlagSet("sources", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = open the local store directly)")
	limit := fs.Int("limit", 20, "sources per page (max 100)")
	offset := fs.Int("offset", 0, "sources to skip")
	format := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(reorderArgs(args))

	out := parseFormat(*format)
	q := models.SourceQuery{Query: joinArgs(fs.Args()), Limit: *limit, Offset: *offset}
	q.Normalize()
	ctx := context.Background()

	var list *models.SourceList
	if *serverURL != "" {
		var err error
		if list, err = newAPIClient(*serverURL).Sources(ctx, q); err != nil {
			fatalf("Sources failed: %v", err)
		}
	} else {
		cfg, _, logger := setup(*configPath, false)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fatalf("Failed to initialize: %v", err)
		}
		defer components.Close()
		if list, err = listSources(ctx, components, q); err != nil {
			fatalf("Sources failed: %v", err)
		}
	}
	_ = cli.WriteSources(os.Stdout, list, out)
}

// listSources pages through the registry, or ranks sources when q has a query.
func listSources(ctx context.Context, c *Components, q models.SourceQuery) (*models.SourceList, error) {
	if q.Query != "" {
		return c.Finder.Find(ctx, q)
	}
	sources, err := c.Storage.ListSources(ctx, q.Offset, q.Limit)
	if err != nil {
		return nil, err
	}
	total, err := c.Storage.CountSources(ctx)
	if err != nil {
		return nil, err
	}
	list := &models.SourceList{Sources: make([]*models.SourceHit, 0, len(sources)), Total: total}
	for _, src := range sources {
		list.Sources = append(list.Sources, &models.SourceHit{Source: src})
	}
	return list, nil
}

func runSummarize(args []string) {
	fs := flag.NewFlagSet("summarize", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	text := fs.String("text", "", "summarize this text instead of a file")
	keyPoints := fs.Int("key-points", 0, "number of key points (default from config)")
	format := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(reorderArgs(args))

	out := parseFormat(*format)
	input := *text
	if input == "" {
		if fs.NArg() < 1 {
			fatalf("Usage: kioku summarize [flags] <file>\n       kioku summarize --text \"...\"")
		}
		var err error
		if input, err = extract.NewExtractor().Extract(fs.Arg(0)); err != nil {
			fatalf("Failed to read %s: %v", fs.Arg(0), err)
		}
	}

	cfg, _, logger := setup(*configPath, false)
	defer logger.Sync()
	summarizer, err := summarize.New(cfg.Summarizer, llm.NewClient(cfg.OpenAI), logger)
	if err != nil {
		fatalf("Failed to initialize summarizer: %v", err)
	}
	summary, err := summarizer.Summarize(context.Background(), input)
	if err != nil {
		fatalf("Summarize failed: %v", err)
	}
	n := *keyPoints
	if n <= 0 {
		n = cfg.Summarizer.KeyPoints
	}
	_ = cli.WriteSummary(os.Stdout, &models.SummarizeResponse{
		Summary:   summary,
		KeyPoints: summarize.KeyPoints(input, n),
	}, out)
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = open the local store directly)")
	format := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(args)

	out := parseFormat(*format)
	ctx := context.Background()

	var status *models.Status
	if *serverURL != "" {
		var err error
		if status, err = newAPIClient(*serverURL).Status(ctx); err != nil {
			fatalf("Status failed: %v", err)
		}
	} else {
		cfg, _, logger := setup(*configPath, false)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fatalf("Failed to initialize: %v", err)
		}
		defer components.Close()
		if status, err = server.BuildStatus(ctx, components.Deps(), cfg); err != nil {
			fatalf("Status failed: %v", err)
		}
	}
	_ = cli.WriteStatus(os.Stdout, status, out)
}

func printUsage() {
	fmt.Println(`kioku - retrieval-augmented question answering over your notes and documents

Usage:
  kioku server [flags]                    Start the HTTP API (and watch configured directories)
  kioku ingest [flags] <file|dir>...      Add files or directories to the knowledge store
  kioku ingest --text "..." [--title T]   Add typed text
  kioku ask [flags] <question>            Answer a question from stored knowledge
  kioku search [flags] <query>            Show the chunks closest to a query
  kioku sources [flags] [query]           List sources, or rank them against a query
  kioku summarize [flags] <file>          Summarize a file and list its key points
  kioku status [flags]                    Show store and index statistics
  kioku version                           Show version
  kioku help                              Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/kioku/config.yaml,
                     or ./config.yaml when present)
  --format string    Output format: text or json (default: text)

Ask, Search, Sources and Status Flags:
  --server string    Server URL, e.g. http://localhost:8080. When empty the local
                     store is opened directly; stop the server first.

Search Flags:
  --top-k int        Number of chunks to return (default: 3, max: 50)

Sources Flags:
  --limit int        Sources per page (default: 20, max: 100)
  --offset int       Sources to skip (default: 0)

Summarize Flags:
  --text string      Summarize this text instead of a file
  --key-points int   Number of key points (default from config)

Server Flags:
  --debug            Enable debug logging

Examples:
  kioku server
  kioku ingest ~/notes
  kioku ingest --title "Trip" --text "The Eiffel Tower is located in Paris."
  kioku ask "Where is the Eiffel Tower?"
  kioku ask --server http://localhost:8080 --format json "Where is the Eiffel Tower?"
  kioku search --top-k 5 eiffel tower
  kioku sources --limit 50
  kioku sources chloroplasts
  kioku summarize report.pdf`)
}
