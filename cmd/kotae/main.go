// Package main is the Kotae CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/kotae/internal/answer"
	"github.com/hyperjump/kotae/internal/cache"
	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/faq"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/ledger"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/search"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
	"github.com/hyperjump/kotae/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "kotae server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "ask":
		runAsk()
	case "faq":
		runFAQ()
	case "rebuild":
		runRebuild()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	composer, err := answer.NewComposer(context.Background(),
		cfg.Bedrock.Region, cfg.Bedrock.ModelID, cfg.Bedrock.MaxTokens, logger)
	if err != nil {
		logger.Warn("answer composer unavailable", zap.Error(err))
		composer = nil
	}

	srv := server.NewServer(
		components.Retrieval,
		components.Manager,
		components.Engine,
		composer,
		components.Storage,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "kotae search \"query\" -top-k 3"
// would otherwise leave -top-k unparsed.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func parseFormat(name string) (cli.OutputFormat, error) {
	switch name {
	case "json":
		return cli.OutputJSON, nil
	case "text", "":
		return cli.OutputText, nil
	}
	return "", fmt.Errorf("unknown output format %q; use text or json", name)
}

func runSearch() {
	searchArgs := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	topK := fs.Int("top-k", 0, "number of results (0 = config default)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(searchArgs)

	queryStr := buildQuery(fs.Args())
	if queryStr == "" {
		fmt.Fprintln(os.Stderr, "Usage: kotae search [flags] <query>")
		os.Exit(1)
	}
	format, err := parseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *serverURL != "" {
		// Use HTTP API when server is running (avoids SQLite/Bleve lock conflict).
		response, err := searchViaHTTP(*serverURL, queryStr, *topK)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	components, _, cleanup := mustInitialize(*configPath)
	defer cleanup()

	response, err := components.Retrieval.Search(context.Background(), queryStr, *topK)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL, query string, topK int) (*models.SearchResponse, error) {
	body, err := json.Marshal(map[string]interface{}{"query": query, "top_k": topK})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runAsk() {
	askArgs := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct Bedrock access)")
	topK := fs.Int("top-k", 0, "number of FAQs retrieved as context (0 = config default)")
	_ = fs.Parse(askArgs)

	message := buildQuery(fs.Args())
	if message == "" {
		fmt.Fprintln(os.Stderr, "Usage: kotae ask [flags] <question>")
		os.Exit(1)
	}

	if *serverURL != "" {
		body, _ := json.Marshal(map[string]interface{}{"message": message, "top_k": *topK})
		resp, err := http.Post(*serverURL+"/api/v1/ask", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Ask failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var out struct {
			Answer string `json:"answer"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(out.Answer)
		return
	}

	components, cfg, cleanup := mustInitialize(*configPath)
	defer cleanup()

	ctx := context.Background()
	composer, err := answer.NewComposer(ctx, cfg.Bedrock.Region, cfg.Bedrock.ModelID, cfg.Bedrock.MaxTokens, zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bedrock unavailable: %v\n", err)
		os.Exit(1)
	}
	retrieved, err := components.Retrieval.Context(ctx, message, *topK)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Retrieval failed: %v\n", err)
		os.Exit(1)
	}
	err = composer.AskStream(ctx, message, retrieved, "", func(text string) error {
		fmt.Print(text)
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println()
}

func runFAQ() {
	if len(os.Args) < 3 {
		printFAQUsage()
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("faq", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	question := fs.String("question", "", "FAQ question text")
	answerText := fs.String("answer", "", "FAQ answer text")
	status := fs.String("status", "", "intended status: public or private")
	category := fs.String("category", "", "FAQ category")
	tags := fs.String("tags", "", "comma-separated tags")
	listStatus := fs.String("filter-status", "", "list filter: status")
	listCategory := fs.String("filter-category", "", "list filter: category")
	listTag := fs.String("filter-tag", "", "list filter: tag")
	limit := fs.Int("limit", 0, "page size")
	offset := fs.Int("offset", 0, "page offset")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(os.Args[3:]))

	format, err := parseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	components, _, cleanup := mustInitialize(*configPath)
	defer cleanup()
	ctx := context.Background()

	switch sub {
	case "add":
		input := &models.FAQInput{
			Question: *question,
			Answer:   *answerText,
			Status:   models.Status(*status),
			Category: *category,
			Tags:     splitTags(*tags),
		}
		f, err := components.Manager.Create(ctx, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Create failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created FAQ %d (pending until next rebuild)\n", f.ID)
	case "get":
		id := mustParseID(fs.Args())
		f, err := components.Manager.Get(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Get failed: %v\n", err)
			os.Exit(1)
		}
		_ = cli.WriteFAQ(os.Stdout, f, format)
	case "update":
		id := mustParseID(fs.Args())
		update := &models.FAQUpdate{}
		if *question != "" {
			update.Question = question
		}
		if *answerText != "" {
			update.Answer = answerText
		}
		if *status != "" {
			st := models.Status(*status)
			update.Status = &st
		}
		if *category != "" {
			update.Category = category
		}
		if *tags != "" {
			parsed := splitTags(*tags)
			update.Tags = &parsed
		}
		f, err := components.Manager.Update(ctx, id, update)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated FAQ %d (pending until next rebuild)\n", f.ID)
	case "delete":
		id := mustParseID(fs.Args())
		if err := components.Manager.Delete(ctx, id); err != nil {
			fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Deleted FAQ %d\n", id)
	case "list":
		filter := models.FAQFilter{
			Status:   models.Status(*listStatus),
			Category: *listCategory,
			Tag:      *listTag,
		}
		page, err := components.Manager.List(ctx, filter, *limit, *offset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
			os.Exit(1)
		}
		_ = cli.WriteFAQList(os.Stdout, page, format)
	case "pending":
		summary := components.Manager.Pending()
		if format == cli.OutputJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(summary)
			return
		}
		fmt.Printf("%d pending change(s)\n", summary.Total)
		for _, c := range summary.Changes {
			fmt.Printf("  FAQ %d: %s (restore to %s)\n", c.FAQID, c.Kind, c.OriginalStatus)
		}
	default:
		printFAQUsage()
		os.Exit(1)
	}
}

func mustParseID(args []string) int64 {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "FAQ id required")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid FAQ id %q\n", args[0])
		os.Exit(1)
	}
	return id
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func runRebuild() {
	fs := flag.NewFlagSet("rebuild", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = rebuild in-process)")
	force := fs.Bool("force", false, "re-embed every document even without pending changes")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := parseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *serverURL != "" {
		u := *serverURL + "/api/v1/cache/rebuild"
		if *force {
			u += "?force=true"
		}
		resp, err := http.Post(u, "application/json", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Rebuild failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var report models.RebuildReport
		if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
			fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
			os.Exit(1)
		}
		_ = cli.WriteRebuildReport(os.Stdout, &report, format)
		return
	}

	components, _, cleanup := mustInitialize(*configPath)
	defer cleanup()

	report, err := components.Engine.Rebuild(context.Background(), *force)
	if err != nil {
		if report != nil {
			_ = cli.WriteRebuildReport(os.Stderr, report, format)
		}
		fmt.Fprintf(os.Stderr, "Rebuild failed: %v\n", err)
		os.Exit(1)
	}
	_ = cli.WriteRebuildReport(os.Stdout, report, format)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := parseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *serverURL != "" {
		resp, err := http.Get(*serverURL + "/api/v1/status")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Status failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var status map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
			os.Exit(1)
		}
		printStatus(status, format)
		return
	}

	components, cfg, cleanup := mustInitialize(*configPath)
	defer cleanup()
	ctx := context.Background()

	count, err := components.Storage.Count(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count failed: %v\n", err)
		os.Exit(1)
	}
	status := map[string]interface{}{
		"faqs":     count,
		"cache":    components.Engine.Info(),
		"pending":  components.Manager.Pending().Total,
		"building": components.Engine.Building(),
		"ready":    components.Retrieval.Ready(),
	}
	if diskBytes, err := storage.DiskUsageBytes(
		cfg.Storage.DatabasePath, cfg.Storage.CacheDir, cfg.Storage.KeywordIndexPath,
	); err == nil {
		status["disk_usage_bytes"] = diskBytes
	}
	printStatus(status, format)
}

func printStatus(status map[string]interface{}, format cli.OutputFormat) {
	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(status)
		return
	}
	fmt.Printf("faqs:     %v\n", status["faqs"])
	fmt.Printf("pending:  %v\n", status["pending"])
	fmt.Printf("building: %v\n", status["building"])
	fmt.Printf("ready:    %v\n", status["ready"])
	if v, ok := status["disk_usage_bytes"]; ok {
		fmt.Printf("disk_usage_bytes: %v\n", v)
	}
	if c, ok := status["cache"]; ok {
		b, _ := json.MarshalIndent(c, "", "  ")
		fmt.Printf("\ncache: %s\n", b)
	}
}

// Components holds initialized services.
type Components struct {
	Storage      storage.Storage
	Embedder     embedding.Embedder
	Ledger       *ledger.Ledger
	KeywordIndex keyword.KeywordIndex
	Engine       *cache.Engine
	Manager      *faq.Manager
	Retrieval    *search.Service
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
}

func mustInitialize(configPath string) (*Components, *config.Config, func()) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return components, cfg, func() {
		components.Close()
		_ = logger.Sync()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	led, err := ledger.Open(cfg.Storage.CacheDir, ledger.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open change ledger: %w", err)
	}

	var embedder embedding.Embedder
	onnxEmbedder, err := embedding.NewONNXEmbedder(
		cfg.Embedding.ModelPath,
		cfg.Embedding.ModelID,
		cfg.Embedding.Dimensions,
		cfg.Embedding.MaxTokens,
		cfg.Embedding.CacheSize,
	)
	if err != nil {
		logger.Warn("ONNX embedder unavailable, using mock embedder", zap.Error(err))
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	} else {
		embedder = onnxEmbedder
	}

	metric, err := vector.ParseMetric(cfg.Cache.Metric)
	if err != nil {
		return nil, fmt.Errorf("invalid cache metric: %w", err)
	}

	engine := cache.NewEngine(store, led, embedder, metric, cfg.Storage.CacheDir,
		cache.WithLogger(logger),
		cache.WithWorkers(cfg.Cache.EmbedWorkers),
		cache.WithRetries(cfg.Cache.EmbedRetries),
	)
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("failed to load vector cache: %w", err)
	}

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.KeywordIndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	manager := faq.NewManager(store, led, keywordIndex,
		faq.WithLogger(logger),
		faq.WithLimits(cfg.FAQ.MaxQuestionLength, cfg.FAQ.MaxAnswerLength),
	)
	if n, err := keywordIndex.DocCount(); err == nil && n == 0 {
		if err := manager.RebuildKeywordIndex(context.Background()); err != nil {
			logger.Warn("keyword index backfill failed", zap.Error(err))
		}
	}

	retrieval := search.NewService(engine, store, embedder,
		cfg.Retrieval.TopK, cfg.Retrieval.MaxTopK, cfg.Retrieval.ContextPrefix, logger)

	return &Components{
		Storage:      store,
		Embedder:     embedder,
		Ledger:       led,
		KeywordIndex: keywordIndex,
		Engine:       engine,
		Manager:      manager,
		Retrieval:    retrieval,
	}, nil
}

func printFAQUsage() {
	fmt.Println(`Usage: kotae faq <add|get|update|delete|list|pending> [flags] [id]

  kotae faq add --question "..." --answer "..." [--status public|private] [--category c] [--tags a,b]
  kotae faq get <id>
  kotae faq update <id> [--question "..."] [--answer "..."] [--status s] [--category c] [--tags a,b]
  kotae faq delete <id>
  kotae faq list [--filter-status s] [--filter-category c] [--filter-tag t] [--limit n] [--offset n]
  kotae faq pending`)
}

func printUsage() {
	fmt.Println(`kotae - FAQ chatbot with a consistent vector cache

Usage:
  kotae server [flags]            Start the HTTP server
  kotae search [flags] <query>    Semantic search over public FAQs
  kotae ask [flags] <question>    Ask the assistant (retrieval + Bedrock)
  kotae faq <subcommand>          Manage FAQs (add/get/update/delete/list/pending)
  kotae rebuild [flags]           Rebuild the vector cache
  kotae status [flags]            Show store/cache status
  kotae version                   Show version
  kotae help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kotae/config.yaml)
  --debug            Enable debug logging

Search Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --top-k int        Number of results (default from config)
  --output string    Output format: text or json (default: text)

Rebuild Flags:
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to rebuild in-process.
  --force            Re-embed every document even without pending changes

Examples:
  kotae server
  kotae search パスワードをリセットするには
  kotae search --output json "billing question"
  kotae ask 解約方法を教えてください
  kotae faq add --question "Q?" --answer "A." --tags billing,plans
  kotae rebuild --force
  kotae status --output json`)
}
