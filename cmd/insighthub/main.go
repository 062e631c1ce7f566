// Package main is the Insight Hub CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pmo-intel/insight-hub/internal/config"
	"github.com/pmo-intel/insight-hub/internal/loader"
	"github.com/pmo-intel/insight-hub/internal/pipeline"
	"github.com/pmo-intel/insight-hub/internal/ranking"
	"github.com/pmo-intel/insight-hub/internal/report"
	"github.com/pmo-intel/insight-hub/internal/search"
	"github.com/pmo-intel/insight-hub/internal/server"
	"github.com/pmo-intel/insight-hub/internal/session"
	"github.com/pmo-intel/insight-hub/internal/stats"
	"github.com/pmo-intel/insight-hub/internal/storage"
	"github.com/pmo-intel/insight-hub/internal/watcher"
	"github.com/pmo-intel/insight-hub/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/insighthub/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml
// in the current directory wins if it exists, so "insighthub server" from
// the project dir picks up the project's config.
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
	switch os.Args[1] {
	case "server":
		runServer()
	case "process":
		runProcess()
	case "stats":
		runStats()
	case "rank":
		runRank()
	case "export":
		runExport()
	case "version", "--version", "-v":
		fmt.Printf("insighthub version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func mustSetup(configPath string, debugFlag bool) (*config.Config, string, *zap.Logger) {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || debugFlag)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, resolvedPath, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedPath, logger := mustSetup(*configPath, *debug)
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedPath),
		zap.Bool("debug", cfg.Debug || *debug),
	)

	var sessionStore storage.SessionStore
	if cfg.Session.DatabasePath != "" {
		store, err := storage.NewSQLiteSessionStore(cfg.Session.DatabasePath)
		if err != nil {
			logger.Fatal("Failed to open session store", zap.Error(err))
		}
		defer store.Close()
		sessionStore = store
		logger.Info("session store opened", zap.String("path", cfg.Session.DatabasePath))
	}

	ctx := context.Background()
	bookmarks := session.NewBookmarks(ctx, sessionStore, logger)
	alerts := session.NewAlertCenter(ctx, sessionStore, logger)
	ranker := ranking.NewRanker(cfg.Ranking.RelevanceThreshold, cfg.Ranking.DefaultLimit)
	store := loader.NewStore(loader.NewClient(&cfg.Data, logger))

	var index *search.Index
	if cfg.Search.IndexEnabled {
		idx, err := search.NewIndex(logger)
		if err != nil {
			logger.Fatal("Failed to create search index", zap.Error(err))
		}
		defer idx.Close()
		index = idx
	}

	srv := server.NewServer(store, bookmarks, alerts, ranker, index, cfg, logger)
	srv.RefreshSnapshot(ctx)

	if cfg.Data.WatchDirectory != "" {
		watchCtx, watchCancel := context.WithCancel(ctx)
		defer watchCancel()
		w := watcher.New(cfg.Data.WatchDirectory, func() {
			srv.RefreshSnapshot(context.Background())
		}, logger)
		if err := w.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

func runProcess() {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, _, logger := mustSetup(*configPath, *debug)
	defer logger.Sync()

	if cfg.Pipeline.DataDir == "" || cfg.Pipeline.OutputDir == "" {
		fmt.Println("pipeline.data_dir and pipeline.output_dir must be configured")
		os.Exit(1)
	}

	runner, err := pipeline.NewRunner(&cfg.Pipeline, logger)
	if err != nil {
		logger.Fatal("Failed to initialize pipeline", zap.Error(err))
	}
	defer runner.Close()

	out, err := runner.Run(context.Background())
	if err != nil {
		logger.Fatal("Pipeline run failed", zap.Error(err))
	}
	fmt.Printf("Processed %d articles into %s (%d KPIs, %d alerts, %d insights)\n",
		len(out.Articles), cfg.Pipeline.OutputDir, len(out.KPIs), len(out.Alerts), len(out.Insights))
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", `server URL (empty = load artifacts directly)`)
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var s map[string]interface{}
	if *serverURL != "" {
		res, err := getJSON(*serverURL + "/api/v1/stats")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
		s = res
	} else {
		cfg, _, logger := mustSetup(*configPath, false)
		defer logger.Sync()
		snap := loader.NewClient(&cfg.Data, logger).Load(context.Background())
		computed := stats.Compute(snap.Articles, snap.KPIs)
		s = map[string]interface{}{
			"totalArticles": computed.TotalArticles,
			"articlesToday": computed.ArticlesToday,
			"avgSentiment":  computed.AvgSentiment,
			"activeKpis":    computed.ActiveKPIs,
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("total_articles:  %v\n", s["totalArticles"])
		fmt.Printf("articles_today:  %v\n", s["articlesToday"])
		fmt.Printf("avg_sentiment:   %v\n", s["avgSentiment"])
		fmt.Printf("active_kpis:     %v\n", s["activeKpis"])
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func runRank() {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", `server URL (empty = load artifacts directly)`)
	threshold := fs.Float64("threshold", 0, "relevance threshold override (0 = configured default)")
	limit := fs.Int("limit", 0, "result limit override (0 = configured default)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: insighthub rank [flags] <kpi-id>")
		os.Exit(1)
	}
	kpiID := fs.Arg(0)

	if *serverURL != "" {
		target := fmt.Sprintf("%s/api/v1/kpis/%s/articles", *serverURL, url.PathEscape(kpiID))
		if *threshold > 0 || *limit > 0 {
			target += fmt.Sprintf("?threshold=%g&limit=%d", *threshold, *limit)
		}
		res, err := getJSON(target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Rank failed: %v\n", err)
			os.Exit(1)
		}
		articles, _ := res["articles"].([]interface{})
		for _, raw := range articles {
			a, _ := raw.(map[string]interface{})
			rel := 0.0
			if m, ok := a["kpiRelevance"].(map[string]interface{}); ok {
				rel, _ = m[kpiID].(float64)
			}
			fmt.Printf("%6.2f  %s  (%s)\n", rel, a["title"], a["source"])
		}
		return
	}

	cfg, _, logger := mustSetup(*configPath, false)
	defer logger.Sync()
	snap := loader.NewClient(&cfg.Data, logger).Load(context.Background())
	ranker := ranking.NewRanker(cfg.Ranking.RelevanceThreshold, cfg.Ranking.DefaultLimit)
	for _, a := range ranker.ForKPIWith(snap.Articles, kpiID, *threshold, *limit) {
		fmt.Printf("%6.2f  %s  (%s)\n", a.RelevanceFor(kpiID), a.Title, a.Source)
	}
}

func runExport() {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	out := fs.String("out", "insight-report.xlsx", "output workbook path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, logger := mustSetup(*configPath, false)
	defer logger.Sync()

	snap := loader.NewClient(&cfg.Data, logger).Load(context.Background())
	if err := report.Write(snap, *out); err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported %d articles and %d KPIs to %s\n", len(snap.Articles), len(snap.KPIs), *out)
}

func getJSON(target string) (map[string]interface{}, error) {
	resp, err := http.Get(target)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func printUsage() {
	fmt.Println(`insighthub - news-intelligence dashboard core

Usage:
  insighthub server [flags]            Start the dashboard API server
  insighthub process [flags]           Run the article processing pipeline once
  insighthub stats [flags]             Show dashboard statistics
  insighthub rank [flags] <kpi-id>     Show top articles for a KPI
  insighthub export [flags]            Export the snapshot to an Excel workbook
  insighthub version                   Show version
  insighthub help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/insighthub/config.yaml)
  --debug            Enable debug logging

Process Flags:
  --config string    Config file path
  --debug            Enable debug logging

Stats Flags:
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to load artifacts directly.
  --output string    Output format: text or json (default: text)

Rank Flags:
  --server string      Server URL (default: http://localhost:8080). Use empty (--server "") to load artifacts directly.
  --threshold float    Relevance threshold override
  --limit int          Result limit override

Export Flags:
  --config string    Config file path
  --out string       Output workbook path (default: insight-report.xlsx)

Examples:
  insighthub server
  insighthub process
  insighthub stats --output json
  insighthub rank circular-debt
  insighthub rank --threshold 50 --limit 5 fbr-tax
  insighthub export --out weekly-report.xlsx`)
}
