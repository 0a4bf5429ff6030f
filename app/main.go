package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/cyberguardian/app/api"
	"github.com/lysyi3m/cyberguardian/app/article"
	"github.com/lysyi3m/cyberguardian/app/cfg"
	"github.com/lysyi3m/cyberguardian/app/database"
	"github.com/lysyi3m/cyberguardian/app/feed"
	"github.com/lysyi3m/cyberguardian/app/ingest"
	"github.com/lysyi3m/cyberguardian/app/queue"
	"github.com/lysyi3m/cyberguardian/app/summarizer"
	"github.com/lysyi3m/cyberguardian/app/tasks"
)

func main() {
	appCfg, err := cfg.Load(os.Args[1:])
	if errors.Is(err, cfg.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting CyberGuardian server", "version", appCfg.Version, "timezone", appCfg.Location.String())

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	configCache := feed.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load feed configurations", "dir", appCfg.FeedsDir, "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}

	articleRepo := database.NewArticleRepository(db)
	sourceRepo := database.NewSourceRepository(db)

	fetcher := feed.NewFetcher(httpClient, appCfg.UserAgent)
	ingester := ingest.NewIngester(fetcher, feed.NewParser(), article.NewNormalizer(appCfg.Location), articleRepo, sourceRepo)
	selector := queue.NewSelector(articleRepo)

	digestSummarizer := summarizer.New(nil)
	if appCfg.SummarizerEnabled() {
		client := summarizer.NewOpenAIClient(appCfg.LLMEndpoint, appCfg.LLMAPIKey, appCfg.LLMModel, httpClient)
		digestSummarizer = summarizer.New(client)
		slog.Info("Summarizer enabled", "model", appCfg.LLMModel, "batch", appCfg.SummarizeBatch)
	} else {
		slog.Warn("Summarizer disabled (LLM_API_KEY not set)")
	}

	scheduler := tasks.NewScheduler(
		tasks.Options{
			Interval:       time.Duration(appCfg.SchedulerInterval) * time.Second,
			WorkerCount:    appCfg.WorkerCount,
			SummarizeBatch: appCfg.SummarizeBatch,
		},
		configCache, sourceRepo, articleRepo, ingester, fetcher,
		feed.NewContentExtractor(), selector, digestSummarizer,
	)
	scheduler.Start()
	defer scheduler.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = configCache.Watch(ctx, func(sourceConfig *feed.Config) {
		for _, task := range []tasks.TaskInterface{
			tasks.NewSyncSourceTask(sourceConfig, sourceRepo),
			tasks.NewIngestFeedTask(sourceConfig, ingester),
		} {
			if err := scheduler.EnqueueTask(task); err != nil {
				slog.Warn("Failed to enqueue task for changed config", "source", sourceConfig.Name, "type", task.GetType(), "error", err)
			}
		}
	})
	if err != nil {
		slog.Warn("Feed configuration watcher disabled", "dir", appCfg.FeedsDir, "error", err)
	}

	handler := api.NewHandler(
		api.Options{
			IngestLimit:   appCfg.IngestLimit,
			IngestWorkers: appCfg.WorkerCount,
			AllowClear:    appCfg.AllowClear,
			Version:       appCfg.Version,
		},
		configCache, sourceRepo, articleRepo, ingester, selector, digestSummarizer, scheduler,
	)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // ingest and summarize calls wait on upstreams
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "api_enabled", appCfg.APIAccessKey != "")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("CyberGuardian server shutdown complete")
}
