package api

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/cyberguardian/app/database"
	"github.com/lysyi3m/cyberguardian/app/feed"
	"github.com/lysyi3m/cyberguardian/app/ingest"
	"github.com/lysyi3m/cyberguardian/app/tasks"
)

func NewHandler(opts Options, configCache *feed.ConfigCache, sourceRepo database.SourceRepository,
	articleRepo database.ArticleRepository, ingester IngesterInterface, selector SelectorInterface,
	summarizer tasks.DigestSummarizer, scheduler tasks.TaskSchedulerInterface) *Handler {
	if opts.IngestLimit <= 0 {
		opts.IngestLimit = feed.DefaultMaxItems
	}
	return &Handler{
		configCache: configCache,
		sourceRepo:  sourceRepo,
		articleRepo: articleRepo,
		ingester:    ingester,
		selector:    selector,
		summarizer:  summarizer,
		scheduler:   scheduler,
		opts:        opts,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if sourceCount, err := h.sourceRepo.GetSourceCount(c.Request.Context()); err == nil {
		health["sources"] = sourceCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()
	health["summarizer_enabled"] = h.summarizer != nil && h.summarizer.Enabled()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.articleRepo.GetStats(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles":    stats.Total,
		"pending":     stats.Pending,
		"processed":   stats.Processed,
		"sources":     stats.Sources,
		"by_category": stats.ByCategory,
	})
}

func (h *Handler) APIRunIngest(c *gin.Context) {
	limit, ok := queryLimit(c, h.opts.IngestLimit, maxIngestLimit)
	if !ok {
		return
	}

	configs := h.configCache.GetEnabledConfigs()
	if len(configs) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"sources": []ingest.Report{},
			"totals":  ingest.Totals{},
		})
		return
	}

	reports, err := h.ingester.RunAll(c.Request.Context(), configs, limit, h.opts.IngestWorkers)
	if err != nil {
		slog.Error("Ingest run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ingest run failed", "details": err.Error()})
		return
	}

	totals := ingest.Sum(reports)
	slog.Info("Ingest run completed", "sources", len(reports), "inserted", totals.Inserted, "duplicates", totals.Duplicates, "errors", totals.Errors)

	c.JSON(http.StatusOK, gin.H{
		"sources":    reports,
		"totals":     totals,
		"inserted":   totals.Inserted,
		"duplicates": totals.Duplicates,
	})
}

func (h *Handler) APIGetQueue(c *gin.Context) {
	limit, ok := queryLimit(c, defaultQueueLimit, maxQueueLimit)
	if !ok {
		return
	}

	items, err := h.selector.Run(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Database error", "operation", "select_queue", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *Handler) APIGetArticle(c *gin.Context) {
	hash := c.Param("hash")

	a, err := h.articleRepo.GetArticle(c.Request.Context(), hash)
	if err != nil {
		slog.Error("Database error", "operation", "get_article", "hash", hash, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	c.JSON(http.StatusOK, newArticleResponse(a))
}

func (h *Handler) APISummarizeArticle(c *gin.Context) {
	hash := c.Param("hash")
	ctx := c.Request.Context()

	if h.summarizer == nil || !h.summarizer.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Summarizer is not configured"})
		return
	}

	a, err := h.articleRepo.GetArticle(ctx, hash)
	if err != nil {
		slog.Error("Database error", "operation", "get_article", "hash", hash, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	if a.Processed {
		c.JSON(http.StatusConflict, gin.H{"error": "Article already processed"})
		return
	}

	digest, err := h.summarizer.Run(ctx, a.QueueItem())
	if err != nil {
		slog.Error("Summarizer error", "hash", hash, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Summarizer request failed", "details": err.Error()})
		return
	}

	err = h.articleRepo.MarkProcessed(ctx, hash, digest)
	if errors.Is(err, database.ErrNotPending) {
		c.JSON(http.StatusConflict, gin.H{"error": "Article already processed"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "mark_processed", "hash", hash, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hash":           hash,
		"digest":         digest.Digest,
		"kickstarter_es": digest.Kickstarters,
		"activity_es":    digest.Activity,
		"risk_level":     digest.RiskLevel,
	})
}

func (h *Handler) APIClearArticles(c *gin.Context) {
	deleted, err := h.articleRepo.DeleteAll(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "delete_all", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	slog.Warn("All articles deleted", "count", deleted)
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *Handler) APIListSources(c *gin.Context) {
	configs := h.configCache.GetConfigs()
	ctx := c.Request.Context()

	sources := make([]map[string]interface{}, 0, len(configs))
	for _, sourceConfig := range configs {
		info := map[string]interface{}{
			"name":             sourceConfig.Name,
			"url":              sourceConfig.URL,
			"enabled":          sourceConfig.Settings.Enabled,
			"max_items":        sourceConfig.Settings.MaxItems,
			"refresh_interval": (time.Duration(sourceConfig.Settings.RefreshInterval) * time.Second).String(),
			"enrich_summaries": sourceConfig.Settings.EnrichSummaries,
		}

		if source, err := h.sourceRepo.GetSource(ctx, sourceConfig.Name); err == nil && source != nil {
			info["last_fetched_at"] = source.LastFetchedAt
			info["next_fetch_at"] = source.NextFetchAt
			info["last_error"] = source.LastError
		}

		sources = append(sources, info)
	}

	c.JSON(http.StatusOK, gin.H{
		"sources": sources,
		"total":   len(sources),
	})
}

func (h *Handler) APIReloadSource(c *gin.Context) {
	name := c.Param("name")

	sourceConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "source", name, "error", err)
		status := http.StatusBadRequest
		if errors.Is(err, fs.ErrNotExist) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	syncTask := tasks.NewSyncSourceTask(sourceConfig, h.sourceRepo)
	if err := h.scheduler.EnqueueTask(syncTask); err != nil {
		slog.Error("Error enqueueing sync task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Configuration reloaded and sync task enqueued",
		"source": gin.H{
			"name":    name,
			"url":     sourceConfig.URL,
			"enabled": sourceConfig.Settings.Enabled,
		},
		"task": gin.H{
			"id":   syncTask.ID,
			"type": syncTask.Type,
		},
	})
}

// queryLimit reads ?limit=, writing a 400 response when it is not a
// positive integer. Values above maxLimit are clamped.
func queryLimit(c *gin.Context, fallback, maxLimit int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return 0, false
	}
	return min(limit, maxLimit), true
}
