package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/cyberguardian/app/article"
	"github.com/lysyi3m/cyberguardian/app/database"
	"github.com/lysyi3m/cyberguardian/app/feed"
)

// EnrichSummaryTask fills in summaries for articles whose feed entry had
// none, using the text of the article page, and re-classifies them.
type EnrichSummaryTask struct {
	Task
	SourceConfig     *feed.Config
	fetcher          PageFetcher
	contentExtractor ContentExtractor
	articleRepo      database.ArticleRepository
}

func NewEnrichSummaryTask(sourceConfig *feed.Config, fetcher PageFetcher, contentExtractor ContentExtractor, articleRepo database.ArticleRepository) *EnrichSummaryTask {
	return &EnrichSummaryTask{
		Task:             NewTask(TaskTypeEnrichSummary, sourceConfig.Name),
		SourceConfig:     sourceConfig,
		fetcher:          fetcher,
		contentExtractor: contentExtractor,
		articleRepo:      articleRepo,
	}
}

func (t *EnrichSummaryTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.Settings.EnrichSummaries {
		slog.Debug("Summary enrichment disabled for source", "source", t.SourceName)
		return nil
	}

	articles, err := t.articleRepo.GetArticlesForEnrichment(ctx, t.SourceName, t.SourceConfig.Settings.MaxItems)
	if err != nil {
		return fmt.Errorf("failed to get articles for enrichment: %w", err)
	}

	if len(articles) == 0 {
		slog.Debug("No articles need enrichment", "source", t.SourceName)
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, a := range articles {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := t.enrich(ctx, a); err != nil {
			slog.Warn("Failed to enrich article", "hash", a.Hash, "url", a.URL, "error", err)
			errorCount++

			if err := t.articleRepo.RecordEnrichmentFailure(ctx, a.Hash); err != nil {
				slog.Error("Failed to record enrichment failure", "hash", a.Hash, "error", err)
			}
		} else {
			successCount++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *EnrichSummaryTask) enrich(ctx context.Context, a article.Article) error {
	data, err := t.fetcher.FetchPage(ctx, a.URL, t.SourceConfig.Settings.Timeout)
	if err != nil {
		return fmt.Errorf("failed to fetch article page: %w", err)
	}

	text, err := t.contentExtractor.Run(data)
	if err != nil {
		return fmt.Errorf("failed to extract content: %w", err)
	}

	category := article.GuessCategory(a.Title, text)
	if err := t.articleRepo.UpdateSummary(ctx, a.Hash, text, category); err != nil {
		return fmt.Errorf("failed to update summary: %w", err)
	}

	slog.Debug("Summary enriched", "hash", a.Hash, "summary_length", len(text), "category", category)
	return nil
}
