package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/cyberguardian/app/feed"
)

type IngestFeedTask struct {
	Task
	SourceConfig *feed.Config
	ingester     SourceIngester
}

func NewIngestFeedTask(sourceConfig *feed.Config, ingester SourceIngester) *IngestFeedTask {
	return &IngestFeedTask{
		Task:         NewTask(TaskTypeIngestFeed, sourceConfig.Name),
		SourceConfig: sourceConfig,
		ingester:     ingester,
	}
}

func (t *IngestFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	report, err := t.ingester.Run(ctx, t.SourceConfig, t.SourceConfig.Settings.MaxItems)
	if err != nil {
		return fmt.Errorf("failed to ingest feed: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"entries", report.Entries,
		"inserted", report.Inserted,
		"duplicates", report.Duplicates,
		"skipped", report.Skipped+report.Dropped,
		"errors", report.Errors)

	return nil
}
