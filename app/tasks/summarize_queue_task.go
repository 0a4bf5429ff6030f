package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lysyi3m/cyberguardian/app/database"
)

const queueSourceName = "queue"

// SummarizeQueueTask takes a batch from the fair queue and stores a digest
// for each article. Runs sharing a guard never overlap.
type SummarizeQueueTask struct {
	Task
	batch       int
	guard       *sync.Mutex
	selector    QueueSelector
	summarizer  DigestSummarizer
	articleRepo database.ArticleRepository
}

func NewSummarizeQueueTask(batch int, guard *sync.Mutex, selector QueueSelector, summarizer DigestSummarizer, articleRepo database.ArticleRepository) *SummarizeQueueTask {
	if guard == nil {
		guard = &sync.Mutex{}
	}
	return &SummarizeQueueTask{
		Task:        NewTask(TaskTypeSummarizeQueue, queueSourceName),
		batch:       batch,
		guard:       guard,
		selector:    selector,
		summarizer:  summarizer,
		articleRepo: articleRepo,
	}
}

func (t *SummarizeQueueTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.summarizer.Enabled() {
		return nil
	}

	if !t.guard.TryLock() {
		slog.Debug("Summarize run already in progress, skipping")
		return nil
	}
	defer t.guard.Unlock()

	items, err := t.selector.Run(ctx, t.batch)
	if err != nil {
		return fmt.Errorf("failed to select queue: %w", err)
	}

	if len(items) == 0 {
		slog.Debug("Queue is empty")
		return nil
	}

	successCount := 0
	errorCount := 0
	var lastErr error

	for _, item := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		digest, err := t.summarizer.Run(ctx, item)
		if err != nil {
			slog.Warn("Failed to summarize article", "hash", item.Hash, "source", item.Source, "error", err)
			errorCount++
			lastErr = err
			continue
		}

		err = t.articleRepo.MarkProcessed(ctx, item.Hash, digest)
		if errors.Is(err, database.ErrNotPending) {
			slog.Debug("Article already processed", "hash", item.Hash)
			continue
		}
		if err != nil {
			slog.Error("Failed to store digest", "hash", item.Hash, "error", err)
			errorCount++
			lastErr = err
			continue
		}
		successCount++
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"selected", len(items),
		"success", successCount,
		"errors", errorCount)

	// Nothing got through, most likely the model endpoint is down
	if successCount == 0 && lastErr != nil {
		return fmt.Errorf("no article summarized: %w", lastErr)
	}

	return nil
}
