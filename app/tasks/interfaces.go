package tasks

import (
	"context"

	"github.com/lysyi3m/cyberguardian/app/article"
	"github.com/lysyi3m/cyberguardian/app/feed"
	"github.com/lysyi3m/cyberguardian/app/ingest"
)

// TaskSchedulerInterface defines the task scheduling operations used by
// the main application and the API.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

type SourceIngester interface {
	Run(ctx context.Context, feedConfig *feed.Config, limit int) (ingest.Report, error)
}

type PageFetcher interface {
	FetchPage(ctx context.Context, url string, timeout int) ([]byte, error)
}

type ContentExtractor interface {
	Run(data []byte) (string, error)
}

type QueueSelector interface {
	Run(ctx context.Context, limit int) ([]article.QueueItem, error)
}

type DigestSummarizer interface {
	Enabled() bool
	Run(ctx context.Context, item article.QueueItem) (article.Digest, error)
}
