package api

import (
	"context"
	"time"

	"github.com/lysyi3m/cyberguardian/app/article"
	"github.com/lysyi3m/cyberguardian/app/database"
	"github.com/lysyi3m/cyberguardian/app/feed"
	"github.com/lysyi3m/cyberguardian/app/ingest"
	"github.com/lysyi3m/cyberguardian/app/tasks"
)

const (
	defaultQueueLimit = 10
	maxQueueLimit     = 100
	maxIngestLimit    = 200
)

type IngesterInterface interface {
	RunAll(ctx context.Context, configs []*feed.Config, limit, workers int) ([]ingest.Report, error)
}

var _ IngesterInterface = (*ingest.Ingester)(nil)

type SelectorInterface interface {
	Run(ctx context.Context, limit int) ([]article.QueueItem, error)
}

type Options struct {
	IngestLimit   int
	IngestWorkers int
	AllowClear    bool
	Version       string
}

type Handler struct {
	configCache *feed.ConfigCache
	sourceRepo  database.SourceRepository
	articleRepo database.ArticleRepository
	ingester    IngesterInterface
	selector    SelectorInterface
	summarizer  tasks.DigestSummarizer
	scheduler   tasks.TaskSchedulerInterface
	opts        Options
}

type articleResponse struct {
	Hash         string            `json:"hash"`
	Source       string            `json:"source"`
	URL          string            `json:"url"`
	Title        string            `json:"title"`
	Summary      string            `json:"summary"`
	Published    *time.Time        `json:"published"`
	Category     article.Category  `json:"category"`
	Processed    bool              `json:"processed"`
	Digest       string            `json:"digest,omitempty"`
	Kickstarters []string          `json:"kickstarter_es,omitempty"`
	Activity     *article.Activity `json:"activity_es,omitempty"`
	RiskLevel    article.RiskLevel `json:"risk_level,omitempty"`
}

func newArticleResponse(a *article.Article) articleResponse {
	resp := articleResponse{
		Hash:         a.Hash,
		Source:       a.Source,
		URL:          a.URL,
		Title:        a.Title,
		Summary:      a.Summary,
		Category:     a.Category,
		Processed:    a.Processed,
		Digest:       a.Digest,
		Kickstarters: a.Kickstarters,
		Activity:     a.Activity,
		RiskLevel:    a.RiskLevel,
		Published:    a.Published,
	}
	return resp
}
