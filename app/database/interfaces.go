package database

import (
	"context"
	"time"

	"github.com/lysyi3m/cyberguardian/app/article"
)

type SourceRepository interface {
	GetSource(ctx context.Context, name string) (*Source, error)
	GetSourceCount(ctx context.Context) (int, error)

	UpsertSource(ctx context.Context, name, feedURL string) error
	UpdateFetchState(ctx context.Context, name string, nextFetch time.Time, fetchErr string) error
}

type ArticleRepository interface {
	GetArticle(ctx context.Context, hash string) (*article.Article, error)
	GetStats(ctx context.Context) (*ArticleStats, error)

	GetPendingSources(ctx context.Context) ([]string, error)
	GetPendingItems(ctx context.Context, source string, limit int) ([]article.QueueItem, error)

	InsertArticle(ctx context.Context, a article.Article) error
	MarkProcessed(ctx context.Context, hash string, digest article.Digest) error

	GetArticlesForEnrichment(ctx context.Context, source string, limit int) ([]article.Article, error)
	UpdateSummary(ctx context.Context, hash, summary string, category article.Category) error
	RecordEnrichmentFailure(ctx context.Context, hash string) error

	DeleteAll(ctx context.Context) (int64, error)
}
