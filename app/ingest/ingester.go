package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/lysyi3m/cyberguardian/app/article"
	"github.com/lysyi3m/cyberguardian/app/database"
	"github.com/lysyi3m/cyberguardian/app/feed"
	"golang.org/x/sync/errgroup"
)

// FeedFetcher downloads a source's feed document.
type FeedFetcher interface {
	Run(ctx context.Context, feedConfig *feed.Config) ([]byte, error)
}

// Report counts what happened to one source during an ingest run.
type Report struct {
	Source     string `json:"source"`
	Entries    int    `json:"entries"`
	Dropped    int    `json:"dropped"`
	Skipped    int    `json:"skipped"`
	Inserted   int    `json:"inserted"`
	Duplicates int    `json:"duplicates"`
	Errors     int    `json:"errors"`
	Error      string `json:"error,omitempty"`
}

// Totals sums reports across sources.
type Totals struct {
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
	Skipped    int `json:"skipped"`
}

func Sum(reports []Report) Totals {
	var t Totals
	for _, r := range reports {
		t.Inserted += r.Inserted
		t.Duplicates += r.Duplicates
		t.Errors += r.Errors
		t.Skipped += r.Skipped + r.Dropped
		if r.Error != "" {
			t.Errors++
		}
	}
	return t
}

type Ingester struct {
	fetcher     FeedFetcher
	parser      *feed.Parser
	normalizer  *article.Normalizer
	articleRepo database.ArticleRepository
	sourceRepo  database.SourceRepository
}

func NewIngester(fetcher FeedFetcher, parser *feed.Parser, normalizer *article.Normalizer,
	articleRepo database.ArticleRepository, sourceRepo database.SourceRepository) *Ingester {
	return &Ingester{
		fetcher:     fetcher,
		parser:      parser,
		normalizer:  normalizer,
		articleRepo: articleRepo,
		sourceRepo:  sourceRepo,
	}
}

// Run fetches one source and stores at most limit of its normalized
// entries. Duplicates are counted, not treated as failures. The source's
// fetch state is updated whether or not the fetch succeeded.
func (i *Ingester) Run(ctx context.Context, feedConfig *feed.Config, limit int) (Report, error) {
	if err := i.sourceRepo.UpsertSource(ctx, feedConfig.Name, feedConfig.URL); err != nil {
		return Report{Source: feedConfig.Name}, fmt.Errorf("failed to register source: %w", err)
	}

	report, err := i.run(ctx, feedConfig, limit)

	fetchErr := ""
	if err != nil {
		fetchErr = err.Error()
	}
	nextFetch := time.Now().UTC().Add(time.Duration(feedConfig.Settings.RefreshInterval) * time.Second)
	if stateErr := i.sourceRepo.UpdateFetchState(ctx, feedConfig.Name, nextFetch, fetchErr); stateErr != nil {
		slog.Warn("Failed to update fetch state", "source", feedConfig.Name, "error", stateErr)
	}

	return report, err
}

func (i *Ingester) run(ctx context.Context, feedConfig *feed.Config, limit int) (Report, error) {
	report := Report{Source: feedConfig.Name}

	data, err := i.fetcher.Run(ctx, feedConfig)
	if err != nil {
		return report, err
	}

	raws, stats, err := i.parser.Run(feedConfig.Name, data)
	report.Entries = stats.Entries
	report.Dropped = stats.Dropped()
	if err != nil {
		return report, err
	}

	normalizer := i.normalizer
	if loc := feedConfig.Settings.Location; loc != nil {
		normalizer = normalizer.In(loc)
	}

	articles, normalized := normalizer.RunMany(raws)
	report.Skipped = normalized.Skipped + normalized.Failed

	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		err := i.articleRepo.InsertArticle(ctx, a)
		switch {
		case err == nil:
			report.Inserted++
		case errors.Is(err, database.ErrDuplicate):
			report.Duplicates++
		default:
			report.Errors++
			slog.Error("Failed to store article", "source", a.Source, "url", a.URL, "error", err)
		}
	}

	return report, nil
}

// RunAll ingests every config with at most workers sources in flight. A
// failing source is recorded in its report and does not stop the others.
// Reports are returned sorted by source name.
func (i *Ingester) RunAll(ctx context.Context, configs []*feed.Config, limit, workers int) ([]Report, error) {
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	var mu sync.Mutex
	reports := make([]Report, 0, len(configs))

	for _, feedConfig := range configs {
		g.Go(func() error {
			report, err := i.Run(gctx, feedConfig, limit)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				slog.Warn("Source ingest failed", "source", feedConfig.Name, "error", err)
				report.Error = err.Error()
			}

			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ingest run interrupted: %w", err)
	}

	sort.Slice(reports, func(a, b int) bool { return reports[a].Source < reports[b].Source })
	return reports, nil
}
