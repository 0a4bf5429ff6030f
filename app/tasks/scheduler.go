package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/cyberguardian/app/database"
	"github.com/lysyi3m/cyberguardian/app/feed"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const taskQueueSize = 300

type Options struct {
	Interval       time.Duration
	WorkerCount    int
	SummarizeBatch int
}

type Scheduler struct {
	configCache      *feed.ConfigCache
	sourceRepo       database.SourceRepository
	articleRepo      database.ArticleRepository
	ingester         SourceIngester
	fetcher          PageFetcher
	contentExtractor ContentExtractor
	selector         QueueSelector
	summarizer       DigestSummarizer
	summarizeGuard   sync.Mutex
	opts             Options
	ctx              context.Context
	cancel           context.CancelFunc
	wg               sync.WaitGroup
	taskQueue        chan TaskInterface
}

func NewScheduler(opts Options, configCache *feed.ConfigCache, sourceRepo database.SourceRepository,
	articleRepo database.ArticleRepository, ingester SourceIngester, fetcher PageFetcher,
	contentExtractor ContentExtractor, selector QueueSelector, summarizer DigestSummarizer) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	if opts.WorkerCount < 1 {
		opts.WorkerCount = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}

	return &Scheduler{
		configCache:      configCache,
		sourceRepo:       sourceRepo,
		articleRepo:      articleRepo,
		ingester:         ingester,
		fetcher:          fetcher,
		contentExtractor: contentExtractor,
		selector:         selector,
		summarizer:       summarizer,
		opts:             opts,
		ctx:              ctx,
		cancel:           cancel,
		taskQueue:        make(chan TaskInterface, taskQueueSize),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.opts.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.opts.Interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// NewSummarizeTask returns a summarize task sharing the scheduler's guard,
// so manual and scheduled runs never overlap.
func (s *Scheduler) NewSummarizeTask(batch int) *SummarizeQueueTask {
	return NewSummarizeQueueTask(batch, &s.summarizeGuard, s.selector, s.summarizer, s.articleRepo)
}

func (s *Scheduler) enqueueStartupTasks() {
	sourceConfigs := s.configCache.GetConfigs()
	if len(sourceConfigs) == 0 {
		slog.Debug("No source configurations found")
		return
	}

	slog.Debug("Processing source configurations", "count", len(sourceConfigs))

	for _, sourceConfig := range sourceConfigs {
		if err := s.EnqueueTask(NewSyncSourceTask(sourceConfig, s.sourceRepo)); err != nil {
			slog.Warn("Failed to enqueue SyncSourceTask", "source", sourceConfig.Name, "error", err)
			continue
		}

		if !sourceConfig.Settings.Enabled {
			slog.Debug("Source disabled, skipping IngestFeedTask", "source", sourceConfig.Name)
			continue
		}

		if err := s.EnqueueTask(NewIngestFeedTask(sourceConfig, s.ingester)); err != nil {
			slog.Warn("Failed to enqueue IngestFeedTask", "source", sourceConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	sourceConfigs := s.configCache.GetEnabledConfigs()
	if len(sourceConfigs) == 0 {
		slog.Debug("No enabled source configurations found")
	}

	for _, sourceConfig := range sourceConfigs {
		source, err := s.sourceRepo.GetSource(s.ctx, sourceConfig.Name)
		if err != nil {
			slog.Warn("Failed to get source from database, skipping", "source", sourceConfig.Name, "error", err)
			continue
		}

		now := time.Now().UTC()
		if source != nil && source.NextFetchAt != nil && source.NextFetchAt.After(now) {
			slog.Debug("Source not due for refresh yet", "source", sourceConfig.Name, "next_fetch_at", source.NextFetchAt)
		} else if err := s.EnqueueTask(NewIngestFeedTask(sourceConfig, s.ingester)); err != nil {
			slog.Warn("Failed to enqueue IngestFeedTask", "source", sourceConfig.Name, "error", err)
		}

		if sourceConfig.Settings.EnrichSummaries {
			enrichTask := NewEnrichSummaryTask(sourceConfig, s.fetcher, s.contentExtractor, s.articleRepo)
			if err := s.EnqueueTask(enrichTask); err != nil {
				slog.Warn("Failed to enqueue EnrichSummaryTask", "source", sourceConfig.Name, "error", err)
			}
		}
	}

	if s.summarizer != nil && s.summarizer.Enabled() && s.opts.SummarizeBatch > 0 {
		if err := s.EnqueueTask(s.NewSummarizeTask(s.opts.SummarizeBatch)); err != nil {
			slog.Warn("Failed to enqueue SummarizeQueueTask", "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := RetryDelay(task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(retryDelay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-timer.C:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}

// RetryDelay is the exponential backoff before retry n, capped at 30s.
func RetryDelay(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	delay := time.Duration(1<<uint(retry-1)) * time.Second
	if delay > 30*time.Second {
		delay = 30 * time.Second
	}
	return delay
}
