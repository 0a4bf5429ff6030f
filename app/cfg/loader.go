package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

// ErrHelp is returned when the user asked for --help and usage was printed.
var ErrHelp = errors.New("help requested")

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/cyberguardian.db" description:"Path to the SQLite database file"`

	// Application configuration
	FeedsDir          string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing source configuration files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	IngestLimit       int    `long:"ingest-limit" env:"INGEST_LIMIT" default:"15" description:"Default number of entries stored per source on a manual ingest run"`
	AllowClear        bool   `long:"allow-clear" env:"ALLOW_CLEAR" description:"Expose the bulk delete endpoint (test environments only)"`

	// Summarizer
	LLMEndpoint    string `long:"llm-endpoint" env:"LLM_ENDPOINT" description:"OpenAI-compatible API base URL (default: OpenAI)"`
	LLMModel       string `long:"llm-model" env:"LLM_MODEL" default:"gpt-4o-mini" description:"Model used for article digests"`
	LLMAPIKey      string `long:"llm-api-key" env:"LLM_API_KEY" description:"API key for the language model; summarization is disabled without it"`
	SummarizeBatch int    `long:"summarize-batch" env:"SUMMARIZE_BATCH" default:"10" description:"Articles taken from the queue per scheduled summarize run"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"CyberGuardian/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for feed dates without zone (e.g., UTC, America/Mexico_City)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load reads configuration from args and the environment. A .env file in
// the working directory is loaded first; variables already set win.
func Load(args []string) (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", raw.WorkerCount)
	}
	if raw.SchedulerInterval < 1 {
		return nil, fmt.Errorf("scheduler interval must be at least 1 second, got %d", raw.SchedulerInterval)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		FeedsDir:          raw.FeedsDir,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		IngestLimit:       raw.IngestLimit,
		AllowClear:        raw.AllowClear,
		LLMEndpoint:       raw.LLMEndpoint,
		LLMModel:          raw.LLMModel,
		LLMAPIKey:         raw.LLMAPIKey,
		SummarizeBatch:    raw.SummarizeBatch,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	cfg.Location = loadLocation(cfg.Timezone)

	return cfg, nil
}

func loadLocation(timezone string) *time.Location {
	if timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", timezone, "error", err)
		return time.Local
	}
	return loc
}
