package cfg

import "time"

type Cfg struct {
	// Storage
	DBPath string

	// Application configuration
	FeedsDir          string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string
	IngestLimit       int
	AllowClear        bool

	// Summarizer
	LLMEndpoint    string
	LLMModel       string
	LLMAPIKey      string
	SummarizeBatch int

	// Application metadata
	UserAgent string
	Timezone  string
	Location  *time.Location
	Debug     bool
	Version   string
}

// SummarizerEnabled reports whether enough LLM settings are present to
// run the summarizer.
func (c *Cfg) SummarizerEnabled() bool {
	return c.LLMAPIKey != "" && c.LLMModel != ""
}
