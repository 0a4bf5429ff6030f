package article

import (
	"time"
)

type Category string

const (
	CategoryPhishing        Category = "phishing"
	CategoryGrooming        Category = "grooming"
	CategoryParentalControl Category = "parental-control"
	CategoryPrivacy         Category = "privacy"
	CategoryOther           Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryPhishing, CategoryGrooming, CategoryParentalControl, CategoryPrivacy, CategoryOther:
		return true
	}
	return false
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// TimeParts is a calendar time without a zone, as some feeds report it.
type TimeParts struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
}

// PublishedValue carries whichever form of publication time a feed entry had.
// At most one field is expected to be set; the zero value means absent.
type PublishedValue struct {
	Text  string
	Time  *time.Time
	Parts *TimeParts
	Epoch *float64
}

func (v PublishedValue) IsZero() bool {
	return v.Text == "" && v.Time == nil && v.Parts == nil && v.Epoch == nil
}

// RawRecord is one feed entry as extracted by the feed parser, before normalization.
type RawRecord struct {
	Source            string
	URL               string
	Title             string
	Published         PublishedValue
	PublishedFallback PublishedValue
	Summary           string // may contain markup
}

type Activity struct {
	Title string   `json:"title"`
	Steps []string `json:"steps"`
}

// Digest is the parent-facing material the summarizer produces for one article.
type Digest struct {
	Digest       string    `json:"digest"`
	Kickstarters []string  `json:"kickstarters"`
	Activity     Activity  `json:"activity"`
	RiskLevel    RiskLevel `json:"risk_level"`
}

// Article is the canonical, persisted representation of a feed entry.
type Article struct {
	Hash      string
	Source    string
	URL       string
	Title     string
	Summary   string
	Published *time.Time // nil when the feed date could not be parsed
	Category  Category
	Processed bool

	// Filled in by the summarizer
	Digest       string
	Kickstarters []string
	Activity     *Activity
	RiskLevel    RiskLevel

	CreatedAt time.Time
}

// QueueItem is the projection of an Article handed to the summarizer queue.
type QueueItem struct {
	Hash      string     `json:"hash"`
	Source    string     `json:"source"`
	URL       string     `json:"url"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	Category  Category   `json:"category"`
	Published *time.Time `json:"published"`
}

func (a Article) QueueItem() QueueItem {
	return QueueItem{
		Hash:      a.Hash,
		Source:    a.Source,
		URL:       a.URL,
		Title:     a.Title,
		Summary:   a.Summary,
		Category:  a.Category,
		Published: a.Published,
	}
}
