package article

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

var (
	ErrMissingURL   = errors.New("entry has no url")
	ErrMissingTitle = errors.New("entry has no title")
	ErrInvalidURL   = errors.New("entry url is not an absolute http(s) url")
)

type SkipReason string

const (
	SkipNone         SkipReason = ""
	SkipMissingURL   SkipReason = "missing_url"
	SkipMissingTitle SkipReason = "missing_title"
	SkipInvalid      SkipReason = "invalid"
)

// Outcome records what happened to one input of a batch.
type Outcome struct {
	Index  int
	Hash   string
	Reason SkipReason
	Err    error
}

// Report summarizes a RunMany batch. Skipped counts entries that lacked
// required fields; Failed counts entries that were present but unusable.
type Report struct {
	Total      int
	Normalized int
	Skipped    int
	Failed     int
	Outcomes   []Outcome
}

type Normalizer struct {
	loc *time.Location
}

// NewNormalizer returns a normalizer that reads zoneless dates in loc.
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{loc: loc}
}

// In returns a normalizer reading zoneless dates in loc instead.
func (n *Normalizer) In(loc *time.Location) *Normalizer {
	return NewNormalizer(loc)
}

// Run converts one raw record into a canonical article. Source, URL and
// title are stored exactly as hashed so the fingerprint can be re-derived.
func (n *Normalizer) Run(raw RawRecord) (Article, error) {
	if strings.TrimSpace(raw.URL) == "" {
		return Article{}, ErrMissingURL
	}
	if strings.TrimSpace(raw.Title) == "" {
		return Article{}, ErrMissingTitle
	}
	if err := validateURL(raw.URL); err != nil {
		return Article{}, err
	}

	summary := CleanText(raw.Summary)

	return Article{
		Hash:      Fingerprint(raw.Source, raw.URL, raw.Title),
		Source:    raw.Source,
		URL:       raw.URL,
		Title:     raw.Title,
		Summary:   summary,
		Published: ParseTimestamp(raw.Published, raw.PublishedFallback, n.loc),
		Category:  GuessCategory(raw.Title, summary),
		Processed: false,
	}, nil
}

// RunMany normalizes a batch. A bad entry never aborts the batch; the
// returned report says what was dropped and why.
func (n *Normalizer) RunMany(raws []RawRecord) ([]Article, Report) {
	articles := make([]Article, 0, len(raws))
	report := Report{
		Total:    len(raws),
		Outcomes: make([]Outcome, 0, len(raws)),
	}

	for i, raw := range raws {
		a, err := n.Run(raw)
		outcome := Outcome{Index: i, Err: err}

		switch {
		case err == nil:
			outcome.Hash = a.Hash
			articles = append(articles, a)
			report.Normalized++
		case errors.Is(err, ErrMissingURL):
			outcome.Reason = SkipMissingURL
			report.Skipped++
		case errors.Is(err, ErrMissingTitle):
			outcome.Reason = SkipMissingTitle
			report.Skipped++
		default:
			outcome.Reason = SkipInvalid
			report.Failed++
			slog.Warn("Failed to normalize entry", "source", raw.Source, "url", raw.URL, "error", err)
		}

		report.Outcomes = append(report.Outcomes, outcome)
	}

	return articles, report
}

func validateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	return nil
}
