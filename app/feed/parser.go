package feed

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lysyi3m/cyberguardian/app/article"
	"github.com/mmcdole/gofeed"
	xpp "github.com/mmcdole/goxpp"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run extracts raw records from a feed document. Parsing is best-effort:
// when the document is malformed a lenient scan keeps every item or entry
// that was complete before the damage. If none was, an empty batch is
// returned with the error.
func (p *Parser) Run(source string, data []byte) ([]article.RawRecord, ParseStats, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Feed did not parse cleanly, retrying", "source", source, "error", err)

		items, fallbackErr := parseLenient(data)
		if fallbackErr != nil {
			return []article.RawRecord{}, ParseStats{}, fmt.Errorf("failed to parse feed: %w", errors.Join(err, fallbackErr))
		}
		slog.Info("Recovered entries from malformed feed", "source", source, "entries", len(items))
		parsed = &gofeed.Feed{Items: items}
	}

	var stats ParseStats
	records := make([]article.RawRecord, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		stats.Entries++

		record := p.normalizeItem(source, item)
		if record.URL == "" {
			stats.MissingURL++
			continue
		}
		if record.Title == "" {
			stats.MissingTitle++
			continue
		}
		records = append(records, record)
	}

	if stats.Dropped() > 0 {
		slog.Debug("Dropped feed entries", "source", source, "missing_url", stats.MissingURL, "missing_title", stats.MissingTitle)
	}

	return records, stats, nil
}

// parseLenient walks the document with a non-strict pull parser and keeps
// each item or entry whose end tag was reached. It stops at the first
// syntax error.
func parseLenient(data []byte) ([]*gofeed.Item, error) {
	p := xpp.NewXMLPullParser(bytes.NewReader(data), false, nil)

	var (
		items   []*gofeed.Item
		current *gofeed.Item
		field   string
		text    strings.Builder
	)

	for {
		event, err := p.Next()
		if err != nil {
			if len(items) == 0 {
				return nil, err
			}
			return items, nil
		}

		switch event {
		case xpp.EndDocument:
			if len(items) == 0 {
				return nil, errors.New("no complete entries found")
			}
			return items, nil

		case xpp.StartTag:
			name := strings.ToLower(p.Name)
			switch {
			case name == "item" || name == "entry":
				current = &gofeed.Item{}
				field = ""
			case current != nil && field == "":
				field = name
				text.Reset()
				if name == "link" && current.Link == "" {
					if rel := p.Attribute("rel"); rel == "" || rel == "alternate" {
						current.Link = strings.TrimSpace(p.Attribute("href"))
					}
				}
			}

		case xpp.Text:
			if field != "" {
				text.WriteString(p.Text)
			}

		case xpp.EndTag:
			name := strings.ToLower(p.Name)
			switch {
			case current != nil && (name == "item" || name == "entry"):
				items = append(items, current)
				current = nil
				field = ""
			case current != nil && name == field:
				setLenientField(current, field, text.String())
				field = ""
			}
		}
	}
}

func setLenientField(item *gofeed.Item, field, value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return
	}

	switch field {
	case "title":
		item.Title = trimmed
	case "link":
		if item.Link == "" {
			item.Link = trimmed
		}
	case "guid", "id":
		if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
			item.Links = append(item.Links, trimmed)
		}
	case "description", "summary":
		item.Description = value
	case "encoded", "content":
		item.Content = value
	case "pubdate", "published", "issued":
		item.Published = trimmed
	case "updated", "modified", "date":
		item.Updated = trimmed
	}
}

func (p *Parser) normalizeItem(source string, item *gofeed.Item) article.RawRecord {
	record := article.RawRecord{
		Source:  source,
		URL:     strings.TrimSpace(item.Link),
		Title:   strings.TrimSpace(item.Title),
		Summary: item.Description,
	}

	if record.URL == "" {
		for _, link := range item.Links {
			if link = strings.TrimSpace(link); link != "" {
				record.URL = link
				break
			}
		}
	}

	if strings.TrimSpace(record.Summary) == "" {
		record.Summary = item.Content
	}

	// The explicit string keeps the feed's own zone text; the parsed forms
	// are only consulted when it cannot be read.
	if item.Published != "" {
		record.Published = article.PublishedValue{Text: item.Published}
	} else if item.PublishedParsed != nil {
		record.Published = article.PublishedValue{Time: item.PublishedParsed}
	}

	if item.PublishedParsed != nil {
		record.PublishedFallback = article.PublishedValue{Time: item.PublishedParsed}
	} else if item.UpdatedParsed != nil {
		record.PublishedFallback = article.PublishedValue{Time: item.UpdatedParsed}
	} else if item.Updated != "" {
		record.PublishedFallback = article.PublishedValue{Text: item.Updated}
	}

	return record
}
