package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/lysyi3m/cyberguardian/app/article"
)

type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// Run extracts the readable text of an article page. Readability is tried
// first; pages it cannot handle fall back to the paragraphs of the main
// content element.
func (e *ContentExtractor) Run(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	page, err := readability.FromReader(bytes.NewReader(data), nil)
	if err == nil {
		if text := article.CleanText(page.Content); text != "" {
			slog.Debug("Content extracted successfully",
				"title", page.Title,
				"content_length", len(text))
			return text, nil
		}
	}

	text, fallbackErr := extractParagraphs(data)
	if fallbackErr != nil {
		return "", fmt.Errorf("failed to extract content: %w", fallbackErr)
	}
	if text == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	return text, nil
}

func extractParagraphs(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	var parts []string
	doc.Find("article p, main p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	return article.CleanText(strings.Join(parts, " ")), nil
}
