package article

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// WordPress appends this to every excerpt it publishes. Only the last
// "The post" can start it; earlier ones belong to the excerpt.
var (
	bylineStart   = regexp.MustCompile(`(?i)The post\s`)
	bylinePattern = regexp.MustCompile(`(?is)^The post\s.+?\sappeared first on\s.+?(\.|$)\s*$`)
)

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "table": true, "tr": true, "td": true, "th": true,
	"section": true, "article": true, "header": true, "footer": true,
	"figure": true, "figcaption": true, "hr": true,
}

// CleanText turns a feed summary into plain text: markup stripped, the
// "appeared first on" byline removed and whitespace collapsed.
func CleanText(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	text := raw
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
		doc.Find("script, style, noscript").Remove()

		var sb strings.Builder
		for _, n := range doc.Nodes {
			writeText(&sb, n)
		}
		text = sb.String()
	}

	text = stripByline(text)

	return strings.Join(strings.Fields(text), " ")
}

func writeText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c)
	}
	if block {
		sb.WriteByte(' ')
	}
}

func stripByline(text string) string {
	starts := bylineStart.FindAllStringIndex(text, -1)
	if len(starts) == 0 {
		return text
	}

	start := starts[len(starts)-1][0]
	if !bylinePattern.MatchString(text[start:]) {
		return text
	}
	return text[:start]
}
