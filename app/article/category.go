package article

import (
	"strings"

	"golang.org/x/text/cases"
)

type categoryRule struct {
	category Category
	keywords []string
}

// Ties go to the earlier rule.
var categoryRules = []categoryRule{
	{CategoryPhishing, []string{"phishing", "scam", "identity theft"}},
	{CategoryGrooming, []string{"grooming", "harassment", "minors"}},
	{CategoryParentalControl, []string{"parental control", "supervision", "children"}},
	{CategoryPrivacy, []string{"privacy", "personal data", "security", "social media", "personal information"}},
}

// Categories returns every category in tie-break order, ending with the default.
func Categories() []Category {
	out := make([]Category, 0, len(categoryRules)+1)
	for _, rule := range categoryRules {
		out = append(out, rule.category)
	}
	return append(out, CategoryOther)
}

// GuessCategory counts keyword hits per category in title and summary and
// returns the category with the most hits, or CategoryOther when none match.
func GuessCategory(title, summary string) Category {
	fold := cases.Fold()
	text := fold.String(title + " " + summary)

	best := CategoryOther
	bestCount := 0
	for _, rule := range categoryRules {
		count := 0
		for _, keyword := range rule.keywords {
			if strings.Contains(text, fold.String(keyword)) {
				count++
			}
		}
		if count > bestCount {
			best = rule.category
			bestCount = count
		}
	}

	return best
}
