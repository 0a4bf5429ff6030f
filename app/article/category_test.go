package article

import "testing"

func TestGuessCategory(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		summary  string
		expected Category
	}{
		{"phishing alert", "phishing scam alert", "", CategoryPhishing},
		{"no matches", "", "", CategoryOther},
		{"unrelated text", "New phone released", "Faster chip and bigger screen", CategoryOther},
		{"case insensitive", "PHISHING Wave", "", CategoryPhishing},
		{"summary only", "Weekly roundup", "Online harassment of minors is rising", CategoryGrooming},
		{"multi word keyword", "Setting up parental control on tablets", "", CategoryParentalControl},
		{"highest count wins", "Children and privacy", "Security tips to protect personal data on social media", CategoryPrivacy},
		{"tie goes to first declared", "Scam targets", "grooming tactics", CategoryPhishing},
		{"tie later pair", "supervision tips", "privacy settings", CategoryParentalControl},
		{"keyword counted once", "scam scam scam", "harassment minors", CategoryGrooming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GuessCategory(tt.title, tt.summary)
			if result != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, result)
			}
		})
	}
}

func TestCategories(t *testing.T) {
	categories := Categories()

	expected := []Category{CategoryPhishing, CategoryGrooming, CategoryParentalControl, CategoryPrivacy, CategoryOther}
	if len(categories) != len(expected) {
		t.Fatalf("Expected %d categories, got %d", len(expected), len(categories))
	}
	for i, c := range expected {
		if categories[i] != c {
			t.Errorf("Expected category %d to be '%s', got '%s'", i, c, categories[i])
		}
		if !c.Valid() {
			t.Errorf("Expected '%s' to be valid", c)
		}
	}

	if Category("otros").Valid() {
		t.Error("Expected unknown category to be invalid")
	}
}
