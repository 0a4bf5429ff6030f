package article

import "testing"

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "whitespace only", input: " \n\t ", expected: ""},
		{name: "plain text", input: "Plain   text\n\n here ", expected: "Plain text here"},
		{name: "inline markup", input: "<p>Hello <b>World</b>!</p>", expected: "Hello World!"},
		{name: "block elements", input: "<p>One</p><p>Two</p>", expected: "One Two"},
		{name: "line breaks", input: "first<br>second<br/>third", expected: "first second third"},
		{name: "entities", input: "Tom &amp; Jerry", expected: "Tom & Jerry"},
		{name: "script dropped", input: "<script>alert(1)</script>Safe text", expected: "Safe text"},
		{
			name:     "wordpress byline",
			input:    `<p>Scammers pretend to be your bank.</p><p>The post <a href="https://consumer.ftc.gov/x">Bank scam</a> appeared first on Consumer Advice.</p>`,
			expected: "Scammers pretend to be your bank.",
		},
		{
			name:     "byline with dotted site",
			input:    "Body. The post Title appeared first on example.com.",
			expected: "Body.",
		},
		{name: "post without byline", input: "The post office reopened today.", expected: "The post office reopened today."},
		{
			name:     "post in body and byline",
			input:    `<p>The post office will never text you about a package fee. Scammers do.</p><p>The post <a>Fake delivery texts</a> appeared first on Consumer Advice.</p>`,
			expected: "The post office will never text you about a package fee. Scammers do.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanText(tt.input)
			if result != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, result)
			}
		})
	}
}
