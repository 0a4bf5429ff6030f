package summarizer

import (
	"errors"
	"testing"

	"github.com/lysyi3m/cyberguardian/app/article"
)

func TestCoerce(t *testing.T) {
	valid := `{"digest":" Un resumen ","kickstarters":["¿Qué harías?"," "],"activity":{"title":"Detectives","steps":["Mirar"]},"risk_level":"high"}`

	tests := []struct {
		name         string
		raw          string
		expectError  bool
		expectedRisk article.RiskLevel
	}{
		{name: "valid", raw: valid, expectedRisk: article.RiskHigh},
		{name: "fenced", raw: "```json\n" + valid + "\n```", expectedRisk: article.RiskHigh},
		{
			name:         "spanish risk",
			raw:          `{"digest":"d","kickstarters":["k"],"activity":{"title":"t","steps":[]},"risk_level":"Bajo"}`,
			expectedRisk: article.RiskLow,
		},
		{
			name:         "unknown risk",
			raw:          `{"digest":"d","kickstarters":["k"],"activity":{"title":"t"},"risk_level":"extreme"}`,
			expectedRisk: article.RiskMedium,
		},
		{name: "not json", raw: "Lo siento, no puedo ayudar", expectError: true},
		{name: "missing digest", raw: `{"kickstarters":["k"],"activity":{"title":"t"}}`, expectError: true},
		{name: "missing kickstarters", raw: `{"digest":"d","activity":{"title":"t"}}`, expectError: true},
		{name: "missing activity", raw: `{"digest":"d","kickstarters":["k"]}`, expectError: true},
		{name: "wrong types", raw: `{"digest":1,"kickstarters":"k"}`, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := Coerce(tt.raw)

			if tt.expectError {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Errorf("Expected ErrMalformedResponse, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if digest.RiskLevel != tt.expectedRisk {
				t.Errorf("Expected risk '%s', got '%s'", tt.expectedRisk, digest.RiskLevel)
			}
		})
	}
}

func TestCoerceTrimsFields(t *testing.T) {
	digest, err := Coerce(`{"digest":" Un resumen ","kickstarters":["¿Qué harías?"," "],"activity":{"title":" Detectives ","steps":["Mirar",""]},"risk_level":"low"}`)
	if err != nil {
		t.Fatal(err)
	}

	if digest.Digest != "Un resumen" {
		t.Errorf("Expected trimmed digest, got '%s'", digest.Digest)
	}
	if len(digest.Kickstarters) != 1 {
		t.Errorf("Expected blank kickstarters dropped, got %v", digest.Kickstarters)
	}
	if digest.Activity.Title != "Detectives" || len(digest.Activity.Steps) != 1 {
		t.Errorf("Unexpected activity: %+v", digest.Activity)
	}
}

func TestFallback(t *testing.T) {
	a := Fallback("Estafas por SMS", "https://example.com/sms")
	b := Fallback("Estafas por SMS", "https://example.com/sms")

	if a.Digest != "Resumen: Estafas por SMS. (Ver fuente: https://example.com/sms)" {
		t.Errorf("Unexpected fallback digest: %s", a.Digest)
	}
	if a.RiskLevel != article.RiskMedium {
		t.Errorf("Expected risk 'medium', got '%s'", a.RiskLevel)
	}
	if len(a.Kickstarters) != 2 || a.Activity.Title != "Detectives anti-phishing" || len(a.Activity.Steps) != 3 {
		t.Errorf("Unexpected fallback content: %+v", a)
	}
	if a.Digest != b.Digest || a.Kickstarters[0] != b.Kickstarters[0] {
		t.Error("Expected fallback to be deterministic")
	}
}
