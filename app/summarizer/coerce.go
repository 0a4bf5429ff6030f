package summarizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lysyi3m/cyberguardian/app/article"
)

var ErrMalformedResponse = errors.New("malformed summarizer response")

// Spanish labels are accepted because the model is prompted in Spanish and
// sometimes answers with them.
var riskAliases = map[string]article.RiskLevel{
	"low":    article.RiskLow,
	"medium": article.RiskMedium,
	"high":   article.RiskHigh,
	"bajo":   article.RiskLow,
	"medio":  article.RiskMedium,
	"alto":   article.RiskHigh,
}

type response struct {
	Digest       string   `json:"digest"`
	Kickstarters []string `json:"kickstarters"`
	Activity     *struct {
		Title string   `json:"title"`
		Steps []string `json:"steps"`
	} `json:"activity"`
	RiskLevel string `json:"risk_level"`
}

// Fallback is the digest used whenever the model output cannot be used.
// It depends only on the article's title and URL.
func Fallback(title, url string) article.Digest {
	return article.Digest{
		Digest:       fmt.Sprintf("Resumen: %s. (Ver fuente: %s)", title, url),
		Kickstarters: []string{"¿Qué señales te harían dudar?", "¿Con quién pedirías ayuda?"},
		Activity: article.Activity{
			Title: "Detectives anti-phishing",
			Steps: []string{"Ver remitente", "Revisar enlace", "No compartir claves"},
		},
		RiskLevel: article.RiskMedium,
	}
}

// Coerce turns raw model output into a digest. An unknown risk label
// becomes medium; anything else missing is an error.
func Coerce(raw string) (article.Digest, error) {
	var resp response
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		return article.Digest{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	digest := article.Digest{
		Digest:       strings.TrimSpace(resp.Digest),
		Kickstarters: trimAll(resp.Kickstarters),
	}
	if resp.Activity != nil {
		digest.Activity = article.Activity{
			Title: strings.TrimSpace(resp.Activity.Title),
			Steps: trimAll(resp.Activity.Steps),
		}
	}

	switch {
	case digest.Digest == "":
		return article.Digest{}, fmt.Errorf("%w: missing digest", ErrMalformedResponse)
	case len(digest.Kickstarters) == 0:
		return article.Digest{}, fmt.Errorf("%w: missing kickstarters", ErrMalformedResponse)
	case digest.Activity.Title == "":
		return article.Digest{}, fmt.Errorf("%w: missing activity", ErrMalformedResponse)
	}

	risk, ok := riskAliases[strings.ToLower(strings.TrimSpace(resp.RiskLevel))]
	if !ok {
		risk = article.RiskMedium
	}
	digest.RiskLevel = risk

	return digest, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
