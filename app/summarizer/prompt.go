package summarizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/cyberguardian/app/article"
)

const systemPrompt = `Eres un curador de seguridad digital para familias. Lees un artículo sobre seguridad digital con los datos proporcionados, incluido el enlace completo.
Si el artículo no está en español, tradúcelo primero. Después de leerlo con atención:
Devuelve SOLO JSON válido con esta forma:
{
  "digest": string,               // resumen claro y no alarmista para padres (3-5 líneas)
  "kickstarters": [string, ...],  // 3-5 preguntas breves para adolescentes
  "activity": {                   // mini actividad lúdica para niños de 7 a 11 años
    "title": string,
    "steps": [string, ...]
  },
  "risk_level": "low" | "medium" | "high"
}
Criterios:
- Si el artículo trata de fraude o estafa (phishing), el riesgo tiende a "medium" o "high" según la urgencia y el alcance.
- Lenguaje empático, no técnico.
- No inventes datos: si faltan detalles, di "según la nota".`

// BuildPrompt renders the article fields the model receives.
func BuildPrompt(item article.QueueItem) string {
	published := ""
	if item.Published != nil {
		published = item.Published.Format(time.RFC3339)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", item.Title)
	fmt.Fprintf(&sb, "URL: %s\n", item.URL)
	fmt.Fprintf(&sb, "Source: %s\n", item.Source)
	fmt.Fprintf(&sb, "Summary: %s\n", item.Summary)
	fmt.Fprintf(&sb, "Category: %s\n", item.Category)
	fmt.Fprintf(&sb, "Published: %s\n", published)
	return sb.String()
}
