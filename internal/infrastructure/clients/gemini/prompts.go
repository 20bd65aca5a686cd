package gemini

import (
	"fmt"
	"strings"

	"github.com/dermatologica/assistant/internal/domain/entities"
)

const suggestionPromptTemplate = `For the condition "%s", suggest 2 to 4 compounded dermatological formulas.
Your audience is pharmacists and physicians, so use appropriate technical terminology.
%s
Return a single JSON object with this schema:
{
  "summary": string (a concise summary of the condition and the overall treatment approach),
  "formulas": [
    {
      "name": string (e.g. "Moisturizing Cream with Urea and Alpha-Bisabolol"),
      "ingredients": string[] (each ingredient with its concentration, ending with the vehicle and quantity, e.g. "Urea 10%%", "Cream base q.s. 100g"),
      "instructions": string (detailed patient-facing usage instructions),
      "averageValue": string (optional estimated price range)
    }
  ]
}
Return ONLY the JSON object, with no extra text or formatting such as ` + "```json" + `.`

func buildSuggestionPrompt(condition string, products []*entities.Product) string {
	var stockPart string
	if len(products) > 0 {
		var lines []string
		for _, p := range products {
			line := "- " + p.Name
			if p.Description != "" {
				line += ": " + p.Description
			}
			lines = append(lines, line)
		}
		stockPart = fmt.Sprintf(
			"Consider the following products available in stock when composing the formulas. Prefer them where applicable and mention them in the ingredients section if possible:\n%s\n",
			strings.Join(lines, "\n"),
		)
	}
	return fmt.Sprintf(suggestionPromptTemplate, condition, stockPart)
}

const iconPromptTemplate = `Create a minimalist, clean, single-color vector icon representing a dermatological formula for '%s'. The icon should be simple, symbolic and easily recognizable, suitable for a professional medical or pharmaceutical application. The icon must be a single color: indigo (#4F46E5). The background must be transparent. Output as a PNG.`

func buildIconPrompt(formulaName string) string {
	return fmt.Sprintf(iconPromptTemplate, formulaName)
}
