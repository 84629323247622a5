package classifier

import (
	"fmt"
	"strings"

	"servicebot/internal/catalog"
)

// DefaultPromptTemplate is used when no template file is configured.
// {{CATEGORIES}} and {{MESSAGE}} are substituted by BuildPrompt.
const DefaultPromptTemplate = `Analyze this customer service message and categorize it.

Categories available:
{{CATEGORIES}}

Message: "{{MESSAGE}}"

Respond with only a JSON object like this:
{
  "category": "authentication",
  "confidence": 0.95,
  "reasoning": "User mentions login issues"
}`

// BuildPrompt renders template for message. An empty template selects DefaultPromptTemplate.
func BuildPrompt(template, message string, cat *catalog.Catalog) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultPromptTemplate
	}
	var b strings.Builder
	for i, c := range cat.All() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s: %s", c.Key, c.Description)
	}
	prompt := strings.ReplaceAll(template, "{{CATEGORIES}}", b.String())
	return strings.ReplaceAll(prompt, "{{MESSAGE}}", message)
}
