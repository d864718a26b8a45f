// Package llm provides optional language-model price estimators. Absence
// of an API key is a valid state, not an error: the pipeline simply moves
// on to the heuristic fallback.
package llm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lithammer/dedent"

	"github.com/bluberry-app/pricing/internal/pricing"
)

// pricePattern is the only shape of model output we trust: a dollar sign
// followed by digits. Anything else is discarded in favor of the next
// fallback.
var pricePattern = regexp.MustCompile(`^\$\d+$`)

var pricePrompt = dedent.Dedent(`
	Estimate a fair resale price in USD for a used item.

	Item: %s
	Description: %s
	Condition: %s
	Known issues: %s

	Guidance on realistic ranges:
	- Smartphones: $50-$800 depending on model and age
	- Laptops and computers: $100-$1500
	- TVs and monitors: $50-$600
	- Furniture: $30-$500
	- Clothing and shoes: $10-$150
	- Jewelry and watches: $20-$2000
	- General household items: $5-$100

	Respond with a single price like "$75". No ranges, no explanations, no other text.`)

// buildPrompt fills the price prompt, substituting neutral values for
// absent optional fields.
func buildPrompt(item pricing.ItemDescriptor) string {
	return fmt.Sprintf(pricePrompt,
		orUnknown(item.Name),
		item.Description,
		orUnknown(item.Condition),
		orNone(item.Issues),
	)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}

// SanitizePrice cleans raw model output and validates it as a bare dollar
// price. Returns "" when the output is unusable.
func SanitizePrice(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	s = strings.TrimSuffix(s, ".")
	if !pricePattern.MatchString(s) {
		return ""
	}
	return s
}
