package pricing

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// CategoryRule classifies an item description into a pricing category by
// substring keyword match. Rules are evaluated in order; the terminal
// General rule has no keywords and matches everything.
type CategoryRule struct {
	Name              string   `yaml:"name"`
	Keywords          []string `yaml:"keywords"`
	BasePrice         float64  `yaml:"basePrice"`
	PremiumKeywords   []string `yaml:"premiumKeywords"`
	PremiumMultiplier float64  `yaml:"premiumMultiplier"`
	AgeDecayFactor    float64  `yaml:"ageDecayFactor"`
}

// Matches reports whether any of the rule's keywords occurs in the
// lower-cased text. A rule without keywords matches unconditionally.
func (r CategoryRule) Matches(text string) bool {
	if len(r.Keywords) == 0 {
		return true
	}
	for _, kw := range r.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

type ruleFile struct {
	Categories []CategoryRule `yaml:"categories"`
}

// LoadCategoryRules parses a YAML rule table. The last rule must be a
// catch-all (no keywords) so classification can never fail.
func LoadCategoryRules(data []byte) ([]CategoryRule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse category rules: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("category rule table is empty")
	}
	last := f.Categories[len(f.Categories)-1]
	if len(last.Keywords) != 0 {
		return nil, fmt.Errorf("last category rule %q must be a catch-all", last.Name)
	}
	return f.Categories, nil
}

// DefaultCategoryRules returns the built-in rule table.
func DefaultCategoryRules() []CategoryRule {
	rules, err := LoadCategoryRules(rulesYAML)
	if err != nil {
		// The embedded table is validated by tests; failing to parse it is
		// a build defect, not a runtime condition.
		panic(err)
	}
	return rules
}
