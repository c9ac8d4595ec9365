package categorizer

import (
	"strings"

	"fjacquet/stmt-csv/internal/models"
)

// keywordRule is a category with its keywords lower-cased once at load time.
type keywordRule struct {
	name     string
	keywords []string // lower-cased, never blank
	original []string // as declared, for diagnostics
}

func compileRules(rules models.CategoryRuleSet) ([]keywordRule, int) {
	compiled := make([]keywordRule, 0, len(rules))
	dropped := 0
	for _, rule := range rules {
		kr := keywordRule{name: rule.Name}
		for _, keyword := range rule.Keywords {
			lower := strings.ToLower(keyword)
			if strings.TrimSpace(lower) == "" {
				// A blank keyword would match nearly everything.
				dropped++
				continue
			}
			kr.keywords = append(kr.keywords, lower)
			kr.original = append(kr.original, keyword)
		}
		compiled = append(compiled, kr)
	}
	return compiled, dropped
}

// match scans categories in declaration order, then keywords in declaration
// order, and returns the first keyword found in the lower-cased description.
func match(rules []keywordRule, description string) (Match, bool) {
	lower := strings.ToLower(description)
	if lower == "" {
		return Match{}, false
	}
	for _, rule := range rules {
		for i, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return Match{Category: rule.name, Keyword: rule.original[i]}, true
			}
		}
	}
	return Match{}, false
}
