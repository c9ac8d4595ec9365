// Package models provides the data structures used throughout the application.
package models

// CategoryRule is one category of the rule set with its ordered keywords.
type CategoryRule struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// CategoryRuleSet is the ordered list of category rules. Declaration order
// is match precedence.
type CategoryRuleSet []CategoryRule

// Names returns the category names in declaration order.
func (rs CategoryRuleSet) Names() []string {
	names := make([]string, 0, len(rs))
	for _, r := range rs {
		names = append(names, r.Name)
	}
	return names
}

// KeywordCount returns the number of keywords across all categories.
func (rs CategoryRuleSet) KeywordCount() int {
	n := 0
	for _, r := range rs {
		n += len(r.Keywords)
	}
	return n
}
