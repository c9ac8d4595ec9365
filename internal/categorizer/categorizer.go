// Package categorizer assigns a category to a transaction description by
// case-insensitive keyword matching against an ordered rule set.
package categorizer

import (
	"strings"
	"sync"

	"fjacquet/stmt-csv/internal/logging"
	"fjacquet/stmt-csv/internal/models"
)

// Match describes which rule classified a description.
type Match struct {
	Category string
	Keyword  string
}

// Categorizer classifies descriptions. The rule set is fixed at construction.
type Categorizer struct {
	rules           []keywordRule
	defaultCategory string
	logger          logging.Logger

	mu    sync.Mutex
	stats *models.CategorizationStats
}

// New builds a Categorizer from a rule set. Keywords are lower-cased once;
// blank keywords are dropped. An empty defaultCategory falls back to
// models.CategoryUncategorized.
func New(rules models.CategoryRuleSet, defaultCategory string, logger logging.Logger) *Categorizer {
	if logger == nil {
		logger = logging.Discard()
	}
	if strings.TrimSpace(defaultCategory) == "" {
		defaultCategory = models.CategoryUncategorized
	}

	compiled, dropped := compileRules(rules)
	if dropped > 0 {
		logger.Warn("Ignoring blank keywords in rule set",
			logging.Field{Key: logging.FieldCount, Value: dropped})
	}

	return &Categorizer{
		rules:           compiled,
		defaultCategory: defaultCategory,
		logger:          logger.WithField(logging.FieldComponent, "categorizer"),
		stats:           models.NewCategorizationStats(),
	}
}

// Match reports the category and keyword of the first matching rule, without
// side effects.
func (c *Categorizer) Match(description string) (Match, bool) {
	return match(c.rules, description)
}

// Classify returns the category for description, or the default category
// when nothing matches. Any string, including the empty one, yields a
// category.
func (c *Categorizer) Classify(description string) string {
	m, ok := c.Match(description)
	category := m.Category
	if ok {
		c.logger.Debug("Matched description",
			logging.Field{Key: logging.FieldDescription, Value: description},
			logging.Field{Key: logging.FieldKeyword, Value: m.Keyword},
			logging.Field{Key: logging.FieldCategory, Value: category})
	} else {
		category = c.defaultCategory
		c.logger.Debug("No rule matched, using default category",
			logging.Field{Key: logging.FieldDescription, Value: description},
			logging.Field{Key: logging.FieldCategory, Value: category})
	}

	c.mu.Lock()
	c.stats.Add(category, ok)
	c.mu.Unlock()

	return category
}

// DefaultCategory returns the category used when no rule matches.
func (c *Categorizer) DefaultCategory() string {
	return c.defaultCategory
}

// Categories returns the category names in precedence order.
func (c *Categorizer) Categories() []string {
	names := make([]string, 0, len(c.rules))
	for _, r := range c.rules {
		names = append(names, r.name)
	}
	return names
}

// Stats returns a snapshot of the classifications made so far.
func (c *Categorizer) Stats() models.CategorizationStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := *c.stats
	snapshot.PerCategory = make(map[string]int, len(c.stats.PerCategory))
	for k, v := range c.stats.PerCategory {
		snapshot.PerCategory[k] = v
	}
	return snapshot
}
