package store

import (
	"fjacquet/stmt-csv/internal/models"
)

// MockRuleStore is a RuleLoader for tests.
type MockRuleStore struct {
	Rules models.CategoryRuleSet
	Err   error
	Calls int
}

// LoadRules returns the configured rules or error.
func (m *MockRuleStore) LoadRules() (models.CategoryRuleSet, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Rules, nil
}
