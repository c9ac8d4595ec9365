// Package store loads the category rule set from its YAML or JSON resource.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/stmt-csv/internal/logging"
	"fjacquet/stmt-csv/internal/models"
	"fjacquet/stmt-csv/internal/parsererror"

	"gopkg.in/yaml.v3"
)

const expectedRulesFormat = "mapping of category name to keyword list, or a 'categories' list of {name, keywords}"

// RuleLoader loads the category rule set for a run.
type RuleLoader interface {
	LoadRules() (models.CategoryRuleSet, error)
}

// RuleStore reads the rule set from a file located on disk.
type RuleStore struct {
	RulesFile string
	logger    logging.Logger
}

// NewRuleStore creates a store for the given rules file. A relative name is
// searched for in the standard locations, see FindConfigFile.
func NewRuleStore(rulesFile string, logger logging.Logger) *RuleStore {
	if logger == nil {
		logger = logging.Discard()
	}
	return &RuleStore{
		RulesFile: rulesFile,
		logger:    logger,
	}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *RuleStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err != nil {
			return "", err
		}
		return filename, nil
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "stmt-csv", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	return "", fmt.Errorf("%s: %w", filename, os.ErrNotExist)
}

// LoadRules reads and parses the rules file. Missing, unreadable and
// malformed files are all errors.
func (s *RuleStore) LoadRules() (models.CategoryRuleSet, error) {
	filename := s.RulesFile
	if filename == "" {
		filename = "categories.yaml"
	}

	filePath, err := s.FindConfigFile(filename)
	if err != nil {
		return nil, fmt.Errorf("rules file not found: %w", err)
	}

	data, err := os.ReadFile(filePath) // #nosec G304 -- path comes from user configuration
	if err != nil {
		return nil, fmt.Errorf("error reading rules file: %w", err)
	}

	rules, err := ParseRules(data, filePath)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loaded category rules",
		logging.Field{Key: logging.FieldFile, Value: filePath},
		logging.Field{Key: logging.FieldCount, Value: len(rules)},
		logging.Field{Key: "keywords", Value: rules.KeywordCount()})
	s.logger.Debug("Category precedence",
		logging.Field{Key: logging.FieldCategory, Value: rules.Names()})
	return rules, nil
}

// ParseRules parses a rule set, keeping declaration order. Accepted shapes:
//
//	Dining: [coffee, pizza]             # mapping form (JSON objects too)
//	categories: [{name: Dining, keywords: [coffee]}]
//	- {name: Dining, keywords: [coffee]}
func ParseRules(data []byte, path string) (models.CategoryRuleSet, error) {
	invalid := func(msg string) error {
		return &parsererror.InvalidFormatError{
			FilePath:       path,
			ExpectedFormat: expectedRulesFormat,
			Msg:            msg,
		}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, invalid(err.Error())
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, invalid("file is empty")
	}

	root := doc.Content[0]
	switch {
	case root.Kind == yaml.SequenceNode:
		return decodeRuleList(root, invalid)
	case root.Kind == yaml.MappingNode && isListForm(root):
		return decodeRuleList(root.Content[1], invalid)
	case root.Kind == yaml.MappingNode:
		return decodeRuleMapping(root, invalid)
	default:
		return nil, invalid("top level is neither a mapping nor a list")
	}
}

// isListForm reports whether the mapping is {categories: [ {..}, ... ]}.
func isListForm(root *yaml.Node) bool {
	if len(root.Content) != 2 || root.Content[0].Value != "categories" {
		return false
	}
	list := root.Content[1]
	if list.Kind != yaml.SequenceNode {
		return false
	}
	for _, item := range list.Content {
		if item.Kind != yaml.MappingNode {
			return false
		}
	}
	return true
}

func decodeRuleMapping(root *yaml.Node, invalid func(string) error) (models.CategoryRuleSet, error) {
	seen := make(map[string]bool, len(root.Content)/2)
	rules := make(models.CategoryRuleSet, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		name := strings.TrimSpace(key.Value)
		if key.Kind != yaml.ScalarNode || name == "" {
			return nil, invalid(fmt.Sprintf("line %d: category name must be a non-empty string", key.Line))
		}
		if seen[name] {
			return nil, invalid(fmt.Sprintf("line %d: category %s is declared twice", key.Line, name))
		}
		seen[name] = true

		keywords, err := decodeKeywords(value)
		if err != nil {
			return nil, invalid(fmt.Sprintf("line %d: category %s: %v", value.Line, name, err))
		}
		rules = append(rules, models.CategoryRule{Name: name, Keywords: keywords})
	}
	return rules, nil
}

func decodeRuleList(list *yaml.Node, invalid func(string) error) (models.CategoryRuleSet, error) {
	var decoded []models.CategoryRule
	if err := list.Decode(&decoded); err != nil {
		return nil, invalid(err.Error())
	}

	seen := make(map[string]bool, len(decoded))
	rules := make(models.CategoryRuleSet, 0, len(decoded))
	for i, rule := range decoded {
		rule.Name = strings.TrimSpace(rule.Name)
		if rule.Name == "" {
			return nil, invalid(fmt.Sprintf("category #%d has no name", i+1))
		}
		if seen[rule.Name] {
			return nil, invalid(fmt.Sprintf("category %s is declared twice", rule.Name))
		}
		seen[rule.Name] = true
		rules = append(rules, rule)
	}
	return rules, nil
}

var errNotKeywordList = errors.New("keywords must be a list of strings")

func decodeKeywords(value *yaml.Node) ([]string, error) {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil, nil
	}
	if value.Kind != yaml.SequenceNode {
		return nil, errNotKeywordList
	}
	keywords := make([]string, 0, len(value.Content))
	for _, item := range value.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, errNotKeywordList
		}
		keywords = append(keywords, item.Value)
	}
	return keywords, nil
}
