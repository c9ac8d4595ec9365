package models

import (
	"fjacquet/stmt-csv/internal/logging"
)

// CategorizationStats tracks how descriptions were classified during a run
type CategorizationStats struct {
	Total       int            // Descriptions classified
	Matched     int            // Classified through a keyword
	Defaulted   int            // Fell back to the default category
	PerCategory map[string]int // Classifications per category name
}

// NewCategorizationStats creates an empty CategorizationStats.
func NewCategorizationStats() *CategorizationStats {
	return &CategorizationStats{PerCategory: make(map[string]int)}
}

// Add records one classification.
func (cs *CategorizationStats) Add(category string, matched bool) {
	if cs.PerCategory == nil {
		cs.PerCategory = make(map[string]int)
	}
	cs.Total++
	if matched {
		cs.Matched++
	} else {
		cs.Defaulted++
	}
	cs.PerCategory[category]++
}

// GetMatchRate returns the share of keyword matches as a percentage
func (cs CategorizationStats) GetMatchRate() float64 {
	if cs.Total == 0 {
		return 0.0
	}
	return float64(cs.Matched) / float64(cs.Total) * 100.0
}

// LogSummary logs a summary of categorization statistics
func (cs CategorizationStats) LogSummary(logger logging.Logger) {
	if logger == nil {
		return
	}

	logger.Info("Categorization summary",
		logging.Field{Key: "total", Value: cs.Total},
		logging.Field{Key: "matched", Value: cs.Matched},
		logging.Field{Key: "defaulted", Value: cs.Defaulted},
		logging.Field{Key: "match_rate", Value: cs.GetMatchRate()},
	)
}
