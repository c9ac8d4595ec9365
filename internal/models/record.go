package models

import (
	"fmt"
	"strings"
	"time"

	"fjacquet/stmt-csv/internal/dateutils"

	"github.com/shopspring/decimal"
)

// Record is a normalized card transaction ready for output.
type Record struct {
	Description string          `json:"description" yaml:"description"`
	Date        time.Time       `json:"date" yaml:"date"`
	Category    string          `json:"category" yaml:"category"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount"`
}

// Validate checks the output invariants of a record.
func (r Record) Validate() error {
	if r.Date.IsZero() {
		return fmt.Errorf("record %q has no date", r.Description)
	}
	if strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("record %q has no category", r.Description)
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("record %q has non-positive amount %s", r.Description, r.Amount.String())
	}
	return nil
}

// ISODate returns the record date as YYYY-MM-DD.
func (r Record) ISODate() string {
	return dateutils.ToISODate(r.Date)
}

// FormattedAmount returns the amount with two decimal places.
func (r Record) FormattedAmount() string {
	return r.Amount.StringFixed(2)
}

// CSVRow renders the record as [description, date, category, amount].
func (r Record) CSVRow() []string {
	return []string{r.Description, r.ISODate(), r.Category, r.FormattedAmount()}
}

// SameTransaction reports whether two records look like the same transaction:
// same date, same amount and the same description ignoring case.
func (r Record) SameTransaction(other Record) bool {
	return r.Date.Equal(other.Date) &&
		r.Amount.Equal(other.Amount) &&
		strings.EqualFold(strings.TrimSpace(r.Description), strings.TrimSpace(other.Description))
}
