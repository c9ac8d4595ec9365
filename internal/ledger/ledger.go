// Package ledger accumulates normalized records from any number of sources
// and releases them once, ordered by date.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"fjacquet/stmt-csv/internal/dateutils"
	"fjacquet/stmt-csv/internal/logging"
	"fjacquet/stmt-csv/internal/models"
)

// ErrDrained is returned when a ledger is used after Drain.
var ErrDrained = errors.New("ledger already drained")

// DateRange represents a date range with start and end dates
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String returns the date range in the format "YYYY-MM-DD_YYYY-MM-DD"
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s_%s", dateutils.ToISODate(dr.Start), dateutils.ToISODate(dr.End))
}

// Merge combines this date range with another, returning the overall range
func (dr DateRange) Merge(other DateRange) DateRange {
	start := dr.Start
	end := dr.End

	if dr.Start.IsZero() {
		start = other.Start
	} else if !other.Start.IsZero() && other.Start.Before(start) {
		start = other.Start
	}

	if dr.End.IsZero() {
		end = other.End
	} else if !other.End.IsZero() && other.End.After(end) {
		end = other.End
	}

	return DateRange{Start: start, End: end}
}

// Ledger is the ordered accumulator of a run. Records are kept in arrival
// order and sorted once, stably and by date only, when drained. Equal dates
// therefore keep their arrival order. It is not safe for concurrent use.
type Ledger struct {
	records []models.Record
	span    DateRange
	drained bool
	logger  logging.Logger
}

// New creates an empty Ledger.
func New(logger logging.Logger) *Ledger {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Ledger{
		logger: logger.WithField(logging.FieldComponent, "ledger"),
	}
}

// Insert adds a record. Duplicates are kept as separate entries; records
// without a date or category, or with a non-positive amount, are refused.
func (l *Ledger) Insert(record models.Record) error {
	if l.drained {
		return ErrDrained
	}
	if err := record.Validate(); err != nil {
		return err
	}
	l.records = append(l.records, record)
	l.span = l.span.Merge(DateRange{Start: record.Date, End: record.Date})
	return nil
}

// Len returns the number of records inserted so far.
func (l *Ledger) Len() int {
	return len(l.records)
}

// DateRange returns the earliest and latest record dates seen.
func (l *Ledger) DateRange() DateRange {
	return l.span
}

// Drain returns all records in ascending date order, ties in insertion
// order, and closes the ledger. It can be called once.
func (l *Ledger) Drain() ([]models.Record, error) {
	if l.drained {
		return nil, ErrDrained
	}
	l.drained = true

	out := l.records
	l.records = nil
	SortByDate(out)

	if n := l.logDuplicates(out); n > 0 {
		l.logger.Warn("Found potential duplicate transactions, keeping all of them",
			logging.Field{Key: logging.FieldCount, Value: n})
	}

	l.logger.Debug("Ledger drained",
		logging.Field{Key: logging.FieldCount, Value: len(out)},
		logging.Field{Key: logging.FieldDateRange, Value: l.span.String()})
	return out, nil
}

// SortByDate stably sorts records by date alone.
func SortByDate(records []models.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}

// logDuplicates warns about records that look like the same transaction.
// records must already be sorted by date.
func (l *Ledger) logDuplicates(records []models.Record) int {
	duplicates := 0
	for start := 0; start < len(records); {
		end := start + 1
		for end < len(records) && records[end].Date.Equal(records[start].Date) {
			end++
		}

		group := records[start:end]
		for i, r := range group {
			for _, earlier := range group[:i] {
				if !r.SameTransaction(earlier) {
					continue
				}
				duplicates++
				l.logger.Warn("Potential duplicate transaction",
					logging.Field{Key: logging.FieldDate, Value: r.ISODate()},
					logging.Field{Key: logging.FieldAmount, Value: r.FormattedAmount()},
					logging.Field{Key: logging.FieldDescription, Value: r.Description})
				break
			}
		}
		start = end
	}
	return duplicates
}
