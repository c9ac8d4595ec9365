// Package pipeline drives a statement run: it loads the rule set, streams
// every source through the normalizer into the ledger and hands the ordered
// result to the output sink.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fjacquet/stmt-csv/internal/categorizer"
	"fjacquet/stmt-csv/internal/common"
	"fjacquet/stmt-csv/internal/ledger"
	"fjacquet/stmt-csv/internal/logging"
	"fjacquet/stmt-csv/internal/models"
	"fjacquet/stmt-csv/internal/normalizer"
	"fjacquet/stmt-csv/internal/parsererror"
	"fjacquet/stmt-csv/internal/source"
	"fjacquet/stmt-csv/internal/store"

	"github.com/google/uuid"
)

// State is a step of a run.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateStreaming
	StateFinalizing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options are the collaborators of a Driver. Source, Rules and Sink are
// required.
type Options struct {
	Source          source.Provider
	Rules           store.RuleLoader
	Sink            common.RecordSink
	Reader          common.RowReader
	DefaultCategory string
	ExpenseSign     string
	Logger          logging.Logger
}

// Result summarizes a completed run.
type Result struct {
	RunID          string
	Sources        []string
	SkippedSources []string
	Rows           int
	Accepted       int
	Rejected       map[string]int
	Output         string
	Records        []models.Record
	Categorization models.CategorizationStats
}

// RejectedTotal returns the number of rows rejected for any reason.
func (r *Result) RejectedTotal() int {
	total := 0
	for _, n := range r.Rejected {
		total += n
	}
	return total
}

// Driver runs the pipeline once per call to Run.
type Driver struct {
	opts   Options
	logger logging.Logger
	state  State
}

// NewDriver creates a Driver. A nil Reader reads comma separated UTF-8.
func NewDriver(opts Options) *Driver {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Reader == nil {
		opts.Reader = common.NewCSVRowReader(',', nil, opts.Logger)
	}
	if opts.ExpenseSign == "" {
		opts.ExpenseSign = models.ExpenseSignNegative
	}
	return &Driver{opts: opts, logger: opts.Logger}
}

// State returns the state reached by the last run.
func (d *Driver) State() State {
	return d.state
}

// sourceTally holds the counters of a single source until it has been read
// completely.
type sourceTally struct {
	rows     int
	rejected map[string]int
	records  []lineRecord
}

type lineRecord struct {
	line   int
	record models.Record
}

// Run executes the pipeline. Startup failures return a
// *parsererror.StartupError and nothing is written. Unreadable sources are
// logged and skipped. Cancelling ctx aborts the run before any output.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:    uuid.NewString(),
		Rejected: make(map[string]int, len(parsererror.Reasons)),
		Output:   d.opts.Sink.Destination(),
	}
	logger := d.logger.WithField(logging.FieldRunID, result.RunID)

	d.transition(logger, StateLoading)
	rules, err := d.opts.Rules.LoadRules()
	if err != nil {
		logger.WithError(err).Error("Failed to load category rules")
		return nil, &parsererror.StartupError{Stage: "rules", Err: err}
	}
	cat := categorizer.New(rules, d.opts.DefaultCategory, logger)
	norm := normalizer.New(cat, d.opts.ExpenseSign)

	paths, err := d.opts.Source.Sources()
	if err != nil {
		logger.WithError(err).Error("Failed to resolve input sources",
			logging.F(logging.FieldSource, d.opts.Source.Describe()))
		return nil, &parsererror.StartupError{Stage: "sources", Err: err}
	}
	if len(paths) == 0 {
		return nil, &parsererror.StartupError{Stage: "sources", Err: source.ErrNoSources}
	}
	logger.Info("Resolved input sources",
		logging.F(logging.FieldSource, d.opts.Source.Describe()),
		logging.F(logging.FieldCount, len(paths)))

	d.transition(logger, StateStreaming)
	book := ledger.New(logger)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tally, err := d.readSource(ctx, logger, norm, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			srcErr := &parsererror.SourceError{Path: path, Err: err}
			logger.WithError(srcErr).Warn("Skipping unreadable source",
				logging.F(logging.FieldFile, path))
			result.SkippedSources = append(result.SkippedSources, path)
			continue
		}

		for _, lr := range tally.records {
			err := book.Insert(lr.record)
			if errors.Is(err, ledger.ErrDrained) {
				return nil, fmt.Errorf("inserting record: %w", err)
			}
			if err != nil {
				rejected := parsererror.Reject(parsererror.ErrMalformedOrHeader, err)
				d.logRejection(logger, path, lr.line, rejected)
				tally.rejected[parsererror.ReasonCode(rejected)]++
				continue
			}
			result.Accepted++
		}
		result.Sources = append(result.Sources, path)
		result.Rows += tally.rows
		for reason, n := range tally.rejected {
			result.Rejected[reason] += n
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.transition(logger, StateFinalizing)
	records, err := book.Drain()
	if err != nil {
		return nil, fmt.Errorf("draining ledger: %w", err)
	}
	if err := d.opts.Sink.WriteRecords(records); err != nil {
		return nil, fmt.Errorf("writing output %s: %w", result.Output, err)
	}
	result.Records = records
	result.Categorization = cat.Stats()

	d.transition(logger, StateDone)
	result.Categorization.LogSummary(logger)
	logger.Info("Run completed",
		logging.F(logging.FieldSources, len(result.Sources)),
		logging.F(logging.FieldSkipped, len(result.SkippedSources)),
		logging.F(logging.FieldRows, result.Rows),
		logging.F(logging.FieldAccepted, result.Accepted),
		logging.F(logging.FieldRejected, result.RejectedTotal()),
		logging.F(logging.FieldDateRange, book.DateRange().String()),
		logging.F(logging.FieldOutputFile, result.Output),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))

	return result, nil
}

func (d *Driver) transition(logger logging.Logger, next State) {
	logger.Debug("Pipeline state change",
		logging.F(logging.FieldPrevState, d.state.String()),
		logging.F(logging.FieldState, next.String()))
	d.state = next
}

// readSource normalizes every row of one source. Accepted records are only
// returned once the whole source has been read.
func (d *Driver) readSource(ctx context.Context, logger logging.Logger, norm *normalizer.Normalizer, path string) (*sourceTally, error) {
	tally := &sourceTally{rejected: make(map[string]int)}
	logger.Info("Processing source", logging.F(logging.FieldInputFile, path))

	err := d.opts.Reader.ReadRows(path, func(row common.Row) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		tally.rows++

		var (
			rec models.Record
			err error
		)
		if row.Err != nil {
			err = parsererror.Reject(parsererror.ErrMalformedOrHeader, row.Err)
		} else {
			rec, err = norm.Normalize(row.Fields)
		}
		if err != nil {
			d.logRejection(logger, path, row.Line, err)
			tally.rejected[parsererror.ReasonCode(err)]++
			return nil
		}

		tally.records = append(tally.records, lineRecord{line: row.Line, record: rec})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Source processed",
		logging.F(logging.FieldInputFile, path),
		logging.F(logging.FieldRows, tally.rows),
		logging.F(logging.FieldAccepted, len(tally.records)))
	return tally, nil
}

func (d *Driver) logRejection(logger logging.Logger, path string, line int, err error) {
	var rejected *parsererror.RowRejectedError
	if errors.As(err, &rejected) {
		rejected.Source = path
		rejected.Line = line
		err = rejected
	}

	fields := []logging.Field{
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldLine, line),
		logging.F(logging.FieldReason, parsererror.ReasonCode(err)),
	}
	switch {
	case errors.Is(err, parsererror.ErrInvalidAmount), errors.Is(err, parsererror.ErrInvalidDate):
		logger.WithError(err).Warn("Skipping row", fields...)
	default:
		logger.WithError(err).Debug("Skipping row", fields...)
	}
}
