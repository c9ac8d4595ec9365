package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/stmt-csv/internal/common"
	"fjacquet/stmt-csv/internal/logging"
	"fjacquet/stmt-csv/internal/models"
	"fjacquet/stmt-csv/internal/parsererror"
	"fjacquet/stmt-csv/internal/source"
	"fjacquet/stmt-csv/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules() models.CategoryRuleSet {
	return models.CategoryRuleSet{
		{Name: "Dining", Keywords: []string{"coffee", "restaurant"}},
		{Name: "Groceries", Keywords: []string{"grocery"}},
	}
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func newDriver(paths []string, sink common.RecordSink, logger logging.Logger) *Driver {
	return NewDriver(Options{
		Source: source.StaticProvider(paths),
		Rules:  &store.MockRuleStore{Rules: testRules()},
		Sink:   sink,
		Logger: logger,
	})
}

func TestRun_TwoSources(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.csv", "1,2,20230105,20230106,-42.50,Coffee Shop\n")
	b := writeSource(t, dir, "b.csv", "1,2,20230101,20230102,15.00,Grocery Store\n")

	sink := &common.MemorySink{}
	d := newDriver([]string{a, b}, sink, nil)

	result, err := d.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, sink.Writes)
	require.Len(t, sink.Records, 1)
	assert.Equal(t, []string{"Coffee Shop", "2023-01-05", "Dining", "42.50"}, sink.Records[0].CSVRow())

	assert.Equal(t, []string{a, b}, result.Sources)
	assert.Empty(t, result.SkippedSources)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 1, result.Accepted)
	assert.Equal(t, 1, result.Rejected["credit_not_expense"])
	assert.Equal(t, 1, result.RejectedTotal())
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "memory", result.Output)
	assert.Equal(t, StateDone, d.State())
}

func TestRun_OrdersAcrossSources(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.csv",
		"1,2,20230110,20230111,-5.00,Restaurant A\n"+
			"2,2,20230103,20230104,-7.00,Bakery\n")
	b := writeSource(t, dir, "b.csv",
		"1,2,20230110,20230111,-9.00,Coffee B\n"+
			"2,2,20230101,20230102,-1.00,Grocery C\n")

	sink := &common.MemorySink{}
	_, err := newDriver([]string{a, b}, sink, nil).Run(context.Background())
	require.NoError(t, err)

	var got []string
	for _, r := range sink.Records {
		got = append(got, r.Description)
	}
	assert.Equal(t, []string{"Grocery C", "Bakery", "Restaurant A", "Coffee B"}, got)
	assert.Equal(t, models.CategoryUncategorized, sink.Records[1].Category)
}

func TestRun_RejectsBadRows(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "jan.csv",
		"Item #,Card #,Transaction Date,Posting Date,Amount,Description\n"+
			"1,2,20230105,-9.00\n"+
			"1,2,20230105,20230106,abc,Coffee\n"+
			"1,2,2023-01-05,20230106,-3.00,Coffee\n"+
			"1,2,20230105,20230106,-3.00,Coffee\n")

	logger := logging.NewMockLogger()
	sink := &common.MemorySink{}
	result, err := newDriver([]string{path}, sink, logger).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, result.Rows)
	assert.Equal(t, 1, result.Accepted)
	assert.Equal(t, 2, result.Rejected["malformed_or_header"])
	assert.Equal(t, 1, result.Rejected["invalid_amount"])
	assert.Equal(t, 1, result.Rejected["invalid_date"])

	warns := logger.GetEntriesByLevel("WARN")
	require.Len(t, warns, 2)
	line, ok := warns[0].FieldValue(logging.FieldLine)
	require.True(t, ok)
	assert.Equal(t, 3, line)
	reason, _ := warns[1].FieldValue(logging.FieldReason)
	assert.Equal(t, "invalid_date", reason)
}

func TestRun_OutOfRangeDateDoesNotAbort(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "jan.csv",
		"1,2,20230105,20230106,-42.50,Coffee Shop\n"+
			"2,2,00010101,20230106,-1.00,Odd Row\n")

	sink := &common.MemorySink{}
	result, err := newDriver([]string{path}, sink, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sink.Writes)
	require.Len(t, sink.Records, 1)
	assert.Equal(t, "Coffee Shop", sink.Records[0].Description)
	assert.Equal(t, 1, result.Accepted)
	assert.Equal(t, 1, result.Rejected["invalid_date"])
}

func TestRun_PositiveExpenseSign(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "jan.csv",
		"1,2,20230105,20230106,42.50,Coffee Shop\n"+
			"1,2,20230106,20230107,-10.00,Refund\n")

	sink := &common.MemorySink{}
	d := NewDriver(Options{
		Source:      source.StaticProvider{path},
		Rules:       &store.MockRuleStore{Rules: testRules()},
		Sink:        sink,
		ExpenseSign: models.ExpenseSignPositive,
	})
	result, err := d.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sink.Records, 1)
	assert.Equal(t, "42.50", sink.Records[0].FormattedAmount())
	assert.Equal(t, 1, result.Rejected["credit_not_expense"])
}

func TestRun_SkipsUnreadableSource(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "good.csv", "1,2,20230105,20230106,-1.00,Coffee\n")
	missing := filepath.Join(dir, "missing.csv")

	logger := logging.NewMockLogger()
	sink := &common.MemorySink{}
	result, err := newDriver([]string{missing, good}, sink, logger).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{missing}, result.SkippedSources)
	assert.Equal(t, []string{good}, result.Sources)
	assert.Len(t, sink.Records, 1)
	assert.True(t, logger.HasEntry("WARN", "Skipping unreadable source"))
}

// failingReader delivers one good row then fails, like a file that breaks
// part way through.
type failingReader struct{}

func (failingReader) ReadRows(path string, fn func(common.Row) error) error {
	if err := fn(common.Row{Line: 1, Fields: []string{"1", "2", "20230105", "20230106", "-1.00", "Coffee"}}); err != nil {
		return err
	}
	return errors.New("disk error")
}

func TestRun_PartiallyReadSourceIsDiscarded(t *testing.T) {
	sink := &common.MemorySink{}
	d := NewDriver(Options{
		Source: source.StaticProvider{"broken.csv"},
		Rules:  &store.MockRuleStore{Rules: testRules()},
		Sink:   sink,
		Reader: failingReader{},
	})
	result, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"broken.csv"}, result.SkippedSources)
	assert.Equal(t, 0, result.Accepted)
	assert.Equal(t, 1, sink.Writes)
	assert.Empty(t, sink.Records)
}

func TestRun_RulesFailureIsStartupError(t *testing.T) {
	sink := &common.MemorySink{}
	rules := &store.MockRuleStore{Err: errors.New("categories.yaml: no such file")}
	d := NewDriver(Options{
		Source: source.StaticProvider{"a.csv"},
		Rules:  rules,
		Sink:   sink,
	})

	result, err := d.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)

	var startup *parsererror.StartupError
	require.ErrorAs(t, err, &startup)
	assert.Equal(t, "rules", startup.Stage)
	assert.Equal(t, 0, sink.Writes)
	assert.Equal(t, StateLoading, d.State())
}

func TestRun_NoSourcesIsStartupError(t *testing.T) {
	sink := &common.MemorySink{}
	d := NewDriver(Options{
		Source: source.StaticProvider(nil),
		Rules:  &store.MockRuleStore{Rules: testRules()},
		Sink:   sink,
	})

	_, err := d.Run(context.Background())
	var startup *parsererror.StartupError
	require.ErrorAs(t, err, &startup)
	assert.Equal(t, "sources", startup.Stage)
	assert.ErrorIs(t, err, source.ErrNoSources)
	assert.Equal(t, 0, sink.Writes)
}

func TestRun_EmptySourcesWriteEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "empty.csv", "")
	out := filepath.Join(dir, "out.csv")

	d := newDriver([]string{path}, common.NewCSVSink(out, ',', false, nil), nil)
	result, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Rows)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestRun_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.csv", "1,2,20230105,20230106,-1.00,Coffee\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &common.MemorySink{}
	_, err := newDriver([]string{path}, sink, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, sink.Writes)
}

func TestRun_SinkFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.csv", "1,2,20230105,20230106,-1.00,Coffee\n")

	sink := &common.MemorySink{Err: errors.New("disk full")}
	_, err := newDriver([]string{path}, sink, nil).Run(context.Background())
	assert.ErrorContains(t, err, "disk full")
}

func TestRun_LogsStateTransitions(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.csv", "1,2,20230105,20230106,-1.00,Coffee\n")

	logger := logging.NewMockLogger()
	result, err := newDriver([]string{path}, &common.MemorySink{}, logger).Run(context.Background())
	require.NoError(t, err)

	var states []interface{}
	for _, e := range logger.GetEntries() {
		if e.Message != "Pipeline state change" {
			continue
		}
		s, _ := e.FieldValue(logging.FieldState)
		states = append(states, s)
		id, _ := e.FieldValue(logging.FieldRunID)
		assert.Equal(t, result.RunID, id)
	}
	assert.Equal(t, []interface{}{"loading", "streaming", "finalizing", "done"}, states)
	assert.True(t, logger.HasEntry("INFO", "Categorization summary"))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "state(9)", State(9).String())
}
